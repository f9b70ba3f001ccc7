package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/blackcloro/escrow-program/internal"
	"github.com/blackcloro/escrow-program/internal/programerr"
	"github.com/blackcloro/escrow-program/pkg/logger"
)

var hostFailures = []error{
	internal.ErrNotEnoughAccountKeys,
	internal.ErrMissingRequiredSignature,
	internal.ErrAccountAlreadyInitialized,
	internal.ErrUninitializedAccount,
	internal.ErrInvalidAccountData,
	internal.ErrAccountNotWritable,
	internal.ErrIncorrectProgramID,
	internal.ErrInsufficientFunds,
}

// writeError maps a failure to a response. Custom program failures carry the
// code the host runtime would report.
func writeError(c fiber.Ctx, err error) error {
	if kind, ok := programerr.KindOf(err); ok {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":      kind.String(),
			"code":       kind.Code(),
			"host_error": kind.HostError().Error(),
			"detail":     err.Error(),
		})
	}

	switch {
	case errors.Is(err, internal.ErrAccountNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, internal.ErrDuplicateAccount), errors.Is(err, internal.ErrTransactionConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	}
	for _, hf := range hostFailures {
		if errors.Is(err, hf) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
	}

	logger.Error("Request failed", err, "path", c.Path(), "method", c.Method())
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
}

func badRequest(c fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}
