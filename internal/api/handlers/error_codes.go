package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v3"

	"github.com/blackcloro/escrow-program/internal/programerr"
)

type errorCode struct {
	Code  uint32          `json:"code"`
	Label programerr.Kind `json:"label"`
}

// ErrorCodeHandler lets clients decode custom codes surfaced by the host runtime.
type ErrorCodeHandler struct{}

func NewErrorCodeHandler() *ErrorCodeHandler {
	return &ErrorCodeHandler{}
}

func (h *ErrorCodeHandler) ListErrorCodes(c fiber.Ctx) error {
	kinds := programerr.Kinds()
	codes := make([]errorCode, len(kinds))
	for i, k := range kinds {
		codes[i] = errorCode{Code: k.Code(), Label: k}
	}
	return c.JSON(codes)
}

func (h *ErrorCodeHandler) GetErrorCode(c fiber.Ctx) error {
	code, err := strconv.ParseUint(c.Params("code"), 10, 32)
	if err != nil {
		return badRequest(c, "Error code must be a non-negative 32-bit integer")
	}
	kind, ok := programerr.FromCode(uint32(code))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Unknown error code"})
	}
	return c.JSON(errorCode{Code: kind.Code(), Label: kind})
}
