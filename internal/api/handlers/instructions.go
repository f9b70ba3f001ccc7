package handlers

import (
	"encoding/hex"

	"github.com/gofiber/fiber/v3"

	"github.com/blackcloro/escrow-program/internal/domain/account"
	"github.com/blackcloro/escrow-program/internal/domain/escrow"
	"github.com/blackcloro/escrow-program/pkg/logger"
)

type accountMetaRequest struct {
	Address    string `json:"address" validate:"required,len=64,hexadecimal,excludesall=xX"`
	IsSigner   bool   `json:"is_signer"`
	IsWritable bool   `json:"is_writable"`
}

type instructionRequest struct {
	Accounts []accountMetaRequest `json:"accounts" validate:"dive"`
	// Data is the hex encoded instruction data. It is not validated beyond the
	// encoding so the program itself rejects malformed instructions.
	Data string `json:"data" validate:"omitempty,hexadecimal,excludesall=xX"`
}

type InstructionHandler struct {
	svc *escrow.Service
}

func NewInstructionHandler(svc *escrow.Service) *InstructionHandler {
	return &InstructionHandler{svc: svc}
}

func (h *InstructionHandler) ExecuteInstruction(c fiber.Ctx) error {
	var req instructionRequest
	if err := c.Bind().JSON(&req); err != nil {
		logger.Error("Invalid request body", err,
			"path", c.Path(),
			"method", c.Method(),
			"ip", c.IP())
		return badRequest(c, "Invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return badRequest(c, err.Error())
	}

	metas := make([]account.AccountMeta, len(req.Accounts))
	for i, m := range req.Accounts {
		address, err := account.ParsePubkey(m.Address)
		if err != nil {
			return badRequest(c, err.Error())
		}
		metas[i] = account.AccountMeta{Address: address, IsSigner: m.IsSigner, IsWritable: m.IsWritable}
	}
	data, err := hex.DecodeString(req.Data)
	if err != nil {
		return badRequest(c, "Instruction data must be hex encoded")
	}

	if err := h.svc.Execute(c.Context(), metas, data); err != nil {
		return writeError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Instruction processed successfully",
	})
}
