package handlers

import (
	"encoding/hex"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/blackcloro/escrow-program/internal/domain/account"
	"github.com/blackcloro/escrow-program/internal/domain/escrow"
	"github.com/blackcloro/escrow-program/pkg/logger"
)

var validate = validator.New()

type createAccountRequest struct {
	Address  string `json:"address" validate:"required,len=64,hexadecimal,excludesall=xX"`
	Owner    string `json:"owner" validate:"omitempty,len=64,hexadecimal,excludesall=xX"`
	Lamports uint64 `json:"lamports"`
	Data     string `json:"data" validate:"omitempty,hexadecimal,excludesall=xX"`
}

type accountResponse struct {
	Address  account.Pubkey      `json:"address"`
	Owner    account.Pubkey      `json:"owner"`
	Lamports uint64              `json:"lamports"`
	Data     string              `json:"data"`
	Token    *account.TokenState `json:"token,omitempty"`
	Escrow   *escrow.State       `json:"escrow,omitempty"`
}

type AccountHandler struct {
	svc *escrow.Service
}

func NewAccountHandler(svc *escrow.Service) *AccountHandler {
	return &AccountHandler{svc: svc}
}

func (h *AccountHandler) CreateAccount(c fiber.Ctx) error {
	var req createAccountRequest
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

	a := &account.Account{Lamports: req.Lamports}
	var err error
	if a.Address, err = account.ParsePubkey(req.Address); err != nil {
		return badRequest(c, err.Error())
	}
	if req.Owner != "" {
		if a.Owner, err = account.ParsePubkey(req.Owner); err != nil {
			return badRequest(c, err.Error())
		}
	}
	if req.Data != "" {
		if a.Data, err = hex.DecodeString(req.Data); err != nil {
			return badRequest(c, "Account data must be hex encoded")
		}
	}

	if err := h.svc.CreateAccount(c.Context(), a); err != nil {
		return writeError(c, err)
	}

	logger.Info("Account created", "address", a.Address, "owner", a.Owner)
	return c.Status(fiber.StatusCreated).JSON(h.view(a))
}

func (h *AccountHandler) GetAccount(c fiber.Ctx) error {
	address, err := account.ParsePubkey(c.Params("address"))
	if err != nil {
		return badRequest(c, err.Error())
	}
	a, err := h.svc.GetAccount(c.Context(), address)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(h.view(a))
}

// view decodes the data of accounts owned by the token or escrow program.
func (h *AccountHandler) view(a *account.Account) accountResponse {
	resp := accountResponse{
		Address:  a.Address,
		Owner:    a.Owner,
		Lamports: a.Lamports,
		Data:     hex.EncodeToString(a.Data),
	}
	switch a.Owner {
	case account.TokenProgramID:
		if state, err := account.UnpackTokenState(a.Data); err == nil {
			resp.Token = state
		}
	case h.svc.ProgramID():
		if state, err := escrow.UnpackState(a.Data); err == nil {
			resp.Escrow = state
		}
	}
	return resp
}
