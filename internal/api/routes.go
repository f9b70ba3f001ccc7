package api

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/blackcloro/escrow-program/internal/api/handlers"
)

type Handlers struct {
	Instructions *handlers.InstructionHandler
	Accounts     *handlers.AccountHandler
	ErrorCodes   *handlers.ErrorCodeHandler
}

func SetupRoutes(app *fiber.App, h Handlers) {
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api/v1")

	api.Post("/instructions", h.Instructions.ExecuteInstruction)

	api.Post("/accounts", h.Accounts.CreateAccount)
	api.Get("/accounts/:address", h.Accounts.GetAccount)

	api.Get("/errors", h.ErrorCodes.ListErrorCodes)
	api.Get("/errors/:code", h.ErrorCodes.GetErrorCode)

	// Check if the server is up and running.
	api.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
}
