package api

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	fiberlogger "github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/google/uuid"

	"github.com/blackcloro/escrow-program/internal/api/handlers"
	"github.com/blackcloro/escrow-program/internal/config"
	"github.com/blackcloro/escrow-program/internal/domain/escrow"
	"github.com/blackcloro/escrow-program/internal/metrics"
	"github.com/blackcloro/escrow-program/pkg/logger"
)

type Server struct {
	app    *fiber.App
	config *config.Config
}

func NewServer(cfg *config.Config, svc *escrow.Service) *Server {
	app := fiber.New()
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(fiberlogger.New())
	app.Use(recover.New())
	app.Use(observe)
	if cfg.RateLimit.Max > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:               cfg.RateLimit.Max,
			Expiration:        cfg.RateLimit.Window,
			LimiterMiddleware: limiter.SlidingWindow{},
		}))
	}

	SetupRoutes(app, Handlers{
		Instructions: handlers.NewInstructionHandler(svc),
		Accounts:     handlers.NewAccountHandler(svc),
		ErrorCodes:   handlers.NewErrorCodeHandler(),
	})

	return &Server{
		app:    app,
		config: cfg,
	}
}

// observe records request counts and latency.
func observe(c fiber.Ctx) error {
	start := time.Now()
	err := c.Next()

	status := c.Response().StatusCode()
	if err != nil {
		status = fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}
	}
	metrics.ObserveHTTP(c.Method(), status, time.Since(start))
	return err
}

func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)
	logger.Info("Starting server", "address", addr)
	return s.app.Listen(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	shutdownComplete := make(chan struct{})

	var shutdownErr error
	go func() {
		defer close(shutdownComplete)
		shutdownErr = s.app.ShutdownWithContext(ctx)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-shutdownComplete:
		if shutdownErr != nil {
			logger.Error("Error during shutdown", shutdownErr)
		}
		return shutdownErr
	}
}
