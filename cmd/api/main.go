package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/blackcloro/escrow-program/internal/api"
	"github.com/blackcloro/escrow-program/internal/config"
	"github.com/blackcloro/escrow-program/internal/database"
	"github.com/blackcloro/escrow-program/internal/domain/account"
	"github.com/blackcloro/escrow-program/internal/domain/escrow"
	infradb "github.com/blackcloro/escrow-program/internal/infrastructure/database"
	"github.com/blackcloro/escrow-program/internal/infrastructure/memory"
	"github.com/blackcloro/escrow-program/internal/worker"
	"github.com/blackcloro/escrow-program/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger.InitLogger(cfg.Log.Level)

	programID, err := cfg.ProgramID()
	if err != nil {
		logger.Fatal("Invalid program id", err)
	}
	rent := cfg.RentParams()

	var repo account.Repository
	if cfg.DB.DSN != "" {
		if err := database.Migrate(cfg.DB.DSN, cfg.DB.Migrations); err != nil {
			logger.Fatal("Failed to migrate database", err)
		}
		db, err := database.NewPostgresDB(cfg.DB.DSN)
		if err != nil {
			logger.Fatal("Failed to connect to database", err)
		}
		defer db.Close()
		repo = infradb.NewPostgresAccountRepository(db)
	} else {
		logger.Warn("No database configured, accounts are kept in memory")
		repo = memory.NewStore()
	}

	processor := escrow.NewProcessor(programID, rent, repo)
	service := escrow.NewService(processor, repo, rent)

	server := api.NewServer(cfg, service)

	auditWorker := worker.NewWorker(service, cfg.Worker.Interval)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go auditWorker.Start(ctx)

	logger.Info("Escrow program ready",
		"program_id", programID,
		"authority", escrow.Authority(programID),
		"rent_exempt_escrow_lamports", rent.MinimumBalance(escrow.StateLen))

	go func() {
		if err := server.Start(); err != nil {
			logger.Fatal("Failed to start server", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	auditWorker.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", err)
	}

	logger.Info("Server exiting")
}
