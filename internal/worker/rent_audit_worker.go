package worker

import (
	"context"
	"time"

	"github.com/blackcloro/escrow-program/internal/domain/escrow"
	"github.com/blackcloro/escrow-program/internal/metrics"
	"github.com/blackcloro/escrow-program/pkg/logger"
)

// Auditor finds program owned accounts below the rent-exempt minimum.
type Auditor interface {
	AuditRent(ctx context.Context) ([]escrow.RentFinding, error)
}

type Worker struct {
	auditor        Auditor
	interval       time.Duration
	stopChan       chan struct{}
	processingDone chan struct{}
}

func NewWorker(auditor Auditor, interval time.Duration) *Worker {
	return &Worker{
		auditor:        auditor,
		interval:       interval,
		stopChan:       make(chan struct{}),
		processingDone: make(chan struct{}),
	}
}

func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			close(w.processingDone)
			return
		case <-w.stopChan:
			close(w.processingDone)
			return
		case <-ticker.C:
			w.runRentAudit(ctx)
		}
	}
}

func (w *Worker) runRentAudit(ctx context.Context) {
	findings, err := w.auditor.AuditRent(ctx)
	if err != nil {
		logger.Error("Failed to run rent audit", err)
		return
	}

	for _, f := range findings {
		logger.Warn("Account is not rent exempt",
			"address", f.Address,
			"lamports", f.Lamports,
			"minimum_balance", f.MinimumBalance,
			"kind", f.Kind,
			"code", f.Kind.Code())
	}
	metrics.NonRentExemptAccounts.Set(float64(len(findings)))

	logger.Info("Rent audit completed", "non_rent_exempt", len(findings))
}

func (w *Worker) Stop() {
	close(w.stopChan)
	<-w.processingDone
}
