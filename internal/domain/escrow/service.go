package escrow

import (
	"context"

	"github.com/blackcloro/escrow-program/internal/domain/account"
	"github.com/blackcloro/escrow-program/internal/metrics"
	"github.com/blackcloro/escrow-program/internal/programerr"
	"github.com/blackcloro/escrow-program/pkg/logger"
)

type Service struct {
	processor *Processor
	repo      account.Repository
	rent      account.Rent
}

func NewService(processor *Processor, repo account.Repository, rent account.Rent) *Service {
	return &Service{processor: processor, repo: repo, rent: rent}
}

// Execute runs one instruction and records its outcome.
func (s *Service) Execute(ctx context.Context, metas []account.AccountMeta, data []byte) error {
	ix, err := s.processor.Process(ctx, metas, data)

	var name string
	if ix != nil {
		name = ix.Name()
	}
	outcome := metrics.RecordInstruction(name, err)

	if err != nil {
		args := []any{"instruction", name, "outcome", outcome, "error", err}
		if kind, ok := programerr.KindOf(err); ok {
			args = append(args, "kind", kind, "code", kind.Code())
		}
		logger.Warn("Instruction failed", args...)
		return err
	}

	logger.Info("Instruction processed", "instruction", name, "accounts", len(metas))
	return nil
}

func (s *Service) CreateAccount(ctx context.Context, a *account.Account) error {
	return s.repo.Create(ctx, a)
}

func (s *Service) GetAccount(ctx context.Context, address account.Pubkey) (*account.Account, error) {
	return s.repo.Get(ctx, address)
}

func (s *Service) ProgramID() account.Pubkey {
	return s.processor.ProgramID()
}

// RentFinding is a program owned account below the rent-exempt minimum.
type RentFinding struct {
	Address        account.Pubkey
	Lamports       uint64
	MinimumBalance uint64
	Kind           programerr.Kind
}

// AuditRent reports every program owned account that is not rent exempt.
func (s *Service) AuditRent(ctx context.Context) ([]RentFinding, error) {
	accounts, err := s.repo.ListByOwner(ctx, s.processor.ProgramID())
	if err != nil {
		return nil, err
	}

	var findings []RentFinding
	for _, a := range accounts {
		if s.rent.IsExempt(a.Lamports, len(a.Data)) {
			continue
		}
		findings = append(findings, RentFinding{
			Address:        a.Address,
			Lamports:       a.Lamports,
			MinimumBalance: s.rent.MinimumBalance(len(a.Data)),
			Kind:           programerr.NotRentExempt,
		})
	}
	return findings, nil
}
