package escrow_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackcloro/escrow-program/internal/domain/account"
	"github.com/blackcloro/escrow-program/internal/domain/escrow"
	"github.com/blackcloro/escrow-program/internal/infrastructure/memory"
	"github.com/blackcloro/escrow-program/internal/programerr"
	"github.com/blackcloro/escrow-program/internal/testutil"
)

func newService(t *testing.T) (*escrow.Service, *memory.Store, *testutil.Scenario) {
	store := memory.NewStore()
	processor := escrow.NewProcessor(account.DefaultEscrowProgramID, account.DefaultRent, store)
	sc := testutil.NewScenario(t.Name(), account.DefaultEscrowProgramID, account.DefaultRent)
	sc.Seed(context.Background(), t, store)
	return escrow.NewService(processor, store, account.DefaultRent), store, sc
}

func TestServiceExecute(t *testing.T) {
	ctx := context.Background()
	svc, _, sc := newService(t)

	err := svc.Execute(ctx, sc.InitEscrowMetas(), []byte{7})
	assert.ErrorIs(t, err, programerr.InvalidInstruction)

	require.NoError(t, svc.Execute(ctx, sc.InitEscrowMetas(), testutil.InitEscrowData(testutil.ExpectedY)))

	err = svc.Execute(ctx, sc.ExchangeMetas(), testutil.ExchangeData(testutil.OfferedX+10))
	kind, ok := programerr.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, programerr.ExpectedAmountMismatch, kind)

	require.NoError(t, svc.Execute(ctx, sc.ExchangeMetas(), testutil.ExchangeData(testutil.OfferedX)))
	assert.Equal(t, account.DefaultEscrowProgramID, svc.ProgramID())
}

func TestServiceAccounts(t *testing.T) {
	ctx := context.Background()
	svc, _, sc := newService(t)

	a, err := svc.GetAccount(ctx, sc.BobY)
	require.NoError(t, err)
	assert.Equal(t, account.TokenProgramID, a.Owner)

	fresh := &account.Account{Address: account.DerivePubkey([]byte("fresh")), Lamports: 1}
	require.NoError(t, svc.CreateAccount(ctx, fresh))
	got, err := svc.GetAccount(ctx, fresh.Address)
	require.NoError(t, err)
	assert.Equal(t, fresh, got)
}

func TestAuditRent(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newService(t)

	findings, err := svc.AuditRent(ctx)
	require.NoError(t, err)
	assert.Empty(t, findings, "seeded escrow account is rent exempt")

	poor := escrow.NewAccount(account.DerivePubkey([]byte("poor")), account.DefaultEscrowProgramID, 10)
	require.NoError(t, store.Create(ctx, poor))
	// Token accounts are not program owned and never show up.
	require.NoError(t, store.Create(ctx, account.NewTokenAccount(account.DerivePubkey([]byte("dust")), account.TokenProgramID, account.TokenProgramID, 0, 1)))

	findings, err = svc.AuditRent(ctx)
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, escrow.RentFinding{
		Address:        poor.Address,
		Lamports:       10,
		MinimumBalance: account.DefaultRent.MinimumBalance(escrow.StateLen),
		Kind:           programerr.NotRentExempt,
	}, findings[0])
}
