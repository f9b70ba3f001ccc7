package testutil

import (
	"context"

	"github.com/stretchr/testify/require"

	"github.com/blackcloro/escrow-program/internal/domain/account"
	"github.com/blackcloro/escrow-program/internal/domain/escrow"
	"github.com/blackcloro/escrow-program/internal/domain/instruction"
)

const (
	WalletLamports = 1_000_000_000
	StartingX      = 50
	StartingY      = 50
	OfferedX       = 3
	ExpectedY      = 5
)

// Scenario is the two party swap: Alice parks OfferedX tokens of mint X in a
// temp account and asks for ExpectedY tokens of mint Y, Bob takes the offer.
type Scenario struct {
	ProgramID account.Pubkey
	Rent      account.Rent

	Alice, Bob   account.Pubkey
	MintX, MintY account.Pubkey

	AliceX, AliceY account.Pubkey
	BobX, BobY     account.Pubkey
	TempX          account.Pubkey
	Escrow         account.Pubkey
}

// NewScenario derives every address from name so parallel scenarios never clash.
func NewScenario(name string, programID account.Pubkey, rent account.Rent) *Scenario {
	key := func(role string) account.Pubkey {
		return account.DerivePubkey([]byte(name), []byte(role))
	}
	return &Scenario{
		ProgramID: programID,
		Rent:      rent,
		Alice:     key("alice"),
		Bob:       key("bob"),
		MintX:     key("mint_x"),
		MintY:     key("mint_y"),
		AliceX:    key("alice_x"),
		AliceY:    key("alice_y"),
		BobX:      key("bob_x"),
		BobY:      key("bob_y"),
		TempX:     key("temp_x"),
		Escrow:    key("escrow"),
	}
}

// Accounts returns the state right before InitEscrow: the temp account is
// funded and still held by Alice, the escrow account is allocated and rent exempt.
func (s *Scenario) Accounts() []*account.Account {
	tokenRent := s.Rent.MinimumBalance(account.TokenStateLen)
	return []*account.Account{
		{Address: s.Alice, Owner: account.SystemProgramID, Lamports: WalletLamports},
		{Address: s.Bob, Owner: account.SystemProgramID, Lamports: WalletLamports},
		account.NewTokenAccount(s.AliceX, s.MintX, s.Alice, StartingX-OfferedX, tokenRent),
		account.NewTokenAccount(s.AliceY, s.MintY, s.Alice, 0, tokenRent),
		account.NewTokenAccount(s.BobX, s.MintX, s.Bob, 0, tokenRent),
		account.NewTokenAccount(s.BobY, s.MintY, s.Bob, StartingY, tokenRent),
		account.NewTokenAccount(s.TempX, s.MintX, s.Alice, OfferedX, tokenRent),
		escrow.NewAccount(s.Escrow, s.ProgramID, s.Rent.MinimumBalance(escrow.StateLen)),
	}
}

func (s *Scenario) Seed(ctx context.Context, t require.TestingT, repo account.Repository) {
	for _, a := range s.Accounts() {
		require.NoError(t, repo.Create(ctx, a))
	}
}

func (s *Scenario) InitEscrowMetas() []account.AccountMeta {
	return []account.AccountMeta{
		{Address: s.Alice, IsSigner: true},
		{Address: s.TempX, IsWritable: true},
		{Address: s.AliceY},
		{Address: s.Escrow, IsWritable: true},
	}
}

func (s *Scenario) ExchangeMetas() []account.AccountMeta {
	return []account.AccountMeta{
		{Address: s.Bob, IsSigner: true},
		{Address: s.BobY, IsWritable: true},
		{Address: s.BobX, IsWritable: true},
		{Address: s.TempX, IsWritable: true},
		{Address: s.Alice, IsWritable: true},
		{Address: s.AliceY, IsWritable: true},
		{Address: s.Escrow, IsWritable: true},
	}
}

func InitEscrowData(amount uint64) []byte {
	return instruction.Pack(instruction.InitEscrow{Amount: amount})
}

func ExchangeData(amount uint64) []byte {
	return instruction.Pack(instruction.Exchange{Amount: amount})
}

// SetTokenAmount overwrites the token balance of address.
func SetTokenAmount(ctx context.Context, t require.TestingT, repo account.Repository, address account.Pubkey, amount uint64) {
	a, err := repo.Get(ctx, address)
	require.NoError(t, err)
	state, err := account.TokenAccount(a)
	require.NoError(t, err)
	state.Amount = amount
	a.Data = state.Pack()
	require.NoError(t, repo.Update(ctx, a))
}

func SetLamports(ctx context.Context, t require.TestingT, repo account.Repository, address account.Pubkey, lamports uint64) {
	a, err := repo.Get(ctx, address)
	require.NoError(t, err)
	a.Lamports = lamports
	require.NoError(t, repo.Update(ctx, a))
}

func TokenAmount(ctx context.Context, t require.TestingT, repo account.Repository, address account.Pubkey) uint64 {
	a, err := repo.Get(ctx, address)
	require.NoError(t, err)
	state, err := account.TokenAccount(a)
	require.NoError(t, err)
	return state.Amount
}

// Snapshot captures every scenario account still present, for comparing state
// before and after a failed instruction.
func (s *Scenario) Snapshot(ctx context.Context, repo account.Repository) map[account.Pubkey]*account.Account {
	snap := make(map[account.Pubkey]*account.Account)
	for _, a := range s.Accounts() {
		got, err := repo.Get(ctx, a.Address)
		if err == nil {
			snap[a.Address] = got
		}
	}
	return snap
}
