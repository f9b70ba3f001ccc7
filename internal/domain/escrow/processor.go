package escrow

import (
	"context"
	"fmt"
	"math/bits"

	"github.com/blackcloro/escrow-program/internal"
	"github.com/blackcloro/escrow-program/internal/domain/account"
	"github.com/blackcloro/escrow-program/internal/domain/instruction"
	"github.com/blackcloro/escrow-program/internal/programerr"
)

const (
	initEscrowAccounts = 4
	exchangeAccounts   = 7
)

// Processor executes escrow instructions against an account repository.
type Processor struct {
	programID account.Pubkey
	rent      account.Rent
	repo      account.Repository
}

func NewProcessor(programID account.Pubkey, rent account.Rent, repo account.Repository) *Processor {
	return &Processor{programID: programID, rent: rent, repo: repo}
}

func (p *Processor) ProgramID() account.Pubkey {
	return p.programID
}

// Process decodes data and runs the instruction atomically. The decoded
// instruction is returned even when execution fails; it is nil only when the
// data could not be decoded.
func (p *Processor) Process(ctx context.Context, metas []account.AccountMeta, data []byte) (instruction.Instruction, error) {
	ix, err := instruction.Unpack(data)
	if err != nil {
		return nil, err
	}

	err = p.repo.WithinTx(ctx, func(repo account.Repository) error {
		switch ix := ix.(type) {
		case instruction.InitEscrow:
			return p.initEscrow(ctx, repo, metas, ix.Amount)
		case instruction.Exchange:
			return p.exchange(ctx, repo, metas, ix.Amount)
		default:
			return fmt.Errorf("unhandled instruction %s: %w", ix.Name(), programerr.InvalidInstruction)
		}
	})
	return ix, err
}

// initEscrow expects [initializer, temp token account, initializer receiving
// token account, escrow account].
func (p *Processor) initEscrow(ctx context.Context, repo account.Repository, metas []account.AccountMeta, amount uint64) error {
	if len(metas) < initEscrowAccounts {
		return fmt.Errorf("InitEscrow needs %d accounts, got %d: %w", initEscrowAccounts, len(metas), internal.ErrNotEnoughAccountKeys)
	}
	initializer, temp, receiving, escrowMeta := metas[0], metas[1], metas[2], metas[3]

	if !initializer.IsSigner {
		return fmt.Errorf("initializer %s: %w", initializer.Address, internal.ErrMissingRequiredSignature)
	}
	if err := requireWritable(temp, escrowMeta); err != nil {
		return err
	}
	if err := requireDistinct(temp, receiving, escrowMeta); err != nil {
		return err
	}

	tempAcct, tempState, err := loadToken(ctx, repo, temp.Address)
	if err != nil {
		return err
	}
	if tempState.Owner != initializer.Address {
		return fmt.Errorf("temp token account %s is not held by the initializer: %w", temp.Address, internal.ErrInvalidAccountData)
	}
	if _, _, err := loadToken(ctx, repo, receiving.Address); err != nil {
		return err
	}

	escrowAcct, state, err := p.loadEscrow(ctx, repo, escrowMeta.Address)
	if err != nil {
		return err
	}
	if !p.rent.IsExempt(escrowAcct.Lamports, len(escrowAcct.Data)) {
		return fmt.Errorf("escrow account %s holds %d lamports, needs %d: %w",
			escrowAcct.Address, escrowAcct.Lamports, p.rent.MinimumBalance(len(escrowAcct.Data)), programerr.NotRentExempt)
	}
	if state.IsInitialized {
		return fmt.Errorf("escrow account %s: %w", escrowAcct.Address, internal.ErrAccountAlreadyInitialized)
	}

	state = &State{
		IsInitialized:               true,
		Initializer:                 initializer.Address,
		TempTokenAccount:            temp.Address,
		InitializerReceivingAccount: receiving.Address,
		ExpectedAmount:              amount,
	}
	escrowAcct.Data = state.Pack()
	if err := repo.Update(ctx, escrowAcct); err != nil {
		return err
	}

	tempState.Owner = Authority(p.programID)
	tempAcct.Data = tempState.Pack()
	return repo.Update(ctx, tempAcct)
}

// exchange expects [taker, taker sending token account, taker receiving token
// account, temp token account, initializer, initializer receiving token account,
// escrow account]. amount is what the taker expects to receive.
func (p *Processor) exchange(ctx context.Context, repo account.Repository, metas []account.AccountMeta, amount uint64) error {
	if len(metas) < exchangeAccounts {
		return fmt.Errorf("Exchange needs %d accounts, got %d: %w", exchangeAccounts, len(metas), internal.ErrNotEnoughAccountKeys)
	}
	taker, takerSending, takerReceiving, temp, initializer, initializerReceiving, escrowMeta :=
		metas[0], metas[1], metas[2], metas[3], metas[4], metas[5], metas[6]

	if !taker.IsSigner {
		return fmt.Errorf("taker %s: %w", taker.Address, internal.ErrMissingRequiredSignature)
	}
	if err := requireWritable(takerSending, takerReceiving, temp, initializer, initializerReceiving, escrowMeta); err != nil {
		return err
	}
	if err := requireDistinct(takerSending, takerReceiving, temp, initializer, initializerReceiving, escrowMeta); err != nil {
		return err
	}

	escrowAcct, state, err := p.loadEscrow(ctx, repo, escrowMeta.Address)
	if err != nil {
		return err
	}
	if !state.IsInitialized {
		return fmt.Errorf("escrow account %s: %w", escrowAcct.Address, internal.ErrUninitializedAccount)
	}
	if state.TempTokenAccount != temp.Address ||
		state.Initializer != initializer.Address ||
		state.InitializerReceivingAccount != initializerReceiving.Address {
		return fmt.Errorf("accounts do not match escrow %s: %w", escrowAcct.Address, internal.ErrInvalidAccountData)
	}

	tempAcct, tempState, err := loadToken(ctx, repo, temp.Address)
	if err != nil {
		return err
	}
	if tempState.Amount != amount {
		return fmt.Errorf("temp token account holds %d, taker expects %d: %w", tempState.Amount, amount, programerr.ExpectedAmountMismatch)
	}
	if tempState.Owner != Authority(p.programID) {
		return fmt.Errorf("temp token account %s is not held by the program: %w", temp.Address, internal.ErrInvalidAccountData)
	}

	sendAcct, sendState, err := loadToken(ctx, repo, takerSending.Address)
	if err != nil {
		return err
	}
	recvAcct, recvState, err := loadToken(ctx, repo, takerReceiving.Address)
	if err != nil {
		return err
	}
	initRecvAcct, initRecvState, err := loadToken(ctx, repo, initializerReceiving.Address)
	if err != nil {
		return err
	}
	if sendState.Owner != taker.Address {
		return fmt.Errorf("sending token account %s is not held by the taker: %w", takerSending.Address, internal.ErrInvalidAccountData)
	}
	if sendState.Mint != initRecvState.Mint || recvState.Mint != tempState.Mint {
		return fmt.Errorf("token mints do not line up: %w", internal.ErrInvalidAccountData)
	}
	if sendState.Amount < state.ExpectedAmount {
		return fmt.Errorf("taker holds %d, escrow expects %d: %w", sendState.Amount, state.ExpectedAmount, internal.ErrInsufficientFunds)
	}

	initializerAcct, err := repo.Get(ctx, initializer.Address)
	if err != nil {
		return err
	}

	sendState.Amount -= state.ExpectedAmount
	if initRecvState.Amount, err = checkedAdd(initRecvState.Amount, state.ExpectedAmount); err != nil {
		return fmt.Errorf("initializer receiving account: %w", err)
	}
	if recvState.Amount, err = checkedAdd(recvState.Amount, tempState.Amount); err != nil {
		return fmt.Errorf("taker receiving account: %w", err)
	}
	if initializerAcct.Lamports, err = checkedAdd(initializerAcct.Lamports, tempAcct.Lamports); err != nil {
		return fmt.Errorf("closing temp token account: %w", err)
	}
	if initializerAcct.Lamports, err = checkedAdd(initializerAcct.Lamports, escrowAcct.Lamports); err != nil {
		return fmt.Errorf("closing escrow account: %w", err)
	}

	sendAcct.Data = sendState.Pack()
	recvAcct.Data = recvState.Pack()
	initRecvAcct.Data = initRecvState.Pack()
	for _, a := range []*account.Account{sendAcct, recvAcct, initRecvAcct, initializerAcct} {
		if err := repo.Update(ctx, a); err != nil {
			return err
		}
	}
	if err := repo.Delete(ctx, tempAcct.Address); err != nil {
		return err
	}
	return repo.Delete(ctx, escrowAcct.Address)
}

func (p *Processor) loadEscrow(ctx context.Context, repo account.Repository, address account.Pubkey) (*account.Account, *State, error) {
	a, err := repo.Get(ctx, address)
	if err != nil {
		return nil, nil, err
	}
	if a.Owner != p.programID {
		return nil, nil, fmt.Errorf("escrow account %s: %w", address, internal.ErrIncorrectProgramID)
	}
	state, err := UnpackState(a.Data)
	if err != nil {
		return nil, nil, err
	}
	return a, state, nil
}

func loadToken(ctx context.Context, repo account.Repository, address account.Pubkey) (*account.Account, *account.TokenState, error) {
	a, err := repo.Get(ctx, address)
	if err != nil {
		return nil, nil, err
	}
	state, err := account.TokenAccount(a)
	if err != nil {
		return nil, nil, err
	}
	return a, state, nil
}

func requireWritable(metas ...account.AccountMeta) error {
	for _, m := range metas {
		if !m.IsWritable {
			return fmt.Errorf("account %s: %w", m.Address, internal.ErrAccountNotWritable)
		}
	}
	return nil
}

func requireDistinct(metas ...account.AccountMeta) error {
	seen := make(map[account.Pubkey]struct{}, len(metas))
	for _, m := range metas {
		if _, ok := seen[m.Address]; ok {
			return fmt.Errorf("account %s passed twice: %w", m.Address, internal.ErrInvalidAccountData)
		}
		seen[m.Address] = struct{}{}
	}
	return nil
}

func checkedAdd(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, fmt.Errorf("%d + %d: %w", a, b, programerr.AmountOverflow)
	}
	return sum, nil
}
