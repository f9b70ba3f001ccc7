package account

import (
	"encoding/binary"
	"fmt"

	"github.com/blackcloro/escrow-program/internal"
)

// TokenStateLen is the packed size of TokenState.
const TokenStateLen = 1 + PubkeyLen + PubkeyLen + 8

// TokenState is the data of an account owned by the token program.
type TokenState struct {
	IsInitialized bool   `json:"is_initialized"`
	Mint          Pubkey `json:"mint"`
	Owner         Pubkey `json:"owner"`
	Amount        uint64 `json:"amount"`
}

func (s *TokenState) Pack() []byte {
	buf := make([]byte, TokenStateLen)
	if s.IsInitialized {
		buf[0] = 1
	}
	copy(buf[1:], s.Mint[:])
	copy(buf[1+PubkeyLen:], s.Owner[:])
	binary.LittleEndian.PutUint64(buf[1+2*PubkeyLen:], s.Amount)
	return buf
}

func UnpackTokenState(data []byte) (*TokenState, error) {
	if len(data) != TokenStateLen {
		return nil, fmt.Errorf("token account data is %d bytes, want %d: %w", len(data), TokenStateLen, internal.ErrInvalidAccountData)
	}
	var s TokenState
	switch data[0] {
	case 0:
		return nil, internal.ErrUninitializedAccount
	case 1:
		s.IsInitialized = true
	default:
		return nil, fmt.Errorf("token account initialized flag %d: %w", data[0], internal.ErrInvalidAccountData)
	}
	copy(s.Mint[:], data[1:])
	copy(s.Owner[:], data[1+PubkeyLen:])
	s.Amount = binary.LittleEndian.Uint64(data[1+2*PubkeyLen:])
	return &s, nil
}

// TokenAccount decodes the token state of a, checking it belongs to the token program.
func TokenAccount(a *Account) (*TokenState, error) {
	if a.Owner != TokenProgramID {
		return nil, fmt.Errorf("account %s is not a token account: %w", a.Address, internal.ErrIncorrectProgramID)
	}
	return UnpackTokenState(a.Data)
}

// NewTokenAccount builds an initialized token account holding amount of mint.
func NewTokenAccount(address, mint, owner Pubkey, amount, lamports uint64) *Account {
	state := TokenState{IsInitialized: true, Mint: mint, Owner: owner, Amount: amount}
	return &Account{
		Address:  address,
		Owner:    TokenProgramID,
		Lamports: lamports,
		Data:     state.Pack(),
	}
}
