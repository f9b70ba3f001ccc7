package escrow

import (
	"encoding/binary"
	"fmt"

	"github.com/blackcloro/escrow-program/internal"
	"github.com/blackcloro/escrow-program/internal/domain/account"
)

// StateLen is the packed size of State and the data size of every escrow account.
const StateLen = 1 + 3*account.PubkeyLen + 8

// State is the data of an escrow account.
type State struct {
	IsInitialized               bool           `json:"is_initialized"`
	Initializer                 account.Pubkey `json:"initializer"`
	TempTokenAccount            account.Pubkey `json:"temp_token_account"`
	InitializerReceivingAccount account.Pubkey `json:"initializer_receiving_account"`
	ExpectedAmount              uint64         `json:"expected_amount"`
}

func (s *State) Pack() []byte {
	buf := make([]byte, StateLen)
	if s.IsInitialized {
		buf[0] = 1
	}
	off := 1
	for _, pk := range []account.Pubkey{s.Initializer, s.TempTokenAccount, s.InitializerReceivingAccount} {
		copy(buf[off:], pk[:])
		off += account.PubkeyLen
	}
	binary.LittleEndian.PutUint64(buf[off:], s.ExpectedAmount)
	return buf
}

// UnpackState decodes escrow data. An all-zero buffer decodes to an
// uninitialized state.
func UnpackState(data []byte) (*State, error) {
	if len(data) != StateLen {
		return nil, fmt.Errorf("escrow data is %d bytes, want %d: %w", len(data), StateLen, internal.ErrInvalidAccountData)
	}
	var s State
	switch data[0] {
	case 0:
	case 1:
		s.IsInitialized = true
	default:
		return nil, fmt.Errorf("escrow initialized flag %d: %w", data[0], internal.ErrInvalidAccountData)
	}
	off := 1
	for _, pk := range []*account.Pubkey{&s.Initializer, &s.TempTokenAccount, &s.InitializerReceivingAccount} {
		copy(pk[:], data[off:])
		off += account.PubkeyLen
	}
	s.ExpectedAmount = binary.LittleEndian.Uint64(data[off:])
	return &s, nil
}

// Authority is the program-derived address that holds temp token accounts
// while an escrow is open.
func Authority(programID account.Pubkey) account.Pubkey {
	return account.DerivePubkey([]byte("escrow"), programID[:])
}

// NewAccount builds an uninitialized escrow account owned by programID.
func NewAccount(address, programID account.Pubkey, lamports uint64) *account.Account {
	return &account.Account{
		Address:  address,
		Owner:    programID,
		Lamports: lamports,
		Data:     make([]byte, StateLen),
	}
}
