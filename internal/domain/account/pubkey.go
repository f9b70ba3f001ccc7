package account

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// PubkeyLen is the size of an account address in bytes.
const PubkeyLen = 32

// Pubkey is an account address. Its text form is lowercase hex.
type Pubkey [PubkeyLen]byte

var (
	SystemProgramID        = Pubkey{}
	TokenProgramID         = DerivePubkey([]byte("token-program"))
	DefaultEscrowProgramID = DerivePubkey([]byte("escrow-program"))
)

// DerivePubkey hashes seeds into an address with no private key behind it.
func DerivePubkey(seeds ...[]byte) Pubkey {
	h := sha256.New()
	for _, s := range seeds {
		h.Write(s)
	}
	var pk Pubkey
	copy(pk[:], h.Sum(nil))
	return pk
}

func ParsePubkey(s string) (Pubkey, error) {
	var pk Pubkey
	if len(s) != hex.EncodedLen(PubkeyLen) {
		return pk, fmt.Errorf("pubkey must be %d hex characters, got %d", hex.EncodedLen(PubkeyLen), len(s))
	}
	if _, err := hex.Decode(pk[:], []byte(s)); err != nil {
		return pk, fmt.Errorf("invalid pubkey %q: %w", s, err)
	}
	return pk, nil
}

func (pk Pubkey) String() string {
	return hex.EncodeToString(pk[:])
}

func (pk Pubkey) IsZero() bool {
	return pk == Pubkey{}
}

func (pk Pubkey) MarshalText() ([]byte, error) {
	return []byte(pk.String()), nil
}

func (pk *Pubkey) UnmarshalText(text []byte) error {
	parsed, err := ParsePubkey(string(text))
	if err != nil {
		return err
	}
	*pk = parsed
	return nil
}
