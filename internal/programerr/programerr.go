// Package programerr defines the custom failures of the escrow program and their
// conversion to the host runtime's custom error code.
package programerr

import (
	"errors"
	"fmt"
)

// Kind is a custom program failure. Its value is the code reported to the host
// runtime, so the declaration order below must never change.
type Kind uint32

const (
	// InvalidInstruction means the instruction data could not be decoded.
	InvalidInstruction Kind = iota
	// NotRentExempt means an account holds less than the rent-exempt minimum.
	NotRentExempt
	// ExpectedAmountMismatch means a declared amount differs from the observed one.
	ExpectedAmountMismatch
	// AmountOverflow means arithmetic over amounts left the u64 range.
	AmountOverflow

	// KindCount is the number of declared kinds.
	KindCount = iota
)

var labels = [KindCount]string{
	InvalidInstruction:     "InvalidInstruction",
	NotRentExempt:          "NotRentExempt",
	ExpectedAmountMismatch: "ExpectedAmountMismatch",
	AmountOverflow:         "AmountOverflow",
}

// Kinds returns every kind in declaration order.
func Kinds() []Kind {
	kinds := make([]Kind, KindCount)
	for i := range kinds {
		kinds[i] = Kind(i)
	}
	return kinds
}

// FromCode maps a host custom error code back to its kind.
func FromCode(code uint32) (Kind, bool) {
	if code >= KindCount {
		return 0, false
	}
	return Kind(code), true
}

// ParseLabel is the inverse of String.
func ParseLabel(label string) (Kind, bool) {
	for i, l := range labels {
		if l == label {
			return Kind(i), true
		}
	}
	return 0, false
}

// Code returns the host runtime custom error code.
func (k Kind) Code() uint32 {
	return uint32(k)
}

func (k Kind) Valid() bool {
	return k < KindCount
}

func (k Kind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("Kind(%d)", uint32(k))
	}
	return labels[k]
}

func (k Kind) Error() string {
	return k.String()
}

// HostError converts k into the host runtime representation.
func (k Kind) HostError() *ProgramError {
	return &ProgramError{Code: k.Code()}
}

func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("programerr: unknown kind %d", uint32(k))
	}
	return []byte(labels[k]), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	kind, ok := ParseLabel(string(text))
	if !ok {
		return fmt.Errorf("programerr: unknown kind label %q", text)
	}
	*k = kind
	return nil
}

// ProgramError is the failure a program hands back to the host runtime through
// its custom error slot.
type ProgramError struct {
	Code uint32
}

func (e *ProgramError) Error() string {
	return fmt.Sprintf("custom program error: 0x%x", e.Code)
}

// Is reports whether target is the Kind carried by e.
func (e *ProgramError) Is(target error) bool {
	switch t := target.(type) {
	case Kind:
		return t.Valid() && t.Code() == e.Code
	case *ProgramError:
		return t != nil && t.Code == e.Code
	}
	return false
}

// KindOf finds the custom failure inside err, either as a Kind or as a host
// ProgramError carrying a known code.
func KindOf(err error) (Kind, bool) {
	var kind Kind
	if errors.As(err, &kind) {
		return kind, kind.Valid()
	}
	var pe *ProgramError
	if errors.As(err, &pe) {
		return FromCode(pe.Code)
	}
	return 0, false
}
