package internal

import "errors"

// Built-in host runtime failures. Program specific failures live in programerr.
var (
	ErrNotEnoughAccountKeys      = errors.New("not enough account keys")
	ErrMissingRequiredSignature  = errors.New("missing required signature")
	ErrAccountAlreadyInitialized = errors.New("account already initialized")
	ErrUninitializedAccount      = errors.New("uninitialized account")
	ErrInvalidAccountData        = errors.New("invalid account data")
	ErrAccountNotWritable        = errors.New("account not writable")
	ErrIncorrectProgramID        = errors.New("incorrect program id")
	ErrInsufficientFunds         = errors.New("insufficient funds")
	ErrAccountNotFound           = errors.New("account not found")
	ErrDuplicateAccount          = errors.New("duplicate account")
	ErrTransactionConflict       = errors.New("transaction conflict, retry")
)
