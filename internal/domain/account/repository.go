package account

import (
	"context"
)

type Repository interface {
	Get(ctx context.Context, address Pubkey) (*Account, error)
	Create(ctx context.Context, a *Account) error
	Update(ctx context.Context, a *Account) error
	Delete(ctx context.Context, address Pubkey) error
	ListByOwner(ctx context.Context, owner Pubkey) ([]*Account, error)
	// WithinTx runs fn against a repository whose writes are applied only if fn
	// returns nil.
	WithinTx(ctx context.Context, fn func(Repository) error) error
}
