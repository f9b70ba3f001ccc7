package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/blackcloro/escrow-program/internal"
	"github.com/blackcloro/escrow-program/internal/domain/account"
)

// Store keeps accounts in process memory. It is used when no database is
// configured and in tests.
type Store struct {
	mu       sync.Mutex
	accounts accountMap
}

func NewStore() *Store {
	return &Store{accounts: make(accountMap)}
}

func (s *Store) Get(ctx context.Context, address account.Pubkey) (*account.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accounts.Get(ctx, address)
}

func (s *Store) Create(ctx context.Context, a *account.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accounts.Create(ctx, a)
}

func (s *Store) Update(ctx context.Context, a *account.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accounts.Update(ctx, a)
}

func (s *Store) Delete(ctx context.Context, address account.Pubkey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accounts.Delete(ctx, address)
}

func (s *Store) ListByOwner(ctx context.Context, owner account.Pubkey) ([]*account.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accounts.ListByOwner(ctx, owner)
}

// WithinTx holds the store lock for the duration of fn, so transactions are
// serialized. Writes go to a copy that replaces the live map only on success.
func (s *Store) WithinTx(ctx context.Context, fn func(account.Repository) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	staged := make(accountMap, len(s.accounts))
	for k, v := range s.accounts {
		staged[k] = v
	}
	if err := fn(staged); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("transaction aborted: %w", err)
	}
	s.accounts = staged
	return nil
}

// accountMap is the unlocked repository used inside a transaction. Stored
// accounts are never mutated in place, only replaced, so a shallow map copy is
// enough to stage writes.
type accountMap map[account.Pubkey]*account.Account

func (m accountMap) Get(_ context.Context, address account.Pubkey) (*account.Account, error) {
	a, ok := m[address]
	if !ok {
		return nil, fmt.Errorf("%s: %w", address, internal.ErrAccountNotFound)
	}
	return a.Clone(), nil
}

func (m accountMap) Create(_ context.Context, a *account.Account) error {
	if _, ok := m[a.Address]; ok {
		return fmt.Errorf("%s: %w", a.Address, internal.ErrDuplicateAccount)
	}
	m[a.Address] = a.Clone()
	return nil
}

func (m accountMap) Update(_ context.Context, a *account.Account) error {
	if _, ok := m[a.Address]; !ok {
		return fmt.Errorf("%s: %w", a.Address, internal.ErrAccountNotFound)
	}
	m[a.Address] = a.Clone()
	return nil
}

func (m accountMap) Delete(_ context.Context, address account.Pubkey) error {
	if _, ok := m[address]; !ok {
		return fmt.Errorf("%s: %w", address, internal.ErrAccountNotFound)
	}
	delete(m, address)
	return nil
}

func (m accountMap) ListByOwner(_ context.Context, owner account.Pubkey) ([]*account.Account, error) {
	var accounts []*account.Account
	for _, a := range m {
		if a.Owner == owner {
			accounts = append(accounts, a.Clone())
		}
	}
	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].Address.String() < accounts[j].Address.String()
	})
	return accounts, nil
}

func (m accountMap) WithinTx(_ context.Context, fn func(account.Repository) error) error {
	return fn(m)
}
