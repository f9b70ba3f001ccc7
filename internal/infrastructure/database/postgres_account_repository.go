package database

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/blackcloro/escrow-program/internal"
	"github.com/blackcloro/escrow-program/internal/domain/account"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

type PostgresAccountRepository struct {
	db   *pgxpool.Pool
	q    querier
	inTx bool
}

func NewPostgresAccountRepository(db *pgxpool.Pool) *PostgresAccountRepository {
	return &PostgresAccountRepository{db: db, q: db}
}

// Lamports travel as text so the full u64 range survives NUMERIC(20,0).
const selectAccount = `SELECT address, owner, lamports::text, data FROM accounts`

func (r *PostgresAccountRepository) Get(ctx context.Context, address account.Pubkey) (*account.Account, error) {
	a, err := scanAccount(r.q.QueryRow(ctx, selectAccount+` WHERE address = $1`, address[:]))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", address, internal.ErrAccountNotFound)
		}
		return nil, err
	}
	return a, nil
}

func (r *PostgresAccountRepository) Create(ctx context.Context, a *account.Account) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO accounts (address, owner, lamports, data)
		VALUES ($1, $2, $3::numeric, $4)
	`, a.Address[:], a.Owner[:], strconv.FormatUint(a.Lamports, 10), dataOrEmpty(a.Data))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%s: %w", a.Address, internal.ErrDuplicateAccount)
		}
		return err
	}
	return nil
}

func (r *PostgresAccountRepository) Update(ctx context.Context, a *account.Account) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE accounts
		SET owner = $2, lamports = $3::numeric, data = $4, updated_at = now()
		WHERE address = $1
	`, a.Address[:], a.Owner[:], strconv.FormatUint(a.Lamports, 10), dataOrEmpty(a.Data))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", a.Address, internal.ErrAccountNotFound)
	}
	return nil
}

func (r *PostgresAccountRepository) Delete(ctx context.Context, address account.Pubkey) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM accounts WHERE address = $1`, address[:])
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", address, internal.ErrAccountNotFound)
	}
	return nil
}

func (r *PostgresAccountRepository) ListByOwner(ctx context.Context, owner account.Pubkey) ([]*account.Account, error) {
	rows, err := r.q.Query(ctx, selectAccount+` WHERE owner = $1 ORDER BY address`, owner[:])
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []*account.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return accounts, nil
}

// WithinTx runs fn inside a serializable transaction. Nested calls reuse the
// outer transaction.
func (r *PostgresAccountRepository) WithinTx(ctx context.Context, fn func(account.Repository) error) error {
	if r.inTx {
		return fn(r)
	}

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) // no-op after commit

	if err := fn(&PostgresAccountRepository{db: r.db, q: tx, inTx: true}); err != nil {
		return mapTxError(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return mapTxError(fmt.Errorf("failed to commit transaction: %w", err))
	}
	return nil
}

// mapTxError turns serialization failures and deadlocks into
// ErrTransactionConflict. Other errors pass through unchanged.
func mapTxError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && (pgErr.Code == "40001" || pgErr.Code == "40P01") {
		return fmt.Errorf("%s: %w", pgErr.Message, internal.ErrTransactionConflict)
	}
	return err
}

func scanAccount(row pgx.Row) (*account.Account, error) {
	var (
		a                    account.Account
		address, owner, data []byte
		lamports             string
	)
	if err := row.Scan(&address, &owner, &lamports, &data); err != nil {
		return nil, err
	}
	if len(address) != account.PubkeyLen || len(owner) != account.PubkeyLen {
		return nil, fmt.Errorf("stored key has wrong length: %w", internal.ErrInvalidAccountData)
	}
	n, err := strconv.ParseUint(lamports, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("stored lamports %q: %w", lamports, err)
	}
	copy(a.Address[:], address)
	copy(a.Owner[:], owner)
	a.Lamports = n
	if len(data) > 0 {
		a.Data = data
	}
	return &a, nil
}

func dataOrEmpty(data []byte) []byte {
	if data == nil {
		return []byte{}
	}
	return data
}
