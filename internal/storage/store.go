// Package storage persists the ledger in SQLite and exposes the repository
// interfaces the reconciliation core depends on.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

// Querier is the subset of database/sql shared by *sql.DB and *sql.Tx.
// Repositories run against whichever the caller scopes them to.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store manages the SQLite database connection.
type Store struct {
	db *sql.DB
}

// Open opens the database at path, creating parent directories and the
// schema as needed. Foreign keys and WAL mode are enabled.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_foreign_keys=on&_journal_mode=WAL", path))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// OpenInMemory opens a private in-memory database, used by tests.
func OpenInMemory() (*Store, error) {
	db, err := sql.Open("sqlite3", "file::memory:?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening in-memory database: %w", err)
	}

	// A second connection would see a different empty database.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Repositories returns repositories running outside any transaction.
func (s *Store) Repositories() *Repositories {
	return NewRepositories(s.db)
}

// WithTx runs fn inside a single database transaction. The transaction is
// rolled back if fn returns an error and committed otherwise. One import
// batch maps to one WithTx call, so reference lookups inside the batch
// observe all earlier writes of the same batch.
func (s *Store) WithTx(ctx context.Context, fn func(repos *Repositories) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	if err := fn(NewRepositories(tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %s)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Repositories bundles all repositories over one query scope.
type Repositories struct {
	Users        *UserRepository
	Currencies   *CurrencyRepository
	Accounts     *AccountRepository
	InCurrency   *AccountInCurrencyRepository
	Transactions *TransactionRepository
	Transfers    *TransferRepository
}

// NewRepositories creates repositories running against q.
func NewRepositories(q Querier) *Repositories {
	return &Repositories{
		Users:        &UserRepository{q: q},
		Currencies:   &CurrencyRepository{q: q},
		Accounts:     &AccountRepository{q: q},
		InCurrency:   &AccountInCurrencyRepository{q: q},
		Transactions: &TransactionRepository{q: q},
		Transfers:    &TransferRepository{q: q},
	}
}
