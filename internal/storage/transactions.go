package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/bankfeed-dev/bankfeed/internal/model"
)

// TransactionRepository performs transaction lookups and inserts.
type TransactionRepository struct {
	q Querier
}

// Get returns the transaction with the given id, or ErrNotFound.
func (r *TransactionRepository) Get(ctx context.Context, id, userID uuid.UUID) (model.Transaction, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT id, owner_id, booked_at, valued_at, imported_at, description
		 FROM transactions WHERE id = ? AND owner_id = ?`,
		id.String(), userID.String())

	var (
		transaction      model.Transaction
		rawID, rawOwner  string
		booked           sql.NullString
		valued, imported sql.NullString
	)
	err := row.Scan(&rawID, &rawOwner, &booked, &valued, &imported, &transaction.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Transaction{}, ErrNotFound
	}
	if err != nil {
		return model.Transaction{}, fmt.Errorf("scanning transaction: %w", err)
	}

	if transaction.ID, err = uuid.Parse(rawID); err != nil {
		return model.Transaction{}, fmt.Errorf("parsing transaction id: %w", err)
	}
	if transaction.OwnerID, err = uuid.Parse(rawOwner); err != nil {
		return model.Transaction{}, fmt.Errorf("parsing transaction owner id: %w", err)
	}
	if transaction.BookedAt, err = parseTime(booked); err != nil {
		return model.Transaction{}, err
	}
	if transaction.ValuedAt, err = parseTime(valued); err != nil {
		return model.Transaction{}, err
	}
	if transaction.ImportedAt, err = parseTime(imported); err != nil {
		return model.Transaction{}, err
	}
	return transaction, nil
}

// Add inserts a transaction, assigning a fresh id if needed, and returns it.
func (r *TransactionRepository) Add(ctx context.Context, transaction model.Transaction) (model.Transaction, error) {
	if transaction.ID == uuid.Nil {
		transaction.ID = uuid.New()
	}

	_, err := r.q.ExecContext(ctx,
		`INSERT INTO transactions (id, owner_id, booked_at, valued_at, imported_at, description)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		transaction.ID.String(),
		transaction.OwnerID.String(),
		nullTime(transaction.BookedAt),
		nullTime(transaction.ValuedAt),
		nullTime(transaction.ImportedAt),
		transaction.Description,
	)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("inserting transaction: %w", err)
	}
	return r.Get(ctx, transaction.ID, transaction.OwnerID)
}
