package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bankfeed-dev/bankfeed/internal/model"
)

// TransferRepository performs transfer lookups, inserts and reference
// back-fill updates.
type TransferRepository struct {
	q Querier
}

const transferColumns = `id, owner_id, transaction_id, source_account_id, source_amount,
	target_account_id, target_amount, bank_reference, external_reference, ord`

// Get returns the transfer with the given id, or ErrNotFound.
func (r *TransferRepository) Get(ctx context.Context, id, userID uuid.UUID) (model.Transfer, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+transferColumns+` FROM transfers WHERE id = ? AND owner_id = ?`,
		id.String(), userID.String())
	return scanTransfer(row.Scan)
}

// FindByBankReference returns the transfer with the given bank-issued
// reference, or ErrNotFound. Bank references are unique per user.
func (r *TransferRepository) FindByBankReference(ctx context.Context, reference string, userID uuid.UUID) (model.Transfer, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+transferColumns+` FROM transfers WHERE bank_reference = ? AND owner_id = ?`,
		reference, userID.String())
	return scanTransfer(row.Scan)
}

// ListByExternalReference returns all transfers carrying the given
// inter-bank reference. Banks may reuse external references across legs, so
// zero, one or many transfers can match.
func (r *TransferRepository) ListByExternalReference(ctx context.Context, reference string, userID uuid.UUID) ([]model.Transfer, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+transferColumns+` FROM transfers WHERE external_reference = ? AND owner_id = ? ORDER BY id`,
		reference, userID.String())
	if err != nil {
		return nil, fmt.Errorf("listing transfers by external reference: %w", err)
	}
	defer rows.Close()

	var transfers []model.Transfer
	for rows.Next() {
		transfer, err := scanTransfer(rows.Scan)
		if err != nil {
			return nil, err
		}
		transfers = append(transfers, transfer)
	}
	return transfers, rows.Err()
}

// Add inserts a transfer, assigning a fresh id if needed, and returns it.
func (r *TransferRepository) Add(ctx context.Context, transfer model.Transfer) (model.Transfer, error) {
	if transfer.ID == uuid.Nil {
		transfer.ID = uuid.New()
	}

	_, err := r.q.ExecContext(ctx,
		`INSERT INTO transfers (id, owner_id, transaction_id, source_account_id, source_amount,
			target_account_id, target_amount, bank_reference, external_reference, ord)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		transfer.ID.String(),
		transfer.OwnerID.String(),
		transfer.TransactionID.String(),
		transfer.SourceAccountID.String(),
		transfer.SourceAmount.String(),
		transfer.TargetAccountID.String(),
		transfer.TargetAmount.String(),
		nullString(transfer.BankReference),
		nullString(transfer.ExternalReference),
		transfer.Order,
	)
	if err != nil {
		return model.Transfer{}, fmt.Errorf("inserting transfer: %w", err)
	}
	return r.Get(ctx, transfer.ID, transfer.OwnerID)
}

// SetBankReference back-fills the bank reference of an existing transfer.
// A previously set bank reference is never overwritten.
func (r *TransferRepository) SetBankReference(ctx context.Context, id uuid.UUID, reference string) error {
	result, err := r.q.ExecContext(ctx,
		`UPDATE transfers SET bank_reference = ? WHERE id = ? AND bank_reference IS NULL`,
		reference, id.String())
	if err != nil {
		return fmt.Errorf("setting bank reference: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("setting bank reference: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("transfer %s already has a bank reference", id)
	}
	return nil
}

func scanTransfer(scan func(dest ...any) error) (model.Transfer, error) {
	var (
		transfer                         model.Transfer
		rawID, rawOwner, rawTx           string
		rawSource, rawTarget             string
		rawSourceAmount, rawTargetAmount string
		bankReference, externalReference sql.NullString
	)

	err := scan(&rawID, &rawOwner, &rawTx, &rawSource, &rawSourceAmount,
		&rawTarget, &rawTargetAmount, &bankReference, &externalReference, &transfer.Order)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Transfer{}, ErrNotFound
	}
	if err != nil {
		return model.Transfer{}, fmt.Errorf("scanning transfer: %w", err)
	}

	if transfer.ID, err = uuid.Parse(rawID); err != nil {
		return model.Transfer{}, fmt.Errorf("parsing transfer id: %w", err)
	}
	if transfer.OwnerID, err = uuid.Parse(rawOwner); err != nil {
		return model.Transfer{}, fmt.Errorf("parsing transfer owner id: %w", err)
	}
	if transfer.TransactionID, err = uuid.Parse(rawTx); err != nil {
		return model.Transfer{}, fmt.Errorf("parsing transfer transaction id: %w", err)
	}
	if transfer.SourceAccountID, err = uuid.Parse(rawSource); err != nil {
		return model.Transfer{}, fmt.Errorf("parsing transfer source account id: %w", err)
	}
	if transfer.TargetAccountID, err = uuid.Parse(rawTarget); err != nil {
		return model.Transfer{}, fmt.Errorf("parsing transfer target account id: %w", err)
	}
	if transfer.SourceAmount, err = decimal.NewFromString(rawSourceAmount); err != nil {
		return model.Transfer{}, fmt.Errorf("parsing transfer source amount: %w", err)
	}
	if transfer.TargetAmount, err = decimal.NewFromString(rawTargetAmount); err != nil {
		return model.Transfer{}, fmt.Errorf("parsing transfer target amount: %w", err)
	}
	transfer.BankReference = bankReference.String
	transfer.ExternalReference = externalReference.String
	return transfer, nil
}
