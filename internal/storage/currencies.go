package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/bankfeed-dev/bankfeed/internal/model"
)

// CurrencyRepository looks up the immutable currency reference data.
type CurrencyRepository struct {
	q Querier
}

// FindByAlphabeticCode returns the currency with the given ISO 4217 code,
// or ErrNotFound.
func (r *CurrencyRepository) FindByAlphabeticCode(ctx context.Context, code string) (model.Currency, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT id, alphabetic_code, numeric_code, name FROM currencies WHERE alphabetic_code = ?`,
		code)

	var (
		currency model.Currency
		rawID    string
	)
	err := row.Scan(&rawID, &currency.AlphabeticCode, &currency.NumericCode, &currency.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Currency{}, ErrNotFound
	}
	if err != nil {
		return model.Currency{}, fmt.Errorf("scanning currency: %w", err)
	}

	if currency.ID, err = uuid.Parse(rawID); err != nil {
		return model.Currency{}, fmt.Errorf("parsing currency id: %w", err)
	}
	return currency, nil
}
