package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/bankfeed-dev/bankfeed/internal/model"
)

// AccountRepository performs account lookups and inserts. All lookups are
// scoped to an owning user.
type AccountRepository struct {
	q Querier
}

const accountColumns = `id, owner_id, counterparty_id, name, bic, iban, account_number`

// Get returns the account with the given id, including its per-currency
// sub-accounts.
func (r *AccountRepository) Get(ctx context.Context, id, userID uuid.UUID) (model.Account, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = ? AND owner_id = ?`,
		id.String(), userID.String())
	return r.scanAccount(ctx, row)
}

// FindByName returns the account with the given normalized name, or
// ErrNotFound. Matching is case-insensitive.
func (r *AccountRepository) FindByName(ctx context.Context, name string, userID uuid.UUID) (model.Account, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE normalized_name = ? AND owner_id = ?`,
		strings.ToUpper(name), userID.String())
	return r.scanAccount(ctx, row)
}

// FindByBic returns the account with the given BIC, or ErrNotFound.
func (r *AccountRepository) FindByBic(ctx context.Context, bic string, userID uuid.UUID) (model.Account, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE bic = ? AND owner_id = ?`,
		bic, userID.String())
	return r.scanAccount(ctx, row)
}

// FindByIban returns the account with the given IBAN, or ErrNotFound.
func (r *AccountRepository) FindByIban(ctx context.Context, iban string, userID uuid.UUID) (model.Account, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE iban = ? AND owner_id = ?`,
		iban, userID.String())
	return r.scanAccount(ctx, row)
}

// Add inserts an account and its currency sub-accounts under an existing
// counterparty, assigning fresh ids. It returns the stored account.
func (r *AccountRepository) Add(ctx context.Context, account model.Account) (model.Account, error) {
	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}

	_, err := r.q.ExecContext(ctx,
		`INSERT INTO accounts (id, owner_id, counterparty_id, name, normalized_name, bic, iban, account_number)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		account.ID.String(),
		account.OwnerID.String(),
		account.CounterpartyID.String(),
		account.Name,
		strings.ToUpper(account.Name),
		nullString(account.Bic),
		nullString(account.Iban),
		nullString(account.AccountNumber),
	)
	if err != nil {
		return model.Account{}, fmt.Errorf("inserting account %q: %w", account.Name, err)
	}

	for i := range account.Currencies {
		aic := &account.Currencies[i]
		aic.AccountID = account.ID
		aic.OwnerID = account.OwnerID
		if aic.ID == uuid.Nil {
			aic.ID = uuid.New()
		}
		if _, err := (&AccountInCurrencyRepository{q: r.q}).Add(ctx, *aic); err != nil {
			return model.Account{}, err
		}
	}

	return r.Get(ctx, account.ID, account.OwnerID)
}

// AddWithCounterparty creates a counterparty named after the account and
// inserts the account under it. Used for third-party accounts, which have
// no pre-existing counterparty.
func (r *AccountRepository) AddWithCounterparty(ctx context.Context, account model.Account) (model.Account, error) {
	counterpartyID := uuid.New()
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO counterparties (id, owner_id, name) VALUES (?, ?, ?)`,
		counterpartyID.String(), account.OwnerID.String(), account.Name)
	if err != nil {
		return model.Account{}, fmt.Errorf("inserting counterparty %q: %w", account.Name, err)
	}

	account.CounterpartyID = counterpartyID
	return r.Add(ctx, account)
}

func (r *AccountRepository) scanAccount(ctx context.Context, row *sql.Row) (model.Account, error) {
	var (
		account              model.Account
		id, owner, cp        string
		bic, iban, accNumber sql.NullString
	)

	err := row.Scan(&id, &owner, &cp, &account.Name, &bic, &iban, &accNumber)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Account{}, ErrNotFound
	}
	if err != nil {
		return model.Account{}, fmt.Errorf("scanning account: %w", err)
	}

	if account.ID, err = uuid.Parse(id); err != nil {
		return model.Account{}, fmt.Errorf("parsing account id: %w", err)
	}
	if account.OwnerID, err = uuid.Parse(owner); err != nil {
		return model.Account{}, fmt.Errorf("parsing account owner id: %w", err)
	}
	if account.CounterpartyID, err = uuid.Parse(cp); err != nil {
		return model.Account{}, fmt.Errorf("parsing account counterparty id: %w", err)
	}
	account.Bic = bic.String
	account.Iban = iban.String
	account.AccountNumber = accNumber.String

	account.Currencies, err = (&AccountInCurrencyRepository{q: r.q}).ListForAccount(ctx, account.ID)
	if err != nil {
		return model.Account{}, err
	}
	return account, nil
}

// AccountInCurrencyRepository performs per-currency sub-account lookups and
// inserts.
type AccountInCurrencyRepository struct {
	q Querier
}

// Get returns the sub-account with the given id, or ErrNotFound.
func (r *AccountInCurrencyRepository) Get(ctx context.Context, id, userID uuid.UUID) (model.AccountInCurrency, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT id, owner_id, account_id, currency_id FROM accounts_in_currency
		 WHERE id = ? AND owner_id = ?`,
		id.String(), userID.String())

	var rawID, rawOwner, rawAccount, rawCurrency string
	err := row.Scan(&rawID, &rawOwner, &rawAccount, &rawCurrency)
	if errors.Is(err, sql.ErrNoRows) {
		return model.AccountInCurrency{}, ErrNotFound
	}
	if err != nil {
		return model.AccountInCurrency{}, fmt.Errorf("scanning sub-account: %w", err)
	}
	return parseInCurrency(rawID, rawOwner, rawAccount, rawCurrency)
}

// Add inserts a sub-account, assigning a fresh id if needed.
func (r *AccountInCurrencyRepository) Add(ctx context.Context, aic model.AccountInCurrency) (model.AccountInCurrency, error) {
	if aic.ID == uuid.Nil {
		aic.ID = uuid.New()
	}

	_, err := r.q.ExecContext(ctx,
		`INSERT INTO accounts_in_currency (id, owner_id, account_id, currency_id) VALUES (?, ?, ?, ?)`,
		aic.ID.String(), aic.OwnerID.String(), aic.AccountID.String(), aic.CurrencyID.String())
	if err != nil {
		return model.AccountInCurrency{}, fmt.Errorf("inserting sub-account: %w", err)
	}
	return aic, nil
}

// ListForAccount returns all sub-accounts of one account.
func (r *AccountInCurrencyRepository) ListForAccount(ctx context.Context, accountID uuid.UUID) ([]model.AccountInCurrency, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT id, owner_id, account_id, currency_id FROM accounts_in_currency
		 WHERE account_id = ? ORDER BY id`,
		accountID.String())
	if err != nil {
		return nil, fmt.Errorf("listing sub-accounts: %w", err)
	}
	defer rows.Close()

	var result []model.AccountInCurrency
	for rows.Next() {
		var rawID, rawOwner, rawAccount, rawCurrency string
		if err := rows.Scan(&rawID, &rawOwner, &rawAccount, &rawCurrency); err != nil {
			return nil, fmt.Errorf("scanning sub-account: %w", err)
		}
		aic, err := parseInCurrency(rawID, rawOwner, rawAccount, rawCurrency)
		if err != nil {
			return nil, err
		}
		result = append(result, aic)
	}
	return result, rows.Err()
}

func parseInCurrency(rawID, rawOwner, rawAccount, rawCurrency string) (model.AccountInCurrency, error) {
	var (
		aic model.AccountInCurrency
		err error
	)
	if aic.ID, err = uuid.Parse(rawID); err != nil {
		return model.AccountInCurrency{}, fmt.Errorf("parsing sub-account id: %w", err)
	}
	if aic.OwnerID, err = uuid.Parse(rawOwner); err != nil {
		return model.AccountInCurrency{}, fmt.Errorf("parsing sub-account owner id: %w", err)
	}
	if aic.AccountID, err = uuid.Parse(rawAccount); err != nil {
		return model.AccountInCurrency{}, fmt.Errorf("parsing sub-account account id: %w", err)
	}
	if aic.CurrencyID, err = uuid.Parse(rawCurrency); err != nil {
		return model.AccountInCurrency{}, fmt.Errorf("parsing sub-account currency id: %w", err)
	}
	return aic, nil
}
