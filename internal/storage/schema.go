package storage

import (
	"fmt"

	"github.com/google/uuid"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id              TEXT PRIMARY KEY,
		counterparty_id TEXT NOT NULL,
		name            TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS counterparties (
		id       TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL,
		name     TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS currencies (
		id              TEXT PRIMARY KEY,
		alphabetic_code TEXT NOT NULL UNIQUE,
		numeric_code    INTEGER NOT NULL,
		name            TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS accounts (
		id              TEXT PRIMARY KEY,
		owner_id        TEXT NOT NULL,
		counterparty_id TEXT NOT NULL,
		name            TEXT NOT NULL,
		normalized_name TEXT NOT NULL,
		bic             TEXT,
		iban            TEXT,
		account_number  TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_accounts_owner_iban ON accounts (owner_id, iban)`,
	`CREATE INDEX IF NOT EXISTS idx_accounts_owner_name ON accounts (owner_id, normalized_name)`,
	`CREATE TABLE IF NOT EXISTS accounts_in_currency (
		id          TEXT PRIMARY KEY,
		owner_id    TEXT NOT NULL,
		account_id  TEXT NOT NULL REFERENCES accounts (id),
		currency_id TEXT NOT NULL REFERENCES currencies (id),
		UNIQUE (account_id, currency_id)
	)`,
	`CREATE TABLE IF NOT EXISTS transactions (
		id          TEXT PRIMARY KEY,
		owner_id    TEXT NOT NULL,
		booked_at   TEXT NOT NULL,
		valued_at   TEXT,
		imported_at TEXT,
		description TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS transfers (
		id                 TEXT PRIMARY KEY,
		owner_id           TEXT NOT NULL,
		transaction_id     TEXT NOT NULL REFERENCES transactions (id),
		source_account_id  TEXT NOT NULL REFERENCES accounts_in_currency (id),
		source_amount      TEXT NOT NULL,
		target_account_id  TEXT NOT NULL REFERENCES accounts_in_currency (id),
		target_amount      TEXT NOT NULL,
		bank_reference     TEXT,
		external_reference TEXT,
		ord                INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_transfers_bank_reference
		ON transfers (owner_id, bank_reference) WHERE bank_reference IS NOT NULL`,
	`CREATE INDEX IF NOT EXISTS idx_transfers_external_reference
		ON transfers (owner_id, external_reference)`,
}

// seedCurrencies is the reference data inserted on first open. Lookups are
// by alphabetic code, so the list only needs to cover currencies statements
// actually arrive in.
var seedCurrencies = []struct {
	alphabetic string
	numeric    int
	name       string
}{
	{"EUR", 978, "Euro"},
	{"USD", 840, "US Dollar"},
	{"GBP", 826, "Pound Sterling"},
	{"CHF", 756, "Swiss Franc"},
	{"SEK", 752, "Swedish Krona"},
	{"NOK", 578, "Norwegian Krone"},
	{"DKK", 208, "Danish Krone"},
	{"PLN", 985, "Zloty"},
	{"CZK", 203, "Czech Koruna"},
	{"JPY", 392, "Yen"},
}

func (s *Store) initSchema() error {
	for _, stmt := range schema {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("initializing schema: %w", err)
		}
	}

	for _, c := range seedCurrencies {
		_, err := s.db.Exec(
			`INSERT INTO currencies (id, alphabetic_code, numeric_code, name)
			 VALUES (?, ?, ?, ?)
			 ON CONFLICT (alphabetic_code) DO NOTHING`,
			uuid.NewString(), c.alphabetic, c.numeric, c.name,
		)
		if err != nil {
			return fmt.Errorf("seeding currency %s: %w", c.alphabetic, err)
		}
	}
	return nil
}
