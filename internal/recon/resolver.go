package recon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bankfeed-dev/bankfeed/internal/model"
	"github.com/bankfeed-dev/bankfeed/internal/storage"
)

// ErrNoBankIdentifier is returned when a bank has neither a name matching an
// existing account nor a BIC to create one from.
var ErrNoBankIdentifier = errors.New("could not find account for bank")

// ErrMissingUserAccount is returned when a statement does not identify the
// account it reports on.
var ErrMissingUserAccount = errors.New("user account requires an IBAN and a currency")

// ErrUnknownCurrency is returned when a statement carries a currency code
// the ledger does not know.
var ErrUnknownCurrency = errors.New("unknown currency")

// Resolver finds or creates the accounts an import batch needs. It runs
// inside the batch transaction, so accounts created for one entry are
// visible to later entries of the same batch.
type Resolver struct {
	repos *storage.Repositories
	log   *slog.Logger
}

// NewResolver creates a Resolver over the batch's repositories.
func NewResolver(repos *storage.Repositories, log *slog.Logger) *Resolver {
	return &Resolver{repos: repos, log: log}
}

// FindBankAccount finds or creates the account representing the servicing
// bank. Name match wins; otherwise the account is created from the BIC.
// A bank with neither identifier is an error, not a synthesized account.
func (r *Resolver) FindBankAccount(ctx context.Context, bank model.Bank, user model.User, currency model.Currency) (model.Account, bool, error) {
	if name := strings.TrimSpace(bank.Name); name != "" {
		r.log.Debug("searching for bank account by name", "name", name)
		account, err := r.repos.Accounts.FindByName(ctx, name, user.ID)
		if err == nil {
			r.log.Info("matched bank account by name", "name", name, "account", account.ID)
			return account, false, nil
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return model.Account{}, false, err
		}
	}

	bic := strings.TrimSpace(bank.Bic)
	if bic == "" {
		return model.Account{}, false, ErrNoBankIdentifier
	}

	r.log.Debug("searching for bank account by BIC", "bic", bic)
	account, err := r.repos.Accounts.FindByBic(ctx, bic, user.ID)
	if err == nil {
		r.log.Info("matched bank account by BIC", "bic", bic, "account", account.ID)
		return account, false, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return model.Account{}, false, err
	}

	r.log.Debug("no existing bank account, creating one", "bic", bic)
	account, err = r.repos.Accounts.AddWithCounterparty(ctx, model.Account{
		OwnerID:    user.ID,
		Name:       bic,
		Bic:        bic,
		Currencies: []model.AccountInCurrency{{OwnerID: user.ID, CurrencyID: currency.ID}},
	})
	if err != nil {
		return model.Account{}, false, fmt.Errorf("creating bank account: %w", err)
	}

	r.log.Info("created bank account", "account", account.ID, "name", account.Name)
	return account, true, nil
}

// FindUserAccount finds or creates the user's own account a statement
// reports on, identified by IBAN. The statement currency must resolve
// before any account is looked up.
func (r *Resolver) FindUserAccount(ctx context.Context, userAccount model.UserAccount, user model.User) (model.Account, model.Currency, bool, error) {
	iban := strings.TrimSpace(userAccount.Iban)
	currencyCode := strings.TrimSpace(userAccount.CurrencyCode)
	if iban == "" || currencyCode == "" {
		return model.Account{}, model.Currency{}, false, ErrMissingUserAccount
	}

	r.log.Debug("searching for currency", "code", currencyCode)
	currency, err := r.repos.Currencies.FindByAlphabeticCode(ctx, currencyCode)
	if errors.Is(err, storage.ErrNotFound) {
		return model.Account{}, model.Currency{}, false, fmt.Errorf("%w %q", ErrUnknownCurrency, currencyCode)
	}
	if err != nil {
		return model.Account{}, model.Currency{}, false, fmt.Errorf("currency %q: %w", currencyCode, err)
	}
	r.log.Debug("found currency", "code", currencyCode, "currency", currency.ID)

	r.log.Debug("searching for user account by IBAN", "iban", iban)
	account, err := r.repos.Accounts.FindByIban(ctx, iban, user.ID)
	if err == nil {
		r.log.Info("matched user account by IBAN", "iban", iban, "account", account.ID)
		return account, currency, false, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return model.Account{}, model.Currency{}, false, err
	}

	r.log.Debug("no existing user account, creating one", "iban", iban)
	account, err = r.repos.Accounts.Add(ctx, model.Account{
		OwnerID:        user.ID,
		CounterpartyID: user.CounterpartyID,
		Name:           iban,
		Iban:           iban,
		AccountNumber:  iban,
		Currencies:     []model.AccountInCurrency{{OwnerID: user.ID, CurrencyID: currency.ID}},
	})
	if err != nil {
		return model.Account{}, model.Currency{}, false, fmt.Errorf("creating user account: %w", err)
	}

	r.log.Info("created user account", "account", account.ID, "name", account.Name)
	return account, currency, true, nil
}

// findOtherAccount resolves a counterpart account by IBAN first, then by
// normalized name. A full miss returns ErrNotFound; the caller decides
// whether to synthesize an account or fall back.
func (r *Resolver) findOtherAccount(ctx context.Context, iban, name string, user model.User) (model.Account, error) {
	if iban = strings.TrimSpace(iban); iban != "" {
		account, err := r.repos.Accounts.FindByIban(ctx, iban, user.ID)
		if err == nil {
			return account, nil
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return model.Account{}, err
		}
	}

	if name = strings.TrimSpace(name); name != "" {
		account, err := r.repos.Accounts.FindByName(ctx, name, user.ID)
		if err == nil {
			return account, nil
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return model.Account{}, err
		}
	}

	return model.Account{}, storage.ErrNotFound
}

// unidentifiedAccount finds or lazily creates the per-user fallback account
// for movements whose counterparty cannot be resolved at all.
func (r *Resolver) unidentifiedAccount(ctx context.Context, user model.User, currency model.Currency) (model.Account, bool, error) {
	r.log.Debug("no matching counterpart account, using unidentified")
	account, err := r.repos.Accounts.FindByName(ctx, model.UnidentifiedAccountName, user.ID)
	if err == nil {
		return account, false, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return model.Account{}, false, err
	}

	r.log.Debug("unidentified account does not exist, creating it")
	account, err = r.repos.Accounts.AddWithCounterparty(ctx, model.Account{
		OwnerID:    user.ID,
		Name:       model.UnidentifiedAccountName,
		Currencies: []model.AccountInCurrency{{OwnerID: user.ID, CurrencyID: currency.ID}},
	})
	if err != nil {
		return model.Account{}, false, fmt.Errorf("creating unidentified account: %w", err)
	}

	r.log.Info("created unidentified account", "account", account.ID)
	return account, true, nil
}
