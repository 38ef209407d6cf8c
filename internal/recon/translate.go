package recon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bankfeed-dev/bankfeed/internal/model"
	"github.com/bankfeed-dev/bankfeed/internal/storage"
	"github.com/bankfeed-dev/bankfeed/internal/txcode"
)

// Translator turns importable transactions into ledger entities, reusing
// existing transfers when a statement line was imported before.
type Translator struct {
	repos    *storage.Repositories
	resolver *Resolver
	log      *slog.Logger
	now      func() time.Time
}

// NewTranslator creates a Translator over the batch's repositories. now
// provides the import timestamp for newly created transactions.
func NewTranslator(repos *storage.Repositories, log *slog.Logger, now func() time.Time) *Translator {
	return &Translator{
		repos:    repos,
		resolver: NewResolver(repos, log),
		log:      log,
		now:      now,
	}
}

// Translation is the outcome of translating one statement line. Existing
// reports a re-import of an already reconciled movement; the entities are
// then the stored ones and nothing needs persisting. Otherwise the
// transaction and transfer are new and unsaved.
type Translation struct {
	Transaction model.Transaction
	Transfer    model.Transfer
	Existing    bool
}

// refMatch is the outcome of reference matching. backfillBankReference is
// set when the matched transfer lacks a bank reference the statement line
// supplies; the patch is applied by Translate, keeping matching itself free
// of side effects.
type refMatch struct {
	transfer              model.Transfer
	backfillBankReference bool
}

// Translate reconciles one statement line. First match wins: an existing
// transfer by bank reference, then by external reference, and only then a
// newly constructed transaction/transfer pair. bankCounterparty carries the
// feed adapter's per-entry override for movements whose counterparty is the
// bank but which carry no structured code.
func (t *Translator) Translate(
	ctx context.Context,
	builder *ResultBuilder,
	importable model.ImportableTransaction,
	reportAccount model.Account,
	bankAccount model.Account,
	user model.User,
	bankCounterparty bool,
) (Translation, error) {
	// Some banks pad reference fields; a whitespace-only reference is no
	// reference at all.
	importable.BankReference = strings.TrimSpace(importable.BankReference)
	importable.ExternalReference = strings.TrimSpace(importable.ExternalReference)

	match, err := t.matchExisting(ctx, importable, user)
	if err != nil {
		return Translation{}, err
	}
	if match != nil {
		if match.backfillBankReference {
			if err := t.repos.Transfers.SetBankReference(ctx, match.transfer.ID, importable.BankReference); err != nil {
				return Translation{}, err
			}
			match.transfer.BankReference = importable.BankReference
		}
		return t.existingTransfer(ctx, builder, match.transfer, user)
	}

	currency, err := t.repos.Currencies.FindByAlphabeticCode(ctx, importable.CurrencyCode)
	if errors.Is(err, storage.ErrNotFound) {
		return Translation{}, fmt.Errorf("%w %q", ErrUnknownCurrency, importable.CurrencyCode)
	}
	if err != nil {
		return Translation{}, fmt.Errorf("currency %q: %w", importable.CurrencyCode, err)
	}

	reportInCurrency, ok := reportAccount.InCurrency(currency.ID)
	if !ok {
		return Translation{}, fmt.Errorf("report account %s has no sub-account in %s", reportAccount.ID, currency.AlphabeticCode)
	}

	otherCurrency, err := t.repos.Currencies.FindByAlphabeticCode(ctx, importable.OtherCurrencyCode)
	if errors.Is(err, storage.ErrNotFound) {
		return Translation{}, fmt.Errorf("%w %q", ErrUnknownCurrency, importable.OtherCurrencyCode)
	}
	if err != nil {
		return Translation{}, fmt.Errorf("currency %q: %w", importable.OtherCurrencyCode, err)
	}

	otherAccount, err := t.resolveOtherAccount(ctx, builder, importable, user, bankAccount, currency, otherCurrency, bankCounterparty)
	if err != nil {
		return Translation{}, err
	}

	otherInCurrency, ok := otherAccount.InCurrency(otherCurrency.ID)
	if !ok {
		t.log.Debug("adding currency to account",
			"currency", otherCurrency.AlphabeticCode, "account", otherAccount.ID)
		otherInCurrency, err = t.repos.InCurrency.Add(ctx, model.AccountInCurrency{
			OwnerID:    user.ID,
			AccountID:  otherAccount.ID,
			CurrencyID: otherCurrency.ID,
		})
		if err != nil {
			return Translation{}, err
		}
	}

	transfer := model.Transfer{
		OwnerID:           user.ID,
		BankReference:     importable.BankReference,
		ExternalReference: importable.ExternalReference,
	}
	if importable.CreditDebit == model.Credit {
		// Money flows from the counterpart into the report account.
		transfer.SourceAccountID = otherInCurrency.ID
		transfer.SourceAmount = importable.OtherAmount
		transfer.TargetAccountID = reportInCurrency.ID
		transfer.TargetAmount = importable.Amount
	} else {
		transfer.SourceAccountID = reportInCurrency.ID
		transfer.SourceAmount = importable.Amount
		transfer.TargetAccountID = otherInCurrency.ID
		transfer.TargetAmount = importable.OtherAmount
	}

	transaction := model.Transaction{
		OwnerID:     user.ID,
		BookedAt:    importable.BookedAt,
		ValuedAt:    importable.ValuedAt,
		ImportedAt:  t.now(),
		Description: importable.Description,
	}

	return Translation{Transaction: transaction, Transfer: transfer}, nil
}

// matchExisting looks up the statement line by bank reference, then by
// external reference. A nil match means the line is a new movement.
func (t *Translator) matchExisting(ctx context.Context, importable model.ImportableTransaction, user model.User) (*refMatch, error) {
	bankReference := importable.BankReference
	if bankReference != "" {
		t.log.Debug("searching for transfer by bank reference", "reference", bankReference)
		transfer, err := t.repos.Transfers.FindByBankReference(ctx, bankReference, user.ID)
		if err == nil {
			t.log.Info("found transfer by bank reference", "reference", bankReference, "transfer", transfer.ID)
			return &refMatch{transfer: transfer}, nil
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
	}

	externalReference := importable.ExternalReference
	if externalReference == "" {
		return nil, nil
	}

	t.log.Debug("searching for transfers by external reference", "reference", externalReference)
	transfers, err := t.repos.Transfers.ListByExternalReference(ctx, externalReference, user.ID)
	if err != nil {
		return nil, err
	}

	if len(transfers) == 1 {
		transfer := transfers[0]
		t.log.Info("found transfer by external reference", "reference", externalReference, "transfer", transfer.ID)

		if transfer.BankReference != "" && transfer.BankReference != bankReference {
			// A distinct movement that happens to share an external
			// reference; fall through to creation.
			return nil, nil
		}

		return &refMatch{
			transfer:              transfer,
			backfillBankReference: transfer.BankReference == "" && bankReference != "",
		}, nil
	}

	if len(transfers) > 1 {
		// Ambiguity falls through to creation; flagged as a possible
		// source of duplicates pending a policy decision.
		t.log.Info("found multiple transfers by external reference",
			"reference", externalReference, "count", len(transfers))
	}
	return nil, nil
}

// resolveOtherAccount picks the counterpart account for a new movement:
// IBAN/name match, then the bank account when the movement is classified as
// bank-counterparty, then a freshly created named account, and finally the
// unidentified fallback.
func (t *Translator) resolveOtherAccount(
	ctx context.Context,
	builder *ResultBuilder,
	importable model.ImportableTransaction,
	user model.User,
	bankAccount model.Account,
	currency model.Currency,
	otherCurrency model.Currency,
	bankCounterparty bool,
) (model.Account, error) {
	account, err := t.resolver.findOtherAccount(ctx, importable.OtherIban, importable.OtherName, user)
	if err == nil {
		builder.AddAccount(account, false)
		return account, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return model.Account{}, err
	}

	isBank := bankCounterparty ||
		txcode.IsBankCounterparty(importable.DomainCode, importable.FamilyCode, importable.SubFamilyCode)
	if isBank {
		builder.AddAccount(bankAccount, false)
		return bankAccount, nil
	}

	if importable.OtherName != "" {
		account, err = t.repos.Accounts.AddWithCounterparty(ctx, model.Account{
			OwnerID:       user.ID,
			Name:          importable.OtherName,
			Iban:          importable.OtherIban,
			AccountNumber: importable.OtherIban,
			Currencies:    []model.AccountInCurrency{{OwnerID: user.ID, CurrencyID: otherCurrency.ID}},
		})
		if err != nil {
			return model.Account{}, fmt.Errorf("creating counterpart account %q: %w", importable.OtherName, err)
		}
		builder.AddAccount(account, true)
		return account, nil
	}

	account, created, err := t.resolver.unidentifiedAccount(ctx, user, currency)
	if err != nil {
		return model.Account{}, err
	}
	builder.AddAccount(account, created)
	return account, nil
}

// existingTransfer records the already reconciled movement's transaction
// and both of its accounts as pre-existing.
func (t *Translator) existingTransfer(ctx context.Context, builder *ResultBuilder, transfer model.Transfer, user model.User) (Translation, error) {
	transaction, err := t.repos.Transactions.Get(ctx, transfer.TransactionID, user.ID)
	if err != nil {
		return Translation{}, err
	}
	builder.AddTransaction(transaction, false)

	seen := map[uuid.UUID]struct{}{}
	for _, inCurrencyID := range []uuid.UUID{transfer.SourceAccountID, transfer.TargetAccountID} {
		if _, ok := seen[inCurrencyID]; ok {
			continue
		}
		seen[inCurrencyID] = struct{}{}

		inCurrency, err := t.repos.InCurrency.Get(ctx, inCurrencyID, user.ID)
		if err != nil {
			return Translation{}, err
		}
		account, err := t.repos.Accounts.Get(ctx, inCurrency.AccountID, user.ID)
		if err != nil {
			return Translation{}, err
		}
		builder.AddAccount(account, false)
	}

	return Translation{Transaction: transaction, Transfer: transfer, Existing: true}, nil
}
