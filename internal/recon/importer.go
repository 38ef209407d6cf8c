package recon

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bankfeed-dev/bankfeed/internal/model"
	"github.com/bankfeed-dev/bankfeed/internal/storage"
)

// Feed adapts one statement format into importable transactions. A Feed is
// selected once per batch; BankCounterparty lets a feed flag movements whose
// counterparty is the bank in ways the structured-code heuristic cannot see.
type Feed[T any] interface {
	Adapt(native T) (model.ImportableTransaction, error)
	BankCounterparty(native T) bool
}

// Importer drives a full statement import for one feed format.
type Importer[T any] struct {
	store *storage.Store
	feed  Feed[T]
	log   *slog.Logger
	now   func() time.Time
}

// NewImporter creates an Importer. now provides import timestamps; pass
// time.Now outside tests.
func NewImporter[T any](store *storage.Store, feed Feed[T], log *slog.Logger, now func() time.Time) *Importer[T] {
	return &Importer[T]{store: store, feed: feed, log: log, now: now}
}

// Import reconciles all entries of one statement against the user's ledger
// inside a single database transaction. Entries are processed strictly in
// feed order, so later entries observe accounts and transfers created by
// earlier ones. On any error the whole batch rolls back; nothing is
// partially committed.
func (i *Importer[T]) Import(
	ctx context.Context,
	userAccount model.UserAccount,
	bank model.Bank,
	entries []T,
	user model.User,
) (Result, error) {
	var result Result

	err := i.store.WithTx(ctx, func(repos *storage.Repositories) error {
		translator := NewTranslator(repos, i.log, i.now)
		resolver := translator.resolver

		reportAccount, currency, createdAccount, err := resolver.FindUserAccount(ctx, userAccount, user)
		if err != nil {
			return err
		}
		i.log.Debug("matched report account", "account", reportAccount.Name)

		builder := NewResultBuilder(reportAccount, createdAccount)

		bankAccount, bankCreated, err := resolver.FindBankAccount(ctx, bank, user, currency)
		if err != nil {
			return err
		}
		builder.AddAccount(bankAccount, bankCreated)

		for index, entry := range entries {
			// Abort between entries on cancellation; an entry is never
			// left half translated.
			if err := ctx.Err(); err != nil {
				return err
			}

			importable, err := i.feed.Adapt(entry)
			if err != nil {
				return fmt.Errorf("entry %d: %w", index, err)
			}

			translation, err := translator.Translate(
				ctx, builder, importable, reportAccount, bankAccount, user,
				i.feed.BankCounterparty(entry))
			if err != nil {
				return fmt.Errorf("entry %d: %w", index, err)
			}

			if translation.Existing {
				builder.AddTransaction(translation.Transaction, false)
				builder.AddTransfer(translation.Transfer, false)
				continue
			}

			// Persist immediately so later entries of the batch can match
			// this movement by reference.
			transaction, err := repos.Transactions.Add(ctx, translation.Transaction)
			if err != nil {
				return fmt.Errorf("entry %d: %w", index, err)
			}

			translation.Transfer.TransactionID = transaction.ID
			transfer, err := repos.Transfers.Add(ctx, translation.Transfer)
			if err != nil {
				return fmt.Errorf("entry %d: %w", index, err)
			}

			builder.AddTransaction(transaction, true)
			builder.AddTransfer(transfer, true)
		}

		result = builder.Build()
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	return result, nil
}
