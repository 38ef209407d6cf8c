package recon

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bankfeed-dev/bankfeed/internal/model"
	"github.com/bankfeed-dev/bankfeed/internal/storage"
)

// stubEntry carries an already adapted transaction plus the feed's
// bank-counterparty override, so tests exercise the reconciliation core
// without a concrete statement format.
type stubEntry struct {
	importable model.ImportableTransaction
	bank       bool
}

type stubFeed struct{}

func (stubFeed) Adapt(entry stubEntry) (model.ImportableTransaction, error) {
	return entry.importable, nil
}

func (stubFeed) BankCounterparty(entry stubEntry) bool {
	return entry.bank
}

var (
	testAccount = model.UserAccount{Iban: "LV97HABA0012345678910", CurrencyCode: "EUR"}
	testBank    = model.Bank{Name: "Swedbank AS", Bic: "HABALV22"}
	testTime    = time.Date(2022, 3, 5, 12, 0, 0, 0, time.UTC)
)

func newTestImporter(t *testing.T) (*Importer[stubEntry], *storage.Store, model.User) {
	t.Helper()

	store, err := storage.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	user, err := store.Repositories().Users.Add(context.Background(), "alice")
	require.NoError(t, err)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	importer := NewImporter[stubEntry](store, stubFeed{}, log, func() time.Time { return testTime })
	return importer, store, user
}

func entry(bankRef, externalRef string, amount string, direction model.CreditDebit) stubEntry {
	value := decimal.RequireFromString(amount)
	return stubEntry{importable: model.ImportableTransaction{
		BankReference:     bankRef,
		ExternalReference: externalRef,
		Amount:            value,
		CurrencyCode:      "EUR",
		CreditDebit:       direction,
		BookedAt:          time.Date(2022, 3, 1, 0, 0, 0, 0, time.UTC),
		OtherAmount:       value,
		OtherCurrencyCode: "EUR",
	}}
}

func createdCounts(result Result) (accounts, transactions, transfers int) {
	for _, a := range result.Accounts {
		if a.Created {
			accounts++
		}
	}
	for _, tx := range result.Transactions {
		if tx.Created {
			transactions++
		}
	}
	for _, tr := range result.Transfers {
		if tr.Created {
			transfers++
		}
	}
	return accounts, transactions, transfers
}

func TestImport_NewCounterparty(t *testing.T) {
	importer, store, user := newTestImporter(t)
	ctx := context.Background()

	e := entry("B1", "EXT-1", "45.90", model.Debit)
	e.importable.OtherName = "MAXIMA LATVIA SIA"
	e.importable.Description = "Groceries"

	result, err := importer.Import(ctx, testAccount, testBank, []stubEntry{e}, user)
	require.NoError(t, err)

	// Report account, bank account and the counterpart are all new.
	accounts, transactions, transfers := createdCounts(result)
	assert.Equal(t, 3, accounts)
	assert.Equal(t, 1, transactions)
	assert.Equal(t, 1, transfers)

	require.Len(t, result.Transfers, 1)
	transfer := result.Transfers[0].Transfer
	assert.Equal(t, "B1", transfer.BankReference)
	assert.Equal(t, "45.9", transfer.SourceAmount.String())

	// A debit flows out of the report account.
	report, err := store.Repositories().Accounts.FindByIban(ctx, testAccount.Iban, user.ID)
	require.NoError(t, err)
	assert.Equal(t, report.Currencies[0].ID, transfer.SourceAccountID)

	counterpart, err := store.Repositories().Accounts.FindByName(ctx, "MAXIMA LATVIA SIA", user.ID)
	require.NoError(t, err)
	assert.Equal(t, counterpart.Currencies[0].ID, transfer.TargetAccountID)

	transaction := result.Transactions[0].Transaction
	assert.Equal(t, "Groceries", transaction.Description)
	assert.True(t, transaction.ImportedAt.Equal(testTime))
}

func TestImport_CreditTargetsReportAccount(t *testing.T) {
	importer, store, user := newTestImporter(t)
	ctx := context.Background()

	e := entry("B1", "", "1500.00", model.Credit)
	e.importable.OtherName = "ACME LATVIA SIA"
	e.importable.OtherIban = "LV12BANK0000435195001"

	result, err := importer.Import(ctx, testAccount, testBank, []stubEntry{e}, user)
	require.NoError(t, err)

	report, err := store.Repositories().Accounts.FindByIban(ctx, testAccount.Iban, user.ID)
	require.NoError(t, err)

	require.Len(t, result.Transfers, 1)
	transfer := result.Transfers[0].Transfer
	assert.Equal(t, report.Currencies[0].ID, transfer.TargetAccountID)
	assert.Equal(t, "1500", transfer.TargetAmount.String())
}

func TestImport_Idempotent(t *testing.T) {
	importer, _, user := newTestImporter(t)
	ctx := context.Background()

	e := entry("B1", "EXT-1", "45.90", model.Debit)
	e.importable.OtherName = "MAXIMA LATVIA SIA"
	batch := []stubEntry{e}

	_, err := importer.Import(ctx, testAccount, testBank, batch, user)
	require.NoError(t, err)

	result, err := importer.Import(ctx, testAccount, testBank, batch, user)
	require.NoError(t, err)

	accounts, transactions, transfers := createdCounts(result)
	assert.Zero(t, accounts)
	assert.Zero(t, transactions)
	assert.Zero(t, transfers)

	// The existing movement is still reported, just not as new.
	require.Len(t, result.Transfers, 1)
	assert.False(t, result.Transfers[0].Created)
	require.Len(t, result.Transactions, 1)
}

func TestImport_BackfillsBankReference(t *testing.T) {
	importer, store, user := newTestImporter(t)
	ctx := context.Background()

	// First seen through a feed without bank references.
	first := entry("", "EXT-1", "45.90", model.Debit)
	first.importable.OtherName = "MAXIMA LATVIA SIA"
	_, err := importer.Import(ctx, testAccount, testBank, []stubEntry{first}, user)
	require.NoError(t, err)

	// Then again through one that supplies them.
	second := entry("B1", "EXT-1", "45.90", model.Debit)
	second.importable.OtherName = "MAXIMA LATVIA SIA"
	result, err := importer.Import(ctx, testAccount, testBank, []stubEntry{second}, user)
	require.NoError(t, err)

	_, _, transfers := createdCounts(result)
	assert.Zero(t, transfers)

	stored, err := store.Repositories().Transfers.FindByBankReference(ctx, "B1", user.ID)
	require.NoError(t, err)
	assert.Equal(t, "EXT-1", stored.ExternalReference)
	require.Len(t, result.Transfers, 1)
	assert.Equal(t, "B1", result.Transfers[0].Transfer.BankReference)
}

func TestImport_SharedExternalReferenceIsNewMovement(t *testing.T) {
	importer, store, user := newTestImporter(t)
	ctx := context.Background()

	first := entry("B1", "EXT-1", "45.90", model.Debit)
	first.importable.OtherName = "MAXIMA LATVIA SIA"
	_, err := importer.Import(ctx, testAccount, testBank, []stubEntry{first}, user)
	require.NoError(t, err)

	// Same external reference, different bank reference: a distinct movement.
	second := entry("B2", "EXT-1", "12.00", model.Debit)
	second.importable.OtherName = "MAXIMA LATVIA SIA"
	result, err := importer.Import(ctx, testAccount, testBank, []stubEntry{second}, user)
	require.NoError(t, err)

	_, _, transfers := createdCounts(result)
	assert.Equal(t, 1, transfers)

	stored, err := store.Repositories().Transfers.ListByExternalReference(ctx, "EXT-1", user.ID)
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

func TestImport_AmbiguousExternalReferenceIsNewMovement(t *testing.T) {
	importer, store, user := newTestImporter(t)
	ctx := context.Background()

	// Two distinct movements already share the external reference.
	for _, ref := range []string{"B1", "B2"} {
		e := entry(ref, "EXT-1", "45.90", model.Debit)
		e.importable.OtherName = "MAXIMA LATVIA SIA"
		_, err := importer.Import(ctx, testAccount, testBank, []stubEntry{e}, user)
		require.NoError(t, err)
	}

	// A third line with the same external reference cannot be matched to
	// either; it becomes a new movement.
	third := entry("B3", "EXT-1", "20.00", model.Debit)
	third.importable.OtherName = "MAXIMA LATVIA SIA"
	result, err := importer.Import(ctx, testAccount, testBank, []stubEntry{third}, user)
	require.NoError(t, err)

	_, _, transfers := createdCounts(result)
	assert.Equal(t, 1, transfers)

	stored, err := store.Repositories().Transfers.ListByExternalReference(ctx, "EXT-1", user.ID)
	require.NoError(t, err)
	assert.Len(t, stored, 3)
}

func TestImport_WhitespaceReferences(t *testing.T) {
	importer, store, user := newTestImporter(t)
	ctx := context.Background()

	// Padded-out reference fields carry no reference at all.
	e := entry("   ", " \t ", "10.00", model.Debit)
	e.importable.OtherName = "MAXIMA LATVIA SIA"

	result, err := importer.Import(ctx, testAccount, testBank, []stubEntry{e}, user)
	require.NoError(t, err)

	require.Len(t, result.Transfers, 1)
	assert.Empty(t, result.Transfers[0].Transfer.BankReference)
	assert.Empty(t, result.Transfers[0].Transfer.ExternalReference)

	_, err = store.Repositories().Transfers.FindByBankReference(ctx, "   ", user.ID)
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestImport_BankCounterpartyByCode(t *testing.T) {
	importer, store, user := newTestImporter(t)
	ctx := context.Background()

	e := entry("B1", "", "1.50", model.Debit)
	e.importable.DomainCode = "PMNT"
	e.importable.FamilyCode = "CCRD"
	e.importable.SubFamilyCode = "CHRG"

	result, err := importer.Import(ctx, testAccount, testBank, []stubEntry{e}, user)
	require.NoError(t, err)

	// Only the report and bank accounts exist; the fee targets the bank.
	accounts, _, _ := createdCounts(result)
	assert.Equal(t, 2, accounts)

	bank, err := store.Repositories().Accounts.FindByName(ctx, testBank.Name, user.ID)
	require.NoError(t, err)
	assert.Equal(t, bank.Currencies[0].ID, result.Transfers[0].Transfer.TargetAccountID)
}

func TestImport_BankCounterpartyByFeedOverride(t *testing.T) {
	importer, store, user := newTestImporter(t)
	ctx := context.Background()

	e := entry("B1", "", "1.50", model.Debit)
	e.bank = true

	result, err := importer.Import(ctx, testAccount, testBank, []stubEntry{e}, user)
	require.NoError(t, err)

	accounts, _, _ := createdCounts(result)
	assert.Equal(t, 2, accounts)

	bank, err := store.Repositories().Accounts.FindByName(ctx, testBank.Name, user.ID)
	require.NoError(t, err)
	assert.Equal(t, bank.Currencies[0].ID, result.Transfers[0].Transfer.TargetAccountID)
}

func TestImport_UnidentifiedFallback(t *testing.T) {
	importer, store, user := newTestImporter(t)
	ctx := context.Background()

	// No counterpart hints and no bank classification.
	e := entry("B1", "", "10.00", model.Debit)

	result, err := importer.Import(ctx, testAccount, testBank, []stubEntry{e}, user)
	require.NoError(t, err)

	unidentified, err := store.Repositories().Accounts.FindByName(ctx, model.UnidentifiedAccountName, user.ID)
	require.NoError(t, err)
	require.Len(t, unidentified.Currencies, 1)
	assert.Equal(t, unidentified.Currencies[0].ID, result.Transfers[0].Transfer.TargetAccountID)

	// The fallback is created once, then reused.
	rerun, err := importer.Import(ctx, testAccount, testBank, []stubEntry{e, entry("B2", "", "3.00", model.Debit)}, user)
	require.NoError(t, err)
	accounts, _, transfers := createdCounts(rerun)
	assert.Zero(t, accounts)
	assert.Equal(t, 1, transfers)
}

func TestImport_CounterpartCurrencyDiffers(t *testing.T) {
	importer, store, user := newTestImporter(t)
	ctx := context.Background()

	e := entry("B1", "", "54.50", model.Debit)
	e.importable.OtherAmount = decimal.RequireFromString("59.95")
	e.importable.OtherCurrencyCode = "USD"
	e.importable.OtherName = "AMAZON EU S.A R.L."

	result, err := importer.Import(ctx, testAccount, testBank, []stubEntry{e}, user)
	require.NoError(t, err)

	counterpart, err := store.Repositories().Accounts.FindByName(ctx, "AMAZON EU S.A R.L.", user.ID)
	require.NoError(t, err)
	require.Len(t, counterpart.Currencies, 1)

	transfer := result.Transfers[0].Transfer
	assert.Equal(t, counterpart.Currencies[0].ID, transfer.TargetAccountID)
	assert.Equal(t, "59.95", transfer.TargetAmount.String())
	assert.Equal(t, "54.5", transfer.SourceAmount.String())
}

func TestImport_UnknownCurrencyRollsBack(t *testing.T) {
	importer, store, user := newTestImporter(t)
	ctx := context.Background()

	e := entry("B1", "", "10.00", model.Debit)
	e.importable.CurrencyCode = "XXX"
	e.importable.OtherCurrencyCode = "XXX"

	_, err := importer.Import(ctx, testAccount, testBank, []stubEntry{e}, user)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownCurrency))

	// The batch rolled back; not even the report account survives.
	_, err = store.Repositories().Accounts.FindByIban(ctx, testAccount.Iban, user.ID)
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestImport_BankWithoutIdentifier(t *testing.T) {
	importer, _, user := newTestImporter(t)

	_, err := importer.Import(context.Background(), testAccount, model.Bank{}, nil, user)
	assert.True(t, errors.Is(err, ErrNoBankIdentifier))
}

func TestImport_MissingUserAccount(t *testing.T) {
	importer, _, user := newTestImporter(t)

	_, err := importer.Import(context.Background(), model.UserAccount{}, testBank, nil, user)
	assert.True(t, errors.Is(err, ErrMissingUserAccount))
}

func TestImport_Cancelled(t *testing.T) {
	importer, _, user := newTestImporter(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := importer.Import(ctx, testAccount, testBank, []stubEntry{entry("B1", "", "1.00", model.Debit)}, user)
	assert.Error(t, err)
}
