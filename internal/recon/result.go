// Package recon reconciles externally sourced statement entries against the
// ledger: it resolves the accounts a statement touches, deduplicates
// movements by bank and external reference, and creates canonical
// transaction/transfer pairs for movements not seen before.
package recon

import (
	"github.com/google/uuid"

	"github.com/bankfeed-dev/bankfeed/internal/model"
)

// AccountResult is one account touched by an import batch.
type AccountResult struct {
	Account model.Account
	Created bool
}

// TransactionResult is one transaction touched by an import batch.
type TransactionResult struct {
	Transaction model.Transaction
	Created     bool
}

// TransferResult is one transfer touched by an import batch.
type TransferResult struct {
	Transfer model.Transfer
	Created  bool
}

// Result reports everything one import batch touched, each entity flagged
// new-vs-existing. It has no effect on reconciliation itself.
type Result struct {
	Accounts     []AccountResult
	Transactions []TransactionResult
	Transfers    []TransferResult
}

// ResultBuilder accumulates the entities an import batch touches,
// de-duplicated by entity id. The first report of an entity wins; re-adding
// an already recorded entity is a no-op.
type ResultBuilder struct {
	accounts     map[uuid.UUID]int
	transactions map[uuid.UUID]int
	transfers    map[uuid.UUID]int
	result       Result
}

// NewResultBuilder creates a builder with the report account recorded.
func NewResultBuilder(reportAccount model.Account, created bool) *ResultBuilder {
	b := &ResultBuilder{
		accounts:     make(map[uuid.UUID]int),
		transactions: make(map[uuid.UUID]int),
		transfers:    make(map[uuid.UUID]int),
	}
	b.AddAccount(reportAccount, created)
	return b
}

// AddAccount records a touched account.
func (b *ResultBuilder) AddAccount(account model.Account, created bool) {
	if _, ok := b.accounts[account.ID]; ok {
		return
	}
	b.accounts[account.ID] = len(b.result.Accounts)
	b.result.Accounts = append(b.result.Accounts, AccountResult{Account: account, Created: created})
}

// AddTransaction records a touched transaction.
func (b *ResultBuilder) AddTransaction(transaction model.Transaction, created bool) {
	if _, ok := b.transactions[transaction.ID]; ok {
		return
	}
	b.transactions[transaction.ID] = len(b.result.Transactions)
	b.result.Transactions = append(b.result.Transactions, TransactionResult{Transaction: transaction, Created: created})
}

// AddTransfer records a touched transfer.
func (b *ResultBuilder) AddTransfer(transfer model.Transfer, created bool) {
	if _, ok := b.transfers[transfer.ID]; ok {
		return
	}
	b.transfers[transfer.ID] = len(b.result.Transfers)
	b.result.Transfers = append(b.result.Transfers, TransferResult{Transfer: transfer, Created: created})
}

// Build returns the accumulated result.
func (b *ResultBuilder) Build() Result {
	return b.result
}
