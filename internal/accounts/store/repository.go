/**
 * @description
 * This file defines the interface for the account-service data access layer.
 * The application service and the event handler depend on this interface, not
 * on the concrete PostgreSQL implementation, which keeps them testable with
 * in-memory stubs.
 */
package store

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xinton/desafio-dev-api-rest/internal/accounts/domain"
)

// Repository defines the contract for account and ledger persistence.
type Repository interface {
	CreateAccount(ctx context.Context, account *domain.Account) (*domain.Account, error)
	GetAccountByID(ctx context.Context, id string) (*domain.Account, error)
	GetAccountByHolderCPF(ctx context.Context, cpf string) (*domain.Account, error)

	// CloseAccount marks an account inactive. The update only matches a row
	// that is still active with a zero balance; a row that changed since the
	// caller validated it fails with ErrConcurrentModification.
	CloseAccount(ctx context.Context, id string) (*domain.Account, error)

	// SetBlocked persists the blocked flag. The update only matches an
	// active row, so a concurrently closed account stays terminal and the
	// call fails with ErrConcurrentModification.
	SetBlocked(ctx context.Context, id string, blocked bool) (*domain.Account, error)

	// CommitBalanceAndTransaction writes the new balance and appends the
	// matching ledger entry as a single atomic unit. prevBalance is the
	// balance the caller read before mutating; the store refuses the commit
	// with ErrConcurrentModification if the row no longer holds that value
	// or was closed or blocked since the caller read it.
	CommitBalanceAndTransaction(ctx context.Context, accountID string, prevBalance, newBalance decimal.Decimal, txType domain.TransactionType, amount decimal.Decimal) (*domain.Transaction, error)

	// SumWithdrawalsInWindow sums WITHDRAWAL amounts with created_at in the
	// half-open interval [start, end).
	SumWithdrawalsInWindow(ctx context.Context, accountID string, start, end time.Time) (decimal.Decimal, error)

	// ListTransactions returns one page of ledger entries with created_at in
	// [start, end], newest first, plus the total row count for the window.
	ListTransactions(ctx context.Context, accountID string, start, end time.Time, page, limit int) ([]domain.Transaction, int, error)
}
