/**
 * @description
 * Ledger entry model. A transaction row is written exactly once, atomically
 * with the balance update it represents, and is never mutated afterwards.
 */
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the signed effect of a ledger entry.
type TransactionType string

const (
	Deposit    TransactionType = "DEPOSIT"
	Withdrawal TransactionType = "WITHDRAWAL"
)

// Transaction is one append-only ledger entry for an account. Amount is
// always positive; the type carries the sign.
type Transaction struct {
	ID        string          `json:"id"`
	AccountID string          `json:"account_id"`
	Type      TransactionType `json:"type"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt time.Time       `json:"created_at"`
}

// Statement is one page of an account statement, newest entries first.
type Statement struct {
	Data       []Transaction `json:"data"`
	Total      int           `json:"total"`
	Page       int           `json:"page"`
	Limit      int           `json:"limit"`
	TotalPages int           `json:"total_pages"`
}
