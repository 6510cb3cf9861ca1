/**
 * @description
 * This file defines the Account aggregate, the core domain model of the
 * account-service. All balance and status mutations go through its methods;
 * no other component writes those fields directly.
 *
 * @notes
 * - Amounts and balances use shopspring/decimal so arithmetic is exact.
 * - Instances loaded from the database are plain struct scans; the store is
 *   trusted to hold records that already satisfy the invariants.
 */
package domain

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Account represents a checking account owned by a single holder.
type Account struct {
	ID        string          `json:"id"`
	HolderCPF string          `json:"holder_cpf"`
	Branch    string          `json:"branch"`
	Number    string          `json:"number"`
	Balance   decimal.Decimal `json:"balance"`
	Active    bool            `json:"active"`
	Blocked   bool            `json:"blocked"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// NewAccount creates a fresh account for a holder: zero balance, active,
// unblocked, with a generated id and an 8-digit account number. Number
// uniqueness within the branch is enforced by the store on insert.
func NewAccount(holderCPF, branch string) *Account {
	return &Account{
		ID:        uuid.NewString(),
		HolderCPF: holderCPF,
		Branch:    branch,
		Number:    GenerateAccountNumber(),
		Balance:   decimal.Zero,
		Active:    true,
		Blocked:   false,
	}
}

// GenerateAccountNumber draws a random 8-digit, zero-padded account number.
func GenerateAccountNumber() string {
	return fmt.Sprintf("%08d", rand.Intn(100000000))
}

// Deposit credits amount to the account balance.
func (a *Account) Deposit(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if !a.Active {
		return ErrInactiveAccount
	}
	if a.Blocked {
		return ErrBlockedAccount
	}
	a.Balance = a.Balance.Add(amount)
	return nil
}

// Withdraw debits amount from the account balance. withdrawnToday is the sum
// of this account's withdrawals inside the current daily window and is checked
// together with amount against dailyLimit. Check order is fixed: active,
// blocked, balance, daily limit.
func (a *Account) Withdraw(amount, withdrawnToday, dailyLimit decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if !a.Active {
		return ErrInactiveAccount
	}
	if a.Blocked {
		return ErrBlockedAccount
	}
	if a.Balance.LessThan(amount) {
		return ErrInsufficientBalance
	}
	if withdrawnToday.Add(amount).GreaterThan(dailyLimit) {
		return ErrDailyLimitExceeded
	}
	a.Balance = a.Balance.Sub(amount)
	return nil
}

// Close deactivates the account. Closing is terminal; it requires a zero
// balance and leaves the blocked flag as it was.
func (a *Account) Close() error {
	if !a.Active {
		return ErrAccountAlreadyClosed
	}
	if a.Balance.IsPositive() {
		return ErrPositiveBalance
	}
	a.Active = false
	return nil
}

// Block marks the account as blocked. Blocking an already blocked account is
// a no-op success.
func (a *Account) Block() error {
	if !a.Active {
		return ErrAccountAlreadyClosed
	}
	a.Blocked = true
	return nil
}

// Unblock clears the blocked flag. Idempotent, like Block.
func (a *Account) Unblock() error {
	if !a.Active {
		return ErrAccountAlreadyClosed
	}
	a.Blocked = false
	return nil
}
