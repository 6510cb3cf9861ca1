package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func dec(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func activeAccount(balance int64) *Account {
	a := NewAccount("52998224725", "0001")
	a.Balance = dec(balance)
	return a
}

func TestNewAccount(t *testing.T) {
	a := NewAccount("52998224725", "0001")

	if a.ID == "" {
		t.Fatal("expected a generated id")
	}
	if len(a.Number) != 8 {
		t.Fatalf("expected an 8-digit account number, got %q", a.Number)
	}
	if !a.Balance.IsZero() {
		t.Fatalf("expected zero starting balance, got %s", a.Balance)
	}
	if !a.Active || a.Blocked {
		t.Fatalf("expected active and unblocked, got active=%v blocked=%v", a.Active, a.Blocked)
	}
}

func TestDeposit(t *testing.T) {
	tests := []struct {
		name        string
		account     *Account
		amount      int64
		wantErr     error
		wantBalance int64
	}{
		{
			name:        "credits a positive amount",
			account:     activeAccount(100),
			amount:      50,
			wantBalance: 150,
		},
		{
			name:        "rejects zero amount",
			account:     activeAccount(100),
			amount:      0,
			wantErr:     ErrInvalidAmount,
			wantBalance: 100,
		},
		{
			name:        "rejects negative amount",
			account:     activeAccount(100),
			amount:      -10,
			wantErr:     ErrInvalidAmount,
			wantBalance: 100,
		},
		{
			name: "rejects inactive account",
			account: func() *Account {
				a := activeAccount(0)
				a.Active = false
				return a
			}(),
			amount:      1,
			wantErr:     ErrInactiveAccount,
			wantBalance: 0,
		},
		{
			name: "rejects blocked account",
			account: func() *Account {
				a := activeAccount(100)
				a.Blocked = true
				return a
			}(),
			amount:      1,
			wantErr:     ErrBlockedAccount,
			wantBalance: 100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.account.Deposit(dec(tt.amount))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
			if !tt.account.Balance.Equal(dec(tt.wantBalance)) {
				t.Fatalf("expected balance %d, got %s", tt.wantBalance, tt.account.Balance)
			}
		})
	}
}

func TestWithdraw(t *testing.T) {
	tests := []struct {
		name           string
		account        *Account
		amount         int64
		withdrawnToday int64
		dailyLimit     int64
		wantErr        error
		wantBalance    int64
	}{
		{
			name:        "debits within balance and limit",
			account:     activeAccount(1000),
			amount:      400,
			dailyLimit:  2000,
			wantBalance: 600,
		},
		{
			name:        "rejects non-positive amount",
			account:     activeAccount(1000),
			amount:      0,
			dailyLimit:  2000,
			wantErr:     ErrInvalidAmount,
			wantBalance: 1000,
		},
		{
			name: "inactive account checked before balance",
			account: func() *Account {
				a := activeAccount(0)
				a.Active = false
				return a
			}(),
			amount:      100,
			dailyLimit:  2000,
			wantErr:     ErrInactiveAccount,
			wantBalance: 0,
		},
		{
			name: "blocked account checked before balance",
			account: func() *Account {
				a := activeAccount(10)
				a.Blocked = true
				return a
			}(),
			amount:      100,
			dailyLimit:  2000,
			wantErr:     ErrBlockedAccount,
			wantBalance: 10,
		},
		{
			name:        "insufficient balance leaves balance untouched",
			account:     activeAccount(100),
			amount:      150,
			dailyLimit:  2000,
			wantErr:     ErrInsufficientBalance,
			wantBalance: 100,
		},
		{
			name:           "insufficient balance wins over daily limit",
			account:        activeAccount(100),
			amount:         150,
			withdrawnToday: 2000,
			dailyLimit:     2000,
			wantErr:        ErrInsufficientBalance,
			wantBalance:    100,
		},
		{
			name:           "daily limit exceeded even with sufficient balance",
			account:        activeAccount(5000),
			amount:         600,
			withdrawnToday: 1500,
			dailyLimit:     2000,
			wantErr:        ErrDailyLimitExceeded,
			wantBalance:    5000,
		},
		{
			name:           "withdrawal exactly at the limit passes",
			account:        activeAccount(5000),
			amount:         500,
			withdrawnToday: 1500,
			dailyLimit:     2000,
			wantBalance:    4500,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.account.Withdraw(dec(tt.amount), dec(tt.withdrawnToday), dec(tt.dailyLimit))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
			if !tt.account.Balance.Equal(dec(tt.wantBalance)) {
				t.Fatalf("expected balance %d, got %s", tt.wantBalance, tt.account.Balance)
			}
		})
	}
}

func TestWithdrawDailyLimitSequence(t *testing.T) {
	// Two withdrawals on the same day: the first fits the 2000 limit, the
	// second would push the daily total to 2100 and must be rejected.
	account := activeAccount(2000)
	limit := dec(2000)

	if err := account.Withdraw(dec(1500), decimal.Zero, limit); err != nil {
		t.Fatalf("first withdrawal failed: %v", err)
	}
	if !account.Balance.Equal(dec(500)) {
		t.Fatalf("expected balance 500, got %s", account.Balance)
	}

	err := account.Withdraw(dec(600), dec(1500), limit)
	if !errors.Is(err, ErrDailyLimitExceeded) {
		t.Fatalf("expected ErrDailyLimitExceeded, got %v", err)
	}
	if !account.Balance.Equal(dec(500)) {
		t.Fatalf("balance must be unchanged after rejection, got %s", account.Balance)
	}
}

func TestClose(t *testing.T) {
	t.Run("closes an active zero-balance account", func(t *testing.T) {
		a := activeAccount(0)
		a.Blocked = true
		if err := a.Close(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if a.Active {
			t.Fatal("expected account to be inactive")
		}
		if !a.Blocked {
			t.Fatal("closing must not clear the blocked flag")
		}
	})

	t.Run("rejects positive balance", func(t *testing.T) {
		a := activeAccount(1)
		err := a.Close()
		if !errors.Is(err, ErrPositiveBalance) {
			t.Fatalf("expected ErrPositiveBalance, got %v", err)
		}
		if !a.Active {
			t.Fatal("account must stay active")
		}
	})

	t.Run("rejects an already closed account", func(t *testing.T) {
		a := activeAccount(0)
		a.Active = false
		if err := a.Close(); !errors.Is(err, ErrAccountAlreadyClosed) {
			t.Fatalf("expected ErrAccountAlreadyClosed, got %v", err)
		}
	})

	t.Run("deposit after close is rejected", func(t *testing.T) {
		a := activeAccount(0)
		if err := a.Close(); err != nil {
			t.Fatalf("close failed: %v", err)
		}
		if err := a.Deposit(dec(1)); !errors.Is(err, ErrInactiveAccount) {
			t.Fatalf("expected ErrInactiveAccount, got %v", err)
		}
	})
}

func TestBlockUnblock(t *testing.T) {
	t.Run("block and unblock are idempotent", func(t *testing.T) {
		a := activeAccount(100)
		for i := 0; i < 2; i++ {
			if err := a.Block(); err != nil {
				t.Fatalf("block %d failed: %v", i, err)
			}
			if !a.Blocked {
				t.Fatal("expected blocked")
			}
		}
		for i := 0; i < 2; i++ {
			if err := a.Unblock(); err != nil {
				t.Fatalf("unblock %d failed: %v", i, err)
			}
			if a.Blocked {
				t.Fatal("expected unblocked")
			}
		}
	})

	t.Run("closed account cannot be blocked or unblocked", func(t *testing.T) {
		a := activeAccount(0)
		a.Active = false
		if err := a.Block(); !errors.Is(err, ErrAccountAlreadyClosed) {
			t.Fatalf("expected ErrAccountAlreadyClosed from Block, got %v", err)
		}
		if err := a.Unblock(); !errors.Is(err, ErrAccountAlreadyClosed) {
			t.Fatalf("expected ErrAccountAlreadyClosed from Unblock, got %v", err)
		}
	})
}
