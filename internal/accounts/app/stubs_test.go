package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/xinton/desafio-dev-api-rest/internal/accounts/domain"
	"github.com/xinton/desafio-dev-api-rest/internal/accounts/store"
)

// stubRepository is an in-memory store.Repository that mimics the atomic
// commit semantics of the PostgreSQL implementation, including the
// compare-and-swap balance check.
type stubRepository struct {
	accounts map[string]*domain.Account
	ledger   []domain.Transaction

	createCalls int
	commitCalls int

	failGet    error
	failCommit error

	// Hooks run before the guarded writes, standing in for a concurrent
	// writer that lands between the service's read and its commit.
	beforeCommit    func()
	beforeFlagWrite func()

	clock time.Time
}

func newStubRepository() *stubRepository {
	return &stubRepository{
		accounts: make(map[string]*domain.Account),
		clock:    time.Date(2026, time.September, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (r *stubRepository) seed(a *domain.Account) *domain.Account {
	copied := *a
	r.accounts[a.ID] = &copied
	return a
}

func (r *stubRepository) CreateAccount(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	r.createCalls++
	for _, existing := range r.accounts {
		if existing.HolderCPF == account.HolderCPF {
			return nil, store.ErrDuplicateAccountForHolder
		}
	}
	account.CreatedAt = r.clock
	account.UpdatedAt = r.clock
	return r.seed(account), nil
}

func (r *stubRepository) GetAccountByID(ctx context.Context, id string) (*domain.Account, error) {
	if r.failGet != nil {
		return nil, r.failGet
	}
	account, ok := r.accounts[id]
	if !ok {
		return nil, store.ErrAccountNotFound
	}
	copied := *account
	return &copied, nil
}

func (r *stubRepository) GetAccountByHolderCPF(ctx context.Context, cpf string) (*domain.Account, error) {
	if r.failGet != nil {
		return nil, r.failGet
	}
	for _, account := range r.accounts {
		if account.HolderCPF == cpf {
			copied := *account
			return &copied, nil
		}
	}
	return nil, store.ErrAccountNotFound
}

func (r *stubRepository) CloseAccount(ctx context.Context, id string) (*domain.Account, error) {
	if r.beforeFlagWrite != nil {
		r.beforeFlagWrite()
	}
	account, ok := r.accounts[id]
	if !ok {
		return nil, store.ErrAccountNotFound
	}
	if !account.Active || !account.Balance.IsZero() {
		return nil, store.ErrConcurrentModification
	}
	account.Active = false
	copied := *account
	return &copied, nil
}

func (r *stubRepository) SetBlocked(ctx context.Context, id string, blocked bool) (*domain.Account, error) {
	if r.beforeFlagWrite != nil {
		r.beforeFlagWrite()
	}
	account, ok := r.accounts[id]
	if !ok {
		return nil, store.ErrAccountNotFound
	}
	if !account.Active {
		return nil, store.ErrConcurrentModification
	}
	account.Blocked = blocked
	copied := *account
	return &copied, nil
}

func (r *stubRepository) CommitBalanceAndTransaction(ctx context.Context, accountID string, prevBalance, newBalance decimal.Decimal, txType domain.TransactionType, amount decimal.Decimal) (*domain.Transaction, error) {
	r.commitCalls++
	if r.failCommit != nil {
		return nil, r.failCommit
	}
	if r.beforeCommit != nil {
		r.beforeCommit()
	}
	account, ok := r.accounts[accountID]
	if !ok {
		return nil, store.ErrAccountNotFound
	}
	if !account.Balance.Equal(prevBalance) || !account.Active || account.Blocked {
		return nil, store.ErrConcurrentModification
	}
	account.Balance = newBalance

	entry := domain.Transaction{
		ID:        uuid.NewString(),
		AccountID: accountID,
		Type:      txType,
		Amount:    amount,
		CreatedAt: r.clock,
	}
	r.ledger = append(r.ledger, entry)
	return &entry, nil
}

func (r *stubRepository) SumWithdrawalsInWindow(ctx context.Context, accountID string, start, end time.Time) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, entry := range r.ledger {
		if entry.AccountID != accountID || entry.Type != domain.Withdrawal {
			continue
		}
		if entry.CreatedAt.Before(start) || !entry.CreatedAt.Before(end) {
			continue
		}
		total = total.Add(entry.Amount)
	}
	return total, nil
}

func (r *stubRepository) ListTransactions(ctx context.Context, accountID string, start, end time.Time, page, limit int) ([]domain.Transaction, int, error) {
	var matching []domain.Transaction
	for _, entry := range r.ledger {
		if entry.AccountID == accountID && !entry.CreatedAt.Before(start) && !entry.CreatedAt.After(end) {
			matching = append(matching, entry)
		}
	}
	total := len(matching)
	offset := (page - 1) * limit
	if offset >= total {
		return nil, total, nil
	}
	upper := offset + limit
	if upper > total {
		upper = total
	}
	return matching[offset:upper], total, nil
}

// stubCache records operations to assert invalidation behavior.
type stubCache struct {
	entries map[string][]byte
	deleted []string
}

func newStubCache() *stubCache {
	return &stubCache{entries: make(map[string][]byte)}
}

func (c *stubCache) Get(ctx context.Context, key string, dest interface{}) bool {
	data, ok := c.entries[key]
	if !ok {
		return false
	}
	return json.Unmarshal(data, dest) == nil
}

func (c *stubCache) SetBalance(ctx context.Context, key string, value interface{}) {
	c.store(key, value)
}

func (c *stubCache) SetStatement(ctx context.Context, key string, value interface{}) {
	c.store(key, value)
}

func (c *stubCache) store(key string, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	c.entries[key] = data
}

func (c *stubCache) Delete(ctx context.Context, key string) {
	c.deleted = append(c.deleted, key)
	delete(c.entries, key)
}

// stubHolders answers holder existence checks.
type stubHolders struct {
	exists bool
	err    error
}

func (h *stubHolders) HolderExists(ctx context.Context, cpf string) (bool, error) {
	return h.exists, h.err
}

var errStoreDown = errors.New("store unavailable")

func newTestService(repo *stubRepository, c *stubCache, holders *stubHolders) *Service {
	s := NewService(repo, c, holders, decimal.NewFromInt(2000), "0001")
	s.now = func() time.Time { return repo.clock }
	return s
}

// reduceLedger folds an account's full transaction history, starting from
// zero, into the balance it implies.
func reduceLedger(ledger []domain.Transaction, accountID string) (decimal.Decimal, error) {
	balance := decimal.Zero
	for _, entry := range ledger {
		if entry.AccountID != accountID {
			continue
		}
		switch entry.Type {
		case domain.Deposit:
			balance = balance.Add(entry.Amount)
		case domain.Withdrawal:
			balance = balance.Sub(entry.Amount)
		default:
			return decimal.Zero, fmt.Errorf("unknown transaction type %q", entry.Type)
		}
	}
	return balance, nil
}
