/**
 * @description
 * This file contains the application service of the account-service. It
 * orchestrates each operation as load -> aggregate behavior -> atomic persist
 * -> cache invalidation, translating store sentinels into domain failures so
 * the API layer only ever deals with one error vocabulary.
 *
 * A rejected aggregate behavior always short-circuits before any write; the
 * store commit step is only reached with an already-validated mutation.
 */
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xinton/desafio-dev-api-rest/internal/accounts/cache"
	"github.com/xinton/desafio-dev-api-rest/internal/accounts/domain"
	"github.com/xinton/desafio-dev-api-rest/internal/accounts/store"
)

// BalanceCache is the subset of the cache used by the service. Implemented by
// cache.Cache; stubbed in tests.
type BalanceCache interface {
	Get(ctx context.Context, key string, dest interface{}) bool
	SetBalance(ctx context.Context, key string, value interface{})
	SetStatement(ctx context.Context, key string, value interface{})
	Delete(ctx context.Context, key string)
}

// HolderDirectory answers whether a holder is registered. Implemented by
// holderclient.Client.
type HolderDirectory interface {
	HolderExists(ctx context.Context, cpf string) (bool, error)
}

// BalanceView is the cached and returned shape of a balance query.
type BalanceView struct {
	Balance decimal.Decimal `json:"balance"`
}

// Service orchestrates account lifecycle, money movement and statements.
type Service struct {
	repo       store.Repository
	cache      BalanceCache
	holders    HolderDirectory
	dailyLimit decimal.Decimal
	branch     string
	now        func() time.Time
}

// NewService creates the account application service. branch is the branch
// code used when a create request does not specify one.
func NewService(repo store.Repository, c BalanceCache, holders HolderDirectory, dailyLimit decimal.Decimal, branch string) *Service {
	return &Service{
		repo:       repo,
		cache:      c,
		holders:    holders,
		dailyLimit: dailyLimit,
		branch:     branch,
		now:        time.Now,
	}
}

func (s *Service) loadAccount(ctx context.Context, id string) (*domain.Account, error) {
	account, err := s.repo.GetAccountByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrAccountNotFound) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	return account, nil
}

// CreateAccount opens an account for a registered holder. The holder-service
// is consulted first; a holder may own at most one account.
func (s *Service) CreateAccount(ctx context.Context, holderCPF, branch string) (*domain.Account, error) {
	log.Printf("Starting account creation for holder %s", holderCPF)

	exists, err := s.holders.HolderExists(ctx, holderCPF)
	if err != nil {
		return nil, fmt.Errorf("holder lookup failed: %w", err)
	}
	if !exists {
		return nil, domain.ErrHolderNotFound
	}

	if branch == "" {
		branch = s.branch
	}
	return s.insertAccount(ctx, holderCPF, branch)
}

// ProvisionAccount creates an account in response to a holder_created event.
// The event itself proves the holder exists, so no holder lookup happens, and
// an already-provisioned holder is a no-op success so duplicate deliveries
// have no effect.
func (s *Service) ProvisionAccount(ctx context.Context, holderCPF string) (*domain.Account, error) {
	existing, err := s.repo.GetAccountByHolderCPF(ctx, holderCPF)
	if err == nil {
		log.Printf("Holder %s already has account %s, skipping provisioning", holderCPF, existing.ID)
		return existing, nil
	}
	if !errors.Is(err, store.ErrAccountNotFound) {
		return nil, err
	}

	account, err := s.insertAccount(ctx, holderCPF, s.branch)
	if errors.Is(err, domain.ErrDuplicateAccount) {
		// Lost the race against a concurrent delivery; the account is there.
		return s.repo.GetAccountByHolderCPF(ctx, holderCPF)
	}
	return account, err
}

func (s *Service) insertAccount(ctx context.Context, holderCPF, branch string) (*domain.Account, error) {
	created, err := s.repo.CreateAccount(ctx, domain.NewAccount(holderCPF, branch))
	if err != nil {
		if errors.Is(err, store.ErrDuplicateAccountForHolder) {
			return nil, domain.ErrDuplicateAccount
		}
		return nil, err
	}
	log.Printf("Account %s created for holder %s", created.ID, created.HolderCPF)
	return created, nil
}

// GetAccount returns one account by id.
func (s *Service) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return s.loadAccount(ctx, id)
}

// Close deactivates an account. Only an active account with a zero balance
// can be closed; closing is terminal. The store re-checks both conditions at
// write time, so a deposit racing the close leaves the account open.
func (s *Service) Close(ctx context.Context, id string) (*domain.Account, error) {
	account, err := s.loadAccount(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := account.Close(); err != nil {
		return nil, err
	}
	closed, err := s.repo.CloseAccount(ctx, id)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return closed, nil
}

// Block sets the blocked flag on an active account.
func (s *Service) Block(ctx context.Context, id string) (*domain.Account, error) {
	return s.setBlocked(ctx, id, (*domain.Account).Block)
}

// Unblock clears the blocked flag on an active account.
func (s *Service) Unblock(ctx context.Context, id string) (*domain.Account, error) {
	return s.setBlocked(ctx, id, (*domain.Account).Unblock)
}

func (s *Service) setBlocked(ctx context.Context, id string, mutate func(*domain.Account) error) (*domain.Account, error) {
	account, err := s.loadAccount(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := mutate(account); err != nil {
		return nil, err
	}
	updated, err := s.repo.SetBlocked(ctx, id, account.Blocked)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return updated, nil
}

// mapStoreError translates store sentinels into the domain error vocabulary.
func mapStoreError(err error) error {
	switch {
	case errors.Is(err, store.ErrAccountNotFound):
		return domain.ErrAccountNotFound
	case errors.Is(err, store.ErrConcurrentModification):
		return domain.ErrConcurrentUpdate
	}
	return err
}

// Deposit credits amount to an account and appends the DEPOSIT ledger entry
// atomically, then drops the cached balance before returning.
func (s *Service) Deposit(ctx context.Context, id string, amount decimal.Decimal) (*domain.Account, error) {
	account, err := s.loadAccount(ctx, id)
	if err != nil {
		return nil, err
	}

	prev := account.Balance
	if err := account.Deposit(amount); err != nil {
		log.Printf("Deposit on account %s rejected: %v", id, err)
		return nil, err
	}

	return s.commit(ctx, account, prev, domain.Deposit, amount)
}

// Withdraw debits amount from an account, enforcing balance and the daily
// withdrawal ceiling, appends the WITHDRAWAL ledger entry atomically and
// drops the cached balance before returning.
func (s *Service) Withdraw(ctx context.Context, id string, amount decimal.Decimal) (*domain.Account, error) {
	account, err := s.loadAccount(ctx, id)
	if err != nil {
		return nil, err
	}

	start, end := withdrawalWindow(s.now())
	withdrawnToday, err := s.repo.SumWithdrawalsInWindow(ctx, id, start, end)
	if err != nil {
		return nil, err
	}

	prev := account.Balance
	if err := account.Withdraw(amount, withdrawnToday, s.dailyLimit); err != nil {
		log.Printf("Withdrawal on account %s rejected: %v", id, err)
		return nil, err
	}

	return s.commit(ctx, account, prev, domain.Withdrawal, amount)
}

func (s *Service) commit(ctx context.Context, account *domain.Account, prevBalance decimal.Decimal, txType domain.TransactionType, amount decimal.Decimal) (*domain.Account, error) {
	_, err := s.repo.CommitBalanceAndTransaction(ctx, account.ID, prevBalance, account.Balance, txType, amount)
	if err != nil {
		return nil, mapStoreError(err)
	}

	s.cache.Delete(ctx, cache.BalanceKey(account.ID))
	log.Printf("%s of %s on account %s committed, new balance %s", txType, amount, account.ID, account.Balance)
	return account, nil
}

// GetBalance returns the current balance, read through the cache.
func (s *Service) GetBalance(ctx context.Context, id string) (*BalanceView, error) {
	key := cache.BalanceKey(id)

	var cached BalanceView
	if s.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	account, err := s.loadAccount(ctx, id)
	if err != nil {
		return nil, err
	}

	view := &BalanceView{Balance: account.Balance}
	s.cache.SetBalance(ctx, key, view)
	return view, nil
}

// statementDateLayout is the accepted format of statement window bounds.
const statementDateLayout = "2006-01-02"

// GetStatement returns one page of an account's ledger, newest first, read
// through the statement cache. startDate and endDate are optional YYYY-MM-DD
// bounds; an empty start means the beginning of time and an empty end means
// now.
func (s *Service) GetStatement(ctx context.Context, id, startDate, endDate string, page, limit int) (*domain.Statement, error) {
	if _, err := s.loadAccount(ctx, id); err != nil {
		return nil, err
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	key := cache.StatementKey(id, startDate, endDate, page, limit)
	var cached domain.Statement
	if s.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	start := time.Unix(0, 0)
	if startDate != "" {
		parsed, err := time.Parse(statementDateLayout, startDate)
		if err != nil {
			return nil, &domain.DomainError{Code: domain.CodeInvalidDateRange, Message: "invalid start date, expected YYYY-MM-DD"}
		}
		start = parsed
	}
	end := s.now()
	if endDate != "" {
		parsed, err := time.Parse(statementDateLayout, endDate)
		if err != nil {
			return nil, &domain.DomainError{Code: domain.CodeInvalidDateRange, Message: "invalid end date, expected YYYY-MM-DD"}
		}
		end = parsed
	}
	if start.After(end) {
		return nil, domain.ErrInvalidDateRange
	}

	transactions, total, err := s.repo.ListTransactions(ctx, id, start, end, page, limit)
	if err != nil {
		return nil, err
	}

	statement := &domain.Statement{
		Data:       transactions,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: int(math.Ceil(float64(total) / float64(limit))),
	}
	s.cache.SetStatement(ctx, key, statement)
	return statement, nil
}
