/**
 * @description
 * PostgreSQL implementation of the account-service Repository. It owns every
 * SQL statement touching the accounts and transactions tables, including the
 * atomic balance-plus-ledger commit used by deposits and withdrawals.
 *
 * @dependencies
 * - github.com/jackc/pgx/v5: driver, pgxpool and pgconn error inspection.
 * - github.com/shopspring/decimal: exact NUMERIC scanning and arguments.
 */
package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/xinton/desafio-dev-api-rest/internal/accounts/domain"
)

var (
	ErrAccountNotFound           = errors.New("account not found")
	ErrDuplicateAccountForHolder = errors.New("holder already has an account")
	ErrConcurrentModification    = errors.New("account was modified concurrently")
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique constraint errors.
const uniqueViolation = "23505"

// accountNumberRetries bounds how many times an insert regenerates the
// account number after colliding with an existing (branch, number) pair.
const accountNumberRetries = 3

// PostgresRepository is the concrete Repository backed by a pgx pool.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgresRepository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const accountColumns = `id, holder_cpf, branch, number, balance, active, blocked, created_at, updated_at`

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var a domain.Account
	err := row.Scan(&a.ID, &a.HolderCPF, &a.Branch, &a.Number, &a.Balance, &a.Active, &a.Blocked, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &a, nil
}

// CreateAccount inserts a new account row. The holder_cpf unique constraint
// enforces one account per holder; a collision on the (branch, number) pair
// regenerates the number and retries a bounded number of times.
func (r *PostgresRepository) CreateAccount(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	query := `
		INSERT INTO accounts (id, holder_cpf, branch, number, balance, active, blocked)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + accountColumns

	for attempt := 0; ; attempt++ {
		created, err := scanAccount(r.db.QueryRow(ctx, query,
			account.ID,
			account.HolderCPF,
			account.Branch,
			account.Number,
			account.Balance,
			account.Active,
			account.Blocked,
		))
		if err == nil {
			return created, nil
		}

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			if pgErr.ConstraintName == "accounts_holder_cpf_key" {
				return nil, ErrDuplicateAccountForHolder
			}
			if attempt < accountNumberRetries {
				account.Number = domain.GenerateAccountNumber()
				continue
			}
		}
		return nil, err
	}
}

// GetAccountByID fetches one account by its id.
func (r *PostgresRepository) GetAccountByID(ctx context.Context, id string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return scanAccount(r.db.QueryRow(ctx, query, id))
}

// GetAccountByHolderCPF fetches the account owned by a holder.
func (r *PostgresRepository) GetAccountByHolderCPF(ctx context.Context, cpf string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE holder_cpf = $1`
	return scanAccount(r.db.QueryRow(ctx, query, cpf))
}

// CloseAccount deactivates an account. The guard re-states the close
// preconditions inside the UPDATE itself, so a deposit that landed between
// the caller's read and this write makes the row no longer match and the
// close is refused instead of burying a positive balance.
func (r *PostgresRepository) CloseAccount(ctx context.Context, id string) (*domain.Account, error) {
	account, err := scanAccount(r.db.QueryRow(ctx, `
		UPDATE accounts
		SET active = FALSE, updated_at = NOW()
		WHERE id = $1 AND active AND balance = 0
		RETURNING `+accountColumns, id))
	if errors.Is(err, ErrAccountNotFound) {
		return nil, r.guardFailure(ctx, id)
	}
	return account, err
}

// SetBlocked persists the blocked flag. Only an active row matches, keeping
// a concurrently closed account terminal.
func (r *PostgresRepository) SetBlocked(ctx context.Context, id string, blocked bool) (*domain.Account, error) {
	account, err := scanAccount(r.db.QueryRow(ctx, `
		UPDATE accounts
		SET blocked = $2, updated_at = NOW()
		WHERE id = $1 AND active
		RETURNING `+accountColumns, id, blocked))
	if errors.Is(err, ErrAccountNotFound) {
		return nil, r.guardFailure(ctx, id)
	}
	return account, err
}

// guardFailure resolves a zero-row guarded update: either the account is
// gone, or it still exists and a concurrent writer changed the state the
// caller validated against.
func (r *PostgresRepository) guardFailure(ctx context.Context, id string) error {
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrAccountNotFound
	}
	return ErrConcurrentModification
}

// CommitBalanceAndTransaction applies a balance mutation and appends its
// ledger entry in one transaction. The balance update is a compare-and-swap
// against the balance the caller loaded, and only matches a row that is
// still active and unblocked: if a concurrent writer moved the balance,
// closed or blocked the account first, no row matches and the whole commit
// is rejected, so partial writes are never observable.
func (r *PostgresRepository) CommitBalanceAndTransaction(ctx context.Context, accountID string, prevBalance, newBalance decimal.Decimal, txType domain.TransactionType, amount decimal.Decimal) (*domain.Transaction, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE accounts
		 SET balance = $1, updated_at = NOW()
		 WHERE id = $2 AND balance = $3 AND active AND NOT blocked`,
		newBalance, accountID, prevBalance,
	)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		// The account vanished, its balance moved, or it was closed or
		// blocked after the caller read it.
		return nil, r.guardFailure(ctx, accountID)
	}

	var entry domain.Transaction
	err = tx.QueryRow(ctx,
		`INSERT INTO transactions (id, account_id, type, amount)
		 VALUES (gen_random_uuid(), $1, $2, $3)
		 RETURNING id, account_id, type, amount, created_at`,
		accountID, txType, amount,
	).Scan(&entry.ID, &entry.AccountID, &entry.Type, &entry.Amount, &entry.CreatedAt)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &entry, nil
}

// SumWithdrawalsInWindow sums withdrawal amounts inside [start, end).
func (r *PostgresRepository) SumWithdrawalsInWindow(ctx context.Context, accountID string, start, end time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0)
		 FROM transactions
		 WHERE account_id = $1 AND type = $2 AND created_at >= $3 AND created_at < $4`,
		accountID, domain.Withdrawal, start, end,
	).Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

// ListTransactions returns one statement page, newest first, plus the total
// count of entries in the window.
func (r *PostgresRepository) ListTransactions(ctx context.Context, accountID string, start, end time.Time, page, limit int) ([]domain.Transaction, int, error) {
	var total int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM transactions
		 WHERE account_id = $1 AND created_at >= $2 AND created_at <= $3`,
		accountID, start, end,
	).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, account_id, type, amount, created_at
		 FROM transactions
		 WHERE account_id = $1 AND created_at >= $2 AND created_at <= $3
		 ORDER BY created_at DESC
		 OFFSET $4 LIMIT $5`,
		accountID, start, end, (page-1)*limit, limit,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	transactions := make([]domain.Transaction, 0, limit)
	for rows.Next() {
		var t domain.Transaction
		if err := rows.Scan(&t.ID, &t.AccountID, &t.Type, &t.Amount, &t.CreatedAt); err != nil {
			return nil, 0, err
		}
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return transactions, total, nil
}
