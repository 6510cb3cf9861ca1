/**
 * @description
 * PostgreSQL repository for the holder-service. Holder creation and the
 * enqueueing of its holder_created event happen inside one transaction, so a
 * holder row never exists without a pending event and an event is never
 * enqueued for a holder that failed to persist.
 */
package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/xinton/desafio-dev-api-rest/internal/holders/domain"
)

var (
	ErrHolderNotFound = errors.New("holder not found")
	ErrDuplicateCPF   = errors.New("CPF is already registered")
)

const uniqueViolation = "23505"

// HolderRepository defines the contract for holder persistence and the
// outbox operations used by the dispatcher.
type HolderRepository interface {
	CreateHolderAndEnqueueCreatedEvent(ctx context.Context, holder *domain.Holder, exchange, routingKey string) (*domain.Holder, error)
	GetByCPF(ctx context.Context, cpf string) (*domain.Holder, error)
	Delete(ctx context.Context, cpf string) (*domain.Holder, error)

	ClaimOutboxMessages(ctx context.Context, batchSize, staleAfterSeconds int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, id int64) error
	MarkOutboxFailed(ctx context.Context, id int64, retryAfterSeconds int, reason string) error
}

// OutboxMessage is one pending event row claimed by the dispatcher.
type OutboxMessage struct {
	ID         int64
	Exchange   string
	RoutingKey string
	Payload    []byte
	Attempts   int
}

// PostgresHolderRepository is the concrete HolderRepository backed by pgx.
type PostgresHolderRepository struct {
	db *pgxpool.Pool
}

// NewPostgresHolderRepository creates a new PostgresHolderRepository.
func NewPostgresHolderRepository(db *pgxpool.Pool) *PostgresHolderRepository {
	return &PostgresHolderRepository{db: db}
}

const holderColumns = `id, name, cpf, created_at, updated_at`

func scanHolder(row pgx.Row) (*domain.Holder, error) {
	var h domain.Holder
	err := row.Scan(&h.ID, &h.Name, &h.CPF, &h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrHolderNotFound
		}
		return nil, err
	}
	return &h, nil
}

// CreateHolderAndEnqueueCreatedEvent inserts the holder and its
// holder_created outbox row in a single transaction.
func (r *PostgresHolderRepository) CreateHolderAndEnqueueCreatedEvent(ctx context.Context, holder *domain.Holder, exchange, routingKey string) (*domain.Holder, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	created, err := scanHolder(tx.QueryRow(ctx,
		`INSERT INTO holders (id, name, cpf)
		 VALUES (gen_random_uuid(), $1, $2)
		 RETURNING `+holderColumns,
		holder.Name, holder.CPF,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, ErrDuplicateCPF
		}
		return nil, err
	}

	payload, err := json.Marshal(domain.HolderCreatedEvent{CPF: created.CPF, Name: created.Name})
	if err != nil {
		return nil, err
	}
	_, err = tx.Exec(ctx,
		`INSERT INTO holder_outbox (exchange, routing_key, payload, status, next_attempt_at)
		 VALUES ($1, $2, $3, 'pending', NOW())`,
		exchange, routingKey, payload,
	)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return created, nil
}

// GetByCPF fetches one holder by CPF.
func (r *PostgresHolderRepository) GetByCPF(ctx context.Context, cpf string) (*domain.Holder, error) {
	return scanHolder(r.db.QueryRow(ctx,
		`SELECT `+holderColumns+` FROM holders WHERE cpf = $1`, cpf))
}

// Delete removes a holder by CPF and returns the removed record.
func (r *PostgresHolderRepository) Delete(ctx context.Context, cpf string) (*domain.Holder, error) {
	return scanHolder(r.db.QueryRow(ctx,
		`DELETE FROM holders WHERE cpf = $1 RETURNING `+holderColumns, cpf))
}

// ClaimOutboxMessages atomically claims a batch of publishable outbox rows.
// Pending rows whose retry delay elapsed are eligible, as are processing rows
// stuck longer than staleAfterSeconds (a dispatcher that died mid-flight).
// SKIP LOCKED keeps concurrent dispatchers from claiming the same rows.
func (r *PostgresHolderRepository) ClaimOutboxMessages(ctx context.Context, batchSize, staleAfterSeconds int) ([]OutboxMessage, error) {
	rows, err := r.db.Query(ctx,
		`UPDATE holder_outbox
		 SET status = 'processing', claimed_at = NOW(), attempts = attempts + 1
		 WHERE id IN (
		     SELECT id FROM holder_outbox
		     WHERE (status = 'pending' AND next_attempt_at <= NOW())
		        OR (status = 'processing' AND claimed_at < NOW() - ($2 * INTERVAL '1 second'))
		     ORDER BY id
		     LIMIT $1
		     FOR UPDATE SKIP LOCKED
		 )
		 RETURNING id, exchange, routing_key, payload, attempts`,
		batchSize, staleAfterSeconds,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []OutboxMessage
	for rows.Next() {
		var m OutboxMessage
		if err := rows.Scan(&m.ID, &m.Exchange, &m.RoutingKey, &m.Payload, &m.Attempts); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// MarkOutboxPublished finalizes a successfully published row.
func (r *PostgresHolderRepository) MarkOutboxPublished(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx,
		`UPDATE holder_outbox SET status = 'published', published_at = NOW() WHERE id = $1`, id)
	return err
}

// MarkOutboxFailed reschedules a row after a publish failure.
func (r *PostgresHolderRepository) MarkOutboxFailed(ctx context.Context, id int64, retryAfterSeconds int, reason string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE holder_outbox
		 SET status = 'pending',
		     next_attempt_at = NOW() + ($2 * INTERVAL '1 second'),
		     last_error = $3
		 WHERE id = $1`,
		id, retryAfterSeconds, reason)
	return err
}
