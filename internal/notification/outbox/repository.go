// Package outbox persists queued email notifications. Rows are written in
// the same breath as in-app notifications and drained asynchronously by the
// scheduler worker, so email delivery never blocks alert persistence.
package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Status is an outbox row's delivery state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusEnqueued  Status = "enqueued"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Record is one queued email.
type Record struct {
	ID             uuid.UUID
	RecipientEmail string
	Template       string
	Payload        json.RawMessage
	RunAt          time.Time
	Status         Status
	Attempts       int
}

// InsertParams holds the fields for queueing an email.
type InsertParams struct {
	RecipientEmail string
	Template       string
	Payload        any
	RunAt          time.Time
}

// Repository implements outbox persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates the outbox repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Insert queues an email for delivery.
func (r *Repository) Insert(ctx context.Context, p InsertParams) (uuid.UUID, error) {
	if p.RecipientEmail == "" {
		return uuid.Nil, fmt.Errorf("recipient email is required")
	}
	if p.Template == "" {
		return uuid.Nil, fmt.Errorf("template is required")
	}
	if p.RunAt.IsZero() {
		p.RunAt = time.Now().UTC()
	}

	payloadBytes, err := json.Marshal(p.Payload)
	if err != nil {
		return uuid.Nil, fmt.Errorf("marshal payload: %w", err)
	}

	var id uuid.UUID
	err = r.pool.QueryRow(ctx, `
		INSERT INTO notification_outbox (recipient_email, template, payload, run_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		p.RecipientEmail, p.Template, payloadBytes, p.RunAt,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert outbox record: %w", err)
	}
	return id, nil
}

// ClaimPending atomically claims due pending rows for delivery. Concurrent
// workers skip each other's rows via FOR UPDATE SKIP LOCKED.
func (r *Repository) ClaimPending(ctx context.Context, limit int) ([]Record, error) {
	if limit < 1 {
		limit = 50
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("claim pending: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rows, err := tx.Query(ctx, `WITH due AS (
		SELECT id
		FROM notification_outbox
		WHERE status = 'pending' AND run_at <= now()
		ORDER BY run_at ASC
		LIMIT $1
		FOR UPDATE SKIP LOCKED
	)
	UPDATE notification_outbox o
	SET status = 'enqueued', attempts = attempts + 1, updated_at = now()
	FROM due
	WHERE o.id = due.id
	RETURNING o.id, o.recipient_email, o.template, o.payload, o.run_at, o.status, o.attempts`, limit)
	if err != nil {
		return nil, fmt.Errorf("claim pending: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var status string
		if err := rows.Scan(&rec.ID, &rec.RecipientEmail, &rec.Template, &rec.Payload,
			&rec.RunAt, &status, &rec.Attempts); err != nil {
			return nil, fmt.Errorf("claim pending: scan: %w", err)
		}
		rec.Status = Status(status)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("claim pending: iterate: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("claim pending: commit: %w", err)
	}
	return records, nil
}

// MarkSucceeded finalizes a delivered row.
func (r *Repository) MarkSucceeded(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE notification_outbox
		SET status = 'succeeded', last_error = NULL, updated_at = now()
		WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark succeeded: %w", err)
	}
	return nil
}

// MarkPending returns a row to the pending pool for a later retry. The row's
// run_at is pushed forward so the dispatcher does not reclaim it immediately.
func (r *Repository) MarkPending(ctx context.Context, id uuid.UUID, lastError string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE notification_outbox
		SET status = 'pending', last_error = $2, run_at = now() + interval '2 minutes', updated_at = now()
		WHERE id = $1`, id, lastError)
	if err != nil {
		return fmt.Errorf("mark pending: %w", err)
	}
	return nil
}

// MarkFailed gives up on a row permanently.
func (r *Repository) MarkFailed(ctx context.Context, id uuid.UUID, lastError string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE notification_outbox
		SET status = 'failed', last_error = $2, updated_at = now()
		WHERE id = $1`, id, lastError)
	if err != nil {
		return fmt.Errorf("mark failed: %w", err)
	}
	return nil
}
