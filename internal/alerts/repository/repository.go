// Package repository persists alerts and their audit history in Postgres.
package repository

import (
	"context"
	"errors"
	"fmt"

	"shelfsense_backend/internal/alerts/domain"
	"shelfsense_backend/internal/alerts/service"
	"shelfsense_backend/platform/apperr"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	opBegin       = "alerts.repository.begin"
	opGet         = "alerts.repository.get"
	opListActive  = "alerts.repository.list_active"
	opAcknowledge = "alerts.repository.acknowledge"
	opResolve     = "alerts.repository.resolve"
	opStats       = "alerts.repository.statistics"
	opHistory     = "alerts.repository.history"
	opSetNotified = "alerts.repository.set_notified"

	pgUniqueViolation = "23505"
)

const alertColumns = `id, alert_type, priority, status, bucket,
	shelf_name, rack_name, product_number, product_name, category,
	title, message, empty_percentage, fill_percentage,
	expected_product, actual_product, correct_location,
	assigned_staff_id, notified_staff_ids, snapshot_key, created_by,
	created_at, updated_at, acknowledged_at, resolved_at`

// Repository implements the alert engine's Store contract on pgx.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates an alert repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Begin opens the staging transaction for one observation batch.
func (r *Repository) Begin(ctx context.Context) (service.Tx, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opBegin, err)
	}
	return &alertTx{tx: tx}, nil
}

// GetAlert returns one alert by ID.
func (r *Repository) GetAlert(ctx context.Context, id int64) (*domain.Alert, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+alertColumns+` FROM alerts WHERE id = $1`, id)
	alert, err := scanAlert(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("alert not found").WithOp(opGet)
		}
		return nil, fmt.Errorf("%s: %w", opGet, err)
	}
	return alert, nil
}

// ListActive returns active alerts ordered by priority descending then
// creation time descending. A non-empty assignedTo narrows to that
// employee's alerts.
func (r *Repository) ListActive(ctx context.Context, assignedTo string) ([]domain.Alert, error) {
	query := `SELECT ` + alertColumns + ` FROM alerts WHERE status = 'active'`
	args := []any{}
	if assignedTo != "" {
		query += ` AND assigned_staff_id = $1`
		args = append(args, assignedTo)
	}
	query += ` ORDER BY
		CASE priority
			WHEN 'critical' THEN 4
			WHEN 'high' THEN 3
			WHEN 'medium' THEN 2
			ELSE 1
		END DESC,
		created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opListActive, err)
	}
	defer rows.Close()

	return scanAlerts(rows, opListActive)
}

// Acknowledge moves an active or pending alert to acknowledged and appends
// the history entry in one transaction. Returns nil without error when the
// alert is missing or ineligible.
func (r *Repository) Acknowledge(ctx context.Context, id int64, employeeID string, notes *string) (*domain.Alert, error) {
	return r.transition(ctx, opAcknowledge, id, employeeID, notes, domain.ActionAcknowledged,
		`UPDATE alerts
		 SET status = 'acknowledged', acknowledged_at = now(), updated_at = now()
		 WHERE id = $1 AND status IN ('active', 'pending')
		 RETURNING `+alertColumns)
}

// Resolve moves an active, acknowledged or pending alert to resolved. Same
// not-eligible contract as Acknowledge.
func (r *Repository) Resolve(ctx context.Context, id int64, employeeID string, notes *string) (*domain.Alert, error) {
	return r.transition(ctx, opResolve, id, employeeID, notes, domain.ActionResolved,
		`UPDATE alerts
		 SET status = 'resolved', resolved_at = now(), updated_at = now()
		 WHERE id = $1 AND status IN ('active', 'acknowledged', 'pending')
		 RETURNING `+alertColumns)
}

func (r *Repository) transition(ctx context.Context, op string, id int64, employeeID string, notes *string, action domain.HistoryAction, query string) (*domain.Alert, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	row := tx.QueryRow(ctx, query, id)
	alert, err := scanAlert(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Missing or ineligible: signalled as a non-result, not an error.
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO alert_history (alert_id, action, performed_by, notes) VALUES ($1, $2, $3, $4)`,
		id, string(action), employeeID, notes)
	if err != nil {
		return nil, fmt.Errorf("%s: history: %w", op, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%s: commit: %w", op, err)
	}
	return alert, nil
}

// Statistics computes fresh predicate counts over active alerts.
func (r *Repository) Statistics(ctx context.Context) (domain.Stats, error) {
	var stats domain.Stats
	err := r.pool.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE priority = 'critical'),
			COUNT(*) FILTER (WHERE priority = 'high'),
			COUNT(*) FILTER (WHERE bucket = 'stock'),
			COUNT(*) FILTER (WHERE bucket = 'misplacement')
		FROM alerts
		WHERE status = 'active'`,
	).Scan(&stats.TotalActive, &stats.CriticalAlerts, &stats.HighAlerts,
		&stats.StockAlerts, &stats.MisplacementAlerts)
	if err != nil {
		return domain.Stats{}, fmt.Errorf("%s: %w", opStats, err)
	}
	return stats, nil
}

// History returns an alert's audit entries newest first.
func (r *Repository) History(ctx context.Context, alertID int64) ([]domain.HistoryEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, alert_id, action, performed_by, notes, created_at
		FROM alert_history
		WHERE alert_id = $1
		ORDER BY created_at DESC, id DESC`, alertID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opHistory, err)
	}
	defer rows.Close()

	var entries []domain.HistoryEntry
	for rows.Next() {
		var e domain.HistoryEntry
		var action string
		if err := rows.Scan(&e.ID, &e.AlertID, &action, &e.PerformedBy, &e.Notes, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", opHistory, err)
		}
		e.Action = domain.HistoryAction(action)
		entries = append(entries, e)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("%s: %w", opHistory, rows.Err())
	}
	return entries, nil
}

// SetNotified records the recipients of the last notification pass.
func (r *Repository) SetNotified(ctx context.Context, id int64, staffIDs []string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE alerts SET notified_staff_ids = $2, updated_at = now() WHERE id = $1`,
		id, staffIDs)
	if err != nil {
		return fmt.Errorf("%s: %w", opSetNotified, err)
	}
	return nil
}

// alertTx stages the writes of one observation batch.
type alertTx struct {
	tx pgx.Tx
}

func (t *alertTx) FindActiveByBucket(ctx context.Context, shelf, rack string, bucket domain.Bucket) (*domain.Alert, error) {
	row := t.tx.QueryRow(ctx,
		`SELECT `+alertColumns+` FROM alerts
		 WHERE shelf_name = $1 AND rack_name = $2 AND bucket = $3
		   AND status IN ('active', 'pending')`,
		shelf, rack, string(bucket))
	alert, err := scanAlert(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find active by bucket: %w", err)
	}
	return alert, nil
}

// InsertAlert persists a new alert inside a savepoint so a dedupe-slot
// conflict does not poison the batch transaction. The conflict surfaces as
// apperr.Conflict for the reconciler's retry.
func (t *alertTx) InsertAlert(ctx context.Context, alert *domain.Alert) error {
	sp, err := t.tx.Begin(ctx)
	if err != nil {
		return fmt.Errorf("insert alert savepoint: %w", err)
	}

	err = sp.QueryRow(ctx, `
		INSERT INTO alerts (
			alert_type, priority, status, bucket,
			shelf_name, rack_name, product_number, product_name, category,
			title, message, empty_percentage, fill_percentage,
			expected_product, actual_product, correct_location,
			assigned_staff_id, snapshot_key, created_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		RETURNING id, created_at, updated_at`,
		string(alert.Kind), string(alert.Priority), string(alert.Status), string(alert.Kind.DedupeBucket()),
		alert.ShelfName, alert.RackName, alert.ProductNumber, alert.ProductName, alert.Category,
		alert.Title, alert.Message, alert.EmptyPercentage, alert.FillPercentage,
		alert.ExpectedProduct, alert.ActualProduct, alert.CorrectLocation,
		alert.AssignedStaffID, alert.SnapshotKey, alert.CreatedBy,
	).Scan(&alert.ID, &alert.CreatedAt, &alert.UpdatedAt)

	if err != nil {
		_ = sp.Rollback(ctx)
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return apperr.Conflict("active alert already exists for this location and bucket")
		}
		return fmt.Errorf("insert alert: %w", err)
	}

	if err := sp.Commit(ctx); err != nil {
		return fmt.Errorf("insert alert savepoint commit: %w", err)
	}
	return nil
}

func (t *alertTx) UpdateAlert(ctx context.Context, alert *domain.Alert) error {
	_, err := t.tx.Exec(ctx, `
		UPDATE alerts SET
			alert_type = $2, priority = $3, title = $4, message = $5,
			empty_percentage = $6, fill_percentage = $7,
			expected_product = $8, actual_product = $9, correct_location = $10,
			updated_at = now()
		WHERE id = $1`,
		alert.ID,
		string(alert.Kind), string(alert.Priority), alert.Title, alert.Message,
		alert.EmptyPercentage, alert.FillPercentage,
		alert.ExpectedProduct, alert.ActualProduct, alert.CorrectLocation,
	)
	if err != nil {
		return fmt.Errorf("update alert %d: %w", alert.ID, err)
	}
	return nil
}

func (t *alertTx) AppendHistory(ctx context.Context, entry domain.HistoryEntry) error {
	_, err := t.tx.Exec(ctx,
		`INSERT INTO alert_history (alert_id, action, performed_by, notes) VALUES ($1, $2, $3, $4)`,
		entry.AlertID, string(entry.Action), entry.PerformedBy, entry.Notes)
	if err != nil {
		return fmt.Errorf("append history for alert %d: %w", entry.AlertID, err)
	}
	return nil
}

func (t *alertTx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

func (t *alertTx) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}

func scanAlert(row pgx.Row) (*domain.Alert, error) {
	var a domain.Alert
	var kind, priority, status, bucket string
	err := row.Scan(
		&a.ID, &kind, &priority, &status, &bucket,
		&a.ShelfName, &a.RackName, &a.ProductNumber, &a.ProductName, &a.Category,
		&a.Title, &a.Message, &a.EmptyPercentage, &a.FillPercentage,
		&a.ExpectedProduct, &a.ActualProduct, &a.CorrectLocation,
		&a.AssignedStaffID, &a.NotifiedStaffIDs, &a.SnapshotKey, &a.CreatedBy,
		&a.CreatedAt, &a.UpdatedAt, &a.AcknowledgedAt, &a.ResolvedAt,
	)
	if err != nil {
		return nil, err
	}
	a.Kind = domain.Kind(kind)
	a.Priority = domain.Priority(priority)
	a.Status = domain.Status(status)
	return &a, nil
}

func scanAlerts(rows pgx.Rows, op string) ([]domain.Alert, error) {
	var alerts []domain.Alert
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		alerts = append(alerts, *alert)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("%s: %w", op, rows.Err())
	}
	return alerts, nil
}
