// Package inapp persists per-employee in-app notifications.
package inapp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"shelfsense_backend/platform/apperr"
)

// Notification is one in-app notification row.
type Notification struct {
	ID         uuid.UUID  `json:"id"`
	EmployeeID string     `json:"employeeId"`
	Title      string     `json:"title"`
	Content    string     `json:"content"`
	AlertID    *int64     `json:"alertId,omitempty"`
	Category   string     `json:"category"`
	IsRead     bool       `json:"isRead"`
	ReadAt     *time.Time `json:"readAt,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// CreateParams holds the fields for a new notification.
type CreateParams struct {
	EmployeeID string
	Title      string
	Content    string
	AlertID    *int64
	Category   string
}

// Repository implements in-app notification persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates the in-app notification repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a notification for one recipient.
func (r *Repository) Create(ctx context.Context, p CreateParams) (Notification, error) {
	if p.EmployeeID == "" {
		return Notification{}, apperr.Validation("employeeId is required")
	}
	if p.Title == "" || p.Content == "" {
		return Notification{}, apperr.Validation("title and content are required")
	}

	category := p.Category
	if category == "" {
		category = "info"
	}

	var n Notification
	err := r.pool.QueryRow(ctx, `
		INSERT INTO in_app_notifications (employee_id, title, content, alert_id, category)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, employee_id, title, content, alert_id, category, is_read, read_at, created_at`,
		p.EmployeeID, p.Title, p.Content, p.AlertID, category,
	).Scan(&n.ID, &n.EmployeeID, &n.Title, &n.Content, &n.AlertID, &n.Category,
		&n.IsRead, &n.ReadAt, &n.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return Notification{}, apperr.Validation("unknown employee or alert")
		}
		return Notification{}, fmt.Errorf("create notification: %w", err)
	}
	return n, nil
}

// List returns a recipient's notifications newest first, plus the total count.
func (r *Repository) List(ctx context.Context, employeeID string, limit, offset int) ([]Notification, int, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM in_app_notifications WHERE employee_id = $1`,
		employeeID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count notifications: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, employee_id, title, content, alert_id, category, is_read, read_at, created_at
		FROM in_app_notifications
		WHERE employee_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, employeeID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.EmployeeID, &n.Title, &n.Content, &n.AlertID,
			&n.Category, &n.IsRead, &n.ReadAt, &n.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate notifications: %w", err)
	}
	return notifications, total, nil
}

// CountUnread returns the recipient's unread count.
func (r *Repository) CountUnread(ctx context.Context, employeeID string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM in_app_notifications WHERE employee_id = $1 AND NOT is_read`,
		employeeID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count unread: %w", err)
	}
	return count, nil
}

// MarkRead marks one notification read. The employee scope prevents marking
// someone else's notification.
func (r *Repository) MarkRead(ctx context.Context, id uuid.UUID, employeeID string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE in_app_notifications
		SET is_read = TRUE, read_at = now()
		WHERE id = $1 AND employee_id = $2 AND NOT is_read`,
		id, employeeID)
	if err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("notification not found or already read")
	}
	return nil
}

// MarkAllRead marks everything read for a recipient and returns the count.
func (r *Repository) MarkAllRead(ctx context.Context, employeeID string) (int, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE in_app_notifications
		SET is_read = TRUE, read_at = now()
		WHERE employee_id = $1 AND NOT is_read`, employeeID)
	if err != nil {
		return 0, fmt.Errorf("mark all read: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
