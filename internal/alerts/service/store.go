package service

import (
	"context"

	"shelfsense_backend/internal/alerts/domain"
)

// Store is the persistence contract for the alert engine. Batch ingestion
// stages writes through a Tx and commits once; lifecycle operations run in
// their own short transactions inside the implementation.
type Store interface {
	Begin(ctx context.Context) (Tx, error)

	GetAlert(ctx context.Context, id int64) (*domain.Alert, error)
	// ListActive returns active alerts ordered by priority descending then
	// creation time descending. A non-empty assignedTo narrows the result
	// to alerts assigned to that employee.
	ListActive(ctx context.Context, assignedTo string) ([]domain.Alert, error)

	// Acknowledge transitions an alert to acknowledged if it is currently
	// active or pending, appending the history entry atomically. Returns
	// nil (no error) when the alert is missing or ineligible.
	Acknowledge(ctx context.Context, id int64, employeeID string, notes *string) (*domain.Alert, error)
	// Resolve transitions an alert to resolved if it is currently active,
	// acknowledged or pending. Same not-eligible contract as Acknowledge.
	Resolve(ctx context.Context, id int64, employeeID string, notes *string) (*domain.Alert, error)

	Statistics(ctx context.Context) (domain.Stats, error)
	// History returns an alert's audit entries newest first.
	History(ctx context.Context, alertID int64) ([]domain.HistoryEntry, error)

	// SetNotified records the recipients of the last notification pass.
	SetNotified(ctx context.Context, id int64, staffIDs []string) error
}

// Tx stages alert writes for one observation batch.
type Tx interface {
	// FindActiveByBucket returns the active or pending alert occupying the
	// dedupe slot, or nil when the slot is free.
	FindActiveByBucket(ctx context.Context, shelf, rack string, bucket domain.Bucket) (*domain.Alert, error)
	// InsertAlert persists a new alert and fills its ID and timestamps.
	// Losing a concurrent race on the dedupe slot surfaces as a conflict
	// error (apperr.KindConflict) without poisoning the transaction.
	InsertAlert(ctx context.Context, alert *domain.Alert) error
	UpdateAlert(ctx context.Context, alert *domain.Alert) error
	AppendHistory(ctx context.Context, entry domain.HistoryEntry) error

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}
