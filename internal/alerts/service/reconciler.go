package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"shelfsense_backend/internal/alerts/domain"
	"shelfsense_backend/platform/apperr"
)

// rackOutcome is one persisted alert produced by a rack observation.
type rackOutcome struct {
	alert   domain.Alert
	created bool
}

// reconcileStock finds-or-creates the stock-bucket alert for a location.
// A matching active alert absorbs the new classification in place; the
// dedupe invariant guarantees at most one active stock alert per location.
func (s *Service) reconcileStock(ctx context.Context, tx Tx, entry CatalogEntry, dec domain.StockDecision, snapshotKey string) (rackOutcome, error) {
	existing, err := tx.FindActiveByBucket(ctx, entry.ShelfName, entry.RackName, domain.BucketStock)
	if err != nil {
		return rackOutcome{}, fmt.Errorf("find active stock alert: %w", err)
	}

	if existing != nil {
		existing.Kind = dec.Kind
		existing.Priority = dec.Priority
		existing.Title = dec.Title
		existing.Message = dec.Message
		existing.FillPercentage = &dec.FillPercentage
		existing.EmptyPercentage = &dec.EmptyPercentage
		existing.UpdatedAt = time.Now().UTC()
		if err := tx.UpdateAlert(ctx, existing); err != nil {
			return rackOutcome{}, fmt.Errorf("update stock alert: %w", err)
		}

		note := fmt.Sprintf("Stock level now %.1f%% filled", dec.FillPercentage)
		if err := tx.AppendHistory(ctx, historyEntry(existing.ID, domain.ActionUpdated, nil, note)); err != nil {
			return rackOutcome{}, fmt.Errorf("append stock history: %w", err)
		}
		return rackOutcome{alert: *existing}, nil
	}

	assignee, err := s.lookupAssignee(ctx, entry.ShelfName)
	if err != nil {
		return rackOutcome{}, err
	}

	alert := &domain.Alert{
		Kind:            dec.Kind,
		Priority:        dec.Priority,
		Status:          domain.StatusActive,
		ShelfName:       entry.ShelfName,
		RackName:        entry.RackName,
		ProductNumber:   entry.ProductNumber,
		ProductName:     &entry.ProductName,
		Category:        entry.Category,
		Title:           dec.Title,
		Message:         dec.Message,
		FillPercentage:  &dec.FillPercentage,
		EmptyPercentage: &dec.EmptyPercentage,
		AssignedStaffID: assignee,
		SnapshotKey:     optional(snapshotKey),
		CreatedBy:       "system",
	}

	note := fmt.Sprintf("Stock alert created for %.1f%% fill level", dec.FillPercentage)
	return s.insertReconciled(ctx, tx, alert, note)
}

// reconcileMisplacement finds-or-creates the misplacement-bucket alert for
// a location.
func (s *Service) reconcileMisplacement(ctx context.Context, tx Tx, entry CatalogEntry, dec domain.MisplacementDecision, snapshotKey string) (rackOutcome, error) {
	existing, err := tx.FindActiveByBucket(ctx, entry.ShelfName, entry.RackName, domain.BucketMisplacement)
	if err != nil {
		return rackOutcome{}, fmt.Errorf("find active misplacement alert: %w", err)
	}

	if existing != nil {
		existing.Title = dec.Title
		existing.Message = dec.Message
		existing.ExpectedProduct = &dec.ExpectedItem
		existing.ActualProduct = optional(dec.DetectedItem)
		existing.CorrectLocation = dec.CorrectLocation
		existing.UpdatedAt = time.Now().UTC()
		if err := tx.UpdateAlert(ctx, existing); err != nil {
			return rackOutcome{}, fmt.Errorf("update misplacement alert: %w", err)
		}

		if err := tx.AppendHistory(ctx, historyEntry(existing.ID, domain.ActionUpdated, nil, "Misplacement observed again")); err != nil {
			return rackOutcome{}, fmt.Errorf("append misplacement history: %w", err)
		}
		return rackOutcome{alert: *existing}, nil
	}

	assignee, err := s.lookupAssignee(ctx, entry.ShelfName)
	if err != nil {
		return rackOutcome{}, err
	}

	alert := &domain.Alert{
		Kind:            domain.KindMisplacedItem,
		Priority:        domain.PriorityMedium,
		Status:          domain.StatusActive,
		ShelfName:       entry.ShelfName,
		RackName:        entry.RackName,
		ProductNumber:   entry.ProductNumber,
		ProductName:     &entry.ProductName,
		Category:        entry.Category,
		Title:           dec.Title,
		Message:         dec.Message,
		ExpectedProduct: &dec.ExpectedItem,
		ActualProduct:   optional(dec.DetectedItem),
		CorrectLocation: dec.CorrectLocation,
		AssignedStaffID: assignee,
		SnapshotKey:     optional(snapshotKey),
		CreatedBy:       "system",
	}

	return s.insertReconciled(ctx, tx, alert, "Misplacement alert created")
}

// reconcileUnknownLocation creates or refreshes the minimal pending alert
// for a location the catalog does not know. Tagged for manual triage; no
// product fields, no assignee.
func (s *Service) reconcileUnknownLocation(ctx context.Context, tx Tx, shelf string, rack domain.RackObservation, snapshotKey string) (rackOutcome, error) {
	title := fmt.Sprintf("❓ UNKNOWN LOCATION: %s-%s", shelf, rack.RackID)
	message := fmt.Sprintf("Location %s-%s not found in inventory system. Detected item: '%s'",
		shelf, rack.RackID, rack.Item)

	existing, err := tx.FindActiveByBucket(ctx, shelf, rack.RackID, domain.BucketMisplacement)
	if err != nil {
		return rackOutcome{}, fmt.Errorf("find unknown-location alert: %w", err)
	}

	if existing != nil {
		existing.Title = title
		existing.Message = message
		existing.ActualProduct = optional(rack.Item)
		existing.UpdatedAt = time.Now().UTC()
		if err := tx.UpdateAlert(ctx, existing); err != nil {
			return rackOutcome{}, fmt.Errorf("update unknown-location alert: %w", err)
		}
		if err := tx.AppendHistory(ctx, historyEntry(existing.ID, domain.ActionUpdated, nil, "Unknown location observed again")); err != nil {
			return rackOutcome{}, fmt.Errorf("append unknown-location history: %w", err)
		}
		return rackOutcome{alert: *existing}, nil
	}

	alert := &domain.Alert{
		Kind:          domain.KindMisplacedItem,
		Priority:      domain.PriorityLow,
		Status:        domain.StatusPending,
		ShelfName:     shelf,
		RackName:      rack.RackID,
		Title:         title,
		Message:       message,
		ActualProduct: optional(rack.Item),
		SnapshotKey:   optional(snapshotKey),
		CreatedBy:     "system",
	}

	return s.insertReconciled(ctx, tx, alert, "Unknown location flagged for manual triage")
}

// insertReconciled inserts a new alert, falling back to update-in-place
// when a concurrent batch won the dedupe slot between our lookup and the
// insert. The storage-level unique index makes the invariant hold; this
// retry keeps the losing batch useful.
func (s *Service) insertReconciled(ctx context.Context, tx Tx, alert *domain.Alert, note string) (rackOutcome, error) {
	err := tx.InsertAlert(ctx, alert)
	if err == nil {
		if err := tx.AppendHistory(ctx, historyEntry(alert.ID, domain.ActionCreated, nil, note)); err != nil {
			return rackOutcome{}, fmt.Errorf("append created history: %w", err)
		}
		return rackOutcome{alert: *alert, created: true}, nil
	}

	if !apperr.Is(err, apperr.KindConflict) {
		return rackOutcome{}, fmt.Errorf("insert alert: %w", err)
	}

	winner, findErr := tx.FindActiveByBucket(ctx, alert.ShelfName, alert.RackName, alert.Kind.DedupeBucket())
	if findErr != nil {
		return rackOutcome{}, fmt.Errorf("re-read after dedupe conflict: %w", findErr)
	}
	if winner == nil {
		// Slot freed between the conflict and the re-read; give up on this
		// observation rather than loop.
		return rackOutcome{}, fmt.Errorf("insert alert: %w", err)
	}

	winner.Kind = alert.Kind
	winner.Priority = alert.Priority
	winner.Title = alert.Title
	winner.Message = alert.Message
	winner.FillPercentage = alert.FillPercentage
	winner.EmptyPercentage = alert.EmptyPercentage
	winner.ExpectedProduct = alert.ExpectedProduct
	winner.ActualProduct = alert.ActualProduct
	winner.CorrectLocation = alert.CorrectLocation
	winner.UpdatedAt = time.Now().UTC()
	if err := tx.UpdateAlert(ctx, winner); err != nil {
		return rackOutcome{}, fmt.Errorf("update after dedupe conflict: %w", err)
	}
	if err := tx.AppendHistory(ctx, historyEntry(winner.ID, domain.ActionUpdated, nil, note)); err != nil {
		return rackOutcome{}, fmt.Errorf("append history after dedupe conflict: %w", err)
	}
	return rackOutcome{alert: *winner}, nil
}

// lookupAssignee resolves the responsible staff member for a shelf.
// Returns nil when the shelf has no active assignment.
func (s *Service) lookupAssignee(ctx context.Context, shelf string) (*string, error) {
	if s.assignments == nil {
		return nil, nil
	}
	assignee, err := s.assignments.ActiveAssignee(ctx, shelf)
	if err != nil {
		return nil, fmt.Errorf("assignment lookup: %w", err)
	}
	return optional(assignee), nil
}

// findCorrectLocation searches the catalog for where a detected item
// belongs, preferring the expected product's category. Search failures are
// logged and treated as "no suggestion"; the misplacement alert is still
// valid without one.
func (s *Service) findCorrectLocation(ctx context.Context, detectedItem string, preferredCategory *string) *string {
	if s.catalog == nil || strings.TrimSpace(detectedItem) == "" {
		return nil
	}

	category := ""
	if preferredCategory != nil {
		category = *preferredCategory
	}

	matches, err := s.catalog.SearchByName(ctx, detectedItem, category)
	if err != nil {
		s.log.Warn("correct-location search failed", "item", detectedItem, "error", err)
		return nil
	}
	if len(matches) == 0 {
		return nil
	}

	location := matches[0].Location()
	return &location
}

func historyEntry(alertID int64, action domain.HistoryAction, performedBy *string, notes string) domain.HistoryEntry {
	return domain.HistoryEntry{
		AlertID:     alertID,
		Action:      action,
		PerformedBy: performedBy,
		Notes:       &notes,
	}
}

// optional maps "" to nil.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
