package service

import (
	"context"
	"fmt"
	"strings"

	"shelfsense_backend/internal/alerts/domain"
	"shelfsense_backend/internal/events"
)

// IngestResult reports the outcome of processing one observation batch.
type IngestResult struct {
	Success      bool           `json:"success"`
	CreatedCount int            `json:"createdCount"`
	UpdatedCount int            `json:"updatedCount"`
	Alerts       []domain.Alert `json:"alerts"`
	// Errors carries per-unit warnings for a committed batch, or the
	// single structural error for a failed one.
	Errors []string `json:"errors,omitempty"`
}

// ProcessBatch walks an observation batch shelf by shelf, rack by rack, in
// input order, classifying each rack and reconciling the outcomes against
// existing active alerts. All writes commit once at the end. Two failure
// tiers apply: a structurally invalid batch (or a storage failure on
// begin/commit) persists nothing and reports Success=false; a failing
// individual shelf or rack is recorded as a warning and skipped while the
// rest of the batch commits. Notification delivery runs after commit and
// never affects the result.
func (s *Service) ProcessBatch(ctx context.Context, batch domain.Batch) IngestResult {
	var result IngestResult

	if batch.Shelves == nil {
		result.Errors = append(result.Errors, "batch is missing the shelves list")
		return result
	}

	tx, err := s.store.Begin(ctx)
	if err != nil {
		s.log.DatabaseError("alerts.ingest.begin", err)
		result.Errors = append(result.Errors, fmt.Sprintf("begin batch: %v", err))
		return result
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(ctx)
		}
	}()

	var outcomes []rackOutcome
	for i, shelf := range batch.Shelves {
		if strings.TrimSpace(shelf.ShelfID) == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("shelf %d: missing shelf_id", i))
			continue
		}

		for j, rack := range shelf.Racks {
			if strings.TrimSpace(rack.RackID) == "" {
				result.Errors = append(result.Errors,
					fmt.Sprintf("shelf %s: rack %d: missing rack_id", shelf.ShelfID, j))
				continue
			}

			rackOutcomes, err := s.processRack(ctx, tx, shelf.ShelfID, rack, batch.SnapshotKey)
			if err != nil {
				s.log.Warn("rack processing failed",
					"shelf", shelf.ShelfID, "rack", rack.RackID, "error", err)
				result.Errors = append(result.Errors,
					fmt.Sprintf("shelf %s: rack %s: %v", shelf.ShelfID, rack.RackID, err))
				continue
			}
			outcomes = append(outcomes, rackOutcomes...)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		s.log.DatabaseError("alerts.ingest.commit", err)
		return IngestResult{Errors: []string{fmt.Sprintf("commit batch: %v", err)}}
	}
	committed = true

	for _, o := range outcomes {
		result.Alerts = append(result.Alerts, o.alert)
		if o.created {
			result.CreatedCount++
		} else {
			result.UpdatedCount++
		}
	}
	result.Success = true

	s.notifyOutcomes(ctx, outcomes)
	s.publishBatchEvents(ctx, outcomes, result)

	return result
}

// processRack classifies one rack observation and reconciles its outcomes.
// Both the stock and misplacement checks may independently yield an alert.
func (s *Service) processRack(ctx context.Context, tx Tx, shelfID string, rack domain.RackObservation, snapshotKey string) ([]rackOutcome, error) {
	if s.catalog == nil {
		return nil, fmt.Errorf("catalog lookup not configured")
	}

	entry, err := s.catalog.Find(ctx, shelfID, rack.RackID)
	if err != nil {
		return nil, fmt.Errorf("catalog lookup: %w", err)
	}

	if entry == nil {
		outcome, err := s.reconcileUnknownLocation(ctx, tx, shelfID, rack, snapshotKey)
		if err != nil {
			return nil, err
		}
		return []rackOutcome{outcome}, nil
	}

	var outcomes []rackOutcome

	if dec, ok := s.policy.BuildStockDecision(entry.ProductName, shelfID, rack.RackID, rack.Empty()); ok {
		outcome, err := s.reconcileStock(ctx, tx, *entry, dec, snapshotKey)
		if err != nil {
			return nil, err
		}
		outcomes = append(outcomes, outcome)
	}

	if s.policy.IsMisplaced(rack.Item, entry.ProductName, rack.Disordered()) {
		correct := s.findCorrectLocation(ctx, rack.Item, entry.Category)
		dec := domain.BuildMisplacementDecision(rack.Item, entry.ProductName, shelfID, rack.RackID, rack.Disordered(), correct)
		outcome, err := s.reconcileMisplacement(ctx, tx, *entry, dec, snapshotKey)
		if err != nil {
			return nil, err
		}
		outcomes = append(outcomes, outcome)
	}

	return outcomes, nil
}

func (s *Service) publishBatchEvents(ctx context.Context, outcomes []rackOutcome, result IngestResult) {
	if s.bus == nil {
		return
	}

	for _, o := range outcomes {
		if o.created {
			s.bus.Publish(ctx, events.AlertCreated{
				BaseEvent:       events.NewBaseEvent(),
				AlertID:         o.alert.ID,
				AlertType:       string(o.alert.Kind),
				Priority:        string(o.alert.Priority),
				Status:          string(o.alert.Status),
				ShelfName:       o.alert.ShelfName,
				RackName:        o.alert.RackName,
				Title:           o.alert.Title,
				Message:         o.alert.Message,
				AssignedStaffID: deref(o.alert.AssignedStaffID),
				Recipients:      o.alert.NotifiedStaffIDs,
			})
		} else {
			s.bus.Publish(ctx, events.AlertUpdated{
				BaseEvent: events.NewBaseEvent(),
				AlertID:   o.alert.ID,
				AlertType: string(o.alert.Kind),
				Priority:  string(o.alert.Priority),
				ShelfName: o.alert.ShelfName,
				RackName:  o.alert.RackName,
				Title:     o.alert.Title,
				Message:   o.alert.Message,
			})
		}
	}

	s.bus.Publish(ctx, events.BatchProcessed{
		BaseEvent:    events.NewBaseEvent(),
		CreatedCount: result.CreatedCount,
		UpdatedCount: result.UpdatedCount,
		Errors:       result.Errors,
	})
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
