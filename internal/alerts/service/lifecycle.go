package service

import (
	"context"
	"fmt"

	"shelfsense_backend/internal/alerts/domain"
	"shelfsense_backend/internal/events"
)

// Acknowledge transitions an alert to acknowledged. Returns false when the
// alert does not exist or is not in an eligible state (active or pending);
// nothing is written in that case.
func (s *Service) Acknowledge(ctx context.Context, alertID int64, employeeID, notes string) (bool, error) {
	alert, err := s.store.Acknowledge(ctx, alertID, employeeID, optional(notes))
	if err != nil {
		return false, fmt.Errorf("acknowledge alert %d: %w", alertID, err)
	}
	if alert == nil {
		return false, nil
	}

	s.log.AlertEvent("acknowledged", alert.ID, alert.ShelfName, alert.RackName)
	if s.bus != nil {
		s.bus.Publish(ctx, events.AlertAcknowledged{
			BaseEvent:  events.NewBaseEvent(),
			AlertID:    alert.ID,
			EmployeeID: employeeID,
			ShelfName:  alert.ShelfName,
			RackName:   alert.RackName,
		})
	}
	return true, nil
}

// Resolve transitions an alert to resolved. Eligible states are active,
// acknowledged and pending; anything else (including already resolved)
// returns false with no side effects.
func (s *Service) Resolve(ctx context.Context, alertID int64, employeeID, notes string) (bool, error) {
	alert, err := s.store.Resolve(ctx, alertID, employeeID, optional(notes))
	if err != nil {
		return false, fmt.Errorf("resolve alert %d: %w", alertID, err)
	}
	if alert == nil {
		return false, nil
	}

	s.log.AlertEvent("resolved", alert.ID, alert.ShelfName, alert.RackName)
	if s.bus != nil {
		s.bus.Publish(ctx, events.AlertResolved{
			BaseEvent:  events.NewBaseEvent(),
			AlertID:    alert.ID,
			EmployeeID: employeeID,
			ShelfName:  alert.ShelfName,
			RackName:   alert.RackName,
		})
	}
	return true, nil
}

// GetActive returns active alerts ordered by priority then recency. When
// the caller is a non-manager employee the result is narrowed to alerts
// assigned to them; the role check runs fresh against the directory on
// every call.
func (s *Service) GetActive(ctx context.Context, employeeID string) ([]domain.Alert, error) {
	assignedTo := ""
	if employeeID != "" && s.directory != nil {
		isManager, err := s.directory.IsManager(ctx, employeeID)
		if err != nil {
			return nil, fmt.Errorf("role lookup for %s: %w", employeeID, err)
		}
		if !isManager {
			assignedTo = employeeID
		}
	}

	alerts, err := s.store.ListActive(ctx, assignedTo)
	if err != nil {
		return nil, fmt.Errorf("list active alerts: %w", err)
	}
	return alerts, nil
}

// Get returns one alert by ID.
func (s *Service) Get(ctx context.Context, alertID int64) (*domain.Alert, error) {
	return s.store.GetAlert(ctx, alertID)
}

// Statistics computes the active-alert counts freshly per call.
func (s *Service) Statistics(ctx context.Context) (domain.Stats, error) {
	stats, err := s.store.Statistics(ctx)
	if err != nil {
		return domain.Stats{}, fmt.Errorf("alert statistics: %w", err)
	}
	return stats, nil
}

// History returns an alert's audit entries newest first.
func (s *Service) History(ctx context.Context, alertID int64) ([]domain.HistoryEntry, error) {
	entries, err := s.store.History(ctx, alertID)
	if err != nil {
		return nil, fmt.Errorf("alert history %d: %w", alertID, err)
	}
	return entries, nil
}
