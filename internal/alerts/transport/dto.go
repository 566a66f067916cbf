package transport

import (
	"shelfsense_backend/internal/alerts/domain"
)

// Ingest request. Field names follow the perception pipeline's wire format
// (snake_case); everything the API serves back uses camelCase. Shelf and
// rack identifiers are deliberately not validated here — a missing
// identifier is a per-unit warning, not a request rejection.
type IngestRequest struct {
	Shelves     []ShelfObservationRequest `json:"shelves"`
	SnapshotKey string                    `json:"snapshot_key,omitempty" validate:"omitempty,max=512"`
}

// ShelfObservationRequest is one shelf's observations.
type ShelfObservationRequest struct {
	ShelfID string                   `json:"shelf_id"`
	Racks   []RackObservationRequest `json:"racks"`
}

// RackObservationRequest is one rack's perception signal.
type RackObservationRequest struct {
	RackID        string             `json:"rack_id"`
	Item          string             `json:"item"`
	ClassCoverage map[string]float64 `json:"class_coverage"`
}

// ToBatch converts the request into the engine's batch type. Coverage
// percentages are clamped into [0,100] at this boundary.
func (r IngestRequest) ToBatch() domain.Batch {
	batch := domain.Batch{SnapshotKey: r.SnapshotKey}
	if r.Shelves == nil {
		return batch
	}

	batch.Shelves = make([]domain.ShelfObservation, 0, len(r.Shelves))
	for _, shelf := range r.Shelves {
		obs := domain.ShelfObservation{
			ShelfID: shelf.ShelfID,
			Racks:   make([]domain.RackObservation, 0, len(shelf.Racks)),
		}
		for _, rack := range shelf.Racks {
			coverage := make(map[string]float64, len(rack.ClassCoverage))
			for class, pct := range rack.ClassCoverage {
				coverage[class] = domain.ClampPercent(pct)
			}
			obs.Racks = append(obs.Racks, domain.RackObservation{
				RackID:        rack.RackID,
				Item:          rack.Item,
				ClassCoverage: coverage,
			})
		}
		batch.Shelves = append(batch.Shelves, obs)
	}
	return batch
}

// TransitionRequest is the optional body for acknowledge/resolve.
type TransitionRequest struct {
	Notes string `json:"notes" validate:"omitempty,max=1000"`
}

// TransitionResponse reports a lifecycle transition outcome.
type TransitionResponse struct {
	Success bool   `json:"success"`
	AlertID int64  `json:"alertId"`
	Status  string `json:"status,omitempty"`
}

// SnapshotUploadResponse returns the stored object key for an uploaded
// rack snapshot.
type SnapshotUploadResponse struct {
	SnapshotKey string `json:"snapshotKey"`
}

// AlertListResponse wraps the active alert listing.
type AlertListResponse struct {
	Items []domain.Alert `json:"items"`
	Total int            `json:"total"`
}

// HistoryResponse wraps an alert's audit trail.
type HistoryResponse struct {
	AlertID int64                 `json:"alertId"`
	Items   []domain.HistoryEntry `json:"items"`
	Total   int                   `json:"total"`
}
