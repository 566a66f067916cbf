package service

import (
	"context"

	"shelfsense_backend/internal/alerts/domain"
)

// Collaborator ports. The engine only sees these interfaces; adapters in
// internal/adapters bind them to the owning modules so the core stays
// unit-testable without a live store or network.

// CatalogEntry is the product expected at a location.
type CatalogEntry struct {
	ShelfName     string
	RackName      string
	ProductNumber *string
	ProductName   string
	Category      *string
}

// Location renders the entry's position as "shelf-rack".
func (e CatalogEntry) Location() string {
	return e.ShelfName + "-" + e.RackName
}

// CatalogLookup resolves locations to expected products.
type CatalogLookup interface {
	// Find returns the catalog entry for a location, or nil when the
	// location is unknown to the catalog.
	Find(ctx context.Context, shelf, rack string) (*CatalogEntry, error)
	// SearchByName returns entries whose product name contains the given
	// substring (case-insensitive), entries in preferredCategory first.
	// An empty preferredCategory means no preference.
	SearchByName(ctx context.Context, substring, preferredCategory string) ([]CatalogEntry, error)
}

// AssignmentLookup resolves a shelf to its active assignee.
type AssignmentLookup interface {
	// ActiveAssignee returns the employee ID responsible for a shelf,
	// or "" when nobody is assigned.
	ActiveAssignee(ctx context.Context, shelf string) (string, error)
}

// StaffDirectory answers role and activity questions about employees.
type StaffDirectory interface {
	IsActive(ctx context.Context, employeeID string) (bool, error)
	IsManager(ctx context.Context, employeeID string) (bool, error)
	// ActiveManagerIDs lists the employee IDs of all active employees
	// holding a manager-class role.
	ActiveManagerIDs(ctx context.Context) ([]string, error)
}

// Dispatcher delivers an alert notification to one recipient. Failures are
// logged and swallowed by the engine; delivery never affects persistence.
type Dispatcher interface {
	Notify(ctx context.Context, recipientID string, alert domain.Alert) error
}
