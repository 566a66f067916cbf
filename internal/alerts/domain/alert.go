// Package domain holds the alert engine's core types and pure decision
// logic: threshold classification and misplacement detection. Nothing in
// this package touches storage or transport.
package domain

import "time"

// Kind identifies what an alert is about.
type Kind string

const (
	KindLowStock      Kind = "low_stock"
	KindMediumStock   Kind = "medium_stock"
	KindHighStock     Kind = "high_stock"
	KindCriticalStock Kind = "critical_stock"
	KindOutOfStock    Kind = "out_of_stock"
	KindMisplacedItem Kind = "misplaced_item"
)

// Bucket is the dedupe slot for the at-most-one-active-alert invariant.
// All stock kinds collapse onto one slot per location; misplacement has
// its own slot.
type Bucket string

const (
	BucketStock        Bucket = "stock"
	BucketMisplacement Bucket = "misplacement"
)

// DedupeBucket returns the bucket a kind belongs to.
func (k Kind) DedupeBucket() Bucket {
	if k == KindMisplacedItem {
		return BucketMisplacement
	}
	return BucketStock
}

// Priority orders alerts by urgency.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// Rank maps a priority to a sortable weight; higher is more urgent.
func (p Priority) Rank() int {
	switch p {
	case PriorityCritical:
		return 4
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// Status is the lifecycle state of an alert.
type Status string

const (
	StatusActive       Status = "active"
	StatusPending      Status = "pending"
	StatusAcknowledged Status = "acknowledged"
	StatusResolved     Status = "resolved"
)

// Alert is the persistent core entity.
type Alert struct {
	ID       int64    `json:"id"`
	Kind     Kind     `json:"alertType"`
	Priority Priority `json:"priority"`
	Status   Status   `json:"status"`

	ShelfName     string  `json:"shelfName"`
	RackName      string  `json:"rackName"`
	ProductNumber *string `json:"productNumber,omitempty"`
	ProductName   *string `json:"productName,omitempty"`
	Category      *string `json:"category,omitempty"`

	Title           string   `json:"title"`
	Message         string   `json:"message"`
	EmptyPercentage *float64 `json:"emptyPercentage,omitempty"`
	FillPercentage  *float64 `json:"fillPercentage,omitempty"`

	ExpectedProduct *string `json:"expectedProduct,omitempty"`
	ActualProduct   *string `json:"actualProduct,omitempty"`
	CorrectLocation *string `json:"correctLocation,omitempty"`

	AssignedStaffID  *string  `json:"assignedStaffId,omitempty"`
	NotifiedStaffIDs []string `json:"notifiedStaffIds,omitempty"`
	SnapshotKey      *string  `json:"snapshotKey,omitempty"`
	CreatedBy        string   `json:"createdBy"`

	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
	AcknowledgedAt *time.Time `json:"acknowledgedAt,omitempty"`
	ResolvedAt     *time.Time `json:"resolvedAt,omitempty"`
}

// HistoryAction tags a state-affecting operation on an alert.
type HistoryAction string

const (
	ActionCreated      HistoryAction = "created"
	ActionUpdated      HistoryAction = "updated"
	ActionAcknowledged HistoryAction = "acknowledged"
	ActionResolved     HistoryAction = "resolved"
)

// HistoryEntry is an append-only audit record for an alert.
type HistoryEntry struct {
	ID          int64         `json:"id"`
	AlertID     int64         `json:"alertId"`
	Action      HistoryAction `json:"action"`
	PerformedBy *string       `json:"performedBy,omitempty"`
	Notes       *string       `json:"notes,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
}

// Stats holds the fresh predicate counts for the statistics endpoint.
type Stats struct {
	TotalActive        int `json:"totalActive"`
	CriticalAlerts     int `json:"criticalAlerts"`
	HighAlerts         int `json:"highAlerts"`
	StockAlerts        int `json:"stockAlerts"`
	MisplacementAlerts int `json:"misplacementAlerts"`
}
