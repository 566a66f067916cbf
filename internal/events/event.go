package events

import (
	platformevents "shelfsense_backend/platform/events"
)

// NewBaseEvent creates a base event stamped with the current time.
func NewBaseEvent() platformevents.BaseEvent {
	return platformevents.NewBaseEvent()
}

// BaseEvent re-exports the platform base event.
type BaseEvent = platformevents.BaseEvent

// Event names.
const (
	AlertCreatedName      = "alerts.created"
	AlertUpdatedName      = "alerts.updated"
	AlertAcknowledgedName = "alerts.acknowledged"
	AlertResolvedName     = "alerts.resolved"
	BatchProcessedName    = "alerts.batch_processed"
	StaffAssignedName     = "staffing.assigned"
)

// AlertCreated is published after a new alert is committed.
type AlertCreated struct {
	BaseEvent
	AlertID         int64    `json:"alertId"`
	AlertType       string   `json:"alertType"`
	Priority        string   `json:"priority"`
	Status          string   `json:"status"`
	ShelfName       string   `json:"shelfName"`
	RackName        string   `json:"rackName"`
	Title           string   `json:"title"`
	Message         string   `json:"message"`
	AssignedStaffID string   `json:"assignedStaffId,omitempty"`
	Recipients      []string `json:"recipients,omitempty"`
}

func (e AlertCreated) EventName() string { return AlertCreatedName }

// AlertUpdated is published when an existing active alert absorbs a new
// observation for the same bucket.
type AlertUpdated struct {
	BaseEvent
	AlertID   int64  `json:"alertId"`
	AlertType string `json:"alertType"`
	Priority  string `json:"priority"`
	ShelfName string `json:"shelfName"`
	RackName  string `json:"rackName"`
	Title     string `json:"title"`
	Message   string `json:"message"`
}

func (e AlertUpdated) EventName() string { return AlertUpdatedName }

// AlertAcknowledged is published when an employee acknowledges an alert.
type AlertAcknowledged struct {
	BaseEvent
	AlertID    int64  `json:"alertId"`
	EmployeeID string `json:"employeeId"`
	ShelfName  string `json:"shelfName"`
	RackName   string `json:"rackName"`
}

func (e AlertAcknowledged) EventName() string { return AlertAcknowledgedName }

// AlertResolved is published when an employee resolves an alert.
type AlertResolved struct {
	BaseEvent
	AlertID    int64  `json:"alertId"`
	EmployeeID string `json:"employeeId"`
	ShelfName  string `json:"shelfName"`
	RackName   string `json:"rackName"`
}

func (e AlertResolved) EventName() string { return AlertResolvedName }

// BatchProcessed is published after an observation batch commits.
type BatchProcessed struct {
	BaseEvent
	CreatedCount int      `json:"createdCount"`
	UpdatedCount int      `json:"updatedCount"`
	Errors       []string `json:"errors,omitempty"`
}

func (e BatchProcessed) EventName() string { return BatchProcessedName }

// StaffAssigned is published when a shelf gains a new active assignee.
type StaffAssigned struct {
	BaseEvent
	EmployeeID string `json:"employeeId"`
	ShelfName  string `json:"shelfName"`
	AssignedBy string `json:"assignedBy"`
}

func (e StaffAssigned) EventName() string { return StaffAssignedName }
