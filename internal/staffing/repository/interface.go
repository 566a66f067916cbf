// Package repository provides data access for employees and shelf assignments.
package repository

import (
	"context"
	"time"
)

// Employee is a store worker known to the system.
type Employee struct {
	ID         int64     `json:"id"`
	EmployeeID string    `json:"employeeId"`
	Username   string    `json:"username"`
	Email      *string   `json:"email,omitempty"`
	Phone      *string   `json:"phone,omitempty"`
	Role       string    `json:"role"`
	IsActive   bool      `json:"isActive"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Assignment links an employee to the shelf they are responsible for.
type Assignment struct {
	ID         int64     `json:"id"`
	EmployeeID string    `json:"employeeId"`
	ShelfName  string    `json:"shelfName"`
	AssignedBy *string   `json:"assignedBy,omitempty"`
	IsActive   bool      `json:"isActive"`
	Notes      *string   `json:"notes,omitempty"`
	AssignedAt time.Time `json:"assignedAt"`
}

// HistoryEntry is one append-only assignment audit record.
type HistoryEntry struct {
	ID          int64     `json:"id"`
	EmployeeID  string    `json:"employeeId"`
	ShelfName   string    `json:"shelfName"`
	Action      string    `json:"action"`
	PerformedBy *string   `json:"performedBy,omitempty"`
	Notes       *string   `json:"notes,omitempty"`
	ActionAt    time.Time `json:"actionAt"`
}

// CreateEmployeeParams holds the fields for registering an employee.
type CreateEmployeeParams struct {
	EmployeeID   string
	Username     string
	Email        *string
	Phone        *string
	PasswordHash string
	Role         string
}

// AssignParams holds the fields for assigning an employee to a shelf.
type AssignParams struct {
	EmployeeID string
	ShelfName  string
	AssignedBy string
	Notes      *string
}

// Repository defines data access for employees and assignments.
type Repository interface {
	CreateEmployee(ctx context.Context, params CreateEmployeeParams) (Employee, error)
	ListEmployees(ctx context.Context) ([]Employee, error)
	GetEmployee(ctx context.Context, employeeID string) (Employee, error)
	SetEmployeeActive(ctx context.Context, employeeID string, active bool) error

	IsActive(ctx context.Context, employeeID string) (bool, error)
	IsManager(ctx context.Context, employeeID string) (bool, error)
	// ActiveManagerIDs lists employee IDs of active manager-class employees.
	ActiveManagerIDs(ctx context.Context) ([]string, error)

	// ActiveAssignee returns the employee responsible for a shelf, "" when
	// nobody is assigned.
	ActiveAssignee(ctx context.Context, shelf string) (string, error)
	// ListAssignments returns active assignments; a non-empty shelf narrows
	// the result to that shelf.
	ListAssignments(ctx context.Context, shelf string) ([]Assignment, error)
	// Assign replaces the shelf's active assignment atomically: any current
	// assignee is deactivated and the handover is recorded in the history.
	Assign(ctx context.Context, params AssignParams) (Assignment, error)
	// Deactivate ends an assignment. Deactivating an already inactive
	// assignment fails with not-found.
	Deactivate(ctx context.Context, id int64, performedBy string) error
	History(ctx context.Context, shelf string) ([]HistoryEntry, error)
}
