package adapters

import (
	"context"

	alertsvc "shelfsense_backend/internal/alerts/service"
	staffingsvc "shelfsense_backend/internal/staffing/service"
	"shelfsense_backend/platform/apperr"
)

// StaffingDirectory adapts the staffing service to the alert engine's
// assignment lookup and staff directory ports, and to the notification
// module's email directory.
type StaffingDirectory struct {
	staffing *staffingsvc.Service
}

// NewStaffingDirectory creates the staffing adapter.
func NewStaffingDirectory(staffing *staffingsvc.Service) *StaffingDirectory {
	return &StaffingDirectory{staffing: staffing}
}

// Compile-time checks against the ports.
var (
	_ alertsvc.AssignmentLookup = (*StaffingDirectory)(nil)
	_ alertsvc.StaffDirectory   = (*StaffingDirectory)(nil)
)

// ActiveAssignee returns the employee responsible for a shelf, "" when none.
func (a *StaffingDirectory) ActiveAssignee(ctx context.Context, shelf string) (string, error) {
	return a.staffing.ActiveAssignee(ctx, shelf)
}

// IsActive reports whether the employee exists and is active.
func (a *StaffingDirectory) IsActive(ctx context.Context, employeeID string) (bool, error) {
	return a.staffing.IsActive(ctx, employeeID)
}

// IsManager reports whether the employee holds a manager-class role.
func (a *StaffingDirectory) IsManager(ctx context.Context, employeeID string) (bool, error) {
	return a.staffing.IsManager(ctx, employeeID)
}

// ActiveManagerIDs lists active manager-class employee IDs.
func (a *StaffingDirectory) ActiveManagerIDs(ctx context.Context) ([]string, error) {
	return a.staffing.ActiveManagerIDs(ctx)
}

// EmployeeEmail returns an employee's email address, "" when the employee
// is unknown or has no address on file.
func (a *StaffingDirectory) EmployeeEmail(ctx context.Context, employeeID string) (string, error) {
	emp, err := a.staffing.GetEmployee(ctx, employeeID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return "", nil
		}
		return "", err
	}
	if emp.Email == nil {
		return "", nil
	}
	return *emp.Email, nil
}
