// Package service implements staffing: employee registration, the shelf
// assignment ledger, and the role directory the alert engine consults.
package service

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"shelfsense_backend/internal/events"
	"shelfsense_backend/internal/staffing/repository"
	"shelfsense_backend/platform/apperr"
	"shelfsense_backend/platform/logger"
	"shelfsense_backend/platform/phone"
)

var validRoles = map[string]bool{
	"staff":         true,
	"manager":       true,
	"store_manager": true,
	"producer":      true,
}

// Service provides staffing operations.
type Service struct {
	repo repository.Repository
	log  *logger.Logger
	bus  events.Bus
}

// New creates the staffing service.
func New(repo repository.Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// SetEventBus wires the domain event bus.
func (s *Service) SetEventBus(bus events.Bus) {
	s.bus = bus
}

// CreateEmployeeInput carries the registration fields before hashing.
type CreateEmployeeInput struct {
	EmployeeID string
	Username   string
	Email      *string
	Phone      *string
	Password   string
	Role       string
}

// CreateEmployee registers an employee. The phone number is normalized to
// E.164 and the password is hashed before storage.
func (s *Service) CreateEmployee(ctx context.Context, input CreateEmployeeInput) (repository.Employee, error) {
	role := strings.ToLower(strings.TrimSpace(input.Role))
	if role == "" {
		role = "staff"
	}
	if !validRoles[role] {
		return repository.Employee{}, apperr.Validation(fmt.Sprintf("unknown role %q", input.Role))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return repository.Employee{}, fmt.Errorf("hash password: %w", err)
	}

	if input.Phone != nil {
		if normalized := phone.NormalizeE164(*input.Phone); normalized != "" {
			input.Phone = &normalized
		}
	}

	emp, err := s.repo.CreateEmployee(ctx, repository.CreateEmployeeParams{
		EmployeeID:   strings.TrimSpace(input.EmployeeID),
		Username:     strings.TrimSpace(input.Username),
		Email:        input.Email,
		Phone:        input.Phone,
		PasswordHash: string(hash),
		Role:         role,
	})
	if err != nil {
		return repository.Employee{}, err
	}

	s.log.Info("employee registered", "employeeId", emp.EmployeeID, "role", emp.Role)
	return emp, nil
}

// ListEmployees returns all employees.
func (s *Service) ListEmployees(ctx context.Context) ([]repository.Employee, error) {
	return s.repo.ListEmployees(ctx)
}

// GetEmployee returns one employee by employee ID.
func (s *Service) GetEmployee(ctx context.Context, employeeID string) (repository.Employee, error) {
	return s.repo.GetEmployee(ctx, employeeID)
}

// SetEmployeeActive activates or deactivates an employee.
func (s *Service) SetEmployeeActive(ctx context.Context, employeeID string, active bool) error {
	if err := s.repo.SetEmployeeActive(ctx, employeeID, active); err != nil {
		return err
	}
	s.log.Info("employee activity changed", "employeeId", employeeID, "active", active)
	return nil
}

// IsActive reports whether an employee exists and is active.
func (s *Service) IsActive(ctx context.Context, employeeID string) (bool, error) {
	return s.repo.IsActive(ctx, employeeID)
}

// IsManager reports whether an employee holds a manager-class role.
func (s *Service) IsManager(ctx context.Context, employeeID string) (bool, error) {
	return s.repo.IsManager(ctx, employeeID)
}

// ActiveManagerIDs lists active manager-class employee IDs.
func (s *Service) ActiveManagerIDs(ctx context.Context) ([]string, error) {
	return s.repo.ActiveManagerIDs(ctx)
}

// ActiveAssignee returns the employee responsible for a shelf, "" when the
// shelf is unassigned.
func (s *Service) ActiveAssignee(ctx context.Context, shelf string) (string, error) {
	return s.repo.ActiveAssignee(ctx, shelf)
}

// ListAssignments returns active assignments, optionally for one shelf.
func (s *Service) ListAssignments(ctx context.Context, shelf string) ([]repository.Assignment, error) {
	return s.repo.ListAssignments(ctx, shelf)
}

// Assign gives an employee responsibility for a shelf, replacing any current
// assignee. Only active employees can be assigned.
func (s *Service) Assign(ctx context.Context, employeeID, shelf, assignedBy string, notes *string) (repository.Assignment, error) {
	active, err := s.repo.IsActive(ctx, employeeID)
	if err != nil {
		return repository.Assignment{}, fmt.Errorf("assignee check: %w", err)
	}
	if !active {
		return repository.Assignment{}, apperr.Validation("employee is not active")
	}

	assignment, err := s.repo.Assign(ctx, repository.AssignParams{
		EmployeeID: employeeID,
		ShelfName:  shelf,
		AssignedBy: assignedBy,
		Notes:      notes,
	})
	if err != nil {
		return repository.Assignment{}, err
	}

	s.log.Info("shelf assigned", "shelf", shelf, "employeeId", employeeID, "by", assignedBy)
	if s.bus != nil {
		s.bus.Publish(ctx, events.StaffAssigned{
			BaseEvent:  events.NewBaseEvent(),
			EmployeeID: employeeID,
			ShelfName:  shelf,
			AssignedBy: assignedBy,
		})
	}
	return assignment, nil
}

// Deactivate ends an assignment.
func (s *Service) Deactivate(ctx context.Context, id int64, performedBy string) error {
	return s.repo.Deactivate(ctx, id, performedBy)
}

// History returns assignment audit entries, optionally for one shelf.
func (s *Service) History(ctx context.Context, shelf string) ([]repository.HistoryEntry, error) {
	return s.repo.History(ctx, shelf)
}
