package transport

import (
	"shelfsense_backend/internal/staffing/repository"
	"shelfsense_backend/internal/staffing/service"
)

// CreateEmployeeRequest registers a new employee.
type CreateEmployeeRequest struct {
	EmployeeID string  `json:"employeeId" validate:"required,max=32"`
	Username   string  `json:"username" validate:"required,min=3,max=64"`
	Email      *string `json:"email" validate:"omitempty,email"`
	Phone      *string `json:"phone" validate:"omitempty,max=32"`
	Password   string  `json:"password" validate:"required,min=8,max=128"`
	Role       string  `json:"role" validate:"omitempty,oneof=staff manager store_manager producer"`
}

// ToInput converts the request into a service input.
func (r CreateEmployeeRequest) ToInput() service.CreateEmployeeInput {
	return service.CreateEmployeeInput{
		EmployeeID: r.EmployeeID,
		Username:   r.Username,
		Email:      r.Email,
		Phone:      r.Phone,
		Password:   r.Password,
		Role:       r.Role,
	}
}

// SetActiveRequest toggles an employee's active flag.
type SetActiveRequest struct {
	Active bool `json:"active"`
}

// AssignRequest assigns an employee to a shelf.
type AssignRequest struct {
	EmployeeID string  `json:"employeeId" validate:"required,max=32"`
	ShelfName  string  `json:"shelfName" validate:"required,max=64"`
	Notes      *string `json:"notes" validate:"omitempty,max=1000"`
}

// EmployeeListResponse wraps the employee listing.
type EmployeeListResponse struct {
	Items []repository.Employee `json:"items"`
	Total int                   `json:"total"`
}

// AssignmentListResponse wraps the assignment listing.
type AssignmentListResponse struct {
	Items []repository.Assignment `json:"items"`
	Total int                     `json:"total"`
}

// HistoryResponse wraps the assignment audit trail.
type HistoryResponse struct {
	Items []repository.HistoryEntry `json:"items"`
	Total int                       `json:"total"`
}
