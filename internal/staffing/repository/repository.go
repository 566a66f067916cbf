package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"shelfsense_backend/platform/apperr"
)

const employeeNotFoundMessage = "employee not found"

const employeeColumns = `id, employee_id, username, email, phone, role, is_active, created_at, updated_at`
const assignmentColumns = `id, employee_id, shelf_name, assigned_by, is_active, notes, assigned_at`

// Repo implements the staffing repository.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new staffing repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// CreateEmployee registers a new employee.
func (r *Repo) CreateEmployee(ctx context.Context, params CreateEmployeeParams) (Employee, error) {
	query := `
		INSERT INTO employees (employee_id, username, email, phone, password_hash, role)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + employeeColumns

	emp, err := scanEmployee(r.pool.QueryRow(ctx, query,
		params.EmployeeID, params.Username, params.Email, params.Phone,
		params.PasswordHash, params.Role))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Employee{}, apperr.Conflict("employee id or username already taken")
		}
		return Employee{}, fmt.Errorf("create employee: %w", err)
	}
	return emp, nil
}

// ListEmployees returns all employees ordered by employee ID.
func (r *Repo) ListEmployees(ctx context.Context) ([]Employee, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+employeeColumns+` FROM employees ORDER BY employee_id`)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	defer rows.Close()

	var employees []Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("scan employee: %w", err)
		}
		employees = append(employees, emp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate employees: %w", err)
	}
	return employees, nil
}

// GetEmployee returns one employee by their employee ID.
func (r *Repo) GetEmployee(ctx context.Context, employeeID string) (Employee, error) {
	emp, err := scanEmployee(r.pool.QueryRow(ctx,
		`SELECT `+employeeColumns+` FROM employees WHERE employee_id = $1`, employeeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Employee{}, apperr.NotFound(employeeNotFoundMessage)
		}
		return Employee{}, fmt.Errorf("get employee: %w", err)
	}
	return emp, nil
}

// SetEmployeeActive activates or deactivates an employee.
func (r *Repo) SetEmployeeActive(ctx context.Context, employeeID string, active bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE employees SET is_active = $2, updated_at = now() WHERE employee_id = $1`,
		employeeID, active)
	if err != nil {
		return fmt.Errorf("set employee active: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(employeeNotFoundMessage)
	}
	return nil
}

// IsActive reports whether the employee exists and is active.
func (r *Repo) IsActive(ctx context.Context, employeeID string) (bool, error) {
	var active bool
	err := r.pool.QueryRow(ctx,
		`SELECT is_active FROM employees WHERE employee_id = $1`, employeeID).Scan(&active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("employee active check: %w", err)
	}
	return active, nil
}

// IsManager reports whether the employee holds a manager-class role.
func (r *Repo) IsManager(ctx context.Context, employeeID string) (bool, error) {
	var isManager bool
	err := r.pool.QueryRow(ctx, `
		SELECT role IN ('manager', 'store_manager')
		FROM employees
		WHERE employee_id = $1`, employeeID).Scan(&isManager)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("employee role check: %w", err)
	}
	return isManager, nil
}

// ActiveManagerIDs lists the employee IDs of active manager-class employees.
func (r *Repo) ActiveManagerIDs(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT employee_id
		FROM employees
		WHERE is_active AND role IN ('manager', 'store_manager')
		ORDER BY employee_id`)
	if err != nil {
		return nil, fmt.Errorf("list active managers: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan manager id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate manager ids: %w", err)
	}
	return ids, nil
}

// ActiveAssignee returns the employee assigned to a shelf, "" when none.
func (r *Repo) ActiveAssignee(ctx context.Context, shelf string) (string, error) {
	var employeeID string
	err := r.pool.QueryRow(ctx,
		`SELECT employee_id FROM staff_assignments WHERE shelf_name = $1 AND is_active`,
		shelf).Scan(&employeeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("active assignee lookup: %w", err)
	}
	return employeeID, nil
}

// ListAssignments returns active assignments, optionally narrowed to a shelf.
func (r *Repo) ListAssignments(ctx context.Context, shelf string) ([]Assignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM staff_assignments WHERE is_active`
	args := []any{}
	if shelf != "" {
		query += ` AND shelf_name = $1`
		args = append(args, shelf)
	}
	query += ` ORDER BY shelf_name`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	defer rows.Close()

	var assignments []Assignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		assignments = append(assignments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate assignments: %w", err)
	}
	return assignments, nil
}

// Assign replaces a shelf's active assignment in one transaction.
func (r *Repo) Assign(ctx context.Context, params AssignParams) (Assignment, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Assignment{}, fmt.Errorf("assign: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, `
		UPDATE staff_assignments
		SET is_active = FALSE, updated_at = now()
		WHERE shelf_name = $1 AND is_active
		RETURNING employee_id`, params.ShelfName)
	if err != nil {
		return Assignment{}, fmt.Errorf("assign: deactivate previous: %w", err)
	}
	var previous []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return Assignment{}, fmt.Errorf("assign: scan previous: %w", err)
		}
		previous = append(previous, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return Assignment{}, fmt.Errorf("assign: iterate previous: %w", err)
	}

	for _, prev := range previous {
		if _, err := tx.Exec(ctx, `
			INSERT INTO assignment_history (employee_id, shelf_name, action, performed_by)
			VALUES ($1, $2, 'unassigned', $3)`,
			prev, params.ShelfName, params.AssignedBy); err != nil {
			return Assignment{}, fmt.Errorf("assign: record handover: %w", err)
		}
	}

	assignment, err := scanAssignment(tx.QueryRow(ctx, `
		INSERT INTO staff_assignments (employee_id, shelf_name, assigned_by, notes)
		VALUES ($1, $2, $3, $4)
		RETURNING `+assignmentColumns,
		params.EmployeeID, params.ShelfName, params.AssignedBy, params.Notes))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return Assignment{}, apperr.NotFound(employeeNotFoundMessage)
		}
		return Assignment{}, fmt.Errorf("assign: insert: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO assignment_history (employee_id, shelf_name, action, performed_by, notes)
		VALUES ($1, $2, 'assigned', $3, $4)`,
		params.EmployeeID, params.ShelfName, params.AssignedBy, params.Notes); err != nil {
		return Assignment{}, fmt.Errorf("assign: record assignment: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return Assignment{}, fmt.Errorf("assign: commit: %w", err)
	}
	return assignment, nil
}

// Deactivate ends an active assignment.
func (r *Repo) Deactivate(ctx context.Context, id int64, performedBy string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("deactivate assignment: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var employeeID, shelfName string
	err = tx.QueryRow(ctx, `
		UPDATE staff_assignments
		SET is_active = FALSE, updated_at = now()
		WHERE id = $1 AND is_active
		RETURNING employee_id, shelf_name`, id).Scan(&employeeID, &shelfName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.NotFound("assignment not found or already inactive")
		}
		return fmt.Errorf("deactivate assignment: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO assignment_history (employee_id, shelf_name, action, performed_by)
		VALUES ($1, $2, 'unassigned', $3)`,
		employeeID, shelfName, performedBy); err != nil {
		return fmt.Errorf("deactivate assignment: record: %w", err)
	}

	return tx.Commit(ctx)
}

// History returns assignment audit entries newest first, optionally narrowed
// to a shelf.
func (r *Repo) History(ctx context.Context, shelf string) ([]HistoryEntry, error) {
	query := `
		SELECT id, employee_id, shelf_name, action, performed_by, notes, action_at
		FROM assignment_history`
	args := []any{}
	if shelf != "" {
		query += ` WHERE shelf_name = $1`
		args = append(args, shelf)
	}
	query += ` ORDER BY action_at DESC, id DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("assignment history: %w", err)
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		if err := rows.Scan(&e.ID, &e.EmployeeID, &e.ShelfName, &e.Action,
			&e.PerformedBy, &e.Notes, &e.ActionAt); err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return entries, nil
}

func scanEmployee(row pgx.Row) (Employee, error) {
	var emp Employee
	err := row.Scan(&emp.ID, &emp.EmployeeID, &emp.Username, &emp.Email, &emp.Phone,
		&emp.Role, &emp.IsActive, &emp.CreatedAt, &emp.UpdatedAt)
	return emp, err
}

func scanAssignment(row pgx.Row) (Assignment, error) {
	var a Assignment
	err := row.Scan(&a.ID, &a.EmployeeID, &a.ShelfName, &a.AssignedBy,
		&a.IsActive, &a.Notes, &a.AssignedAt)
	return a, err
}
