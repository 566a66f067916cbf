// Package repository provides credential lookups for authentication.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNoAccount marks a username with no matching employee row. The service
// folds it into the generic invalid-credentials answer.
var ErrNoAccount = errors.New("no account for username")

// Account carries what login needs to verify a password and mint a token.
type Account struct {
	EmployeeID   string
	Username     string
	Email        *string
	PasswordHash string
	Role         string
	IsActive     bool
	CreatedAt    time.Time
}

// Repository implements credential lookups against the employees table.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new auth repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetByUsername returns the account for a username.
func (r *Repository) GetByUsername(ctx context.Context, username string) (Account, error) {
	var account Account
	err := r.pool.QueryRow(ctx, `
		SELECT employee_id, username, email, password_hash, role, is_active, created_at
		FROM employees
		WHERE username = $1`, username,
	).Scan(&account.EmployeeID, &account.Username, &account.Email,
		&account.PasswordHash, &account.Role, &account.IsActive, &account.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, ErrNoAccount
		}
		return Account{}, fmt.Errorf("get account by username: %w", err)
	}
	return account, nil
}
