// Package service implements employee authentication: password verification
// and access token issuance.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"shelfsense_backend/internal/auth/repository"
	"shelfsense_backend/platform/config"
	"shelfsense_backend/platform/logger"
)

// ErrInvalidCredentials covers unknown usernames, wrong passwords and
// deactivated accounts alike; callers must not be able to tell them apart.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Accounts is the credential lookup the service needs.
type Accounts interface {
	GetByUsername(ctx context.Context, username string) (repository.Account, error)
}

// Session is a successful login result.
type Session struct {
	AccessToken string
	ExpiresAt   time.Time
	EmployeeID  string
	Username    string
	Role        string
}

// Service provides authentication operations.
type Service struct {
	accounts Accounts
	cfg      config.JWTConfig
	log      *logger.Logger
}

// New creates the auth service.
func New(accounts Accounts, cfg config.JWTConfig, log *logger.Logger) *Service {
	return &Service{
		accounts: accounts,
		cfg:      cfg,
		log:      log,
	}
}

// Login verifies the password and issues an access token carrying the
// employee ID and role.
func (s *Service) Login(ctx context.Context, username, password string) (Session, error) {
	account, err := s.accounts.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNoAccount) {
			s.log.AuthEvent("login", username, false, "unknown username")
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		s.log.AuthEvent("login", username, false, "wrong password")
		return Session{}, ErrInvalidCredentials
	}
	if !account.IsActive {
		s.log.AuthEvent("login", username, false, "account deactivated")
		return Session{}, ErrInvalidCredentials
	}

	token, expiresAt, err := s.issueAccessToken(account)
	if err != nil {
		return Session{}, err
	}

	s.log.AuthEvent("login", account.EmployeeID, true, "")
	return Session{
		AccessToken: token,
		ExpiresAt:   expiresAt,
		EmployeeID:  account.EmployeeID,
		Username:    account.Username,
		Role:        account.Role,
	}, nil
}

func (s *Service) issueAccessToken(account repository.Account) (string, time.Time, error) {
	now := time.Now().UTC()
	expiresAt := now.Add(s.cfg.GetJWTAccessTTL())

	claims := jwt.MapClaims{
		"sub":   account.EmployeeID,
		"roles": []string{account.Role},
		"type":  "access",
		"iat":   now.Unix(),
		"exp":   expiresAt.Unix(),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte(s.cfg.GetJWTAccessSecret()))
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}
