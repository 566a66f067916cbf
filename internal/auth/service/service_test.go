package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"shelfsense_backend/internal/auth/repository"
	"shelfsense_backend/platform/logger"
)

type testJWTConfig struct{}

func (testJWTConfig) GetJWTAccessSecret() string     { return "test-secret" }
func (testJWTConfig) GetJWTAccessTTL() time.Duration { return time.Hour }

type fakeAccounts struct {
	accounts map[string]repository.Account
}

func (f *fakeAccounts) GetByUsername(_ context.Context, username string) (repository.Account, error) {
	account, ok := f.accounts[username]
	if !ok {
		return repository.Account{}, repository.ErrNoAccount
	}
	return account, nil
}

func newAuthFixture(t *testing.T, active bool) *Service {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	accounts := &fakeAccounts{accounts: map[string]repository.Account{
		"jdoe": {
			EmployeeID:   "E201",
			Username:     "jdoe",
			PasswordHash: string(hash),
			Role:         "staff",
			IsActive:     active,
		},
	}}
	return New(accounts, testJWTConfig{}, logger.New("test"))
}

func TestLoginIssuesAccessToken(t *testing.T) {
	svc := newAuthFixture(t, true)

	session, err := svc.Login(context.Background(), "jdoe", "correct-horse")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if session.EmployeeID != "E201" || session.Role != "staff" {
		t.Fatalf("unexpected session %+v", session)
	}

	parsed, err := jwt.Parse(session.AccessToken, func(token *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token does not verify: %v", err)
	}

	claims := parsed.Claims.(jwt.MapClaims)
	if claims["sub"] != "E201" {
		t.Fatalf("expected sub E201, got %v", claims["sub"])
	}
	if claims["type"] != "access" {
		t.Fatalf("expected access token type, got %v", claims["type"])
	}
	roles, _ := claims["roles"].([]interface{})
	if len(roles) != 1 || roles[0] != "staff" {
		t.Fatalf("expected roles [staff], got %v", claims["roles"])
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	svc := newAuthFixture(t, true)

	if _, err := svc.Login(context.Background(), "jdoe", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginRejectsUnknownUsername(t *testing.T) {
	svc := newAuthFixture(t, true)

	if _, err := svc.Login(context.Background(), "ghost", "correct-horse"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginRejectsDeactivatedAccount(t *testing.T) {
	svc := newAuthFixture(t, false)

	if _, err := svc.Login(context.Background(), "jdoe", "correct-horse"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}
