package transport

import "time"

// LoginRequest is the credential payload.
type LoginRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// LoginResponse returns the issued access token and the caller's identity.
type LoginResponse struct {
	AccessToken string    `json:"accessToken"`
	TokenType   string    `json:"tokenType"`
	ExpiresAt   time.Time `json:"expiresAt"`
	EmployeeID  string    `json:"employeeId"`
	Username    string    `json:"username"`
	Role        string    `json:"role"`
}

// MeResponse describes the authenticated caller.
type MeResponse struct {
	EmployeeID string   `json:"employeeId"`
	Roles      []string `json:"roles"`
}
