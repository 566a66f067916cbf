// Package handler exposes authentication over HTTP.
package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"shelfsense_backend/internal/auth/service"
	"shelfsense_backend/internal/auth/transport"
	"shelfsense_backend/platform/apperr"
	"shelfsense_backend/platform/httpkit"
	"shelfsense_backend/platform/logger"
	"shelfsense_backend/platform/validator"
)

// Handler handles auth HTTP requests.
type Handler struct {
	service  *service.Service
	validate *validator.Validator
	log      *logger.Logger
}

// New creates an auth handler.
func New(svc *service.Service, validate *validator.Validator, log *logger.Logger) *Handler {
	return &Handler{
		service:  svc,
		validate: validate,
		log:      log,
	}
}

// Login verifies credentials and returns an access token.
func (h *Handler) Login(c *gin.Context) {
	var req transport.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.HandleError(c, apperr.BadRequest("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.HandleError(c, apperr.Validation(err.Error()))
		return
	}

	session, err := h.service.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			httpkit.HandleError(c, apperr.Unauthorized("invalid credentials"))
			return
		}
		h.log.Error("login failed", "error", err)
		httpkit.HandleError(c, apperr.Internal("could not sign in"))
		return
	}

	httpkit.OK(c, transport.LoginResponse{
		AccessToken: session.AccessToken,
		TokenType:   "Bearer",
		ExpiresAt:   session.ExpiresAt,
		EmployeeID:  session.EmployeeID,
		Username:    session.Username,
		Role:        session.Role,
	})
}

// Me describes the authenticated caller from its token claims.
func (h *Handler) Me(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	httpkit.OK(c, transport.MeResponse{
		EmployeeID: identity.EmployeeID(),
		Roles:      identity.Roles(),
	})
}
