// Package handler exposes in-app notifications and the SSE stream over HTTP.
package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"shelfsense_backend/internal/notification/inapp"
	"shelfsense_backend/platform/apperr"
	"shelfsense_backend/platform/httpkit"
	"shelfsense_backend/platform/logger"
)

// Handler handles notification HTTP requests.
type Handler struct {
	inapp *inapp.Repository
	log   *logger.Logger
}

// New creates a notification handler.
func New(inappRepo *inapp.Repository, log *logger.Logger) *Handler {
	return &Handler{
		inapp: inappRepo,
		log:   log,
	}
}

// List returns the caller's notifications newest first.
func (h *Handler) List(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	notifications, total, err := h.inapp.List(c.Request.Context(), identity.EmployeeID(), limit, offset)
	if err != nil {
		h.log.Error("list notifications failed", "error", err)
		httpkit.HandleError(c, apperr.Internal("could not list notifications"))
		return
	}

	httpkit.OK(c, gin.H{"items": notifications, "total": total})
}

// UnreadCount returns the caller's unread notification count.
func (h *Handler) UnreadCount(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	count, err := h.inapp.CountUnread(c.Request.Context(), identity.EmployeeID())
	if err != nil {
		h.log.Error("unread count failed", "error", err)
		httpkit.HandleError(c, apperr.Internal("could not count notifications"))
		return
	}

	httpkit.OK(c, gin.H{"unread": count})
}

// MarkRead marks one of the caller's notifications read.
func (h *Handler) MarkRead(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.HandleError(c, apperr.BadRequest("invalid notification id"))
		return
	}

	if err := h.inapp.MarkRead(c.Request.Context(), id, identity.EmployeeID()); err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, gin.H{"id": id, "read": true})
}

// MarkAllRead marks every unread notification of the caller read.
func (h *Handler) MarkAllRead(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	updated, err := h.inapp.MarkAllRead(c.Request.Context(), identity.EmployeeID())
	if err != nil {
		h.log.Error("mark all read failed", "error", err)
		httpkit.HandleError(c, apperr.Internal("could not update notifications"))
		return
	}
	httpkit.OK(c, gin.H{"updated": updated})
}
