// Package handler exposes the alert engine over HTTP.
package handler

import (
	"context"
	"net/http"
	"strconv"

	"shelfsense_backend/internal/alerts/service"
	"shelfsense_backend/internal/alerts/transport"
	"shelfsense_backend/platform/apperr"
	"shelfsense_backend/platform/httpkit"
	"shelfsense_backend/platform/logger"
	"shelfsense_backend/platform/objstore"
	"shelfsense_backend/platform/sanitize"
	"shelfsense_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

// Handler handles alert HTTP requests.
type Handler struct {
	service  *service.Service
	storage  *objstore.Service
	validate *validator.Validator
	log      *logger.Logger
}

// New creates an alert handler. storage may be nil when object storage is
// not configured; snapshot uploads then return an error.
func New(svc *service.Service, storage *objstore.Service, validate *validator.Validator, log *logger.Logger) *Handler {
	return &Handler{
		service:  svc,
		storage:  storage,
		validate: validate,
		log:      log,
	}
}

// Ingest processes an observation batch from the perception pipeline.
func (h *Handler) Ingest(c *gin.Context) {
	var req transport.IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.HandleError(c, apperr.BadRequest("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.HandleError(c, apperr.Validation(err.Error()))
		return
	}

	result := h.service.ProcessBatch(c.Request.Context(), req.ToBatch())
	if !result.Success {
		httpkit.JSON(c, http.StatusBadRequest, result)
		return
	}
	httpkit.OK(c, result)
}

// UploadSnapshot stores a rack snapshot image and returns its object key.
func (h *Handler) UploadSnapshot(c *gin.Context) {
	if h.storage == nil {
		httpkit.HandleError(c, apperr.Internal("snapshot storage is not configured"))
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		httpkit.HandleError(c, apperr.BadRequest("missing file upload"))
		return
	}
	defer file.Close()

	key, err := h.storage.UploadSnapshot(c.Request.Context(),
		header.Filename, header.Header.Get("Content-Type"), file, header.Size)
	if err != nil {
		httpkit.HandleError(c, apperr.Wrap(apperr.KindBadRequest, "snapshot upload failed", err))
		return
	}

	httpkit.OK(c, transport.SnapshotUploadResponse{SnapshotKey: key})
}

// ListActive returns active alerts, narrowed to the caller's own alerts
// for non-manager employees.
func (h *Handler) ListActive(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	alerts, err := h.service.GetActive(c.Request.Context(), identity.EmployeeID())
	if err != nil {
		h.log.Error("list active alerts failed", "error", err)
		httpkit.HandleError(c, apperr.Internal("could not list alerts"))
		return
	}

	httpkit.OK(c, transport.AlertListResponse{Items: alerts, Total: len(alerts)})
}

// Get returns one alert.
func (h *Handler) Get(c *gin.Context) {
	id, ok := h.alertID(c)
	if !ok {
		return
	}

	alert, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, alert)
}

// Acknowledge transitions an alert to acknowledged.
func (h *Handler) Acknowledge(c *gin.Context) {
	h.transition(c, h.service.Acknowledge, "acknowledged")
}

// Resolve transitions an alert to resolved.
func (h *Handler) Resolve(c *gin.Context) {
	h.transition(c, h.service.Resolve, "resolved")
}

// transition runs one lifecycle operation. An ineligible or missing alert
// maps to 404, matching the engine's boolean not-applicable contract.
func (h *Handler) transition(c *gin.Context, apply func(ctx context.Context, id int64, employeeID, notes string) (bool, error), status string) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	id, ok := h.alertID(c)
	if !ok {
		return
	}

	// Body is optional; only validate when one was sent.
	var req transport.TransitionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			httpkit.HandleError(c, apperr.BadRequest("invalid request body"))
			return
		}
		if err := h.validate.Struct(req); err != nil {
			httpkit.HandleError(c, apperr.Validation(err.Error()))
			return
		}
	}

	done, err := apply(c.Request.Context(), id, identity.EmployeeID(), sanitize.Text(req.Notes))
	if err != nil {
		h.log.Error("alert transition failed", "alert_id", id, "status", status, "error", err)
		httpkit.HandleError(c, apperr.Internal("could not update alert"))
		return
	}
	if !done {
		httpkit.HandleError(c, apperr.NotFound("alert not found or not in an eligible state"))
		return
	}

	httpkit.OK(c, transport.TransitionResponse{Success: true, AlertID: id, Status: status})
}

// Statistics returns the fresh active-alert counts.
func (h *Handler) Statistics(c *gin.Context) {
	stats, err := h.service.Statistics(c.Request.Context())
	if err != nil {
		h.log.Error("alert statistics failed", "error", err)
		httpkit.HandleError(c, apperr.Internal("could not compute statistics"))
		return
	}
	httpkit.OK(c, stats)
}

// History returns an alert's audit trail, newest first.
func (h *Handler) History(c *gin.Context) {
	id, ok := h.alertID(c)
	if !ok {
		return
	}

	entries, err := h.service.History(c.Request.Context(), id)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, transport.HistoryResponse{AlertID: id, Items: entries, Total: len(entries)})
}

func (h *Handler) alertID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		httpkit.HandleError(c, apperr.BadRequest("invalid alert id"))
		return 0, false
	}
	return id, true
}
