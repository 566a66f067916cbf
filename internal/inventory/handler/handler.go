// Package handler exposes the inventory catalog over HTTP.
package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"shelfsense_backend/internal/inventory/service"
	"shelfsense_backend/internal/inventory/transport"
	"shelfsense_backend/platform/apperr"
	"shelfsense_backend/platform/httpkit"
	"shelfsense_backend/platform/logger"
	"shelfsense_backend/platform/validator"
)

// Handler handles inventory HTTP requests.
type Handler struct {
	service  *service.Service
	validate *validator.Validator
	log      *logger.Logger
}

// New creates an inventory handler.
func New(svc *service.Service, validate *validator.Validator, log *logger.Logger) *Handler {
	return &Handler{
		service:  svc,
		validate: validate,
		log:      log,
	}
}

// List returns all catalog entries.
func (h *Handler) List(c *gin.Context) {
	items, err := h.service.List(c.Request.Context())
	if err != nil {
		h.log.Error("list catalog failed", "error", err)
		httpkit.HandleError(c, apperr.Internal("could not list catalog entries"))
		return
	}
	httpkit.OK(c, transport.ItemListResponse{Items: items, Total: len(items)})
}

// Create adds a catalog entry.
func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.HandleError(c, apperr.BadRequest("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.HandleError(c, apperr.Validation(err.Error()))
		return
	}

	item, err := h.service.Create(c.Request.Context(), req.ToParams())
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.JSON(c, http.StatusCreated, item)
}

// Update modifies a catalog entry.
func (h *Handler) Update(c *gin.Context) {
	id, ok := h.itemID(c)
	if !ok {
		return
	}

	var req transport.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.HandleError(c, apperr.BadRequest("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.HandleError(c, apperr.Validation(err.Error()))
		return
	}

	item, err := h.service.Update(c.Request.Context(), req.ToParams(id))
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, item)
}

// Delete removes a catalog entry.
func (h *Handler) Delete(c *gin.Context) {
	id, ok := h.itemID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		httpkit.HandleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetLocation returns the catalog entry at a (shelf, rack) location.
func (h *Handler) GetLocation(c *gin.Context) {
	shelf := c.Param("shelf")
	rack := c.Param("rack")

	item, err := h.service.FindByLocation(c.Request.Context(), shelf, rack)
	if err != nil {
		h.log.Error("location lookup failed", "shelf", shelf, "rack", rack, "error", err)
		httpkit.HandleError(c, apperr.Internal("could not look up location"))
		return
	}
	if item == nil {
		httpkit.HandleError(c, apperr.NotFound("location not found in catalog"))
		return
	}
	httpkit.OK(c, item)
}

// ShelfQR returns the PNG QR code for a shelf's physical label.
func (h *Handler) ShelfQR(c *gin.Context) {
	png, err := h.service.ShelfLabelPNG(c.Request.Context(), c.Param("shelf"))
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

func (h *Handler) itemID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		httpkit.HandleError(c, apperr.BadRequest("invalid catalog entry id"))
		return 0, false
	}
	return id, true
}
