// Package handler exposes staffing over HTTP.
package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"shelfsense_backend/internal/staffing/service"
	"shelfsense_backend/internal/staffing/transport"
	"shelfsense_backend/platform/apperr"
	"shelfsense_backend/platform/httpkit"
	"shelfsense_backend/platform/logger"
	"shelfsense_backend/platform/sanitize"
	"shelfsense_backend/platform/validator"
)

// Handler handles staffing HTTP requests.
type Handler struct {
	service  *service.Service
	validate *validator.Validator
	log      *logger.Logger
}

// New creates a staffing handler.
func New(svc *service.Service, validate *validator.Validator, log *logger.Logger) *Handler {
	return &Handler{
		service:  svc,
		validate: validate,
		log:      log,
	}
}

// ListEmployees returns all employees.
func (h *Handler) ListEmployees(c *gin.Context) {
	employees, err := h.service.ListEmployees(c.Request.Context())
	if err != nil {
		h.log.Error("list employees failed", "error", err)
		httpkit.HandleError(c, apperr.Internal("could not list employees"))
		return
	}
	httpkit.OK(c, transport.EmployeeListResponse{Items: employees, Total: len(employees)})
}

// CreateEmployee registers a new employee.
func (h *Handler) CreateEmployee(c *gin.Context) {
	var req transport.CreateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.HandleError(c, apperr.BadRequest("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.HandleError(c, apperr.Validation(err.Error()))
		return
	}

	emp, err := h.service.CreateEmployee(c.Request.Context(), req.ToInput())
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.JSON(c, http.StatusCreated, emp)
}

// GetEmployee returns one employee.
func (h *Handler) GetEmployee(c *gin.Context) {
	emp, err := h.service.GetEmployee(c.Request.Context(), c.Param("employeeId"))
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, emp)
}

// SetEmployeeActive toggles an employee's active flag.
func (h *Handler) SetEmployeeActive(c *gin.Context) {
	var req transport.SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.HandleError(c, apperr.BadRequest("invalid request body"))
		return
	}

	if err := h.service.SetEmployeeActive(c.Request.Context(), c.Param("employeeId"), req.Active); err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, gin.H{"employeeId": c.Param("employeeId"), "active": req.Active})
}

// ListAssignments returns active assignments, filtered by ?shelf= when given.
func (h *Handler) ListAssignments(c *gin.Context) {
	assignments, err := h.service.ListAssignments(c.Request.Context(), c.Query("shelf"))
	if err != nil {
		h.log.Error("list assignments failed", "error", err)
		httpkit.HandleError(c, apperr.Internal("could not list assignments"))
		return
	}
	httpkit.OK(c, transport.AssignmentListResponse{Items: assignments, Total: len(assignments)})
}

// Assign gives an employee responsibility for a shelf.
func (h *Handler) Assign(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	var req transport.AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.HandleError(c, apperr.BadRequest("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.HandleError(c, apperr.Validation(err.Error()))
		return
	}

	assignment, err := h.service.Assign(c.Request.Context(),
		req.EmployeeID, req.ShelfName, identity.EmployeeID(), sanitize.TextPtr(req.Notes))
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.JSON(c, http.StatusCreated, assignment)
}

// Deactivate ends an assignment.
func (h *Handler) Deactivate(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		httpkit.HandleError(c, apperr.BadRequest("invalid assignment id"))
		return
	}

	if err := h.service.Deactivate(c.Request.Context(), id, identity.EmployeeID()); err != nil {
		httpkit.HandleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// History returns the assignment audit trail, filtered by ?shelf= when given.
func (h *Handler) History(c *gin.Context) {
	entries, err := h.service.History(c.Request.Context(), c.Query("shelf"))
	if err != nil {
		h.log.Error("assignment history failed", "error", err)
		httpkit.HandleError(c, apperr.Internal("could not load assignment history"))
		return
	}
	httpkit.OK(c, transport.HistoryResponse{Items: entries, Total: len(entries)})
}
