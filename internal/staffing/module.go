// Package staffing provides the employees-and-assignments bounded context module.
package staffing

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"shelfsense_backend/internal/events"
	apphttp "shelfsense_backend/internal/http"
	"shelfsense_backend/internal/staffing/handler"
	"shelfsense_backend/internal/staffing/repository"
	"shelfsense_backend/internal/staffing/service"
	"shelfsense_backend/platform/logger"
	"shelfsense_backend/platform/validator"
)

// Module is the staffing bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the staffing module.
func NewModule(pool *pgxpool.Pool, bus events.Bus, validate *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, log)
	svc.SetEventBus(bus)
	h := handler.New(svc, validate, log)

	return &Module{
		handler: h,
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "staffing"
}

// Service returns the staffing service for adapter wiring.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts staffing routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	staffing := ctx.Protected.Group("/staffing")
	staffing.GET("/assignments", m.handler.ListAssignments)
	staffing.GET("/assignments/history", m.handler.History)

	managed := ctx.Manager.Group("/staffing")
	managed.GET("/employees", m.handler.ListEmployees)
	managed.POST("/employees", m.handler.CreateEmployee)
	managed.GET("/employees/:employeeId", m.handler.GetEmployee)
	managed.PATCH("/employees/:employeeId/active", m.handler.SetEmployeeActive)
	managed.POST("/assignments", m.handler.Assign)
	managed.DELETE("/assignments/:id", m.handler.Deactivate)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
