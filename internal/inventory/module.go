// Package inventory provides the catalog bounded context module.
package inventory

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"shelfsense_backend/internal/inventory/handler"
	"shelfsense_backend/internal/inventory/repository"
	"shelfsense_backend/internal/inventory/service"
	apphttp "shelfsense_backend/internal/http"
	"shelfsense_backend/platform/logger"
	"shelfsense_backend/platform/validator"
)

// Module is the inventory bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the inventory module. baseURL is the
// public URL embedded in shelf-label QR codes.
func NewModule(pool *pgxpool.Pool, baseURL string, validate *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, baseURL, log)
	h := handler.New(svc, validate, log)

	return &Module{
		handler: h,
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "inventory"
}

// Service returns the catalog service for adapter wiring.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts inventory routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	inv := ctx.Protected.Group("/inventory")
	inv.GET("", m.handler.List)
	inv.GET("/locations/:shelf/:rack", m.handler.GetLocation)
	inv.GET("/locations/:shelf/qr", m.handler.ShelfQR)

	managed := ctx.Manager.Group("/inventory")
	managed.POST("", m.handler.Create)
	managed.PATCH("/:id", m.handler.Update)
	managed.DELETE("/:id", m.handler.Delete)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
