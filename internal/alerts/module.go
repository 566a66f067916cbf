// Package alerts provides the alert engine bounded context module.
// This file defines the module that encapsulates alert setup and route registration.
package alerts

import (
	"shelfsense_backend/internal/alerts/domain"
	"shelfsense_backend/internal/alerts/handler"
	"shelfsense_backend/internal/alerts/repository"
	"shelfsense_backend/internal/alerts/service"
	apphttp "shelfsense_backend/internal/http"
	"shelfsense_backend/platform/httpkit"
	"shelfsense_backend/platform/logger"
	"shelfsense_backend/platform/objstore"
	"shelfsense_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the alert engine bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the alert module. Cross-module dependencies
// (catalog lookup, staff directory, notification dispatch) are wired afterwards
// via the service setters. storage may be nil when object storage is disabled.
func NewModule(pool *pgxpool.Pool, policy domain.Policy, storage *objstore.Service, validate *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, policy, log)
	h := handler.New(svc, storage, validate, log)

	return &Module{
		handler: h,
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "alerts"
}

// Service returns the alert service for composition-root wiring.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts alert routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	// Ingestion is restricted to the perception pipeline and managers.
	ingest := ctx.Protected.Group("/detections")
	ingest.Use(httpkit.RequireRole(httpkit.RoleProducer, httpkit.RoleManager, httpkit.RoleStoreManager))
	ingest.POST("", m.handler.Ingest)
	ingest.POST("/snapshot", m.handler.UploadSnapshot)

	alerts := ctx.Protected.Group("/alerts")
	alerts.GET("", m.handler.ListActive)
	alerts.GET("/statistics", m.handler.Statistics)
	alerts.GET("/:id", m.handler.Get)
	alerts.GET("/:id/history", m.handler.History)
	alerts.POST("/:id/acknowledge", m.handler.Acknowledge)
	alerts.POST("/:id/resolve", m.handler.Resolve)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
