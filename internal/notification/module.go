// Package notification provides the notification bounded context module.
package notification

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"shelfsense_backend/internal/events"
	apphttp "shelfsense_backend/internal/http"
	"shelfsense_backend/internal/notification/handler"
	"shelfsense_backend/internal/notification/inapp"
	"shelfsense_backend/internal/notification/outbox"
	"shelfsense_backend/internal/notification/sse"
	"shelfsense_backend/platform/httpkit"
	"shelfsense_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

// Module is the notification bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *Service
	outbox  *outbox.Repository
	sse     *sse.Service
	log     *logger.Logger
}

// NewModule creates and initializes the notification module and subscribes
// its SSE broadcaster to the alert lifecycle events.
func NewModule(pool *pgxpool.Pool, baseURL string, bus events.Bus, log *logger.Logger) *Module {
	inappRepo := inapp.NewRepository(pool)
	outboxRepo := outbox.New(pool)
	sseService := sse.New(log)
	svc := NewService(inappRepo, outboxRepo, sseService, baseURL, log)
	h := handler.New(inappRepo, log)

	m := &Module{
		handler: h,
		service: svc,
		outbox:  outboxRepo,
		sse:     sseService,
		log:     log,
	}
	m.subscribe(bus)
	return m
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "notification"
}

// Service returns the notification service for adapter wiring.
func (m *Module) Service() *Service {
	return m.service
}

// Outbox returns the outbox repository for the scheduler worker.
func (m *Module) Outbox() *outbox.Repository {
	return m.outbox
}

// Close shuts down the SSE connections.
func (m *Module) Close() {
	m.sse.Close()
}

// subscribe pushes alert lifecycle changes to every connected dashboard.
// Per-recipient creation pushes happen in the service's NotifyAlert path.
func (m *Module) subscribe(bus events.Bus) {
	bus.Subscribe(events.AlertAcknowledgedName, events.HandlerFunc(func(_ context.Context, e events.Event) error {
		if event, ok := e.(events.AlertAcknowledged); ok {
			m.sse.Broadcast(sse.Event{
				Type:      sse.EventAlertAcknowledged,
				AlertID:   event.AlertID,
				ShelfName: event.ShelfName,
				RackName:  event.RackName,
				Data:      gin.H{"employeeId": event.EmployeeID},
			})
		}
		return nil
	}))

	bus.Subscribe(events.AlertResolvedName, events.HandlerFunc(func(_ context.Context, e events.Event) error {
		if event, ok := e.(events.AlertResolved); ok {
			m.sse.Broadcast(sse.Event{
				Type:      sse.EventAlertResolved,
				AlertID:   event.AlertID,
				ShelfName: event.ShelfName,
				RackName:  event.RackName,
				Data:      gin.H{"employeeId": event.EmployeeID},
			})
		}
		return nil
	}))

	bus.Subscribe(events.BatchProcessedName, events.HandlerFunc(func(_ context.Context, e events.Event) error {
		if event, ok := e.(events.BatchProcessed); ok {
			m.sse.Broadcast(sse.Event{
				Type: sse.EventBatchProcessed,
				Data: gin.H{
					"createdCount": event.CreatedCount,
					"updatedCount": event.UpdatedCount,
				},
			})
		}
		return nil
	}))
}

// RegisterRoutes mounts notification routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	notifications := ctx.Protected.Group("/notifications")
	notifications.GET("", m.handler.List)
	notifications.GET("/unread-count", m.handler.UnreadCount)
	notifications.POST("/:id/read", m.handler.MarkRead)
	notifications.POST("/read-all", m.handler.MarkAllRead)
	notifications.GET("/stream", m.sse.Handler(func(c *gin.Context) string {
		identity := httpkit.GetIdentity(c)
		if !identity.IsAuthenticated() {
			return ""
		}
		return identity.EmployeeID()
	}))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
