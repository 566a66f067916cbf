// Package sse provides Server-Sent Events push for real-time alert updates.
package sse

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"shelfsense_backend/platform/logger"
)

// EventType names the alert happenings pushed to connected clients.
type EventType string

const (
	EventAlertCreated      EventType = "alert_created"
	EventAlertUpdated      EventType = "alert_updated"
	EventAlertAcknowledged EventType = "alert_acknowledged"
	EventAlertResolved     EventType = "alert_resolved"
	EventBatchProcessed    EventType = "batch_processed"
)

// Event is one SSE payload.
type Event struct {
	Type      EventType   `json:"type"`
	AlertID   int64       `json:"alertId,omitempty"`
	ShelfName string      `json:"shelfName,omitempty"`
	RackName  string      `json:"rackName,omitempty"`
	Message   string      `json:"message,omitempty"`
	Data      interface{} `json:"data,omitempty"`
}

// client is one open SSE connection.
type client struct {
	employeeID string
	events     chan Event
}

// Service manages SSE connections and event delivery.
type Service struct {
	mu      sync.RWMutex
	clients map[string][]*client
	log     *logger.Logger
}

// New creates the SSE service.
func New(log *logger.Logger) *Service {
	return &Service{
		clients: make(map[string][]*client),
		log:     log,
	}
}

func (s *Service) addClient(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[c.employeeID] = append(s.clients[c.employeeID], c)
}

func (s *Service) removeClient(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()

	clients := s.clients[c.employeeID]
	for i, cl := range clients {
		if cl == c {
			s.clients[c.employeeID] = append(clients[:i], clients[i+1:]...)
			break
		}
	}
	if len(s.clients[c.employeeID]) == 0 {
		delete(s.clients, c.employeeID)
	}

	close(c.events)
}

// Publish sends an event to every open connection of one employee. A full
// client buffer drops the event rather than blocking the publisher.
func (s *Service) Publish(employeeID string, event Event) {
	s.mu.RLock()
	clients := s.clients[employeeID]
	s.mu.RUnlock()

	for _, c := range clients {
		select {
		case c.events <- event:
		default:
			s.log.Warn("sse buffer full, event dropped", "employeeId", employeeID, "event", string(event.Type))
		}
	}
}

// Broadcast sends an event to every connected client. Used for lifecycle
// updates any open dashboard should reflect.
func (s *Service) Broadcast(event Event) {
	s.mu.RLock()
	ids := make([]string, 0, len(s.clients))
	for id := range s.clients {
		ids = append(ids, id)
	}
	s.mu.RUnlock()

	for _, id := range ids {
		s.Publish(id, event)
	}
}

// PublishToAll sends an event to each listed employee once.
func (s *Service) PublishToAll(employeeIDs []string, event Event) {
	seen := make(map[string]bool)
	for _, id := range employeeIDs {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		s.Publish(id, event)
	}
}

// Handler returns the gin handler for SSE connections. getEmployeeID
// extracts the authenticated caller; an empty result aborts with 401.
func (s *Service) Handler(getEmployeeID func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		employeeID := getEmployeeID(c)
		if employeeID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		c.Writer.Header().Set("Content-Type", "text/event-stream")
		c.Writer.Header().Set("Cache-Control", "no-cache")
		c.Writer.Header().Set("Connection", "keep-alive")
		c.Writer.Header().Set("X-Accel-Buffering", "no")

		cl := &client{
			employeeID: employeeID,
			events:     make(chan Event, 32),
		}
		s.addClient(cl)
		defer s.removeClient(cl)

		c.SSEvent("connected", gin.H{"employeeId": employeeID})
		c.Writer.Flush()

		s.log.Info("sse client connected", "employeeId", employeeID)

		clientGone := c.Request.Context().Done()
		for {
			select {
			case <-clientGone:
				s.log.Info("sse client disconnected", "employeeId", employeeID)
				return
			case event, ok := <-cl.events:
				if !ok {
					return
				}
				data, _ := json.Marshal(event)
				c.SSEvent(string(event.Type), string(data))
				c.Writer.Flush()
			}
		}
	}
}

// Close drops every open connection.
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, clients := range s.clients {
		for _, c := range clients {
			close(c.events)
		}
	}
	s.clients = make(map[string][]*client)
}
