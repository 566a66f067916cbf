// Package notification delivers alert notifications to employees over three
// channels: persisted in-app notifications, SSE push, and the email outbox.
package notification

import (
	"context"
	"fmt"
	"time"

	"shelfsense_backend/internal/email"
	"shelfsense_backend/internal/notification/inapp"
	"shelfsense_backend/internal/notification/outbox"
	"shelfsense_backend/internal/notification/sse"
	"shelfsense_backend/platform/logger"
)

// AlertNotice is the channel-neutral description of an alert notification.
type AlertNotice struct {
	AlertID         int64
	Title           string
	Message         string
	Priority        string
	ShelfName       string
	RackName        string
	ProductName     string
	FillLevel       string
	CorrectLocation string
	Created         bool
}

// EmailDirectory resolves an employee to their email address, "" when the
// employee has none on file.
type EmailDirectory interface {
	EmployeeEmail(ctx context.Context, employeeID string) (string, error)
}

// Service fans one alert notice out to the delivery channels.
type Service struct {
	inapp   *inapp.Repository
	outbox  *outbox.Repository
	sse     *sse.Service
	baseURL string
	log     *logger.Logger

	directory EmailDirectory
}

// NewService creates the notification service. baseURL is the public URL
// used to build alert deep links in emails.
func NewService(inappRepo *inapp.Repository, outboxRepo *outbox.Repository, sseService *sse.Service, baseURL string, log *logger.Logger) *Service {
	return &Service{
		inapp:   inappRepo,
		outbox:  outboxRepo,
		sse:     sseService,
		baseURL: baseURL,
		log:     log,
	}
}

// SetEmailDirectory wires the employee email lookup.
func (s *Service) SetEmailDirectory(directory EmailDirectory) {
	s.directory = directory
}

// SSE exposes the push service for route registration and bus handlers.
func (s *Service) SSE() *sse.Service {
	return s.sse
}

// NotifyAlert delivers one alert notice to one recipient across all
// channels. The in-app write is the primary channel; SSE and the email
// outbox degrade independently without failing the call.
func (s *Service) NotifyAlert(ctx context.Context, recipientID string, notice AlertNotice) error {
	alertID := notice.AlertID
	if _, err := s.inapp.Create(ctx, inapp.CreateParams{
		EmployeeID: recipientID,
		Title:      notice.Title,
		Content:    notice.Message,
		AlertID:    &alertID,
		Category:   categoryForPriority(notice.Priority),
	}); err != nil {
		return fmt.Errorf("in-app notification for %s: %w", recipientID, err)
	}

	eventType := sse.EventAlertUpdated
	if notice.Created {
		eventType = sse.EventAlertCreated
	}
	s.sse.Publish(recipientID, sse.Event{
		Type:      eventType,
		AlertID:   notice.AlertID,
		ShelfName: notice.ShelfName,
		RackName:  notice.RackName,
		Message:   notice.Title,
	})

	s.queueEmail(ctx, recipientID, notice)
	return nil
}

// queueEmail writes the outbox row when the recipient has an email address.
// Failures are logged; email is best-effort by design.
func (s *Service) queueEmail(ctx context.Context, recipientID string, notice AlertNotice) {
	if s.directory == nil {
		return
	}

	address, err := s.directory.EmployeeEmail(ctx, recipientID)
	if err != nil {
		s.log.Warn("email lookup failed", "employeeId", recipientID, "error", err)
		return
	}
	if address == "" {
		return
	}

	_, err = s.outbox.Insert(ctx, outbox.InsertParams{
		RecipientEmail: address,
		Template:       email.TemplateAlertNotification,
		Payload: email.AlertEmailData{
			Title:           notice.Title,
			Message:         notice.Message,
			Priority:        notice.Priority,
			ShelfName:       notice.ShelfName,
			RackName:        notice.RackName,
			ProductName:     notice.ProductName,
			FillLevel:       notice.FillLevel,
			CorrectLocation: notice.CorrectLocation,
			AlertURL:        fmt.Sprintf("%s/alerts/%d", s.baseURL, notice.AlertID),
		},
		RunAt: time.Now().UTC(),
	})
	if err != nil {
		s.log.Warn("outbox insert failed", "employeeId", recipientID, "alertId", notice.AlertID, "error", err)
	}
}

func categoryForPriority(priority string) string {
	switch priority {
	case "critical", "high":
		return "urgent"
	default:
		return "info"
	}
}
