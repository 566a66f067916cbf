package adapters

import (
	"context"
	"fmt"

	"shelfsense_backend/internal/alerts/domain"
	alertsvc "shelfsense_backend/internal/alerts/service"
	"shelfsense_backend/internal/notification"
)

// AlertDispatcher adapts the notification service to the alert engine's
// dispatcher port.
type AlertDispatcher struct {
	notifications *notification.Service
}

// NewAlertDispatcher creates the dispatcher adapter.
func NewAlertDispatcher(notifications *notification.Service) *AlertDispatcher {
	return &AlertDispatcher{notifications: notifications}
}

// Compile-time check that AlertDispatcher implements the port.
var _ alertsvc.Dispatcher = (*AlertDispatcher)(nil)

// Notify delivers one alert to one recipient.
func (a *AlertDispatcher) Notify(ctx context.Context, recipientID string, alert domain.Alert) error {
	notice := notification.AlertNotice{
		AlertID:   alert.ID,
		Title:     alert.Title,
		Message:   alert.Message,
		Priority:  string(alert.Priority),
		ShelfName: alert.ShelfName,
		RackName:  alert.RackName,
		Created:   true,
	}
	if alert.ProductName != nil {
		notice.ProductName = *alert.ProductName
	}
	if alert.FillPercentage != nil {
		notice.FillLevel = fmt.Sprintf("%.1f%%", *alert.FillPercentage)
	}
	if alert.CorrectLocation != nil {
		notice.CorrectLocation = *alert.CorrectLocation
	}
	return a.notifications.NotifyAlert(ctx, recipientID, notice)
}
