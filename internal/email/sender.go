// Package email renders and delivers outbound notification emails.
package email

import "context"

// Template names stored on outbox rows.
const (
	TemplateAlertNotification = "alert_notification"
)

// AlertEmailData is the payload rendered into the alert notification email.
// It is stored as JSON on the outbox row and replayed by the scheduler worker.
type AlertEmailData struct {
	Title     string `json:"title"`
	Message   string `json:"message"`
	Priority  string `json:"priority"`
	ShelfName string `json:"shelfName"`
	RackName  string `json:"rackName"`
	ProductName     string `json:"productName,omitempty"`
	FillLevel       string `json:"fillLevel,omitempty"`
	CorrectLocation string `json:"correctLocation,omitempty"`
	AlertURL        string `json:"alertUrl"`
}

// Sender delivers notification emails.
type Sender interface {
	SendAlertEmail(ctx context.Context, toEmail string, data AlertEmailData) error
}
