// Package email delivers outbound notification mail over SMTP.
package email

import "context"

// EventNotificationData carries everything the progress notification mail
// needs. ReportContent is empty when the event did not come from a report.
type EventNotificationData struct {
	TaskTitle     string
	Description   string
	ReportContent string
	Link          string
}

// Sender is the outbound mail port. Implementations must be safe for
// concurrent use.
type Sender interface {
	SendEventNotification(ctx context.Context, toEmail string, data EventNotificationData) error
}

// NoopSender satisfies Sender without delivering anything. It stands in when
// SMTP is not configured.
type NoopSender struct{}

func (NoopSender) SendEventNotification(context.Context, string, EventNotificationData) error {
	return nil
}
