package model

import "context"

// Dispatcher hands notifications to a delivery backend.
//
// A nil error means the notification was accepted for delivery, not that it
// was delivered.
type Dispatcher interface {
	Send(ctx context.Context, notification Notification) error
}

// Notification is a templated message for a single recipient.
type Notification struct {
	Recipient  string
	TemplateID string
	Data       map[string]string
}
