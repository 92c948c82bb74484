// Package notify delivers user-facing notifications: stored in-app and,
// when configured, published to Kafka for external channels.
package notify

import (
	"time"

	id "bloodbank/pkg/domain"
)

// Notification is one in-app message for a user.
type Notification struct {
	ID        id.NotificationID `json:"id"`
	UserID    id.UserID         `json:"userId"`
	Subject   string            `json:"subject"`
	Body      string            `json:"body"`
	Read      bool              `json:"read"`
	CreatedAt time.Time         `json:"createdAt"`
}

// Message is the delivery payload handed to a Notifier.
type Message struct {
	UserID  id.UserID `json:"userId"`
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
}
