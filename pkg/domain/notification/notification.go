// Package notification holds the user-facing alert record. Notifications are
// write-once; the only mutation is flipping the read flag or deletion.
package notification

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotificationNotFound is returned when a notification cannot be found.
var ErrNotificationNotFound = errors.New("notification not found")

// Notification is one user-facing message.
type Notification struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Message   string
	Read      bool
	CreatedAt time.Time
}

// New creates a notification for the given user.
func New(userID uuid.UUID, message string) *Notification {
	return &Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Message:   message,
		CreatedAt: time.Now(),
	}
}
