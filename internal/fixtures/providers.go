package fixtures

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// SentNotification is one recorded Notifier.Send call.
type SentNotification struct {
	UserID  uuid.UUID
	Subject string
	Body    string
}

// RecordingNotifier captures notifier sends for assertions. Err, when set, is
// returned from every Send.
type RecordingNotifier struct {
	mu   sync.Mutex
	Err  error
	sent []SentNotification
}

func (n *RecordingNotifier) Send(_ context.Context, userID uuid.UUID, subject, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, SentNotification{UserID: userID, Subject: subject, Body: body})
	return n.Err
}

// Sent returns a copy of every recorded send.
func (n *RecordingNotifier) Sent() []SentNotification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]SentNotification(nil), n.sent...)
}

// DeliveredCode is one recorded OTPChannel.Deliver call.
type DeliveredCode struct {
	UserID uuid.UUID
	Code   string
	Action string
}

// RecordingOTPChannel captures delivered one-time codes for assertions.
type RecordingOTPChannel struct {
	mu        sync.Mutex
	Err       error
	delivered []DeliveredCode
}

func (c *RecordingOTPChannel) Deliver(_ context.Context, userID uuid.UUID, code, action string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.delivered = append(c.delivered, DeliveredCode{UserID: userID, Code: code, Action: action})
	return c.Err
}

// Delivered returns a copy of every recorded delivery.
func (c *RecordingOTPChannel) Delivered() []DeliveredCode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]DeliveredCode(nil), c.delivered...)
}

// LastCode returns the code from the most recent delivery, or "" when none.
func (c *RecordingOTPChannel) LastCode() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.delivered) == 0 {
		return ""
	}
	return c.delivered[len(c.delivered)-1].Code
}
