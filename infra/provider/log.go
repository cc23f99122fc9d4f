// Package provider contains the outbound delivery implementations. The log
// implementations stand in for a real email gateway in development and tests.
package provider

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/veltris/banking/pkg/provider"
)

// LogNotifier writes alerts to the structured log instead of delivering them.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a log-backed Notifier.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.With("notifier", "log")}
}

// Send logs the alert.
func (n *LogNotifier) Send(_ context.Context, userID uuid.UUID, subject, body string) error {
	n.logger.Info("notification", "user", userID, "subject", subject, "body", body)
	return nil
}

// LogOTPChannel writes one-time codes to the structured log. Development
// only: codes in logs are obviously unacceptable in production.
type LogOTPChannel struct {
	logger *slog.Logger
}

// NewLogOTPChannel creates a log-backed OTPChannel.
func NewLogOTPChannel(logger *slog.Logger) *LogOTPChannel {
	return &LogOTPChannel{logger: logger.With("otp_channel", "log")}
}

// Deliver logs the code.
func (c *LogOTPChannel) Deliver(_ context.Context, userID uuid.UUID, code, action string) error {
	c.logger.Info("otp code issued", "user", userID, "code", code, "action", action)
	return nil
}

var (
	_ provider.Notifier   = (*LogNotifier)(nil)
	_ provider.OTPChannel = (*LogOTPChannel)(nil)
)
