// Package notificationsvc stores user-facing alerts and forwards them to the
// external notifier. Alerts are produced by event handlers subscribed to the
// domain events, never inline in the money paths, so a delivery failure can
// never abort a ledger operation.
package notificationsvc

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/veltris/banking/pkg/domain/notification"
	"github.com/veltris/banking/pkg/provider"
	"github.com/veltris/banking/pkg/repository"
)

// Service persists notifications and dispatches them out-of-band.
type Service struct {
	uow      repository.UnitOfWork
	notifier provider.Notifier
	logger   *slog.Logger
}

// New creates a notification service.
func New(uow repository.UnitOfWork, notifier provider.Notifier, logger *slog.Logger) *Service {
	return &Service{uow: uow, notifier: notifier, logger: logger}
}

// Notify records a notification row and forwards it to the notifier.
// Delivery failures are logged and swallowed.
func (s *Service) Notify(ctx context.Context, userID uuid.UUID, subject, message string) error {
	n := notification.New(userID, message)
	if err := s.uow.Notifications().Create(ctx, n); err != nil {
		return err
	}
	if err := s.notifier.Send(ctx, userID, subject, message); err != nil {
		s.logger.Error("notification delivery failed", "user_id", userID, "error", err)
	}
	return nil
}

// List returns the user's notifications, newest first.
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]*notification.Notification, error) {
	return s.uow.Notifications().ListByUser(ctx, userID)
}

// MarkRead flips the read flag.
func (s *Service) MarkRead(ctx context.Context, id uuid.UUID) error {
	return s.uow.Notifications().MarkRead(ctx, id)
}

// Delete removes one notification.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.uow.Notifications().Delete(ctx, id)
}

// Clear removes all of the user's notifications.
func (s *Service) Clear(ctx context.Context, userID uuid.UUID) error {
	return s.uow.Notifications().ClearForUser(ctx, userID)
}
