package config

import (
	"log/slog"

	"github.com/veltris/banking/pkg/eventbus"
	"github.com/veltris/banking/pkg/provider"
	"github.com/veltris/banking/pkg/repository"
	"github.com/veltris/banking/pkg/ticket"
)

// Deps holds all infrastructure dependencies for building the app and
// services.
type Deps struct {
	Uow        repository.UnitOfWork
	Tickets    ticket.Store
	Notifier   provider.Notifier
	OtpChannel provider.OTPChannel
	Bus        eventbus.Bus
	Logger     *slog.Logger
	Config     *App
}
