package app

import (
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"

	"github.com/veltris/banking/infra"
	infraeventbus "github.com/veltris/banking/infra/eventbus"
	infraprovider "github.com/veltris/banking/infra/provider"
	infrarepo "github.com/veltris/banking/infra/repository"
	infraticket "github.com/veltris/banking/infra/ticket"
	"github.com/veltris/banking/pkg/config"
	"github.com/veltris/banking/pkg/ticket"
)

// Setup builds the infrastructure dependency bundle: database and unit of
// work, ticket store (Redis when configured, in-memory otherwise), delivery
// providers and the event bus.
func Setup(cfg *config.App) (*config.Deps, error) {
	logger := newLogger(cfg.Log)

	db, err := infra.NewDBConnection(cfg.DB, cfg.Env)
	if err != nil {
		return nil, err
	}

	var tickets ticket.Store
	if cfg.Redis.URL != "" {
		opt, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return nil, err
		}
		tickets = infraticket.NewRedisStore(opt, cfg.Redis.KeyPrefix, logger)
	} else {
		logger.Warn("no redis configured, using in-memory ticket store")
		tickets = infraticket.NewMemoryStore()
	}

	return &config.Deps{
		Uow:        infrarepo.NewUoW(db),
		Tickets:    tickets,
		Notifier:   infraprovider.NewLogNotifier(logger),
		OtpChannel: infraprovider.NewLogOTPChannel(logger),
		Bus:        infraeventbus.NewMemoryBus(logger),
		Logger:     logger,
		Config:     cfg,
	}, nil
}

func newLogger(cfg *config.Log) *slog.Logger {
	level := slog.Level(cfg.Level)
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	return slog.New(handler)
}
