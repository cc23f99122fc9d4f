package main

import (
	"fmt"

	log "github.com/charmbracelet/log"

	"github.com/veltris/banking/app"
	"github.com/veltris/banking/pkg/config"
	"github.com/veltris/banking/pkg/service/settlement"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	deps, err := app.Setup(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	logger := deps.Logger

	a, err := app.New(*deps)
	if err != nil {
		return fmt.Errorf("failed to build application: %w", err)
	}

	runner, err := settlement.NewRunner(a.Settlement, cfg.Settlement.Schedule, logger)
	if err != nil {
		return fmt.Errorf("failed to schedule settlement sweep: %w", err)
	}
	runner.Start()
	defer runner.Stop()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("starting server", "env", cfg.Env, "address", addr)
	return a.Fiber.Listen(addr)
}
