package settlement

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Runner schedules the sweep on a cron cadence, independent of any incoming
// request traffic.
type Runner struct {
	svc    *Service
	cron   *cron.Cron
	logger *slog.Logger
}

// NewRunner creates a runner for the given cron schedule spec.
func NewRunner(svc *Service, schedule string, logger *slog.Logger) (*Runner, error) {
	c := cron.New()
	r := &Runner{svc: svc, cron: c, logger: logger}
	_, err := c.AddFunc(schedule, func() {
		if _, err := svc.Sweep(context.Background()); err != nil {
			logger.Error("settlement sweep failed", "error", err)
		}
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Start begins the schedule in its own goroutine.
func (r *Runner) Start() {
	r.logger.Info("settlement runner started")
	r.cron.Start()
}

// Stop halts the schedule and waits for a running sweep to finish.
func (r *Runner) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
	r.logger.Info("settlement runner stopped")
}
