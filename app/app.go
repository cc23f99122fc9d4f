// Package app assembles the services from their dependencies, registers the
// notification event handlers, and builds the Fiber application.
package app

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/veltris/banking/pkg/config"
	"github.com/veltris/banking/pkg/money"
	"github.com/veltris/banking/pkg/service/accountsvc"
	authsvc "github.com/veltris/banking/pkg/service/auth"
	"github.com/veltris/banking/pkg/service/loanengine"
	"github.com/veltris/banking/pkg/service/notificationsvc"
	"github.com/veltris/banking/pkg/service/otp"
	"github.com/veltris/banking/pkg/service/pinguard"
	"github.com/veltris/banking/pkg/service/settlement"
	transfersvc "github.com/veltris/banking/pkg/service/transfer"
	accountapi "github.com/veltris/banking/webapi/account"
	authapi "github.com/veltris/banking/webapi/auth"
	"github.com/veltris/banking/webapi/common"
	loanapi "github.com/veltris/banking/webapi/loan"
	notificationapi "github.com/veltris/banking/webapi/notification"
	opsapi "github.com/veltris/banking/webapi/ops"
	transferapi "github.com/veltris/banking/webapi/transfer"
)

// App bundles the built services and the HTTP application.
type App struct {
	Fiber      *fiber.App
	Settlement *settlement.Service
}

// New builds all services from deps, registers event handlers and routes,
// and returns the assembled application.
func New(deps config.Deps) (*App, error) {
	cfg := deps.Config
	logger := deps.Logger

	threshold, err := money.New(cfg.Transfer.OtpThreshold)
	if err != nil {
		return nil, err
	}

	pins := pinguard.New(deps.Uow, deps.Bus, logger)
	codes := otp.New(deps.Tickets, deps.OtpChannel, cfg.Otp.Validity, logger)
	accounts := accountsvc.New(deps.Uow, logger)
	auth := authsvc.New(deps.Uow, pins, codes, cfg.Jwt.Secret, cfg.Jwt.Expiry, logger)
	transfers := transfersvc.New(deps.Uow, deps.Bus, pins, codes, threshold, logger)
	loans := loanengine.New(deps.Uow, deps.Bus, pins, logger)
	settle := settlement.New(deps.Uow, deps.Bus, cfg.Settlement.SettleAfter, logger)
	notifications := notificationsvc.New(deps.Uow, deps.Notifier, logger)

	notificationsvc.RegisterHandlers(deps.Bus, notifications)

	f := fiber.New(fiber.Config{
		AppName: "veltris-banking",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			status := fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			}
			return common.ErrorResponseJSON(c, status, "Internal Server Error", err.Error())
		},
	})

	f.Use(limiter.New(limiter.Config{
		Max:        cfg.RateLimit.MaxRequests,
		Expiration: cfg.RateLimit.Window,
		KeyGenerator: func(c *fiber.Ctx) string {
			if forwarded := c.Get("X-Forwarded-For"); forwarded != "" {
				if i := strings.Index(forwarded, ","); i != -1 {
					return strings.TrimSpace(forwarded[:i])
				}
				return strings.TrimSpace(forwarded)
			}
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return common.ErrorResponseJSON(c, fiber.StatusTooManyRequests, "Too Many Requests", "rate limit exceeded")
		},
	}))
	f.Use(recover.New())

	f.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	authapi.Routes(f, auth, logger)
	accountapi.Routes(f, accounts, pins, auth, cfg, logger)
	transferapi.Routes(f, transfers, cfg, logger)
	loanapi.Routes(f, loans, cfg, logger)
	notificationapi.Routes(f, notifications, cfg)
	opsapi.Routes(f, loans, accounts, settle, cfg, logger)

	return &App{Fiber: f, Settlement: settle}, nil
}
