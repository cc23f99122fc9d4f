// Package account exposes the authenticated user's account: balance and
// history reads, PIN management, KYC submission and preference toggles.
package account

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/veltris/banking/pkg/config"
	"github.com/veltris/banking/pkg/middleware"
	"github.com/veltris/banking/pkg/service/accountsvc"
	authsvc "github.com/veltris/banking/pkg/service/auth"
	"github.com/veltris/banking/pkg/service/pinguard"
	"github.com/veltris/banking/webapi/common"
)

// Routes registers the account endpoints. All of them require a token.
func Routes(app *fiber.App, accounts *accountsvc.Service, pins *pinguard.Service, auth *authsvc.Service, cfg *config.App, logger *slog.Logger) {
	protected := middleware.JwtProtected(cfg.Jwt)
	app.Get("/account", protected, Get(accounts))
	app.Get("/account/transactions", protected, Transactions(accounts))
	app.Get("/account/summary", protected, Summary(accounts))
	app.Post("/account/pin", protected, SetPin(pins, logger))
	app.Post("/account/pin/reset", protected, RequestPinReset(auth))
	app.Post("/account/pin/reset/confirm", protected, ConfirmPinReset(auth))
	app.Post("/account/kyc", protected, SubmitKYC(accounts))
	app.Put("/account/preferences", protected, SetPreference(accounts))
}

// Get returns the account details and balance.
func Get(accounts *accountsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := middleware.CurrentUserID(c)
		if err != nil {
			return common.ErrorResponseJSON(c, fiber.StatusUnauthorized, "Unauthorized", err.Error())
		}
		acc, err := accounts.Get(c.Context(), userID)
		if err != nil {
			return common.ProblemJSON(c, "Account lookup failed", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "OK", toAccountResponse(acc))
	}
}

// Transactions lists the user's recent transactions.
func Transactions(accounts *accountsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := middleware.CurrentUserID(c)
		if err != nil {
			return common.ErrorResponseJSON(c, fiber.StatusUnauthorized, "Unauthorized", err.Error())
		}
		limit := c.QueryInt("limit", 50)
		txns, err := accounts.History(c.Context(), userID, limit)
		if err != nil {
			return common.ProblemJSON(c, "History lookup failed", err)
		}
		out := make([]TransactionResponse, 0, len(txns))
		for _, tx := range txns {
			out = append(out, toTransactionResponse(tx))
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "OK", out)
	}
}

// Summary returns the current month's money-in and money-out totals.
func Summary(accounts *accountsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := middleware.CurrentUserID(c)
		if err != nil {
			return common.ErrorResponseJSON(c, fiber.StatusUnauthorized, "Unauthorized", err.Error())
		}
		sum, err := accounts.Summary(c.Context(), userID, time.Now())
		if err != nil {
			return common.ProblemJSON(c, "Summary failed", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "OK", SummaryResponse{
			MoneyIn:  sum.In.Float(),
			MoneyOut: sum.Out.Float(),
		})
	}
}

// SetPin creates or replaces the transaction PIN.
func SetPin(pins *pinguard.Service, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := middleware.CurrentUserID(c)
		if err != nil {
			return common.ErrorResponseJSON(c, fiber.StatusUnauthorized, "Unauthorized", err.Error())
		}
		input, err := common.BindAndValidate[SetPinRequest](c)
		if input == nil {
			return err
		}
		if err := pins.SetPin(c.Context(), userID, input.Pin); err != nil {
			logger.Warn("pin update rejected", "user_id", userID, "error", err)
			return common.ProblemJSON(c, "PIN update failed", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "PIN updated", nil)
	}
}

// RequestPinReset sends a pin-reset code to the authenticated user.
func RequestPinReset(auth *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := middleware.CurrentUserID(c)
		if err != nil {
			return common.ErrorResponseJSON(c, fiber.StatusUnauthorized, "Unauthorized", err.Error())
		}
		if err := auth.RequestPinReset(c.Context(), userID); err != nil {
			return common.ProblemJSON(c, "PIN reset failed", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Verification code sent", nil)
	}
}

// ConfirmPinReset consumes the pin-reset code and stores the new PIN.
func ConfirmPinReset(auth *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := middleware.CurrentUserID(c)
		if err != nil {
			return common.ErrorResponseJSON(c, fiber.StatusUnauthorized, "Unauthorized", err.Error())
		}
		input, err := common.BindAndValidate[ConfirmPinResetRequest](c)
		if input == nil {
			return err
		}
		if err := auth.ConfirmPinReset(c.Context(), userID, input.Code, input.NewPin); err != nil {
			return common.ProblemJSON(c, "PIN reset failed", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "PIN updated", nil)
	}
}

// SubmitKYC flags the account as having submitted identity documents.
func SubmitKYC(accounts *accountsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := middleware.CurrentUserID(c)
		if err != nil {
			return common.ErrorResponseJSON(c, fiber.StatusUnauthorized, "Unauthorized", err.Error())
		}
		if err := accounts.SubmitKYC(c.Context(), userID); err != nil {
			return common.ProblemJSON(c, "KYC submission failed", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Documents submitted", nil)
	}
}

// SetPreference toggles a display or alert flag.
func SetPreference(accounts *accountsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := middleware.CurrentUserID(c)
		if err != nil {
			return common.ErrorResponseJSON(c, fiber.StatusUnauthorized, "Unauthorized", err.Error())
		}
		input, err := common.BindAndValidate[PreferenceRequest](c)
		if input == nil {
			return err
		}
		if err := accounts.SetPreference(c.Context(), userID, accountsvc.Preference(input.Name), input.Enabled); err != nil {
			return common.ProblemJSON(c, "Preference update failed", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Preference updated", nil)
	}
}
