// Package loan exposes loan applications and repayments over HTTP.
package loan

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/veltris/banking/pkg/config"
	"github.com/veltris/banking/pkg/middleware"
	"github.com/veltris/banking/pkg/money"
	"github.com/veltris/banking/pkg/service/loanengine"
	"github.com/veltris/banking/webapi/common"
)

// Routes registers the borrower-facing loan endpoints.
func Routes(app *fiber.App, svc *loanengine.Service, cfg *config.App, logger *slog.Logger) {
	protected := middleware.JwtProtected(cfg.Jwt)
	app.Post("/loans", protected, Apply(svc, logger))
	app.Get("/loans", protected, List(svc))
	app.Post("/loans/:id/repay", protected, Repay(svc, logger))
}

// Apply records a loan application.
func Apply(svc *loanengine.Service, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := middleware.CurrentUserID(c)
		if err != nil {
			return common.ErrorResponseJSON(c, fiber.StatusUnauthorized, "Unauthorized", err.Error())
		}
		input, err := common.BindAndValidate[ApplyRequest](c)
		if input == nil {
			return err
		}
		principal, err := money.New(input.Amount)
		if err != nil {
			return common.ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid amount", err.Error())
		}
		l, err := svc.Apply(c.Context(), userID, principal, input.TermMonths, input.Purpose)
		if err != nil {
			logger.Warn("loan application rejected", "user_id", userID, "error", err)
			return common.ProblemJSON(c, "Application failed", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Application received", toLoanResponse(l))
	}
}

// List returns the user's loans.
func List(svc *loanengine.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := middleware.CurrentUserID(c)
		if err != nil {
			return common.ErrorResponseJSON(c, fiber.StatusUnauthorized, "Unauthorized", err.Error())
		}
		loans, err := svc.ListByUser(c.Context(), userID)
		if err != nil {
			return common.ProblemJSON(c, "Loan lookup failed", err)
		}
		out := make([]LoanResponse, 0, len(loans))
		for _, l := range loans {
			out = append(out, toLoanResponse(l))
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "OK", out)
	}
}

// Repay applies a PIN-guarded repayment to one of the user's loans.
func Repay(svc *loanengine.Service, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := middleware.CurrentUserID(c)
		if err != nil {
			return common.ErrorResponseJSON(c, fiber.StatusUnauthorized, "Unauthorized", err.Error())
		}
		loanID, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return common.ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid loan ID", err.Error())
		}
		input, err := common.BindAndValidate[RepayRequest](c)
		if input == nil {
			return err
		}
		amount, err := money.New(input.Amount)
		if err != nil {
			return common.ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid amount", err.Error())
		}
		l, err := svc.Repay(c.Context(), userID, loanID, amount, input.Pin)
		if err != nil {
			logger.Warn("loan repayment rejected", "user_id", userID, "loan_id", loanID, "error", err)
			return common.ProblemJSON(c, "Repayment failed", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Repayment applied", toLoanResponse(l))
	}
}
