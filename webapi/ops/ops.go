// Package ops exposes the operator console: loan decisions, KYC
// confirmation, deposit review and account unblock. Every route requires a
// token carrying the staff claim.
package ops

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/veltris/banking/pkg/config"
	"github.com/veltris/banking/pkg/middleware"
	"github.com/veltris/banking/pkg/service/accountsvc"
	"github.com/veltris/banking/pkg/service/loanengine"
	"github.com/veltris/banking/pkg/service/settlement"
	"github.com/veltris/banking/webapi/common"
)

// Routes registers the operator endpoints.
func Routes(app *fiber.App, loans *loanengine.Service, accounts *accountsvc.Service, settle *settlement.Service, cfg *config.App, logger *slog.Logger) {
	staff := []fiber.Handler{middleware.JwtProtected(cfg.Jwt), middleware.AdminOnly()}
	app.Get("/ops/loans/pending", append(staff, PendingLoans(loans))...)
	app.Post("/ops/loans/:id/approve", append(staff, ApproveLoan(loans, logger))...)
	app.Post("/ops/loans/:id/reject", append(staff, RejectLoan(loans, logger))...)
	app.Post("/ops/accounts/:id/unblock", append(staff, UnblockAccount(accounts, logger))...)
	app.Post("/ops/accounts/:id/kyc/confirm", append(staff, ConfirmKYC(accounts))...)
	app.Post("/ops/transactions/:id/review", append(staff, ReviewTransaction(settle, logger))...)
}

// ReviewRequest is the operator decision on a processing transaction.
type ReviewRequest struct {
	Approve bool   `json:"approve"`
	Reason  string `json:"reason" validate:"max=200"`
}

// PendingLoans lists loans awaiting a decision, oldest first.
func PendingLoans(loans *loanengine.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		list, err := loans.ListPending(c.Context())
		if err != nil {
			return common.ProblemJSON(c, "Lookup failed", err)
		}
		out := make([]fiber.Map, 0, len(list))
		for _, l := range list {
			out = append(out, fiber.Map{
				"id":              l.ID,
				"user_id":         l.UserID,
				"principal":       l.Principal.Float(),
				"term_months":     l.TermMonths,
				"purpose":         l.Purpose,
				"total_repayment": l.TotalRepayment.Float(),
				"applied_at":      l.AppliedAt,
			})
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "OK", out)
	}
}

// ApproveLoan approves a pending loan and credits the borrower.
func ApproveLoan(loans *loanengine.Service, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		loanID, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return common.ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid loan ID", err.Error())
		}
		l, err := loans.Approve(c.Context(), loanID)
		if err != nil {
			logger.Warn("loan approval rejected", "loan_id", loanID, "error", err)
			return common.ProblemJSON(c, "Approval failed", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Loan approved", fiber.Map{
			"id":     l.ID,
			"status": string(l.Status),
		})
	}
}

// RejectLoan rejects a pending loan.
func RejectLoan(loans *loanengine.Service, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		loanID, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return common.ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid loan ID", err.Error())
		}
		l, err := loans.Reject(c.Context(), loanID)
		if err != nil {
			logger.Warn("loan rejection failed", "loan_id", loanID, "error", err)
			return common.ProblemJSON(c, "Rejection failed", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Loan rejected", fiber.Map{
			"id":     l.ID,
			"status": string(l.Status),
		})
	}
}

// UnblockAccount lifts a PIN lockout.
func UnblockAccount(accounts *accountsvc.Service, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accountID, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return common.ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid account ID", err.Error())
		}
		if err := accounts.Unblock(c.Context(), accountID); err != nil {
			logger.Warn("unblock failed", "account_id", accountID, "error", err)
			return common.ProblemJSON(c, "Unblock failed", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Account unblocked", nil)
	}
}

// ConfirmKYC accepts submitted identity documents.
func ConfirmKYC(accounts *accountsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accountID, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return common.ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid account ID", err.Error())
		}
		if err := accounts.ConfirmKYC(c.Context(), accountID); err != nil {
			return common.ProblemJSON(c, "Confirmation failed", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "KYC confirmed", nil)
	}
}

// ReviewTransaction settles or fails a processing transaction ahead of the
// sweep.
func ReviewTransaction(settle *settlement.Service, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		txID, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return common.ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid transaction ID", err.Error())
		}
		input, err := common.BindAndValidate[ReviewRequest](c)
		if input == nil {
			return err
		}
		if err := settle.Review(c.Context(), txID, input.Approve, input.Reason); err != nil {
			logger.Warn("transaction review failed", "transaction_id", txID, "error", err)
			return common.ProblemJSON(c, "Review failed", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Review recorded", nil)
	}
}
