// Package transfer exposes money movement over HTTP: transfers with the OTP
// confirmation leg, check deposits and bill payments.
package transfer

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/veltris/banking/pkg/config"
	"github.com/veltris/banking/pkg/domain/account"
	"github.com/veltris/banking/pkg/middleware"
	"github.com/veltris/banking/pkg/money"
	transfersvc "github.com/veltris/banking/pkg/service/transfer"
	"github.com/veltris/banking/webapi/common"
)

// Routes registers the money-movement endpoints. All of them require a
// token.
func Routes(app *fiber.App, svc *transfersvc.Service, cfg *config.App, logger *slog.Logger) {
	protected := middleware.JwtProtected(cfg.Jwt)
	app.Post("/transfer", protected, Transfer(svc, logger))
	app.Post("/transfer/confirm", protected, Confirm(svc, logger))
	app.Post("/transfer/resend", protected, Resend(svc))
	app.Post("/transfer/deposit", protected, Deposit(svc))
	app.Post("/transfer/bill", protected, PayBill(svc))
}

// Transfer initiates an internal or wire transfer.
func Transfer(svc *transfersvc.Service, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := middleware.CurrentUserID(c)
		if err != nil {
			return common.ErrorResponseJSON(c, fiber.StatusUnauthorized, "Unauthorized", err.Error())
		}
		input, err := common.BindAndValidate[TransferRequest](c)
		if input == nil {
			return err
		}
		amount, err := money.New(input.Amount)
		if err != nil {
			return common.ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid amount", err.Error())
		}
		req := transfersvc.Request{
			SenderUserID: userID,
			TargetNumber: input.TargetNumber,
			Amount:       amount,
			Pin:          input.Pin,
			Note:         input.Note,
		}
		if input.Wire != nil {
			req.Wire = &account.WireDetails{
				AccountNumber: input.Wire.AccountNumber,
				BankName:      input.Wire.BankName,
				RoutingNumber: input.Wire.RoutingNumber,
			}
		}
		res, err := svc.Transfer(c.Context(), req)
		if err != nil {
			logger.Warn("transfer rejected", "user_id", userID, "error", err)
			return common.ProblemJSON(c, "Transfer failed", err)
		}
		if res.OtpRequired {
			return common.SuccessResponseJSON(c, fiber.StatusAccepted, "Verification code sent", nil)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Transfer completed", toTransactionResponse(res.Transaction))
	}
}

// Confirm resumes an OTP-suspended transfer.
func Confirm(svc *transfersvc.Service, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := middleware.CurrentUserID(c)
		if err != nil {
			return common.ErrorResponseJSON(c, fiber.StatusUnauthorized, "Unauthorized", err.Error())
		}
		input, err := common.BindAndValidate[ConfirmRequest](c)
		if input == nil {
			return err
		}
		tx, err := svc.ConfirmTransfer(c.Context(), userID, input.Code)
		if err != nil {
			logger.Warn("transfer confirmation rejected", "user_id", userID, "error", err)
			return common.ProblemJSON(c, "Confirmation failed", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Transfer completed", toTransactionResponse(tx))
	}
}

// Resend redelivers the code of a suspended transfer.
func Resend(svc *transfersvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := middleware.CurrentUserID(c)
		if err != nil {
			return common.ErrorResponseJSON(c, fiber.StatusUnauthorized, "Unauthorized", err.Error())
		}
		if err := svc.ResendTransferCode(c.Context(), userID); err != nil {
			return common.ProblemJSON(c, "Resend failed", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Verification code sent", nil)
	}
}

// Deposit submits a check deposit for review.
func Deposit(svc *transfersvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := middleware.CurrentUserID(c)
		if err != nil {
			return common.ErrorResponseJSON(c, fiber.StatusUnauthorized, "Unauthorized", err.Error())
		}
		input, err := common.BindAndValidate[DepositRequest](c)
		if input == nil {
			return err
		}
		amount, err := money.New(input.Amount)
		if err != nil {
			return common.ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid amount", err.Error())
		}
		tx, err := svc.Deposit(c.Context(), userID, amount, input.Note)
		if err != nil {
			return common.ProblemJSON(c, "Deposit failed", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusAccepted, "Deposit under review", toTransactionResponse(tx))
	}
}

// PayBill debits the account for a bill payment.
func PayBill(svc *transfersvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := middleware.CurrentUserID(c)
		if err != nil {
			return common.ErrorResponseJSON(c, fiber.StatusUnauthorized, "Unauthorized", err.Error())
		}
		input, err := common.BindAndValidate[PayBillRequest](c)
		if input == nil {
			return err
		}
		amount, err := money.New(input.Amount)
		if err != nil {
			return common.ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid amount", err.Error())
		}
		tx, err := svc.PayBill(c.Context(), userID, input.Biller, amount, input.Pin)
		if err != nil {
			return common.ProblemJSON(c, "Payment failed", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Payment completed", toTransactionResponse(tx))
	}
}
