// Package auth exposes registration and the OTP-gated login flow over HTTP.
package auth

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	authsvc "github.com/veltris/banking/pkg/service/auth"
	"github.com/veltris/banking/webapi/common"
)

// Routes registers the authentication endpoints. None of them require a
// token; the login flow is how callers obtain one.
func Routes(app *fiber.App, svc *authsvc.Service, logger *slog.Logger) {
	app.Post("/auth/register", Register(svc, logger))
	app.Post("/auth/login", Login(svc, logger))
	app.Post("/auth/login/verify", VerifyLogin(svc, logger))
	app.Post("/auth/login/resend", ResendLoginCode(svc))
	app.Post("/auth/password/forgot", ForgotPassword(svc))
	app.Post("/auth/password/reset", ResetPassword(svc))
}

// Register creates a user and opens their account.
func Register(svc *authsvc.Service, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[RegisterRequest](c)
		if input == nil {
			return err
		}
		u, err := svc.Register(c.Context(), input.Username, input.Email, input.Password, input.Names)
		if err != nil {
			logger.Error("registration failed", "username", input.Username, "error", err)
			return common.ProblemJSON(c, "Registration failed", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Registered", UserResponse{
			ID:       u.ID,
			Username: u.Username,
			Email:    u.Email,
		})
	}
}

// Login checks credentials and triggers the login code delivery.
func Login(svc *authsvc.Service, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[LoginRequest](c)
		if input == nil {
			return err
		}
		u, err := svc.Login(c.Context(), input.Identity, input.Password)
		if err != nil {
			logger.Warn("login rejected", "identity", input.Identity)
			return common.ProblemJSON(c, "Login failed", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Verification code sent", LoginResponse{
			UserID: u.ID,
		})
	}
}

// VerifyLogin consumes the login code and returns the session token.
func VerifyLogin(svc *authsvc.Service, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[VerifyLoginRequest](c)
		if input == nil {
			return err
		}
		userID, err := uuid.Parse(input.UserID)
		if err != nil {
			return common.ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid user ID", err.Error())
		}
		token, err := svc.VerifyLogin(c.Context(), userID, input.Code)
		if err != nil {
			logger.Warn("login verification rejected", "user_id", userID)
			return common.ProblemJSON(c, "Verification failed", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Logged in", TokenResponse{Token: token})
	}
}

// ResendLoginCode redelivers a pending login code.
func ResendLoginCode(svc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[ResendRequest](c)
		if input == nil {
			return err
		}
		userID, err := uuid.Parse(input.UserID)
		if err != nil {
			return common.ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid user ID", err.Error())
		}
		if err := svc.ResendLoginCode(c.Context(), userID); err != nil {
			return common.ProblemJSON(c, "Resend failed", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Verification code sent", nil)
	}
}

// ForgotPassword starts the password recovery flow. The response never
// reveals whether the email exists.
func ForgotPassword(svc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[ForgotPasswordRequest](c)
		if input == nil {
			return err
		}
		if err := svc.ForgotPassword(c.Context(), input.Email); err != nil {
			return common.ProblemJSON(c, "Recovery failed", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "If the address is on file, a code has been sent", nil)
	}
}

// ResetPassword consumes a recovery code and replaces the password.
func ResetPassword(svc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[ResetPasswordRequest](c)
		if input == nil {
			return err
		}
		if err := svc.ResetPassword(c.Context(), input.Email, input.Code, input.NewPassword); err != nil {
			return common.ProblemJSON(c, "Reset failed", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Password updated", nil)
	}
}
