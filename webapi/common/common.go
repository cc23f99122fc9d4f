// Package common holds the shared HTTP plumbing of the web API: the success
// envelope, RFC 9457 problem details, domain-error-to-status mapping and
// request binding with validation.
package common

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/veltris/banking/pkg/domain/account"
	"github.com/veltris/banking/pkg/domain/loan"
	"github.com/veltris/banking/pkg/domain/notification"
	"github.com/veltris/banking/pkg/domain/user"
	"github.com/veltris/banking/pkg/service/accountsvc"
	"github.com/veltris/banking/pkg/service/otp"
)

// Response defines the standard API response structure for success cases.
type Response struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// ProblemDetails follows RFC 9457 Problem Details for HTTP APIs.
type ProblemDetails struct {
	Type     string `json:"type,omitempty"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
	Errors   any    `json:"errors,omitempty"`
}

// SuccessResponseJSON writes the standard success envelope.
func SuccessResponseJSON(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(Response{
		Status:  status,
		Message: message,
		Data:    data,
	})
}

// ErrorResponseJSON writes an RFC 9457 problem response.
func ErrorResponseJSON(c *fiber.Ctx, status int, title string, detail any) error {
	pd := ProblemDetails{
		Type:   "about:blank",
		Title:  title,
		Status: status,
	}
	if detail != nil {
		if s, ok := detail.(string); ok {
			pd.Detail = s
		} else {
			pd.Errors = detail
		}
	}
	pd.Instance = c.OriginalURL()
	c.Set(fiber.HeaderContentType, "application/problem+json")

	return c.Status(status).JSON(pd)
}

// ProblemJSON maps a domain error to its status code and writes the problem
// response in one step.
func ProblemJSON(c *fiber.Ctx, title string, err error) error {
	return ErrorResponseJSON(c, ErrorToStatusCode(err), title, err.Error())
}

// ErrorToStatusCode maps domain errors to HTTP status codes.
func ErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, account.ErrAccountNotFound),
		errors.Is(err, account.ErrRecipientNotFound),
		errors.Is(err, loan.ErrLoanNotFound),
		errors.Is(err, notification.ErrNotificationNotFound),
		errors.Is(err, user.ErrUserNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, account.ErrInsufficientFunds):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, account.ErrAccountBlocked):
		return fiber.StatusForbidden
	case errors.Is(err, account.ErrWrongPin),
		errors.Is(err, user.ErrUserUnauthorized),
		errors.Is(err, otp.ErrInvalidCode),
		errors.Is(err, otp.ErrCodeExpired):
		return fiber.StatusUnauthorized
	case errors.Is(err, account.ErrAmountMustBePositive),
		errors.Is(err, account.ErrInvalidPin),
		errors.Is(err, account.ErrPinNotSet),
		errors.Is(err, account.ErrCannotTransferToSameAccount),
		errors.Is(err, loan.ErrInvalidTerm),
		errors.Is(err, accountsvc.ErrUnknownPreference):
		return fiber.StatusBadRequest
	case errors.Is(err, loan.ErrNotPending),
		errors.Is(err, loan.ErrNotApproved),
		errors.Is(err, loan.ErrExceedsRemaining),
		errors.Is(err, account.ErrInvalidTransition):
		return fiber.StatusConflict
	case errors.Is(err, otp.ErrNoPendingAction):
		return fiber.StatusGone
	case errors.Is(err, user.ErrUsernameTaken):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// BindAndValidate parses the request body and validates it with
// go-playground/validator. Returns the populated struct, or writes the error
// response and returns nil.
func BindAndValidate[T any](c *fiber.Ctx) (*T, error) {
	var input T
	if err := c.BodyParser(&input); err != nil {
		_ = ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid request body", err.Error())
		return nil, err
	}
	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		_ = ErrorResponseJSON(c, fiber.StatusBadRequest, "Validation failed", err.Error())
		return nil, err
	}
	return &input, nil
}
