// Package auth handles registration, the OTP-gated login flow and the
// credential reset flows. Logging in never yields a token directly: the
// password check issues a login code, and only verifying that code mints the
// JWT.
package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/veltris/banking/pkg/domain/account"
	"github.com/veltris/banking/pkg/domain/user"
	"github.com/veltris/banking/pkg/repository"
	"github.com/veltris/banking/pkg/service/otp"
	"github.com/veltris/banking/pkg/service/pinguard"
	"github.com/veltris/banking/pkg/ticket"
	"github.com/veltris/banking/pkg/utils"
)

// Service authenticates users and manages their credentials.
type Service struct {
	uow       repository.UnitOfWork
	pins      *pinguard.Service
	codes     *otp.Service
	jwtSecret []byte
	jwtExpiry time.Duration
	logger    *slog.Logger
}

// New creates an auth service.
func New(uow repository.UnitOfWork, pins *pinguard.Service, codes *otp.Service, jwtSecret string, jwtExpiry time.Duration, logger *slog.Logger) *Service {
	return &Service{
		uow:       uow,
		pins:      pins,
		codes:     codes,
		jwtSecret: []byte(jwtSecret),
		jwtExpiry: jwtExpiry,
		logger:    logger,
	}
}

// Register creates the user and opens their account in one unit of work.
func (s *Service) Register(ctx context.Context, username, email, password, names string) (*user.User, error) {
	u, err := user.NewUser(username, email, password)
	if err != nil {
		return nil, err
	}
	u.Names = names
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		if err := uow.Users().Create(ctx, u); err != nil {
			return err
		}
		acc, err := account.New().WithUserID(u.ID).Build()
		if err != nil {
			return err
		}
		return uow.Accounts().Create(ctx, acc)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("user registered", "user_id", u.ID, "username", u.Username)
	return u, nil
}

// Login checks the password and, when it matches, issues a login code.
// Identity can be the username or the email address. The caller completes
// the flow with VerifyLogin.
func (s *Service) Login(ctx context.Context, identity, password string) (*user.User, error) {
	u, err := s.lookup(ctx, identity)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, user.ErrUserUnauthorized
		}
		return nil, err
	}
	if !u.CheckPassword(password) {
		return nil, user.ErrUserUnauthorized
	}
	if err := s.codes.Issue(ctx, u.ID, ticket.PurposeLogin, nil); err != nil {
		return nil, err
	}
	return u, nil
}

// VerifyLogin consumes the login code and mints the session token.
func (s *Service) VerifyLogin(ctx context.Context, userID uuid.UUID, code string) (string, error) {
	if _, err := s.codes.Verify(ctx, userID, ticket.PurposeLogin, code); err != nil {
		return "", err
	}
	u, err := s.uow.Users().Get(ctx, userID)
	if err != nil {
		return "", err
	}
	return s.mintToken(u)
}

// ResendLoginCode redelivers the pending login code.
func (s *Service) ResendLoginCode(ctx context.Context, userID uuid.UUID) error {
	return s.codes.Resend(ctx, userID, ticket.PurposeLogin)
}

// ForgotPassword issues a recovery code to the account on file. A missing
// email reports success to the caller; enumeration gets nothing.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	u, err := s.uow.Users().GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil
		}
		return err
	}
	return s.codes.Issue(ctx, u.ID, ticket.PurposeRecovery, nil)
}

// ResetPassword consumes the recovery code and replaces the password.
func (s *Service) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	u, err := s.uow.Users().GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if _, err := s.codes.Verify(ctx, u.ID, ticket.PurposeRecovery, code); err != nil {
		return err
	}
	hashed, err := utils.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		stored, err := uow.Users().Get(ctx, u.ID)
		if err != nil {
			return err
		}
		stored.Password = hashed
		return uow.Users().Update(ctx, stored)
	})
}

// RequestPinReset issues a pin-reset code to an authenticated user.
func (s *Service) RequestPinReset(ctx context.Context, userID uuid.UUID) error {
	return s.codes.Issue(ctx, userID, ticket.PurposePinReset, nil)
}

// ConfirmPinReset consumes the pin-reset code and stores the new PIN.
func (s *Service) ConfirmPinReset(ctx context.Context, userID uuid.UUID, code, newPin string) error {
	if _, err := s.codes.Verify(ctx, userID, ticket.PurposePinReset, code); err != nil {
		return err
	}
	return s.pins.SetPin(ctx, userID, newPin)
}

func (s *Service) lookup(ctx context.Context, identity string) (*user.User, error) {
	if utils.IsEmail(identity) {
		return s.uow.Users().GetByEmail(ctx, identity)
	}
	return s.uow.Users().GetByUsername(ctx, identity)
}

func (s *Service) mintToken(u *user.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id":  u.ID.String(),
		"username": u.Username,
		"admin":    u.Admin,
		"iat":      now.Unix(),
		"exp":      now.Add(s.jwtExpiry).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}
