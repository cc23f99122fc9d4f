package auth

import "github.com/google/uuid"

// RegisterRequest is the registration payload.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Names    string `json:"names" validate:"max=100"`
}

// LoginRequest carries the username-or-email identity and password.
type LoginRequest struct {
	Identity string `json:"identity" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// VerifyLoginRequest echoes the delivered login code.
type VerifyLoginRequest struct {
	UserID string `json:"user_id" validate:"required,uuid"`
	Code   string `json:"code" validate:"required,len=6,numeric"`
}

// ResendRequest asks for a fresh login code.
type ResendRequest struct {
	UserID string `json:"user_id" validate:"required,uuid"`
}

// ForgotPasswordRequest starts password recovery.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest completes password recovery.
type ResetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Code        string `json:"code" validate:"required,len=6,numeric"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// UserResponse is the public view of a user.
type UserResponse struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
}

// LoginResponse identifies the pending login awaiting code verification.
type LoginResponse struct {
	UserID uuid.UUID `json:"user_id"`
}

// TokenResponse carries the minted session token.
type TokenResponse struct {
	Token string `json:"token"`
}
