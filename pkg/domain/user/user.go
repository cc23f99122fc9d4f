// Package user holds the user identity owning accounts, loans and
// notifications.
package user

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/veltris/banking/pkg/utils"
)

var (
	// ErrUserNotFound is returned when a user cannot be found.
	ErrUserNotFound = errors.New("user not found")

	// ErrUserUnauthorized is returned when credentials do not match.
	ErrUserUnauthorized = errors.New("user unauthorized")

	// ErrUsernameTaken is returned when a registration reuses a username or
	// email.
	ErrUsernameTaken = errors.New("username or email already taken")
)

// User represents an identity in the system. One account per user.
type User struct {
	ID        uuid.UUID
	Username  string
	Email     string
	Password  string // bcrypt hash
	Names     string
	Admin     bool // staff flag for the operations console
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewUser creates a User with a hashed password and current timestamps.
func NewUser(username, email, password string) (*User, error) {
	if username == "" {
		return nil, errors.New("username cannot be empty")
	}
	if !utils.IsEmail(email) {
		return nil, errors.New("invalid email address")
	}
	hashed, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return &User{
		ID:        uuid.New(),
		Username:  username,
		Email:     email,
		Password:  hashed,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// CheckPassword reports whether the plain password matches the stored hash.
func (u *User) CheckPassword(plain string) bool {
	return utils.CheckHash(plain, u.Password)
}
