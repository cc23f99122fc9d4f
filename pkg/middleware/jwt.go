// Package middleware provides the JWT route protection and claim accessors
// used by the web API.
package middleware

import (
	"errors"

	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/veltris/banking/pkg/config"
)

// ErrNoUserContext is returned when a handler runs without a parsed token.
var ErrNoUserContext = errors.New("missing user context")

// JwtProtected guards a route with bearer-token authentication.
func JwtProtected(cfg *config.Jwt) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{Key: []byte(cfg.Secret)},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			c.Set(fiber.HeaderContentType, "application/problem+json")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"type":   "about:blank",
				"title":  "Unauthorized",
				"status": fiber.StatusUnauthorized,
				"detail": err.Error(),
			})
		},
	})
}

// AdminOnly rejects requests whose token lacks the staff claim. Must run
// after JwtProtected.
func AdminOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !IsAdmin(c) {
			c.Set(fiber.HeaderContentType, "application/problem+json")
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"type":   "about:blank",
				"title":  "Forbidden",
				"status": fiber.StatusForbidden,
				"detail": "operator access required",
			})
		}
		return c.Next()
	}
}

// CurrentUserID extracts the authenticated user's ID from the parsed token.
func CurrentUserID(c *fiber.Ctx) (uuid.UUID, error) {
	claims, err := tokenClaims(c)
	if err != nil {
		return uuid.Nil, err
	}
	raw, ok := claims["user_id"].(string)
	if !ok {
		return uuid.Nil, ErrNoUserContext
	}
	return uuid.Parse(raw)
}

// IsAdmin reports whether the token carries the staff claim.
func IsAdmin(c *fiber.Ctx) bool {
	claims, err := tokenClaims(c)
	if err != nil {
		return false
	}
	admin, ok := claims["admin"].(bool)
	return ok && admin
}

func tokenClaims(c *fiber.Ctx) (jwt.MapClaims, error) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return nil, ErrNoUserContext
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrNoUserContext
	}
	return claims, nil
}
