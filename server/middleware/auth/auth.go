package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"barbuddy/apperrors"
)

// New returns middleware that verifies the bearer token and stores the
// caller's identity in Locals under "user_id" and "email".
func New(config Config) fiber.Handler {
	cfg := configDefault(config)

	return func(c *fiber.Ctx) error {
		if cfg.Next != nil && cfg.Next(c) {
			return c.Next()
		}

		token := FromAuthHeader(c)
		if token == "" && cfg.TokenLookup != nil {
			token = cfg.TokenLookup(c)
		}
		if token == "" {
			return apperrors.NewUnauthenticated("")
		}

		identity, err := cfg.Tokens.Verify(token)
		if err != nil {
			return err
		}

		c.Locals("user_id", identity.UserID)
		c.Locals("email", identity.Email)

		return c.Next()
	}
}

// FromAuthHeader extracts a bearer token from the Authorization header.
func FromAuthHeader(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return ""
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return parts[1]
	}

	// Bare token without a scheme.
	if len(parts) == 1 {
		return parts[0]
	}
	return ""
}
