package auth

import (
	"github.com/gofiber/fiber/v2"

	"barbuddy/services/tokens"
)

type Config struct {
	// Next defines a function to skip middleware.
	//
	// Optional. Default: nil
	Next func(c *fiber.Ctx) bool

	// Tokens verifies bearer tokens.
	//
	// Required. Default: nil
	Tokens *tokens.Service

	// TokenLookup is an alternative source for the token when the
	// Authorization header is absent, e.g. a query parameter on
	// websocket upgrades.
	//
	// Optional. Default: nil
	TokenLookup func(c *fiber.Ctx) string
}

func configDefault(config Config) Config {
	return config
}
