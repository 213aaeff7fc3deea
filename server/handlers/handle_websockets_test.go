package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"barbuddy/apperrors"
	"barbuddy/services/tokens"
)

// newUpgradeApp mounts the upgrade middleware with a plain handler
// behind it, so a passed check shows up as a 200.
func newUpgradeApp(tsvc *tokens.Service) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: apperrors.Handler(apperrors.HandlerConfig{}),
	})
	app.Get("/ws", HandleWebsocketUpgrade(tsvc), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func upgradeRequest(target string) *http.Request {
	req, _ := http.NewRequest(http.MethodGet, target, nil)
	req.Header.Set("Connection", "Upgrade")
	req.Header.Set("Upgrade", "websocket")
	return req
}

func TestWebsocketUpgradeQueryToken(t *testing.T) {
	tsvc := tokens.NewService("test-secret", time.Hour)
	token, err := tsvc.Issue(uuid.New(), "alice@example.com")
	require.NoError(t, err)

	app := newUpgradeApp(tsvc)
	resp, err := app.Test(upgradeRequest("/ws?token=" + token))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestWebsocketUpgradeBearerHeader(t *testing.T) {
	tsvc := tokens.NewService("test-secret", time.Hour)
	token, err := tsvc.Issue(uuid.New(), "alice@example.com")
	require.NoError(t, err)

	app := newUpgradeApp(tsvc)

	req := upgradeRequest("/ws")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	// A bare token without the scheme works too.
	req = upgradeRequest("/ws")
	req.Header.Set("Authorization", token)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestWebsocketUpgradeBadToken(t *testing.T) {
	tsvc := tokens.NewService("test-secret", time.Hour)
	app := newUpgradeApp(tsvc)

	req := upgradeRequest("/ws")
	req.Header.Set("Authorization", "Bearer not-a-token")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, err = app.Test(upgradeRequest("/ws"))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestWebsocketUpgradeRequired(t *testing.T) {
	tsvc := tokens.NewService("test-secret", time.Hour)
	app := newUpgradeApp(tsvc)

	req, _ := http.NewRequest(http.MethodGet, "/ws", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUpgradeRequired, resp.StatusCode)
}
