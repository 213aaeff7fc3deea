package apperrors

import (
	"log"

	"github.com/gofiber/fiber/v2"
)

// HandlerConfig configures the error handler
type HandlerConfig struct {
	// Logger for error logging
	Logger *log.Logger

	// ShowInternalErrors shows internal error details in responses (dev only)
	ShowInternalErrors bool

	// OnError is called for each error (useful for metrics/monitoring)
	OnError func(c *fiber.Ctx, err *AppError)
}

// DefaultHandlerConfig returns sensible defaults
func DefaultHandlerConfig() HandlerConfig {
	return HandlerConfig{
		Logger:             log.Default(),
		ShowInternalErrors: false,
		OnError:            nil,
	}
}

// Handler creates a Fiber error handler that renders every failure as a
// structured JSON body.
func Handler(config HandlerConfig) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		appErr := FromError(err)

		if config.Logger != nil {
			logError(config.Logger, c, appErr)
		}

		if config.OnError != nil {
			config.OnError(c, appErr)
		}

		response := fiber.Map{
			"error": fiber.Map{
				"code":    appErr.Code,
				"message": appErr.Message,
			},
		}

		if len(appErr.Details) > 0 {
			response["error"].(fiber.Map)["details"] = appErr.Details
		}

		if config.ShowInternalErrors && appErr.Internal != nil {
			response["error"].(fiber.Map)["internal"] = appErr.Internal.Error()
		}

		return c.Status(appErr.StatusCode).JSON(response)
	}
}

// logError logs the error with request context
func logError(logger *log.Logger, c *fiber.Ctx, err *AppError) {
	// Expected errors stay at warn level
	if err.StatusCode < 500 {
		logger.Printf("[WARN] %s %s | %s | Status: %d | User: %v",
			c.Method(), c.Path(), err.Error(), err.StatusCode, c.Locals("user_id"))
		return
	}

	logger.Printf("[ERROR] %s %s | %s | Status: %d | IP: %s | User: %v",
		c.Method(), c.Path(), err.Error(), err.StatusCode, c.IP(), c.Locals("user_id"))

	if err.Internal != nil {
		logger.Printf("[ERROR] Internal error: %+v", err.Internal)
	}
}
