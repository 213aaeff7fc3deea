package limiter

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// Config defines the configuration for the rate limiter.
type Config struct {
	// Next defines a function to skip middleware.
	//
	// Optional. Default: nil
	Next func(c *fiber.Ctx) bool

	// Capacity is the burst size of each bucket.
	//
	// Optional. Default: 100
	Capacity int64

	// RefillRate is the number of tokens added per refill period.
	//
	// Optional. Default: 10
	RefillRate int64

	// RefillPeriod is how often tokens are added.
	//
	// Optional. Default: 1 second
	RefillPeriod time.Duration

	// KeyGenerator derives the bucket key for a request.
	//
	// Optional. Default: client IP
	KeyGenerator func(c *fiber.Ctx) string

	// LimitReachedHandler is called when no token is available.
	LimitReachedHandler fiber.Handler

	// Storage holds the buckets.
	//
	// Optional. Default: in-memory
	Storage Storage
}

var ConfigDefault = Config{
	Capacity:     100,
	RefillRate:   10,
	RefillPeriod: time.Second,
	KeyGenerator: func(c *fiber.Ctx) string {
		return c.IP()
	},
	LimitReachedHandler: func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"error": "Rate limit exceeded",
		})
	},
}

func configDefault(config ...Config) Config {
	if len(config) < 1 {
		cfg := ConfigDefault
		cfg.Storage = NewInMemoryStorage()
		return cfg
	}

	cfg := config[0]

	if cfg.Capacity <= 0 {
		cfg.Capacity = ConfigDefault.Capacity
	}
	if cfg.RefillRate <= 0 {
		cfg.RefillRate = ConfigDefault.RefillRate
	}
	if cfg.RefillPeriod <= 0 {
		cfg.RefillPeriod = ConfigDefault.RefillPeriod
	}
	if cfg.KeyGenerator == nil {
		cfg.KeyGenerator = ConfigDefault.KeyGenerator
	}
	if cfg.LimitReachedHandler == nil {
		cfg.LimitReachedHandler = ConfigDefault.LimitReachedHandler
	}
	if cfg.Storage == nil {
		cfg.Storage = NewInMemoryStorage()
	}

	return cfg
}
