package handlers

import (
	"context"
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// HealthCheckHandler provides health and readiness checks.
type HealthCheckHandler struct {
	sdb *sql.DB
	rdb *redis.Client
}

func NewHealthCheckHandler(sdb *sql.DB, rdb *redis.Client) *HealthCheckHandler {
	return &HealthCheckHandler{sdb: sdb, rdb: rdb}
}

// CheckStatus represents individual component status.
type CheckStatus struct {
	Status  string  `json:"status"`
	Message string  `json:"message,omitempty"`
	Latency float64 `json:"latency_ms,omitempty"`
}

var startTime = time.Now()

// HandleHealthCheck is the fast check used by load balancers.
func (h *HealthCheckHandler) HandleHealthCheck() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":         "healthy",
			"timestamp":      time.Now().Format(time.RFC3339),
			"uptime_seconds": time.Since(startTime).Seconds(),
		})
	}
}

// HandleReadinessCheck pings the backing stores.
func (h *HealthCheckHandler) HandleReadinessCheck() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		checks := make(map[string]CheckStatus)
		ready := true

		start := time.Now()
		if err := h.sdb.PingContext(ctx); err != nil {
			checks["postgres"] = CheckStatus{Status: "down", Message: err.Error()}
			ready = false
		} else {
			checks["postgres"] = CheckStatus{
				Status:  "up",
				Latency: float64(time.Since(start).Microseconds()) / 1000,
			}
		}

		if h.rdb != nil {
			start = time.Now()
			if err := h.rdb.Ping(ctx).Err(); err != nil {
				checks["redis"] = CheckStatus{Status: "down", Message: err.Error()}
				ready = false
			} else {
				checks["redis"] = CheckStatus{
					Status:  "up",
					Latency: float64(time.Since(start).Microseconds()) / 1000,
				}
			}
		}

		status := "ready"
		code := fiber.StatusOK
		if !ready {
			status = "not ready"
			code = fiber.StatusServiceUnavailable
		}

		return c.Status(code).JSON(fiber.Map{
			"status":    status,
			"timestamp": time.Now().Format(time.RFC3339),
			"checks":    checks,
		})
	}
}
