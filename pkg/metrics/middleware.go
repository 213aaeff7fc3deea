package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// HTTPMetricsMiddleware tracks HTTP request metrics
func HTTPMetricsMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		HTTPRequestsInFlight.Inc()
		defer HTTPRequestsInFlight.Dec()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())
		method := c.Method()
		path := sanitizePath(c.Path())

		HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration)
		HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()

		return err
	}
}

// sanitizePath collapses dynamic segments to avoid high label cardinality.
// Example: /api/chat/4f1c... -> /api/chat/:friendId
func sanitizePath(path string) string {
	switch path {
	case "/api/users/register", "/api/users/login", "/api/users/profile", "/api/users/verify",
		"/api/lifts", "/api/lifts/last", "/api/lifts/max", "/api/friends", "/api/friends/details",
		"/api/groups", "/api/programs", "/api/achievements", "/ws", "/health", "/ready", "/metrics":
		return path
	}

	patterns := map[string]string{
		"/api/chat/":         "/api/chat/:friendId",
		"/api/lifts/":        "/api/lifts/:id",
		"/api/programs/":     "/api/programs/:id",
		"/api/achievements/": "/api/achievements/:id",
		"/api/groups/":       "/api/groups/:groupId",
		"/api/users/":        "/api/users/:friendId",
	}

	for prefix, normalized := range patterns {
		if len(path) > len(prefix) && strings.HasPrefix(path, prefix) {
			return normalized
		}
	}

	return "/other"
}
