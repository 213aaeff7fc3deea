package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"barbuddy/apperrors"
)

// userIDFromContext safely extracts the authenticated user's ID from
// context locals.
func userIDFromContext(c *fiber.Ctx) (uuid.UUID, error) {
	val := c.Locals("user_id")
	if val == nil {
		return uuid.Nil, apperrors.NewUnauthenticated("")
	}

	userID, ok := val.(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return uuid.Nil, apperrors.NewUnauthenticated("")
	}

	return userID, nil
}

// parseUUIDParam parses a route parameter as a UUID.
func parseUUIDParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, apperrors.NewBadRequest("Invalid " + name)
	}
	return id, nil
}
