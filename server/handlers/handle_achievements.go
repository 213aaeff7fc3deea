package handlers

import (
	"github.com/gofiber/fiber/v2"

	"barbuddy/apperrors"
	"barbuddy/db"
	"barbuddy/services/achievements"
)

type achievementResponse struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	Achievement int16  `json:"achievement"`
	CreatedAt   string `json:"created_at"`
}

func toAchievementResponse(a db.Achievement) achievementResponse {
	return achievementResponse{
		ID:          a.ID.String(),
		UserID:      a.UserID.String(),
		Achievement: a.Achievement,
		CreatedAt:   a.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func HandleAchievementCreate(asvc *achievements.AchievementService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := userIDFromContext(c)
		if err != nil {
			return err
		}

		var body struct {
			Achievement int16 `json:"achievement"`
		}
		if err := c.BodyParser(&body); err != nil {
			return apperrors.NewBadRequest("Invalid request body")
		}

		achievement, err := asvc.Create(c.Context(), userID, body.Achievement)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(toAchievementResponse(achievement))
	}
}

func HandleAchievementList(asvc *achievements.AchievementService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := userIDFromContext(c); err != nil {
			return err
		}

		items, err := asvc.List(c.Context())
		if err != nil {
			return err
		}

		resp := make([]achievementResponse, 0, len(items))
		for _, a := range items {
			resp = append(resp, toAchievementResponse(a))
		}
		return c.JSON(resp)
	}
}

func HandleAchievementGet(asvc *achievements.AchievementService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := userIDFromContext(c); err != nil {
			return err
		}

		id, err := parseUUIDParam(c, "achievementId")
		if err != nil {
			return err
		}

		achievement, err := asvc.Get(c.Context(), id)
		if err != nil {
			return err
		}
		return c.JSON(toAchievementResponse(achievement))
	}
}

func HandleAchievementUpdate(asvc *achievements.AchievementService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := userIDFromContext(c); err != nil {
			return err
		}

		id, err := parseUUIDParam(c, "achievementId")
		if err != nil {
			return err
		}

		var body struct {
			Achievement int16 `json:"achievement"`
		}
		if err := c.BodyParser(&body); err != nil {
			return apperrors.NewBadRequest("Invalid request body")
		}

		achievement, err := asvc.Update(c.Context(), id, body.Achievement)
		if err != nil {
			return err
		}
		return c.JSON(toAchievementResponse(achievement))
	}
}

func HandleAchievementDelete(asvc *achievements.AchievementService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := userIDFromContext(c); err != nil {
			return err
		}

		id, err := parseUUIDParam(c, "achievementId")
		if err != nil {
			return err
		}

		if err := asvc.Delete(c.Context(), id); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
