package handlers

import (
	"github.com/gofiber/fiber/v2"

	"barbuddy/apperrors"
	"barbuddy/db"
	"barbuddy/services/lifts"
)

type liftResponse struct {
	ID          string   `json:"id"`
	UserID      string   `json:"user_id"`
	Type        string   `json:"type"`
	Weight      float64  `json:"weight"`
	Reps        int32    `json:"reps"`
	Sets        int32    `json:"sets"`
	Date        string   `json:"date"`
	Rpe         *float64 `json:"rpe,omitempty"`
	Description *string  `json:"description,omitempty"`
}

func toLiftResponse(lift db.Lift) liftResponse {
	resp := liftResponse{
		ID:     lift.ID.String(),
		UserID: lift.UserID.String(),
		Type:   lift.Type,
		Weight: lift.Weight,
		Reps:   lift.Reps,
		Sets:   lift.Sets,
		Date:   lift.Date.Format("2006-01-02T15:04:05Z07:00"),
	}
	if lift.Rpe.Valid {
		resp.Rpe = &lift.Rpe.Float64
	}
	if lift.Description.Valid {
		resp.Description = &lift.Description.String
	}
	return resp
}

func toLiftResponses(items []db.Lift) []liftResponse {
	resp := make([]liftResponse, 0, len(items))
	for _, l := range items {
		resp = append(resp, toLiftResponse(l))
	}
	return resp
}

func HandleLiftCreate(lsvc *lifts.LiftService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := userIDFromContext(c)
		if err != nil {
			return err
		}

		var params lifts.CreateParams
		if err := c.BodyParser(&params); err != nil {
			return apperrors.NewBadRequest("Invalid request body")
		}

		lift, err := lsvc.Create(c.Context(), userID, params)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(toLiftResponse(lift))
	}
}

func HandleLiftList(lsvc *lifts.LiftService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := userIDFromContext(c)
		if err != nil {
			return err
		}

		items, err := lsvc.List(c.Context(), userID)
		if err != nil {
			return err
		}
		return c.JSON(toLiftResponses(items))
	}
}

// HandleLiftLast returns the most recent lift, or 404 when the user has
// no lifts yet.
func HandleLiftLast(lsvc *lifts.LiftService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := userIDFromContext(c)
		if err != nil {
			return err
		}

		lift, err := lsvc.Last(c.Context(), userID)
		if err != nil {
			return err
		}
		return c.JSON(toLiftResponse(lift))
	}
}

func HandleLiftMax(lsvc *lifts.LiftService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := userIDFromContext(c)
		if err != nil {
			return err
		}

		maxes, err := lsvc.Max(c.Context(), userID)
		if err != nil {
			return err
		}
		if maxes == nil {
			maxes = []db.MaxLiftRow{}
		}
		return c.JSON(maxes)
	}
}

func HandleLiftGet(lsvc *lifts.LiftService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := userIDFromContext(c)
		if err != nil {
			return err
		}

		id, err := parseUUIDParam(c, "liftId")
		if err != nil {
			return err
		}

		lift, err := lsvc.Get(c.Context(), id, userID)
		if err != nil {
			return err
		}
		return c.JSON(toLiftResponse(lift))
	}
}

func HandleLiftUpdate(lsvc *lifts.LiftService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := userIDFromContext(c)
		if err != nil {
			return err
		}

		id, err := parseUUIDParam(c, "liftId")
		if err != nil {
			return err
		}

		var params lifts.UpdateParams
		if err := c.BodyParser(&params); err != nil {
			return apperrors.NewBadRequest("Invalid request body")
		}

		lift, err := lsvc.Update(c.Context(), id, userID, params)
		if err != nil {
			return err
		}
		return c.JSON(toLiftResponse(lift))
	}
}

func HandleLiftDelete(lsvc *lifts.LiftService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := userIDFromContext(c)
		if err != nil {
			return err
		}

		id, err := parseUUIDParam(c, "liftId")
		if err != nil {
			return err
		}

		if err := lsvc.Delete(c.Context(), id, userID); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
