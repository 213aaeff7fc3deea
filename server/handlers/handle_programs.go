package handlers

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"

	"barbuddy/apperrors"
	"barbuddy/db"
	"barbuddy/services/programs"
)

type programResponse struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Name      string          `json:"name"`
	Workouts  json.RawMessage `json:"workouts"`
	IsPrivate bool            `json:"is_private"`
	CreatedAt string          `json:"created_at"`
	UpdatedAt string          `json:"updated_at"`
}

func toProgramResponse(p db.Program) programResponse {
	return programResponse{
		ID:        p.ID.String(),
		UserID:    p.UserID.String(),
		Name:      p.Name,
		Workouts:  p.Workouts,
		IsPrivate: p.IsPrivate,
		CreatedAt: p.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt: p.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func HandleProgramCreate(psvc *programs.ProgramService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := userIDFromContext(c)
		if err != nil {
			return err
		}

		var params programs.Params
		if err := c.BodyParser(&params); err != nil {
			return apperrors.NewBadRequest("Invalid request body")
		}

		program, err := psvc.Create(c.Context(), userID, params)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(toProgramResponse(program))
	}
}

func HandleProgramList(psvc *programs.ProgramService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := userIDFromContext(c)
		if err != nil {
			return err
		}

		items, err := psvc.List(c.Context(), userID)
		if err != nil {
			return err
		}

		resp := make([]programResponse, 0, len(items))
		for _, p := range items {
			resp = append(resp, toProgramResponse(p))
		}
		return c.JSON(resp)
	}
}

func HandleProgramGet(psvc *programs.ProgramService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := userIDFromContext(c)
		if err != nil {
			return err
		}

		id, err := parseUUIDParam(c, "programId")
		if err != nil {
			return err
		}

		program, err := psvc.Get(c.Context(), id, userID)
		if err != nil {
			return err
		}
		return c.JSON(toProgramResponse(program))
	}
}

func HandleProgramUpdate(psvc *programs.ProgramService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := userIDFromContext(c)
		if err != nil {
			return err
		}

		id, err := parseUUIDParam(c, "programId")
		if err != nil {
			return err
		}

		var params programs.Params
		if err := c.BodyParser(&params); err != nil {
			return apperrors.NewBadRequest("Invalid request body")
		}

		program, err := psvc.Update(c.Context(), id, userID, params)
		if err != nil {
			return err
		}
		return c.JSON(toProgramResponse(program))
	}
}

func HandleProgramDelete(psvc *programs.ProgramService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := userIDFromContext(c)
		if err != nil {
			return err
		}

		id, err := parseUUIDParam(c, "programId")
		if err != nil {
			return err
		}

		if err := psvc.Delete(c.Context(), id, userID); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
