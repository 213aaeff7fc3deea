package handlers

import (
	"github.com/gofiber/fiber/v2"

	"barbuddy/apperrors"
	"barbuddy/db"
	"barbuddy/services/users"
)

// userResponse is the public shape of a user. The password hash never
// leaves the server.
type userResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	DayCount  int16  `json:"day_count"`
	CreatedAt string `json:"created_at"`
}

func toUserResponse(user db.User) userResponse {
	return userResponse{
		ID:        user.ID.String(),
		Username:  user.Username,
		Email:     user.Email,
		DayCount:  user.DayCount,
		CreatedAt: user.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// HandleUserRegister creates a new account.
func HandleUserRegister(usvc *users.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var params users.RegisterParams
		if err := c.BodyParser(&params); err != nil {
			return apperrors.NewBadRequest("Invalid request body")
		}

		user, token, err := usvc.Register(c.Context(), params)
		if err != nil {
			return err
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"user":  toUserResponse(user),
			"token": token,
		})
	}
}

// HandleUserLogin verifies credentials and issues a token.
func HandleUserLogin(usvc *users.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var params users.LoginParams
		if err := c.BodyParser(&params); err != nil {
			return apperrors.NewBadRequest("Invalid request body")
		}

		user, token, err := usvc.Login(c.Context(), params)
		if err != nil {
			return err
		}

		return c.JSON(fiber.Map{
			"user":  toUserResponse(user),
			"token": token,
		})
	}
}

// HandleTokenVerify confirms the caller's token is valid. Reaching
// this handler means the auth middleware already accepted it.
func HandleTokenVerify() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := userIDFromContext(c); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"valid": true})
	}
}

// HandleUserGet returns another user's public profile.
func HandleUserGet(usvc *users.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := userIDFromContext(c); err != nil {
			return err
		}

		friendID, err := parseUUIDParam(c, "friendId")
		if err != nil {
			return err
		}

		user, err := usvc.GetProfile(c.Context(), friendID)
		if err != nil {
			return err
		}
		return c.JSON(toUserResponse(user))
	}
}

// HandleUserProfile returns the authenticated user's profile.
func HandleUserProfile(usvc *users.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := userIDFromContext(c)
		if err != nil {
			return err
		}

		user, err := usvc.GetProfile(c.Context(), userID)
		if err != nil {
			return err
		}

		return c.JSON(toUserResponse(user))
	}
}
