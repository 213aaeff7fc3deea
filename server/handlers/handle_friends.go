package handlers

import (
	"github.com/gofiber/fiber/v2"

	"barbuddy/apperrors"
	"barbuddy/db"
	"barbuddy/services/friends"
)

type friendResponse struct {
	ID             string `json:"id"`
	UserID         string `json:"user_id"`
	FriendID       string `json:"friend_id"`
	FriendUsername string `json:"friend_username"`
	CreatedAt      string `json:"created_at"`
}

func toFriendResponse(f db.Friend) friendResponse {
	return friendResponse{
		ID:             f.ID.String(),
		UserID:         f.UserID.String(),
		FriendID:       f.FriendID.String(),
		FriendUsername: f.FriendUsername,
		CreatedAt:      f.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// HandleFriendAdd links the caller and the named user as friends.
func HandleFriendAdd(fsvc *friends.FriendService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := userIDFromContext(c)
		if err != nil {
			return err
		}

		var body struct {
			FriendUsername string `json:"friend_username"`
		}
		if err := c.BodyParser(&body); err != nil {
			return apperrors.NewBadRequest("Invalid request body")
		}

		friend, err := fsvc.Add(c.Context(), userID, body.FriendUsername)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(toFriendResponse(friend))
	}
}

func HandleFriendList(fsvc *friends.FriendService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := userIDFromContext(c)
		if err != nil {
			return err
		}

		items, err := fsvc.List(c.Context(), userID)
		if err != nil {
			return err
		}

		resp := make([]friendResponse, 0, len(items))
		for _, f := range items {
			resp = append(resp, toFriendResponse(f))
		}
		return c.JSON(resp)
	}
}

// HandleFriendDetails returns each friend with their training snapshot.
func HandleFriendDetails(fsvc *friends.FriendService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := userIDFromContext(c)
		if err != nil {
			return err
		}

		details, err := fsvc.ListDetails(c.Context(), userID)
		if err != nil {
			return err
		}
		return c.JSON(details)
	}
}
