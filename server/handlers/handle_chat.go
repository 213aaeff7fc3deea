package handlers

import (
	"github.com/gofiber/fiber/v2"

	"barbuddy/db"
	"barbuddy/services/chat"
)

type chatMessageResponse struct {
	ID         string `json:"id"`
	SenderID   string `json:"sender_id"`
	ReceiverID string `json:"receiver_id"`
	Message    string `json:"message"`
	CreatedAt  string `json:"created_at"`
}

func toChatMessageResponse(m db.Chat) chatMessageResponse {
	return chatMessageResponse{
		ID:         m.ID.String(),
		SenderID:   m.SenderID.String(),
		ReceiverID: m.ReceiverID.String(),
		Message:    m.Message,
		CreatedAt:  m.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// HandleChatHistory returns the conversation between the caller and the
// friend in the path, oldest message first.
func HandleChatHistory(csvc *chat.ChatService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := userIDFromContext(c)
		if err != nil {
			return err
		}

		friendID, err := parseUUIDParam(c, "friendId")
		if err != nil {
			return err
		}

		history, err := csvc.GetHistory(c.Context(), userID, friendID)
		if err != nil {
			return err
		}

		resp := make([]chatMessageResponse, 0, len(history))
		for _, m := range history {
			resp = append(resp, toChatMessageResponse(m))
		}
		return c.JSON(resp)
	}
}
