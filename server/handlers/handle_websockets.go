package handlers

import (
	"context"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"barbuddy/apperrors"
	"barbuddy/pkg/logger"
	"barbuddy/server/middleware/auth"
	"barbuddy/server/realtime"
	"barbuddy/services/chat"
	"barbuddy/services/tokens"
)

// HandleWebsocketUpgrade authenticates the upgrade request. The token
// comes from the Authorization header or, for browser clients that
// cannot set headers on websocket requests, the token query parameter.
// Failed auth is rejected here, before the connection is upgraded.
func HandleWebsocketUpgrade(tsvc *tokens.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}

		token := c.Query("token")
		if token == "" {
			token = auth.FromAuthHeader(c)
		}

		identity, err := tsvc.Verify(token)
		if err != nil {
			return err
		}

		c.Locals("user_id", identity.UserID)
		c.Locals("email", identity.Email)
		c.Locals("allowed", true)
		return c.Next()
	}
}

// HandleWebsocket runs the connection after a successful upgrade:
// registers the client with the hub, then pumps frames until the
// connection drops.
func HandleWebsocket(hub *realtime.Hub, csvc *chat.ChatService, opts realtime.Options) fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		userID, ok := conn.Locals("user_id").(uuid.UUID)
		if !ok {
			conn.Close()
			return
		}
		email, _ := conn.Locals("email").(string)

		client := realtime.NewClient(userID, email, conn, hub, privateMessageHandler(csvc), opts)
		hub.Register(client)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		go client.WritePump()
		client.ReadPump(ctx)

		logger.WithField("user_id", userID.String()).Info("Websocket connection closed")
	})
}

// privateMessageHandler persists and routes a private_message frame and
// answers it with an ack carrying the same ack_id.
func privateMessageHandler(csvc *chat.ChatService) realtime.MessageHandler {
	return func(ctx context.Context, client *realtime.Client, env realtime.Envelope) {
		receiverID, err := uuid.Parse(env.ReceiverID)
		if err != nil {
			client.Enqueue(realtime.NewAckError(env.AckID, "invalid receiver_id"))
			return
		}

		msg, err := csvc.SendMessage(ctx, client.UserID, receiverID, env.Message)
		if err != nil {
			client.Enqueue(realtime.NewAckError(env.AckID, apperrors.FromError(err).Message))
			return
		}

		wire := realtime.ChatMessage{
			ID:         msg.ID,
			SenderID:   msg.SenderID,
			ReceiverID: msg.ReceiverID,
			Message:    msg.Message,
			CreatedAt:  msg.CreatedAt,
		}
		client.Enqueue(realtime.NewAck(env.AckID, &wire))
	}
}
