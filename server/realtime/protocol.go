package realtime

import (
	"time"

	"github.com/google/uuid"
)

// EventType identifies the kind of frame on the websocket.
type EventType string

const (
	EventPrivateMessage EventType = "private_message"
	EventAck            EventType = "ack"
	EventNewMessage     EventType = "new_message"
	EventError          EventType = "error"
	EventPing           EventType = "ping"
	EventPong           EventType = "pong"
)

// Envelope is the frame clients send. Only the fields relevant to the
// declared type are populated.
type Envelope struct {
	Type       EventType `json:"type"`
	AckID      string    `json:"ack_id,omitempty"`
	ReceiverID string    `json:"receiver_id,omitempty"`
	Message    string    `json:"message,omitempty"`
}

// ChatMessage is the delivered form of a persisted message.
type ChatMessage struct {
	ID         uuid.UUID `json:"id"`
	SenderID   uuid.UUID `json:"sender_id"`
	ReceiverID uuid.UUID `json:"receiver_id"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"created_at"`
}

// AckEnvelope answers a private_message frame, correlated by AckID.
type AckEnvelope struct {
	Type    EventType    `json:"type"`
	AckID   string       `json:"ack_id"`
	Success bool         `json:"success"`
	Error   string       `json:"error,omitempty"`
	Message *ChatMessage `json:"message,omitempty"`
}

// NewMessageEnvelope pushes a persisted message to a participant.
type NewMessageEnvelope struct {
	Type    EventType   `json:"type"`
	Message ChatMessage `json:"message"`
}

// ErrorEnvelope reports a protocol-level problem on the connection.
type ErrorEnvelope struct {
	Type    EventType      `json:"type"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// PongEnvelope answers an application-level ping frame.
type PongEnvelope struct {
	Type      EventType `json:"type"`
	Timestamp int64     `json:"timestamp"`
}

func NewAck(ackID string, msg *ChatMessage) AckEnvelope {
	return AckEnvelope{Type: EventAck, AckID: ackID, Success: true, Message: msg}
}

func NewAckError(ackID, errMsg string) AckEnvelope {
	return AckEnvelope{Type: EventAck, AckID: ackID, Success: false, Error: errMsg}
}

func NewMessagePush(msg ChatMessage) NewMessageEnvelope {
	return NewMessageEnvelope{Type: EventNewMessage, Message: msg}
}

func NewError(message string) ErrorEnvelope {
	return ErrorEnvelope{Type: EventError, Message: message}
}
