package db

import (
	"context"

	"github.com/google/uuid"
)

const createChat = `
INSERT INTO chats (id, sender_id, receiver_id, message)
VALUES ($1, $2, $3, $4)
RETURNING id, sender_id, receiver_id, message, created_at
`

type CreateChatParams struct {
	SenderID   uuid.UUID
	ReceiverID uuid.UUID
	Message    string
}

func (q *Queries) CreateChat(ctx context.Context, arg CreateChatParams) (Chat, error) {
	row := q.db.QueryRowContext(ctx, createChat, uuid.New(), arg.SenderID, arg.ReceiverID, arg.Message)
	var c Chat
	err := row.Scan(&c.ID, &c.SenderID, &c.ReceiverID, &c.Message, &c.CreatedAt)
	return c, err
}

const getChatHistory = `
SELECT id, sender_id, receiver_id, message, created_at
FROM chats
WHERE (sender_id = $1 AND receiver_id = $2)
   OR (sender_id = $2 AND receiver_id = $1)
ORDER BY created_at ASC
`

func (q *Queries) GetChatHistory(ctx context.Context, userID, friendID uuid.UUID) ([]Chat, error) {
	rows, err := q.db.QueryContext(ctx, getChatHistory, userID, friendID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chats []Chat
	for rows.Next() {
		var c Chat
		if err := rows.Scan(&c.ID, &c.SenderID, &c.ReceiverID, &c.Message, &c.CreatedAt); err != nil {
			return nil, err
		}
		chats = append(chats, c)
	}
	return chats, rows.Err()
}
