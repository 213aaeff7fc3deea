package db

import (
	"context"

	"github.com/google/uuid"
)

const addFriend = `
INSERT INTO friends (id, user_id, friend_id, friend_username)
VALUES ($1, $2, $3, $4)
RETURNING id, user_id, friend_id, friend_username, created_at
`

type AddFriendParams struct {
	UserID         uuid.UUID
	FriendID       uuid.UUID
	FriendUsername string
}

func (q *Queries) AddFriend(ctx context.Context, arg AddFriendParams) (Friend, error) {
	row := q.db.QueryRowContext(ctx, addFriend, uuid.New(), arg.UserID, arg.FriendID, arg.FriendUsername)
	var f Friend
	err := row.Scan(&f.ID, &f.UserID, &f.FriendID, &f.FriendUsername, &f.CreatedAt)
	return f, err
}

const getUserFriends = `
SELECT id, user_id, friend_id, friend_username, created_at
FROM friends WHERE user_id = $1
ORDER BY friend_username ASC
`

func (q *Queries) GetUserFriends(ctx context.Context, userID uuid.UUID) ([]Friend, error) {
	rows, err := q.db.QueryContext(ctx, getUserFriends, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var friends []Friend
	for rows.Next() {
		var f Friend
		if err := rows.Scan(&f.ID, &f.UserID, &f.FriendID, &f.FriendUsername, &f.CreatedAt); err != nil {
			return nil, err
		}
		friends = append(friends, f)
	}
	return friends, rows.Err()
}

const friendshipExists = `
SELECT EXISTS(
	SELECT 1 FROM friends
	WHERE (user_id = $1 AND friend_id = $2)
	   OR (user_id = $2 AND friend_id = $1)
)
`

func (q *Queries) FriendshipExists(ctx context.Context, userID, friendID uuid.UUID) (bool, error) {
	row := q.db.QueryRowContext(ctx, friendshipExists, userID, friendID)
	var exists bool
	err := row.Scan(&exists)
	return exists, err
}
