package db

import (
	"context"

	"github.com/google/uuid"
)

const createUser = `
INSERT INTO users (id, username, email, password_hash)
VALUES ($1, $2, $3, $4)
RETURNING id, username, email, password_hash, day_count, created_at, updated_at
`

type CreateUserParams struct {
	Username     string
	Email        string
	PasswordHash string
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	row := q.db.QueryRowContext(ctx, createUser, uuid.New(), arg.Username, arg.Email, arg.PasswordHash)
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.DayCount, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

const getUserByID = `
SELECT id, username, email, password_hash, day_count, created_at, updated_at
FROM users WHERE id = $1
`

func (q *Queries) GetUserByID(ctx context.Context, id uuid.UUID) (User, error) {
	row := q.db.QueryRowContext(ctx, getUserByID, id)
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.DayCount, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

const getUserByEmail = `
SELECT id, username, email, password_hash, day_count, created_at, updated_at
FROM users WHERE email = $1
`

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row := q.db.QueryRowContext(ctx, getUserByEmail, email)
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.DayCount, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

const getUserByUsername = `
SELECT id, username, email, password_hash, day_count, created_at, updated_at
FROM users WHERE username = $1
`

func (q *Queries) GetUserByUsername(ctx context.Context, username string) (User, error) {
	row := q.db.QueryRowContext(ctx, getUserByUsername, username)
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.DayCount, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

const userExistsByUsernameOrEmail = `
SELECT EXISTS(SELECT 1 FROM users WHERE username = $1 OR email = $2)
`

func (q *Queries) UserExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	row := q.db.QueryRowContext(ctx, userExistsByUsernameOrEmail, username, email)
	var exists bool
	err := row.Scan(&exists)
	return exists, err
}

const userExists = `
SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)
`

func (q *Queries) UserExists(ctx context.Context, id uuid.UUID) (bool, error) {
	row := q.db.QueryRowContext(ctx, userExists, id)
	var exists bool
	err := row.Scan(&exists)
	return exists, err
}
