package db

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
)

const createProgram = `
INSERT INTO programs (id, user_id, name, workouts, is_private)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, user_id, name, workouts, is_private, created_at, updated_at
`

type CreateProgramParams struct {
	UserID    uuid.UUID
	Name      string
	Workouts  json.RawMessage
	IsPrivate bool
}

func (q *Queries) CreateProgram(ctx context.Context, arg CreateProgramParams) (Program, error) {
	row := q.db.QueryRowContext(ctx, createProgram, uuid.New(), arg.UserID, arg.Name, []byte(arg.Workouts), arg.IsPrivate)
	return scanProgram(row)
}

const getProgram = `
SELECT id, user_id, name, workouts, is_private, created_at, updated_at
FROM programs WHERE id = $1 AND user_id = $2
`

func (q *Queries) GetProgram(ctx context.Context, id, userID uuid.UUID) (Program, error) {
	return scanProgram(q.db.QueryRowContext(ctx, getProgram, id, userID))
}

const getUserPrograms = `
SELECT id, user_id, name, workouts, is_private, created_at, updated_at
FROM programs WHERE user_id = $1
ORDER BY created_at DESC
`

func (q *Queries) GetUserPrograms(ctx context.Context, userID uuid.UUID) ([]Program, error) {
	rows, err := q.db.QueryContext(ctx, getUserPrograms, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var programs []Program
	for rows.Next() {
		var p Program
		var workouts []byte
		if err := rows.Scan(&p.ID, &p.UserID, &p.Name, &workouts, &p.IsPrivate, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		p.Workouts = workouts
		programs = append(programs, p)
	}
	return programs, rows.Err()
}

const updateProgram = `
UPDATE programs
SET name = $3, workouts = $4, is_private = $5, updated_at = now()
WHERE id = $1 AND user_id = $2
RETURNING id, user_id, name, workouts, is_private, created_at, updated_at
`

type UpdateProgramParams struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Name      string
	Workouts  json.RawMessage
	IsPrivate bool
}

func (q *Queries) UpdateProgram(ctx context.Context, arg UpdateProgramParams) (Program, error) {
	row := q.db.QueryRowContext(ctx, updateProgram, arg.ID, arg.UserID, arg.Name, []byte(arg.Workouts), arg.IsPrivate)
	return scanProgram(row)
}

const deleteProgram = `
DELETE FROM programs WHERE id = $1 AND user_id = $2
`

func (q *Queries) DeleteProgram(ctx context.Context, id, userID uuid.UUID) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteProgram, id, userID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func scanProgram(row interface{ Scan(...any) error }) (Program, error) {
	var p Program
	var workouts []byte
	err := row.Scan(&p.ID, &p.UserID, &p.Name, &workouts, &p.IsPrivate, &p.CreatedAt, &p.UpdatedAt)
	p.Workouts = workouts
	return p, err
}
