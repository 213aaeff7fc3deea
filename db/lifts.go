package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

const createLift = `
INSERT INTO lifts (id, user_id, type, weight, reps, sets, date, rpe, description)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING id, user_id, type, weight, reps, sets, date, rpe, description, created_at
`

type CreateLiftParams struct {
	UserID      uuid.UUID
	Type        string
	Weight      float64
	Reps        int32
	Sets        int32
	Date        time.Time
	Rpe         sql.NullFloat64
	Description sql.NullString
}

func (q *Queries) CreateLift(ctx context.Context, arg CreateLiftParams) (Lift, error) {
	row := q.db.QueryRowContext(ctx, createLift,
		uuid.New(), arg.UserID, arg.Type, arg.Weight, arg.Reps, arg.Sets, arg.Date, arg.Rpe, arg.Description)
	return scanLift(row)
}

const getLift = `
SELECT id, user_id, type, weight, reps, sets, date, rpe, description, created_at
FROM lifts WHERE id = $1 AND user_id = $2
`

func (q *Queries) GetLift(ctx context.Context, id, userID uuid.UUID) (Lift, error) {
	return scanLift(q.db.QueryRowContext(ctx, getLift, id, userID))
}

const getUserLifts = `
SELECT id, user_id, type, weight, reps, sets, date, rpe, description, created_at
FROM lifts WHERE user_id = $1
ORDER BY date DESC
`

func (q *Queries) GetUserLifts(ctx context.Context, userID uuid.UUID) ([]Lift, error) {
	rows, err := q.db.QueryContext(ctx, getUserLifts, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLifts(rows)
}

const getLastLift = `
SELECT id, user_id, type, weight, reps, sets, date, rpe, description, created_at
FROM lifts WHERE user_id = $1
ORDER BY date DESC
LIMIT 1
`

func (q *Queries) GetLastLift(ctx context.Context, userID uuid.UUID) (Lift, error) {
	return scanLift(q.db.QueryRowContext(ctx, getLastLift, userID))
}

const getMaxLifts = `
SELECT type, MAX(weight) AS max_weight
FROM lifts WHERE user_id = $1
GROUP BY type
`

type MaxLiftRow struct {
	Type      string
	MaxWeight float64
}

func (q *Queries) GetMaxLifts(ctx context.Context, userID uuid.UUID) ([]MaxLiftRow, error) {
	rows, err := q.db.QueryContext(ctx, getMaxLifts, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []MaxLiftRow
	for rows.Next() {
		var r MaxLiftRow
		if err := rows.Scan(&r.Type, &r.MaxWeight); err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

const updateLift = `
UPDATE lifts
SET type = $3, weight = $4, reps = $5, sets = $6, rpe = $7, description = $8
WHERE id = $1 AND user_id = $2
RETURNING id, user_id, type, weight, reps, sets, date, rpe, description, created_at
`

type UpdateLiftParams struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Type        string
	Weight      float64
	Reps        int32
	Sets        int32
	Rpe         sql.NullFloat64
	Description sql.NullString
}

func (q *Queries) UpdateLift(ctx context.Context, arg UpdateLiftParams) (Lift, error) {
	row := q.db.QueryRowContext(ctx, updateLift,
		arg.ID, arg.UserID, arg.Type, arg.Weight, arg.Reps, arg.Sets, arg.Rpe, arg.Description)
	return scanLift(row)
}

const deleteLift = `
DELETE FROM lifts WHERE id = $1 AND user_id = $2
`

func (q *Queries) DeleteLift(ctx context.Context, id, userID uuid.UUID) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteLift, id, userID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func scanLift(row *sql.Row) (Lift, error) {
	var l Lift
	err := row.Scan(&l.ID, &l.UserID, &l.Type, &l.Weight, &l.Reps, &l.Sets, &l.Date, &l.Rpe, &l.Description, &l.CreatedAt)
	return l, err
}

func scanLifts(rows *sql.Rows) ([]Lift, error) {
	var lifts []Lift
	for rows.Next() {
		var l Lift
		if err := rows.Scan(&l.ID, &l.UserID, &l.Type, &l.Weight, &l.Reps, &l.Sets, &l.Date, &l.Rpe, &l.Description, &l.CreatedAt); err != nil {
			return nil, err
		}
		lifts = append(lifts, l)
	}
	return lifts, rows.Err()
}
