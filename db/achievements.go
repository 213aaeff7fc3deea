package db

import (
	"context"

	"github.com/google/uuid"
)

const createAchievement = `
INSERT INTO achievements (id, user_id, achievement)
VALUES ($1, $2, $3)
RETURNING id, user_id, achievement, created_at
`

type CreateAchievementParams struct {
	UserID      uuid.UUID
	Achievement int16
}

func (q *Queries) CreateAchievement(ctx context.Context, arg CreateAchievementParams) (Achievement, error) {
	row := q.db.QueryRowContext(ctx, createAchievement, uuid.New(), arg.UserID, arg.Achievement)
	var a Achievement
	err := row.Scan(&a.ID, &a.UserID, &a.Achievement, &a.CreatedAt)
	return a, err
}

const getAchievement = `
SELECT id, user_id, achievement, created_at FROM achievements WHERE id = $1
`

func (q *Queries) GetAchievement(ctx context.Context, id uuid.UUID) (Achievement, error) {
	row := q.db.QueryRowContext(ctx, getAchievement, id)
	var a Achievement
	err := row.Scan(&a.ID, &a.UserID, &a.Achievement, &a.CreatedAt)
	return a, err
}

const listAchievements = `
SELECT id, user_id, achievement, created_at FROM achievements
ORDER BY created_at DESC
`

func (q *Queries) ListAchievements(ctx context.Context) ([]Achievement, error) {
	rows, err := q.db.QueryContext(ctx, listAchievements)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var achievements []Achievement
	for rows.Next() {
		var a Achievement
		if err := rows.Scan(&a.ID, &a.UserID, &a.Achievement, &a.CreatedAt); err != nil {
			return nil, err
		}
		achievements = append(achievements, a)
	}
	return achievements, rows.Err()
}

const updateAchievement = `
UPDATE achievements SET achievement = $2 WHERE id = $1
RETURNING id, user_id, achievement, created_at
`

func (q *Queries) UpdateAchievement(ctx context.Context, id uuid.UUID, achievement int16) (Achievement, error) {
	row := q.db.QueryRowContext(ctx, updateAchievement, id, achievement)
	var a Achievement
	err := row.Scan(&a.ID, &a.UserID, &a.Achievement, &a.CreatedAt)
	return a, err
}

const deleteAchievement = `
DELETE FROM achievements WHERE id = $1
`

func (q *Queries) DeleteAchievement(ctx context.Context, id uuid.UUID) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteAchievement, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
