package db

import (
	"context"

	"github.com/google/uuid"
)

const createGroup = `
INSERT INTO groups (id, name, creator_id)
VALUES ($1, $2, $3)
RETURNING id, name, creator_id, created_at
`

type CreateGroupParams struct {
	Name      string
	CreatorID uuid.UUID
}

func (q *Queries) CreateGroup(ctx context.Context, arg CreateGroupParams) (Group, error) {
	row := q.db.QueryRowContext(ctx, createGroup, uuid.New(), arg.Name, arg.CreatorID)
	var g Group
	err := row.Scan(&g.ID, &g.Name, &g.CreatorID, &g.CreatedAt)
	return g, err
}

const getGroup = `
SELECT id, name, creator_id, created_at FROM groups WHERE id = $1
`

func (q *Queries) GetGroup(ctx context.Context, id uuid.UUID) (Group, error) {
	row := q.db.QueryRowContext(ctx, getGroup, id)
	var g Group
	err := row.Scan(&g.ID, &g.Name, &g.CreatorID, &g.CreatedAt)
	return g, err
}

const getUserGroups = `
SELECT g.id, g.name, g.creator_id, g.created_at
FROM groups g
LEFT JOIN user_groups ug ON ug.group_id = g.id
WHERE ug.user_id = $1 OR g.creator_id = $1
GROUP BY g.id, g.name, g.creator_id, g.created_at
ORDER BY g.created_at DESC
`

func (q *Queries) GetUserGroups(ctx context.Context, userID uuid.UUID) ([]Group, error) {
	rows, err := q.db.QueryContext(ctx, getUserGroups, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []Group
	for rows.Next() {
		var g Group
		if err := rows.Scan(&g.ID, &g.Name, &g.CreatorID, &g.CreatedAt); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

const getGroupMembers = `
SELECT u.id, u.username
FROM user_groups ug
JOIN users u ON u.id = ug.user_id
WHERE ug.group_id = $1
ORDER BY u.username
`

type GroupMemberRow struct {
	UserID   uuid.UUID
	Username string
}

func (q *Queries) GetGroupMembers(ctx context.Context, groupID uuid.UUID) ([]GroupMemberRow, error) {
	rows, err := q.db.QueryContext(ctx, getGroupMembers, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []GroupMemberRow
	for rows.Next() {
		var m GroupMemberRow
		if err := rows.Scan(&m.UserID, &m.Username); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

const addGroupMember = `
INSERT INTO user_groups (user_id, group_id)
VALUES ($1, $2)
ON CONFLICT DO NOTHING
`

func (q *Queries) AddGroupMember(ctx context.Context, userID, groupID uuid.UUID) (bool, error) {
	result, err := q.db.ExecContext(ctx, addGroupMember, userID, groupID)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	return affected > 0, err
}

const removeGroupMember = `
DELETE FROM user_groups WHERE user_id = $1 AND group_id = $2
`

func (q *Queries) RemoveGroupMember(ctx context.Context, userID, groupID uuid.UUID) (bool, error) {
	result, err := q.db.ExecContext(ctx, removeGroupMember, userID, groupID)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	return affected > 0, err
}
