package groups

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"

	"barbuddy/apperrors"
	"barbuddy/db"
	"barbuddy/pkg/breaker"
)

// Store is the subset of queries the group service needs.
type Store interface {
	CreateGroup(ctx context.Context, arg db.CreateGroupParams) (db.Group, error)
	GetGroup(ctx context.Context, id uuid.UUID) (db.Group, error)
	GetUserGroups(ctx context.Context, userID uuid.UUID) ([]db.Group, error)
	GetGroupMembers(ctx context.Context, groupID uuid.UUID) ([]db.GroupMemberRow, error)
	AddGroupMember(ctx context.Context, userID, groupID uuid.UUID) (bool, error)
	RemoveGroupMember(ctx context.Context, userID, groupID uuid.UUID) (bool, error)
	GetUserByUsername(ctx context.Context, username string) (db.User, error)
}

// GroupDetail is a group together with its current member list.
type GroupDetail struct {
	Group   db.Group
	Members []db.GroupMemberRow
}

// GroupService manages training groups and their membership.
type GroupService struct {
	store Store
	cb    *gobreaker.CircuitBreaker
}

func NewGroupService(store Store) *GroupService {
	return &GroupService{
		store: store,
		cb: breaker.New(breaker.Config{
			Name:        "postgres-groups",
			MaxRequests: 10,
			Interval:    60 * time.Second,
			Timeout:     45 * time.Second,
			Threshold:   0.6,
			MinRequests: 10,
		}),
	}
}

// Create makes a new group with the caller as creator and first member.
func (gs *GroupService) Create(ctx context.Context, creatorID uuid.UUID, name string) (db.Group, error) {
	if name == "" {
		return db.Group{}, apperrors.NewBadRequest("Group name required")
	}

	result, err := breaker.ExecuteCtx(ctx, gs.cb, func() (interface{}, error) {
		return gs.store.CreateGroup(ctx, db.CreateGroupParams{
			Name:      name,
			CreatorID: creatorID,
		})
	})
	if err != nil {
		return db.Group{}, apperrors.NewStoreFailure("create group", err)
	}
	group := result.(db.Group)

	if _, err := gs.addMember(ctx, creatorID, group.ID); err != nil {
		return db.Group{}, apperrors.NewStoreFailure("add creator to group", err)
	}

	return group, nil
}

// List returns the groups the user belongs to or created.
func (gs *GroupService) List(ctx context.Context, userID uuid.UUID) ([]db.Group, error) {
	result, err := breaker.ExecuteCtx(ctx, gs.cb, func() (interface{}, error) {
		return gs.store.GetUserGroups(ctx, userID)
	})
	if err != nil {
		return nil, apperrors.NewStoreFailure("get groups", err)
	}
	return result.([]db.Group), nil
}

// Detail returns a group with its member list.
func (gs *GroupService) Detail(ctx context.Context, groupID uuid.UUID) (GroupDetail, error) {
	group, err := gs.getGroup(ctx, groupID)
	if err != nil {
		return GroupDetail{}, err
	}

	result, err := breaker.ExecuteCtx(ctx, gs.cb, func() (interface{}, error) {
		return gs.store.GetGroupMembers(ctx, groupID)
	})
	if err != nil {
		return GroupDetail{}, apperrors.NewStoreFailure("get group members", err)
	}

	return GroupDetail{Group: group, Members: result.([]db.GroupMemberRow)}, nil
}

// AddMember adds the named user to a group. Only the group's creator
// may add members. Adding an existing member is a no-op.
func (gs *GroupService) AddMember(ctx context.Context, callerID, groupID uuid.UUID, username string) error {
	if username == "" {
		return apperrors.NewBadRequest("Username required")
	}

	group, err := gs.getGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if group.CreatorID != callerID {
		return apperrors.NewForbidden("Only the group creator can add members")
	}

	result, err := breaker.ExecuteCtx(ctx, gs.cb, func() (interface{}, error) {
		return gs.store.GetUserByUsername(ctx, username)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.NewUserNotFound()
		}
		return apperrors.NewStoreFailure("get user", err)
	}
	user := result.(db.User)

	if _, err := gs.addMember(ctx, user.ID, groupID); err != nil {
		return apperrors.NewStoreFailure("add group member", err)
	}
	return nil
}

// RemoveMember removes a member from a group. Only the group's creator
// may remove members.
func (gs *GroupService) RemoveMember(ctx context.Context, callerID, groupID, userID uuid.UUID) error {
	group, err := gs.getGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if group.CreatorID != callerID {
		return apperrors.NewForbidden("Only the group creator can remove members")
	}

	result, err := breaker.ExecuteCtx(ctx, gs.cb, func() (interface{}, error) {
		return gs.store.RemoveGroupMember(ctx, userID, groupID)
	})
	if err != nil {
		return apperrors.NewStoreFailure("remove group member", err)
	}
	if !result.(bool) {
		return apperrors.NewNotFound("Group member")
	}
	return nil
}

func (gs *GroupService) getGroup(ctx context.Context, groupID uuid.UUID) (db.Group, error) {
	result, err := breaker.ExecuteCtx(ctx, gs.cb, func() (interface{}, error) {
		return gs.store.GetGroup(ctx, groupID)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return db.Group{}, apperrors.NewNotFound("Group")
		}
		return db.Group{}, apperrors.NewStoreFailure("get group", err)
	}
	return result.(db.Group), nil
}

func (gs *GroupService) addMember(ctx context.Context, userID, groupID uuid.UUID) (bool, error) {
	result, err := breaker.ExecuteCtx(ctx, gs.cb, func() (interface{}, error) {
		return gs.store.AddGroupMember(ctx, userID, groupID)
	})
	if err != nil {
		return false, err
	}
	return result.(bool), nil
}
