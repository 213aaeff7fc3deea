package friends

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
	"barbuddy/pkg/logger"
)

// Store is the subset of queries the friend service needs.
type Store interface {
	AddFriend(ctx context.Context, arg db.AddFriendParams) (db.Friend, error)
	GetUserFriends(ctx context.Context, userID uuid.UUID) ([]db.Friend, error)
	FriendshipExists(ctx context.Context, userID, friendID uuid.UUID) (bool, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (db.User, error)
	GetUserByUsername(ctx context.Context, username string) (db.User, error)
	GetLastLift(ctx context.Context, userID uuid.UUID) (db.Lift, error)
	GetMaxLifts(ctx context.Context, userID uuid.UUID) ([]db.MaxLiftRow, error)
}

// FriendService manages friendships. Adding a friend creates the link in
// both directions so each side sees the other in their list.
type FriendService struct {
	store Store
	cb    *gobreaker.CircuitBreaker
}

func NewFriendService(store Store) *FriendService {
	return &FriendService{
		store: store,
		cb: breaker.New(breaker.Config{
			Name:        "postgres-friends",
			MaxRequests: 10,
			Interval:    60 * time.Second,
			Timeout:     45 * time.Second,
			Threshold:   0.6,
			MinRequests: 10,
		}),
	}
}

// FriendDetails pairs a friend with a snapshot of their recent training.
type FriendDetails struct {
	FriendID uuid.UUID       `json:"friend_id"`
	Username string          `json:"username"`
	LastLift *db.Lift        `json:"last_lift,omitempty"`
	MaxLifts []db.MaxLiftRow `json:"max_lifts"`
}

// Add links the user and the named friend in both directions.
func (fs *FriendService) Add(ctx context.Context, userID uuid.UUID, friendUsername string) (db.Friend, error) {
	if friendUsername == "" {
		return db.Friend{}, apperrors.NewBadRequest("Friend username required")
	}

	result, err := breaker.ExecuteCtx(ctx, fs.cb, func() (interface{}, error) {
		return fs.store.GetUserByUsername(ctx, friendUsername)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return db.Friend{}, apperrors.NewUserNotFound()
		}
		return db.Friend{}, apperrors.NewStoreFailure("get user", err)
	}
	friend := result.(db.User)

	if friend.ID == userID {
		return db.Friend{}, apperrors.NewBadRequest("Cannot add yourself as a friend")
	}

	exists, err := fs.exists(ctx, userID, friend.ID)
	if err != nil {
		return db.Friend{}, apperrors.NewStoreFailure("check friendship", err)
	}
	if exists {
		return db.Friend{}, apperrors.NewBadRequest("Already friends")
	}

	result, err = breaker.ExecuteCtx(ctx, fs.cb, func() (interface{}, error) {
		return fs.store.GetUserByID(ctx, userID)
	})
	if err != nil {
		return db.Friend{}, apperrors.NewStoreFailure("get user", err)
	}
	user := result.(db.User)

	result, err = breaker.ExecuteCtx(ctx, fs.cb, func() (interface{}, error) {
		return fs.store.AddFriend(ctx, db.AddFriendParams{
			UserID:         userID,
			FriendID:       friend.ID,
			FriendUsername: friend.Username,
		})
	})
	if err != nil {
		return db.Friend{}, apperrors.NewStoreFailure("add friend", err)
	}
	created := result.(db.Friend)

	// Reciprocal row. Failure here leaves a one-way link; log it rather
	// than unwinding the first insert.
	_, err = breaker.ExecuteCtx(ctx, fs.cb, func() (interface{}, error) {
		return fs.store.AddFriend(ctx, db.AddFriendParams{
			UserID:         friend.ID,
			FriendID:       userID,
			FriendUsername: user.Username,
		})
	})
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"user_id":   userID.String(),
			"friend_id": friend.ID.String(),
			"error":     err.Error(),
		}).Error("Failed to create reciprocal friendship")
	}

	return created, nil
}

// List returns the user's friends ordered by username.
func (fs *FriendService) List(ctx context.Context, userID uuid.UUID) ([]db.Friend, error) {
	result, err := breaker.ExecuteCtx(ctx, fs.cb, func() (interface{}, error) {
		return fs.store.GetUserFriends(ctx, userID)
	})
	if err != nil {
		return nil, apperrors.NewStoreFailure("get friends", err)
	}
	return result.([]db.Friend), nil
}

// ListDetails returns each friend with their latest lift and per-type
// maxes. Lookup failures for a single friend degrade that entry instead
// of failing the whole list.
func (fs *FriendService) ListDetails(ctx context.Context, userID uuid.UUID) ([]FriendDetails, error) {
	friends, err := fs.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	details := make([]FriendDetails, 0, len(friends))
	for _, f := range friends {
		d := FriendDetails{
			FriendID: f.FriendID,
			Username: f.FriendUsername,
			MaxLifts: []db.MaxLiftRow{},
		}

		if lift, err := fs.store.GetLastLift(ctx, f.FriendID); err == nil {
			d.LastLift = &lift
		} else if !errors.Is(err, sql.ErrNoRows) {
			logger.WithFields(map[string]interface{}{
				"friend_id": f.FriendID.String(),
				"error":     err.Error(),
			}).Warn("Failed to load friend's last lift")
		}

		if maxes, err := fs.store.GetMaxLifts(ctx, f.FriendID); err == nil && maxes != nil {
			d.MaxLifts = maxes
		}

		details = append(details, d)
	}
	return details, nil
}

func (fs *FriendService) exists(ctx context.Context, userID, friendID uuid.UUID) (bool, error) {
	result, err := breaker.ExecuteCtx(ctx, fs.cb, func() (interface{}, error) {
		return fs.store.FriendshipExists(ctx, userID, friendID)
	})
	if err != nil {
		return false, err
	}
	return result.(bool), nil
}
