package achievements

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

// Store is the subset of queries the achievement service needs.
type Store interface {
	CreateAchievement(ctx context.Context, arg db.CreateAchievementParams) (db.Achievement, error)
	GetAchievement(ctx context.Context, id uuid.UUID) (db.Achievement, error)
	ListAchievements(ctx context.Context) ([]db.Achievement, error)
	UpdateAchievement(ctx context.Context, id uuid.UUID, achievement int16) (db.Achievement, error)
	DeleteAchievement(ctx context.Context, id uuid.UUID) (int64, error)
}

// AchievementService manages milestone badges.
type AchievementService struct {
	store Store
	cb    *gobreaker.CircuitBreaker
}

func NewAchievementService(store Store) *AchievementService {
	return &AchievementService{
		store: store,
		cb: breaker.New(breaker.Config{
			Name:        "postgres-achievements",
			MaxRequests: 10,
			Interval:    60 * time.Second,
			Timeout:     45 * time.Second,
			Threshold:   0.6,
			MinRequests: 10,
		}),
	}
}

func (as *AchievementService) Create(ctx context.Context, userID uuid.UUID, achievement int16) (db.Achievement, error) {
	result, err := breaker.ExecuteCtx(ctx, as.cb, func() (interface{}, error) {
		return as.store.CreateAchievement(ctx, db.CreateAchievementParams{
			UserID:      userID,
			Achievement: achievement,
		})
	})
	if err != nil {
		return db.Achievement{}, apperrors.NewStoreFailure("create achievement", err)
	}
	return result.(db.Achievement), nil
}

func (as *AchievementService) Get(ctx context.Context, id uuid.UUID) (db.Achievement, error) {
	result, err := breaker.ExecuteCtx(ctx, as.cb, func() (interface{}, error) {
		return as.store.GetAchievement(ctx, id)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return db.Achievement{}, apperrors.NewNotFound("Achievement")
		}
		return db.Achievement{}, apperrors.NewStoreFailure("get achievement", err)
	}
	return result.(db.Achievement), nil
}

func (as *AchievementService) List(ctx context.Context) ([]db.Achievement, error) {
	result, err := breaker.ExecuteCtx(ctx, as.cb, func() (interface{}, error) {
		return as.store.ListAchievements(ctx)
	})
	if err != nil {
		return nil, apperrors.NewStoreFailure("list achievements", err)
	}
	return result.([]db.Achievement), nil
}

func (as *AchievementService) Update(ctx context.Context, id uuid.UUID, achievement int16) (db.Achievement, error) {
	result, err := breaker.ExecuteCtx(ctx, as.cb, func() (interface{}, error) {
		return as.store.UpdateAchievement(ctx, id, achievement)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return db.Achievement{}, apperrors.NewNotFound("Achievement")
		}
		return db.Achievement{}, apperrors.NewStoreFailure("update achievement", err)
	}
	return result.(db.Achievement), nil
}

func (as *AchievementService) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := breaker.ExecuteCtx(ctx, as.cb, func() (interface{}, error) {
		return as.store.DeleteAchievement(ctx, id)
	})
	if err != nil {
		return apperrors.NewStoreFailure("delete achievement", err)
	}
	if result.(int64) == 0 {
		return apperrors.NewNotFound("Achievement")
	}
	return nil
}
