package lifts

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sony/gobreaker"

	"barbuddy/apperrors"
	"barbuddy/db"
	"barbuddy/pkg/breaker"
)

// Store is the subset of queries the lift service needs.
type Store interface {
	CreateLift(ctx context.Context, arg db.CreateLiftParams) (db.Lift, error)
	GetLift(ctx context.Context, id, userID uuid.UUID) (db.Lift, error)
	GetUserLifts(ctx context.Context, userID uuid.UUID) ([]db.Lift, error)
	GetLastLift(ctx context.Context, userID uuid.UUID) (db.Lift, error)
	GetMaxLifts(ctx context.Context, userID uuid.UUID) ([]db.MaxLiftRow, error)
	UpdateLift(ctx context.Context, arg db.UpdateLiftParams) (db.Lift, error)
	DeleteLift(ctx context.Context, id, userID uuid.UUID) (int64, error)
}

// LiftService manages workout log entries.
type LiftService struct {
	store    Store
	validate *validator.Validate
	cb       *gobreaker.CircuitBreaker
}

func NewLiftService(store Store) *LiftService {
	return &LiftService{
		store:    store,
		validate: validator.New(),
		cb: breaker.New(breaker.Config{
			Name:        "postgres-lifts",
			MaxRequests: 10,
			Interval:    60 * time.Second,
			Timeout:     45 * time.Second,
			Threshold:   0.6,
			MinRequests: 10,
		}),
	}
}

type CreateParams struct {
	Type        string    `json:"type" validate:"required"`
	Weight      float64   `json:"weight" validate:"required,gt=0"`
	Reps        int32     `json:"reps" validate:"required,gt=0"`
	Sets        int32     `json:"sets" validate:"required,gt=0"`
	Date        time.Time `json:"date"`
	Rpe         *float64  `json:"rpe" validate:"omitempty,gte=1,lte=10"`
	Description *string   `json:"description"`
}

func (ls *LiftService) Create(ctx context.Context, userID uuid.UUID, params CreateParams) (db.Lift, error) {
	if err := ls.validate.Struct(params); err != nil {
		return db.Lift{}, apperrors.NewValidationError("Invalid lift data").WithInternal(err)
	}

	date := params.Date
	if date.IsZero() {
		date = time.Now()
	}

	result, err := breaker.ExecuteCtx(ctx, ls.cb, func() (interface{}, error) {
		return ls.store.CreateLift(ctx, db.CreateLiftParams{
			UserID:      userID,
			Type:        params.Type,
			Weight:      params.Weight,
			Reps:        params.Reps,
			Sets:        params.Sets,
			Date:        date,
			Rpe:         toNullFloat(params.Rpe),
			Description: toNullString(params.Description),
		})
	})
	if err != nil {
		return db.Lift{}, apperrors.NewStoreFailure("create lift", err)
	}
	return result.(db.Lift), nil
}

func (ls *LiftService) Get(ctx context.Context, id, userID uuid.UUID) (db.Lift, error) {
	result, err := breaker.ExecuteCtx(ctx, ls.cb, func() (interface{}, error) {
		return ls.store.GetLift(ctx, id, userID)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return db.Lift{}, apperrors.NewNotFound("Lift")
		}
		return db.Lift{}, apperrors.NewStoreFailure("get lift", err)
	}
	return result.(db.Lift), nil
}

// List returns the user's lifts, most recent first.
func (ls *LiftService) List(ctx context.Context, userID uuid.UUID) ([]db.Lift, error) {
	result, err := breaker.ExecuteCtx(ctx, ls.cb, func() (interface{}, error) {
		return ls.store.GetUserLifts(ctx, userID)
	})
	if err != nil {
		return nil, apperrors.NewStoreFailure("get lifts", err)
	}
	return result.([]db.Lift), nil
}

// Last returns the most recent lift, if any.
func (ls *LiftService) Last(ctx context.Context, userID uuid.UUID) (db.Lift, error) {
	result, err := breaker.ExecuteCtx(ctx, ls.cb, func() (interface{}, error) {
		return ls.store.GetLastLift(ctx, userID)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return db.Lift{}, apperrors.NewNotFound("Lift")
		}
		return db.Lift{}, apperrors.NewStoreFailure("get last lift", err)
	}
	return result.(db.Lift), nil
}

// Max returns the heaviest weight logged per lift type.
func (ls *LiftService) Max(ctx context.Context, userID uuid.UUID) ([]db.MaxLiftRow, error) {
	result, err := breaker.ExecuteCtx(ctx, ls.cb, func() (interface{}, error) {
		return ls.store.GetMaxLifts(ctx, userID)
	})
	if err != nil {
		return nil, apperrors.NewStoreFailure("get max lifts", err)
	}
	return result.([]db.MaxLiftRow), nil
}

type UpdateParams struct {
	Type        string   `json:"type" validate:"required"`
	Weight      float64  `json:"weight" validate:"required,gt=0"`
	Reps        int32    `json:"reps" validate:"required,gt=0"`
	Sets        int32    `json:"sets" validate:"required,gt=0"`
	Rpe         *float64 `json:"rpe" validate:"omitempty,gte=1,lte=10"`
	Description *string  `json:"description"`
}

func (ls *LiftService) Update(ctx context.Context, id, userID uuid.UUID, params UpdateParams) (db.Lift, error) {
	if err := ls.validate.Struct(params); err != nil {
		return db.Lift{}, apperrors.NewValidationError("Invalid lift data").WithInternal(err)
	}

	result, err := breaker.ExecuteCtx(ctx, ls.cb, func() (interface{}, error) {
		return ls.store.UpdateLift(ctx, db.UpdateLiftParams{
			ID:          id,
			UserID:      userID,
			Type:        params.Type,
			Weight:      params.Weight,
			Reps:        params.Reps,
			Sets:        params.Sets,
			Rpe:         toNullFloat(params.Rpe),
			Description: toNullString(params.Description),
		})
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return db.Lift{}, apperrors.NewNotFound("Lift")
		}
		return db.Lift{}, apperrors.NewStoreFailure("update lift", err)
	}
	return result.(db.Lift), nil
}

func (ls *LiftService) Delete(ctx context.Context, id, userID uuid.UUID) error {
	result, err := breaker.ExecuteCtx(ctx, ls.cb, func() (interface{}, error) {
		return ls.store.DeleteLift(ctx, id, userID)
	})
	if err != nil {
		return apperrors.NewStoreFailure("delete lift", err)
	}
	if result.(int64) == 0 {
		return apperrors.NewNotFound("Lift")
	}
	return nil
}

func toNullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func toNullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}
