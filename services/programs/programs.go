package programs

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sony/gobreaker"

	"barbuddy/apperrors"
	"barbuddy/db"
	"barbuddy/pkg/breaker"
)

// Store is the subset of queries the program service needs.
type Store interface {
	CreateProgram(ctx context.Context, arg db.CreateProgramParams) (db.Program, error)
	GetProgram(ctx context.Context, id, userID uuid.UUID) (db.Program, error)
	GetUserPrograms(ctx context.Context, userID uuid.UUID) ([]db.Program, error)
	UpdateProgram(ctx context.Context, arg db.UpdateProgramParams) (db.Program, error)
	DeleteProgram(ctx context.Context, id, userID uuid.UUID) (int64, error)
}

// ProgramService manages workout programs. Workouts are stored as an
// opaque JSON document shaped by the client.
type ProgramService struct {
	store    Store
	validate *validator.Validate
	cb       *gobreaker.CircuitBreaker
}

func NewProgramService(store Store) *ProgramService {
	return &ProgramService{
		store:    store,
		validate: validator.New(),
		cb: breaker.New(breaker.Config{
			Name:        "postgres-programs",
			MaxRequests: 10,
			Interval:    60 * time.Second,
			Timeout:     45 * time.Second,
			Threshold:   0.6,
			MinRequests: 10,
		}),
	}
}

type Params struct {
	Name      string          `json:"name" validate:"required,max=255"`
	Workouts  json.RawMessage `json:"workouts"`
	IsPrivate bool            `json:"is_private"`
}

func (ps *ProgramService) Create(ctx context.Context, userID uuid.UUID, params Params) (db.Program, error) {
	if err := ps.validate.Struct(params); err != nil {
		return db.Program{}, apperrors.NewValidationError("Invalid program data").WithInternal(err)
	}

	workouts := params.Workouts
	if len(workouts) == 0 {
		workouts = json.RawMessage("[]")
	} else if !json.Valid(workouts) {
		return db.Program{}, apperrors.NewValidationError("Workouts must be valid JSON")
	}

	result, err := breaker.ExecuteCtx(ctx, ps.cb, func() (interface{}, error) {
		return ps.store.CreateProgram(ctx, db.CreateProgramParams{
			UserID:    userID,
			Name:      params.Name,
			Workouts:  workouts,
			IsPrivate: params.IsPrivate,
		})
	})
	if err != nil {
		return db.Program{}, apperrors.NewStoreFailure("create program", err)
	}
	return result.(db.Program), nil
}

func (ps *ProgramService) Get(ctx context.Context, id, userID uuid.UUID) (db.Program, error) {
	result, err := breaker.ExecuteCtx(ctx, ps.cb, func() (interface{}, error) {
		return ps.store.GetProgram(ctx, id, userID)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return db.Program{}, apperrors.NewNotFound("Program")
		}
		return db.Program{}, apperrors.NewStoreFailure("get program", err)
	}
	return result.(db.Program), nil
}

func (ps *ProgramService) List(ctx context.Context, userID uuid.UUID) ([]db.Program, error) {
	result, err := breaker.ExecuteCtx(ctx, ps.cb, func() (interface{}, error) {
		return ps.store.GetUserPrograms(ctx, userID)
	})
	if err != nil {
		return nil, apperrors.NewStoreFailure("get programs", err)
	}
	return result.([]db.Program), nil
}

func (ps *ProgramService) Update(ctx context.Context, id, userID uuid.UUID, params Params) (db.Program, error) {
	if err := ps.validate.Struct(params); err != nil {
		return db.Program{}, apperrors.NewValidationError("Invalid program data").WithInternal(err)
	}

	workouts := params.Workouts
	if len(workouts) == 0 {
		workouts = json.RawMessage("[]")
	} else if !json.Valid(workouts) {
		return db.Program{}, apperrors.NewValidationError("Workouts must be valid JSON")
	}

	result, err := breaker.ExecuteCtx(ctx, ps.cb, func() (interface{}, error) {
		return ps.store.UpdateProgram(ctx, db.UpdateProgramParams{
			ID:        id,
			UserID:    userID,
			Name:      params.Name,
			Workouts:  workouts,
			IsPrivate: params.IsPrivate,
		})
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return db.Program{}, apperrors.NewNotFound("Program")
		}
		return db.Program{}, apperrors.NewStoreFailure("update program", err)
	}
	return result.(db.Program), nil
}

func (ps *ProgramService) Delete(ctx context.Context, id, userID uuid.UUID) error {
	result, err := breaker.ExecuteCtx(ctx, ps.cb, func() (interface{}, error) {
		return ps.store.DeleteProgram(ctx, id, userID)
	})
	if err != nil {
		return apperrors.NewStoreFailure("delete program", err)
	}
	if result.(int64) == 0 {
		return apperrors.NewNotFound("Program")
	}
	return nil
}
