package users

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"golang.org/x/crypto/bcrypt"

	"barbuddy/apperrors"
	"barbuddy/db"
	"barbuddy/pkg/breaker"
	"barbuddy/pkg/logger"
	"barbuddy/services/tokens"
)

// Store is the subset of queries the user service needs.
type Store interface {
	CreateUser(ctx context.Context, arg db.CreateUserParams) (db.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (db.User, error)
	GetUserByEmail(ctx context.Context, email string) (db.User, error)
	UserExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
}

// UserService handles registration, login and profile lookups.
type UserService struct {
	store    Store
	tokens   *tokens.Service
	validate *validator.Validate
	cb       *gobreaker.CircuitBreaker
}

func NewUserService(store Store, tokens *tokens.Service) *UserService {
	return &UserService{
		store:    store,
		tokens:   tokens,
		validate: validator.New(),
		cb: breaker.New(breaker.Config{
			Name:        "postgres-users",
			MaxRequests: 10,
			Interval:    60 * time.Second,
			Timeout:     45 * time.Second,
			Threshold:   0.6,
			MinRequests: 10,
		}),
	}
}

type RegisterParams struct {
	Username string `json:"username" validate:"required,min=3,max=255"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// Register creates a new account and returns the user with a signed token.
func (us *UserService) Register(ctx context.Context, params RegisterParams) (db.User, string, error) {
	if err := us.validate.Struct(params); err != nil {
		return db.User{}, "", apperrors.NewValidationError("Invalid registration data").WithInternal(err)
	}

	exists, err := us.existsByUsernameOrEmail(ctx, params.Username, params.Email)
	if err != nil {
		return db.User{}, "", apperrors.NewStoreFailure("check user", err)
	}
	if exists {
		return db.User{}, "", apperrors.NewUserExists()
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
	if err != nil {
		return db.User{}, "", apperrors.NewInternalError("").WithInternal(err)
	}

	result, err := breaker.ExecuteCtx(ctx, us.cb, func() (interface{}, error) {
		return us.store.CreateUser(ctx, db.CreateUserParams{
			Username:     params.Username,
			Email:        params.Email,
			PasswordHash: string(hash),
		})
	})
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"username": params.Username,
			"error":    err.Error(),
		}).Error("Failed to create user")
		return db.User{}, "", apperrors.NewStoreFailure("create user", err)
	}

	user := result.(db.User)

	token, err := us.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return db.User{}, "", apperrors.NewInternalError("").WithInternal(err)
	}

	return user, token, nil
}

type LoginParams struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login verifies credentials and returns the user with a signed token.
// Unknown email and wrong password are indistinguishable to the caller.
func (us *UserService) Login(ctx context.Context, params LoginParams) (db.User, string, error) {
	if err := us.validate.Struct(params); err != nil {
		return db.User{}, "", apperrors.NewValidationError("Invalid login data").WithInternal(err)
	}

	result, err := breaker.ExecuteCtx(ctx, us.cb, func() (interface{}, error) {
		return us.store.GetUserByEmail(ctx, params.Email)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return db.User{}, "", apperrors.NewInvalidLogin()
		}
		return db.User{}, "", apperrors.NewStoreFailure("get user", err)
	}

	user := result.(db.User)

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(params.Password)); err != nil {
		return db.User{}, "", apperrors.NewInvalidLogin()
	}

	token, err := us.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return db.User{}, "", apperrors.NewInternalError("").WithInternal(err)
	}

	return user, token, nil
}

// GetProfile returns the user identified by id.
func (us *UserService) GetProfile(ctx context.Context, id uuid.UUID) (db.User, error) {
	result, err := breaker.ExecuteCtx(ctx, us.cb, func() (interface{}, error) {
		return us.store.GetUserByID(ctx, id)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return db.User{}, apperrors.NewUserNotFound()
		}
		return db.User{}, apperrors.NewStoreFailure("get user", err)
	}
	return result.(db.User), nil
}

func (us *UserService) existsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	result, err := breaker.ExecuteCtx(ctx, us.cb, func() (interface{}, error) {
		return us.store.UserExistsByUsernameOrEmail(ctx, username, email)
	})
	if err != nil {
		return false, err
	}
	return result.(bool), nil
}
