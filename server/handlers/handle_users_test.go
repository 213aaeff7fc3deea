package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"barbuddy/apperrors"
	"barbuddy/db"
	"barbuddy/server/middleware/auth"
	"barbuddy/services/tokens"
	"barbuddy/services/users"
)

type fakeUserStore struct {
	usersByID map[uuid.UUID]db.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{usersByID: make(map[uuid.UUID]db.User)}
}

func (f *fakeUserStore) addUser(username, email string) db.User {
	user := db.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: "not-a-real-hash",
		CreatedAt:    time.Now(),
	}
	f.usersByID[user.ID] = user
	return user
}

func (f *fakeUserStore) CreateUser(_ context.Context, arg db.CreateUserParams) (db.User, error) {
	user := db.User{ID: uuid.New(), Username: arg.Username, Email: arg.Email, PasswordHash: arg.PasswordHash}
	f.usersByID[user.ID] = user
	return user, nil
}

func (f *fakeUserStore) GetUserByID(_ context.Context, id uuid.UUID) (db.User, error) {
	user, ok := f.usersByID[id]
	if !ok {
		return db.User{}, sql.ErrNoRows
	}
	return user, nil
}

func (f *fakeUserStore) GetUserByEmail(_ context.Context, email string) (db.User, error) {
	for _, u := range f.usersByID {
		if u.Email == email {
			return u, nil
		}
	}
	return db.User{}, sql.ErrNoRows
}

func (f *fakeUserStore) UserExistsByUsernameOrEmail(_ context.Context, _, _ string) (bool, error) {
	return false, nil
}

func newUserApp(store *fakeUserStore, tsvc *tokens.Service) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: apperrors.Handler(apperrors.HandlerConfig{}),
	})

	usvc := users.NewUserService(store, tsvc)
	authed := app.Group("/api", auth.New(auth.Config{Tokens: tsvc}))
	authed.Get("/users/verify", HandleTokenVerify())
	authed.Get("/users/profile", HandleUserProfile(usvc))
	authed.Get("/users/:friendId", HandleUserGet(usvc))
	return app
}

func TestTokenVerify(t *testing.T) {
	store := newFakeUserStore()
	user := store.addUser("alice", "alice@example.com")
	tsvc := tokens.NewService("test-secret", time.Hour)
	app := newUserApp(store, tsvc)

	token, err := tsvc.Issue(user.ID, user.Email)
	require.NoError(t, err)

	req, _ := http.NewRequest(http.MethodGet, "/api/users/verify", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestTokenVerifyInvalid(t *testing.T) {
	store := newFakeUserStore()
	tsvc := tokens.NewService("test-secret", time.Hour)
	app := newUserApp(store, tsvc)

	req, _ := http.NewRequest(http.MethodGet, "/api/users/verify", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestUserGet(t *testing.T) {
	store := newFakeUserStore()
	caller := store.addUser("alice", "alice@example.com")
	friend := store.addUser("bob", "bob@example.com")
	tsvc := tokens.NewService("test-secret", time.Hour)
	app := newUserApp(store, tsvc)

	token, err := tsvc.Issue(caller.ID, caller.Email)
	require.NoError(t, err)

	req, _ := http.NewRequest(http.MethodGet, "/api/users/"+friend.ID.String(), nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "bob", body["username"])
	assert.NotContains(t, body, "password_hash")
}

func TestUserGetUnknown(t *testing.T) {
	store := newFakeUserStore()
	caller := store.addUser("alice", "alice@example.com")
	tsvc := tokens.NewService("test-secret", time.Hour)
	app := newUserApp(store, tsvc)

	token, err := tsvc.Issue(caller.ID, caller.Email)
	require.NoError(t, err)

	req, _ := http.NewRequest(http.MethodGet, "/api/users/"+uuid.NewString(), nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
