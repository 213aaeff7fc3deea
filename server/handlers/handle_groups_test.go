package handlers

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"barbuddy/apperrors"
	"barbuddy/db"
	"barbuddy/services/groups"
)

type fakeGroupStore struct {
	groups  map[uuid.UUID]db.Group
	members map[uuid.UUID]map[uuid.UUID]string
	users   map[string]db.User
}

func newFakeGroupStore() *fakeGroupStore {
	return &fakeGroupStore{
		groups:  make(map[uuid.UUID]db.Group),
		members: make(map[uuid.UUID]map[uuid.UUID]string),
		users:   make(map[string]db.User),
	}
}

func (f *fakeGroupStore) addUser(username string) db.User {
	user := db.User{ID: uuid.New(), Username: username}
	f.users[username] = user
	return user
}

func (f *fakeGroupStore) addGroup(name string, creatorID uuid.UUID) db.Group {
	group := db.Group{ID: uuid.New(), Name: name, CreatorID: creatorID}
	f.groups[group.ID] = group
	return group
}

func (f *fakeGroupStore) CreateGroup(_ context.Context, arg db.CreateGroupParams) (db.Group, error) {
	group := db.Group{ID: uuid.New(), Name: arg.Name, CreatorID: arg.CreatorID}
	f.groups[group.ID] = group
	return group, nil
}

func (f *fakeGroupStore) GetGroup(_ context.Context, id uuid.UUID) (db.Group, error) {
	group, ok := f.groups[id]
	if !ok {
		return db.Group{}, sql.ErrNoRows
	}
	return group, nil
}

func (f *fakeGroupStore) GetUserGroups(_ context.Context, userID uuid.UUID) ([]db.Group, error) {
	var out []db.Group
	for _, g := range f.groups {
		if g.CreatorID == userID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (f *fakeGroupStore) GetGroupMembers(_ context.Context, groupID uuid.UUID) ([]db.GroupMemberRow, error) {
	var out []db.GroupMemberRow
	for id, username := range f.members[groupID] {
		out = append(out, db.GroupMemberRow{UserID: id, Username: username})
	}
	return out, nil
}

func (f *fakeGroupStore) AddGroupMember(_ context.Context, userID, groupID uuid.UUID) (bool, error) {
	if f.members[groupID] == nil {
		f.members[groupID] = make(map[uuid.UUID]string)
	}
	if _, ok := f.members[groupID][userID]; ok {
		return false, nil
	}
	f.members[groupID][userID] = ""
	return true, nil
}

func (f *fakeGroupStore) RemoveGroupMember(_ context.Context, userID, groupID uuid.UUID) (bool, error) {
	if _, ok := f.members[groupID][userID]; !ok {
		return false, nil
	}
	delete(f.members[groupID], userID)
	return true, nil
}

func (f *fakeGroupStore) GetUserByUsername(_ context.Context, username string) (db.User, error) {
	user, ok := f.users[username]
	if !ok {
		return db.User{}, sql.ErrNoRows
	}
	return user, nil
}

// newGroupApp wires the group routes behind a stub that binds the
// request to the given caller, the way the auth middleware would.
func newGroupApp(store *fakeGroupStore, callerID uuid.UUID) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: apperrors.Handler(apperrors.HandlerConfig{}),
	})
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", callerID)
		c.Locals("email", "test@example.com")
		return c.Next()
	})

	gsvc := groups.NewGroupService(store)
	app.Get("/api/groups/:groupId", HandleGroupGet(gsvc))
	app.Post("/api/groups/:groupId/users", HandleGroupAddUser(gsvc))
	app.Delete("/api/groups/:groupId/users/:userId", HandleGroupRemoveUser(gsvc))
	return app
}

func TestGroupAddUserAsCreator(t *testing.T) {
	store := newFakeGroupStore()
	creator := store.addUser("alice")
	store.addUser("bob")
	group := store.addGroup("morning crew", creator.ID)

	app := newGroupApp(store, creator.ID)

	body := bytes.NewBufferString(`{"username":"bob"}`)
	req, _ := http.NewRequest(http.MethodPost, "/api/groups/"+group.ID.String()+"/users", body)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.Len(t, store.members[group.ID], 1)
}

func TestGroupAddUserNotCreator(t *testing.T) {
	store := newFakeGroupStore()
	creator := store.addUser("alice")
	store.addUser("bob")
	outsider := store.addUser("mallory")
	group := store.addGroup("morning crew", creator.ID)

	app := newGroupApp(store, outsider.ID)

	body := bytes.NewBufferString(`{"username":"bob"}`)
	req, _ := http.NewRequest(http.MethodPost, "/api/groups/"+group.ID.String()+"/users", body)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Empty(t, store.members[group.ID])
}

func TestGroupRemoveUserNotCreator(t *testing.T) {
	store := newFakeGroupStore()
	creator := store.addUser("alice")
	member := store.addUser("bob")
	group := store.addGroup("morning crew", creator.ID)
	store.members[group.ID] = map[uuid.UUID]string{member.ID: "bob"}

	app := newGroupApp(store, member.ID)

	url := "/api/groups/" + group.ID.String() + "/users/" + member.ID.String()
	req, _ := http.NewRequest(http.MethodDelete, url, nil)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Len(t, store.members[group.ID], 1)
}

func TestGroupGetDetail(t *testing.T) {
	store := newFakeGroupStore()
	creator := store.addUser("alice")
	member := store.addUser("bob")
	group := store.addGroup("morning crew", creator.ID)
	store.members[group.ID] = map[uuid.UUID]string{
		creator.ID: "alice",
		member.ID:  "bob",
	}

	app := newGroupApp(store, creator.ID)

	req, _ := http.NewRequest(http.MethodGet, "/api/groups/"+group.ID.String(), nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var detail struct {
		ID      string `json:"id"`
		Name    string `json:"name"`
		Members []struct {
			UserID   string `json:"user_id"`
			Username string `json:"username"`
		} `json:"members"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&detail))
	assert.Equal(t, group.ID.String(), detail.ID)
	assert.Equal(t, "morning crew", detail.Name)
	assert.Len(t, detail.Members, 2)
}

func TestGroupGetUnknown(t *testing.T) {
	store := newFakeGroupStore()
	caller := store.addUser("alice")
	app := newGroupApp(store, caller.ID)

	req, _ := http.NewRequest(http.MethodGet, "/api/groups/"+uuid.NewString(), nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
