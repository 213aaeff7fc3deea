package friends

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"barbuddy/apperrors"
	"barbuddy/db"
)

type fakeStore struct {
	users   map[uuid.UUID]db.User
	byName  map[string]db.User
	friends []db.Friend
	lifts   map[uuid.UUID][]db.Lift
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:  make(map[uuid.UUID]db.User),
		byName: make(map[string]db.User),
		lifts:  make(map[uuid.UUID][]db.Lift),
	}
}

func (f *fakeStore) addUser(username string) db.User {
	user := db.User{ID: uuid.New(), Username: username, Email: username + "@example.com"}
	f.users[user.ID] = user
	f.byName[username] = user
	return user
}

func (f *fakeStore) AddFriend(_ context.Context, arg db.AddFriendParams) (db.Friend, error) {
	friend := db.Friend{
		ID:             uuid.New(),
		UserID:         arg.UserID,
		FriendID:       arg.FriendID,
		FriendUsername: arg.FriendUsername,
		CreatedAt:      time.Now(),
	}
	f.friends = append(f.friends, friend)
	return friend, nil
}

func (f *fakeStore) GetUserFriends(_ context.Context, userID uuid.UUID) ([]db.Friend, error) {
	var result []db.Friend
	for _, fr := range f.friends {
		if fr.UserID == userID {
			result = append(result, fr)
		}
	}
	return result, nil
}

func (f *fakeStore) FriendshipExists(_ context.Context, userID, friendID uuid.UUID) (bool, error) {
	for _, fr := range f.friends {
		if (fr.UserID == userID && fr.FriendID == friendID) ||
			(fr.UserID == friendID && fr.FriendID == userID) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) GetUserByID(_ context.Context, id uuid.UUID) (db.User, error) {
	user, ok := f.users[id]
	if !ok {
		return db.User{}, sql.ErrNoRows
	}
	return user, nil
}

func (f *fakeStore) GetUserByUsername(_ context.Context, username string) (db.User, error) {
	user, ok := f.byName[username]
	if !ok {
		return db.User{}, sql.ErrNoRows
	}
	return user, nil
}

func (f *fakeStore) GetLastLift(_ context.Context, userID uuid.UUID) (db.Lift, error) {
	lifts := f.lifts[userID]
	if len(lifts) == 0 {
		return db.Lift{}, sql.ErrNoRows
	}
	return lifts[len(lifts)-1], nil
}

func (f *fakeStore) GetMaxLifts(_ context.Context, userID uuid.UUID) ([]db.MaxLiftRow, error) {
	maxes := make(map[string]float64)
	for _, l := range f.lifts[userID] {
		if l.Weight > maxes[l.Type] {
			maxes[l.Type] = l.Weight
		}
	}
	var rows []db.MaxLiftRow
	for t, w := range maxes {
		rows = append(rows, db.MaxLiftRow{Type: t, MaxWeight: w})
	}
	return rows, nil
}

func TestAddFriendCreatesMutualPair(t *testing.T) {
	store := newFakeStore()
	alice := store.addUser("alice")
	bob := store.addUser("bob")
	svc := NewFriendService(store)

	created, err := svc.Add(context.Background(), alice.ID, "bob")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, created.UserID)
	assert.Equal(t, bob.ID, created.FriendID)
	assert.Equal(t, "bob", created.FriendUsername)

	// Both sides see the friendship.
	aliceFriends, err := svc.List(context.Background(), alice.ID)
	require.NoError(t, err)
	require.Len(t, aliceFriends, 1)
	assert.Equal(t, bob.ID, aliceFriends[0].FriendID)

	bobFriends, err := svc.List(context.Background(), bob.ID)
	require.NoError(t, err)
	require.Len(t, bobFriends, 1)
	assert.Equal(t, alice.ID, bobFriends[0].FriendID)
	assert.Equal(t, "alice", bobFriends[0].FriendUsername)
}

func TestAddFriendUnknownUsername(t *testing.T) {
	store := newFakeStore()
	alice := store.addUser("alice")
	svc := NewFriendService(store)

	_, err := svc.Add(context.Background(), alice.ID, "nobody")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeUserNotFound, apperrors.FromError(err).Code)
}

func TestAddFriendSelf(t *testing.T) {
	store := newFakeStore()
	alice := store.addUser("alice")
	svc := NewFriendService(store)

	_, err := svc.Add(context.Background(), alice.ID, "alice")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeInvalidInput, apperrors.FromError(err).Code)
}

func TestAddFriendDuplicate(t *testing.T) {
	store := newFakeStore()
	alice := store.addUser("alice")
	store.addUser("bob")
	svc := NewFriendService(store)

	_, err := svc.Add(context.Background(), alice.ID, "bob")
	require.NoError(t, err)

	_, err = svc.Add(context.Background(), alice.ID, "bob")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeInvalidInput, apperrors.FromError(err).Code)
}

func TestListDetails(t *testing.T) {
	store := newFakeStore()
	alice := store.addUser("alice")
	bob := store.addUser("bob")
	store.lifts[bob.ID] = []db.Lift{
		{ID: uuid.New(), UserID: bob.ID, Type: "squat", Weight: 140, Reps: 5, Sets: 3},
		{ID: uuid.New(), UserID: bob.ID, Type: "bench", Weight: 100, Reps: 5, Sets: 3},
	}
	svc := NewFriendService(store)

	_, err := svc.Add(context.Background(), alice.ID, "bob")
	require.NoError(t, err)

	details, err := svc.ListDetails(context.Background(), alice.ID)
	require.NoError(t, err)
	require.Len(t, details, 1)

	d := details[0]
	assert.Equal(t, "bob", d.Username)
	require.NotNil(t, d.LastLift)
	assert.Equal(t, "bench", d.LastLift.Type)
	assert.Len(t, d.MaxLifts, 2)
}

func TestListDetailsFriendWithoutLifts(t *testing.T) {
	store := newFakeStore()
	alice := store.addUser("alice")
	store.addUser("bob")
	svc := NewFriendService(store)

	_, err := svc.Add(context.Background(), alice.ID, "bob")
	require.NoError(t, err)

	details, err := svc.ListDetails(context.Background(), alice.ID)
	require.NoError(t, err)
	require.Len(t, details, 1)
	assert.Nil(t, details[0].LastLift)
	assert.Empty(t, details[0].MaxLifts)
}
