package chat

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"barbuddy/apperrors"
	"barbuddy/db"
	"barbuddy/server/realtime"
)

type fakeStore struct {
	mu        sync.Mutex
	users     map[uuid.UUID]bool
	chats     []db.Chat
	createErr error
}

func newFakeStore(userIDs ...uuid.UUID) *fakeStore {
	users := make(map[uuid.UUID]bool)
	for _, id := range userIDs {
		users[id] = true
	}
	return &fakeStore{users: users}
}

func (f *fakeStore) CreateChat(_ context.Context, arg db.CreateChatParams) (db.Chat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createErr != nil {
		return db.Chat{}, f.createErr
	}
	chat := db.Chat{
		ID:         uuid.New(),
		SenderID:   arg.SenderID,
		ReceiverID: arg.ReceiverID,
		Message:    arg.Message,
		CreatedAt:  time.Now(),
	}
	f.chats = append(f.chats, chat)
	return chat, nil
}

func (f *fakeStore) GetChatHistory(_ context.Context, userID, friendID uuid.UUID) ([]db.Chat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var history []db.Chat
	for _, c := range f.chats {
		if (c.SenderID == userID && c.ReceiverID == friendID) ||
			(c.SenderID == friendID && c.ReceiverID == userID) {
			history = append(history, c)
		}
	}
	return history, nil
}

func (f *fakeStore) UserExists(_ context.Context, id uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.users[id], nil
}

type fakeDelivery struct {
	mu       sync.Mutex
	payloads map[uuid.UUID][]any
	online   map[uuid.UUID]int
}

func newFakeDelivery(online map[uuid.UUID]int) *fakeDelivery {
	return &fakeDelivery{
		payloads: make(map[uuid.UUID][]any),
		online:   online,
	}
}

func (f *fakeDelivery) SendToUser(userID uuid.UUID, payload any) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	conns := f.online[userID]
	if conns > 0 {
		f.payloads[userID] = append(f.payloads[userID], payload)
	}
	return conns
}

func (f *fakeDelivery) sentTo(userID uuid.UUID) []any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.payloads[userID]
}

func newTestService(store Store, delivery Delivery) *ChatService {
	return NewChatService(Config{Store: store, Delivery: delivery})
}

func TestSendMessage(t *testing.T) {
	sender := uuid.New()
	receiver := uuid.New()
	store := newFakeStore(sender, receiver)
	delivery := newFakeDelivery(map[uuid.UUID]int{sender: 1, receiver: 1})
	svc := newTestService(store, delivery)
	defer svc.Close()

	msg, err := svc.SendMessage(context.Background(), sender, receiver, "hey, spot me?")
	require.NoError(t, err)
	assert.Equal(t, sender, msg.SenderID)
	assert.Equal(t, receiver, msg.ReceiverID)
	assert.Equal(t, "hey, spot me?", msg.Message)
	assert.NotEqual(t, uuid.Nil, msg.ID)

	// Both participants get a copy.
	require.Len(t, delivery.sentTo(receiver), 1)
	require.Len(t, delivery.sentTo(sender), 1)

	push, ok := delivery.sentTo(receiver)[0].(realtime.NewMessageEnvelope)
	require.True(t, ok)
	assert.Equal(t, realtime.EventNewMessage, push.Type)
	assert.Equal(t, msg.ID, push.Message.ID)
}

func TestSendMessageEmpty(t *testing.T) {
	sender := uuid.New()
	receiver := uuid.New()
	svc := newTestService(newFakeStore(sender, receiver), newFakeDelivery(nil))
	defer svc.Close()

	for _, text := range []string{"", "   ", "\n\t"} {
		_, err := svc.SendMessage(context.Background(), sender, receiver, text)
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeMessageEmpty, apperrors.FromError(err).Code)
	}
}

func TestSendMessageUnknownReceiver(t *testing.T) {
	sender := uuid.New()
	store := newFakeStore(sender)
	svc := newTestService(store, newFakeDelivery(nil))
	defer svc.Close()

	_, err := svc.SendMessage(context.Background(), sender, uuid.New(), "anyone there?")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeUnknownParticipant, apperrors.FromError(err).Code)
	assert.Empty(t, store.chats)
}

func TestSendMessageUnknownSender(t *testing.T) {
	receiver := uuid.New()
	svc := newTestService(newFakeStore(receiver), newFakeDelivery(nil))
	defer svc.Close()

	_, err := svc.SendMessage(context.Background(), uuid.New(), receiver, "hello")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeUnknownParticipant, apperrors.FromError(err).Code)
}

func TestSendMessageStoreFailure(t *testing.T) {
	sender := uuid.New()
	receiver := uuid.New()
	store := newFakeStore(sender, receiver)
	store.createErr = errors.New("connection refused")
	delivery := newFakeDelivery(map[uuid.UUID]int{receiver: 1})
	svc := newTestService(store, delivery)
	defer svc.Close()

	_, err := svc.SendMessage(context.Background(), sender, receiver, "hello")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeStoreFailure, apperrors.FromError(err).Code)

	// Nothing is delivered when persistence fails.
	assert.Empty(t, delivery.sentTo(receiver))
}

func TestSendMessageOfflineReceiver(t *testing.T) {
	sender := uuid.New()
	receiver := uuid.New()
	store := newFakeStore(sender, receiver)
	delivery := newFakeDelivery(map[uuid.UUID]int{sender: 1})
	svc := newTestService(store, delivery)
	defer svc.Close()

	msg, err := svc.SendMessage(context.Background(), sender, receiver, "see you at the gym")
	require.NoError(t, err)

	// Message is persisted even though the receiver is offline.
	history, err := svc.GetHistory(context.Background(), sender, receiver)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, msg.ID, history[0].ID)
}

func TestSendMessageToSelf(t *testing.T) {
	user := uuid.New()
	store := newFakeStore(user)
	delivery := newFakeDelivery(map[uuid.UUID]int{user: 1})
	svc := newTestService(store, delivery)
	defer svc.Close()

	_, err := svc.SendMessage(context.Background(), user, user, "note to self")
	require.NoError(t, err)

	// Exactly one copy, not two.
	assert.Len(t, delivery.sentTo(user), 1)
}

func TestGetHistoryBidirectional(t *testing.T) {
	alice := uuid.New()
	bob := uuid.New()
	store := newFakeStore(alice, bob)
	svc := newTestService(store, newFakeDelivery(nil))
	defer svc.Close()

	_, err := svc.SendMessage(context.Background(), alice, bob, "first")
	require.NoError(t, err)
	_, err = svc.SendMessage(context.Background(), bob, alice, "second")
	require.NoError(t, err)

	history, err := svc.GetHistory(context.Background(), alice, bob)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "first", history[0].Message)
	assert.Equal(t, "second", history[1].Message)

	// Same conversation from the other side.
	mirrored, err := svc.GetHistory(context.Background(), bob, alice)
	require.NoError(t, err)
	assert.Equal(t, history, mirrored)
}

func TestGetHistoryEmpty(t *testing.T) {
	svc := newTestService(newFakeStore(), newFakeDelivery(nil))
	defer svc.Close()

	history, err := svc.GetHistory(context.Background(), uuid.New(), uuid.New())
	require.NoError(t, err)
	assert.Empty(t, history)
}
