package chat

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"

	"barbuddy/apperrors"
	"barbuddy/db"
	"barbuddy/pkg/breaker"
	"barbuddy/pkg/logger"
	"barbuddy/pkg/metrics"
	"barbuddy/server/realtime"
)

const (
	// PubSubChannel carries persisted messages between server instances.
	PubSubChannel = "chat:messages"

	ArchiveTopic     = "chat-history"
	archiveQueueSize = 1000
)

// Store is the subset of queries the chat service needs.
type Store interface {
	CreateChat(ctx context.Context, arg db.CreateChatParams) (db.Chat, error)
	GetChatHistory(ctx context.Context, userID, friendID uuid.UUID) ([]db.Chat, error)
	UserExists(ctx context.Context, id uuid.UUID) (bool, error)
}

// Delivery fans a payload out to a user's live connections.
type Delivery interface {
	SendToUser(userID uuid.UUID, payload any) int
}

// ChatService persists private messages and routes them to recipients.
// Local connections are reached through the hub; a Redis pub/sub bridge
// forwards messages published by other instances.
type ChatService struct {
	store      Store
	delivery   Delivery
	rdb        *redis.Client
	producer   *kafka.Producer
	topic      string
	instanceID string
	cb         *gobreaker.CircuitBreaker

	archiveQueue chan db.Chat
	cancel       context.CancelFunc
	wg           sync.WaitGroup
}

// Config carries the optional infrastructure for the chat service.
// Redis and Kafka may be nil; delivery then stays instance-local and
// archival is disabled.
type Config struct {
	Store    Store
	Delivery Delivery
	Redis    *redis.Client
	Producer *kafka.Producer

	// Topic overrides the default archival topic.
	Topic string
}

func NewChatService(cfg Config) *ChatService {
	ctx, cancel := context.WithCancel(context.Background())

	topic := cfg.Topic
	if topic == "" {
		topic = ArchiveTopic
	}

	cs := &ChatService{
		store:      cfg.Store,
		delivery:   cfg.Delivery,
		rdb:        cfg.Redis,
		producer:   cfg.Producer,
		topic:      topic,
		instanceID: uuid.NewString(),
		cb: breaker.New(breaker.Config{
			Name:        "postgres-chat",
			MaxRequests: 10,
			Interval:    60 * time.Second,
			Timeout:     45 * time.Second,
			Threshold:   0.6,
			MinRequests: 10,
		}),
		archiveQueue: make(chan db.Chat, archiveQueueSize),
		cancel:       cancel,
	}

	if cs.rdb != nil {
		cs.wg.Add(1)
		go cs.runBridge(ctx)
	}
	if cs.producer != nil {
		cs.wg.Add(1)
		go cs.runArchiver(ctx)
		go cs.drainDeliveryReports()
	}

	return cs
}

// bridgeEnvelope is the wire form on the Redis channel. The instance ID
// lets the bridge skip messages it already delivered locally.
type bridgeEnvelope struct {
	Origin  string  `json:"origin"`
	Message db.Chat `json:"message"`
}

// SendMessage validates participants, persists the message, and fans it
// out to both participants. Delivery is best effort once the row is
// stored; the returned message is the authoritative copy.
func (cs *ChatService) SendMessage(ctx context.Context, senderID, receiverID uuid.UUID, text string) (db.Chat, error) {
	if strings.TrimSpace(text) == "" {
		metrics.MessagesRejected.Inc()
		return db.Chat{}, apperrors.NewMessageEmpty()
	}

	if err := cs.verifyParticipants(ctx, senderID, receiverID); err != nil {
		metrics.MessagesRejected.Inc()
		return db.Chat{}, err
	}

	result, err := breaker.ExecuteCtx(ctx, cs.cb, func() (interface{}, error) {
		return cs.store.CreateChat(ctx, db.CreateChatParams{
			SenderID:   senderID,
			ReceiverID: receiverID,
			Message:    text,
		})
	})
	if err != nil {
		metrics.MessagesFailed.Inc()
		logger.WithFields(map[string]interface{}{
			"sender_id":   senderID.String(),
			"receiver_id": receiverID.String(),
			"error":       err.Error(),
		}).Error("Failed to persist chat message")
		return db.Chat{}, apperrors.NewStoreFailure("create chat", err)
	}

	msg := result.(db.Chat)
	metrics.MessagesPersisted.Inc()

	cs.deliverLocal(msg)
	cs.publish(ctx, msg)
	cs.archive(msg)

	return msg, nil
}

// GetHistory returns the full conversation between two users, oldest
// first. Any authenticated caller may read any pair's history.
func (cs *ChatService) GetHistory(ctx context.Context, userID, friendID uuid.UUID) ([]db.Chat, error) {
	result, err := breaker.ExecuteCtx(ctx, cs.cb, func() (interface{}, error) {
		return cs.store.GetChatHistory(ctx, userID, friendID)
	})
	if err != nil {
		return nil, apperrors.NewStoreFailure("get chat history", err)
	}
	return result.([]db.Chat), nil
}

func (cs *ChatService) verifyParticipants(ctx context.Context, senderID, receiverID uuid.UUID) error {
	for _, id := range []uuid.UUID{senderID, receiverID} {
		result, err := breaker.ExecuteCtx(ctx, cs.cb, func() (interface{}, error) {
			return cs.store.UserExists(ctx, id)
		})
		if err != nil {
			return apperrors.NewStoreFailure("check participant", err)
		}
		if !result.(bool) {
			return apperrors.NewUnknownParticipant(senderID.String(), receiverID.String())
		}
	}
	return nil
}

// deliverLocal pushes the message to every local connection either
// participant holds. The sender gets a copy too, so all their open
// sessions stay in sync.
func (cs *ChatService) deliverLocal(msg db.Chat) {
	push := realtime.NewMessagePush(toWireMessage(msg))

	delivered := cs.delivery.SendToUser(msg.ReceiverID, push)
	if msg.SenderID != msg.ReceiverID {
		delivered += cs.delivery.SendToUser(msg.SenderID, push)
	}
	metrics.MessagesDelivered.Add(float64(delivered))
}

// publish forwards the message to other instances over Redis. Failures
// are logged, not returned; the message is already persisted.
func (cs *ChatService) publish(ctx context.Context, msg db.Chat) {
	if cs.rdb == nil {
		return
	}

	payload, err := json.Marshal(bridgeEnvelope{Origin: cs.instanceID, Message: msg})
	if err != nil {
		return
	}

	if err := cs.rdb.Publish(ctx, PubSubChannel, payload).Err(); err != nil {
		logger.WithFields(map[string]interface{}{
			"message_id": msg.ID.String(),
			"channel":    PubSubChannel,
			"error":      err.Error(),
		}).Warn("Failed to publish message to Redis")
	}
}

// runBridge subscribes to the Redis channel and delivers messages that
// originated on other instances to local connections.
func (cs *ChatService) runBridge(ctx context.Context) {
	defer cs.wg.Done()

	pubsub := cs.rdb.Subscribe(ctx, PubSubChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case raw, ok := <-ch:
			if !ok {
				return
			}

			var env bridgeEnvelope
			if err := json.Unmarshal([]byte(raw.Payload), &env); err != nil {
				logger.WithError(err).Warn("Failed to unmarshal bridged message")
				continue
			}
			if env.Origin == cs.instanceID {
				continue
			}

			cs.deliverLocal(env.Message)

		case <-ctx.Done():
			return
		}
	}
}

// archive queues the message for Kafka. A full queue drops the message
// from the archive, never from the conversation.
func (cs *ChatService) archive(msg db.Chat) {
	if cs.producer == nil {
		return
	}

	select {
	case cs.archiveQueue <- msg:
	default:
		logger.WithField("message_id", msg.ID.String()).Warn("Archive queue full, skipping message")
	}
}

func (cs *ChatService) runArchiver(ctx context.Context) {
	defer cs.wg.Done()

	topic := cs.topic
	for {
		select {
		case msg := <-cs.archiveQueue:
			payload, err := json.Marshal(msg)
			if err != nil {
				continue
			}

			err = cs.producer.Produce(&kafka.Message{
				TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
				Key:            []byte(msg.SenderID.String()),
				Value:          payload,
			}, nil)
			if err != nil {
				logger.WithFields(map[string]interface{}{
					"message_id": msg.ID.String(),
					"error":      err.Error(),
				}).Warn("Failed to enqueue message for archival")
				continue
			}
			metrics.MessagesArchived.Inc()

		case <-ctx.Done():
			return
		}
	}
}

// drainDeliveryReports consumes producer events so failed deliveries
// surface in the logs instead of filling the event queue. It exits when
// the producer is closed.
func (cs *ChatService) drainDeliveryReports() {
	for e := range cs.producer.Events() {
		if m, ok := e.(*kafka.Message); ok && m.TopicPartition.Error != nil {
			logger.WithError(m.TopicPartition.Error).Warn("Kafka archival delivery failed")
		}
	}
}

// Close stops the bridge and archiver and flushes the producer.
func (cs *ChatService) Close() {
	cs.cancel()
	cs.wg.Wait()

	if cs.producer != nil {
		cs.producer.Flush(5000)
		cs.producer.Close()
	}
}

func toWireMessage(msg db.Chat) realtime.ChatMessage {
	return realtime.ChatMessage{
		ID:         msg.ID,
		SenderID:   msg.SenderID,
		ReceiverID: msg.ReceiverID,
		Message:    msg.Message,
		CreatedAt:  msg.CreatedAt,
	}
}
