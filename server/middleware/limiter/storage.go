package limiter

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Storage stores and retrieves token buckets by key.
type Storage interface {
	Get(key string) (*TokenBucket, error)
	Set(key string, bucket *TokenBucket) error
	Delete(key string) error
	Reset() error
}

type InMemoryStorage struct {
	buckets map[string]*TokenBucket
	mu      sync.RWMutex
}

func NewInMemoryStorage() *InMemoryStorage {
	return &InMemoryStorage{
		buckets: make(map[string]*TokenBucket),
	}
}

func (s *InMemoryStorage) Get(key string) (*TokenBucket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.buckets[key], nil
}

func (s *InMemoryStorage) Set(key string, bucket *TokenBucket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buckets[key] = bucket
	return nil
}

func (s *InMemoryStorage) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.buckets, key)
	return nil
}

func (s *InMemoryStorage) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buckets = make(map[string]*TokenBucket)
	return nil
}

// RedisStorage shares buckets between instances. Bucket state is stored
// as JSON under a ratelimit: prefix with a TTL.
type RedisStorage struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStorage(client *redis.Client, ttl time.Duration) *RedisStorage {
	return &RedisStorage{client: client, ttl: ttl}
}

func (s *RedisStorage) Get(key string) (*TokenBucket, error) {
	data, err := s.client.Get(context.Background(), "ratelimit:"+key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var bucket TokenBucket
	if err := json.Unmarshal(data, &bucket); err != nil {
		return nil, err
	}
	return &bucket, nil
}

func (s *RedisStorage) Set(key string, bucket *TokenBucket) error {
	bucket.mu.Lock()
	data, err := json.Marshal(bucket)
	bucket.mu.Unlock()
	if err != nil {
		return err
	}
	return s.client.Set(context.Background(), "ratelimit:"+key, data, s.ttl).Err()
}

func (s *RedisStorage) Delete(key string) error {
	return s.client.Del(context.Background(), "ratelimit:"+key).Err()
}

func (s *RedisStorage) Reset() error {
	iter := s.client.Scan(context.Background(), 0, "ratelimit:*", 0).Iterator()
	for iter.Next(context.Background()) {
		if err := s.client.Del(context.Background(), iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}
