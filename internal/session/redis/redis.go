package redis_session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/newschat-ai/newschat/internal/models"
)

const sessionKeyPrefix = "session:"

// Store persists chat history as Redis lists, one list per session.
// RPUSH keeps messages in chronological order; DEL destroys a session.
type Store struct {
	client *redis.Client
}

func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

// Conn opens a Redis connection and verifies it with a ping.
func Conn(ctx context.Context, host, port, pass string, db int, timeout time.Duration) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        fmt.Sprintf("%s:%s", host, port),
		DialTimeout: timeout,
		Password:    pass,
		DB:          db,
	})

	pong, err := client.Ping(ctx).Result()
	if err != nil {
		return nil, err
	}
	if pong != "PONG" {
		return nil, fmt.Errorf("expected PONG, got %s", pong)
	}

	return client, nil
}

func (s *Store) Append(ctx context.Context, sessionID string, msg models.Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return s.client.RPush(ctx, sessionKeyPrefix+sessionID, data).Err()
}

func (s *Store) List(ctx context.Context, sessionID string) ([]models.Message, error) {
	vals, err := s.client.LRange(ctx, sessionKeyPrefix+sessionID, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	msgs := make([]models.Message, 0, len(vals))
	for _, v := range vals {
		var msg models.Message
		if err := json.Unmarshal([]byte(v), &msg); err != nil {
			return nil, fmt.Errorf("corrupt message in session %s: %w", sessionID, err)
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

func (s *Store) Clear(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, sessionKeyPrefix+sessionID).Err()
}
