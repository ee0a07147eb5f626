package sessionstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/prushal/voicegate/domain/entities"
	"github.com/prushal/voicegate/domain/repositories"
)

// sessionTTL expires abandoned sessions so the store self-cleans.
const sessionTTL = 24 * time.Hour

// Redis is the shared SessionStore backend, used when multiple gateway
// processes must see the same history. History lives at "session:<id>",
// last-seen text at "session:<id>:last".
type Redis struct {
	client *redis.Client
}

var _ repositories.SessionStore = (*Redis)(nil)

func NewRedis(addr, password string) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &Redis{client: client}, nil
}

func historyKey(sessionID string) string {
	return "session:" + sessionID
}

func lastTextKey(sessionID string) string {
	return "session:" + sessionID + ":last"
}

func (r *Redis) History(ctx context.Context, sessionID string) ([]entities.Turn, error) {
	raw, err := r.client.Get(ctx, historyKey(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session history: %w", err)
	}

	var turns []entities.Turn
	if err := json.Unmarshal([]byte(raw), &turns); err != nil {
		return nil, fmt.Errorf("corrupt session history: %w", err)
	}
	return turns, nil
}

func (r *Redis) Append(ctx context.Context, sessionID string, turns ...entities.Turn) error {
	existing, err := r.History(ctx, sessionID)
	if err != nil {
		return err
	}

	combined := append(existing, turns...)
	if len(combined) > maxTurns {
		combined = combined[len(combined)-maxTurns:]
	}

	raw, err := json.Marshal(combined)
	if err != nil {
		return fmt.Errorf("failed to marshal session history: %w", err)
	}

	if err := r.client.Set(ctx, historyKey(sessionID), raw, sessionTTL).Err(); err != nil {
		return fmt.Errorf("failed to store session history: %w", err)
	}
	return nil
}

func (r *Redis) LastText(ctx context.Context, sessionID string) (string, error) {
	text, err := r.client.Get(ctx, lastTextKey(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get last text: %w", err)
	}
	return text, nil
}

func (r *Redis) SetLastText(ctx context.Context, sessionID string, text string) error {
	if err := r.client.Set(ctx, lastTextKey(sessionID), text, sessionTTL).Err(); err != nil {
		return fmt.Errorf("failed to set last text: %w", err)
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, historyKey(sessionID), lastTextKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}
