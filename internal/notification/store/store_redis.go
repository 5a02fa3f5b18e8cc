package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"certledger/internal/notification/models"
	"certledger/pkg/platform/sentinel"
)

const (
	notificationKeyPrefix = "certledger:notification:"
	notificationIndexKey  = "certledger:notifications:by_created"
)

// markSeenScript flips status only when it is still pending, so concurrent
// MarkSeen calls agree on a single transition.
var markSeenScript = redis.NewScript(`
if redis.call("HGET", KEYS[1], "status") == "pending" then
  redis.call("HSET", KEYS[1], "status", "seen", "seen_at", ARGV[1])
  return 1
end
return 0
`)

// RedisStore keeps one hash per item plus a sorted-set index by creation time.
type RedisStore struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func notificationKey(id string) string {
	return notificationKeyPrefix + id
}

func (s *RedisStore) Append(ctx context.Context, item *models.NotificationItem) error {
	key := notificationKey(item.ID)
	created, err := s.client.HSetNX(ctx, key, "id", item.ID).Result()
	if err != nil {
		return fmt.Errorf("append notification: %w", err)
	}
	if !created {
		return fmt.Errorf("notification %s exists: %w", item.ID, sentinel.ErrConflict)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key,
			"request_id", item.RequestID,
			"kind", string(item.Kind),
			"message", item.Message,
			"status", string(item.Status),
			"created_at", item.CreatedAt.UTC().Format(time.RFC3339Nano),
		)
		pipe.ZAdd(ctx, notificationIndexKey, redis.Z{
			Score:  float64(item.CreatedAt.UnixMilli()),
			Member: item.ID,
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("append notification: %w", err)
	}
	return nil
}

func (s *RedisStore) MarkSeen(ctx context.Context, id string, at time.Time) (bool, error) {
	n, err := markSeenScript.Run(ctx, s.client, []string{notificationKey(id)}, at.UTC().Format(time.RFC3339Nano)).Int()
	if err != nil {
		return false, fmt.Errorf("mark notification seen: %w", err)
	}
	return n == 1, nil
}

func (s *RedisStore) List(ctx context.Context, filter models.Filter) ([]*models.NotificationItem, error) {
	ids, err := s.client.ZRange(ctx, notificationIndexKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list notification ids: %w", err)
	}
	out := make([]*models.NotificationItem, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	pipe := s.client.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.HGetAll(ctx, notificationKey(id))
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("get notifications: %w", err)
	}

	for _, cmd := range cmds {
		fields, err := cmd.Result()
		// an Append interrupted between its two writes leaves no created_at
		if err != nil || fields["created_at"] == "" {
			continue
		}
		item, err := fromHash(fields)
		if err != nil {
			return nil, err
		}
		if filter.Matches(item) {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return models.Less(out[i], out[j]) })
	return out, nil
}

func fromHash(fields map[string]string) (*models.NotificationItem, error) {
	created, err := time.Parse(time.RFC3339Nano, fields["created_at"])
	if err != nil {
		return nil, fmt.Errorf("parse notification created_at: %w", err)
	}
	item := &models.NotificationItem{
		ID:        fields["id"],
		RequestID: fields["request_id"],
		Kind:      models.Kind(fields["kind"]),
		Message:   fields["message"],
		Status:    models.Status(fields["status"]),
		CreatedAt: created,
	}
	if raw := fields["seen_at"]; raw != "" {
		seen, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return nil, fmt.Errorf("parse notification seen_at: %w", err)
		}
		item.SeenAt = &seen
	}
	return item, nil
}

var _ Store = (*RedisStore)(nil)
