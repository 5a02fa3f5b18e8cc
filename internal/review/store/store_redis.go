package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"certledger/internal/review/models"
	"certledger/pkg/platform/sentinel"
)

const (
	requestKeyPrefix = "certledger:request:"
	requestIndexKey  = "certledger:requests:by_submitted"
	slotKeyPrefix    = "certledger:request:active:"
)

// RedisStore keeps each request as a JSON string, a sorted-set index scored
// by submission time, and one slot key per active (wallet, course) pair.
type RedisStore struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func requestKey(id string) string {
	return requestKeyPrefix + id
}

func slotKey(req *models.MintRequest) string {
	return slotKeyPrefix + req.RecipientWallet + ":" + req.Course.ID
}

func (s *RedisStore) Create(ctx context.Context, req *models.MintRequest) error {
	if req == nil {
		return fmt.Errorf("mint request is required")
	}
	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal mint request: %w", err)
	}
	key := requestKey(req.RequestID)
	slot := slotKey(req)

	err = s.client.Watch(ctx, func(tx *redis.Tx) error {
		exists, err := tx.Exists(ctx, key, slot).Result()
		if err != nil {
			return fmt.Errorf("check request slot: %w", err)
		}
		if exists > 0 {
			return fmt.Errorf("request or slot taken: %w", sentinel.ErrConflict)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			if req.Status.HoldsSlot() {
				pipe.Set(ctx, slot, req.RequestID, 0)
			}
			pipe.ZAdd(ctx, requestIndexKey, redis.Z{
				Score:  float64(req.SubmittedAt.UnixMilli()),
				Member: req.RequestID,
			})
			return nil
		})
		return err
	}, key, slot)
	if errors.Is(err, redis.TxFailedErr) {
		return fmt.Errorf("create mint request: %w", sentinel.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("create mint request: %w", err)
	}
	return nil
}

func (s *RedisStore) FindByID(ctx context.Context, requestID string) (*models.MintRequest, error) {
	data, err := s.client.Get(ctx, requestKey(requestID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("request not found: %w", sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find mint request: %w", err)
	}
	return decodeDocument(data)
}

func (s *RedisStore) List(ctx context.Context, filter models.ListFilter) ([]*models.MintRequest, error) {
	max := "+inf"
	if !filter.SubmittedBefore.IsZero() {
		max = "(" + strconv.FormatInt(filter.SubmittedBefore.UnixMilli(), 10)
	}
	ids, err := s.client.ZRangeByScore(ctx, requestIndexKey, &redis.ZRangeBy{Min: "-inf", Max: max}).Result()
	if err != nil {
		return nil, fmt.Errorf("list request ids: %w", err)
	}
	out := make([]*models.MintRequest, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	pipe := s.client.Pipeline()
	cmds := make([]*redis.StringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.Get(ctx, requestKey(id))
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("get mint requests: %w", err)
	}

	for _, cmd := range cmds {
		data, err := cmd.Bytes()
		if err != nil {
			continue
		}
		req, err := decodeDocument(data)
		if err != nil {
			return nil, err
		}
		if !filter.Matches(req) {
			continue
		}
		out = append(out, req)
	}
	// scores have millisecond precision; restore the exact order
	sortRequests(out)
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// Execute runs under WATCH on the request key and, once known, its slot key.
func (s *RedisStore) Execute(ctx context.Context, requestID string, validate ValidateFunc, mutate MutateFunc) (*models.MintRequest, error) {
	key := requestKey(requestID)
	var result *models.MintRequest

	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return fmt.Errorf("request not found: %w", sentinel.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("get mint request for execute: %w", err)
		}
		req, err := decodeDocument(data)
		if err != nil {
			return err
		}
		slot := slotKey(req)
		if err := tx.Watch(ctx, slot).Err(); err != nil {
			return fmt.Errorf("watch request slot: %w", err)
		}

		if err := validate(req); err != nil {
			return err
		}
		wasHolding := req.Status.HoldsSlot()
		mutate(req)
		req.Version++

		updated, err := json.Marshal(req)
		if err != nil {
			return fmt.Errorf("marshal mint request: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, updated, 0)
			if wasHolding && !req.Status.HoldsSlot() {
				pipe.Del(ctx, slot)
			}
			return nil
		})
		if err != nil {
			return err
		}
		result = req
		return nil
	}, key)

	if errors.Is(err, redis.TxFailedErr) {
		return nil, fmt.Errorf("request %s changed concurrently: %w", requestID, sentinel.ErrConflict)
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

var _ Store = (*RedisStore)(nil)
