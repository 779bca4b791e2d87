package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"energydash/backend/services/usage-service/internal/models"
)

const scanBatch = 200

// RedisStore keeps entries as JSON strings under usage:<user>:<entry>.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore returns redis-backed store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Append stores the entry unless its key already exists.
func (s *RedisStore) Append(ctx context.Context, entry *models.UsageEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	created, err := s.client.SetNX(ctx, redisEntryKey(entry.UserID, entry.ID), data, 0).Result()
	if err != nil {
		return err
	}
	if !created {
		return fmt.Errorf("%w: %s", models.ErrDuplicateEntry, entry.ID)
	}
	return nil
}

// ListByUser scans the user's key prefix and loads every entry. SCAN may report a key more
// than once, so keys are deduplicated before loading.
func (s *RedisStore) ListByUser(ctx context.Context, userID string) ([]models.UsageEntry, error) {
	var keys []string
	seen := make(map[string]struct{})
	iter := s.client.Scan(ctx, 0, redisEntryPattern(userID), scanBatch).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, nil
	}

	raws := make([][]byte, 0, len(keys))
	for start := 0; start < len(keys); start += scanBatch {
		end := min(start+scanBatch, len(keys))
		values, err := s.client.MGet(ctx, keys[start:end]...).Result()
		if err != nil {
			return nil, err
		}
		for _, v := range values {
			str, ok := v.(string)
			if !ok {
				continue
			}
			raws = append(raws, []byte(str))
		}
	}
	return decodeEntries(userID, raws)
}

// GetGoal loads the user's goal.
func (s *RedisStore) GetGoal(ctx context.Context, userID string) (*models.EnergyGoal, error) {
	var goal models.EnergyGoal
	if err := s.getJSON(ctx, redisSettingsKey(goalNamespace, userID), &goal); err != nil {
		return nil, err
	}
	return &goal, nil
}

// PutGoal replaces the user's goal.
func (s *RedisStore) PutGoal(ctx context.Context, goal *models.EnergyGoal) error {
	return s.setJSON(ctx, redisSettingsKey(goalNamespace, goal.UserID), goal)
}

// GetAlerts loads the user's alert settings.
func (s *RedisStore) GetAlerts(ctx context.Context, userID string) (*models.AlertSettings, error) {
	var alerts models.AlertSettings
	if err := s.getJSON(ctx, redisSettingsKey(alertsNamespace, userID), &alerts); err != nil {
		return nil, err
	}
	return &alerts, nil
}

// PutAlerts replaces the user's alert settings.
func (s *RedisStore) PutAlerts(ctx context.Context, alerts *models.AlertSettings) error {
	return s.setJSON(ctx, redisSettingsKey(alertsNamespace, alerts.UserID), alerts)
}

func (s *RedisStore) getJSON(ctx context.Context, key string, target interface{}) error {
	result, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return models.ErrNotFound
		}
		return err
	}
	return json.Unmarshal([]byte(result), target)
}

func (s *RedisStore) setJSON(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, data, 0).Err()
}
