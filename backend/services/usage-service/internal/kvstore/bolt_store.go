package kvstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"energydash/backend/services/usage-service/internal/models"
)

var (
	usageBucket  = []byte(usageNamespace)
	goalBucket   = []byte(goalNamespace)
	alertsBucket = []byte(alertsNamespace)
)

// BoltStore keeps entries in an embedded bbolt file, keyed <user>\x00<entry>.
type BoltStore struct {
	db *bolt.DB
}

// OpenBoltStore opens (creating if needed) the database file and its buckets.
func OpenBoltStore(path string) (*BoltStore, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("kvstore: create directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("kvstore: open bolt: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{usageBucket, goalBucket, alertsBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("kvstore: create buckets: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// Close releases the file lock.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

// Append stores the entry unless its key already exists.
func (s *BoltStore) Append(ctx context.Context, entry *models.UsageEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	key := boltEntryKey(entry.UserID, entry.ID)
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(usageBucket)
		if b.Get(key) != nil {
			return fmt.Errorf("%w: %s", models.ErrDuplicateEntry, entry.ID)
		}
		return b.Put(key, data)
	})
}

// ListByUser walks the user's key prefix in key order.
func (s *BoltStore) ListByUser(ctx context.Context, userID string) ([]models.UsageEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	prefix := boltUserPrefix(userID)
	var raws [][]byte
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(usageBucket).Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			// v is only valid for the life of the transaction.
			raws = append(raws, append([]byte(nil), v...))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(raws) == 0 {
		return nil, nil
	}
	return decodeEntries(userID, raws)
}

// GetGoal loads the user's goal.
func (s *BoltStore) GetGoal(ctx context.Context, userID string) (*models.EnergyGoal, error) {
	var goal models.EnergyGoal
	if err := s.get(ctx, goalBucket, userID, &goal); err != nil {
		return nil, err
	}
	return &goal, nil
}

// PutGoal replaces the user's goal.
func (s *BoltStore) PutGoal(ctx context.Context, goal *models.EnergyGoal) error {
	return s.put(ctx, goalBucket, goal.UserID, goal)
}

// GetAlerts loads the user's alert settings.
func (s *BoltStore) GetAlerts(ctx context.Context, userID string) (*models.AlertSettings, error) {
	var alerts models.AlertSettings
	if err := s.get(ctx, alertsBucket, userID, &alerts); err != nil {
		return nil, err
	}
	return &alerts, nil
}

// PutAlerts replaces the user's alert settings.
func (s *BoltStore) PutAlerts(ctx context.Context, alerts *models.AlertSettings) error {
	return s.put(ctx, alertsBucket, alerts.UserID, alerts)
}

func (s *BoltStore) get(ctx context.Context, bucket []byte, key string, target interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucket).Get([]byte(key))
		if raw == nil {
			return models.ErrNotFound
		}
		return json.Unmarshal(raw, target)
	})
}

func (s *BoltStore) put(ctx context.Context, bucket []byte, key string, value interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).Put([]byte(key), data)
	})
}
