package service

import (
	"context"
	"errors"

	"energydash/backend/services/usage-service/internal/models"
)

// ErrUpstreamUnavailable wraps failures and timeouts of the store or the chat provider.
// Reads that fail with it are safe to retry; writes are not retried.
var ErrUpstreamUnavailable = errors.New("service: upstream unavailable")

// UsageStore is the append-only entry store. ListByUser returns every entry ever appended
// for the user, in no particular order.
type UsageStore interface {
	Append(ctx context.Context, entry *models.UsageEntry) error
	ListByUser(ctx context.Context, userID string) ([]models.UsageEntry, error)
}

// SettingsStore keeps per-user goal and alert singletons. Getters return models.ErrNotFound
// when nothing was saved yet.
type SettingsStore interface {
	GetGoal(ctx context.Context, userID string) (*models.EnergyGoal, error)
	PutGoal(ctx context.Context, goal *models.EnergyGoal) error
	GetAlerts(ctx context.Context, userID string) (*models.AlertSettings, error)
	PutAlerts(ctx context.Context, alerts *models.AlertSettings) error
}

// EntryNotifier receives entries right after they are stored.
type EntryNotifier interface {
	Broadcast(entry models.UsageEntry)
}

// EntryPublisher forwards entries to an external system.
type EntryPublisher interface {
	PublishEntry(ctx context.Context, entry models.UsageEntry) error
}
