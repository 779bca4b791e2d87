package service

import (
	"context"
	"sync"

	"energydash/backend/services/usage-service/internal/clients"
	"energydash/backend/services/usage-service/internal/models"
)

type memStore struct {
	mu      sync.Mutex
	entries map[string]models.UsageEntry
	goals   map[string]models.EnergyGoal
	alerts  map[string]models.AlertSettings
	err     error
	block   bool
}

func newMemStore() *memStore {
	return &memStore{
		entries: make(map[string]models.UsageEntry),
		goals:   make(map[string]models.EnergyGoal),
		alerts:  make(map[string]models.AlertSettings),
	}
}

func (s *memStore) wait(ctx context.Context) error {
	if s.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return s.err
}

func (s *memStore) Append(ctx context.Context, e *models.UsageEntry) error {
	if err := s.wait(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[e.ID]; ok {
		return models.ErrDuplicateEntry
	}
	s.entries[e.ID] = *e
	return nil
}

func (s *memStore) ListByUser(ctx context.Context, userID string) ([]models.UsageEntry, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.UsageEntry
	for _, e := range s.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *memStore) GetGoal(ctx context.Context, userID string) (*models.EnergyGoal, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.goals[userID]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &g, nil
}

func (s *memStore) PutGoal(ctx context.Context, g *models.EnergyGoal) error {
	if err := s.wait(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.goals[g.UserID] = *g
	return nil
}

func (s *memStore) GetAlerts(ctx context.Context, userID string) (*models.AlertSettings, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.alerts[userID]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &a, nil
}

func (s *memStore) PutAlerts(ctx context.Context, a *models.AlertSettings) error {
	if err := s.wait(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts[a.UserID] = *a
	return nil
}

type recordingNotifier struct {
	entries []models.UsageEntry
}

func (n *recordingNotifier) Broadcast(e models.UsageEntry) {
	n.entries = append(n.entries, e)
}

type recordingPublisher struct {
	entries []models.UsageEntry
	err     error
}

func (p *recordingPublisher) PublishEntry(_ context.Context, e models.UsageEntry) error {
	p.entries = append(p.entries, e)
	return p.err
}

type fakeLLM struct {
	messages []clients.ChatMessage
	reply    string
	err      error
}

func (f *fakeLLM) Complete(_ context.Context, messages []clients.ChatMessage) (string, error) {
	f.messages = messages
	return f.reply, f.err
}
