package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"energydash/backend/services/usage-service/internal/analytics"
	"energydash/backend/services/usage-service/internal/models"
)

// DefaultStoreTimeout bounds a single store round trip.
const DefaultStoreTimeout = 5 * time.Second

// Options tune UsageService.
type Options struct {
	StoreTimeout time.Duration
	DefaultRate  float64
	Now          func() time.Time
	Notifier     EntryNotifier
	Publisher    EntryPublisher
}

// RecordInput is a usage observation as submitted by a client.
type RecordInput struct {
	Date      string  `json:"date"`
	Usage     float64 `json:"usage"`
	Appliance string  `json:"appliance"`
	Cost      float64 `json:"cost"`
}

// UsageReport is the listing returned for the dashboard.
type UsageReport struct {
	Entries    []models.UsageEntry `json:"entries"`
	Summary    analytics.Aggregate `json:"summary"`
	Appliances map[string]float64  `json:"appliances"`
}

// UsageService records entries and runs the analytics over a user's history.
type UsageService struct {
	store       UsageStore
	forecaster  *analytics.Forecaster
	notifier    EntryNotifier
	publisher   EntryPublisher
	timeout     time.Duration
	defaultRate float64
	now         func() time.Time
	logger      *zap.Logger

	mu     sync.Mutex
	lastTS map[string]time.Time
}

// NewUsageService builds service.
func NewUsageService(store UsageStore, opts Options, logger *zap.Logger) *UsageService {
	if opts.StoreTimeout <= 0 {
		opts.StoreTimeout = DefaultStoreTimeout
	}
	if opts.DefaultRate <= 0 {
		opts.DefaultRate = analytics.DefaultRatePerKWh
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &UsageService{
		store:       store,
		forecaster:  analytics.NewForecaster(opts.Now),
		notifier:    opts.Notifier,
		publisher:   opts.Publisher,
		timeout:     opts.StoreTimeout,
		defaultRate: opts.DefaultRate,
		now:         opts.Now,
		logger:      logger,
		lastTS:      make(map[string]time.Time),
	}
}

// Record validates and stores a new entry, then fans it out to live subscribers and the
// publisher. Fan-out failures are logged and do not fail the write.
func (s *UsageService) Record(ctx context.Context, userID string, in RecordInput) (*models.UsageEntry, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	date, err := models.ParseDate(in.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", analytics.ErrInvalidInput, err)
	}
	if !isNonNegative(in.Usage) {
		return nil, fmt.Errorf("%w: usage must be a non-negative number", analytics.ErrInvalidInput)
	}
	if !isNonNegative(in.Cost) {
		return nil, fmt.Errorf("%w: cost must be a non-negative number", analytics.ErrInvalidInput)
	}

	ts, err := s.nextTimestamp(ctx, userID)
	if err != nil {
		return nil, err
	}
	entry := &models.UsageEntry{
		ID:        models.NewEntryID(ts),
		UserID:    userID,
		Date:      date,
		Usage:     in.Usage,
		Appliance: models.NormalizeAppliance(in.Appliance),
		Cost:      in.Cost,
		Timestamp: ts,
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.store.Append(storeCtx, entry); err != nil {
		if errors.Is(err, models.ErrDuplicateEntry) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: append entry: %w", ErrUpstreamUnavailable, err)
	}

	s.logger.Info("usage recorded",
		zap.String("user_id", userID),
		zap.String("entry_id", entry.ID),
		zap.Float64("usage_kwh", entry.Usage),
		zap.String("appliance", entry.Appliance),
	)

	s.fanOut(ctx, *entry)
	return entry, nil
}

func (s *UsageService) fanOut(ctx context.Context, entry models.UsageEntry) {
	if s.notifier != nil {
		s.notifier.Broadcast(entry)
	}
	if s.publisher == nil {
		return
	}
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()
	if err := s.publisher.PublishEntry(pubCtx, entry); err != nil {
		s.logger.Warn("failed to publish entry", zap.String("entry_id", entry.ID), zap.Error(err))
	}
}

// nextTimestamp keeps creation times strictly increasing per user even when the clock
// stalls or steps back. The first write of a user in this process starts after the newest
// stored entry, so the order also holds across restarts.
func (s *UsageService) nextTimestamp(ctx context.Context, userID string) (time.Time, error) {
	s.mu.Lock()
	_, seeded := s.lastTS[userID]
	s.mu.Unlock()

	if !seeded {
		entries, err := s.Entries(ctx, userID)
		if err != nil {
			return time.Time{}, err
		}
		var latest time.Time
		if len(entries) > 0 {
			latest = lo.MaxBy(entries, func(a, b models.UsageEntry) bool {
				return a.Timestamp.After(b.Timestamp)
			}).Timestamp
		}
		s.mu.Lock()
		if last, ok := s.lastTS[userID]; !ok || latest.After(last) {
			s.lastTS[userID] = latest
		}
		s.mu.Unlock()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	ts := s.now().UTC()
	if last := s.lastTS[userID]; !ts.After(last) {
		ts = last.Add(time.Nanosecond)
	}
	s.lastTS[userID] = ts
	return ts, nil
}

// Entries fetches a snapshot of the user's entries.
func (s *UsageService) Entries(ctx context.Context, userID string) ([]models.UsageEntry, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	entries, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Warn("failed to list entries", zap.String("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("%w: list entries: %w", ErrUpstreamUnavailable, err)
	}
	return entries, nil
}

// Report lists the entries of the period (all when nil) with totals and the appliance split.
func (s *UsageService) Report(ctx context.Context, userID string, period *analytics.Period) (*UsageReport, error) {
	if period != nil {
		if err := period.Validate(); err != nil {
			return nil, err
		}
	}
	entries, err := s.Entries(ctx, userID)
	if err != nil {
		return nil, err
	}
	filtered := analytics.FilterByPeriod(entries, period)
	summary, err := analytics.Summarize(filtered, nil)
	if err != nil {
		return nil, err
	}
	breakdown, err := analytics.ApplianceBreakdown(filtered)
	if err != nil {
		return nil, err
	}
	// Newest first, like the export.
	filtered = lo.Reverse(analytics.RecentByDate(filtered, 0))
	return &UsageReport{Entries: filtered, Summary: summary, Appliances: breakdown}, nil
}

// Predict fits the trend over the user's recent history.
func (s *UsageService) Predict(ctx context.Context, userID string) (analytics.Forecast, error) {
	entries, err := s.Entries(ctx, userID)
	if err != nil {
		return analytics.Forecast{}, err
	}
	forecast, err := s.forecaster.Forecast(entries)
	if err != nil {
		s.logger.Warn("forecast failed", zap.String("user_id", userID), zap.Error(err))
		return analytics.Forecast{}, err
	}
	return forecast, nil
}

// Tips returns savings recommendations for the user's whole history.
func (s *UsageService) Tips(ctx context.Context, userID string) ([]string, error) {
	entries, err := s.Entries(ctx, userID)
	if err != nil {
		return nil, err
	}
	return analytics.GenerateTips(entries)
}

// Bill estimates the cost of one month. A zero rate selects the configured default.
func (s *UsageService) Bill(ctx context.Context, userID string, req analytics.BillRequest) (analytics.Bill, error) {
	if req.RatePerKWh == 0 {
		req.RatePerKWh = s.defaultRate
	}
	if err := (analytics.Period{Month: req.Month, Year: req.Year}).Validate(); err != nil {
		return analytics.Bill{}, err
	}
	entries, err := s.Entries(ctx, userID)
	if err != nil {
		return analytics.Bill{}, err
	}
	return analytics.CalculateBill(entries, req)
}

// ExportCSV writes the user's history, newest first.
func (s *UsageService) ExportCSV(ctx context.Context, userID string, w io.Writer) error {
	entries, err := s.Entries(ctx, userID)
	if err != nil {
		return err
	}
	return analytics.WriteCSV(w, entries)
}

func requireUser(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("%w: user id is required", analytics.ErrInvalidInput)
	}
	return nil
}

func isNonNegative(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}
