package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"go.uber.org/zap"

	"energydash/backend/services/usage-service/internal/analytics"
	"energydash/backend/services/usage-service/internal/models"
)

// GoalInput updates the monthly goal.
type GoalInput struct {
	MonthlyTargetKWh float64 `json:"monthlyTargetKwh"`
	MonthlyBudget    float64 `json:"monthlyBudget"`
}

// AlertsInput updates alert preferences.
type AlertsInput struct {
	Enabled           bool    `json:"enabled"`
	DailyThresholdKWh float64 `json:"dailyThresholdKwh"`
	Email             string  `json:"email"`
}

// SettingsService reads and writes the goal and alert singletons.
type SettingsService struct {
	store   SettingsStore
	timeout time.Duration
	now     func() time.Time
	logger  *zap.Logger
}

// NewSettingsService builds service.
func NewSettingsService(store SettingsStore, timeout time.Duration, logger *zap.Logger) *SettingsService {
	if timeout <= 0 {
		timeout = DefaultStoreTimeout
	}
	return &SettingsService{store: store, timeout: timeout, now: time.Now, logger: logger}
}

// Goal returns the saved goal, or an empty one if none was saved.
func (s *SettingsService) Goal(ctx context.Context, userID string) (*models.EnergyGoal, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	goal, err := s.store.GetGoal(ctx, userID)
	switch {
	case errors.Is(err, models.ErrNotFound):
		return &models.EnergyGoal{UserID: userID}, nil
	case err != nil:
		return nil, fmt.Errorf("%w: get goal: %w", ErrUpstreamUnavailable, err)
	}
	return goal, nil
}

// SetGoal replaces the user's goal.
func (s *SettingsService) SetGoal(ctx context.Context, userID string, in GoalInput) (*models.EnergyGoal, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if !isNonNegative(in.MonthlyTargetKWh) || !isNonNegative(in.MonthlyBudget) {
		return nil, fmt.Errorf("%w: goal values must be non-negative numbers", analytics.ErrInvalidInput)
	}

	goal := &models.EnergyGoal{
		UserID:           userID,
		MonthlyTargetKWh: in.MonthlyTargetKWh,
		MonthlyBudget:    in.MonthlyBudget,
		UpdatedAt:        s.now().UTC(),
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.store.PutGoal(ctx, goal); err != nil {
		return nil, fmt.Errorf("%w: put goal: %w", ErrUpstreamUnavailable, err)
	}
	s.logger.Info("goal updated", zap.String("user_id", userID), zap.Float64("monthly_target_kwh", goal.MonthlyTargetKWh))
	return goal, nil
}

// Alerts returns the saved alert settings, disabled by default.
func (s *SettingsService) Alerts(ctx context.Context, userID string) (*models.AlertSettings, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	alerts, err := s.store.GetAlerts(ctx, userID)
	switch {
	case errors.Is(err, models.ErrNotFound):
		return &models.AlertSettings{UserID: userID}, nil
	case err != nil:
		return nil, fmt.Errorf("%w: get alerts: %w", ErrUpstreamUnavailable, err)
	}
	return alerts, nil
}

// SetAlerts replaces the user's alert settings.
func (s *SettingsService) SetAlerts(ctx context.Context, userID string, in AlertsInput) (*models.AlertSettings, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if !isNonNegative(in.DailyThresholdKWh) {
		return nil, fmt.Errorf("%w: daily threshold must be a non-negative number", analytics.ErrInvalidInput)
	}
	email := strings.TrimSpace(in.Email)
	if email != "" {
		addr, err := mail.ParseAddress(email)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid email %q", analytics.ErrInvalidInput, email)
		}
		email = addr.Address
	}
	if in.Enabled && in.DailyThresholdKWh == 0 {
		return nil, fmt.Errorf("%w: enabled alerts need a daily threshold", analytics.ErrInvalidInput)
	}

	alerts := &models.AlertSettings{
		UserID:            userID,
		Enabled:           in.Enabled,
		DailyThresholdKWh: in.DailyThresholdKWh,
		Email:             email,
		UpdatedAt:         s.now().UTC(),
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.store.PutAlerts(ctx, alerts); err != nil {
		return nil, fmt.Errorf("%w: put alerts: %w", ErrUpstreamUnavailable, err)
	}
	s.logger.Info("alerts updated", zap.String("user_id", userID), zap.Bool("enabled", alerts.Enabled))
	return alerts, nil
}
