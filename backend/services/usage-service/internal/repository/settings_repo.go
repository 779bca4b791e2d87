package repository

import (
	"context"
	"database/sql"
	"errors"

	"energydash/backend/services/usage-service/internal/models"
)

// SettingsRepository stores per-user goal and alert singletons.
type SettingsRepository struct {
	db *sql.DB
}

// NewSettingsRepository returns repository.
func NewSettingsRepository(db *sql.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// GetGoal loads the user's goal or models.ErrNotFound.
func (r *SettingsRepository) GetGoal(ctx context.Context, userID string) (*models.EnergyGoal, error) {
	const query = `
		SELECT user_id, monthly_target_kwh, monthly_budget, updated_at
		FROM energy_goals
		WHERE user_id = $1
	`
	var g models.EnergyGoal
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&g.UserID, &g.MonthlyTargetKWh, &g.MonthlyBudget, &g.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &g, nil
}

// PutGoal replaces the user's goal.
func (r *SettingsRepository) PutGoal(ctx context.Context, goal *models.EnergyGoal) error {
	const query = `
		INSERT INTO energy_goals (user_id, monthly_target_kwh, monthly_budget, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE SET
			monthly_target_kwh = EXCLUDED.monthly_target_kwh,
			monthly_budget = EXCLUDED.monthly_budget,
			updated_at = EXCLUDED.updated_at
	`
	_, err := r.db.ExecContext(ctx, query, goal.UserID, goal.MonthlyTargetKWh, goal.MonthlyBudget, goal.UpdatedAt)
	return err
}

// GetAlerts loads the user's alert settings or models.ErrNotFound.
func (r *SettingsRepository) GetAlerts(ctx context.Context, userID string) (*models.AlertSettings, error) {
	const query = `
		SELECT user_id, enabled, daily_threshold_kwh, email, updated_at
		FROM alert_settings
		WHERE user_id = $1
	`
	var a models.AlertSettings
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&a.UserID, &a.Enabled, &a.DailyThresholdKWh, &a.Email, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// PutAlerts replaces the user's alert settings.
func (r *SettingsRepository) PutAlerts(ctx context.Context, alerts *models.AlertSettings) error {
	const query = `
		INSERT INTO alert_settings (user_id, enabled, daily_threshold_kwh, email, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE SET
			enabled = EXCLUDED.enabled,
			daily_threshold_kwh = EXCLUDED.daily_threshold_kwh,
			email = EXCLUDED.email,
			updated_at = EXCLUDED.updated_at
	`
	_, err := r.db.ExecContext(ctx, query, alerts.UserID, alerts.Enabled, alerts.DailyThresholdKWh, alerts.Email, alerts.UpdatedAt)
	return err
}
