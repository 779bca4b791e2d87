package models

import "time"

// EnergyGoal is the per-user monthly target.
type EnergyGoal struct {
	UserID           string    `db:"user_id" json:"userId"`
	MonthlyTargetKWh float64   `db:"monthly_target_kwh" json:"monthlyTargetKwh"`
	MonthlyBudget    float64   `db:"monthly_budget" json:"monthlyBudget"`
	UpdatedAt        time.Time `db:"updated_at" json:"updatedAt"`
}

// AlertSettings holds per-user notification preferences.
type AlertSettings struct {
	UserID            string    `db:"user_id" json:"userId"`
	Enabled           bool      `db:"enabled" json:"enabled"`
	DailyThresholdKWh float64   `db:"daily_threshold_kwh" json:"dailyThresholdKwh"`
	Email             string    `db:"email" json:"email"`
	UpdatedAt         time.Time `db:"updated_at" json:"updatedAt"`
}
