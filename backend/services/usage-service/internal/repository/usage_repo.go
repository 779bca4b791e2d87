package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"energydash/backend/services/usage-service/internal/models"
)

const uniqueViolation = "23505"

// UsageRepository persists usage entries in Postgres.
type UsageRepository struct {
	db *sql.DB
}

// NewUsageRepository returns repository.
func NewUsageRepository(db *sql.DB) *UsageRepository {
	return &UsageRepository{db: db}
}

// Append inserts a new entry. Entries are never updated.
func (r *UsageRepository) Append(ctx context.Context, entry *models.UsageEntry) error {
	const query = `
		INSERT INTO usage_entries (id, user_id, date, usage_kwh, appliance, cost, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		entry.ID,
		entry.UserID,
		entry.Date,
		entry.Usage,
		entry.Appliance,
		entry.Cost,
		entry.Timestamp,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("%w: %s", models.ErrDuplicateEntry, entry.ID)
		}
		return err
	}
	return nil
}

// ListByUser returns every entry of the user, oldest first.
func (r *UsageRepository) ListByUser(ctx context.Context, userID string) ([]models.UsageEntry, error) {
	const query = `
		SELECT id, user_id, date, usage_kwh, appliance, cost, created_at
		FROM usage_entries
		WHERE user_id = $1
		ORDER BY date ASC, created_at ASC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.UsageEntry
	for rows.Next() {
		var e models.UsageEntry
		if err := rows.Scan(
			&e.ID,
			&e.UserID,
			&e.Date,
			&e.Usage,
			&e.Appliance,
			&e.Cost,
			&e.Timestamp,
		); err != nil {
			return nil, err
		}
		e.Date = models.Day(e.Date)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
