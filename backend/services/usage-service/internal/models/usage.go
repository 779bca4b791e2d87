package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultAppliance is assigned to entries recorded without a category.
const DefaultAppliance = "General"

// UsageEntry is one recorded usage observation for a user on a given day.
// Entries are never updated or deleted once stored.
type UsageEntry struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"userId"`
	Date      time.Time `db:"date" json:"date"`
	Usage     float64   `db:"usage_kwh" json:"usage"`
	Appliance string    `db:"appliance" json:"appliance"`
	Cost      float64   `db:"cost" json:"cost"`
	Timestamp time.Time `db:"created_at" json:"timestamp"`
}

// NewEntryID builds the record identity: creation time in unix nanoseconds followed by a
// random suffix, so lexical key order matches insertion order within a user.
func NewEntryID(ts time.Time) string {
	return fmt.Sprintf("%019d-%s", ts.UTC().UnixNano(), uuid.NewString())
}

// NormalizeAppliance trims the label and applies the default category.
func NormalizeAppliance(appliance string) string {
	appliance = strings.TrimSpace(appliance)
	if appliance == "" {
		return DefaultAppliance
	}
	return appliance
}
