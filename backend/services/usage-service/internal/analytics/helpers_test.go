package analytics

import (
	"fmt"
	"testing"
	"time"

	"energydash/backend/services/usage-service/internal/models"
)

var seq int

func entry(t *testing.T, date string, usage float64, appliance string) models.UsageEntry {
	t.Helper()
	d, err := models.ParseDate(date)
	if err != nil {
		t.Fatalf("bad fixture date %q: %v", date, err)
	}
	seq++
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(seq) * time.Second)
	return models.UsageEntry{
		ID:        fmt.Sprintf("e-%d", seq),
		UserID:    "user-1",
		Date:      d,
		Usage:     usage,
		Appliance: appliance,
		Timestamp: ts,
	}
}

// series returns one entry per day starting at start, with the given usages.
func series(t *testing.T, start string, usages ...float64) []models.UsageEntry {
	t.Helper()
	first, err := models.ParseDate(start)
	if err != nil {
		t.Fatalf("bad fixture date %q: %v", start, err)
	}
	out := make([]models.UsageEntry, 0, len(usages))
	for i, u := range usages {
		out = append(out, entry(t, models.FormatDate(first.AddDate(0, 0, i)), u, ""))
	}
	return out
}
