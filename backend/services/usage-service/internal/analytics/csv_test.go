package analytics

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"energydash/backend/services/usage-service/internal/models"
)

func TestWriteCSV(t *testing.T) {
	entries := []models.UsageEntry{
		entry(t, "2024-03-01", 10, "HVAC"),
		entry(t, "2024-03-03", 2.5, "Water Heater, upstairs"),
		entry(t, "2024-03-02", 4, ""),
	}
	entries[0].Cost = 1.2

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, entries))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, len(entries)+1)
	assert.Equal(t, []string{"Date", "Usage (kWh)", "Appliance", "Cost ($)"}, rows[0])
	assert.Equal(t, []string{"2024-03-03", "2.5", "Water Heater, upstairs", "0"}, rows[1])
	assert.Equal(t, []string{"2024-03-02", "4", "General", "0"}, rows[2])
	assert.Equal(t, []string{"2024-03-01", "10", "HVAC", "1.2"}, rows[3])
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Equal(t, "Date,Usage (kWh),Appliance,Cost ($)\n", buf.String())
}
