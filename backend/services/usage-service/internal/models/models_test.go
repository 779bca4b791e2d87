package models

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want time.Time
	}{
		{name: "iso day", raw: "2024-03-01", want: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{name: "padded", raw: "  2024-03-15 ", want: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
		{name: "rfc3339 truncated", raw: "2024-04-02T18:30:00Z", want: time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.raw)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}
}

func TestParseDateRejectsGarbage(t *testing.T) {
	for _, raw := range []string{"", "yesterday", "2024-13-45"} {
		_, err := ParseDate(raw)
		require.Error(t, err, raw)
		assert.True(t, errors.Is(err, ErrInvalidDate))
	}
}

func TestNewEntryIDOrdersByTime(t *testing.T) {
	first := NewEntryID(time.Unix(1, 0))
	second := NewEntryID(time.Unix(2, 0))
	assert.Less(t, first, second)
	assert.True(t, strings.HasPrefix(first, "0000000001000000000-"))
}

func TestNormalizeAppliance(t *testing.T) {
	assert.Equal(t, DefaultAppliance, NormalizeAppliance("   "))
	assert.Equal(t, "HVAC", NormalizeAppliance(" HVAC "))
}
