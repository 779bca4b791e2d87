package analytics

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"energydash/backend/services/usage-service/internal/models"
)

var fixedNow = time.Date(2024, 5, 20, 15, 4, 5, 0, time.UTC)

func newTestForecaster() *Forecaster {
	return NewForecaster(func() time.Time { return fixedNow })
}

func TestForecastInsufficientData(t *testing.T) {
	fc, err := newTestForecaster().Forecast(series(t, "2024-05-01", 1, 2, 3, 4, 5, 6))
	require.NoError(t, err)
	assert.False(t, fc.Sufficient())
	assert.Nil(t, fc.Predictions)
	assert.Equal(t, InsufficientDataMessage, fc.Message)
	assert.Equal(t, 6, fc.DataPoints)

	fc, err = newTestForecaster().Forecast(nil)
	require.NoError(t, err)
	assert.Nil(t, fc.Predictions)
}

func TestForecastIncreasingSeries(t *testing.T) {
	fc, err := newTestForecaster().Forecast(series(t, "2024-05-01", 1, 2, 3, 4, 5, 6, 7))
	require.NoError(t, err)
	require.True(t, fc.Sufficient())
	assert.Equal(t, 1.0, fc.Slope)
	assert.Equal(t, 1.0, fc.Intercept)
	assert.Equal(t, 7, fc.DataPoints)

	require.Len(t, fc.Predictions, ForecastHorizonDays)
	for i, p := range fc.Predictions {
		assert.Equal(t, float64(8+i), p.PredictedUsage)
		want := time.Date(2024, 5, 21+i, 0, 0, 0, 0, time.UTC)
		assert.True(t, want.Equal(p.Date), "day %d: got %s", i+1, p.Date)
	}
}

func TestForecastClampsNegativeProjections(t *testing.T) {
	fc, err := newTestForecaster().Forecast(series(t, "2024-05-01", 60, 50, 40, 30, 20, 10, 0))
	require.NoError(t, err)
	assert.Equal(t, -10.0, fc.Slope)
	for _, p := range fc.Predictions {
		assert.Equal(t, 0.0, p.PredictedUsage)
		assert.False(t, math.Signbit(p.PredictedUsage))
	}
}

func TestForecastUsesMostRecentThirtyByDate(t *testing.T) {
	usages := make([]float64, 0, 40)
	for i := 0; i < 10; i++ {
		usages = append(usages, 1000)
	}
	for i := 0; i < 30; i++ {
		usages = append(usages, 5)
	}
	entries := series(t, "2024-01-01", usages...)
	// Input order must not matter.
	shuffled := append([]models.UsageEntry{}, entries[20:]...)
	shuffled = append(shuffled, entries[:20]...)

	fc, err := newTestForecaster().Forecast(shuffled)
	require.NoError(t, err)
	assert.Equal(t, ForecastWindow, fc.DataPoints)
	assert.InDelta(t, 0, fc.Slope, 1e-12)
	for _, p := range fc.Predictions {
		assert.Equal(t, 5.0, p.PredictedUsage)
	}
}

func TestForecastRoundsToCents(t *testing.T) {
	fc, err := newTestForecaster().Forecast(series(t, "2024-05-01", 1.111, 1.111, 1.111, 1.111, 1.111, 1.111, 1.111))
	require.NoError(t, err)
	for _, p := range fc.Predictions {
		assert.Equal(t, 1.11, p.PredictedUsage)
	}
}

func TestForecastRejectsMalformedEntries(t *testing.T) {
	entries := series(t, "2024-05-01", 1, 2, 3, 4, 5, 6, 7)
	entries[3].Usage = math.NaN()

	_, err := newTestForecaster().Forecast(entries)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDataIntegrity))
}

func TestRecentByDateBreaksTiesByTimestamp(t *testing.T) {
	late := entry(t, "2024-05-02", 2, "")
	early := entry(t, "2024-05-02", 1, "")
	early.Timestamp = late.Timestamp.Add(-time.Hour)
	first := entry(t, "2024-05-01", 9, "")

	ordered := RecentByDate([]models.UsageEntry{late, early, first}, 0)
	assert.Equal(t, []string{first.ID, early.ID, late.ID}, []string{ordered[0].ID, ordered[1].ID, ordered[2].ID})

	trimmed := RecentByDate([]models.UsageEntry{late, early, first}, 2)
	assert.Equal(t, []string{early.ID, late.ID}, []string{trimmed[0].ID, trimmed[1].ID})
}

func TestFitTrendDegenerate(t *testing.T) {
	for _, values := range [][]float64{nil, {4}} {
		_, _, err := FitTrend(values)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrComputation))
	}
}

func TestPredictionJSON(t *testing.T) {
	raw, err := Prediction{Date: time.Date(2024, 5, 21, 0, 0, 0, 0, time.UTC), PredictedUsage: 8}.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"2024-05-21","predictedUsage":8}`, string(raw))
}
