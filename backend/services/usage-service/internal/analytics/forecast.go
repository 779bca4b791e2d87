package analytics

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"

	"energydash/backend/services/usage-service/internal/models"
)

const (
	// MinForecastEntries is the smallest history the forecaster will fit a trend to.
	MinForecastEntries = 7
	// ForecastWindow caps the history to the most recent entries by date.
	ForecastWindow = 30
	// ForecastHorizonDays is the number of days predicted after today.
	ForecastHorizonDays = 7
)

// InsufficientDataMessage explains a forecast without predictions.
const InsufficientDataMessage = "Need at least 7 days of data for prediction"

// Prediction is the projected usage for one calendar day.
type Prediction struct {
	Date           time.Time
	PredictedUsage float64
}

// MarshalJSON renders the date as YYYY-MM-DD.
func (p Prediction) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Date           string  `json:"date"`
		PredictedUsage float64 `json:"predictedUsage"`
	}{
		Date:           models.FormatDate(p.Date),
		PredictedUsage: p.PredictedUsage,
	})
}

// Forecast is the outcome of a prediction request. Predictions is nil when the history was
// too short, in which case Message says why.
type Forecast struct {
	Predictions []Prediction
	Message     string
	Slope       float64
	Intercept   float64
	DataPoints  int
}

// Sufficient reports whether predictions were produced.
func (f Forecast) Sufficient() bool {
	return f.Predictions != nil
}

// Forecaster projects usage forward from a linear trend. It holds no model state; every call
// refits from the entries it is given.
type Forecaster struct {
	now func() time.Time
}

// NewForecaster returns a forecaster anchored to the given clock (time.Now when nil).
func NewForecaster(now func() time.Time) *Forecaster {
	if now == nil {
		now = time.Now
	}
	return &Forecaster{now: now}
}

// Forecast fits usage against rank over the most recent ForecastWindow entries and predicts
// each of the ForecastHorizonDays days following today. Projections are floored at zero and
// rounded to two decimals.
func (f *Forecaster) Forecast(entries []models.UsageEntry) (Forecast, error) {
	if len(entries) < MinForecastEntries {
		return Forecast{Message: InsufficientDataMessage, DataPoints: len(entries)}, nil
	}
	if err := validateEntries(entries); err != nil {
		return Forecast{}, err
	}

	recent := RecentByDate(entries, ForecastWindow)
	values := make([]float64, len(recent))
	for i, e := range recent {
		values[i] = e.Usage
	}

	slope, intercept, err := FitTrend(values)
	if err != nil {
		return Forecast{}, err
	}

	n := len(values)
	today := models.Day(f.now())
	predictions := make([]Prediction, 0, ForecastHorizonDays)
	for i := 1; i <= ForecastHorizonDays; i++ {
		predicted := slope*float64(n+i-1) + intercept
		if predicted < 0 {
			predicted = 0
		}
		predictions = append(predictions, Prediction{
			Date:           today.AddDate(0, 0, i),
			PredictedUsage: roundCents(predicted),
		})
	}

	return Forecast{
		Predictions: predictions,
		Slope:       slope,
		Intercept:   intercept,
		DataPoints:  n,
	}, nil
}

// RecentByDate orders a copy of entries by date, then creation time, and keeps the last limit.
func RecentByDate(entries []models.UsageEntry, limit int) []models.UsageEntry {
	sorted := make([]models.UsageEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].Date.Equal(sorted[j].Date) {
			return sorted[i].Date.Before(sorted[j].Date)
		}
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[len(sorted)-limit:]
	}
	return sorted
}

// FitTrend computes the ordinary least squares line through (i, values[i]).
func FitTrend(values []float64) (slope, intercept float64, err error) {
	n := float64(len(values))
	var sumX, sumY, sumXY, sumXX float64
	for i, y := range values {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	denominator := n*sumXX - sumX*sumX
	if denominator == 0 {
		return 0, 0, fmt.Errorf("%w: regression denominator is zero for %d points", ErrComputation, len(values))
	}
	slope = (n*sumXY - sumX*sumY) / denominator
	intercept = (sumY - slope*sumX) / n
	if math.IsNaN(slope) || math.IsInf(slope, 0) || math.IsNaN(intercept) || math.IsInf(intercept, 0) {
		return 0, 0, fmt.Errorf("%w: regression produced non-finite coefficients", ErrComputation)
	}
	return slope, intercept, nil
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
