package analytics

import (
	"fmt"
	"math"

	"energydash/backend/services/usage-service/internal/models"
)

// DefaultRatePerKWh applies when a bill request does not name a rate.
const DefaultRatePerKWh = 0.12

// BillRequest selects the month to bill. A zero RatePerKWh means "use the default rate".
type BillRequest struct {
	Month      int
	Year       int
	RatePerKWh float64
}

// Bill is the estimated cost breakdown for one month.
type Bill struct {
	Month         int     `json:"month"`
	Year          int     `json:"year"`
	TotalUsage    float64 `json:"totalUsage"`
	RatePerKWh    float64 `json:"ratePerKwh"`
	EstimatedCost float64 `json:"estimatedCost"`
	EntriesCount  int     `json:"entriesCount"`
}

// CalculateBill totals the month's usage and prices it at the requested rate. Out of range
// months/years and non-positive rates are rejected with ErrInvalidInput; a month without
// entries yields a zero bill.
func CalculateBill(entries []models.UsageEntry, req BillRequest) (Bill, error) {
	rate := req.RatePerKWh
	if rate == 0 {
		rate = DefaultRatePerKWh
	}
	if rate < 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return Bill{}, fmt.Errorf("%w: rate per kWh must be positive, got %v", ErrInvalidInput, req.RatePerKWh)
	}

	period := Period{Month: req.Month, Year: req.Year}
	agg, err := Summarize(entries, &period)
	if err != nil {
		return Bill{}, err
	}

	return Bill{
		Month:         req.Month,
		Year:          req.Year,
		TotalUsage:    agg.TotalUsage,
		RatePerKWh:    rate,
		EstimatedCost: agg.TotalUsage * rate,
		EntriesCount:  agg.Count,
	}, nil
}
