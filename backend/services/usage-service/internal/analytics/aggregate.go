package analytics

import (
	"fmt"

	"github.com/samber/lo"

	"energydash/backend/services/usage-service/internal/models"
)

// Period selects a calendar month.
type Period struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

// Validate checks month is 1-12 and year has four digits.
func (p Period) Validate() error {
	if p.Month < 1 || p.Month > 12 {
		return fmt.Errorf("%w: month %d out of range 1-12", ErrInvalidInput, p.Month)
	}
	if p.Year < 1000 || p.Year > 9999 {
		return fmt.Errorf("%w: year %d is not a four-digit year", ErrInvalidInput, p.Year)
	}
	return nil
}

// Contains reports whether e was recorded in the period.
func (p Period) Contains(e models.UsageEntry) bool {
	y, m, _ := e.Date.Date()
	return y == p.Year && int(m) == p.Month
}

// Aggregate holds sums over a filtered set of entries.
type Aggregate struct {
	TotalUsage   float64 `json:"totalUsage"`
	TotalCost    float64 `json:"totalCost"`
	Count        int     `json:"count"`
	AverageUsage float64 `json:"averageUsage"`
}

// FilterByPeriod returns the entries recorded in p. A nil period keeps everything.
func FilterByPeriod(entries []models.UsageEntry, p *Period) []models.UsageEntry {
	if p == nil {
		return entries
	}
	return lo.Filter(entries, func(e models.UsageEntry, _ int) bool {
		return p.Contains(e)
	})
}

// Summarize totals usage and cost over entries, optionally restricted to a period.
// The average of an empty set is 0.
func Summarize(entries []models.UsageEntry, p *Period) (Aggregate, error) {
	if p != nil {
		if err := p.Validate(); err != nil {
			return Aggregate{}, err
		}
	}
	filtered := FilterByPeriod(entries, p)
	if err := validateEntries(filtered); err != nil {
		return Aggregate{}, err
	}

	agg := Aggregate{
		TotalUsage: lo.SumBy(filtered, func(e models.UsageEntry) float64 { return e.Usage }),
		TotalCost:  lo.SumBy(filtered, func(e models.UsageEntry) float64 { return e.Cost }),
		Count:      len(filtered),
	}
	agg.AverageUsage = safeDiv(agg.TotalUsage, agg.Count)
	return agg, nil
}

// ApplianceBreakdown sums usage per appliance category.
func ApplianceBreakdown(entries []models.UsageEntry) (map[string]float64, error) {
	if err := validateEntries(entries); err != nil {
		return nil, err
	}
	breakdown := make(map[string]float64)
	for _, e := range entries {
		breakdown[models.NormalizeAppliance(e.Appliance)] += e.Usage
	}
	return breakdown, nil
}

func safeDiv(total float64, count int) float64 {
	if count <= 0 {
		return 0
	}
	return total / float64(count)
}
