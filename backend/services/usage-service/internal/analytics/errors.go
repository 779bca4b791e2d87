// Package analytics aggregates a user's usage entries into monthly bills, savings tips and a
// seven day forecast. Every function here is pure: callers fetch the entries and pass them in.
package analytics

import (
	"errors"
	"fmt"
	"math"

	"energydash/backend/services/usage-service/internal/models"
)

var (
	// ErrInvalidInput marks a malformed request parameter (month, year, rate).
	ErrInvalidInput = errors.New("analytics: invalid input")
	// ErrDataIntegrity marks a stored entry that cannot take part in a computation.
	ErrDataIntegrity = errors.New("analytics: data integrity violation")
	// ErrComputation marks a numerically degenerate computation.
	ErrComputation = errors.New("analytics: computation failed")
)

// ValidateEntry reports whether an entry can take part in aggregation.
func ValidateEntry(e models.UsageEntry) error {
	switch {
	case e.Date.IsZero():
		return fmt.Errorf("%w: entry %q has no date", ErrDataIntegrity, e.ID)
	case math.IsNaN(e.Usage) || math.IsInf(e.Usage, 0):
		return fmt.Errorf("%w: entry %q has non-numeric usage", ErrDataIntegrity, e.ID)
	case e.Usage < 0:
		return fmt.Errorf("%w: entry %q has negative usage %v", ErrDataIntegrity, e.ID, e.Usage)
	case math.IsNaN(e.Cost) || math.IsInf(e.Cost, 0) || e.Cost < 0:
		return fmt.Errorf("%w: entry %q has invalid cost", ErrDataIntegrity, e.ID)
	}
	return nil
}

func validateEntries(entries []models.UsageEntry) error {
	for _, e := range entries {
		if err := ValidateEntry(e); err != nil {
			return err
		}
	}
	return nil
}
