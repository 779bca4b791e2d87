package analytics

import (
	"encoding/csv"
	"io"
	"strconv"

	"energydash/backend/services/usage-service/internal/models"
)

// CSVHeader is the first row of every export.
var CSVHeader = []string{"Date", "Usage (kWh)", "Appliance", "Cost ($)"}

// WriteCSV writes one row per entry, newest first (by date, then creation time).
func WriteCSV(w io.Writer, entries []models.UsageEntry) error {
	ordered := RecentByDate(entries, 0)

	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for i := len(ordered) - 1; i >= 0; i-- {
		e := ordered[i]
		if err := cw.Write([]string{
			models.FormatDate(e.Date),
			formatNumber(e.Usage),
			models.NormalizeAppliance(e.Appliance),
			formatNumber(e.Cost),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
