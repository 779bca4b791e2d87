package analytics

import (
	"sort"

	"github.com/samber/lo"

	"energydash/backend/services/usage-service/internal/models"
)

// Average daily usage thresholds (kWh) for the tip ladder.
const (
	HighUsageThreshold     = 30.0
	VeryHighUsageThreshold = 50.0
)

// Appliance categories with a dedicated tip.
const (
	ApplianceHVAC        = "HVAC"
	ApplianceWaterHeater = "Water Heater"
)

const (
	TipLED                 = "Switch to LED bulbs: they use up to 75% less energy than incandescent lighting."
	TipUnplugIdle          = "Unplug idle electronics; standby power can add 5-10% to your bill."
	TipEfficientAppliances = "Consider upgrading to ENERGY STAR certified appliances for your largest loads."
	TipThermostat          = "Set your thermostat 7-10°F back for 8 hours a day to save up to 10% on heating and cooling."
	TipHVAC                = "HVAC is your biggest consumer: replace filters regularly and schedule seasonal maintenance."
	TipWaterHeater         = "Lower your water heater to 120°F and insulate the tank to reduce standby losses."
	TipGreatJob            = "Great job! Your usage is below average. Keep tracking to stay efficient."
	TipSmartPowerStrip     = "Use a smart power strip to cut power to devices left in standby."
)

var applianceTips = map[string]string{
	ApplianceHVAC:        TipHVAC,
	ApplianceWaterHeater: TipWaterHeater,
}

// GenerateTips runs the recommendation ladder over all of a user's entries. The result is
// ordered by rule and is never empty.
func GenerateTips(entries []models.UsageEntry) ([]string, error) {
	agg, err := Summarize(entries, nil)
	if err != nil {
		return nil, err
	}
	breakdown, err := ApplianceBreakdown(entries)
	if err != nil {
		return nil, err
	}
	return TipsFor(agg, breakdown), nil
}

// TipsFor applies the ladder to precomputed statistics.
func TipsFor(agg Aggregate, breakdown map[string]float64) []string {
	avgDaily := agg.TotalUsage / float64(max(agg.Count, 1))

	var tips []string
	if avgDaily > HighUsageThreshold {
		tips = append(tips, TipLED, TipUnplugIdle)
	}
	if avgDaily > VeryHighUsageThreshold {
		tips = append(tips, TipEfficientAppliances, TipThermostat)
	}
	if tip, ok := applianceTips[DominantAppliance(breakdown)]; ok {
		tips = append(tips, tip)
	}
	if len(tips) == 0 {
		tips = append(tips, TipGreatJob, TipSmartPowerStrip)
	}
	return tips
}

// DominantAppliance returns the category with the largest summed usage. Ties go to the
// alphabetically first name; an empty breakdown yields "".
func DominantAppliance(breakdown map[string]float64) string {
	names := lo.Keys(breakdown)
	sort.Strings(names)

	dominant := ""
	best := 0.0
	for _, name := range names {
		if dominant == "" || breakdown[name] > best {
			dominant, best = name, breakdown[name]
		}
	}
	return dominant
}
