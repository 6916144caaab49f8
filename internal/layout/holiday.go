package layout

import (
	"strings"

	"eventcal/internal/civil"
	"eventcal/internal/model"
)

// ResolveHolidays returns the keys of the rule sets that mark date as a
// holiday, in the order given by keys. Keys without a rule set are skipped.
// The last element is the winning set for the day's color.
func ResolveHolidays(date civil.Date, keys []string, sets map[string]model.HolidayRuleSet) []string {
	var out []string
	for _, key := range keys {
		set, ok := sets[key]
		if !ok {
			continue
		}
		if set.Matches(date) {
			out = append(out, key)
		}
	}
	return out
}

// ParseHolidayKeys splits a comma-separated holiday key list ("all,am").
func ParseHolidayKeys(s string) []string {
	var keys []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			keys = append(keys, part)
		}
	}
	return keys
}

// HolidayLegend returns the known rule sets in key order, for the legend
// printed under a calendar.
func HolidayLegend(keys []string, sets map[string]model.HolidayRuleSet) []model.HolidayRuleSet {
	legend := make([]model.HolidayRuleSet, 0, len(keys))
	for _, key := range keys {
		if set, ok := sets[key]; ok {
			legend = append(legend, set)
		}
	}
	return legend
}
