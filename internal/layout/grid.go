package layout

import (
	"time"

	"eventcal/internal/civil"
)

// BuildGrid returns the dates shown for a month as whole weeks, starting on
// startOfWeek (0=Sunday). Leading and trailing cells come from the adjacent
// months. The month is clamped into 1..12 and startOfWeek is taken modulo 7.
func BuildGrid(year int, month time.Month, startOfWeek int) [][]civil.Date {
	m := civil.Month{Year: year, Month: month}.Clamp()
	sow := normalizeWeekStart(startOfWeek)

	first := m.First()
	lead := leadingDays(first.Weekday(), sow)
	weekCount := (lead + m.Days() + 6) / 7

	start := first.AddDays(-lead)
	weeks := make([][]civil.Date, weekCount)
	for w := range weeks {
		days := make([]civil.Date, 7)
		for d := range days {
			days[d] = start.AddDays(w*7 + d)
		}
		weeks[w] = days
	}
	return weeks
}

// WeekdayOrder returns the weekday of each grid column.
func WeekdayOrder(startOfWeek int) [7]time.Weekday {
	sow := normalizeWeekStart(startOfWeek)
	var out [7]time.Weekday
	for i := range out {
		out[i] = time.Weekday((i + sow) % 7)
	}
	return out
}

func leadingDays(firstWeekday time.Weekday, startOfWeek int) int {
	return (7 + int(firstWeekday) - startOfWeek) % 7
}

func normalizeWeekStart(sow int) int {
	return ((sow % 7) + 7) % 7
}
