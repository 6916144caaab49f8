package layout

import (
	"sort"

	"eventcal/internal/civil"
	"eventcal/internal/model"
)

// SelectEvents returns the events overlapping [from, to] (both inclusive),
// keeping their input order. Input order is the lane priority.
func SelectEvents(events []model.Event, from, to civil.Date) []model.Event {
	out := make([]model.Event, 0, len(events))
	for _, ev := range events {
		if ev.LastDay().Before(from) || ev.Start.After(to) {
			continue
		}
		out = append(out, ev)
	}
	return out
}

// SortEvents orders events for lane priority: start date ascending, end
// date descending, then start time. The sort is stable so equal events keep
// their source order.
func SortEvents(events []model.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if c := a.Start.Compare(b.Start); c != 0 {
			return c < 0
		}
		if c := a.LastDay().Compare(b.LastDay()); c != 0 {
			return c > 0
		}
		return a.StartMinute < b.StartMinute
	})
}

// FilterCategories keeps the events whose category is one of slugs. An
// empty slug list keeps everything.
func FilterCategories(events []model.Event, slugs []string) []model.Event {
	if len(slugs) == 0 {
		return events
	}
	allowed := make(map[string]bool, len(slugs))
	for _, s := range slugs {
		allowed[s] = true
	}
	out := make([]model.Event, 0, len(events))
	for _, ev := range events {
		if allowed[ev.Category] {
			out = append(out, ev)
		}
	}
	return out
}
