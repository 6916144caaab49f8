package ics

import (
	"errors"
	"time"

	"github.com/teambition/rrule-go"

	"eventcal/internal/civil"
	appLog "eventcal/internal/log"
	"eventcal/internal/model"
)

const (
	defaultMaxOccurrencesPerEvent = 5000
)

// ExpandConfig controls how recurrence expansion is performed.
type ExpandConfig struct {
	// DisplayLocation is the zone timed events are converted into before
	// their calendar dates are taken. If nil, time.Local is used.
	DisplayLocation *time.Location

	// From / To bound the expansion (inclusive dates). Events overlapping
	// the window are kept whole.
	From civil.Date
	To   civil.Date

	// MaxOccurrencesPerEvent is a safety cap to avoid infinite or extremely
	// large expansions. If zero, defaultMaxOccurrencesPerEvent is used.
	MaxOccurrencesPerEvent int
}

// ExpandResult wraps the expanded events and information about truncation.
type ExpandResult struct {
	Events []model.Event
	// TruncatedEvents records UIDs that hit the MaxOccurrencesPerEvent cap.
	TruncatedEvents []string
}

// ExpandEvents turns parsed VEVENTs into dated calendar events within the
// window. It handles:
//
//   - Single non-recurring events
//   - RRULE-based recurrence (DAILY/WEEKLY/MONTHLY/YEARLY, etc.)
//   - EXDATE for exception removal
//   - RECURRENCE-ID overrides, including cancelled instances
//   - All-day semantics (exclusive DTEND)
//
// The result is not sorted.
func ExpandEvents(events []ParsedEvent, cfg ExpandConfig) (ExpandResult, error) {
	var result ExpandResult

	if cfg.To.Before(cfg.From) {
		return result, errors.New("expand: To is before From")
	}
	if cfg.DisplayLocation == nil {
		cfg.DisplayLocation = time.Local
	}
	if cfg.MaxOccurrencesPerEvent <= 0 {
		cfg.MaxOccurrencesPerEvent = defaultMaxOccurrencesPerEvent
	}

	// Group base events and overrides by UID, keeping feed order.
	var order []string
	baseByUID := make(map[string][]ParsedEvent)
	overridesByUID := make(map[string][]ParsedEvent)

	for _, ev := range events {
		if ev.IsOverride && ev.Recurrence != nil {
			overridesByUID[ev.UID] = append(overridesByUID[ev.UID], ev)
			continue
		}
		if _, seen := baseByUID[ev.UID]; !seen {
			order = append(order, ev.UID)
		}
		baseByUID[ev.UID] = append(baseByUID[ev.UID], ev)
	}

	for _, uid := range order {
		ov := overridesByUID[uid]
		truncated := false

		for _, ev := range baseByUID[uid] {
			if ev.Cancelled {
				continue
			}
			out, hitCap := expandEvent(ev, ov, cfg)
			if hitCap {
				truncated = true
			}
			result.Events = append(result.Events, out...)
		}

		if truncated {
			result.TruncatedEvents = append(result.TruncatedEvents, uid)
			appLog.Warn("expand: truncated occurrences for UID due to cap",
				"uid", uid,
				"cap", cfg.MaxOccurrencesPerEvent,
			)
		}
	}

	return result, nil
}

func expandEvent(ev ParsedEvent, overrides []ParsedEvent, cfg ExpandConfig) ([]model.Event, bool) {
	if ev.RawRRule == "" {
		return expandSingleEvent(ev, overrides, cfg), false
	}
	return expandRecurringEvent(ev, overrides, cfg)
}

func expandSingleEvent(ev ParsedEvent, overrides []ParsedEvent, cfg ExpandConfig) []model.Event {
	if o, ok := findOverrideForStart(ev, overrides, ev.Start); ok {
		ev = o
	}
	if ev.Cancelled {
		return nil
	}
	e := toEvent(ev, ev.Start, ev.End, cfg.DisplayLocation)
	if !overlaps(e, cfg) {
		return nil
	}
	return []model.Event{e}
}

func expandRecurringEvent(ev ParsedEvent, overrides []ParsedEvent, cfg ExpandConfig) ([]model.Event, bool) {
	hitCap := false

	r, err := rrule.StrToRRule(ev.RawRRule)
	if err != nil {
		appLog.Error("expand: failed to parse RRULE", err, "uid", ev.UID, "rrule", ev.RawRRule)
		return nil, false
	}
	r.DTStart(ev.Start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range ev.ExDates {
		if ev.AllDay {
			// Date-only EXDATEs are UTC midnights, like the all-day start.
			y, m, d := ex.Date()
			set.ExDate(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
			continue
		}
		set.ExDate(ex.In(ev.Start.Location()))
	}

	dur := ev.End.Sub(ev.Start)
	loc := ev.Start.Location()
	if !ev.AllDay {
		loc = cfg.DisplayLocation
	}
	// Widen the lower bound by the duration so instances that started
	// before the window but still cover it are kept.
	rangeStart := cfg.From.Time(loc).Add(-dur).In(ev.Start.Location())
	rangeEnd := cfg.To.AddDays(1).Time(loc).Add(-time.Nanosecond).In(ev.Start.Location())

	occTimes := set.Between(rangeStart, rangeEnd, true)
	if len(occTimes) > cfg.MaxOccurrencesPerEvent {
		occTimes = occTimes[:cfg.MaxOccurrencesPerEvent]
		hitCap = true
	}

	out := make([]model.Event, 0, len(occTimes))
	for _, occStart := range occTimes {
		base := ev
		start, end := occStart, occStart.Add(dur)

		if o, ok := findOverrideForStart(ev, overrides, occStart); ok {
			base = o
			start, end = o.Start, o.End
		}
		if base.Cancelled {
			continue
		}

		e := toEvent(base, start, end, cfg.DisplayLocation)
		e.ID = ev.UID + "@" + civil.FromTime(occStart).String()
		if overlaps(e, cfg) {
			out = append(out, e)
		}
	}

	return out, hitCap
}

// findOverrideForStart finds an override whose RECURRENCE-ID matches the
// instance start. All-day instances match by date, timed ones by instant.
func findOverrideForStart(base ParsedEvent, overrides []ParsedEvent, start time.Time) (ParsedEvent, bool) {
	for _, ov := range overrides {
		if ov.Recurrence == nil {
			continue
		}
		if base.AllDay {
			if civil.FromTime(*ov.Recurrence) == civil.FromTime(start) {
				return ov, true
			}
			continue
		}
		if ov.Recurrence.Equal(start) {
			return ov, true
		}
	}
	return ParsedEvent{}, false
}

// toEvent converts one instance into a model.Event with inclusive dates.
func toEvent(ev ParsedEvent, start, end time.Time, displayLoc *time.Location) model.Event {
	out := model.Event{
		ID:        ev.UID,
		Title:     ev.Summary,
		AllDay:    ev.AllDay,
		Permalink: ev.URL,
		Color:     ev.Source.Color,
		Category:  ev.Source.Category,
		SourceID:  ev.Source.ID,
	}
	if out.Category == "" && len(ev.Categories) > 0 {
		out.Category = ev.Categories[0]
	}

	if ev.AllDay {
		out.Start = civil.FromTime(start)
		out.End = civil.FromTime(end).AddDays(-1)
		if out.End.Before(out.Start) {
			out.End = out.Start
		}
		return out
	}

	ls, le := start.In(displayLoc), end.In(displayLoc)
	out.Start = civil.FromTime(ls)
	out.End = civil.FromTime(le)
	out.StartMinute = ls.Hour()*60 + ls.Minute()
	out.EndMinute = le.Hour()*60 + le.Minute()
	// An end at midnight belongs to the previous day.
	if out.EndMinute == 0 && out.End.After(out.Start) {
		out.End = out.End.AddDays(-1)
		out.EndMinute = 24 * 60
	}
	return out
}

func overlaps(e model.Event, cfg ExpandConfig) bool {
	return !e.LastDay().Before(cfg.From) && !e.Start.After(cfg.To)
}
