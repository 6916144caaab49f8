package layout

import (
	"errors"
	"fmt"
	"time"

	"eventcal/internal/civil"
	"eventcal/internal/model"
)

// NoLimit disables a navigation feed limit.
const NoLimit = -1

// ErrInvalidInput reports input that violates an engine precondition, such
// as an event ending before it starts.
var ErrInvalidInput = errors.New("layout: invalid input")

// Config is the input of one render call.
type Config struct {
	Year  int
	Month time.Month
	// StartOfWeek is the weekday of the first column, 0=Sunday.
	StartOfWeek int
	// MonthCount is the number of consecutive months to render (min 1).
	MonthCount int

	// Events must already be in lane priority order (see SortEvents).
	Events     []model.Event
	HideEvents bool
	Categories []string

	// HolidayKeys is the display/precedence order of HolidaySets.
	HolidayKeys []string
	HolidaySets map[string]model.HolidayRuleSet

	// Base anchors the feed limits; zero means the first rendered month.
	Base          civil.Month
	PrevFeedLimit int
	NextFeedLimit int

	// Today highlights the current day; zero means "read the clock once in
	// Location".
	Today    civil.Date
	Location *time.Location

	Formatter Formatter
}

// RenderMonth lays out the first month of cfg.
func RenderMonth(cfg Config) (model.MonthDescriptor, error) {
	cfg.MonthCount = 1
	months, err := RenderMonths(cfg)
	if err != nil {
		return model.MonthDescriptor{}, err
	}
	return months[0], nil
}

// RenderMonths lays out cfg.MonthCount consecutive months starting at
// cfg.Year/cfg.Month. The current date is read once for the whole sequence.
func RenderMonths(cfg Config) ([]model.MonthDescriptor, error) {
	events, err := normalizeEvents(cfg.Events)
	if err != nil {
		return nil, err
	}
	if !cfg.HideEvents {
		events = FilterCategories(events, cfg.Categories)
	} else {
		events = nil
	}

	today := cfg.Today
	if today.IsZero() {
		today = civil.Today(cfg.Location)
	}
	if cfg.Formatter == nil {
		cfg.Formatter = EnglishFormatter{}
	}

	count := cfg.MonthCount
	if count < 1 {
		count = 1
	}

	first := civil.Month{Year: cfg.Year, Month: cfg.Month}.Clamp()
	base := cfg.Base
	if base.IsZero() {
		base = first
	}

	out := make([]model.MonthDescriptor, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, renderOne(cfg, first.Add(i), i+1, base, today, events))
	}
	return out, nil
}

func renderOne(cfg Config, m civil.Month, index int, base civil.Month, today civil.Date, events []model.Event) model.MonthDescriptor {
	grid := BuildGrid(m.Year, m.Month, cfg.StartOfWeek)

	desc := model.MonthDescriptor{
		Month:    m,
		Index:    index,
		Caption:  cfg.Formatter.Caption(m),
		Today:    today,
		Weekdays: WeekdayOrder(cfg.StartOfWeek),
		Weeks:    make([]model.WeekRow, len(grid)),
		Lanes:    make([][]model.LaneAssignment, len(grid)),
		MaxLanes: make([]int, len(grid)),
		Slots:    make([][7][]int, len(grid)),
		Nav:      Navigate(m, index, base, cfg.PrevFeedLimit, cfg.NextFeedLimit),
	}

	from := grid[0][0]
	last := grid[len(grid)-1]
	desc.Events = SelectEvents(events, from, last[len(last)-1])

	for w, dates := range grid {
		row := model.WeekRow{Days: make([]model.DayCell, len(dates))}
		for d, date := range dates {
			row.Days[d] = model.DayCell{
				Date:           date,
				InCurrentMonth: date.Month == m.Month,
				IsToday:        date == today,
				Holidays:       ResolveHolidays(date, cfg.HolidayKeys, cfg.HolidaySets),
			}
		}
		desc.Weeks[w] = row

		wl := AssignLanes(dates, desc.Events)
		for i := range wl.Blocks {
			wl.Blocks[i].Week = w
		}
		desc.Lanes[w] = wl.Blocks
		desc.MaxLanes[w] = wl.Lanes
		desc.Slots[w] = wl.Slots
	}

	return desc
}

// Navigate computes the navigation targets of the month m shown at 1-based
// position index of a sequence anchored at base. Previous stays enabled
// while m is after base-prevLimit, next while m is before base+nextLimit.
// The next target always advances the sequence's first month by one.
func Navigate(m civil.Month, index int, base civil.Month, prevLimit, nextLimit int) model.Navigation {
	return model.Navigation{
		Prev:        m.Add(-1),
		Next:        m.Add(2 - index),
		PrevEnabled: prevLimit == NoLimit || m.After(base.Add(-prevLimit)),
		NextEnabled: nextLimit == NoLimit || m.Before(base.Add(nextLimit)),
	}
}

// normalizeEvents fills missing end dates and rejects inverted ranges.
func normalizeEvents(events []model.Event) ([]model.Event, error) {
	out := make([]model.Event, len(events))
	for i, ev := range events {
		if ev.Start.IsZero() {
			return nil, fmt.Errorf("%w: event %q has no start date", ErrInvalidInput, ev.ID)
		}
		if ev.End.IsZero() {
			ev.End = ev.Start
		}
		if ev.End.Before(ev.Start) {
			return nil, fmt.Errorf("%w: event %q ends %s before it starts %s", ErrInvalidInput, ev.ID, ev.End, ev.Start)
		}
		out[i] = ev
	}
	return out, nil
}
