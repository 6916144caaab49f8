package model

import (
	"fmt"
	"time"

	"eventcal/internal/civil"
)

// DefaultEventColor is used for events whose category has no color.
const DefaultEventColor = "#ccc"

// Event is a dated calendar entry as the layout engine sees it: a snapshot
// taken per render, never mutated by the engine.
type Event struct {
	ID         string `yaml:"id" json:"id"`
	Title      string `yaml:"title" json:"title"`
	ShortTitle string `yaml:"short_title,omitempty" json:"short_title,omitempty"`

	// Start / End are inclusive. A zero End means a single-day event.
	Start civil.Date `yaml:"start" json:"start"`
	End   civil.Date `yaml:"end,omitempty" json:"end,omitempty"`

	// StartMinute / EndMinute are minutes after midnight for timed events.
	// They only affect ordering and the date text.
	StartMinute int  `yaml:"start_minute,omitempty" json:"start_minute,omitempty"`
	EndMinute   int  `yaml:"end_minute,omitempty" json:"end_minute,omitempty"`
	AllDay      bool `yaml:"all_day" json:"all_day"`

	Color     string `yaml:"color,omitempty" json:"color,omitempty"`
	Category  string `yaml:"category,omitempty" json:"category,omitempty"`
	Permalink string `yaml:"permalink,omitempty" json:"permalink,omitempty"`

	// SourceID names the feed (or "config") the event came from.
	SourceID string `yaml:"-" json:"source_id,omitempty"`
}

// Label is the text shown inside a lane block.
func (e Event) Label() string {
	if e.ShortTitle != "" {
		return e.ShortTitle
	}
	return e.Title
}

// LastDay returns End, or Start when End is unset.
func (e Event) LastDay() civil.Date {
	if e.End.IsZero() {
		return e.Start
	}
	return e.End
}

// Covers reports whether the event is active on d.
func (e Event) Covers(d civil.Date) bool {
	return !d.Before(e.Start) && !d.After(e.LastDay())
}

// DateText renders the event's date range for detail views, e.g.
// "2024-01-05 09:00 - 2024-01-07 17:30". dateLayout and timeLayout are Go
// time layouts; the time parts are omitted for all-day events.
func (e Event) DateText(dateLayout, timeLayout, delimiter string) string {
	if delimiter == "" {
		delimiter = " - "
	}
	start := e.Start.Time(time.UTC).Add(time.Duration(e.StartMinute) * time.Minute)
	end := e.LastDay().Time(time.UTC).Add(time.Duration(e.EndMinute) * time.Minute)

	out := start.Format(dateLayout)
	if !e.AllDay && timeLayout != "" {
		out += " " + start.Format(timeLayout)
	}
	switch {
	case e.Start != e.LastDay():
		out += delimiter + end.Format(dateLayout)
		if !e.AllDay && timeLayout != "" {
			out += " " + end.Format(timeLayout)
		}
	case !e.AllDay && timeLayout != "" && e.StartMinute < e.EndMinute:
		out += delimiter + end.Format(timeLayout)
	}
	return out
}

// HolidayRuleSet describes one kind of holiday: recurring weekdays plus
// explicit extra dates and explicit exclusions.
type HolidayRuleSet struct {
	Key   string
	Title string
	// Weekdays is indexed by time.Weekday (Sunday=0).
	Weekdays   [7]bool
	Special    map[civil.Date]bool
	Exceptions map[civil.Date]bool
	Color      string
}

// Matches reports whether the rule set marks d as a holiday. Exceptions
// override both the weekday mask and the special dates.
func (h HolidayRuleSet) Matches(d civil.Date) bool {
	if h.Exceptions[d] {
		return false
	}
	return h.Weekdays[d.Weekday()] || h.Special[d]
}

// DayCell is one day of the grid.
type DayCell struct {
	Date           civil.Date `json:"date"`
	InCurrentMonth bool       `json:"in_current_month"`
	IsToday        bool       `json:"is_today"`
	// Holidays are matching rule set keys in precedence order.
	Holidays []string `json:"holidays,omitempty"`
}

// Holiday returns the winning holiday key (the last match), or "".
func (c DayCell) Holiday() string {
	if len(c.Holidays) == 0 {
		return ""
	}
	return c.Holidays[len(c.Holidays)-1]
}

// WeekRow is one row of seven day cells.
type WeekRow struct {
	Days []DayCell `json:"days"`
}

// LaneAssignment is one visual event block inside a week.
type LaneAssignment struct {
	Week       int    `json:"week"`
	Lane       int    `json:"lane"`
	EventIndex int    `json:"event_index"`
	EventID    string `json:"event_id"`
	// Start is the first day column of the block, Span its colspan.
	Start int `json:"start"`
	Span  int `json:"span"`
}

func (a LaneAssignment) String() string {
	return fmt.Sprintf("w%d lane%d %s [%d+%d]", a.Week, a.Lane, a.EventID, a.Start, a.Span)
}

// Navigation holds the previous/next targets of one rendered month.
type Navigation struct {
	Prev        civil.Month `json:"prev"`
	Next        civil.Month `json:"next"`
	PrevEnabled bool        `json:"prev_enabled"`
	NextEnabled bool        `json:"next_enabled"`
}

// MonthDescriptor is the complete layout of one month.
type MonthDescriptor struct {
	Month   civil.Month `json:"month"`
	Index   int         `json:"index"`
	Caption string      `json:"caption"`
	Today   civil.Date  `json:"today"`

	// Weekdays lists the column weekdays starting at the configured week start.
	Weekdays [7]time.Weekday `json:"weekdays"`
	Weeks    []WeekRow       `json:"weeks"`

	// Lanes, MaxLanes and Slots are indexed by week.
	Lanes    [][]LaneAssignment `json:"lanes"`
	MaxLanes []int              `json:"max_lanes"`
	Slots    [][7][]int         `json:"-"`

	// Events are the events selected for this month's window; lane
	// assignments refer to them by index.
	Events []Event    `json:"events"`
	Nav    Navigation `json:"navigation"`
}

// WindowStart returns the first date of the grid.
func (m MonthDescriptor) WindowStart() civil.Date {
	if len(m.Weeks) == 0 {
		return m.Month.First()
	}
	return m.Weeks[0].Days[0].Date
}

// WindowEnd returns the last date of the grid.
func (m MonthDescriptor) WindowEnd() civil.Date {
	if len(m.Weeks) == 0 {
		return m.Month.First()
	}
	last := m.Weeks[len(m.Weeks)-1].Days
	return last[len(last)-1].Date
}
