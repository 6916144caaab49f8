package layout

import (
	"time"

	"eventcal/internal/civil"
)

// Formatter supplies the localized strings of a month view.
type Formatter interface {
	Caption(m civil.Month) string
	WeekdayInitial(wd time.Weekday) string
}

// EnglishFormatter formats captions with a Go time layout
// ("January 2006" when Layout is empty) and uses English weekday initials.
type EnglishFormatter struct {
	Layout string
	// Abbrev selects three-letter weekday names instead of single letters.
	Abbrev bool
}

var weekdayInitials = [7]string{"S", "M", "T", "W", "T", "F", "S"}

func (f EnglishFormatter) Caption(m civil.Month) string {
	layout := f.Layout
	if layout == "" {
		layout = "January 2006"
	}
	return m.First().Time(time.UTC).Format(layout)
}

func (f EnglishFormatter) WeekdayInitial(wd time.Weekday) string {
	if f.Abbrev {
		return wd.String()[:3]
	}
	return weekdayInitials[wd]
}
