package civil

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrBadDate is returned when a date or month string cannot be parsed.
var ErrBadDate = errors.New("civil: malformed date")

// Date is a calendar date without time of day or location.
//
// Dates are values: every arithmetic helper returns a new Date. The zero
// value is treated as "unset" (see IsZero) and is never produced by
// arithmetic on a valid date.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// Of returns the normalized date for the given components. Out-of-range
// days and months roll over the same way time.Date does.
func Of(year int, month time.Month, day int) Date {
	return FromTime(time.Date(year, month, day, 12, 0, 0, 0, time.UTC))
}

// FromTime returns the date part of t in t's own location.
func FromTime(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Today returns the current date in loc (time.Local when nil).
func Today(loc *time.Location) Date {
	if loc == nil {
		loc = time.Local
	}
	return FromTime(time.Now().In(loc))
}

// Parse parses a YYYY-MM-DD date.
func Parse(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrBadDate, s)
	}
	return FromTime(t), nil
}

// MustParse is Parse for literals in tests and defaults.
func MustParse(s string) Date {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Time returns midnight of d in loc (UTC when nil).
func (d Date) Time(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool {
	return d == Date{}
}

// AddDays returns d shifted by n days.
func (d Date) AddDays(n int) Date {
	return Of(d.Year, d.Month, d.Day+n)
}

// Weekday returns the day of the week, Sunday=0.
func (d Date) Weekday() time.Weekday {
	return d.Time(time.UTC).Weekday()
}

// Compare returns -1, 0 or +1.
func (d Date) Compare(o Date) int {
	switch {
	case d.Year != o.Year:
		return cmpInt(d.Year, o.Year)
	case d.Month != o.Month:
		return cmpInt(int(d.Month), int(o.Month))
	default:
		return cmpInt(d.Day, o.Day)
	}
}

func (d Date) Before(o Date) bool { return d.Compare(o) < 0 }
func (d Date) After(o Date) bool  { return d.Compare(o) > 0 }

// MonthOf returns the month containing d.
func (d Date) MonthOf() Month {
	return Month{Year: d.Year, Month: d.Month}
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// MarshalText implements encoding.TextMarshaler; the zero date encodes empty.
func (d Date) MarshalText() ([]byte, error) {
	if d.IsZero() {
		return []byte{}, nil
	}
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler; empty input yields the zero date.
func (d *Date) UnmarshalText(b []byte) error {
	if len(strings.TrimSpace(string(b))) == 0 {
		*d = Date{}
		return nil
	}
	p, err := Parse(string(b))
	if err != nil {
		return err
	}
	*d = p
	return nil
}

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Month identifies a calendar month.
type Month struct {
	Year  int
	Month time.Month
}

var monthPattern = regexp.MustCompile(`^([0-9]{4})-([0-9]{1,2})`)

// ParseMonth parses "2024-3", "2024-03" or a full date, keeping only the
// year and month. The month component is not range checked here.
func ParseMonth(s string) (Month, error) {
	m := monthPattern.FindStringSubmatch(strings.TrimSpace(s))
	if len(m) != 3 {
		return Month{}, fmt.Errorf("%w: month %q", ErrBadDate, s)
	}
	y, _ := strconv.Atoi(m[1])
	mo, _ := strconv.Atoi(m[2])
	return Month{Year: y, Month: time.Month(mo)}, nil
}

// Clamp returns m with its month forced into 1..12.
func (m Month) Clamp() Month {
	switch {
	case m.Month < time.January:
		m.Month = time.January
	case m.Month > time.December:
		m.Month = time.December
	}
	return m
}

// Add returns m shifted by n months; the year rolls over.
func (m Month) Add(n int) Month {
	idx := m.Year*12 + int(m.Month) - 1 + n
	y := idx / 12
	mo := idx % 12
	if mo < 0 {
		mo += 12
		y--
	}
	return Month{Year: y, Month: time.Month(mo + 1)}
}

// First returns the first day of m.
func (m Month) First() Date {
	return Date{Year: m.Year, Month: m.Month, Day: 1}
}

// Days returns the number of days in m.
func (m Month) Days() int {
	return DaysIn(m.Year, m.Month)
}

func (m Month) Compare(o Month) int {
	if m.Year != o.Year {
		return cmpInt(m.Year, o.Year)
	}
	return cmpInt(int(m.Month), int(o.Month))
}

func (m Month) Before(o Month) bool { return m.Compare(o) < 0 }
func (m Month) After(o Month) bool  { return m.Compare(o) > 0 }

func (m Month) IsZero() bool { return m == Month{} }

// String formats m the way month query parameters are written ("2024-3").
func (m Month) String() string {
	return fmt.Sprintf("%d-%d", m.Year, int(m.Month))
}

// MarshalText implements encoding.TextMarshaler.
func (m Month) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Month) UnmarshalText(b []byte) error {
	p, err := ParseMonth(string(b))
	if err != nil {
		return err
	}
	*m = p
	return nil
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
