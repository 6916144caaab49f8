package web

import (
	"fmt"
	"net/url"
	"strings"

	"eventcal/internal/calendar"
	"eventcal/internal/civil"
	"eventcal/internal/layout"
	"eventcal/internal/render"
)

// maxMonths bounds the months of one request.
const maxMonths = 24

// parseQuery reads the month request parameters over def:
//
//	month=2024-3        first month (YYYY-M or YYYY-MM, a full date is fine)
//	base_month=2024-3   anchor of the feed limits; invalid falls back to month
//	months=2            number of months
//	start_of_week=1     first column, 0=Sunday
//	prev=2, next=2      feed limits, -1 for unlimited
//	holidays=all,am     holiday set keys in precedence order
//	categories=a,b      category filter
//	event=0|1, navigation=0|1, columns=N
//	variant=event|simple, title_format, caption_color, caption_bgcolor
//
// A month that does not parse is an error.
func parseQuery(v url.Values, def render.Query) (render.Query, error) {
	q := def

	if raw := v.Get("month"); raw != "" {
		m, err := civil.ParseMonth(raw)
		if err != nil {
			return render.Query{}, fmt.Errorf("invalid month %q", raw)
		}
		q.Month = m.Clamp()
		q.Base = q.Month
	}
	if raw := v.Get("base_month"); raw != "" {
		if b, err := civil.ParseMonth(raw); err == nil {
			q.Base = b.Clamp()
		}
	}

	q.Months = parseIntDefault(v.Get("months"), def.Months)
	if q.Months < 1 {
		q.Months = 1
	}
	if q.Months > maxMonths {
		q.Months = maxMonths
	}

	sow := parseIntDefault(v.Get("start_of_week"), def.StartOfWeek)
	if sow >= 0 && sow <= 6 {
		q.StartOfWeek = sow
	}

	q.PrevLimit = feedLimit(v.Get("prev"), def.PrevLimit)
	q.NextLimit = feedLimit(v.Get("next"), def.NextLimit)

	if v.Has("holidays") {
		q.Holidays = layout.ParseHolidayKeys(v.Get("holidays"))
	}
	if v.Has("categories") {
		q.Categories = layout.ParseHolidayKeys(v.Get("categories"))
	}

	q.ShowEvents = parseBool(v, "event", def.ShowEvents)
	q.Navigation = parseBool(v, "navigation", def.Navigation)

	if c := parseIntDefault(v.Get("columns"), def.Columns); c >= 1 {
		q.Columns = c
	}

	switch v.Get("variant") {
	case calendar.VariantEvent:
		q.Variant = calendar.VariantEvent
	case calendar.VariantSimple:
		q.Variant = calendar.VariantSimple
	}

	if tf := v.Get("title_format"); tf != "" {
		q.TitleFormat = tf
	}
	if c := v.Get("caption_color"); c != "" {
		q.CaptionColor = c
	}
	if c := v.Get("caption_bgcolor"); c != "" {
		q.CaptionBgColor = c
	}
	return q, nil
}

func feedLimit(raw string, def int) int {
	n := parseIntDefault(raw, def)
	if n < layout.NoLimit {
		return layout.NoLimit
	}
	return n
}

// parseBool treats any present value other than "", "0" and "false" as true.
func parseBool(v url.Values, key string, def bool) bool {
	if !v.Has(key) {
		return def
	}
	switch strings.ToLower(strings.TrimSpace(v.Get(key))) {
	case "", "0", "false":
		return false
	}
	return true
}
