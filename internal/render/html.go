package render

import (
	"fmt"
	"html/template"
	"io"
	"sort"
	"strconv"
	"strings"

	"eventcal/internal/civil"
	"eventcal/internal/color"
	"eventcal/internal/model"
)

// EventHTML renders the event calendar: day grid, event lanes and the
// holiday legend. With Fragment set only the calendars are written, for
// the navigation endpoint.
type EventHTML struct {
	Fragment bool
}

func (EventHTML) ContentType() string { return "text/html; charset=utf-8" }

func (r EventHTML) Render(w io.Writer, p Page) error {
	return execute(w, r.Fragment, "event", eventView(p))
}

// SimpleHTML renders the compact calendar: day grid with holidays only.
type SimpleHTML struct {
	Fragment bool
}

func (SimpleHTML) ContentType() string { return "text/html; charset=utf-8" }

func (r SimpleHTML) Render(w io.Writer, p Page) error {
	return execute(w, r.Fragment, "simple", simpleView(p))
}

type pageView struct {
	Title        string
	Variant      string
	ColumnsClass string
	Months       []monthView
	Legend       []legendView
}

type legendView struct {
	Title string
	Style template.CSS
}

type monthView struct {
	Caption      string
	CaptionStyle template.CSS
	Navigation   bool
	Prev, Next   navButton
	Headers      []headerView
	Weeks        []weekView
}

type navButton struct {
	Enabled bool
	Month   string
	Href    string
}

type headerView struct {
	Class string
	Label string
}

type weekView struct {
	RowClass string
	Days     []dayView
	Lanes    [][]laneCell
}

type dayView struct {
	Class string
	Style template.CSS
	Label int
}

type laneCell struct {
	Span  int
	Empty bool
	Title string
	// When is the event's date range, shown as a tooltip.
	When  string
	Label string
	Href  string
	Class string
	Style template.CSS

	bg, fg string
	// past marks events that ended before today.
	past bool
}

var weekRowClasses = [...]string{"first", "second", "third", "fourth", "fifth", "sixth"}

func basePageView(p Page, variant string) pageView {
	pv := pageView{Variant: variant, ColumnsClass: "calendars"}
	if p.Columns > 1 {
		pv.ColumnsClass += " columns-" + strconv.Itoa(p.Columns)
	}
	if len(p.Months) > 0 {
		pv.Title = p.Months[0].Caption
	}
	for _, l := range legend(p) {
		pv.Legend = append(pv.Legend, legendView{
			Title: l.Title,
			Style: template.CSS("background-color:" + color.Sanitize(l.Color)),
		})
	}
	return pv
}

func eventView(p Page) pageView {
	pv := basePageView(p, "event")
	for _, m := range p.Months {
		mv := monthHeader(p, m)
		for w, row := range m.Weeks {
			wv := weekView{Days: dayViews(p, row, false)}
			if w < len(m.Lanes) {
				wv.Lanes = laneRows(p, m, w)
			}
			mv.Weeks = append(mv.Weeks, wv)
		}
		pv.Months = append(pv.Months, mv)
	}
	return pv
}

func simpleView(p Page) pageView {
	pv := basePageView(p, "simple")
	for _, m := range p.Months {
		mv := monthHeader(p, m)
		var style string
		if p.CaptionColor != "" {
			style += "color:" + color.Sanitize(p.CaptionColor) + ";"
		}
		if p.CaptionBgColor != "" {
			style += "background-color:" + color.Sanitize(p.CaptionBgColor) + ";"
		}
		mv.CaptionStyle = template.CSS(style)
		for w, row := range m.Weeks {
			mv.Weeks = append(mv.Weeks, weekView{
				RowClass: weekRowClasses[w%len(weekRowClasses)],
				Days:     dayViews(p, row, true),
			})
		}
		pv.Months = append(pv.Months, mv)
	}
	return pv
}

func monthHeader(p Page, m model.MonthDescriptor) monthView {
	f := p.formatter()
	mv := monthView{Caption: m.Caption, Navigation: p.Navigation}
	if mv.Caption == "" {
		mv.Caption = f.Caption(m.Month)
	}
	for _, wd := range m.Weekdays {
		mv.Headers = append(mv.Headers, headerView{
			Class: strings.ToLower(wd.String()[:3]),
			Label: f.WeekdayInitial(wd),
		})
	}
	if p.Navigation {
		mv.Prev = navigationButton(p, m.Nav.Prev, m.Nav.PrevEnabled)
		mv.Next = navigationButton(p, m.Nav.Next, m.Nav.NextEnabled)
	}
	return mv
}

func navigationButton(p Page, target civil.Month, enabled bool) navButton {
	b := navButton{Enabled: enabled, Month: target.String()}
	if !enabled {
		return b
	}
	path := p.FragmentPath
	if path == "" {
		path = "/calendar/fragment"
	}
	b.Href = path + "?" + p.Query.Values(target).Encode()
	return b
}

func dayViews(p Page, row model.WeekRow, simple bool) []dayView {
	out := make([]dayView, 0, len(row.Days))
	for _, d := range row.Days {
		var classes []string
		if simple {
			classes = append(classes, "day", strings.ToLower(d.Date.Weekday().String()[:3]))
			if !d.InCurrentMonth {
				classes = append(classes, "other")
			}
		} else if !d.InCurrentMonth {
			classes = append(classes, "other-month")
		}
		if d.IsToday {
			classes = append(classes, "today")
		}
		var style template.CSS
		if len(d.Holidays) > 0 {
			if simple {
				classes = append(classes, "holiday")
			}
			for _, key := range d.Holidays {
				classes = append(classes, "holiday-"+key)
			}
			if set, ok := p.HolidaySets[d.Holiday()]; ok {
				style = template.CSS("background-color:" + color.Sanitize(set.Color) + ";")
			}
		}
		out = append(out, dayView{
			Class: strings.Join(classes, " "),
			Style: style,
			Label: d.Date.Day,
		})
	}
	return out
}

// laneRows expands the lane blocks of one week into table rows of seven
// columns, with empty cells where no block starts.
func laneRows(p Page, m model.MonthDescriptor, week int) [][]laneCell {
	lanes := m.MaxLanes[week]
	if lanes == 0 {
		return nil
	}
	byLane := make([][]model.LaneAssignment, lanes)
	for _, a := range m.Lanes[week] {
		byLane[a.Lane] = append(byLane[a.Lane], a)
	}

	rows := make([][]laneCell, lanes)
	for lane, blocks := range byLane {
		sort.Slice(blocks, func(i, j int) bool { return blocks[i].Start < blocks[j].Start })
		var row []laneCell
		col := 0
		for _, b := range blocks {
			for ; col < b.Start; col++ {
				row = append(row, laneCell{Span: 1, Empty: true})
			}
			row = append(row, eventCell(p, m.Events[b.EventIndex], b.Span, m.Today))
			col += b.Span
		}
		for ; col < 7; col++ {
			row = append(row, laneCell{Span: 1, Empty: true})
		}
		rows[lane] = row
	}
	return rows
}

func eventCell(p Page, ev model.Event, span int, today civil.Date) laneCell {
	bg := ev.Color
	if bg == "" {
		bg = model.DefaultEventColor
	}
	bg = color.Sanitize(bg)
	category := "category-none"
	if ev.Category != "" {
		category = "category-" + ev.Category
	}
	fg := color.EventFontColor(bg)
	c := laneCell{
		Span:  span,
		Title: ev.Title,
		When:  eventWhen(ev),
		Label: ev.Label(),
		Class: category,
		Style: template.CSS(fmt.Sprintf("color:%s; background-color:%s;", fg, bg)),
		bg:    bg,
		fg:    fg,
		past:  !today.IsZero() && ev.LastDay().Before(today),
	}
	if !p.DisableEventLink {
		c.Href = ev.Permalink
	}
	return c
}

// eventWhen formats the tooltip date range. Times are shown only for timed
// events that carry a clock time.
func eventWhen(ev model.Event) string {
	timeLayout := ""
	if !ev.AllDay && (ev.StartMinute != 0 || ev.EndMinute != 0) {
		timeLayout = "15:04"
	}
	return ev.DateText("2006-01-02", timeLayout, " - ")
}

func execute(w io.Writer, fragment bool, variant string, pv pageView) error {
	name := "page"
	if fragment {
		name = "calendars"
	}
	if err := templates.ExecuteTemplate(w, name, pv); err != nil {
		return fmt.Errorf("render: %s %s: %w", variant, name, err)
	}
	return nil
}

var templates = template.Must(template.New("render").Parse(pageTemplate))
