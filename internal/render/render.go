// Package render turns laid out months into output documents. The event
// calendar, the simple calendar, the JSON API and the terminal view are all
// Renderers over the same []model.MonthDescriptor produced by the layout
// package.
package render

import (
	"encoding/json"
	"io"
	"net/url"
	"strconv"
	"strings"

	"eventcal/internal/civil"
	"eventcal/internal/layout"
	"eventcal/internal/model"
)

// Renderer writes a Page in one output format.
type Renderer interface {
	ContentType() string
	Render(w io.Writer, p Page) error
}

// Page is everything a renderer needs besides the months themselves.
type Page struct {
	Months []model.MonthDescriptor

	// HolidayKeys / HolidaySets drive day colors and the legend.
	HolidayKeys []string
	HolidaySets map[string]model.HolidayRuleSet

	Formatter layout.Formatter

	Navigation       bool
	Columns          int
	DisableEventLink bool

	// CaptionColor / CaptionBgColor tint the simple calendar header.
	CaptionColor   string
	CaptionBgColor string

	// Query reproduces the request on the navigation buttons.
	Query Query
	// FragmentPath is the endpoint the navigation buttons load from.
	FragmentPath string
}

func (p Page) formatter() layout.Formatter {
	if p.Formatter == nil {
		return layout.EnglishFormatter{}
	}
	return p.Formatter
}

// Query is the parameter set of a month request.
type Query struct {
	Month       civil.Month
	Base        civil.Month
	Months      int
	StartOfWeek int
	PrevLimit   int
	NextLimit   int
	Holidays    []string
	Categories  []string
	ShowEvents  bool
	Navigation  bool
	Columns     int
	Variant     string

	// TitleFormat is a Go time layout for captions; empty keeps the default.
	TitleFormat    string
	CaptionColor   string
	CaptionBgColor string
}

// Values encodes q with Month replaced by month.
func (q Query) Values(month civil.Month) url.Values {
	v := url.Values{}
	v.Set("month", month.String())
	if !q.Base.IsZero() {
		v.Set("base_month", q.Base.String())
	}
	v.Set("months", strconv.Itoa(q.Months))
	v.Set("start_of_week", strconv.Itoa(q.StartOfWeek))
	v.Set("prev", strconv.Itoa(q.PrevLimit))
	v.Set("next", strconv.Itoa(q.NextLimit))
	v.Set("holidays", strings.Join(q.Holidays, ","))
	if len(q.Categories) > 0 {
		v.Set("categories", strings.Join(q.Categories, ","))
	}
	v.Set("event", boolParam(q.ShowEvents))
	v.Set("navigation", boolParam(q.Navigation))
	v.Set("columns", strconv.Itoa(q.Columns))
	if q.Variant != "" {
		v.Set("variant", q.Variant)
	}
	if q.TitleFormat != "" {
		v.Set("title_format", q.TitleFormat)
	}
	if q.CaptionColor != "" {
		v.Set("caption_color", q.CaptionColor)
	}
	if q.CaptionBgColor != "" {
		v.Set("caption_bgcolor", q.CaptionBgColor)
	}
	return v
}

func boolParam(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// JSON renders the months as the /api/months document.
type JSON struct{}

func (JSON) ContentType() string { return "application/json; charset=utf-8" }

type jsonPage struct {
	Months []model.MonthDescriptor `json:"months"`
	Legend []legendEntry           `json:"legend"`
}

type legendEntry struct {
	Key   string `json:"key"`
	Title string `json:"title"`
	Color string `json:"color"`
}

func (JSON) Render(w io.Writer, p Page) error {
	doc := jsonPage{Months: p.Months, Legend: legend(p)}
	if doc.Months == nil {
		doc.Months = []model.MonthDescriptor{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func legend(p Page) []legendEntry {
	sets := layout.HolidayLegend(p.HolidayKeys, p.HolidaySets)
	out := make([]legendEntry, 0, len(sets))
	for _, s := range sets {
		out = append(out, legendEntry{Key: s.Key, Title: s.Title, Color: s.Color})
	}
	return out
}
