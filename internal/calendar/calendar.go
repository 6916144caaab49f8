// Package calendar assembles render pages from the configuration and the
// current feed snapshot. The web handlers, the terminal browser and the
// render command all go through Build.
package calendar

import (
	"fmt"

	"eventcal/internal/civil"
	"eventcal/internal/config"
	"eventcal/internal/feed"
	"eventcal/internal/layout"
	appLog "eventcal/internal/log"
	"eventcal/internal/model"
	"eventcal/internal/render"
)

const (
	VariantEvent  = "event"
	VariantSimple = "simple"
)

// DefaultQuery is the request for the configured view of the month
// containing today.
func DefaultQuery(cfg *config.Config, today civil.Date) render.Query {
	m := today.MonthOf()
	return render.Query{
		Month:       m,
		Base:        m,
		Months:      cfg.Months,
		StartOfWeek: cfg.StartOfWeek(),
		PrevLimit:   cfg.PrevMonthFeed,
		NextLimit:   cfg.NextMonthFeed,
		Holidays:    append([]string(nil), cfg.Holidays...),
		Categories:  append([]string(nil), cfg.Categories...),
		ShowEvents:  cfg.ShowEvents,
		Navigation:  cfg.Navigation,
		Columns:     cfg.Columns,
		Variant:     VariantEvent,
		TitleFormat: cfg.TitleFormat,
	}
}

// Build lays out the months of q over snap.
func Build(cfg *config.Config, snap feed.Snapshot, q render.Query, today civil.Date) (render.Page, error) {
	titleFormat := q.TitleFormat
	if titleFormat == "" {
		titleFormat = cfg.TitleFormat
	}
	f := layout.EnglishFormatter{Layout: titleFormat}

	sets, err := holidaySets(cfg, snap, q)
	if err != nil {
		return render.Page{}, fmt.Errorf("calendar: %w", err)
	}

	months, err := layout.RenderMonths(layout.Config{
		Year:          q.Month.Year,
		Month:         q.Month.Month,
		StartOfWeek:   q.StartOfWeek,
		MonthCount:    q.Months,
		Events:        snap.Events,
		HideEvents:    !q.ShowEvents || q.Variant == VariantSimple,
		Categories:    q.Categories,
		HolidayKeys:   q.Holidays,
		HolidaySets:   sets,
		Base:          q.Base,
		PrevFeedLimit: q.PrevLimit,
		NextFeedLimit: q.NextLimit,
		Today:         today,
		Location:      cfg.Location(),
		Formatter:     f,
	})
	if err != nil {
		return render.Page{}, fmt.Errorf("calendar: %w", err)
	}

	if len(months) > 0 && !snap.From.IsZero() {
		first, last := months[0].WindowStart(), months[len(months)-1].WindowEnd()
		if first.Before(snap.From) || last.After(snap.To) {
			appLog.Info("requested months extend past the loaded event window",
				"first", first, "last", last, "loaded_from", snap.From, "loaded_to", snap.To)
		}
	}

	return render.Page{
		Months:           months,
		HolidayKeys:      q.Holidays,
		HolidaySets:      sets,
		Formatter:        f,
		Navigation:       q.Navigation,
		Columns:          q.Columns,
		DisableEventLink: cfg.DisableEventLink,
		CaptionColor:     q.CaptionColor,
		CaptionBgColor:   q.CaptionBgColor,
		Query:            q,
	}, nil
}

// holidaySets returns the rule sets for the years the grids of q touch. The
// snapshot's sets are reused when they cover those years; otherwise builtin
// dates are expanded again for the requested years.
func holidaySets(cfg *config.Config, snap feed.Snapshot, q render.Query) (map[string]model.HolidayRuleSet, error) {
	months := max(q.Months, 1)
	// Leading and trailing grid days may fall in the neighbouring year.
	fromYear := q.Month.Add(-1).Year
	toYear := q.Month.Add(months).Year
	if snap.HolidaySets != nil && !snap.From.IsZero() &&
		fromYear >= snap.From.Year && toYear <= snap.To.Year {
		return snap.HolidaySets, nil
	}
	return cfg.RuleSets(fromYear, toYear)
}

// Renderer returns the HTML renderer of a variant.
func Renderer(variant string, fragment bool) render.Renderer {
	if variant == VariantSimple {
		return render.SimpleHTML{Fragment: fragment}
	}
	return render.EventHTML{Fragment: fragment}
}
