// Package feed keeps the current event and holiday snapshot that every
// render reads. A refresh fetches the configured ICS feeds, merges them with
// the static events from the config and swaps the snapshot atomically.
package feed

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"eventcal/internal/civil"
	"eventcal/internal/color"
	"eventcal/internal/config"
	"eventcal/internal/ics"
	"eventcal/internal/layout"
	appLog "eventcal/internal/log"
	"eventcal/internal/model"
)

// Fetcher is the part of ics.Fetcher the store needs.
type Fetcher interface {
	FetchAll(ctx context.Context, sources []ics.Source) ([]ics.FetchResult, []error)
}

// Snapshot is an immutable view of the loaded data. Callers must not
// modify the slices or maps.
type Snapshot struct {
	// Events are sorted in lane priority order.
	Events      []model.Event
	HolidaySets map[string]model.HolidayRuleSet
	From, To    civil.Date
	UpdatedAt   time.Time
	// Errors are the per-feed failures of the last refresh.
	Errors []error
}

// Store holds the latest Snapshot.
type Store struct {
	cfg     *config.Config
	fetcher Fetcher
	now     func() time.Time

	refreshMu sync.Mutex

	mu   sync.RWMutex
	snap Snapshot
}

// NewStore builds a store over cfg. cfg is treated as read-only.
func NewStore(cfg *config.Config, fetcher Fetcher) *Store {
	return &Store{cfg: cfg, fetcher: fetcher, now: time.Now}
}

// Snapshot returns the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Window returns the date range loaded around today: HorizonMonths months
// back and forward, widened to whole months.
func (s *Store) Window() (civil.Date, civil.Date) {
	today := civil.FromTime(s.now().In(s.cfg.Location())).MonthOf()
	from := today.Add(-s.cfg.HorizonMonths).First().AddDays(-7)
	last := today.Add(s.cfg.HorizonMonths)
	to := civil.Date{Year: last.Year, Month: last.Month, Day: last.Days()}.AddDays(7)
	return from, to
}

// Refresh reloads everything. Feed failures are logged and kept in the
// snapshot. When every attempted feed fails, the refresh fails and the
// previous snapshot keeps serving; only a first load with static events
// falls back to those alone. Concurrent calls are serialized.
func (s *Store) Refresh(ctx context.Context) error {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	from, to := s.Window()

	sets, err := s.cfg.RuleSets(from.Year, to.Year)
	if err != nil {
		return err
	}

	events := s.staticEvents()
	static := len(events)

	var res feedResult
	if len(s.cfg.ICS) > 0 && s.fetcher != nil {
		res = s.loadFeeds(ctx, from, to)
		events = append(events, res.events...)
	}

	if res.attempted > 0 && res.loaded == 0 {
		err := fmt.Errorf("feed: all %d feeds failed: %w", res.attempted, errors.Join(res.errs...))

		s.mu.Lock()
		prev := s.snap
		keep := !prev.UpdatedAt.IsZero() || static == 0
		if keep {
			s.snap.Errors = res.errs
		}
		s.mu.Unlock()

		if keep {
			appLog.Error("feed refresh failed, keeping previous events", err,
				"previous_events", len(prev.Events),
				"previous_update", prev.UpdatedAt,
			)
			return err
		}
		appLog.Warn("feed refresh loaded static events only", "feed_errors", len(res.errs))
	}

	for i := range events {
		events[i] = s.decorate(events[i])
	}
	layout.SortEvents(events)

	s.mu.Lock()
	s.snap = Snapshot{
		Events:      events,
		HolidaySets: sets,
		From:        from,
		To:          to,
		UpdatedAt:   s.now(),
		Errors:      res.errs,
	}
	s.mu.Unlock()

	appLog.Info("feed refresh completed",
		"events", len(events),
		"holiday_sets", len(sets),
		"feeds", res.loaded,
		"feed_errors", len(res.errs),
		"from", from,
		"to", to,
	)
	return nil
}

// staticEvents returns the valid events from the config.
func (s *Store) staticEvents() []model.Event {
	events := make([]model.Event, 0, len(s.cfg.Events))
	for i, ev := range s.cfg.Events {
		if ev.Start.IsZero() || (!ev.End.IsZero() && ev.End.Before(ev.Start)) {
			appLog.Warn("feed: skipping static event with invalid dates", "index", i, "id", ev.ID, "start", ev.Start, "end", ev.End)
			continue
		}
		if ev.ID == "" {
			ev.ID = "config-" + strconv.Itoa(i+1)
		}
		ev.SourceID = "config"
		events = append(events, ev)
	}
	return events
}

// feedResult is the outcome of loading the ICS feeds. attempted counts the
// feeds with a URL, loaded those that were fetched and parsed.
type feedResult struct {
	events    []model.Event
	errs      []error
	attempted int
	loaded    int
}

func (s *Store) loadFeeds(ctx context.Context, from, to civil.Date) feedResult {
	sources := make([]ics.Source, 0, len(s.cfg.ICS))
	for _, c := range s.cfg.ICS {
		if c.URL == "" {
			continue
		}
		sources = append(sources, ics.Source{
			ID:       c.ID,
			URL:      c.URL,
			Name:     c.Name,
			Category: c.Category,
			Color:    c.Color,
		})
	}
	res := feedResult{attempted: len(sources)}
	if len(sources) == 0 {
		return res
	}

	results, errs := s.fetcher.FetchAll(ctx, sources)
	res.errs = errs

	var parsed []ics.ParsedEvent
	for _, fr := range results {
		evs, err := ics.ParseICS(fr.Source, fr.Body)
		if err != nil {
			res.errs = append(res.errs, err)
			continue
		}
		res.loaded++
		parsed = append(parsed, evs...)
	}

	expanded, err := ics.ExpandEvents(parsed, ics.ExpandConfig{
		DisplayLocation: s.cfg.Location(),
		From:            from,
		To:              to,
	})
	if err != nil {
		res.errs = append(res.errs, err)
		res.loaded = 0
		return res
	}
	res.events = expanded.Events
	return res
}

// decorate applies color and category fallbacks.
func (s *Store) decorate(ev model.Event) model.Event {
	if ev.Color == "" {
		ev.Color = s.cfg.CategoryColor(ev.Category)
	} else {
		ev.Color = color.Sanitize(ev.Color)
	}
	if ev.Title == "" {
		ev.Title = "(untitled)"
	}
	if s.cfg.DisableEventLink {
		ev.Permalink = ""
	}
	return ev
}
