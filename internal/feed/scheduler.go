package feed

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	appLog "eventcal/internal/log"
)

// Scheduler refreshes a Store on a cron schedule.
type Scheduler struct {
	cron  *cron.Cron
	store *Store
	after []func(context.Context)
}

// NewScheduler parses spec (standard 5-field cron syntax or descriptors
// such as "@hourly") and prepares a scheduler for store.
func NewScheduler(spec string, store *Store) (*Scheduler, error) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	s := &Scheduler{cron: c, store: store}

	if _, err := c.AddFunc(spec, s.run); err != nil {
		return nil, fmt.Errorf("feed: invalid refresh schedule %q: %w", spec, err)
	}
	return s, nil
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	if err := s.store.Refresh(ctx); err != nil {
		appLog.Error("scheduled feed refresh failed", err)
		return
	}
	for _, fn := range s.after {
		fn(ctx)
	}
}

// AfterRefresh registers fn to run after every successful scheduled
// refresh, within the same timeout. Call before Run.
func (s *Scheduler) AfterRefresh(fn func(context.Context)) {
	s.after = append(s.after, fn)
}

// Next returns the next scheduled refresh time.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

// Run starts the schedule and blocks until ctx is cancelled, then waits
// for a running refresh to finish.
func (s *Scheduler) Run(ctx context.Context) {
	s.cron.Start()
	appLog.Info("feed scheduler started", "next", s.Next().Format(time.RFC3339))
	<-ctx.Done()
	<-s.cron.Stop().Done()
	appLog.Info("feed scheduler stopped")
}
