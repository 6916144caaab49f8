package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"eventcal/internal/calendar"
	"eventcal/internal/civil"
	appLog "eventcal/internal/log"
	"eventcal/internal/render"
	"eventcal/internal/tui"
)

type viewFlags struct {
	month  string
	months int
	simple bool
}

func (f *viewFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.month, "month", "", "First month (YYYY-MM), default current month")
	cmd.Flags().IntVar(&f.months, "months", 0, "Number of months (default from config)")
	cmd.Flags().BoolVar(&f.simple, "simple", false, "Hide events, show the grid and holidays only")
}

// query builds the month request for the CLI views.
func (f *viewFlags) query(a *app, today civil.Date) (render.Query, error) {
	q := calendar.DefaultQuery(a.cfg, today)
	if f.month != "" {
		m, err := civil.ParseMonth(f.month)
		if err != nil {
			return render.Query{}, err
		}
		q.Month = m.Clamp()
		q.Base = q.Month
	}
	if f.months > 0 {
		q.Months = f.months
	}
	if f.simple {
		q.Variant = calendar.VariantSimple
	}
	return q, nil
}

// refreshWithSpinner loads the feeds while a spinner runs on stderr.
func refreshWithSpinner(ctx context.Context, a *app) {
	if len(a.cfg.ICS) == 0 {
		if err := a.store.Refresh(ctx); err != nil {
			appLog.Error("feed refresh failed", err)
		}
		return
	}

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(fmt.Sprintf("Fetching %d feeds...", len(a.cfg.ICS))),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetWidth(20),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionClearOnFinish(),
	)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			default:
				_ = bar.Add(1)
				time.Sleep(100 * time.Millisecond)
			}
		}
	}()

	err := a.store.Refresh(ctx)
	close(done)
	_ = bar.Finish()
	if err != nil {
		appLog.Error("feed refresh failed", err)
	}
}

func newRenderCmd(flags *rootFlags) *cobra.Command {
	var vf viewFlags

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Print months to the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(flags)
			if err != nil {
				return err
			}
			refreshWithSpinner(cmd.Context(), a)

			today := civil.Today(a.cfg.Location())
			q, err := vf.query(a, today)
			if err != nil {
				return err
			}
			page, err := calendar.Build(a.cfg, a.store.Snapshot(), q, today)
			if err != nil {
				return err
			}
			for _, m := range page.Months {
				appLog.Debug("rendered month", "summary", render.Summary(m))
			}
			return render.Text{}.Render(cmd.OutOrStdout(), page)
		},
	}
	vf.register(cmd)
	return cmd
}

func newBrowseCmd(flags *rootFlags) *cobra.Command {
	var vf viewFlags

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse months interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(flags)
			if err != nil {
				return err
			}
			refreshWithSpinner(cmd.Context(), a)

			today := civil.Today(a.cfg.Location())
			q, err := vf.query(a, today)
			if err != nil {
				return err
			}
			load := func(first civil.Month) (render.Page, error) {
				next := q
				next.Month = first
				return calendar.Build(a.cfg, a.store.Snapshot(), next, today)
			}
			return tui.Run(load, q.Month)
		},
	}
	vf.register(cmd)
	return cmd
}
