package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"eventcal/internal/capture"
	appLog "eventcal/internal/log"
	"eventcal/internal/web"
)

type snapshotOptions struct {
	path   string
	query  url.Values
	out    string
	width  int
	height int
}

func newSnapshotCmd(flags *rootFlags) *cobra.Command {
	var (
		opts   snapshotOptions
		month  string
		months int
		simple bool
	)

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Write a PNG of the calendar page using headless Chromium",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(flags)
			if err != nil {
				return err
			}
			if err := a.store.Refresh(cmd.Context()); err != nil {
				appLog.Error("feed refresh failed; capturing static events only", err)
			}

			opts.query = url.Values{}
			if month != "" {
				opts.query.Set("month", month)
			}
			if months > 0 {
				opts.query.Set("months", strconv.Itoa(months))
			}
			if simple {
				opts.path = "/simple"
			}
			return captureLocal(cmd.Context(), a, opts)
		},
	}

	cmd.Flags().StringVar(&month, "month", "", "First month (YYYY-MM), default current month")
	cmd.Flags().IntVar(&months, "months", 0, "Number of months (default from config)")
	cmd.Flags().BoolVar(&simple, "simple", false, "Capture the simple calendar")
	cmd.Flags().StringVar(&opts.out, "out", "", "Output PNG path (default snapshot_path)")
	cmd.Flags().IntVar(&opts.width, "width", capture.DefaultWidth, "Viewport width in pixels")
	cmd.Flags().IntVar(&opts.height, "height", capture.DefaultHeight, "Viewport height in pixels")
	return cmd
}

// captureLocal serves the calendar on a loopback port for the duration of
// one capture, so snapshots work without a running server and without
// basic auth credentials.
func captureLocal(ctx context.Context, a *app, opts snapshotOptions) error {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return err
	}
	srv := &http.Server{
		Handler:           web.NewServer(a.cfg, a.store).Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Error("snapshot server failed", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	path := opts.path
	if path == "" {
		path = "/calendar"
	}
	target := url.URL{Scheme: "http", Host: ln.Addr().String(), Path: path, RawQuery: opts.query.Encode()}

	out := opts.out
	if out == "" {
		out = a.cfg.SnapshotPath
	}
	return capture.CalendarPNG(ctx, capture.Options{
		URL:        target.String(),
		OutputPath: out,
		Width:      opts.width,
		Height:     opts.height,
	})
}
