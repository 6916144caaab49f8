package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"eventcal/internal/config"
	"eventcal/internal/feed"
	"eventcal/internal/ics"
	appLog "eventcal/internal/log"
)

const version = "0.3.0"

// rootFlags holds the persistent CLI flags shared by every subcommand.
type rootFlags struct {
	configPath string
	logLevel   string
}

func main() {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "eventcal",
		Short:         "Month calendars with holidays and multi-day event lanes",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", "eventcal.yaml", "Path to config file")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level (overrides config if set)")

	root.AddCommand(
		newServeCmd(flags),
		newRenderCmd(flags),
		newBrowseCmd(flags),
		newSnapshotCmd(flags),
		newHolidaysCmd(),
		newHashPasswordCmd(),
	)

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		appLog.Error("eventcal failed", err)
		os.Exit(1)
	}
}

// app bundles the loaded configuration and the feed store built on it.
type app struct {
	cfg   *config.Config
	store *feed.Store
}

func loadApp(flags *rootFlags) (*app, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		return nil, err
	}

	level := cfg.LogLevel
	if flags.logLevel != "" {
		level = flags.logLevel
	}
	appLog.SetLevel(appLog.ParseLevel(level))

	appLog.Info("effective config",
		"config_path", flags.configPath,
		"listen", cfg.Listen,
		"timezone", cfg.Timezone,
		"week_start", cfg.WeekStart,
		"months", cfg.Months,
		"refresh", cfg.RefreshCron,
		"horizon_months", cfg.HorizonMonths,
		"ics_count", len(cfg.ICS),
		"static_events", len(cfg.Events),
		"holidays", cfg.Holidays,
	)

	return &app{
		cfg:   cfg,
		store: feed.NewStore(cfg, ics.NewFetcher(cfg.CacheDir)),
	}, nil
}
