package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"eventcal/internal/feed"
	appLog "eventcal/internal/log"
	"eventcal/internal/web"
)

func newServeCmd(flags *rootFlags) *cobra.Command {
	var (
		listen   string
		once     bool
		snapshot bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the calendar pages and refresh feeds on the configured schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(flags)
			if err != nil {
				return err
			}
			// CLI --listen overrides config file listen if provided.
			if listen != "" {
				a.cfg.Listen = listen
			}
			ctx := cmd.Context()

			if err := a.store.Refresh(ctx); err != nil {
				if once {
					return err
				}
				appLog.Error("initial feed refresh failed; serving static events only", err)
			}

			if once {
				snap := a.store.Snapshot()
				fmt.Fprintf(cmd.OutOrStdout(), "loaded %d events (%s..%s), %d feed errors\n",
					len(snap.Events), snap.From, snap.To, len(snap.Errors))
				for _, e := range snap.Errors {
					fmt.Fprintf(cmd.OutOrStdout(), "  %v\n", e)
				}
				return nil
			}

			sched, err := feed.NewScheduler(a.cfg.RefreshCron, a.store)
			if err != nil {
				return err
			}
			if snapshot {
				sched.AfterRefresh(func(ctx context.Context) {
					if err := captureLocal(ctx, a, snapshotOptions{}); err != nil {
						appLog.Error("scheduled snapshot failed", err)
					}
				})
			}
			go sched.Run(ctx)

			return web.StartServer(ctx, a.cfg, a.store)
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "HTTP listen address (overrides config if set)")
	cmd.Flags().BoolVar(&once, "once", false, "Refresh feeds once, print a summary and exit")
	cmd.Flags().BoolVar(&snapshot, "snapshot", false, "Write snapshot_path after every scheduled refresh")
	return cmd
}
