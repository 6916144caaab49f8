package main

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"eventcal/internal/civil"
	"eventcal/internal/holiday"
)

func newHolidaysCmd() *cobra.Command {
	var (
		year     int
		observed bool
	)

	cmd := &cobra.Command{
		Use:   "holidays [calendar]",
		Short: "List builtin holiday calendars, or the dates of one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				for _, name := range holiday.Names() {
					fmt.Fprintln(out, name)
				}
				return nil
			}

			cal, err := holiday.New(args[0])
			if err != nil {
				return err
			}
			if year == 0 {
				year = time.Now().Year()
			}
			dates := cal.Dates(year, year, observed)
			keys := make([]civil.Date, 0, len(dates))
			for d := range dates {
				keys = append(keys, d)
			}
			sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })
			for _, d := range keys {
				fmt.Fprintf(out, "%s  %-3s  %s\n", d, d.Weekday().String()[:3], dates[d])
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&year, "year", 0, "Year to list (default current year)")
	cmd.Flags().BoolVar(&observed, "observed", false, "List observed dates instead of actual dates")
	return cmd
}
