// Package holiday provides builtin public holiday calendars that can seed
// the special dates of a holiday rule set.
package holiday

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/ca"
	"github.com/rickar/cal/v2/de"
	"github.com/rickar/cal/v2/gb"
	"github.com/rickar/cal/v2/us"

	"eventcal/internal/civil"
)

var builtins = map[string][]*cal.Holiday{
	"ca": ca.Holidays,
	"de": de.Holidays,
	"gb": gb.Holidays,
	"us": {
		us.NewYear,
		us.MlkDay,
		us.PresidentsDay,
		us.MemorialDay,
		us.Juneteenth,
		us.IndependenceDay,
		us.LaborDay,
		us.ColumbusDay,
		us.VeteransDay,
		us.ThanksgivingDay,
		us.ChristmasDay,
	},
	"us-transit": {
		us.NewYear,
		us.MlkDay,
		us.MemorialDay,
		us.IndependenceDay,
		us.LaborDay,
		us.ThanksgivingDay,
		us.ChristmasDay,
		us.Juneteenth,
	},
}

// Names lists the builtin calendar names.
func Names() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Calendar answers holiday lookups for one builtin calendar.
type Calendar struct {
	name     string
	holidays []*cal.Holiday
}

// New returns the builtin calendar called name.
func New(name string) (*Calendar, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	hs, ok := builtins[key]
	if !ok {
		return nil, fmt.Errorf("holiday: unknown builtin calendar %q (have %s)", name, strings.Join(Names(), ", "))
	}
	return &Calendar{name: key, holidays: hs}, nil
}

func (c *Calendar) Name() string { return c.name }

// Dates returns every holiday date in [fromYear, toYear] keyed by date,
// with the holiday name as value.
func (c *Calendar) Dates(fromYear, toYear int, observed bool) map[civil.Date]string {
	out := make(map[civil.Date]string)
	for year := fromYear; year <= toYear; year++ {
		for _, h := range c.holidays {
			actual, obs := h.Calc(year)
			t := actual
			if observed {
				t = obs
			}
			if t.IsZero() {
				continue
			}
			out[civil.FromTime(t)] = h.Name
		}
	}
	return out
}
