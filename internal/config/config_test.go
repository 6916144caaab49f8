package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"eventcal/internal/civil"
	"eventcal/internal/model"
)

func TestLoadFirstRunWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Listen != defaultListen || cfg.PrevMonthFeed != -1 || !cfg.ShowEvents {
		t.Errorf("unexpected defaults: %+v", cfg)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("config not written: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("config perms = %o, want 600", perm)
	}

	again, err := Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(again.HolidaySets) != 3 || again.HolidaySets["all"].Color != "#fddde6" {
		t.Errorf("reloaded holiday sets = %+v", again.HolidaySets)
	}
}

func TestLoadOverridesAndNormalizes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
listen: ":9000"
week_start: monday
months: 0
prev_month_feed: 2
show_events: false
log_level: loud
holidays: [all, office]
holiday_sets:
  office:
    title: Office closed
    special: [2024-12-24, 2024-12-31]
    exceptions: [2024-12-28]
    weekdays: [sat]
    color: "#ABC"
category_colors:
  work: "%23336699"
events:
  - id: retreat
    title: Team retreat
    start: 2024-03-04
    end: 2024-03-06
    category: work
ics:
  - url: https://example.com/a.ics
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Listen != ":9000" {
		t.Errorf("Listen = %q", cfg.Listen)
	}
	if cfg.StartOfWeek() != 1 {
		t.Errorf("StartOfWeek = %d, want 1", cfg.StartOfWeek())
	}
	if cfg.Months != 1 {
		t.Errorf("Months = %d, want 1", cfg.Months)
	}
	if cfg.PrevMonthFeed != 2 || cfg.NextMonthFeed != -1 {
		t.Errorf("feeds = %d/%d", cfg.PrevMonthFeed, cfg.NextMonthFeed)
	}
	if cfg.ShowEvents {
		t.Errorf("ShowEvents = true")
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want fallback info", cfg.LogLevel)
	}
	if _, ok := cfg.HolidaySets["all"]; !ok {
		t.Errorf("default holiday set dropped")
	}
	if cfg.ICS[0].ID != "feed-1" {
		t.Errorf("ICS id = %q", cfg.ICS[0].ID)
	}
	if cfg.CategoryColor("work") != "#336699" || cfg.CategoryColor("none") != model.DefaultEventColor {
		t.Errorf("category colors = %q/%q", cfg.CategoryColor("work"), cfg.CategoryColor("none"))
	}

	if len(cfg.Events) != 1 {
		t.Fatalf("events = %d", len(cfg.Events))
	}
	ev := cfg.Events[0]
	if ev.Start != civil.MustParse("2024-03-04") || ev.End != civil.MustParse("2024-03-06") {
		t.Errorf("event dates = %s..%s", ev.Start, ev.End)
	}

	sets, err := cfg.RuleSets(2024, 2024)
	if err != nil {
		t.Fatalf("RuleSets: %v", err)
	}
	office := sets["office"]
	if office.Color != "#abc" || !office.Weekdays[time.Saturday] {
		t.Errorf("office set = %+v", office)
	}
	tests := []struct {
		date string
		want bool
	}{
		{"2024-12-24", true},
		{"2024-12-21", true},
		{"2024-12-28", false},
		{"2024-12-23", false},
	}
	for _, tt := range tests {
		if got := office.Matches(civil.MustParse(tt.date)); got != tt.want {
			t.Errorf("office.Matches(%s) = %v, want %v", tt.date, got, tt.want)
		}
	}
}

func TestRuleSetsBuiltin(t *testing.T) {
	cfg := DefaultConfig()
	cfg.HolidaySets["public"] = HolidaySetConfig{Title: "Public", Builtin: "us", Color: "#f00"}

	sets, err := cfg.RuleSets(2025, 2025)
	if err != nil {
		t.Fatal(err)
	}
	if !sets["public"].Matches(civil.MustParse("2025-07-04")) {
		t.Errorf("builtin set misses Independence Day")
	}

	cfg.HolidaySets["bad"] = HolidaySetConfig{Weekdays: []string{"someday"}}
	if _, err := cfg.RuleSets(2025, 2025); err == nil {
		t.Errorf("RuleSets accepted an unknown weekday")
	}
}

func TestParseWeekday(t *testing.T) {
	tests := []struct {
		in   string
		want time.Weekday
		ok   bool
	}{
		{"Sunday", time.Sunday, true},
		{"sat", time.Saturday, true},
		{"3", time.Wednesday, true},
		{"7", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseWeekday(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("parseWeekday(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
