package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"eventcal/internal/civil"
	"eventcal/internal/color"
	"eventcal/internal/holiday"
	"eventcal/internal/model"
)

// NOTE: This file provides the configuration model and full YAML-based
// load/save behavior, including first-run config creation and 0600
// permissions.

// ICSConfig describes a single ICS subscription source.
type ICSConfig struct {
	// URL is the ICS subscription endpoint.
	URL string `yaml:"url" json:"url"`
	// ID is an internal identifier used for de-dup and logging.
	ID string `yaml:"id" json:"id"`
	// Name is a human-friendly label shown in the UI.
	Name string `yaml:"name" json:"name"`
	// Category is assigned to every event of the feed.
	Category string `yaml:"category,omitempty" json:"category,omitempty"`
	// Color overrides the category color for the feed's events.
	Color string `yaml:"color,omitempty" json:"color,omitempty"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the Web UI/API.
// PasswordHash is an argon2id hash as printed by `eventcal hash-password`.
type BasicAuthConfig struct {
	Username     string `yaml:"username" json:"username"`
	PasswordHash string `yaml:"password_hash" json:"-"`
}

// HolidaySetConfig is the YAML form of one holiday rule set.
type HolidaySetConfig struct {
	Title string `yaml:"title" json:"title"`
	// Weekdays are weekday names ("sat", "sunday") or numbers 0..6.
	Weekdays   []string     `yaml:"weekdays,omitempty" json:"weekdays,omitempty"`
	Special    []civil.Date `yaml:"special,omitempty" json:"special,omitempty"`
	Exceptions []civil.Date `yaml:"exceptions,omitempty" json:"exceptions,omitempty"`
	Color      string       `yaml:"color" json:"color"`

	// Builtin adds the dates of a builtin public holiday calendar ("us").
	Builtin  string `yaml:"builtin,omitempty" json:"builtin,omitempty"`
	Observed bool   `yaml:"observed,omitempty" json:"observed,omitempty"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the Web UI and API.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA timezone used to decide "today" (e.g. "Europe/Berlin").
	Timezone string `yaml:"timezone" json:"timezone"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" json:"log_level"`

	// WeekStart is the first column of the grid: a weekday name or 0..6
	// (0=Sunday).
	WeekStart string `yaml:"week_start" json:"week_start"`

	// Months is the number of consecutive months shown per page.
	Months int `yaml:"months" json:"months"`
	// Columns is the number of months laid out side by side.
	Columns int `yaml:"columns" json:"columns"`

	Navigation bool `yaml:"navigation" json:"navigation"`
	// PrevMonthFeed / NextMonthFeed bound navigation around the current
	// month; -1 means unlimited.
	PrevMonthFeed int `yaml:"prev_month_feed" json:"prev_month_feed"`
	NextMonthFeed int `yaml:"next_month_feed" json:"next_month_feed"`

	ShowEvents bool `yaml:"show_events" json:"show_events"`
	// Categories restricts displayed events to these category slugs.
	Categories []string `yaml:"categories" json:"categories"`

	// Holidays is the ordered list of displayed holiday set keys. Later
	// keys win when several sets match the same day.
	Holidays    []string                    `yaml:"holidays" json:"holidays"`
	HolidaySets map[string]HolidaySetConfig `yaml:"holiday_sets" json:"holiday_sets"`

	CategoryColors map[string]string `yaml:"category_colors" json:"category_colors"`

	// Events are static events defined in the config file.
	Events []model.Event `yaml:"events" json:"events"`

	// ICS is the list of subscribed ICS sources.
	ICS []ICSConfig `yaml:"ics" json:"ics"`

	// RefreshCron is a cron-style schedule string (e.g. "*/15 * * * *")
	// used for periodic feed refresh.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// HorizonMonths is how far around the current month recurring events
	// and builtin holidays are expanded.
	HorizonMonths int `yaml:"horizon_months" json:"horizon_months"`

	CacheDir     string `yaml:"cache_dir" json:"cache_dir"`
	SnapshotPath string `yaml:"snapshot_path" json:"snapshot_path"`

	DisableEventLink bool `yaml:"disable_event_link" json:"disable_event_link"`
	// TitleFormat is a Go time layout for month captions ("January 2006").
	TitleFormat string `yaml:"title_format" json:"title_format"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all endpoints
	// except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

const (
	defaultListen  = "127.0.0.1:8080"
	defaultRefresh = "*/15 * * * *"
	defaultTitle   = "January 2006"
)

// DefaultHolidaySets returns the holiday sets written on first run.
func DefaultHolidaySets() map[string]HolidaySetConfig {
	return map[string]HolidaySetConfig{
		"all": {Title: "Regular holiday", Weekdays: []string{"sun", "sat"}, Color: "#fddde6"},
		"am":  {Title: "Morning Off", Color: "#dbf6cc"},
		"pm":  {Title: "Afternoon Off", Color: "#def0fc"},
	}
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:         defaultListen,
		Timezone:       "Local",
		LogLevel:       "info",
		WeekStart:      "sunday",
		Months:         1,
		Columns:        1,
		Navigation:     true,
		PrevMonthFeed:  -1,
		NextMonthFeed:  -1,
		ShowEvents:     true,
		Categories:     []string{},
		Holidays:       []string{"all"},
		HolidaySets:    DefaultHolidaySets(),
		CategoryColors: map[string]string{},
		Events:         []model.Event{},
		ICS:            []ICSConfig{},
		RefreshCron:    defaultRefresh,
		HorizonMonths:  12,
		CacheDir:       "cache",
		SnapshotPath:   "calendar.png",
		TitleFormat:    defaultTitle,
		BasicAuth:      nil,
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = defaultListen
	}
	if c.Timezone == "" {
		c.Timezone = "Local"
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		c.LogLevel = "info"
	}
	if _, ok := parseWeekday(c.WeekStart); !ok {
		// Unknown value; fall back to sunday to avoid surprising layouts.
		c.WeekStart = "sunday"
	}
	if c.Months < 1 {
		c.Months = 1
	}
	if c.Columns < 1 {
		c.Columns = 1
	}
	if c.PrevMonthFeed < -1 {
		c.PrevMonthFeed = -1
	}
	if c.NextMonthFeed < -1 {
		c.NextMonthFeed = -1
	}
	if c.RefreshCron == "" {
		c.RefreshCron = defaultRefresh
	}
	if c.HorizonMonths <= 0 {
		c.HorizonMonths = 12
	}
	if c.TitleFormat == "" {
		c.TitleFormat = defaultTitle
	}
	if c.Categories == nil {
		c.Categories = []string{}
	}
	if c.HolidaySets == nil {
		c.HolidaySets = map[string]HolidaySetConfig{}
	}
	if c.CategoryColors == nil {
		c.CategoryColors = map[string]string{}
	}
	if c.Events == nil {
		c.Events = []model.Event{}
	}
	if c.ICS == nil {
		c.ICS = []ICSConfig{}
	}
	for i := range c.ICS {
		if c.ICS[i].ID == "" {
			c.ICS[i].ID = fmt.Sprintf("feed-%d", i+1)
		}
	}
}

// StartOfWeek returns WeekStart as a weekday number, 0=Sunday.
func (c *Config) StartOfWeek() int {
	wd, ok := parseWeekday(c.WeekStart)
	if !ok {
		return 0
	}
	return int(wd)
}

// Location returns the configured time zone, falling back to time.Local.
func (c *Config) Location() *time.Location {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// CategoryColor returns the sanitized color of a category, or
// model.DefaultEventColor when none is configured.
func (c *Config) CategoryColor(slug string) string {
	if v, ok := c.CategoryColors[slug]; ok && v != "" {
		return color.Sanitize(v)
	}
	return model.DefaultEventColor
}

// RuleSets converts HolidaySets into engine rule sets. Builtin calendars are
// expanded for the years fromYear..toYear.
func (c *Config) RuleSets(fromYear, toYear int) (map[string]model.HolidayRuleSet, error) {
	out := make(map[string]model.HolidayRuleSet, len(c.HolidaySets))
	for key, hc := range c.HolidaySets {
		set := model.HolidayRuleSet{
			Key:        key,
			Title:      hc.Title,
			Special:    make(map[civil.Date]bool, len(hc.Special)),
			Exceptions: make(map[civil.Date]bool, len(hc.Exceptions)),
			Color:      color.Sanitize(hc.Color),
		}
		for _, name := range hc.Weekdays {
			wd, ok := parseWeekday(name)
			if !ok {
				return nil, fmt.Errorf("config: holiday set %q: unknown weekday %q", key, name)
			}
			set.Weekdays[wd] = true
		}
		for _, d := range hc.Special {
			set.Special[d] = true
		}
		for _, d := range hc.Exceptions {
			set.Exceptions[d] = true
		}
		if hc.Builtin != "" {
			cal, err := holiday.New(hc.Builtin)
			if err != nil {
				return nil, fmt.Errorf("config: holiday set %q: %w", key, err)
			}
			for d := range cal.Dates(fromYear, toYear, hc.Observed) {
				set.Special[d] = true
			}
		}
		out[key] = set
	}
	return out, nil
}

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday, "sunday": time.Sunday,
	"mon": time.Monday, "monday": time.Monday,
	"tue": time.Tuesday, "tuesday": time.Tuesday,
	"wed": time.Wednesday, "wednesday": time.Wednesday,
	"thu": time.Thursday, "thursday": time.Thursday,
	"fri": time.Friday, "friday": time.Friday,
	"sat": time.Saturday, "saturday": time.Saturday,
}

func parseWeekday(s string) (time.Weekday, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if wd, ok := weekdayNames[s]; ok {
		return wd, true
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n > 6 {
		return 0, false
	}
	return time.Weekday(n), true
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist:
//   - create parent directory if needed
//   - write a default config with 0600 perms
//   - return the default config
//   - If the file exists:
//   - read YAML over the defaults
//   - normalize
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	// Keys present in the file replace the defaults; holiday_sets and
	// category_colors merge into the default maps.
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.Normalize()

	return cfg, nil
}

// Save writes the given configuration to the specified path.
//
// Implementation details:
//   - Ensures parent directory exists (0700).
//   - Marshals cfg to YAML.
//   - Writes atomically via a temp file + rename.
//   - Ensures final file permissions are 0600.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".eventcal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Save delegates to the package-level Save.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
