package layout

import (
	"errors"
	"testing"
	"time"

	"eventcal/internal/civil"
	"eventcal/internal/model"
)

func TestNavigate(t *testing.T) {
	base := civil.Month{Year: 2024, Month: time.March}
	tests := []struct {
		name        string
		m           civil.Month
		index       int
		prev, next  int
		wantPrev    civil.Month
		wantNext    civil.Month
		prevEnabled bool
		nextEnabled bool
	}{
		{
			name: "prev limit reached", m: civil.Month{Year: 2024, Month: time.January}, index: 1,
			prev: 2, next: 2,
			wantPrev: civil.Month{Year: 2023, Month: time.December}, wantNext: civil.Month{Year: 2024, Month: time.February},
			prevEnabled: false, nextEnabled: true,
		},
		{
			name: "one step inside limits", m: civil.Month{Year: 2024, Month: time.February}, index: 1,
			prev: 2, next: 2,
			wantPrev: civil.Month{Year: 2024, Month: time.January}, wantNext: civil.Month{Year: 2024, Month: time.March},
			prevEnabled: true, nextEnabled: true,
		},
		{
			name: "next limit reached", m: civil.Month{Year: 2024, Month: time.May}, index: 1,
			prev: 2, next: 2,
			wantPrev: civil.Month{Year: 2024, Month: time.April}, wantNext: civil.Month{Year: 2024, Month: time.June},
			prevEnabled: true, nextEnabled: false,
		},
		{
			name: "no limit", m: civil.Month{Year: 2020, Month: time.January}, index: 1,
			prev: NoLimit, next: NoLimit,
			wantPrev: civil.Month{Year: 2019, Month: time.December}, wantNext: civil.Month{Year: 2020, Month: time.February},
			prevEnabled: true, nextEnabled: true,
		},
		{
			name: "zero limit pins the base", m: base, index: 1,
			prev: 0, next: 0,
			wantPrev: civil.Month{Year: 2024, Month: time.February}, wantNext: civil.Month{Year: 2024, Month: time.April},
			prevEnabled: false, nextEnabled: false,
		},
		{
			name: "third month of a sequence advances the first by one", m: civil.Month{Year: 2024, Month: time.May}, index: 3,
			prev: NoLimit, next: NoLimit,
			wantPrev: civil.Month{Year: 2024, Month: time.April}, wantNext: civil.Month{Year: 2024, Month: time.April},
			prevEnabled: true, nextEnabled: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nav := Navigate(tt.m, tt.index, base, tt.prev, tt.next)
			if nav.Prev != tt.wantPrev || nav.Next != tt.wantNext {
				t.Errorf("targets = %s/%s, want %s/%s", nav.Prev, nav.Next, tt.wantPrev, tt.wantNext)
			}
			if nav.PrevEnabled != tt.prevEnabled || nav.NextEnabled != tt.nextEnabled {
				t.Errorf("enabled = %v/%v, want %v/%v", nav.PrevEnabled, nav.NextEnabled, tt.prevEnabled, tt.nextEnabled)
			}
		})
	}
}

func TestRenderMonth(t *testing.T) {
	weekend := weekendSet("weekend")
	cfg := Config{
		Year:        2024,
		Month:       time.February,
		StartOfWeek: 0,
		Events: []model.Event{
			ev("trip", "2024-02-05", "2024-02-07"),
			ev("meeting", "2024-02-06", ""),
			ev("later", "2024-04-01", ""),
		},
		HolidayKeys:   []string{"weekend"},
		HolidaySets:   map[string]model.HolidayRuleSet{"weekend": weekend},
		PrevFeedLimit: NoLimit,
		NextFeedLimit: NoLimit,
		Today:         civil.MustParse("2024-02-14"),
	}

	desc, err := RenderMonth(cfg)
	if err != nil {
		t.Fatalf("RenderMonth: %v", err)
	}
	if desc.Caption != "February 2024" {
		t.Errorf("Caption = %q", desc.Caption)
	}
	if len(desc.Weeks) != 5 {
		t.Fatalf("weeks = %d, want 5", len(desc.Weeks))
	}
	if got := desc.WindowStart(); got != civil.MustParse("2024-01-28") {
		t.Errorf("WindowStart = %s", got)
	}
	if len(desc.Events) != 2 {
		t.Errorf("selected events = %v, want trip and meeting", ids(desc.Events))
	}

	today := 0
	for _, w := range desc.Weeks {
		for _, d := range w.Days {
			if d.IsToday {
				today++
				if d.Date != cfg.Today {
					t.Errorf("today flag on %s", d.Date)
				}
			}
		}
	}
	if today != 1 {
		t.Errorf("today cells = %d, want 1", today)
	}

	sunday := desc.Weeks[0].Days[0]
	if sunday.Holiday() != "weekend" || sunday.InCurrentMonth {
		t.Errorf("first cell = %+v", sunday)
	}

	if desc.MaxLanes[1] != 2 {
		t.Errorf("MaxLanes[1] = %d, want 2", desc.MaxLanes[1])
	}
	for _, l := range desc.Lanes[1] {
		if l.Week != 1 {
			t.Errorf("lane assignment %v has week %d", l, l.Week)
		}
	}
	if desc.MaxLanes[0] != 0 || len(desc.Lanes[0]) != 0 {
		t.Errorf("week 0 should have no lanes, got %d", desc.MaxLanes[0])
	}
}

func TestRenderMonthsSequence(t *testing.T) {
	cfg := Config{
		Year:          2024,
		Month:         time.November,
		MonthCount:    3,
		StartOfWeek:   1,
		PrevFeedLimit: 1,
		NextFeedLimit: 1,
		Today:         civil.MustParse("2024-11-01"),
		Formatter:     EnglishFormatter{Layout: "2006/01"},
	}
	months, err := RenderMonths(cfg)
	if err != nil {
		t.Fatalf("RenderMonths: %v", err)
	}
	want := []string{"2024/11", "2024/12", "2025/01"}
	if len(months) != len(want) {
		t.Fatalf("got %d months", len(months))
	}
	for i, m := range months {
		if m.Caption != want[i] || m.Index != i+1 {
			t.Errorf("month %d = %q (index %d), want %q", i, m.Caption, m.Index, want[i])
		}
		if m.Weekdays[0] != time.Monday {
			t.Errorf("month %d starts on %s", i, m.Weekdays[0])
		}
	}
	if months[0].Nav.PrevEnabled != true || months[2].Nav.NextEnabled != false {
		t.Errorf("nav = %+v / %+v", months[0].Nav, months[2].Nav)
	}
}

func TestRenderMonthsHideEvents(t *testing.T) {
	cfg := Config{
		Year:       2024,
		Month:      time.January,
		Events:     []model.Event{ev("a", "2024-01-10", "")},
		HideEvents: true,
		Today:      civil.MustParse("2024-01-01"),
	}
	desc, err := RenderMonth(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(desc.Events) != 0 {
		t.Errorf("events shown with HideEvents: %v", ids(desc.Events))
	}
}

func TestRenderMonthInvalidEvent(t *testing.T) {
	cfg := Config{
		Year:   2024,
		Month:  time.January,
		Events: []model.Event{ev("bad", "2024-01-10", "2024-01-09")},
		Today:  civil.MustParse("2024-01-01"),
	}
	_, err := RenderMonth(cfg)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestEnglishFormatter(t *testing.T) {
	f := EnglishFormatter{}
	if got := f.WeekdayInitial(time.Thursday); got != "T" {
		t.Errorf("WeekdayInitial(Thursday) = %q", got)
	}
	if got := (EnglishFormatter{Abbrev: true}).WeekdayInitial(time.Thursday); got != "Thu" {
		t.Errorf("abbrev WeekdayInitial(Thursday) = %q", got)
	}
}
