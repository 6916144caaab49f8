package holiday

import (
	"testing"

	"eventcal/internal/civil"
)

func TestNewUnknown(t *testing.T) {
	if _, err := New("atlantis"); err == nil {
		t.Fatal("New(atlantis) succeeded")
	}
}

func TestDates(t *testing.T) {
	c, err := New("US")
	if err != nil {
		t.Fatal(err)
	}
	dates := c.Dates(2024, 2024, false)

	tests := []struct {
		date string
		want bool
	}{
		{"2024-01-01", true},
		{"2024-01-15", true}, // third Monday of January
		{"2024-07-04", true},
		{"2024-11-28", true},
		{"2024-12-25", true},
		{"2024-03-01", false},
	}
	for _, tt := range tests {
		if _, ok := dates[civil.MustParse(tt.date)]; ok != tt.want {
			t.Errorf("Dates(2024)[%s] = %v, want %v", tt.date, ok, tt.want)
		}
	}
}

func TestDatesObserved(t *testing.T) {
	c, err := New("us")
	if err != nil {
		t.Fatal(err)
	}
	// Independence Day 2026 falls on a Saturday.
	observed := c.Dates(2026, 2026, true)
	if _, ok := observed[civil.MustParse("2026-07-03")]; !ok {
		t.Errorf("observed dates miss 2026-07-03")
	}
	if _, ok := observed[civil.MustParse("2026-07-04")]; ok {
		t.Errorf("observed dates contain 2026-07-04")
	}
}

func TestBuiltinCalendars(t *testing.T) {
	tests := []struct {
		name string
		date string
		want bool
	}{
		{"ca", "2024-07-01", true},  // Canada Day
		{"de", "2024-10-03", true},  // Tag der Deutschen Einheit
		{"gb", "2024-12-26", true},  // Boxing Day
		{"gb", "2024-07-04", false},
		{"us-transit", "2024-12-25", true},
		{"us-transit", "2024-10-14", false}, // Columbus Day is not a transit holiday
	}
	for _, tt := range tests {
		t.Run(tt.name+"/"+tt.date, func(t *testing.T) {
			c, err := New(tt.name)
			if err != nil {
				t.Fatal(err)
			}
			if _, ok := c.Dates(2024, 2024, false)[civil.MustParse(tt.date)]; ok != tt.want {
				t.Errorf("%s has %s = %v, want %v", c.Name(), tt.date, ok, tt.want)
			}
		})
	}
}

func TestNames(t *testing.T) {
	want := []string{"ca", "de", "gb", "us", "us-transit"}
	got := Names()
	if len(got) != len(want) {
		t.Fatalf("Names = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Names[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
