package layout

import (
	"testing"

	"eventcal/internal/civil"
	"eventcal/internal/model"
)

func ev(id, start, end string) model.Event {
	e := model.Event{ID: id, Title: id, Start: civil.MustParse(start), AllDay: true}
	if end != "" {
		e.End = civil.MustParse(end)
	}
	return e
}

func ids(events []model.Event) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.ID
	}
	return out
}

func TestSelectEvents(t *testing.T) {
	events := []model.Event{
		ev("before", "2024-01-01", "2024-01-27"),
		ev("edge-start", "2024-01-20", "2024-01-28"),
		ev("inside", "2024-02-10", ""),
		ev("spanning", "2023-12-01", "2024-04-01"),
		ev("edge-end", "2024-03-02", "2024-03-05"),
		ev("after", "2024-03-03", ""),
	}
	got := ids(SelectEvents(events, civil.MustParse("2024-01-28"), civil.MustParse("2024-03-02")))
	want := []string{"edge-start", "inside", "spanning", "edge-end"}
	if len(got) != len(want) {
		t.Fatalf("SelectEvents = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("SelectEvents[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSortEvents(t *testing.T) {
	late := ev("late", "2024-01-02", "")
	late.AllDay = false
	late.StartMinute = 600
	early := ev("early", "2024-01-02", "")
	early.AllDay = false
	early.StartMinute = 540

	events := []model.Event{
		ev("short", "2024-01-01", "2024-01-02"),
		late,
		ev("long", "2024-01-01", "2024-01-05"),
		early,
		ev("first", "2023-12-31", ""),
	}
	SortEvents(events)

	want := []string{"first", "long", "short", "early", "late"}
	for i, id := range ids(events) {
		if id != want[i] {
			t.Errorf("SortEvents order = %v, want %v", ids(events), want)
			break
		}
	}
}

func TestFilterCategories(t *testing.T) {
	a := ev("a", "2024-01-01", "")
	a.Category = "work"
	b := ev("b", "2024-01-01", "")
	b.Category = "home"
	c := ev("c", "2024-01-01", "")

	events := []model.Event{a, b, c}
	if got := FilterCategories(events, nil); len(got) != 3 {
		t.Errorf("FilterCategories(nil) kept %d, want 3", len(got))
	}
	got := FilterCategories(events, []string{"home"})
	if len(got) != 1 || got[0].ID != "b" {
		t.Errorf("FilterCategories(home) = %v", ids(got))
	}
}
