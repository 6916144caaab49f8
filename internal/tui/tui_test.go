package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"eventcal/internal/civil"
	"eventcal/internal/layout"
	"eventcal/internal/render"
)

var base = civil.Month{Year: 2024, Month: time.March}

// limitedLoader allows one month back and one forward around base.
func limitedLoader(calls *[]civil.Month) Loader {
	return func(first civil.Month) (render.Page, error) {
		*calls = append(*calls, first)
		months, err := layout.RenderMonths(layout.Config{
			Year:          first.Year,
			Month:         first.Month,
			MonthCount:    1,
			Base:          base,
			PrevFeedLimit: 1,
			NextFeedLimit: 1,
			Today:         civil.MustParse("2024-03-15"),
		})
		return render.Page{Months: months}, err
	}
}

// step feeds msg to m and runs the returned command once.
func step(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func settle(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	if cmd == nil {
		return m
	}
	m, _ = step(t, m, cmd())
	return m
}

func TestBrowseRespectsLimits(t *testing.T) {
	var calls []civil.Month
	m := NewModel(limitedLoader(&calls), base)
	m = settle(t, m, m.Init())
	if m.First() != base || !m.loaded {
		t.Fatalf("initial page not loaded: first=%s", m.First())
	}

	left := tea.KeyMsg{Type: tea.KeyLeft}
	right := tea.KeyMsg{Type: tea.KeyRight}

	m, cmd := step(t, m, left)
	m = settle(t, m, cmd)
	if m.First() != base.Add(-1) {
		t.Fatalf("after left first = %s", m.First())
	}

	// February is the previous limit.
	if _, cmd = step(t, m, left); cmd != nil {
		t.Errorf("left at the limit returned a command")
	}

	for i := 0; i < 2; i++ {
		m, cmd = step(t, m, right)
		m = settle(t, m, cmd)
	}
	if m.First() != base.Add(1) {
		t.Fatalf("after two rights first = %s", m.First())
	}
	if _, cmd = step(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'l'}}); cmd != nil {
		t.Errorf("next at the limit returned a command")
	}

	m, cmd = step(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'t'}})
	m = settle(t, m, cmd)
	if m.First() != base {
		t.Errorf("today key moved to %s", m.First())
	}
	if len(calls) != 5 {
		t.Errorf("loader calls = %v", calls)
	}
}

func TestBrowseKeepsPageOnError(t *testing.T) {
	fail := false
	var calls []civil.Month
	ok := limitedLoader(&calls)
	load := func(first civil.Month) (render.Page, error) {
		if fail {
			return render.Page{}, errors.New("feed store empty")
		}
		return ok(first)
	}

	m := NewModel(load, base)
	m = settle(t, m, m.Init())
	fail = true
	m, cmd := step(t, m, tea.KeyMsg{Type: tea.KeyRight})
	m = settle(t, m, cmd)

	if m.First() != base {
		t.Errorf("failed load moved to %s", m.First())
	}
	view := m.View()
	if !strings.Contains(view, "feed store empty") || !strings.Contains(view, "March 2024") {
		t.Errorf("view lacks error or previous page:\n%s", view)
	}
}

func TestQuit(t *testing.T) {
	var calls []civil.Month
	m := NewModel(limitedLoader(&calls), base)
	_, cmd := step(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatalf("quit returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Errorf("quit command did not quit")
	}
}
