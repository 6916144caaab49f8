// Package tui provides a Bubble Tea month browser for the terminal.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"eventcal/internal/civil"
	"eventcal/internal/render"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#4ECDC4")).
			MarginBottom(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))
)

// Loader lays out the page whose first month is first.
type Loader func(first civil.Month) (render.Page, error)

type keyMap struct {
	Prev  key.Binding
	Next  key.Binding
	Today key.Binding
	Quit  key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Prev, k.Next, k.Today, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var keys = keyMap{
	Prev: key.NewBinding(
		key.WithKeys("left", "h", "p"),
		key.WithHelp("←/h", "previous month"),
	),
	Next: key.NewBinding(
		key.WithKeys("right", "l", "n"),
		key.WithHelp("→/l", "next month"),
	),
	Today: key.NewBinding(
		key.WithKeys("t", "home"),
		key.WithHelp("t", "back to start"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "esc", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// Model is the Bubble Tea model of the browser.
type Model struct {
	load  Loader
	start civil.Month
	first civil.Month

	page    render.Page
	loaded  bool
	loading bool
	err     error

	help  help.Model
	width int
}

// NewModel builds a browser starting at start.
func NewModel(load Loader, start civil.Month) Model {
	return Model{
		load:    load,
		start:   start,
		first:   start,
		loading: true,
		help:    help.New(),
	}
}

type pageMsg struct {
	first civil.Month
	page  render.Page
	err   error
}

func (m Model) fetch(first civil.Month) tea.Cmd {
	load := m.load
	return func() tea.Msg {
		p, err := load(first)
		return pageMsg{first: first, page: p, err: err}
	}
}

func (m Model) Init() tea.Cmd {
	return m.fetch(m.first)
}

// First returns the first month currently shown.
func (m Model) First() civil.Month { return m.first }

// canPrev and canNext follow the navigation of the first and last shown
// month, the same buttons the HTML calendar renders.
func (m Model) canPrev() (civil.Month, bool) {
	if !m.loaded || m.loading || len(m.page.Months) == 0 {
		return civil.Month{}, false
	}
	nav := m.page.Months[0].Nav
	return nav.Prev, nav.PrevEnabled
}

func (m Model) canNext() (civil.Month, bool) {
	if !m.loaded || m.loading || len(m.page.Months) == 0 {
		return civil.Month{}, false
	}
	nav := m.page.Months[len(m.page.Months)-1].Nav
	return nav.Next, nav.NextEnabled
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case pageMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.first = msg.first
		m.page = msg.page
		m.loaded = true
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Prev):
			if target, ok := m.canPrev(); ok {
				m.loading = true
				return m, m.fetch(target)
			}
		case key.Matches(msg, keys.Next):
			if target, ok := m.canNext(); ok {
				m.loading = true
				return m, m.fetch(target)
			}
		case key.Matches(msg, keys.Today):
			if m.first != m.start && !m.loading {
				m.loading = true
				return m, m.fetch(m.start)
			}
		}
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("eventcal"))
	b.WriteString("\n")

	switch {
	case !m.loaded && m.err == nil:
		b.WriteString(dimStyle.Render("loading…"))
		b.WriteString("\n")
	case m.loaded:
		b.WriteString(render.TextString(lipgloss.DefaultRenderer(), m.page))
	}
	if m.err != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("error: %v", m.err)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(keys))
	return b.String()
}

// Run starts the browser on the terminal and blocks until the user quits.
func Run(load Loader, start civil.Month) error {
	p := tea.NewProgram(NewModel(load, start), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
