package render

import (
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"eventcal/internal/color"
	"eventcal/internal/model"
)

// textCell is the width of one day column in terminal output.
const textCell = 4

// Text renders months for a terminal. Colors are only emitted when w is a
// color capable terminal.
type Text struct{}

func (Text) ContentType() string { return "text/plain; charset=utf-8" }

func (Text) Render(w io.Writer, p Page) error {
	_, err := io.WriteString(w, TextString(lipgloss.NewRenderer(w), p))
	return err
}

// TextString renders p with the styles of r.
func TextString(r *lipgloss.Renderer, p Page) string {
	f := p.formatter()
	captionStyle := r.NewStyle().Bold(true).Width(7 * textCell).Align(lipgloss.Center)
	cellStyle := r.NewStyle().Inline(true).Width(textCell).Align(lipgloss.Right)
	otherStyle := cellStyle.Foreground(lipgloss.Color("#6C757D"))

	var b strings.Builder
	for i, m := range p.Months {
		if i > 0 {
			b.WriteByte('\n')
		}
		caption := m.Caption
		if caption == "" {
			caption = f.Caption(m.Month)
		}
		b.WriteString(captionStyle.Render(caption))
		b.WriteByte('\n')
		for _, wd := range m.Weekdays {
			b.WriteString(cellStyle.Render(f.WeekdayInitial(wd)))
		}
		b.WriteByte('\n')

		for week, row := range m.Weeks {
			for _, d := range row.Days {
				st := cellStyle
				if !d.InCurrentMonth {
					st = otherStyle
				}
				if set, ok := p.HolidaySets[d.Holiday()]; ok {
					if bg := color.Sanitize(set.Color); bg != "transparent" {
						st = st.Background(lipgloss.Color(bg)).Foreground(lipgloss.Color(color.EventFontColor(bg)))
					}
				}
				if d.IsToday {
					st = st.Underline(true)
				}
				b.WriteString(st.Render(strconv.Itoa(d.Date.Day)))
			}
			b.WriteByte('\n')

			if week < len(m.Lanes) {
				for _, lane := range laneRows(p, m, week) {
					writeTextLane(&b, r, lane)
				}
			}
		}
	}

	if l := legend(p); len(l) > 0 {
		b.WriteByte('\n')
		for _, entry := range l {
			mark := r.NewStyle()
			if bg := color.Sanitize(entry.Color); bg != "transparent" {
				mark = mark.Background(lipgloss.Color(bg))
			}
			b.WriteString(mark.Render("  "))
			b.WriteByte(' ')
			b.WriteString(entry.Title)
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func writeTextLane(b *strings.Builder, r *lipgloss.Renderer, lane []laneCell) {
	for _, c := range lane {
		width := c.Span * textCell
		if c.Empty {
			b.WriteString(strings.Repeat(" ", width))
			continue
		}
		st := r.NewStyle().Inline(true).Width(width).MaxWidth(width)
		if bg, fg, ok := textLaneColors(c); ok {
			st = st.Background(lipgloss.Color(bg)).Foreground(lipgloss.Color(fg))
		}
		b.WriteString(st.Render(" " + c.Label))
	}
	b.WriteByte('\n')
}

// pastTint is how far finished events fade toward white in the terminal.
const pastTint = 0.6

// textLaneColors returns the block colors of a lane cell in terminal output.
func textLaneColors(c laneCell) (bg, fg string, ok bool) {
	if c.bg == "" || c.bg == color.Transparent {
		return "", "", false
	}
	if !c.past {
		return c.bg, c.fg, true
	}
	bg = color.Blend(c.bg, "#ffffff", pastTint)
	return bg, color.EventFontColor(bg), true
}

// Summary is a one-line description of a laid out month, for logs.
func Summary(m model.MonthDescriptor) string {
	lanes := 0
	for _, n := range m.MaxLanes {
		lanes += n
	}
	return m.Month.String() + " weeks=" + strconv.Itoa(len(m.Weeks)) +
		" events=" + strconv.Itoa(len(m.Events)) + " lanes=" + strconv.Itoa(lanes)
}
