package layout

import (
	"eventcal/internal/civil"
	"eventcal/internal/model"
)

// Placeholder marks a lane slot that is kept free so an event can stay on
// the same lane for every day it covers in the week.
const Placeholder = -1

// WeekLayout is the lane layout of a single week.
type WeekLayout struct {
	// Slots holds, per day column, the event indexes by lane. Placeholder
	// entries are reserved slots; lanes past the end of a column are empty.
	Slots [7][]int
	// Lanes is the number of lane rows needed for the week.
	Lanes int
	// Blocks are the visual event blocks ordered by lane, then column.
	Blocks []model.LaneAssignment
}

// AssignLanes lays out events over one week of dates.
//
// Each day column lists the events covering it in priority (input) order.
// Columns are then walked left to right: whenever an event sits higher in a
// column than it does anywhere else in the week, a placeholder is inserted
// above it so it drops to its deepest position. After this pass every event
// occupies a single lane for the whole week. Blocks are read off lane by
// lane, merging consecutive columns holding the same event into one span.
func AssignLanes(week []civil.Date, events []model.Event) WeekLayout {
	var wl WeekLayout
	if len(events) == 0 {
		return wl
	}

	for col := 0; col < 7 && col < len(week); col++ {
		day := week[col]
		for i, ev := range events {
			if ev.Covers(day) {
				wl.Slots[col] = append(wl.Slots[col], i)
			}
		}
	}

	for col := 0; col < 7; col++ {
		for line := 0; line < len(wl.Slots[col]); line++ {
			idx := wl.Slots[col][line]
			if idx == Placeholder {
				continue
			}
			if deepestLine(&wl.Slots, idx) > line {
				wl.Slots[col] = insertAt(wl.Slots[col], line, Placeholder)
			}
		}
	}

	for col := 0; col < 7; col++ {
		if n := len(wl.Slots[col]); n > wl.Lanes {
			wl.Lanes = n
		}
	}

	for line := 0; line < wl.Lanes; line++ {
		for col := 0; col < 7; col++ {
			if line >= len(wl.Slots[col]) {
				continue
			}
			idx := wl.Slots[col][line]
			if idx == Placeholder {
				continue
			}
			span := 1
			for next := col + 1; next < 7; next++ {
				if line >= len(wl.Slots[next]) || wl.Slots[next][line] != idx {
					break
				}
				span++
			}
			wl.Blocks = append(wl.Blocks, model.LaneAssignment{
				Lane:       line,
				EventIndex: idx,
				EventID:    events[idx].ID,
				Start:      col,
				Span:       span,
			})
			col += span - 1
		}
	}

	return wl
}

// deepestLine returns the largest lane position of idx in any column.
func deepestLine(slots *[7][]int, idx int) int {
	deepest := -1
	for col := range slots {
		for line, v := range slots[col] {
			if v == idx && line > deepest {
				deepest = line
			}
		}
	}
	return deepest
}

func insertAt(s []int, pos, v int) []int {
	s = append(s, 0)
	copy(s[pos+1:], s[pos:])
	s[pos] = v
	return s
}
