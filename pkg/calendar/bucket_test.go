package calendar

import (
	"testing"
	"time"

	"github.com/delat04/agda/pkg/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func timedEvent(id string, start time.Time, duration time.Duration) event.Event {
	return event.Event{
		ID:        id,
		Title:     "Event " + id,
		Start:     start,
		End:       start.Add(duration),
		Draggable: true,
	}
}

func TestAssignToCells(t *testing.T) {
	now := time.Date(2025, time.April, 10, 12, 0, 0, 0, time.UTC)
	reference := day(2025, time.April, 15)

	t.Run("every valid event lands in exactly one cell", func(t *testing.T) {
		cells := BuildMonthGrid(reference, now)
		events := []event.Event{
			timedEvent("a", time.Date(2025, time.April, 3, 10, 0, 0, 0, time.UTC), time.Hour),
			timedEvent("b", time.Date(2025, time.April, 3, 14, 0, 0, 0, time.UTC), time.Hour),
			timedEvent("c", time.Date(2025, time.March, 31, 9, 0, 0, 0, time.UTC), time.Hour), // leading adjacent day
			timedEvent("d", time.Date(2025, time.April, 20, 18, 30, 0, 0, time.UTC), 2*time.Hour),
		}

		warnings := AssignToCells(cells, events)

		assert.Empty(t, warnings)
		placed := map[string]int{}
		for _, cell := range cells {
			for _, e := range cell.Events {
				placed[e.ID]++
			}
		}
		assert.Equal(t, map[string]int{"a": 1, "b": 1, "c": 1, "d": 1}, placed)
	})

	t.Run("events within a cell are sorted by start, then id", func(t *testing.T) {
		cells := BuildMonthGrid(reference, now)
		sameStart := time.Date(2025, time.April, 3, 10, 0, 0, 0, time.UTC)
		events := []event.Event{
			timedEvent("late", time.Date(2025, time.April, 3, 16, 0, 0, 0, time.UTC), time.Hour),
			timedEvent("z-twin", sameStart, time.Hour),
			timedEvent("a-twin", sameStart, time.Hour),
		}

		AssignToCells(cells, events)

		var target *GridCell
		for i := range cells {
			if cells[i].Date.Equal(day(2025, time.April, 3)) {
				target = &cells[i]
			}
		}
		require.NotNil(t, target)
		require.Len(t, target.Events, 3)
		assert.Equal(t, "a-twin", target.Events[0].ID)
		assert.Equal(t, "z-twin", target.Events[1].ID)
		assert.Equal(t, "late", target.Events[2].ID)
	})

	t.Run("event outside the grid window is simply not shown", func(t *testing.T) {
		cells := BuildMonthGrid(reference, now)
		events := []event.Event{
			timedEvent("far", time.Date(2025, time.August, 1, 10, 0, 0, 0, time.UTC), time.Hour),
		}

		warnings := AssignToCells(cells, events)

		assert.Empty(t, warnings)
		for _, cell := range cells {
			assert.Empty(t, cell.Events)
		}
	})

	t.Run("invalid events are excluded with a warning", func(t *testing.T) {
		cells := BuildMonthGrid(reference, now)
		start := time.Date(2025, time.April, 3, 10, 0, 0, 0, time.UTC)
		events := []event.Event{
			{ID: "no-dates", Title: "broken"},
			{ID: "inverted", Start: start, End: start.Add(-time.Hour)},
			timedEvent("ok", start, time.Hour),
		}

		warnings := AssignToCells(cells, events)

		require.Len(t, warnings, 2)
		assert.Equal(t, InvalidEventDate, warnings[0].Kind)
		assert.Equal(t, "no-dates", warnings[0].EventID)
		assert.Equal(t, "inverted", warnings[1].EventID)

		placed := 0
		for _, cell := range cells {
			placed += len(cell.Events)
		}
		assert.Equal(t, 1, placed)
	})

	t.Run("does not mutate the input slice", func(t *testing.T) {
		cells := BuildMonthGrid(reference, now)
		events := []event.Event{
			timedEvent("b", time.Date(2025, time.April, 3, 14, 0, 0, 0, time.UTC), time.Hour),
			timedEvent("a", time.Date(2025, time.April, 3, 10, 0, 0, 0, time.UTC), time.Hour),
		}

		AssignToCells(cells, events)

		assert.Equal(t, "b", events[0].ID)
		assert.Equal(t, "a", events[1].ID)
	})
}

func TestAssignToWeek(t *testing.T) {
	now := time.Date(2025, time.April, 16, 12, 0, 0, 0, time.UTC)

	t.Run("buckets by the start day only", func(t *testing.T) {
		days, _, _ := BuildWeekGrid(day(2025, time.April, 16), now)
		// spans midnight into the next day; stays bucketed on its start day
		overnight := timedEvent("overnight", time.Date(2025, time.April, 14, 23, 0, 0, 0, time.UTC), 3*time.Hour)

		warnings := AssignToWeek(days, []event.Event{overnight})

		assert.Empty(t, warnings)
		assert.Len(t, days[1].Events, 1) // Monday the 14th
		assert.Empty(t, days[2].Events)
	})

	t.Run("events outside the week are dropped silently", func(t *testing.T) {
		days, _, _ := BuildWeekGrid(day(2025, time.April, 16), now)

		warnings := AssignToWeek(days, []event.Event{
			timedEvent("prev", time.Date(2025, time.April, 12, 10, 0, 0, 0, time.UTC), time.Hour),
		})

		assert.Empty(t, warnings)
		for _, d := range days {
			assert.Empty(t, d.Events)
		}
	})
}
