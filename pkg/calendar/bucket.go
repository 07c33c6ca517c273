package calendar

import (
	"sort"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/delat04/agda/internal/utils"
	"github.com/delat04/agda/pkg/event"
)

// WarningKind classifies non-fatal data-quality problems found while building
// a grid.
type WarningKind string

const (
	// InvalidEventDate marks an event excluded from bucketing because its
	// start/end instants are unusable.
	InvalidEventDate WarningKind = "InvalidEventDate"
	// UnresolvedDropTarget marks a drop that did not land on a recognized
	// cell; the drag is ignored.
	UnresolvedDropTarget WarningKind = "UnresolvedDropTarget"
)

// Warning reports a single skipped event or ignored gesture. Warnings never
// fail a rebuild; the worst outcome is a grid that omits one event.
type Warning struct {
	Kind    WarningKind
	EventID string
	Detail  string
}

// AssignToCells distributes events into month-view cells by calendar-day
// equality of the event start. Within a cell events are sorted ascending by
// start; same-start events are ordered by id so the result is deterministic.
// The input slice is never mutated; each cell gets its own derived slice.
func AssignToCells(cells []GridCell, events []event.Event) []Warning {
	valid, warnings := splitInvalid(events)
	for i := range cells {
		cells[i].Events = eventsForDay(cells[i].Date, valid)
	}
	return warnings
}

// AssignToWeek distributes events into week-view days. Same rules as
// AssignToCells.
func AssignToWeek(days []WeekDay, events []event.Event) []Warning {
	valid, warnings := splitInvalid(events)
	for i := range days {
		days[i].Events = eventsForDay(days[i].Date, valid)
	}
	return warnings
}

func splitInvalid(events []event.Event) ([]event.Event, []Warning) {
	valid := make([]event.Event, 0, len(events))
	var warnings []Warning
	for _, e := range events {
		if !e.HasValidSpan() {
			log.Warnf("excluding event %s from calendar: invalid start/end", e.ID)
			warnings = append(warnings, Warning{
				Kind:    InvalidEventDate,
				EventID: e.ID,
				Detail:  "event start/end is missing or end precedes start",
			})
			continue
		}
		valid = append(valid, e)
	}
	return valid, warnings
}

func eventsForDay(date time.Time, events []event.Event) []event.Event {
	matched := make([]event.Event, 0, 4)
	for _, e := range events {
		if utils.SameDay(e.Start, date) {
			matched = append(matched, e)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].Start.Equal(matched[j].Start) {
			return matched[i].ID < matched[j].ID
		}
		return matched[i].Start.Before(matched[j].Start)
	})
	return matched
}
