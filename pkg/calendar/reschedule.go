package calendar

import (
	"errors"
	"math"
	"time"

	"github.com/delat04/agda/internal/utils"
	"github.com/delat04/agda/pkg/event"
)

// DeadZoneHours is the drag-delta threshold below which a free drag applies
// no change. 0.25 hours = 15 minutes; filters out accidental micro-drags.
const DeadZoneHours = 0.25

var (
	ErrNotDraggable      = errors.New("event is not draggable")
	ErrPastLocked        = errors.New("events on past days cannot be moved")
	ErrUnknownDropTarget = errors.New("drop target does not match any calendar day")
)

// Reschedule describes the new span computed for an event. The event record
// itself is never mutated; persisting the move is the caller's job.
type Reschedule struct {
	EventID  string
	NewStart time.Time
	NewEnd   time.Time
}

// RescheduleContext carries the policy inputs for CanReschedule.
type RescheduleContext struct {
	Now time.Time
	// LockPastDays rejects moves of events whose day already passed.
	// The week view enforces this; the month view does not.
	LockPastDays bool
}

// CanReschedule reports whether the event may be moved under the given
// policy. Callers should check it before invoking a reschedule operation;
// the operations themselves fall back to a no-op when it fails.
func CanReschedule(e event.Event, rc RescheduleContext) error {
	if !e.Draggable {
		return ErrNotDraggable
	}
	if rc.LockPastDays && utils.Midnight(e.Start).Before(utils.Midnight(rc.Now)) {
		return ErrPastLocked
	}
	return nil
}

// DropOnDay moves the event to another calendar day, keeping its original
// hour and minute of day. Duration is preserved from the original span.
func DropOnDay(e event.Event, targetDate time.Time) Reschedule {
	if !e.Draggable {
		return unchanged(e)
	}

	newStart := time.Date(targetDate.Year(), targetDate.Month(), targetDate.Day(),
		e.Start.Hour(), e.Start.Minute(), 0, 0, targetDate.Location())
	return Reschedule{
		EventID:  e.ID,
		NewStart: newStart,
		NewEnd:   newStart.Add(e.Duration()),
	}
}

// DropOnSlot moves the event to a specific hour slot of a calendar day.
// All-day events ignore the slot and move by day only.
func DropOnSlot(e event.Event, targetDate time.Time, hour, minutes int) Reschedule {
	if !e.Draggable {
		return unchanged(e)
	}
	if e.AllDay {
		return DropOnDay(e, targetDate)
	}

	newStart := time.Date(targetDate.Year(), targetDate.Month(), targetDate.Day(),
		hour, minutes, 0, 0, targetDate.Location())
	return Reschedule{
		EventID:  e.ID,
		NewStart: newStart,
		NewEnd:   newStart.Add(e.Duration()),
	}
}

// AdjustByPixelDelta shifts the event within its day by a vertical drag
// distance, translated at pixelsPerHour. Minutes are rounded to the nearest
// minute. Returns false when no change applies: the delta is inside the
// dead-zone, the event is not draggable, or its day is already in the past.
func AdjustByPixelDelta(e event.Event, pixelDeltaY, pixelsPerHour float64, now time.Time) (Reschedule, bool) {
	if pixelsPerHour <= 0 {
		return unchanged(e), false
	}
	if err := CanReschedule(e, RescheduleContext{Now: now, LockPastDays: true}); err != nil {
		return unchanged(e), false
	}

	hourDelta := pixelDeltaY / pixelsPerHour
	if math.Abs(hourDelta) < DeadZoneHours {
		return unchanged(e), false
	}

	newHour := float64(e.Start.Hour()) + float64(e.Start.Minute())/60 + hourDelta
	hourInt := int(math.Floor(newHour))
	minutes := int(math.Round((newHour - math.Floor(newHour)) * 60))

	newStart := time.Date(e.Start.Year(), e.Start.Month(), e.Start.Day(),
		hourInt, minutes, 0, 0, e.Start.Location())
	return Reschedule{
		EventID:  e.ID,
		NewStart: newStart,
		NewEnd:   newStart.Add(e.Duration()),
	}, true
}

// CreateIntent is the seed span emitted when the user clicks an empty day or
// slot, for the caller to open in an edit form.
type CreateIntent struct {
	Start time.Time
	End   time.Time
}

// DayClickIntent seeds a new event at 9:00-10:00 on the clicked day.
func DayClickIntent(date time.Time) CreateIntent {
	start := time.Date(date.Year(), date.Month(), date.Day(), 9, 0, 0, 0, date.Location())
	return CreateIntent{Start: start, End: start.Add(time.Hour)}
}

// SlotClickIntent seeds a one-hour event at the clicked hour, with minutes
// rounded to the nearest quarter.
func SlotClickIntent(date time.Time, hour, minutes int) CreateIntent {
	minutes = int(math.Round(float64(minutes)/15)) * 15
	start := time.Date(date.Year(), date.Month(), date.Day(), hour, minutes, 0, 0, date.Location())
	return CreateIntent{Start: start, End: start.Add(time.Hour)}
}

func unchanged(e event.Event) Reschedule {
	return Reschedule{EventID: e.ID, NewStart: e.Start, NewEnd: e.End}
}
