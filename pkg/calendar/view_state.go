package calendar

import (
	"strings"
	"sync"
	"time"

	"github.com/delat04/agda/internal/utils"
	"github.com/delat04/agda/pkg/event"
)

type ViewMode string

const (
	ViewMonth ViewMode = "month"
	ViewWeek  ViewMode = "week"
)

// ParseViewMode maps a query-string value to a ViewMode, defaulting to month.
func ParseViewMode(s string) ViewMode {
	if strings.EqualFold(s, string(ViewWeek)) {
		return ViewWeek
	}
	return ViewMonth
}

// Snapshot is one complete, consistent rendering of the calendar. A snapshot
// is immutable from the consumer's point of view: every rebuild produces a
// fresh one and swaps it in wholesale.
type Snapshot struct {
	Mode      ViewMode
	Reference time.Time
	Month     []GridCell // 42 cells when Mode == ViewMonth
	Week      []WeekDay  // 7 days when Mode == ViewWeek
	WeekStart time.Time
	WeekEnd   time.Time
	HourSlots []HourSlot
	Warnings  []Warning
}

// ViewState is the long-lived view-model behind the calendar screen. It owns
// the current grid exclusively; consumers read snapshots but never mutate
// them. Every navigation, mode toggle or event-list change triggers one full
// synchronous rebuild; rebuilds are never batched or coalesced.
type ViewState struct {
	mu          sync.RWMutex
	clock       utils.Clock
	mode        ViewMode
	reference   time.Time
	events      []event.Event
	current     Snapshot
	hourSlots   []HourSlot
	subscribers map[uint64]func(Snapshot)
	nextSubID   uint64
}

func NewViewState(clock utils.Clock) *ViewState {
	vs := &ViewState{
		clock:       clock,
		mode:        ViewMonth,
		reference:   clock.Now(),
		events:      []event.Event{},
		hourSlots:   BuildHourSlots(),
		subscribers: make(map[uint64]func(Snapshot)),
	}
	vs.update(func() {})
	return vs
}

// Snapshot returns the current grid. Pull accessor; always consistent with
// the last completed rebuild.
func (vs *ViewState) Snapshot() Snapshot {
	vs.mu.RLock()
	defer vs.mu.RUnlock()
	return vs.current
}

// Subscribe registers a callback fired exactly once per rebuild with the
// fresh snapshot. Returns an unsubscribe function.
func (vs *ViewState) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	vs.mu.Lock()
	vs.nextSubID++
	id := vs.nextSubID
	vs.subscribers[id] = fn
	vs.mu.Unlock()

	return func() {
		vs.mu.Lock()
		defer vs.mu.Unlock()
		delete(vs.subscribers, id)
	}
}

// SetViewMode switches between month and week and rebuilds.
func (vs *ViewState) SetViewMode(mode ViewMode) {
	vs.update(func() { vs.mode = mode })
}

// SetReference moves the calendar to the given date and rebuilds.
func (vs *ViewState) SetReference(reference time.Time) {
	vs.update(func() { vs.reference = reference })
}

// SetView moves both reference date and view mode in one rebuild.
func (vs *ViewState) SetView(reference time.Time, mode ViewMode) {
	vs.update(func() {
		vs.reference = reference
		vs.mode = mode
	})
}

// PreviousPeriod shifts one month back in month mode, seven days back in
// week mode, and rebuilds.
func (vs *ViewState) PreviousPeriod() {
	vs.update(func() { vs.shift(-1) })
}

// NextPeriod shifts one month or seven days forward and rebuilds.
func (vs *ViewState) NextPeriod() {
	vs.update(func() { vs.shift(1) })
}

func (vs *ViewState) shift(direction int) {
	if vs.mode == ViewMonth {
		vs.reference = time.Date(vs.reference.Year(), vs.reference.Month(), 1, 0, 0, 0, 0, vs.reference.Location()).
			AddDate(0, direction, 0)
	} else {
		vs.reference = vs.reference.AddDate(0, 0, direction*DaysPerWeek)
	}
}

// Refresh rebuilds with a new event list at the current reference and mode.
// The list is treated as a snapshot supplied by the event repository; the
// view state keeps its own copy and never mutates the input.
func (vs *ViewState) Refresh(events []event.Event) {
	vs.update(func() {
		vs.events = make([]event.Event, len(events))
		copy(vs.events, events)
	})
}

// ResolveDropTarget maps a cell id back to the calendar day it represents in
// the current grid. Unknown ids report false; the caller treats the drag as
// a no-op.
func (vs *ViewState) ResolveDropTarget(cellID string) (time.Time, bool) {
	vs.mu.RLock()
	defer vs.mu.RUnlock()
	for _, cell := range vs.current.Month {
		if cell.ID == cellID {
			return cell.Date, true
		}
	}
	for _, day := range vs.current.Week {
		if day.ID == cellID {
			return day.Date, true
		}
	}
	return time.Time{}, false
}

// update applies a state mutation, rebuilds a fresh snapshot, swaps it in
// atomically and notifies subscribers outside the lock.
func (vs *ViewState) update(mutate func()) {
	vs.mu.Lock()
	mutate()

	now := vs.clock.Now()
	next := Snapshot{
		Mode:      vs.mode,
		Reference: vs.reference,
		HourSlots: vs.hourSlots,
	}

	if vs.mode == ViewMonth {
		cells := BuildMonthGrid(vs.reference, now)
		next.Warnings = AssignToCells(cells, vs.events)
		next.Month = cells
	} else {
		days, weekStart, weekEnd := BuildWeekGrid(vs.reference, now)
		next.Warnings = AssignToWeek(days, vs.events)
		next.Week = days
		next.WeekStart = weekStart
		next.WeekEnd = weekEnd
	}

	vs.current = next
	subscribers := make([]func(Snapshot), 0, len(vs.subscribers))
	for _, fn := range vs.subscribers {
		subscribers = append(subscribers, fn)
	}
	vs.mu.Unlock()

	for _, fn := range subscribers {
		fn(next)
	}
}
