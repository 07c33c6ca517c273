package calendar

import (
	"fmt"
	"time"

	"github.com/delat04/agda/internal/utils"
	"github.com/delat04/agda/pkg/event"
)

// MonthGridSize is the fixed number of cells in a month grid: six full weeks,
// so the layout never changes height between months.
const MonthGridSize = 42

// DaysPerWeek is the number of days in a week grid.
const DaysPerWeek = 7

var dayNames = [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// GridCell is one day of the month view.
type GridCell struct {
	ID             string
	Date           time.Time // midnight local
	IsCurrentMonth bool
	IsToday        bool
	Events         []event.Event
}

// WeekDay is one day of the week view.
type WeekDay struct {
	ID      string
	Date    time.Time // midnight local
	DayName string    // abbreviated weekday label
	IsToday bool
	Events  []event.Event
}

// HourSlot is one of 24 fixed rows of the week view.
type HourSlot struct {
	Hour  int
	Label string
}

// DayCellID returns the stable month-view drop-target key for a calendar day.
// Month is 1-based, no leading zeros, so the key is unique across years.
func DayCellID(date time.Time) string {
	return fmt.Sprintf("day-%d-%d-%d", date.Year(), int(date.Month()), date.Day())
}

// WeekDayCellID returns the stable week-view drop-target key for a calendar day.
func WeekDayCellID(date time.Time) string {
	return fmt.Sprintf("week-day-%d-%d-%d", date.Year(), int(date.Month()), date.Day())
}

// BuildMonthGrid produces the 42 consecutive calendar days covering the month
// of reference. The grid starts on the Sunday on or before the first of the
// month and always spans six full weeks. Cells carry no events; bucketing
// fills them in.
func BuildMonthGrid(reference, now time.Time) []GridCell {
	firstOfMonth := time.Date(reference.Year(), reference.Month(), 1, 0, 0, 0, 0, reference.Location())
	offset := int(firstOfMonth.Weekday())
	start := firstOfMonth.AddDate(0, 0, -offset)

	cells := make([]GridCell, 0, MonthGridSize)
	for i := 0; i < MonthGridSize; i++ {
		date := start.AddDate(0, 0, i)
		cells = append(cells, GridCell{
			ID:             DayCellID(date),
			Date:           date,
			IsCurrentMonth: date.Month() == reference.Month() && date.Year() == reference.Year(),
			IsToday:        utils.SameDay(date, now),
			Events:         []event.Event{},
		})
	}
	return cells
}

// BuildWeekGrid produces the 7 days of the week containing reference, starting
// on the Sunday on or before it. It also returns the week boundaries.
func BuildWeekGrid(reference, now time.Time) (days []WeekDay, weekStart, weekEnd time.Time) {
	refMidnight := utils.Midnight(reference)
	weekStart = refMidnight.AddDate(0, 0, -int(refMidnight.Weekday()))
	weekEnd = weekStart.AddDate(0, 0, DaysPerWeek-1)

	days = make([]WeekDay, 0, DaysPerWeek)
	for i := 0; i < DaysPerWeek; i++ {
		date := weekStart.AddDate(0, 0, i)
		days = append(days, WeekDay{
			ID:      WeekDayCellID(date),
			Date:    date,
			DayName: dayNames[i][:3],
			IsToday: utils.SameDay(date, now),
			Events:  []event.Event{},
		})
	}
	return days, weekStart, weekEnd
}

// BuildHourSlots returns the 24 hour rows of the week view with conventional
// 12-hour labels. The slots are stateless and reusable across weeks.
func BuildHourSlots() []HourSlot {
	slots := make([]HourSlot, 0, 24)
	for hour := 0; hour < 24; hour++ {
		var label string
		switch {
		case hour == 0:
			label = "12 AM"
		case hour < 12:
			label = fmt.Sprintf("%d AM", hour)
		case hour == 12:
			label = "12 PM"
		default:
			label = fmt.Sprintf("%d PM", hour-12)
		}
		slots = append(slots, HourSlot{Hour: hour, Label: label})
	}
	return slots
}
