package calendar

import (
	"fmt"
	"strconv"
	"time"

	"github.com/delat04/agda/internal/utils"
	"github.com/delat04/agda/pkg/event"
)

// DefaultPixelsPerHour is the rendered height of one week-view hour slot.
const DefaultPixelsPerHour = 64.0

// MinEventHeightPx keeps very short events clickable.
const MinEventHeightPx = 24.0

// EventTopPosition returns the vertical offset of an event inside its day
// column, in pixels at the given scale.
func EventTopPosition(e event.Event, pixelsPerHour float64) float64 {
	return float64(e.Start.Hour())*pixelsPerHour + float64(e.Start.Minute())/60*pixelsPerHour
}

// EventHeight returns the rendered height of an event, clamped to a minimum.
func EventHeight(e event.Event, pixelsPerHour float64) float64 {
	h := e.Duration().Hours() * pixelsPerHour
	if h < MinEventHeightPx {
		return MinEventHeightPx
	}
	return h
}

// IsCurrentTimeSlot reports whether the current-time indicator belongs in the
// given day/hour slot.
func IsCurrentTimeSlot(date time.Time, slotHour int, now time.Time) bool {
	return utils.SameDay(date, now) && now.Hour() == slotHour
}

// CurrentTimeOffset returns the indicator's offset within its slot, in pixels.
func CurrentTimeOffset(slotHour int, now time.Time, pixelsPerHour float64) float64 {
	if now.Hour() != slotHour {
		return 0
	}
	return float64(now.Minute()) / 60 * pixelsPerHour
}

// ContrastColor picks black or white for text rendered over the given
// "#rrggbb" background, by perceived luminance. Unparseable input gets white.
func ContrastColor(hexColor string) string {
	if len(hexColor) != 7 || hexColor[0] != '#' {
		return "#ffffff"
	}
	r, errR := strconv.ParseInt(hexColor[1:3], 16, 0)
	g, errG := strconv.ParseInt(hexColor[3:5], 16, 0)
	b, errB := strconv.ParseInt(hexColor[5:7], 16, 0)
	if errR != nil || errG != nil || errB != nil {
		return "#ffffff"
	}

	luminance := (0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)) / 255
	if luminance > 0.5 {
		return "#000000"
	}
	return "#ffffff"
}

// FormatDate renders a calendar day as yyyy-mm-dd.
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// FormatTime renders a time of day as HH:MM.
func FormatTime(t time.Time) string {
	return t.Format("15:04")
}

// CombineDateTime recombines a yyyy-mm-dd day and an HH:MM time of day into
// one local instant.
func CombineDateTime(dateStr, timeStr string) (time.Time, error) {
	day, err := time.ParseInLocation("2006-01-02", dateStr, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", dateStr, err)
	}
	tod, err := time.Parse("15:04", timeStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: %w", timeStr, err)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), tod.Hour(), tod.Minute(), 0, 0, time.Local), nil
}
