package event

import "time"

// Event is a calendar event. An empty ID marks an event that has not been
// persisted yet.
type Event struct {
	ID           string
	Title        string
	Description  string
	Start        time.Time
	End          time.Time
	Location     string
	AllDay       bool
	Draggable    bool
	Color        string
	Category     string
	Organizer    string
	ContactEmail string
	Attendees    int
	MaxAttendees int
	Tags         []string
	Images       []Image
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Image is an illustration attached to an event. Position defines the
// display order; exactly one image per event should be primary.
type Image struct {
	ID        string
	URL       string
	Caption   string
	IsPrimary bool
	Position  int
}

// Duration returns the event span. Reschedule operations must keep it
// constant, so it is always derived from the original start and end.
func (e Event) Duration() time.Duration {
	return e.End.Sub(e.Start)
}

// HasValidSpan reports whether the event carries usable start/end instants.
// Events failing this check are excluded from calendar bucketing instead of
// failing the whole rebuild.
func (e Event) HasValidSpan() bool {
	if e.Start.IsZero() || e.End.IsZero() {
		return false
	}
	return !e.End.Before(e.Start)
}
