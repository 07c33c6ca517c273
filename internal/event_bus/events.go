package event_bus

import "time"

const (
	// EventsChanged fires after any create, update, delete or reschedule of a
	// calendar event. Subscribers re-read the event list themselves so that a
	// rebuild observes the inputs as they exist at trigger time.
	EventsChanged EventType = "events.changed"

	// EventRescheduled fires after a drag-and-drop reschedule was persisted.
	EventRescheduled EventType = "event.rescheduled"
)

// EventRescheduledData is the payload for EventRescheduled.
type EventRescheduledData struct {
	EventID  string
	NewStart time.Time
	NewEnd   time.Time
}
