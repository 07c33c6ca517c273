package subscription

import "time"

// Subscription links a user to an event they want on their calendar.
type Subscription struct {
	UserID    string
	EventID   string
	CreatedAt time.Time
}
