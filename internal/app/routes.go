package app

import (
	"github.com/delat04/agda/internal/config"
	"github.com/gorilla/mux"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies, cfg config.Application) {

	// Events
	r.HandleFunc("/api/event", deps.EventHandler.ListEvents).Methods("GET")
	r.HandleFunc("/api/event", deps.EventHandler.CreateEvent).Methods("POST")
	r.HandleFunc("/api/event/{eventId}", deps.EventHandler.GetEvent).Methods("GET")
	r.HandleFunc("/api/event/{eventId}", deps.EventHandler.UpdateEvent).Methods("PUT")
	r.HandleFunc("/api/event/{eventId}", deps.EventHandler.DeleteEvent).Methods("DELETE")

	// Calendar grid
	r.HandleFunc("/api/calendar/grid", deps.CalendarHandler.GetGrid).Methods("GET")
	r.HandleFunc("/api/calendar/navigate", deps.CalendarHandler.Navigate).Methods("POST")
	r.HandleFunc("/api/calendar/reschedule", deps.CalendarHandler.RescheduleEvent).Methods("POST")
	r.HandleFunc("/api/calendar/intent", deps.CalendarHandler.CreateIntent).Methods("POST")
	r.HandleFunc("/api/calendar/export", deps.CalendarHandler.ExportICS).Methods("GET")

	// Subscriptions
	r.HandleFunc("/api/subscription", deps.SubscriptionHandler.SubscribedEvents).Methods("GET")
	r.HandleFunc("/api/subscription/{eventId}", deps.SubscriptionHandler.Subscribe).Methods("POST")
	r.HandleFunc("/api/subscription/{eventId}", deps.SubscriptionHandler.Unsubscribe).Methods("DELETE")
}
