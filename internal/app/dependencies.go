package app

import (
	"database/sql"

	"github.com/delat04/agda/internal/config"
	"github.com/delat04/agda/internal/event_bus"
	"github.com/delat04/agda/internal/utils"
	"github.com/delat04/agda/pkg/calendar"
	"github.com/delat04/agda/pkg/event"
	"github.com/delat04/agda/pkg/subscription"
	log "github.com/sirupsen/logrus"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	Clock utils.Clock
	Bus   *event_bus.EventBus

	EventRepo    event.EventRepo
	EventService event.EventService
	EventHandler *event.EventHandler

	CalendarView    *calendar.ViewState
	ICSRenderer     calendar.ICSRenderer
	CalendarHandler *calendar.Handler

	SubscriptionRepo    subscription.Repository
	SubscriptionService subscription.Service
	SubscriptionHandler *subscription.Handler
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(db *sql.DB, cfg config.Application) *Dependencies {
	deps := &Dependencies{}

	deps.Clock = &utils.SystemClock{}
	deps.Bus = event_bus.NewEventBus()

	deps.EventRepo = event.NewEventRepo(db)
	deps.EventService = event.NewEventService(deps.EventRepo, deps.Clock, deps.Bus, cfg.Calendar.DefaultColor)
	deps.EventHandler = event.NewEventHandler(deps.EventService)

	deps.CalendarView = calendar.NewViewState(deps.Clock)
	deps.CalendarView.SetViewMode(calendar.ParseViewMode(cfg.Calendar.DefaultView))
	deps.ICSRenderer = calendar.NewICSRenderer("Agda")
	deps.CalendarHandler = calendar.NewHandler(
		deps.CalendarView, deps.EventService, deps.EventService, deps.ICSRenderer, deps.Clock, cfg.Calendar.PixelsPerHour)

	deps.SubscriptionRepo = subscription.NewRepository(db)
	deps.SubscriptionService = subscription.NewService(deps.SubscriptionRepo, deps.EventService, deps.Clock)
	deps.SubscriptionHandler = subscription.NewHandler(deps.SubscriptionService)

	// Any change to the event list triggers one full calendar rebuild with
	// the list as it exists at trigger time.
	deps.Bus.Subscribe(event_bus.EventsChanged, func(e event_bus.Event) error {
		events, err := deps.EventService.GetEvents(e.Context())
		if err != nil {
			log.Errorf("failed to reload events after change: %v", err)
			return err
		}
		deps.CalendarView.Refresh(events)
		return nil
	})

	return deps
}
