package event

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/delat04/agda/internal/event_bus"
	"github.com/delat04/agda/internal/utils"
)

var ErrInvalidEventSpan = errors.New("event end must not be before start")

type EventService interface {
	Create(ctx context.Context, event Event) (*Event, error)
	Get(ctx context.Context, id string) (*Event, error)
	GetEvents(ctx context.Context) ([]Event, error)
	GetEventsForRange(ctx context.Context, from, to time.Time) ([]Event, error)
	GetEventsByIds(ctx context.Context, ids []string) ([]Event, error)
	Update(ctx context.Context, event Event) (*Event, error)
	Delete(ctx context.Context, id string) error
	UpdateEventDates(ctx context.Context, id string, newStart, newEnd time.Time) (*Event, error)
	Upcoming(ctx context.Context, limit int) ([]Event, error)
	ByCategory(ctx context.Context, category string) ([]Event, error)
	ByTag(ctx context.Context, tag string) ([]Event, error)
}

type EventServiceImpl struct {
	repo         EventRepo
	clock        utils.Clock
	bus          *event_bus.EventBus
	defaultColor string
}

func NewEventService(repo EventRepo, clock utils.Clock, bus *event_bus.EventBus, defaultColor string) *EventServiceImpl {
	return &EventServiceImpl{
		repo:         repo,
		clock:        clock,
		bus:          bus,
		defaultColor: defaultColor,
	}
}

func (s *EventServiceImpl) Create(ctx context.Context, event Event) (*Event, error) {
	if !event.HasValidSpan() {
		return nil, ErrInvalidEventSpan
	}

	now := s.clock.Now()
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Color == "" {
		event.Color = s.defaultColor
	}
	event.CreatedAt = now
	event.UpdatedAt = now
	event.Images = normalizeImages(event.Images)

	if err := s.repo.StoreEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to store event: %w", err)
	}

	s.publishChanged(ctx)
	return &event, nil
}

func (s *EventServiceImpl) Get(ctx context.Context, id string) (*Event, error) {
	return s.repo.FindEvent(ctx, id)
}

func (s *EventServiceImpl) GetEvents(ctx context.Context) ([]Event, error) {
	return s.repo.FindAllEvents(ctx)
}

func (s *EventServiceImpl) GetEventsForRange(ctx context.Context, from, to time.Time) ([]Event, error) {
	return s.repo.FindEvents(ctx, from, to)
}

func (s *EventServiceImpl) GetEventsByIds(ctx context.Context, ids []string) ([]Event, error) {
	return s.repo.FindEventsByIds(ctx, ids)
}

func (s *EventServiceImpl) Update(ctx context.Context, event Event) (*Event, error) {
	if !event.HasValidSpan() {
		return nil, ErrInvalidEventSpan
	}

	event.UpdatedAt = s.clock.Now()
	event.Images = normalizeImages(event.Images)

	if err := s.repo.UpdateEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}

	s.publishChanged(ctx)
	return &event, nil
}

func (s *EventServiceImpl) Delete(ctx context.Context, id string) error {
	if err := s.repo.DeleteEvent(ctx, id); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	s.publishChanged(ctx)
	return nil
}

// UpdateEventDates persists a reschedule result. Only the span moves; the
// duration must already have been preserved by the caller.
func (s *EventServiceImpl) UpdateEventDates(ctx context.Context, id string, newStart, newEnd time.Time) (*Event, error) {
	if err := s.repo.UpdateEventDates(ctx, id, newStart, newEnd, s.clock.Now()); err != nil {
		return nil, fmt.Errorf("failed to update event dates: %w", err)
	}

	updated, err := s.repo.FindEvent(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload event: %w", err)
	}

	if err := s.bus.Publish(event_bus.NewEvent(ctx, event_bus.EventRescheduled, event_bus.EventRescheduledData{
		EventID:  id,
		NewStart: newStart,
		NewEnd:   newEnd,
	})); err != nil {
		log.Errorf("failed to publish reschedule notification: %v", err)
	}
	s.publishChanged(ctx)

	return updated, nil
}

func (s *EventServiceImpl) Upcoming(ctx context.Context, limit int) ([]Event, error) {
	events, err := s.repo.FindAllEvents(ctx)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	upcoming := make([]Event, 0, limit)
	for _, e := range events {
		if e.Start.After(now) {
			upcoming = append(upcoming, e)
		}
	}
	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].Start.Before(upcoming[j].Start)
	})
	if limit > 0 && len(upcoming) > limit {
		upcoming = upcoming[:limit]
	}
	return upcoming, nil
}

func (s *EventServiceImpl) ByCategory(ctx context.Context, category string) ([]Event, error) {
	events, err := s.repo.FindAllEvents(ctx)
	if err != nil {
		return nil, err
	}

	filtered := make([]Event, 0, len(events))
	for _, e := range events {
		if strings.EqualFold(e.Category, category) {
			filtered = append(filtered, e)
		}
	}
	return filtered, nil
}

func (s *EventServiceImpl) ByTag(ctx context.Context, tag string) ([]Event, error) {
	events, err := s.repo.FindAllEvents(ctx)
	if err != nil {
		return nil, err
	}

	filtered := make([]Event, 0, len(events))
	for _, e := range events {
		for _, t := range e.Tags {
			if strings.EqualFold(t, tag) {
				filtered = append(filtered, e)
				break
			}
		}
	}
	return filtered, nil
}

func (s *EventServiceImpl) publishChanged(ctx context.Context) {
	if err := s.bus.Publish(event_bus.NewEvent(ctx, event_bus.EventsChanged, nil)); err != nil {
		log.Errorf("failed to publish events changed notification: %v", err)
	}
}

// normalizeImages assigns missing image ids. Display positions are derived
// from slice order only when the caller set none at all; a set that carries
// any explicit position, including 0, is kept as given.
func normalizeImages(images []Image) []Image {
	positioned := false
	for _, img := range images {
		if img.Position != 0 {
			positioned = true
			break
		}
	}

	normalized := make([]Image, len(images))
	for i, img := range images {
		if img.ID == "" {
			img.ID = uuid.NewString()
		}
		if !positioned {
			img.Position = i
		}
		normalized[i] = img
	}
	return normalized
}
