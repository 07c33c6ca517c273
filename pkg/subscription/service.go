package subscription

import (
	"context"
	"errors"
	"fmt"

	"github.com/delat04/agda/internal/utils"
	"github.com/delat04/agda/pkg/event"
	"github.com/delat04/agda/pkg/user"
)

var (
	ErrAlreadySubscribed = errors.New("already subscribed to this event")
	ErrNotSubscribed     = errors.New("not subscribed to this event")
	ErrEventFull         = errors.New("event has reached its maximum attendees")
)

type Service interface {
	Subscribe(ctx context.Context, eventId string) error
	Unsubscribe(ctx context.Context, eventId string) error
	SubscribedEvents(ctx context.Context) ([]event.Event, error)
	IsSubscribed(ctx context.Context, eventId string) (bool, error)
}

type ServiceImpl struct {
	repo   Repository
	events event.EventService
	clock  utils.Clock
}

func NewService(repo Repository, events event.EventService, clock utils.Clock) *ServiceImpl {
	return &ServiceImpl{repo: repo, events: events, clock: clock}
}

func (s *ServiceImpl) Subscribe(ctx context.Context, eventId string) error {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}

	e, err := s.events.Get(ctx, eventId)
	if err != nil {
		return fmt.Errorf("failed to load event: %w", err)
	}

	subscribed, err := s.repo.Exists(ctx, userId, eventId)
	if err != nil {
		return fmt.Errorf("failed to check subscription: %w", err)
	}
	if subscribed {
		return ErrAlreadySubscribed
	}

	if e.MaxAttendees > 0 {
		count, err := s.repo.CountForEvent(ctx, eventId)
		if err != nil {
			return fmt.Errorf("failed to count subscriptions: %w", err)
		}
		if count >= e.MaxAttendees {
			return ErrEventFull
		}
	}

	if err := s.repo.Store(ctx, Subscription{
		UserID:    userId,
		EventID:   eventId,
		CreatedAt: s.clock.Now(),
	}); err != nil {
		return fmt.Errorf("failed to store subscription: %w", err)
	}
	return nil
}

func (s *ServiceImpl) Unsubscribe(ctx context.Context, eventId string) error {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.Delete(ctx, userId, eventId)
}

// SubscribedEvents returns the events the current user subscribed to,
// ordered by start time. This list drives the seeker calendar.
func (s *ServiceImpl) SubscribedEvents(ctx context.Context) ([]event.Event, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}

	ids, err := s.repo.EventIdsForUser(ctx, userId)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	return s.events.GetEventsByIds(ctx, ids)
}

func (s *ServiceImpl) IsSubscribed(ctx context.Context, eventId string) (bool, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.Exists(ctx, userId, eventId)
}
