package event

import (
	"context"
	"sort"
	"sync"
	"time"
)

// StubEventRepository is an in-memory EventRepo used by tests.
type StubEventRepository struct {
	mu     sync.RWMutex
	events map[string]Event
}

func NewStubEventRepository() *StubEventRepository {
	return &StubEventRepository{events: make(map[string]Event)}
}

func (r *StubEventRepository) WithTransaction(ctx context.Context, fn func(repo EventRepo) error) error {
	r.mu.Lock()
	original := make(map[string]Event, len(r.events))
	for k, v := range r.events {
		original[k] = v
	}
	r.mu.Unlock()

	if err := fn(r); err != nil {
		r.mu.Lock()
		r.events = original
		r.mu.Unlock()
		return err
	}
	return nil
}

func (r *StubEventRepository) StoreEvent(ctx context.Context, event Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events[event.ID] = event
	return nil
}

func (r *StubEventRepository) FindEvent(ctx context.Context, id string) (*Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	event, ok := r.events[id]
	if !ok {
		return nil, ErrEventNotFound
	}
	return &event, nil
}

func (r *StubEventRepository) FindAllEvents(ctx context.Context) ([]Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	events := make([]Event, 0, len(r.events))
	for _, e := range r.events {
		events = append(events, e)
	}
	sortByStart(events)
	return events, nil
}

func (r *StubEventRepository) FindEvents(ctx context.Context, from, to time.Time) ([]Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	events := make([]Event, 0, len(r.events))
	for _, e := range r.events {
		if !e.Start.After(to) && !e.End.Before(from) {
			events = append(events, e)
		}
	}
	sortByStart(events)
	return events, nil
}

func (r *StubEventRepository) FindEventsByIds(ctx context.Context, ids []string) ([]Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	events := make([]Event, 0, len(ids))
	for _, id := range ids {
		if e, ok := r.events[id]; ok {
			events = append(events, e)
		}
	}
	sortByStart(events)
	return events, nil
}

func (r *StubEventRepository) UpdateEvent(ctx context.Context, event Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.events[event.ID]
	if !ok {
		return ErrEventNotFound
	}
	event.CreatedAt = stored.CreatedAt
	r.events[event.ID] = event
	return nil
}

func (r *StubEventRepository) UpdateEventDates(ctx context.Context, id string, start, end time.Time, updatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.events[id]
	if !ok {
		return ErrEventNotFound
	}
	stored.Start = start
	stored.End = end
	stored.UpdatedAt = updatedAt
	r.events[id] = stored
	return nil
}

func (r *StubEventRepository) DeleteEvent(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[id]; !ok {
		return ErrEventNotFound
	}
	delete(r.events, id)
	return nil
}

func (r *StubEventRepository) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = make(map[string]Event)
}

func sortByStart(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].Start.Equal(events[j].Start) {
			return events[i].ID < events[j].ID
		}
		return events[i].Start.Before(events[j].Start)
	})
}
