package subscription

import (
	"context"
	"sync"
)

// StubRepository is an in-memory Repository for tests.
type StubRepository struct {
	mu   sync.RWMutex
	subs []Subscription
}

func NewStubRepository() *StubRepository {
	return &StubRepository{}
}

func (r *StubRepository) Store(_ context.Context, sub Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs = append(r.subs, sub)
	return nil
}

func (r *StubRepository) Delete(_ context.Context, userId, eventId string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, sub := range r.subs {
		if sub.UserID == userId && sub.EventID == eventId {
			r.subs = append(r.subs[:i], r.subs[i+1:]...)
			return nil
		}
	}
	return ErrNotSubscribed
}

func (r *StubRepository) Exists(_ context.Context, userId, eventId string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, sub := range r.subs {
		if sub.UserID == userId && sub.EventID == eventId {
			return true, nil
		}
	}
	return false, nil
}

func (r *StubRepository) EventIdsForUser(_ context.Context, userId string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.subs))
	for _, sub := range r.subs {
		if sub.UserID == userId {
			ids = append(ids, sub.EventID)
		}
	}
	return ids, nil
}

func (r *StubRepository) CountForEvent(_ context.Context, eventId string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	count := 0
	for _, sub := range r.subs {
		if sub.EventID == eventId {
			count++
		}
	}
	return count, nil
}

func (r *StubRepository) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs = nil
}
