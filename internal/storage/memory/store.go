package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"pet-medication-reminder/internal/models"
)

// Store keeps everything in process memory. State is lost on restart, so it
// is meant for tests and local runs.
type Store struct {
	mu          sync.Mutex
	schedules   map[string]models.Schedule
	subscribers map[string]models.Subscriber
	states      map[string]models.ConversationState
}

func NewStore() *Store {
	return &Store{
		schedules:   make(map[string]models.Schedule),
		subscribers: make(map[string]models.Subscriber),
		states:      make(map[string]models.ConversationState),
	}
}

func (s *Store) load(key string) models.Schedule {
	sc, ok := s.schedules[key]
	if !ok {
		sc = models.NewSchedule(key)
		s.schedules[key] = sc
	}
	if sc.NextDueDate != nil {
		t := *sc.NextDueDate
		sc.NextDueDate = &t
	}
	return sc
}

func (s *Store) Schedule(_ context.Context, key string) (models.Schedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(key), nil
}

func (s *Store) Schedules(_ context.Context, keys []string) ([]models.Schedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := make([]models.Schedule, 0, len(keys))
	for _, k := range keys {
		res = append(res, s.load(k))
	}
	return res, nil
}

func (s *Store) UpdateSchedule(_ context.Context, key string, fn func(*models.Schedule) error) (models.Schedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sc := s.load(key)
	if err := fn(&sc); err != nil {
		return models.Schedule{}, err
	}
	sc.Key = key
	s.schedules[key] = sc
	return s.load(key), nil
}

func (s *Store) AddSubscriber(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.subscribers[id]; exists {
		return false, nil
	}
	s.subscribers[id] = models.Subscriber{ID: id, CreatedAt: time.Now().UTC()}
	return true, nil
}

func (s *Store) ListSubscribers(_ context.Context) ([]models.Subscriber, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := make([]models.Subscriber, 0, len(s.subscribers))
	for _, sub := range s.subscribers {
		res = append(res, sub)
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].CreatedAt.Equal(res[j].CreatedAt) {
			return res[i].ID < res[j].ID
		}
		return res[i].CreatedAt.Before(res[j].CreatedAt)
	})
	return res, nil
}

func (s *Store) ConversationState(_ context.Context, subscriberID string) (models.ConversationState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.states[subscriberID]
	if !ok {
		return models.NormalState(), nil
	}
	return st, nil
}

func (s *Store) SetConversationState(_ context.Context, subscriberID string, st models.ConversationState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.states[subscriberID] = st
	return nil
}

func (s *Store) Close() error { return nil }
