package storage

import (
	"context"

	"pet-medication-reminder/internal/models"
)

// ScheduleStore persists one Schedule per medication key. Records are
// created lazily (no due date, pending) on first access.
type ScheduleStore interface {
	Schedule(ctx context.Context, key string) (models.Schedule, error)
	Schedules(ctx context.Context, keys []string) ([]models.Schedule, error)

	// UpdateSchedule runs fn on the current record and commits the result
	// atomically. Calls for the same key never interleave. If fn returns an
	// error nothing is written and the error is returned as is.
	UpdateSchedule(ctx context.Context, key string, fn func(*models.Schedule) error) (models.Schedule, error)
}

// SubscriberStore is the set of push recipients.
type SubscriberStore interface {
	// AddSubscriber reports whether id was newly added.
	AddSubscriber(ctx context.Context, id string) (bool, error)
	ListSubscribers(ctx context.Context) ([]models.Subscriber, error)
}

// StateStore keeps the conversation FSM state per subscriber.
type StateStore interface {
	ConversationState(ctx context.Context, subscriberID string) (models.ConversationState, error)
	SetConversationState(ctx context.Context, subscriberID string, st models.ConversationState) error
}

// Store is implemented by every backend.
type Store interface {
	ScheduleStore
	SubscriberStore
	StateStore
	Close() error
}

// DateLayout is how due dates are serialized by the backends.
const DateLayout = "2006-01-02"
