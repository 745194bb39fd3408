package models

import "time"

// Medication is one entry of the static registry.
type Medication struct {
	Key          string `yaml:"key"           json:"key"`
	Name         string `yaml:"name"          json:"name"`
	IntervalDays int    `yaml:"interval_days" json:"interval_days"`
}

// Registry is the ordered list of tracked medications.
type Registry []Medication

// DefaultRegistry returns the two medications the bot was built for.
func DefaultRegistry() Registry {
	return Registry{
		{Key: "bravecto", Name: "一錠除", IntervalDays: 90},
		{Key: "heartgard", Name: "犬新寶", IntervalDays: 30},
	}
}

func (r Registry) Lookup(key string) (Medication, bool) {
	for _, m := range r {
		if m.Key == key {
			return m, true
		}
	}
	return Medication{}, false
}

func (r Registry) Keys() []string {
	keys := make([]string, 0, len(r))
	for _, m := range r {
		keys = append(keys, m.Key)
	}
	return keys
}

// Status is the dispatch status of a schedule.
type Status string

const (
	StatusPending              Status = "pending"
	StatusAwaitingConfirmation Status = "awaiting_confirmation"
)

// Schedule is the durable reminder record for one medication key.
type Schedule struct {
	Key         string     `db:"medication_key" json:"medication_key"`
	NextDueDate *time.Time `db:"next_due_date"  json:"next_due_date,omitempty"` // nil -> never configured
	Status      Status     `db:"status"         json:"status"`
}

// NewSchedule is the lazily created record: no due date, pending.
func NewSchedule(key string) Schedule {
	return Schedule{Key: key, Status: StatusPending}
}

// Subscriber is a recipient of pushed reminders.
type Subscriber struct {
	ID        string    `db:"id"         json:"id"` // telegram:<chat id> / sms:<number>
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
