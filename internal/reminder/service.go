// Package reminder holds the conversation state machine and the daily sweep
// that share the medication schedules.
package reminder

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"pet-medication-reminder/internal/models"
	"pet-medication-reminder/internal/notify"
	"pet-medication-reminder/internal/observability"
	"pet-medication-reminder/internal/storage"
	"pet-medication-reminder/internal/utils"
)

// Deps are the collaborators of a Service.
type Deps struct {
	Schedules   storage.ScheduleStore
	Subscribers storage.SubscriberStore
	States      storage.StateStore
	Pusher      notify.Pusher
}

type Options struct {
	Location *time.Location   // defines "today"; UTC when nil
	PetName  string           // used in the confirm prompt
	Now      func() time.Time // time.Now when nil
	Logger   *slog.Logger
}

type Service struct {
	schedules   storage.ScheduleStore
	subscribers storage.SubscriberStore
	states      storage.StateStore
	pusher      notify.Pusher

	registry models.Registry
	loc      *time.Location
	petName  string
	now      func() time.Time
	log      *slog.Logger

	// subscriber id -> *sync.Mutex; never pruned, so it grows with the
	// subscriber set and no further
	chatLocks sync.Map
}

func New(deps Deps, registry models.Registry, opts Options) *Service {
	s := &Service{
		schedules:   deps.Schedules,
		subscribers: deps.Subscribers,
		states:      deps.States,
		pusher:      deps.Pusher,
		registry:    registry,
		loc:         opts.Location,
		petName:     opts.PetName,
		now:         opts.Now,
		log:         opts.Logger,
	}
	if s.loc == nil {
		s.loc = time.UTC
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.log == nil {
		s.log = observability.Logger()
	}
	return s
}

func (s *Service) Registry() models.Registry { return s.registry }

func (s *Service) today() time.Time {
	return utils.Today(s.now(), s.loc)
}

// lockChat serializes events coming from the same chat so that its FSM state
// is read and written by one handler at a time.
func (s *Service) lockChat(subscriberID string) func() {
	v, _ := s.chatLocks.LoadOrStore(subscriberID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// register adds the sender to the subscriber set. Failures are logged only:
// a missing subscriber must not break the conversation itself.
func (s *Service) register(ctx context.Context, subscriberID string) {
	added, err := s.subscribers.AddSubscriber(ctx, subscriberID)
	if err != nil {
		s.log.Error("register subscriber", "subscriber", subscriberID, "error", err)
		return
	}
	if added {
		s.log.Info("new subscriber", "subscriber", subscriberID)
	}
}

// Join handles a join / first-contact event.
func (s *Service) Join(ctx context.Context, subscriberID string) []models.Reply {
	s.register(ctx, subscriberID)
	return []models.Reply{models.TextReply(textWelcome)}
}

// Summary returns the rendered summary of all schedules.
func (s *Service) Summary(ctx context.Context) (string, error) {
	schedules, err := s.schedules.Schedules(ctx, s.registry.Keys())
	if err != nil {
		return "", err
	}
	return Summary(s.registry, schedules), nil
}

func (s *Service) internalError(err error) ([]models.Reply, error) {
	return []models.Reply{models.TextReply(textInternalError)}, err
}
