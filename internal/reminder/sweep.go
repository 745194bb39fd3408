package reminder

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"pet-medication-reminder/internal/models"
	"pet-medication-reminder/internal/utils"
)

// SweepResult describes one sweep.
type SweepResult struct {
	Date        time.Time
	Notified    []string // medication keys flipped to awaiting confirmation
	Subscribers int
	Delivered   int
	Failures    []*DeliveryError
}

// Sweep notifies every subscriber about each pending schedule due today or
// earlier and marks it as awaiting confirmation. The status is committed
// before any push is attempted; a failed push is logged and recorded in the
// result but neither retried nor rolled back. A schedule that is already
// awaiting confirmation is not notified again.
func (s *Service) Sweep(ctx context.Context) (SweepResult, error) {
	today := s.today()
	res := SweepResult{Date: today}

	subs, err := s.subscribers.ListSubscribers(ctx)
	if err != nil {
		return res, fmt.Errorf("list subscribers: %w", err)
	}
	res.Subscribers = len(subs)
	if len(subs) == 0 {
		// keep schedules pending so the first subscriber still gets notified
		s.log.Warn("sweep skipped: no subscribers", "date", FormatDate(today))
		return res, nil
	}

	var errs []error
	for _, med := range s.registry {
		sc, err := s.schedules.UpdateSchedule(ctx, med.Key, func(sc *models.Schedule) error {
			if sc.Status != models.StatusPending || sc.NextDueDate == nil || sc.NextDueDate.After(today) {
				return errNotDue
			}
			sc.Status = models.StatusAwaitingConfirmation
			return nil
		})
		if errors.Is(err, errNotDue) {
			continue
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("sweep %s: %w", med.Key, err))
			continue
		}

		s.log.Info("medication due",
			"medication", med.Key,
			"due", FormatDate(*sc.NextDueDate),
			"overdue_days", utils.DaysBetween(*sc.NextDueDate, today),
			"subscribers", len(subs))
		res.Notified = append(res.Notified, med.Key)

		prompt := models.Reply{
			Kind:          models.ReplyConfirmPrompt,
			Body:          textConfirmPrompt(s.petName, med.Name),
			MedicationKey: med.Key,
		}
		delivered, failures := s.broadcast(ctx, subs, prompt)
		res.Delivered += delivered
		res.Failures = append(res.Failures, failures...)
	}

	return res, errors.Join(errs...)
}

// broadcast pushes r to all subscribers concurrently.
func (s *Service) broadcast(ctx context.Context, subs []models.Subscriber, r models.Reply) (int, []*DeliveryError) {
	var (
		mu        sync.Mutex
		wg        sync.WaitGroup
		delivered int
		failures  []*DeliveryError
	)
	for _, sub := range subs {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			err := s.pusher.Push(ctx, id, r)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				derr := &DeliveryError{SubscriberID: id, MedicationKey: r.MedicationKey, Err: err}
				s.log.Warn("push failed", "subscriber", id, "medication", r.MedicationKey, "error", err)
				failures = append(failures, derr)
				return
			}
			delivered++
		}(sub.ID)
	}
	wg.Wait()
	return delivered, failures
}
