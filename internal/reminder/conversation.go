package reminder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"pet-medication-reminder/internal/models"
)

var dateRx = regexp.MustCompile(`^\d{4}/\d{2}/\d{2}$`)

// ParseDate accepts exactly YYYY/MM/DD naming a real calendar day.
func ParseDate(text string) (time.Time, error) {
	if !dateRx.MatchString(text) {
		return time.Time{}, ErrFormat
	}
	t, err := time.Parse(DateLayout, text)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	return t, nil
}

// NextDose is due plus one re-dose interval, repeated until it is not before today.
func NextDose(due time.Time, intervalDays int, today time.Time) time.Time {
	if intervalDays < 1 {
		intervalDays = 1
	}
	next := due.AddDate(0, 0, intervalDays)
	for next.Before(today) {
		next = next.AddDate(0, 0, intervalDays)
	}
	return next
}

// HandleText feeds a free-text message from subscriberID into its FSM.
func (s *Service) HandleText(ctx context.Context, subscriberID, text string) ([]models.Reply, error) {
	defer s.lockChat(subscriberID)()
	s.register(ctx, subscriberID)

	st, err := s.states.ConversationState(ctx, subscriberID)
	if err != nil {
		return s.internalError(fmt.Errorf("load state: %w", err))
	}
	text = strings.TrimSpace(text)

	if st.Mode != models.ModeNormal && text == CmdCancel {
		if err := s.states.SetConversationState(ctx, subscriberID, models.NormalState()); err != nil {
			return s.internalError(fmt.Errorf("save state: %w", err))
		}
		return []models.Reply{models.TextReply(textCancelled)}, nil
	}

	switch st.Mode {
	case models.ModeNormal:
		return s.handleCommand(ctx, subscriberID, text)
	case models.ModeAwaitingDate:
		return s.handleDateInput(ctx, subscriberID, st, text)
	case models.ModeAwaitingDelayCount:
		return s.handleDelayCount(ctx, subscriberID, text)
	default:
		s.log.Warn("unknown conversation mode, resetting", "subscriber", subscriberID, "mode", st.Mode)
		if err := s.states.SetConversationState(ctx, subscriberID, models.NormalState()); err != nil {
			return s.internalError(fmt.Errorf("save state: %w", err))
		}
		return []models.Reply{models.TextReply(textHelp)}, nil
	}
}

func (s *Service) handleCommand(ctx context.Context, subscriberID, text string) ([]models.Reply, error) {
	switch text {
	case CmdQuery:
		summary, err := s.Summary(ctx)
		if err != nil {
			return s.internalError(fmt.Errorf("load schedules: %w", err))
		}
		return []models.Reply{models.TextReply(summary)}, nil

	case CmdReset:
		return []models.Reply{{
			Kind:    models.ReplyChooseMedication,
			Body:    textChooseMedication,
			Choices: s.registry,
		}}, nil

	case CmdDelay:
		schedules, err := s.schedules.Schedules(ctx, s.registry.Keys())
		if err != nil {
			return s.internalError(fmt.Errorf("load schedules: %w", err))
		}
		for _, sc := range schedules {
			if sc.Status == models.StatusAwaitingConfirmation {
				next := models.ConversationState{Mode: models.ModeAwaitingDelayCount}
				if err := s.states.SetConversationState(ctx, subscriberID, next); err != nil {
					return s.internalError(fmt.Errorf("save state: %w", err))
				}
				return []models.Reply{models.TextReply(textAskDelayCount)}, nil
			}
		}
		return []models.Reply{models.TextReply(textNothingWaiting)}, nil

	default:
		return []models.Reply{models.TextReply(textHelp)}, nil
	}
}

func (s *Service) handleDateInput(ctx context.Context, subscriberID string, st models.ConversationState, text string) ([]models.Reply, error) {
	med, ok := s.registry.Lookup(st.MedicationKey)
	if !ok {
		if err := s.states.SetConversationState(ctx, subscriberID, models.NormalState()); err != nil {
			s.log.Error("reset conversation state", "subscriber", subscriberID, "error", err)
		}
		return []models.Reply{models.TextReply(textUnknownAction)},
			fmt.Errorf("%w: pending medication %q", ErrUnknownAction, st.MedicationKey)
	}

	due, err := ParseDate(text)
	if err != nil {
		return []models.Reply{models.TextReply(textDateFormatError)}, err
	}
	if due.Before(s.today()) {
		return []models.Reply{models.TextReply(textPastDate)}, ErrPastDate
	}

	_, err = s.schedules.UpdateSchedule(ctx, med.Key, func(sc *models.Schedule) error {
		sc.NextDueDate = &due
		sc.Status = models.StatusPending
		return nil
	})
	if err != nil {
		return s.internalError(fmt.Errorf("update %s: %w", med.Key, err))
	}
	if err := s.states.SetConversationState(ctx, subscriberID, models.NormalState()); err != nil {
		return s.internalError(fmt.Errorf("save state: %w", err))
	}

	s.log.Info("due date set", "subscriber", subscriberID, "medication", med.Key, "due", FormatDate(due))
	return []models.Reply{models.TextReply(textDateSet(med.Name, due))}, nil
}

func (s *Service) handleDelayCount(ctx context.Context, subscriberID, text string) ([]models.Reply, error) {
	n, err := strconv.Atoi(text)
	if err != nil || n < 1 || n > maxDelayDays {
		return []models.Reply{models.TextReply(textDelayFormatError)}, fmt.Errorf("%w: delay count %q", ErrFormat, text)
	}

	target := s.today().AddDate(0, 0, n)
	var lines []string
	for _, med := range s.registry {
		_, err := s.schedules.UpdateSchedule(ctx, med.Key, func(sc *models.Schedule) error {
			if sc.Status != models.StatusAwaitingConfirmation {
				return ErrAlreadyHandled
			}
			sc.NextDueDate = &target
			sc.Status = models.StatusPending
			return nil
		})
		if errors.Is(err, ErrAlreadyHandled) {
			continue
		}
		if err != nil {
			return s.internalError(fmt.Errorf("delay %s: %w", med.Key, err))
		}
		lines = append(lines, textDelayed(med.Name, target))
	}

	if err := s.states.SetConversationState(ctx, subscriberID, models.NormalState()); err != nil {
		return s.internalError(fmt.Errorf("save state: %w", err))
	}
	if len(lines) == 0 {
		return []models.Reply{models.TextReply(textNothingWaiting)}, ErrAlreadyHandled
	}
	return []models.Reply{models.TextReply(strings.Join(lines, "\n"))}, nil
}

// HandleAction feeds a button payload from subscriberID into its FSM.
func (s *Service) HandleAction(ctx context.Context, subscriberID string, payload []byte) ([]models.Reply, error) {
	defer s.lockChat(subscriberID)()
	s.register(ctx, subscriberID)

	var a models.Action
	if err := json.Unmarshal(payload, &a); err != nil {
		return []models.Reply{models.TextReply(textUnknownAction)}, fmt.Errorf("%w: %v", ErrUnknownAction, err)
	}
	med, ok := s.registry.Lookup(a.MedicationKey)
	if !ok {
		return []models.Reply{models.TextReply(textUnknownAction)},
			fmt.Errorf("%w: medication %q", ErrUnknownAction, a.MedicationKey)
	}

	switch a.Action {
	case models.ActionUpdateReminder:
		if err := s.states.SetConversationState(ctx, subscriberID, models.AwaitingDate(med.Key)); err != nil {
			return s.internalError(fmt.Errorf("save state: %w", err))
		}
		return []models.Reply{models.TextReply(textAskDate)}, nil
	case models.ActionDoneMedicine:
		return s.confirm(ctx, subscriberID, med)
	case models.ActionDelayMedicine:
		return s.postpone(ctx, subscriberID, med)
	default:
		return []models.Reply{models.TextReply(textUnknownAction)},
			fmt.Errorf("%w: %q", ErrUnknownAction, a.Action)
	}
}

// awaiting reports whether sc is still waiting for an answer to today's (or an
// earlier) push. A due date already moved past today means someone else answered.
func awaiting(sc *models.Schedule, today time.Time) bool {
	return sc.Status == models.StatusAwaitingConfirmation &&
		sc.NextDueDate != nil && !sc.NextDueDate.After(today)
}

func (s *Service) confirm(ctx context.Context, subscriberID string, med models.Medication) ([]models.Reply, error) {
	today := s.today()
	sc, err := s.schedules.UpdateSchedule(ctx, med.Key, func(sc *models.Schedule) error {
		if !awaiting(sc, today) {
			return ErrAlreadyHandled
		}
		next := NextDose(*sc.NextDueDate, med.IntervalDays, today)
		sc.NextDueDate = &next
		sc.Status = models.StatusPending
		return nil
	})
	if errors.Is(err, ErrAlreadyHandled) {
		return []models.Reply{models.TextReply(textAlreadyHandled(med.Name))}, err
	}
	if err != nil {
		return s.internalError(fmt.Errorf("confirm %s: %w", med.Key, err))
	}
	if err := s.states.SetConversationState(ctx, subscriberID, models.NormalState()); err != nil {
		return s.internalError(fmt.Errorf("save state: %w", err))
	}

	s.log.Info("dose confirmed", "subscriber", subscriberID, "medication", med.Key, "next", FormatDate(*sc.NextDueDate))
	return []models.Reply{models.TextReply(textDone(med.Name, *sc.NextDueDate))}, nil
}

// postpone moves the reminder to tomorrow. The chat's FSM state is left as is.
func (s *Service) postpone(ctx context.Context, subscriberID string, med models.Medication) ([]models.Reply, error) {
	today := s.today()
	tomorrow := today.AddDate(0, 0, 1)
	_, err := s.schedules.UpdateSchedule(ctx, med.Key, func(sc *models.Schedule) error {
		if !awaiting(sc, today) {
			return ErrAlreadyHandled
		}
		sc.NextDueDate = &tomorrow
		sc.Status = models.StatusPending
		return nil
	})
	if errors.Is(err, ErrAlreadyHandled) {
		return []models.Reply{models.TextReply(textAlreadyHandled(med.Name))}, err
	}
	if err != nil {
		return s.internalError(fmt.Errorf("postpone %s: %w", med.Key, err))
	}

	s.log.Info("dose postponed", "subscriber", subscriberID, "medication", med.Key, "next", FormatDate(tomorrow))
	return []models.Reply{models.TextReply(textPostponed(med.Name, tomorrow))}, nil
}
