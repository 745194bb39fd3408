package handlers

import (
	"context"

	"pet-medication-reminder/internal/models"
	"pet-medication-reminder/internal/notify"
	"pet-medication-reminder/internal/observability"
	"pet-medication-reminder/internal/reminder"
)

// reply logs the outcome of an event and sends its replies to chatID.
// Errors stop here: the user already got a message explaining them.
func (h *Handler) reply(ctx context.Context, chatID int64, replies []models.Reply, err error) {
	log := observability.LoggerFromContext(ctx).With("chat_id", chatID)
	switch {
	case err == nil:
	case reminder.IsConversational(err):
		log.Info("rejected input", "error", err)
	default:
		log.Error("handle update", "error", err)
	}

	for _, r := range replies {
		msg, rerr := notify.Render(chatID, r)
		if rerr != nil {
			log.Error("render reply", "kind", r.Kind, "error", rerr)
			continue
		}
		if _, serr := h.Bot.Send(msg); serr != nil {
			log.Warn("send reply", "error", serr)
		}
	}
}
