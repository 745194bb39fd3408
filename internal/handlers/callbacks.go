package handlers

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"pet-medication-reminder/internal/notify"
	"pet-medication-reminder/internal/observability"
)

func (h *Handler) HandleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	// always answer callback to remove 'loading...'
	if _, err := h.Bot.Request(tgbotapi.NewCallback(cq.ID, "")); err != nil {
		observability.LoggerFromContext(ctx).Warn("answer callback", "error", err)
	}

	if cq.Message == nil || cq.Message.Chat == nil {
		return
	}
	chatID := cq.Message.Chat.ID

	replies, err := h.Svc.HandleAction(ctx, notify.TelegramID(chatID), []byte(cq.Data))
	h.reply(ctx, chatID, replies, err)
}
