package handlers

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"pet-medication-reminder/internal/notify"
)

func (h *Handler) HandleText(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	replies, err := h.Svc.HandleText(ctx, notify.TelegramID(chatID), msg.Text)
	h.reply(ctx, chatID, replies, err)
}
