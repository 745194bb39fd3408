package handlers

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"pet-medication-reminder/internal/notify"
	"pet-medication-reminder/internal/reminder"
)

// slash commands mapped onto the text commands
var commandTexts = map[string]string{
	"query":  reminder.CmdQuery,
	"reset":  reminder.CmdReset,
	"delay":  reminder.CmdDelay,
	"cancel": reminder.CmdCancel,
}

func (h *Handler) HandleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	id := notify.TelegramID(chatID)

	cmd := msg.Command()
	if cmd == "start" {
		h.reply(ctx, chatID, h.Svc.Join(ctx, id), nil)
		return
	}

	text, ok := commandTexts[cmd]
	if !ok {
		text = msg.Text // falls through to the help reply
	}
	replies, err := h.Svc.HandleText(ctx, id, text)
	h.reply(ctx, chatID, replies, err)
}
