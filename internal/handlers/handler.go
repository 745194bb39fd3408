package handlers

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"pet-medication-reminder/internal/models"
	"pet-medication-reminder/internal/notify"
)

// Service is the conversation side of reminder.Service.
type Service interface {
	Join(ctx context.Context, subscriberID string) []models.Reply
	HandleText(ctx context.Context, subscriberID, text string) ([]models.Reply, error)
	HandleAction(ctx context.Context, subscriberID string, payload []byte) ([]models.Reply, error)
}

// Handler turns Telegram updates into reminder events and sends the replies back.
type Handler struct {
	Bot notify.Sender
	Svc Service
}

func NewHandler(bot notify.Sender, svc Service) *Handler {
	return &Handler{Bot: bot, Svc: svc}
}

// Listen consumes a polling update channel until ctx is done or the channel closes.
func (h *Handler) Listen(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	for {
		select {
		case <-ctx.Done():
			return
		case upd, ok := <-updates:
			if !ok {
				return
			}
			h.HandleUpdate(ctx, upd)
		}
	}
}

func (h *Handler) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	switch {
	case upd.MyChatMember != nil:
		// === bot added to / removed from a chat ===
		h.HandleMembership(ctx, upd.MyChatMember)

	case upd.Message != nil:
		h.HandleMessage(ctx, upd.Message)

	case upd.CallbackQuery != nil:
		// === inline buttons ===
		h.HandleCallback(ctx, upd.CallbackQuery)
	}
}

func (h *Handler) HandleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.Chat == nil {
		return
	}
	if msg.IsCommand() {
		h.HandleCommand(ctx, msg)
		return
	}
	if msg.Text != "" {
		h.HandleText(ctx, msg)
	}
}

// HandleMembership treats the bot joining a group as a join event.
func (h *Handler) HandleMembership(ctx context.Context, m *tgbotapi.ChatMemberUpdated) {
	switch m.NewChatMember.Status {
	case "member", "administrator":
	default:
		return
	}
	switch m.OldChatMember.Status {
	case "left", "kicked", "":
	default:
		return
	}
	chatID := m.Chat.ID
	h.reply(ctx, chatID, h.Svc.Join(ctx, notify.TelegramID(chatID)), nil)
}
