package notify

import (
	"context"
	"encoding/json"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"pet-medication-reminder/internal/models"
)

const (
	btnDone  = "完成餵藥"
	btnDelay = "明天再提醒"

	// Telegram rejects longer callback_data.
	maxCallbackData = 64
)

// Sender is the part of *tgbotapi.BotAPI used here.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// CheckKey reports whether every button payload for medication key fits into
// Telegram's callback data.
func CheckKey(key string) error {
	for _, action := range []string{models.ActionUpdateReminder, models.ActionDoneMedicine, models.ActionDelayMedicine} {
		if _, err := actionData(action, key); err != nil {
			return err
		}
	}
	return nil
}

func actionData(action, key string) (string, error) {
	b, err := json.Marshal(models.Action{Action: action, MedicationKey: key})
	if err != nil {
		return "", err
	}
	if len(b) > maxCallbackData {
		return "", fmt.Errorf("callback data for %q too long (%d bytes)", key, len(b))
	}
	return string(b), nil
}

// Render turns a reply into a Telegram message with inline buttons where needed.
func Render(chatID int64, r models.Reply) (tgbotapi.MessageConfig, error) {
	msg := tgbotapi.NewMessage(chatID, r.Body)

	switch r.Kind {
	case models.ReplyText:

	case models.ReplyConfirmPrompt:
		done, err := actionData(models.ActionDoneMedicine, r.MedicationKey)
		if err != nil {
			return msg, err
		}
		delay, err := actionData(models.ActionDelayMedicine, r.MedicationKey)
		if err != nil {
			return msg, err
		}
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(btnDone, done),
				tgbotapi.NewInlineKeyboardButtonData(btnDelay, delay),
			),
		)

	case models.ReplyChooseMedication:
		row := make([]tgbotapi.InlineKeyboardButton, 0, len(r.Choices))
		for _, m := range r.Choices {
			data, err := actionData(models.ActionUpdateReminder, m.Key)
			if err != nil {
				return msg, err
			}
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(m.Name, data))
		}
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(row)

	default:
		return msg, fmt.Errorf("unknown reply kind %q", r.Kind)
	}
	return msg, nil
}

// TelegramPusher pushes replies to telegram:<chat id> subscribers.
type TelegramPusher struct {
	Bot Sender
}

func (p *TelegramPusher) Push(_ context.Context, subscriberID string, r models.Reply) error {
	chatID, err := ParseTelegramID(subscriberID)
	if err != nil {
		return err
	}
	msg, err := Render(chatID, r)
	if err != nil {
		return err
	}
	_, err = p.Bot.Send(msg)
	return err
}
