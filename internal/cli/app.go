package cli

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"pet-medication-reminder/internal/config"
	"pet-medication-reminder/internal/notify"
	"pet-medication-reminder/internal/observability"
	"pet-medication-reminder/internal/reminder"
	"pet-medication-reminder/internal/storage"
	"pet-medication-reminder/internal/storage/memory"
	"pet-medication-reminder/internal/storage/postgres"
)

func openStore(c *config.Config) (storage.Store, error) {
	switch c.StorageBackend {
	case config.BackendPostgres:
		return postgres.Open(c.DBURL)
	case config.BackendMemory:
		observability.Logger().Warn("using in-memory storage, state is lost on restart")
		return memory.NewStore(), nil
	case config.BackendSQLite:
		return storage.New(c.DBPath)
	default:
		return nil, &config.ConfigurationError{Field: "STORAGE_BACKEND", Reason: fmt.Sprintf("unknown backend %q", c.StorageBackend)}
	}
}

func openBot(c *config.Config) (*tgbotapi.BotAPI, error) {
	if err := c.RequireTelegram(); err != nil {
		return nil, err
	}
	bot, err := tgbotapi.NewBotAPI(c.TelegramToken)
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}
	observability.Logger().Info("telegram authorized", "bot", bot.Self.UserName)
	return bot, nil
}

// newPusher routes pushes to Telegram and, when configured, to Twilio SMS.
func newPusher(c *config.Config, bot notify.Sender) *notify.Router {
	rt := notify.NewRouter()
	if bot != nil {
		rt.Handle(notify.ChannelTelegram, &notify.TelegramPusher{Bot: bot})
	}
	if c.Twilio.Enabled() {
		rt.Handle(notify.ChannelSMS, notify.NewSMSPusher(c.Twilio.AccountSID, c.Twilio.AuthToken, c.Twilio.From))
	}
	return rt
}

func newService(c *config.Config, st storage.Store, pusher notify.Pusher) *reminder.Service {
	return reminder.New(reminder.Deps{
		Schedules:   st,
		Subscribers: st,
		States:      st,
		Pusher:      pusher,
	}, c.Registry, reminder.Options{
		Location: c.Location,
		PetName:  c.PetName,
		Logger:   observability.Logger(),
	})
}
