package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"

	"pet-medication-reminder/internal/config"
	"pet-medication-reminder/internal/handlers"
	"pet-medication-reminder/internal/observability"
	"pet-medication-reminder/internal/scheduler"
	"pet-medication-reminder/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the bot, the daily sweep and the HTTP endpoints",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.RequireServe(); err != nil {
			return err
		}
		log := observability.Logger()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		bot, err := openBot(cfg)
		if err != nil {
			return err
		}

		svc := newService(cfg, st, newPusher(cfg, bot))
		h := handlers.NewHandler(bot, svc)

		sched, err := scheduler.Start(ctx, svc, cfg.SweepCron, cfg.Location)
		if err != nil {
			return err
		}
		defer sched.Shutdown()
		if next, err := cfg.NextSweep(time.Now()); err == nil {
			log.Info("daily sweep scheduled", "cron", cfg.SweepCron, "next", next.Format(time.RFC3339))
		}

		opts := server.Options{JWTSecret: cfg.AdminJWTSecret, WebhookSecret: cfg.WebhookSecret}
		if cfg.TelegramMode == config.ModeWebhook {
			opts.Webhook = h
		} else {
			u := tgbotapi.NewUpdate(0)
			u.Timeout = 60
			updates := bot.GetUpdatesChan(u)
			defer bot.StopReceivingUpdates()
			go h.Listen(ctx, updates)
		}

		gin.SetMode(gin.ReleaseMode)
		srv := &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           server.NewRouter(svc, opts),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() { errCh <- srv.ListenAndServe() }()
		log.Info("listening", "port", cfg.Port, "telegram_mode", cfg.TelegramMode, "storage", cfg.StorageBackend)

		select {
		case <-ctx.Done():
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				return err
			}
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}
