// Package server is the HTTP surface: Telegram webhook, manual sweep and health.
package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"pet-medication-reminder/internal/observability"
	"pet-medication-reminder/internal/reminder"
)

type Sweeper interface {
	Sweep(ctx context.Context) (reminder.SweepResult, error)
}

type UpdateHandler interface {
	HandleUpdate(ctx context.Context, upd tgbotapi.Update)
}

type Options struct {
	JWTSecret     string
	WebhookSecret string
	Webhook       UpdateHandler // nil disables POST /webhook (polling mode)
}

type sweepFailure struct {
	SubscriberID  string `json:"subscriber_id"`
	MedicationKey string `json:"medication_key"`
	Error         string `json:"error"`
}

type sweepResponse struct {
	Date        string         `json:"date"`
	Notified    []string       `json:"notified"`
	Subscribers int            `json:"subscribers"`
	Delivered   int            `json:"delivered"`
	Failures    []sweepFailure `json:"failures"`
	Error       string         `json:"error,omitempty"`
}

func toResponse(res reminder.SweepResult, err error) sweepResponse {
	out := sweepResponse{
		Date:        reminder.FormatDate(res.Date),
		Notified:    res.Notified,
		Subscribers: res.Subscribers,
		Delivered:   res.Delivered,
		Failures:    make([]sweepFailure, 0, len(res.Failures)),
	}
	if out.Notified == nil {
		out.Notified = []string{}
	}
	for _, f := range res.Failures {
		out.Failures = append(out.Failures, sweepFailure{
			SubscriberID:  f.SubscriberID,
			MedicationKey: f.MedicationKey,
			Error:         f.Err.Error(),
		})
	}
	if err != nil {
		out.Error = err.Error()
	}
	return out
}

func NewRouter(sw Sweeper, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), RequestLogger())

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "用藥提醒機器人運行中！")
	})
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if opts.Webhook != nil {
		r.POST("/webhook", WebhookSecret(opts.WebhookSecret), handleWebhook(opts.Webhook))
	}

	admin := r.Group("/", AuthMiddleware(opts.JWTSecret))
	{
		admin.GET("/trigger", handleTrigger(sw))
		admin.POST("/trigger", handleTrigger(sw))
	}

	return r
}

func handleWebhook(h UpdateHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		var upd tgbotapi.Update
		if err := c.ShouldBindJSON(&upd); err != nil {
			observability.LoggerFromContext(c.Request.Context()).Warn("bad webhook payload", "error", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid update"})
			return
		}
		h.HandleUpdate(c.Request.Context(), upd)
		c.Status(http.StatusOK)
	}
}

func handleTrigger(sw Sweeper) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		res, err := sw.Sweep(ctx)
		if err != nil {
			observability.LoggerFromContext(ctx).Error("manual sweep failed", "error", err)
			c.JSON(http.StatusInternalServerError, toResponse(res, err))
			return
		}
		c.JSON(http.StatusOK, toResponse(res, nil))
	}
}
