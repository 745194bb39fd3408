package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pet-medication-reminder/internal/reminder"
)

const jwtSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeSweeper struct {
	calls int
	res   reminder.SweepResult
	err   error
}

func (f *fakeSweeper) Sweep(context.Context) (reminder.SweepResult, error) {
	f.calls++
	return f.res, f.err
}

type fakeUpdates struct {
	got []tgbotapi.Update
}

func (f *fakeUpdates) HandleUpdate(_ context.Context, upd tgbotapi.Update) {
	f.got = append(f.got, upd)
}

func token(t *testing.T, secret string, ttl time.Duration) string {
	t.Helper()
	tok, err := IssueToken(secret, "operator", ttl, time.Now())
	require.NoError(t, err)
	return tok
}

func do(r http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	r := NewRouter(&fakeSweeper{}, Options{JWTSecret: jwtSecret})

	w := do(r, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get(headerRequestID))

	w = do(r, http.MethodGet, "/", "", map[string]string{headerRequestID: "req-1"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "req-1", w.Header().Get(headerRequestID))
}

func TestTrigger_RequiresToken(t *testing.T) {
	sw := &fakeSweeper{}
	r := NewRouter(sw, Options{JWTSecret: jwtSecret})

	cases := map[string]string{
		"missing":      "",
		"garbage":      "Bearer not-a-jwt",
		"wrong secret": "Bearer " + token(t, "other-secret", time.Hour),
		"expired":      "Bearer " + token(t, jwtSecret, -time.Hour),
	}
	for name, auth := range cases {
		t.Run(name, func(t *testing.T) {
			headers := map[string]string{}
			if auth != "" {
				headers["Authorization"] = auth
			}
			w := do(r, http.MethodPost, "/trigger", "", headers)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
	assert.Zero(t, sw.calls)
}

func TestTrigger_NotConfigured(t *testing.T) {
	sw := &fakeSweeper{}
	r := NewRouter(sw, Options{})

	w := do(r, http.MethodGet, "/trigger", "", map[string]string{"Authorization": "Bearer " + token(t, "x", time.Hour)})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Zero(t, sw.calls)
}

func TestTrigger_RunsSweep(t *testing.T) {
	sw := &fakeSweeper{res: reminder.SweepResult{
		Date:        time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		Notified:    []string{"bravecto"},
		Subscribers: 2,
		Delivered:   1,
		Failures: []*reminder.DeliveryError{
			{SubscriberID: "telegram:2", MedicationKey: "bravecto", Err: errors.New("blocked")},
		},
	}}
	r := NewRouter(sw, Options{JWTSecret: jwtSecret})

	for _, method := range []string{http.MethodGet, http.MethodPost} {
		w := do(r, method, "/trigger", "", map[string]string{"Authorization": "Bearer " + token(t, jwtSecret, time.Hour)})
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{
			"date": "2025/06/01",
			"notified": ["bravecto"],
			"subscribers": 2,
			"delivered": 1,
			"failures": [{"subscriber_id": "telegram:2", "medication_key": "bravecto", "error": "blocked"}]
		}`, w.Body.String())
	}
	assert.Equal(t, 2, sw.calls)
}

func TestTrigger_SweepError(t *testing.T) {
	sw := &fakeSweeper{err: errors.New("database is locked")}
	r := NewRouter(sw, Options{JWTSecret: jwtSecret})

	w := do(r, http.MethodPost, "/trigger", "", map[string]string{"Authorization": "Bearer " + token(t, jwtSecret, time.Hour)})
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var body sweepResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "database is locked", body.Error)
	assert.Equal(t, []string{}, body.Notified)
}

func TestWebhook(t *testing.T) {
	updates := &fakeUpdates{}
	r := NewRouter(&fakeSweeper{}, Options{JWTSecret: jwtSecret, WebhookSecret: "hook", Webhook: updates})
	body := `{"update_id":10,"message":{"message_id":1,"date":0,"chat":{"id":5,"type":"private"},"text":"查詢提醒時間"}}`

	w := do(r, http.MethodPost, "/webhook", body, map[string]string{headerWebhookSecret: "hook"})
	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, updates.got, 1)
	assert.Equal(t, 10, updates.got[0].UpdateID)
	assert.Equal(t, int64(5), updates.got[0].Message.Chat.ID)

	w = do(r, http.MethodPost, "/webhook", body, map[string]string{headerWebhookSecret: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, http.MethodPost, "/webhook", "{", map[string]string{headerWebhookSecret: "hook"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assert.Len(t, updates.got, 1)
}

func TestWebhook_DisabledInPollingMode(t *testing.T) {
	r := NewRouter(&fakeSweeper{}, Options{JWTSecret: jwtSecret})

	w := do(r, http.MethodPost, "/webhook", "{}", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
