package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"pet-medication-reminder/internal/models"
)

type recordingPusher struct {
	ids []string
	err error
}

func (p *recordingPusher) Push(_ context.Context, id string, _ models.Reply) error {
	p.ids = append(p.ids, id)
	return p.err
}

func TestRouter(t *testing.T) {
	tg, sms := &recordingPusher{}, &recordingPusher{err: errors.New("undelivered")}
	rt := NewRouter()
	rt.Handle(ChannelTelegram, tg)
	rt.Handle(ChannelSMS, sms)
	ctx := context.Background()

	require.NoError(t, rt.Push(ctx, "telegram:5", models.TextReply("hi")))
	assert.EqualError(t, rt.Push(ctx, "sms:+15550001111", models.TextReply("hi")), "undelivered")
	assert.Error(t, rt.Push(ctx, "line:U123", models.TextReply("hi")))
	assert.Error(t, rt.Push(ctx, "12345", models.TextReply("hi")))

	assert.Equal(t, []string{"telegram:5"}, tg.ids)
	assert.Equal(t, []string{"sms:+15550001111"}, sms.ids)
}

func TestTelegramID(t *testing.T) {
	assert.Equal(t, "telegram:-100123", TelegramID(-100123))

	id, err := ParseTelegramID("telegram:-100123")
	require.NoError(t, err)
	assert.Equal(t, int64(-100123), id)

	for _, bad := range []string{"sms:+1555", "telegram:", "telegram:abc", "-100123"} {
		_, err := ParseTelegramID(bad)
		assert.Error(t, err, bad)
	}
}

func buttons(t *testing.T, msg tgbotapi.MessageConfig) [][]tgbotapi.InlineKeyboardButton {
	t.Helper()
	kb, ok := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok, "reply markup is %T", msg.ReplyMarkup)
	return kb.InlineKeyboard
}

func decode(t *testing.T, b tgbotapi.InlineKeyboardButton) models.Action {
	t.Helper()
	require.NotNil(t, b.CallbackData)
	var a models.Action
	require.NoError(t, json.Unmarshal([]byte(*b.CallbackData), &a))
	return a
}

func TestRender_Text(t *testing.T) {
	msg, err := Render(7, models.TextReply("hello"))
	require.NoError(t, err)
	assert.Equal(t, int64(7), msg.ChatID)
	assert.Equal(t, "hello", msg.Text)
	assert.Nil(t, msg.ReplyMarkup)
}

func TestRender_ConfirmPrompt(t *testing.T) {
	msg, err := Render(7, models.Reply{Kind: models.ReplyConfirmPrompt, Body: "今天是餵藥的日子！", MedicationKey: "bravecto"})
	require.NoError(t, err)

	rows := buttons(t, msg)
	require.Len(t, rows, 1)
	require.Len(t, rows[0], 2)
	assert.Equal(t, btnDone, rows[0][0].Text)
	assert.Equal(t, models.Action{Action: models.ActionDoneMedicine, MedicationKey: "bravecto"}, decode(t, rows[0][0]))
	assert.Equal(t, btnDelay, rows[0][1].Text)
	assert.Equal(t, models.Action{Action: models.ActionDelayMedicine, MedicationKey: "bravecto"}, decode(t, rows[0][1]))
}

func TestRender_ChooseMedication(t *testing.T) {
	msg, err := Render(7, models.Reply{Kind: models.ReplyChooseMedication, Body: "哪一種？", Choices: models.DefaultRegistry()})
	require.NoError(t, err)

	rows := buttons(t, msg)
	require.Len(t, rows, 1)
	require.Len(t, rows[0], 2)
	assert.Equal(t, "一錠除", rows[0][0].Text)
	assert.Equal(t, models.Action{Action: models.ActionUpdateReminder, MedicationKey: "bravecto"}, decode(t, rows[0][0]))
	assert.Equal(t, "犬新寶", rows[0][1].Text)
	assert.Equal(t, models.Action{Action: models.ActionUpdateReminder, MedicationKey: "heartgard"}, decode(t, rows[0][1]))
}

func TestRender_Errors(t *testing.T) {
	_, err := Render(7, models.Reply{Kind: "carousel"})
	assert.Error(t, err)

	long := "a-medication-key-that-does-not-fit-into-callback-data"
	_, err = Render(7, models.Reply{Kind: models.ReplyConfirmPrompt, MedicationKey: long})
	assert.Error(t, err)
}

func TestCheckKey(t *testing.T) {
	for _, key := range models.DefaultRegistry().Keys() {
		assert.NoError(t, CheckKey(key), key)
	}
	// update_reminder is the longest payload
	assert.NoError(t, CheckKey("abcdefghijklmno"))
	assert.Error(t, CheckKey("nexgard_spectra_large"))
}

type fakeSender struct {
	sent []tgbotapi.Chattable
	err  error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, f.err
}

func (f *fakeSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.sent = append(f.sent, c)
	return &tgbotapi.APIResponse{Ok: f.err == nil}, f.err
}

func TestTelegramPusher(t *testing.T) {
	bot := &fakeSender{}
	p := &TelegramPusher{Bot: bot}
	ctx := context.Background()

	require.NoError(t, p.Push(ctx, "telegram:99", models.TextReply("hi")))
	require.Len(t, bot.sent, 1)
	msg := bot.sent[0].(tgbotapi.MessageConfig)
	assert.Equal(t, int64(99), msg.ChatID)

	assert.Error(t, p.Push(ctx, "sms:+1555", models.TextReply("hi")))
	assert.Len(t, bot.sent, 1)

	bot.err = errors.New("Forbidden: bot was blocked by the user")
	assert.ErrorIs(t, p.Push(ctx, "telegram:99", models.TextReply("hi")), bot.err)
}

type fakeCreator struct {
	params []*twilioApi.CreateMessageParams
	err    error
}

func (f *fakeCreator) CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error) {
	f.params = append(f.params, params)
	if f.err != nil {
		return nil, f.err
	}
	sid := "SM123"
	return &twilioApi.ApiV2010Message{Sid: &sid}, nil
}

func TestSMSPusher(t *testing.T) {
	api := &fakeCreator{}
	p := &SMSPusher{api: api, from: "+15550000000"}
	ctx := context.Background()

	prompt := models.Reply{Kind: models.ReplyConfirmPrompt, Body: "今天是餵藥的日子！", MedicationKey: "bravecto"}
	require.NoError(t, p.Push(ctx, "sms:+886912345678", prompt))
	require.Len(t, api.params, 1)
	sent := api.params[0]
	assert.Equal(t, "+886912345678", *sent.To)
	assert.Equal(t, "+15550000000", *sent.From)
	assert.Equal(t, "今天是餵藥的日子！\n"+smsAnswerHint, *sent.Body)

	assert.Error(t, p.Push(ctx, "telegram:1", prompt))
	assert.Error(t, p.Push(ctx, "sms:", prompt))
	assert.Len(t, api.params, 1)

	api.err = errors.New("21211 invalid To")
	assert.ErrorIs(t, p.Push(ctx, "sms:+100", models.TextReply("x")), api.err)
}

func TestSMSBody(t *testing.T) {
	assert.Equal(t, "hi", smsBody(models.TextReply("hi")))
	assert.Equal(t, "哪一種？\n一錠除 / 犬新寶",
		smsBody(models.Reply{Kind: models.ReplyChooseMedication, Body: "哪一種？", Choices: models.DefaultRegistry()}))
}
