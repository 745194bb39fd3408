package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"pet-medication-reminder/internal/models"
	"pet-medication-reminder/internal/observability"
)

const smsAnswerHint = "請到聊天室按下按鈕確認。"

type messageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// SMSPusher pushes replies to sms:<E.164 number> subscribers through Twilio.
// SMS has no buttons, so prompts carry a hint to answer in the chat.
type SMSPusher struct {
	api  messageCreator
	from string
}

func NewSMSPusher(accountSID, authToken, from string) *SMSPusher {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &SMSPusher{api: client.Api, from: from}
}

func smsBody(r models.Reply) string {
	switch r.Kind {
	case models.ReplyConfirmPrompt:
		return r.Body + "\n" + smsAnswerHint
	case models.ReplyChooseMedication:
		names := make([]string, 0, len(r.Choices))
		for _, m := range r.Choices {
			names = append(names, m.Name)
		}
		return r.Body + "\n" + strings.Join(names, " / ")
	default:
		return r.Body
	}
}

func (p *SMSPusher) Push(ctx context.Context, subscriberID string, r models.Reply) error {
	to, ok := strings.CutPrefix(subscriberID, ChannelSMS+":")
	if !ok || to == "" {
		return fmt.Errorf("not an sms subscriber: %q", subscriberID)
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(p.from)
	params.SetBody(smsBody(r))

	resp, err := p.api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("twilio: %w", err)
	}
	if resp != nil && resp.Sid != nil {
		observability.LoggerFromContext(ctx).Debug("sms sent", "to", to, "sid", *resp.Sid)
	}
	return nil
}
