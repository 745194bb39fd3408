// Package notify delivers replies to subscribers over their channel.
package notify

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"pet-medication-reminder/internal/models"
)

const (
	ChannelTelegram = "telegram"
	ChannelSMS      = "sms"
)

// Pusher delivers a reply to one subscriber outside of a conversation.
type Pusher interface {
	Push(ctx context.Context, subscriberID string, r models.Reply) error
}

// Router sends a push to the Pusher registered for the subscriber id's channel
// prefix ("telegram:123" -> telegram).
type Router struct {
	routes map[string]Pusher
}

func NewRouter() *Router {
	return &Router{routes: make(map[string]Pusher)}
}

func (rt *Router) Handle(channel string, p Pusher) {
	rt.routes[channel] = p
}

func (rt *Router) Push(ctx context.Context, subscriberID string, r models.Reply) error {
	channel, _, ok := strings.Cut(subscriberID, ":")
	if !ok {
		return fmt.Errorf("subscriber %q: missing channel prefix", subscriberID)
	}
	p, ok := rt.routes[channel]
	if !ok {
		return fmt.Errorf("subscriber %q: no pusher for channel %q", subscriberID, channel)
	}
	return p.Push(ctx, subscriberID, r)
}

func TelegramID(chatID int64) string {
	return ChannelTelegram + ":" + strconv.FormatInt(chatID, 10)
}

func ParseTelegramID(subscriberID string) (int64, error) {
	raw, ok := strings.CutPrefix(subscriberID, ChannelTelegram+":")
	if !ok {
		return 0, fmt.Errorf("not a telegram subscriber: %q", subscriberID)
	}
	return strconv.ParseInt(raw, 10, 64)
}
