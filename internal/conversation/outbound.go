package conversation

import (
	"context"
	"fmt"
	"strings"
)

// ReplyMessenger delivers engine replies back to the end user (e.g. via SMS).
type ReplyMessenger interface {
	SendReply(ctx context.Context, reply OutboundReply) error
}

// OutboundReply carries the data required to push a message to the user.
type OutboundReply struct {
	Channel string
	UserID  string
	To      string
	From    string
	Body    string
}

// ChannelMessenger routes a reply to the messenger registered for its channel.
type ChannelMessenger map[string]ReplyMessenger

func (m ChannelMessenger) SendReply(ctx context.Context, reply OutboundReply) error {
	messenger, ok := m[reply.Channel]
	if !ok || messenger == nil {
		return fmt.Errorf("conversation: no messenger for channel %q", reply.Channel)
	}
	return messenger.SendReply(ctx, reply)
}

// PrefixMediaSender picks a MediaSender by the user id prefix ("sms" for
// "sms:9198...").
type PrefixMediaSender map[string]MediaSender

func (m PrefixMediaSender) SendMedia(ctx context.Context, userID, caption, mediaURL string) error {
	prefix, _, ok := strings.Cut(userID, ":")
	if !ok {
		return fmt.Errorf("conversation: user id %q has no channel prefix", userID)
	}
	sender, ok := m[prefix]
	if !ok || sender == nil {
		return fmt.Errorf("conversation: no media sender for %q", prefix)
	}
	return sender.SendMedia(ctx, userID, caption, mediaURL)
}
