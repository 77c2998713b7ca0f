// Package channel defines the bridge between chat platforms and the bot.
// It provides the Channel interface, outbound chunking, allow-list
// filtering, and a dispatcher that routes replies to the right platform.
package channel

import (
	"context"

	"github.com/azura-ai/azura/internal/core"
	"github.com/azura-ai/azura/pkg/message"
)

// Channel is the bridge between a chat platform and the bot.
// Every concrete channel (Telegram today, others later) must implement it.
//
// A channel receives messages from its platform, checks the allow-list, and
// pushes them to the bot via the inbox callback. Replies come back through
// Send().
type Channel interface {
	core.Module

	// Send delivers an outbound message to the platform.
	Send(ctx context.Context, msg message.OutboundMessage) error

	// SetInbox gives the channel a function to push inbound messages to
	// the bot. Called during wiring, before Start().
	SetInbox(fn func(msg message.InboundMessage) error)
}

// TypingChannel is implemented by channels that can show a typing
// indicator while a slow command (scrape sweep, model call) runs.
type TypingChannel interface {
	Channel

	SendTyping(ctx context.Context, chat message.Chat) error
}
