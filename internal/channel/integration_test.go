package channel_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/azura-ai/azura/internal/analysis"
	"github.com/azura-ai/azura/internal/bot"
	"github.com/azura-ai/azura/internal/channel"
	"github.com/azura-ai/azura/internal/storage/storagetest"
	"github.com/azura-ai/azura/pkg/message"
)

// wireBot connects a channel's inbox to the command bot and routes replies
// back through the dispatcher, mirroring how the telegram module wires the
// pipeline at startup.
func wireBot(t *testing.T, ch channel.Channel, d *channel.Dispatcher) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := storagetest.NewMemStore()
	b, err := bot.New(bot.Options{
		Store:    store,
		Analyzer: analysis.NewAnalyzer(store, nil, logger),
		Logger:   logger,
	})
	if err != nil {
		t.Fatalf("bot.New: %v", err)
	}

	ch.SetInbox(func(in message.InboundMessage) error {
		out, err := b.Handle(context.Background(), in)
		if err != nil {
			return err
		}
		if out.Text == "" {
			return nil
		}
		return d.Send(context.Background(), in.Channel, out)
	})
}

func startCommand(sender string) message.InboundMessage {
	return message.InboundMessage{
		ID:        "msg-1",
		Timestamp: time.Now(),
		Sender:    message.Sender{ID: sender},
		Chat:      message.Chat{ID: "chat-1", Type: message.ChatDM},
		Text:      "/start",
		Command:   "start",
	}
}

// TestEndToEnd_CommandThroughDispatcher verifies the full flow:
// MockChannel -> inbox -> Bot.Handle -> Dispatcher -> MockChannel.SentMessages.
func TestEndToEnd_CommandThroughDispatcher(t *testing.T) {
	t.Parallel()

	ch := channel.NewMockChannel("telegram", nil)
	dispatcher := channel.NewDispatcher()
	if err := dispatcher.Register("telegram", ch); err != nil {
		t.Fatalf("Register: %v", err)
	}
	wireBot(t, ch, dispatcher)

	if err := ch.SimulateMessage(startCommand("alice")); err != nil {
		t.Fatalf("SimulateMessage: %v", err)
	}

	sent := ch.SentMessages()
	if len(sent) != 1 {
		t.Fatalf("expected 1 reply, got %d", len(sent))
	}
	if !strings.Contains(sent[0].Text, "Welcome to Azura AI") {
		t.Errorf("reply = %q, want welcome text", sent[0].Text)
	}
	if sent[0].ReplyToID != "msg-1" {
		t.Errorf("ReplyToID = %q, want %q", sent[0].ReplyToID, "msg-1")
	}
	if sent[0].Chat.ID != "chat-1" {
		t.Errorf("Chat.ID = %q, want %q", sent[0].Chat.ID, "chat-1")
	}
}

// TestEndToEnd_DeniedUserGetsNoResponse verifies that a sender outside a
// configured allow-list is blocked before reaching the bot.
func TestEndToEnd_DeniedUserGetsNoResponse(t *testing.T) {
	t.Parallel()

	al := channel.NewAllowList([]string{"alice"}, nil)
	ch := channel.NewMockChannel("telegram", al)

	msg := startCommand("bob")
	msg.ID = "msg-denied"

	err := ch.SimulateMessage(msg)
	if !errors.Is(err, channel.ErrDenied) {
		t.Errorf("error = %v, want ErrDenied", err)
	}
}

// TestEndToEnd_PublicByDefault verifies that without an allow-list any
// sender reaches the bot.
func TestEndToEnd_PublicByDefault(t *testing.T) {
	t.Parallel()

	ch := channel.NewMockChannel("telegram", nil)
	dispatcher := channel.NewDispatcher()
	_ = dispatcher.Register("telegram", ch)
	wireBot(t, ch, dispatcher)

	if err := ch.SimulateMessage(startCommand("total-stranger")); err != nil {
		t.Fatalf("SimulateMessage: %v", err)
	}
	if len(ch.SentMessages()) != 1 {
		t.Fatalf("expected 1 reply, got %d", len(ch.SentMessages()))
	}
}

// TestEndToEnd_MultipleChannels verifies that the dispatcher routes
// replies to the channel the message came from.
func TestEndToEnd_MultipleChannels(t *testing.T) {
	t.Parallel()

	ch1 := channel.NewMockChannel("telegram", nil)
	ch2 := channel.NewMockChannel("discord", nil)

	dispatcher := channel.NewDispatcher()
	_ = dispatcher.Register("telegram", ch1)
	_ = dispatcher.Register("discord", ch2)

	wireBot(t, ch1, dispatcher)
	wireBot(t, ch2, dispatcher)

	if err := ch1.SimulateMessage(startCommand("alice")); err != nil {
		t.Fatalf("SimulateMessage: %v", err)
	}

	if len(ch1.SentMessages()) != 1 {
		t.Fatalf("telegram channel should have 1 reply, got %d", len(ch1.SentMessages()))
	}
	if len(ch2.SentMessages()) != 0 {
		t.Errorf("discord channel received %d unexpected messages", len(ch2.SentMessages()))
	}
}

// TestEndToEnd_PlainTextIgnored verifies that non-command text produces no
// outbound traffic.
func TestEndToEnd_PlainTextIgnored(t *testing.T) {
	t.Parallel()

	ch := channel.NewMockChannel("telegram", nil)
	dispatcher := channel.NewDispatcher()
	_ = dispatcher.Register("telegram", ch)
	wireBot(t, ch, dispatcher)

	msg := startCommand("alice")
	msg.Text = "just chatting"
	msg.Command = ""

	if err := ch.SimulateMessage(msg); err != nil {
		t.Fatalf("SimulateMessage: %v", err)
	}
	if len(ch.SentMessages()) != 0 {
		t.Errorf("plain text should not produce a reply, got %d", len(ch.SentMessages()))
	}
}
