package channel

import (
	"strings"
	"testing"

	"github.com/azura-ai/azura/pkg/message"
)

func textMsg(text string) message.OutboundMessage {
	return message.OutboundMessage{
		Chat: message.Chat{ID: "chat-1"},
		Text: text,
	}
}

func TestSplitMessage_NoChunkingWhenDisabled(t *testing.T) {
	t.Parallel()
	msg := textMsg(strings.Repeat("x", 200))
	result := SplitMessage(msg, 0)
	if len(result) != 1 {
		t.Fatalf("expected 1 message, got %d", len(result))
	}
}

func TestSplitMessage_ShortMessageUnchanged(t *testing.T) {
	t.Parallel()
	msg := textMsg("hello world")
	msg.ReplyToID = "42"
	msg.PhotoURL = "https://example.com/meme.jpg"

	result := SplitMessage(msg, 100)
	if len(result) != 1 {
		t.Fatalf("expected 1 message, got %d", len(result))
	}
	if result[0] != msg {
		t.Errorf("short message should pass through unchanged: %+v", result[0])
	}
}

func TestSplitMessage_SplitsLongText(t *testing.T) {
	t.Parallel()
	// Three paragraphs that together exceed the limit but individually fit.
	para := strings.Repeat("meme ", 12) // 60 bytes
	msg := textMsg(para + "\n\n" + para + "\n\n" + para)

	result := SplitMessage(msg, 100)
	if len(result) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(result))
	}
	for i, out := range result {
		if len(out.Text) > 100 {
			t.Errorf("chunk %d exceeds limit: %d bytes", i, len(out.Text))
		}
		if out.Chat.ID != "chat-1" {
			t.Errorf("chunk %d lost chat ID", i)
		}
	}
}

func TestSplitMessage_AttachmentsOnFirstChunkOnly(t *testing.T) {
	t.Parallel()
	msg := textMsg(strings.Repeat("viral memecoin analysis\n", 20))
	msg.ReplyToID = "42"
	msg.PhotoURL = "https://example.com/meme.jpg"
	msg.ParseMode = "Markdown"

	result := SplitMessage(msg, 100)
	if len(result) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(result))
	}

	if result[0].PhotoURL != msg.PhotoURL {
		t.Error("first chunk should carry the photo")
	}
	if result[0].ReplyToID != "42" {
		t.Error("first chunk should carry the reply reference")
	}
	for i, out := range result[1:] {
		if out.PhotoURL != "" {
			t.Errorf("chunk %d should not carry the photo", i+1)
		}
		if out.ReplyToID != "" {
			t.Errorf("chunk %d should not carry the reply reference", i+1)
		}
		if out.ParseMode != "Markdown" {
			t.Errorf("chunk %d lost the parse mode", i+1)
		}
	}
}

func TestSplitMessage_PrefersLineBreaks(t *testing.T) {
	t.Parallel()
	lines := make([]string, 10)
	for i := range lines {
		lines[i] = strings.Repeat("a", 30)
	}
	msg := textMsg(strings.Join(lines, "\n"))

	result := SplitMessage(msg, 100)
	for i, out := range result {
		for _, line := range strings.Split(out.Text, "\n") {
			if len(line) != 30 {
				t.Errorf("chunk %d split mid-line: %q", i, line)
			}
		}
	}
}
