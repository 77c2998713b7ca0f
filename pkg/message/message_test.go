package message

import (
	"strings"
	"testing"
)

func TestNewReply(t *testing.T) {
	in := InboundMessage{
		ID:   "42",
		Chat: Chat{ID: "100", Type: ChatDM},
	}

	out := NewReply(in, "hello")
	if out.Chat.ID != "100" {
		t.Errorf("chat ID: got %q, want %q", out.Chat.ID, "100")
	}
	if out.ReplyToID != "42" {
		t.Errorf("reply to: got %q, want %q", out.ReplyToID, "42")
	}
	if out.Text != "hello" {
		t.Errorf("text: got %q, want %q", out.Text, "hello")
	}
}

func TestIsCommand(t *testing.T) {
	m := InboundMessage{Command: "radar"}
	if !m.IsCommand() {
		t.Error("expected command message")
	}
	m = InboundMessage{Text: "just text"}
	if m.IsCommand() {
		t.Error("unexpected command message")
	}
}

func TestSplitTextFits(t *testing.T) {
	chunks := SplitText("short", 100)
	if len(chunks) != 1 || chunks[0] != "short" {
		t.Fatalf("got %v, want [short]", chunks)
	}
}

func TestSplitTextNoLimit(t *testing.T) {
	long := strings.Repeat("x", 10000)
	chunks := SplitText(long, 0)
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
}

func TestSplitTextParagraphBoundary(t *testing.T) {
	text := strings.Repeat("a", 50) + "\n\n" + strings.Repeat("b", 50)
	chunks := SplitText(text, 60)

	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2: %q", len(chunks), chunks)
	}
	if !strings.HasPrefix(chunks[0], "a") || strings.Contains(chunks[0], "b") {
		t.Errorf("first chunk crossed the paragraph boundary: %q", chunks[0])
	}
	if !strings.HasPrefix(chunks[1], "b") {
		t.Errorf("second chunk: %q", chunks[1])
	}
}

func TestSplitTextHardCut(t *testing.T) {
	// No break points at all: must hard-cut at maxLen.
	text := strings.Repeat("x", 250)
	chunks := SplitText(text, 100)

	if len(chunks) != 3 {
		t.Fatalf("got %d chunks, want 3", len(chunks))
	}
	for i, c := range chunks {
		if len(c) > 100 {
			t.Errorf("chunk %d exceeds limit: %d bytes", i, len(c))
		}
	}
}

func TestSplitTextRespectsLimit(t *testing.T) {
	text := strings.Repeat("word ", 2000)
	for _, c := range SplitText(text, 300) {
		if len(c) > 300 {
			t.Errorf("chunk exceeds limit: %d bytes", len(c))
		}
	}
}
