// Package message defines the platform-agnostic data contract between the
// chat channel and the bot command router.
package message

import (
	"encoding/json"
	"strings"
	"time"
)

// ChatType indicates the kind of conversation.
type ChatType string

const (
	// ChatDM is a direct (one-to-one) conversation.
	ChatDM ChatType = "dm"
	// ChatGroup is a multi-participant group conversation.
	ChatGroup ChatType = "group"
	// ChatBroadcast is a one-to-many broadcast channel.
	ChatBroadcast ChatType = "broadcast"
)

// Sender identifies the author of an inbound message.
type Sender struct {
	ID          string `json:"id"`
	Username    string `json:"username,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
}

// Chat identifies the conversation a message belongs to.
type Chat struct {
	ID    string   `json:"id"`
	Type  ChatType `json:"type"`
	Title string   `json:"title,omitempty"`
}

// IsGroup reports whether the chat is a group conversation.
func (c Chat) IsGroup() bool {
	return c.Type == ChatGroup
}

// InboundMessage represents a message received from the channel.
// The channel parses bot commands before delivery: for a message like
// "/detective DOGE 48", Command is "detective" and Args is ["DOGE", "48"].
type InboundMessage struct {
	ID        string          `json:"id"`
	Timestamp time.Time       `json:"timestamp"`
	Channel   string          `json:"channel"`
	Sender    Sender          `json:"sender"`
	Chat      Chat            `json:"chat"`
	Text      string          `json:"text,omitempty"`
	Command   string          `json:"command,omitempty"`
	Args      []string        `json:"args,omitempty"`
	PhotoURL  string          `json:"photo_url,omitempty"`
	Caption   string          `json:"caption,omitempty"`
	Raw       json.RawMessage `json:"raw,omitempty"`
}

// IsCommand reports whether the message carries a bot command.
func (m *InboundMessage) IsCommand() bool {
	return m.Command != ""
}

// HasPhoto reports whether the message carries an image attachment.
func (m *InboundMessage) HasPhoto() bool {
	return m.PhotoURL != ""
}

// OutboundMessage represents a reply to be sent through the channel.
type OutboundMessage struct {
	Chat           Chat   `json:"chat"`
	Text           string `json:"text"`
	PhotoURL       string `json:"photo_url,omitempty"`
	ReplyToID      string `json:"reply_to_id,omitempty"`
	ParseMode      string `json:"parse_mode,omitempty"`
	DisablePreview bool   `json:"disable_preview,omitempty"`
}

// NewReply creates an outbound message addressed to the chat the inbound
// message came from, replying to it.
func NewReply(in InboundMessage, text string) OutboundMessage {
	return OutboundMessage{
		Chat:      in.Chat,
		Text:      text,
		ReplyToID: in.ID,
	}
}

// SplitText splits text into chunks of at most maxLen bytes, preferring
// paragraph and line boundaries over hard cuts. maxLen <= 0 disables
// splitting. Chat platforms cap message sizes (Telegram: 4096), so long
// reports are delivered as several messages.
func SplitText(text string, maxLen int) []string {
	if maxLen <= 0 || len(text) <= maxLen {
		return []string{text}
	}

	var chunks []string
	for len(text) > maxLen {
		cut := maxLen

		// Prefer the last paragraph break, then the last newline,
		// then the last space within the window.
		window := text[:maxLen]
		if i := strings.LastIndex(window, "\n\n"); i > 0 {
			cut = i
		} else if i := strings.LastIndexByte(window, '\n'); i > 0 {
			cut = i
		} else if i := strings.LastIndexByte(window, ' '); i > 0 {
			cut = i
		}

		chunks = append(chunks, strings.TrimRight(text[:cut], "\n "))
		text = strings.TrimLeft(text[cut:], "\n ")
	}
	if text != "" {
		chunks = append(chunks, text)
	}
	return chunks
}
