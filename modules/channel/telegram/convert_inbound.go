package telegram

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf16"

	"github.com/azura-ai/azura/pkg/message"
)

// fileIDRef returns a reference URI for a Telegram file_id.
// This is NOT a download URL. Consumers must call Client.GetFile + Client.FileURL
// to resolve it into a real download URL. The tg://file_id/ scheme signals this.
func fileIDRef(fileID string) string {
	return "tg://file_id/" + fileID
}

// convertInbound transforms a Telegram Update into a platform-agnostic
// InboundMessage with the bot command, if any, already parsed out.
func convertInbound(update *Update, botUsername, channelName string) (message.InboundMessage, error) {
	msg := extractMessage(update)
	if msg == nil {
		return message.InboundMessage{}, fmt.Errorf("telegram: update %d contains no message", update.UpdateID)
	}

	raw, err := json.Marshal(update)
	if err != nil {
		return message.InboundMessage{}, fmt.Errorf("telegram: marshal update: %w", err)
	}

	inbound := message.InboundMessage{
		ID:        strconv.Itoa(msg.MessageID),
		Timestamp: time.Unix(int64(msg.Date), 0),
		Channel:   channelName,
		Sender:    convertSender(msg.From),
		Chat:      convertChat(msg.Chat),
		Text:      msg.Text,
		Caption:   msg.Caption,
		Raw:       raw,
	}

	if len(msg.Photo) > 0 {
		// Telegram sends photo sizes smallest first. The vision provider
		// wants the largest.
		largest := msg.Photo[len(msg.Photo)-1]
		inbound.PhotoURL = fileIDRef(largest.FileID)
	}

	if cmd, args, ok := parseCommand(msg, botUsername); ok {
		inbound.Command = cmd
		inbound.Args = args
	}

	return inbound, nil
}

// extractMessage returns the actual message from an Update, checking
// Message and ChannelPost in order.
func extractMessage(update *Update) *Message {
	if update.Message != nil {
		return update.Message
	}
	return update.ChannelPost
}

// parseCommand extracts a bot command and its arguments from a message.
// "/detective DOGE 48" yields ("detective", ["DOGE", "48"], true), and the
// "/radar@azura_bot" form is accepted when the suffix matches botUsername.
// Commands addressed to a different bot in a group chat are ignored.
func parseCommand(msg *Message, botUsername string) (string, []string, bool) {
	text := msg.Text
	entities := msg.Entities
	if text == "" {
		text = msg.Caption
		entities = msg.CaptionEntities
	}

	var cmdToken string
	for _, ent := range entities {
		if ent.Type == "bot_command" && ent.Offset == 0 {
			cmdToken = extractEntityText(text, ent.Offset, ent.Length)
			break
		}
	}
	// Fall back to simple prefix parsing when the client sent no entities.
	if cmdToken == "" {
		if !strings.HasPrefix(text, "/") {
			return "", nil, false
		}
		cmdToken = strings.Fields(text)[0]
	}

	cmd := strings.TrimPrefix(cmdToken, "/")
	if name, target, found := strings.Cut(cmd, "@"); found {
		if !strings.EqualFold(target, botUsername) {
			return "", nil, false
		}
		cmd = name
	}
	if cmd == "" {
		return "", nil, false
	}

	rest := strings.TrimSpace(strings.TrimPrefix(text, cmdToken))
	var args []string
	if rest != "" {
		args = strings.Fields(rest)
	}
	return strings.ToLower(cmd), args, true
}

// convertSender maps a Telegram User to a platform-agnostic Sender.
func convertSender(user *User) message.Sender {
	if user == nil {
		return message.Sender{}
	}
	displayName := user.FirstName
	if user.LastName != "" {
		displayName += " " + user.LastName
	}
	return message.Sender{
		ID:          strconv.FormatInt(user.ID, 10),
		Username:    user.Username,
		DisplayName: displayName,
	}
}

// convertChat maps a Telegram Chat to a platform-agnostic Chat.
func convertChat(chat Chat) message.Chat {
	return message.Chat{
		ID:    strconv.FormatInt(chat.ID, 10),
		Type:  mapChatType(chat.Type),
		Title: chat.Title,
	}
}

// mapChatType converts Telegram chat type strings to message.ChatType.
func mapChatType(tgType string) message.ChatType {
	switch tgType {
	case "private":
		return message.ChatDM
	case "group", "supergroup":
		return message.ChatGroup
	case "channel":
		return message.ChatBroadcast
	default:
		return message.ChatGroup
	}
}

// extractEntityText safely extracts a substring from text using UTF-16 offsets,
// which is what Telegram uses for entity offsets and lengths.
// Telegram encodes offsets as UTF-16 code units, so we must convert
// to UTF-16, slice, and convert back to handle non-BMP characters (emojis).
func extractEntityText(text string, offset, length int) string {
	encoded := utf16.Encode([]rune(text))
	if offset >= len(encoded) {
		return ""
	}
	end := offset + length
	if end > len(encoded) {
		end = len(encoded)
	}
	return string(utf16.Decode(encoded[offset:end]))
}
