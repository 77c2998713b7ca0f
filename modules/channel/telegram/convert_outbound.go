package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/azura-ai/azura/internal/channel"
	"github.com/azura-ai/azura/pkg/message"
)

// sendOutbound sends an OutboundMessage through the Telegram API.
// It splits the message at the configured length cap and sends each chunk.
// Delivery is fail-fast: if a chunk fails, remaining chunks are skipped and
// the error is returned so partial delivery is never reported as success.
func (t *Telegram) sendOutbound(ctx context.Context, msg message.OutboundMessage) error {
	chatID, err := strconv.ParseInt(msg.Chat.ID, 10, 64)
	if err != nil {
		return fmt.Errorf("telegram: invalid chat ID %q: %w", msg.Chat.ID, err)
	}

	for _, chunk := range channel.SplitMessage(msg, t.config.MaxMessageLength) {
		if err := t.sendChunk(ctx, chunk, chatID); err != nil {
			return err
		}
	}
	return nil
}

// sendChunk sends a single chunk, as a photo with caption when it carries an
// image and as a plain message otherwise. Text without an explicit parse
// mode is converted to MarkdownV2 with full escaping.
func (t *Telegram) sendChunk(ctx context.Context, chunk message.OutboundMessage, chatID int64) error {
	replyToID := parseOptionalInt(chunk.ReplyToID, t.logger)

	text := chunk.Text
	parseMode := chunk.ParseMode
	if parseMode == "" && text != "" {
		text = FormatMarkdownV2(text)
		parseMode = "MarkdownV2"
	}

	if chunk.PhotoURL != "" {
		_, err := t.client.SendPhoto(ctx, SendPhotoRequest{
			ChatID:           chatID,
			Photo:            chunk.PhotoURL,
			Caption:          text,
			ParseMode:        parseMode,
			ReplyToMessageID: replyToID,
		})
		if err != nil {
			return fmt.Errorf("telegram: send photo: %w", err)
		}
		return nil
	}

	_, err := t.client.SendMessage(ctx, SendMessageRequest{
		ChatID:                chatID,
		Text:                  text,
		ParseMode:             parseMode,
		ReplyToMessageID:      replyToID,
		DisableWebPagePreview: chunk.DisablePreview,
	})
	if err != nil {
		return fmt.Errorf("telegram: send message: %w", err)
	}
	return nil
}

// parseOptionalInt converts a string to int, returning 0 for empty strings.
// Logs a warning if the string is non-empty but not a valid integer.
func parseOptionalInt(s string, logger *slog.Logger) int {
	if s == "" {
		return 0
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		logger.Warn("parseOptionalInt: invalid integer value",
			"value", s,
			"error", err,
		)
		return 0
	}
	return v
}
