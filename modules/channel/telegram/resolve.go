package telegram

import (
	"context"
	"fmt"
	"strings"

	"github.com/azura-ai/azura/pkg/message"
)

const fileIDPrefix = "tg://file_id/"

// resolvePhotoURL replaces a tg://file_id/ reference in the message's photo
// attachment with a real HTTP download URL via the Telegram Bot API, so the
// vision provider can fetch the image. Messages without a photo and photos
// that already carry an HTTP URL are left untouched.
func resolvePhotoURL(ctx context.Context, client *Client, msg *message.InboundMessage) error {
	if !strings.HasPrefix(msg.PhotoURL, fileIDPrefix) {
		return nil
	}

	fileID := strings.TrimPrefix(msg.PhotoURL, fileIDPrefix)
	file, err := client.GetFile(ctx, fileID)
	if err != nil {
		return fmt.Errorf("telegram: resolve file %s: %w", fileID, err)
	}

	msg.PhotoURL = client.FileURL(file.FilePath)
	return nil
}
