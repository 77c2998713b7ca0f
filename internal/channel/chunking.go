package channel

import (
	"github.com/azura-ai/azura/pkg/message"
)

// SplitMessage splits an outbound message into messages that each respect
// maxLen bytes of text. The photo attachment and the reply reference stay
// on the first chunk only; follow-up chunks read as a continuation of the
// same reply. maxLen <= 0 disables splitting. If the message already fits,
// a single-element slice is returned.
func SplitMessage(msg message.OutboundMessage, maxLen int) []message.OutboundMessage {
	if maxLen <= 0 || len(msg.Text) <= maxLen {
		return []message.OutboundMessage{msg}
	}

	chunks := message.SplitText(msg.Text, maxLen)

	result := make([]message.OutboundMessage, 0, len(chunks))
	for i, chunk := range chunks {
		out := message.OutboundMessage{
			Chat:           msg.Chat,
			Text:           chunk,
			ParseMode:      msg.ParseMode,
			DisablePreview: msg.DisablePreview,
		}
		if i == 0 {
			out.PhotoURL = msg.PhotoURL
			out.ReplyToID = msg.ReplyToID
		}
		result = append(result, out)
	}
	return result
}
