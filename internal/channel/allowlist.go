package channel

import (
	"strings"

	"github.com/azura-ai/azura/pkg/message"
)

// AllowList controls which users and groups may talk to a channel.
// An empty or nil AllowList allows everyone: the bot is public by default,
// and the lists exist to restrict a private deployment.
type AllowList struct {
	users  map[string]struct{}
	groups map[string]struct{}
}

// NewAllowList creates an AllowList with O(1) lookups. Entries are trimmed
// and lowercased at construction time so IsAllowed can use direct map
// lookups. Entries may be numeric IDs or usernames (with or without a
// leading @).
func NewAllowList(users, groups []string) *AllowList {
	a := &AllowList{
		users:  make(map[string]struct{}, len(users)),
		groups: make(map[string]struct{}, len(groups)),
	}
	for _, u := range users {
		a.users[normalize(u)] = struct{}{}
	}
	for _, g := range groups {
		a.groups[normalize(g)] = struct{}{}
	}
	return a
}

// IsAllowed reports whether the message sender or chat is permitted.
//
// Rules:
//   - If both lists are empty, allow (public bot).
//   - If the sender's ID or username matches a user entry, allow.
//   - If the chat's ID matches a group entry, allow.
//   - Otherwise deny.
func (a *AllowList) IsAllowed(msg message.InboundMessage) bool {
	if a == nil || (len(a.users) == 0 && len(a.groups) == 0) {
		return true
	}

	if _, ok := a.users[normalize(msg.Sender.ID)]; ok {
		return true
	}
	if msg.Sender.Username != "" {
		if _, ok := a.users[normalize(msg.Sender.Username)]; ok {
			return true
		}
	}
	if _, ok := a.groups[normalize(msg.Chat.ID)]; ok {
		return true
	}
	return false
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(s, "@")))
}
