// Package telegram implements the Telegram Bot API channel for Azura.
//
// It provides a bidirectional bridge between Telegram and the
// platform-agnostic message model, supporting:
//
//   - Inbound conversion with bot command parsing (/radar, /detective, ...)
//     and photo attachment resolution
//   - Outbound dispatch with automatic chunking at Telegram's 4096-byte cap
//   - Two delivery modes: long-polling (default) and webhook
//   - Typing indicators via sendChatAction while slow commands run
//   - MarkdownV2 escaping and formatting utilities
//
// The module registers itself as "channel.telegram" via init() and wires the
// command bot from the shared service registry: the SQL store, the scraper
// registry, the provider chain, and the rate limiter.
//
// No external Telegram library is used. The module communicates with the
// Bot API via raw net/http + encoding/json.
package telegram
