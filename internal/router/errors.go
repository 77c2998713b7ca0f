// Package router fans inbound chat messages out to a worker pool that
// runs the bot and delivers the replies through the channel dispatcher.
package router

import "errors"

// Sentinel errors for router operations.
var (
	// ErrInboxFull indicates the router's message inbox is at capacity
	// and the incoming message was dropped. Callers should back off or
	// alert the operator.
	ErrInboxFull = errors.New("router: inbox full, message dropped")

	// ErrRouterStopped indicates the router has been shut down and is
	// no longer accepting messages.
	ErrRouterStopped = errors.New("router: stopped")

	// ErrNoHandler indicates no message handler has been configured.
	ErrNoHandler = errors.New("router: no handler configured")

	// ErrNoSender indicates no response sender has been configured.
	// The router cannot deliver replies without one.
	ErrNoSender = errors.New("router: no sender configured")
)
