package channel

import (
	"context"
	"fmt"
	"sync"

	"github.com/azura-ai/azura/internal/core"
	"github.com/azura-ai/azura/pkg/message"
)

// ServiceName is the AppContext service name the shared dispatcher lives under.
const ServiceName = "channels"

// Dispatcher routes outbound messages to the correct registered channel.
// Background jobs and the gateway use it to push alerts and replies
// without holding a reference to a concrete channel.
type Dispatcher struct {
	mu       sync.RWMutex
	channels map[string]Channel
}

// NewDispatcher creates an empty Dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		channels: make(map[string]Channel),
	}
}

// Register adds a channel under the given name.
// Returns ErrDuplicateChannel if the name is already taken.
func (d *Dispatcher) Register(name string, ch Channel) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.channels[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateChannel, name)
	}
	d.channels[name] = ch
	return nil
}

// Get returns the channel registered under name, or false if none.
func (d *Dispatcher) Get(name string) (Channel, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	ch, ok := d.channels[name]
	return ch, ok
}

// Send dispatches an outbound message to the named channel. It returns
// ErrNoChannel if no channel is registered under that name.
func (d *Dispatcher) Send(ctx context.Context, name string, msg message.OutboundMessage) error {
	d.mu.RLock()
	ch, ok := d.channels[name]
	d.mu.RUnlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrNoChannel, name)
	}
	return ch.Send(ctx, msg)
}

// RegisterChannel adds a channel to the app-wide dispatcher, creating it on
// first use. Channel modules call this from Provision so background jobs can
// reach any platform through the "channels" service.
func RegisterChannel(ctx *core.AppContext, name string, ch Channel) (*Dispatcher, error) {
	svc, ok := ctx.Service(ServiceName)
	if !ok {
		svc = NewDispatcher()
		ctx.RegisterService(ServiceName, svc)
	}
	d := svc.(*Dispatcher)
	if err := d.Register(name, ch); err != nil {
		return nil, err
	}
	return d, nil
}

// SendTyping shows a typing indicator on the named channel. Channels
// without typing support are a silent no-op.
func (d *Dispatcher) SendTyping(ctx context.Context, name string, chat message.Chat) error {
	d.mu.RLock()
	ch, ok := d.channels[name]
	d.mu.RUnlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrNoChannel, name)
	}
	if tc, ok := ch.(TypingChannel); ok {
		return tc.SendTyping(ctx, chat)
	}
	return nil
}

// Channels returns the names of all registered channels.
func (d *Dispatcher) Channels() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	names := make([]string, 0, len(d.channels))
	for name := range d.channels {
		names = append(names, name)
	}
	return names
}
