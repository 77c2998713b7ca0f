package provider

import (
	"sync"

	"github.com/azura-ai/azura/internal/core"
)

// EntryServiceName is the AppContext service name the shared entry set
// lives under.
const EntryServiceName = "provider.entries"

// EntrySet collects the chain entries contributed by provider modules
// during provisioning. The first consumer that needs completions builds
// the failover Chain from the accumulated entries; later consumers get
// the same Chain.
type EntrySet struct {
	mu      sync.Mutex
	entries []ChainEntry
	chain   *Chain
}

// Add appends a chain entry. Calling Add after the chain has been built
// has no effect on the existing chain.
func (s *EntrySet) Add(e ChainEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, e)
}

// Len returns the number of contributed entries.
func (s *EntrySet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Chain builds the failover chain from the contributed entries, once.
// Returns ErrNoProvider when no provider module contributed an entry.
func (s *EntrySet) Chain(opts ...ChainOption) (*Chain, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.chain != nil {
		return s.chain, nil
	}

	chain, err := NewChain(s.entries, opts...)
	if err != nil {
		return nil, err
	}
	s.chain = chain
	return chain, nil
}

// RegisterEntry adds a chain entry to the app-wide entry set, creating
// it on first use. Provider modules call this from Provision.
func RegisterEntry(ctx *core.AppContext, e ChainEntry) *EntrySet {
	svc, ok := ctx.Service(EntryServiceName)
	if !ok {
		svc = &EntrySet{}
		ctx.RegisterService(EntryServiceName, svc)
	}
	set := svc.(*EntrySet)
	set.Add(e)
	return set
}

// ChainFrom builds (or returns) the app-wide chain. Returns nil and no
// error when no provider modules are loaded: consumers treat a nil chain
// as "model-backed features disabled".
func ChainFrom(ctx *core.AppContext) (*Chain, error) {
	svc, ok := ctx.Service(EntryServiceName)
	if !ok {
		return nil, nil
	}
	return svc.(*EntrySet).Chain(WithLogger(ctx.Logger))
}
