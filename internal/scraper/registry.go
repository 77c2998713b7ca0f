package scraper

import (
	"sync"

	"github.com/azura-ai/azura/internal/core"
	"github.com/azura-ai/azura/pkg/post"
)

// ServiceName is the AppContext service name the shared registry lives under.
const ServiceName = "scrapers"

// Registry collects the scrapers provisioned in the current app so
// consumers (scheduled scrape jobs, the gateway) can iterate them without
// knowing which platform modules are enabled.
type Registry struct {
	mu       sync.RWMutex
	scrapers []Scraper
}

// Add appends a scraper. Called by scraper modules during provisioning.
func (r *Registry) Add(s Scraper) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scrapers = append(r.scrapers, s)
}

// All returns a snapshot of the registered scrapers.
func (r *Registry) All() []Scraper {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Scraper, len(r.scrapers))
	copy(out, r.scrapers)
	return out
}

// ByPlatform returns the scraper for a platform, or false.
func (r *Registry) ByPlatform(p post.Platform) (Scraper, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.scrapers {
		if s.Platform() == p {
			return s, true
		}
	}
	return nil, false
}

// Register adds a scraper to the app-wide registry, creating it on first
// use. Modules call this from Provision.
func Register(ctx *core.AppContext, s Scraper) *Registry {
	reg, ok := ctx.Service(ServiceName)
	if !ok {
		reg = &Registry{}
		ctx.RegisterService(ServiceName, reg)
	}
	r := reg.(*Registry)
	r.Add(s)
	return r
}
