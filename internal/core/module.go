// Package core provides the module system foundation for azura.
// Every functional unit (the Telegram channel, scrapers, providers,
// the store, the gateway) is a module that self-registers in init()
// and is driven through a uniform lifecycle by the App.
package core

import (
	"context"

	"gopkg.in/yaml.v3"
)

// ModuleID uniquely identifies a module, namespaced by dots
// (e.g. "channel.telegram", "scraper.reddit", "store.sql").
type ModuleID string

// Namespace returns the portion of the ID before the first dot,
// or the whole ID if there is no dot.
func (id ModuleID) Namespace() string {
	for i := 0; i < len(id); i++ {
		if id[i] == '.' {
			return string(id[:i])
		}
	}
	return string(id)
}

// Module is the minimal interface every azura module implements.
type Module interface {
	ModuleInfo() ModuleInfo
}

// ModuleInfo describes a registered module.
type ModuleInfo struct {
	// ID is the unique module identifier.
	ID ModuleID

	// New returns a fresh, unconfigured instance of the module.
	New func() Module
}

// Configurable is implemented by modules that accept YAML configuration.
// Called after instantiation and before Provision().
// The node contains the raw YAML for this module's config section.
type Configurable interface {
	Configure(node *yaml.Node) error
}

// Provisioner is implemented by modules that need setup after instantiation.
// This is where modules should set defaults, open connections,
// and register services on the AppContext.
type Provisioner interface {
	Provision(ctx *AppContext) error
}

// Validator is implemented by modules that can verify their configuration
// is complete and correct. Called after Provision().
// Validate should be read-only with no side effects.
type Validator interface {
	Validate() error
}

// Starter is implemented by modules that need to start background work
// (goroutines, listeners, pollers). Called after all modules are
// provisioned and validated.
type Starter interface {
	Start() error
}

// Stopper is implemented by modules that need to clean up resources.
// Called during shutdown in reverse order of Start().
type Stopper interface {
	Stop(ctx context.Context) error
}
