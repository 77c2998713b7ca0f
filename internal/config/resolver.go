package config

import "slices"

// Resolve returns a sorted list of module IDs from the configuration.
// The deterministic order ensures consistent module loading: the store
// ("store.*") sorts after "scraper.*" alphabetically, but modules resolve
// their dependencies lazily through the service registry at Start() time,
// so load order only needs to be stable, not topological.
func Resolve(cfg *Config) []string {
	ids := make([]string, 0, len(cfg.Modules))
	for id := range cfg.Modules {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
