package collector

import (
	"fmt"
	"sync"

	"statreporter/internal/config"
)

// Registry holds collectors in registration order, which is also the
// order a snapshot collects them in.
type Registry struct {
	mu         sync.RWMutex
	order      []string
	collectors map[string]Collector
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		collectors: make(map[string]Collector),
	}
}

// Register adds a collector to the registry.
func (r *Registry) Register(c Collector) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := c.Name()
	if _, exists := r.collectors[name]; exists {
		return fmt.Errorf("collector %s already registered", name)
	}

	r.collectors[name] = c
	r.order = append(r.order, name)
	return nil
}

// Get retrieves a collector by name.
func (r *Registry) Get(name string) (Collector, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.collectors[name]
	return c, ok
}

// All returns all registered collectors in registration order.
func (r *Registry) All() []Collector {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Collector, 0, len(r.order))
	for _, name := range r.order {
		result = append(result, r.collectors[name])
	}
	return result
}

// Range calls fn for every collector in registration order. Configure
// blocks until Range returns, so a collector is never reconfigured mid-run.
func (r *Registry) Range(fn func(Collector)) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, name := range r.order {
		fn(r.collectors[name])
	}
}

// Configure applies configuration to the registered collectors named in configs.
func (r *Registry) Configure(configs map[string]config.CollectorConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for name, cfg := range configs {
		if c, ok := r.collectors[name]; ok {
			if err := c.Configure(cfg); err != nil {
				return fmt.Errorf("failed to configure collector %s: %w", name, err)
			}
		}
	}
	return nil
}

// EnabledCollectors returns only the enabled collectors.
func (r *Registry) EnabledCollectors() []Collector {
	var result []Collector
	r.Range(func(c Collector) {
		if c.Enabled() {
			result = append(result, c)
		}
	})
	return result
}

// DefaultConfigs returns every collector's default configuration by name.
func (r *Registry) DefaultConfigs() map[string]config.CollectorConfig {
	defaults := make(map[string]config.CollectorConfig)
	r.Range(func(c Collector) {
		defaults[c.Name()] = c.DefaultConfig()
	})
	return defaults
}

// DefaultRegistry creates a registry with every collector registered in
// report order.
func DefaultRegistry(env *Env) *Registry {
	r := NewRegistry()

	_ = r.Register(NewGeneralCollector(env))
	_ = r.Register(NewMemoryCollector(env))
	_ = r.Register(NewTemperatureCollector(env))
	_ = r.Register(NewPowerCollector(env))
	_ = r.Register(NewStorageCollector(env))
	_ = r.Register(NewDiskUsageCollector(env))
	_ = r.Register(NewNetworkCollector(env))
	_ = r.Register(NewProcessCollector(env))
	_ = r.Register(NewWebPortCollector(env))

	return r
}
