// Package collector provides the host telemetry collectors. Every collector
// returns its declared record shape; failures are carried inside the record
// as source.Result values rather than returned as errors.
package collector

import (
	"context"
	"time"

	"statreporter/internal/config"
	"statreporter/internal/source"
)

// Collector defines the interface for all metric collectors.
type Collector interface {
	// Name returns the unique identifier for this collector.
	Name() string

	// Collect gathers the collector's record. A non-nil error is only
	// returned when ctx is done; source failures are folded into the record.
	Collect(ctx context.Context) (*MetricData, error)

	// Fallback returns the record reported when the collector could not run.
	Fallback(reason source.Reason, detail string) *MetricData

	// Configure applies the given configuration to the collector.
	Configure(cfg config.CollectorConfig) error

	// Enabled returns whether the collector is enabled.
	Enabled() bool

	// DefaultConfig returns the default CollectorConfig for this collector.
	DefaultConfig() config.CollectorConfig
}

// MetricData is the common wrapper for all collected records.
type MetricData struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// BaseCollector provides common functionality for all collectors.
type BaseCollector struct {
	name    string
	enabled bool
	env     *Env
}

// NewBaseCollector creates an enabled BaseCollector bound to env.
func NewBaseCollector(name string, env *Env) BaseCollector {
	return BaseCollector{
		name:    name,
		enabled: true,
		env:     env,
	}
}

// Name returns the collector name.
func (b *BaseCollector) Name() string {
	return b.name
}

// Enabled returns whether the collector is enabled.
func (b *BaseCollector) Enabled() bool {
	return b.enabled
}

// SetEnabled sets whether the collector is enabled.
func (b *BaseCollector) SetEnabled(enabled bool) {
	b.enabled = enabled
}

// DefaultConfig returns the default CollectorConfig for this collector.
func (b *BaseCollector) DefaultConfig() config.CollectorConfig {
	return config.CollectorConfig{Enabled: true}
}

func (b *BaseCollector) metric(data interface{}) *MetricData {
	return &MetricData{
		Type:      b.name,
		Timestamp: b.env.Clock.Now(),
		Data:      data,
	}
}
