// Package snapshot assembles one point-in-time record of every collector.
package snapshot

import (
	"context"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"

	"statreporter/internal/collector"
	"statreporter/internal/logger"
	"statreporter/internal/source"
)

// Snapshot holds one record per domain. It is never mutated after
// Aggregator.Collect returns it.
type Snapshot struct {
	Timestamp    time.Time                 `json:"timestamp"`
	General      collector.GeneralInfo     `json:"general"`
	Memory       collector.MemoryInfo      `json:"memory"`
	Temperatures collector.TemperatureInfo `json:"temperatures"`
	Power        collector.PowerInfo       `json:"power"`
	Storage      collector.StorageInfo     `json:"storage"`
	Disks        collector.DiskUsageInfo   `json:"disks"`
	Network      collector.NetworkInfo     `json:"network"`
	Processes    collector.ProcessInfo     `json:"processes"`
	WebPorts     collector.WebPortInfo     `json:"web_ports"`
}

// Empty returns a Snapshot whose every record carries reason.
func Empty(ts time.Time, reason source.Reason, detail string) *Snapshot {
	return &Snapshot{
		Timestamp:    ts,
		General:      collector.GeneralFallback(reason, detail),
		Memory:       collector.MemoryFallback(reason, detail),
		Temperatures: collector.TemperatureFallback(reason, detail),
		Power:        collector.PowerFallback(reason, detail),
		Storage:      collector.StorageFallback(reason, detail),
		Disks:        collector.DiskUsageFallback(reason, detail),
		Network:      collector.NetworkFallback(reason, detail),
		Processes:    collector.ProcessFallback(reason, detail),
		WebPorts:     collector.WebPortFallback(reason, detail),
	}
}

// Hostname returns the collected hostname, or "" when it is unknown.
func (s *Snapshot) Hostname() string {
	return s.General.Hostname.Or("")
}

// Aggregator runs the registered collectors one at a time.
type Aggregator struct {
	registry *collector.Registry
	clock    clock.Clock
}

// NewAggregator creates an aggregator over registry.
func NewAggregator(registry *collector.Registry, clk clock.Clock) *Aggregator {
	if clk == nil {
		clk = clock.New()
	}
	return &Aggregator{registry: registry, clock: clk}
}

// Collect runs every collector in registration order and returns a complete
// Snapshot. Domains without a registered collector report reason disabled.
func (a *Aggregator) Collect(ctx context.Context) *Snapshot {
	log := logger.WithComponent("aggregator")
	start := a.clock.Now()
	snap := Empty(start, source.Disabled, "collector not registered")

	a.registry.Range(func(c collector.Collector) {
		data := a.run(ctx, c)
		if err := snap.set(data); err != nil {
			log.Warn().Err(err).Str("collector", c.Name()).Msg("Discarding collector record")
		}
	})

	log.Debug().Dur("duration", a.clock.Since(start)).Msg("Snapshot collected")
	return snap
}

func (a *Aggregator) run(ctx context.Context, c collector.Collector) (data *collector.MetricData) {
	log := logger.WithComponent("aggregator")
	name := c.Name()

	if !c.Enabled() {
		return c.Fallback(source.Disabled, "disabled in configuration")
	}

	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("collector", name).Interface("panic", r).Msg("Collector panicked")
			data = c.Fallback(source.UnexpectedError, fmt.Sprintf("panic: %v", r))
		}
	}()

	data, err := c.Collect(ctx)
	if err != nil {
		reason := source.UnexpectedError
		if ctx.Err() != nil {
			reason = source.Timeout
		}
		log.Warn().Err(err).Str("collector", name).Msg("Collection failed")
		return c.Fallback(reason, err.Error())
	}
	if data == nil {
		log.Warn().Str("collector", name).Msg("Collector returned nil data")
		return c.Fallback(source.UnexpectedError, "collector returned no data")
	}
	return data
}

func (s *Snapshot) set(m *collector.MetricData) error {
	if m == nil {
		return fmt.Errorf("nil record")
	}
	switch d := m.Data.(type) {
	case collector.GeneralInfo:
		s.General = d
	case collector.MemoryInfo:
		s.Memory = d
	case collector.TemperatureInfo:
		s.Temperatures = d
	case collector.PowerInfo:
		s.Power = d
	case collector.StorageInfo:
		s.Storage = d
	case collector.DiskUsageInfo:
		s.Disks = d
	case collector.NetworkInfo:
		s.Network = d
	case collector.ProcessInfo:
		s.Processes = d
	case collector.WebPortInfo:
		s.WebPorts = d
	default:
		return fmt.Errorf("unexpected record type %T", m.Data)
	}
	return nil
}
