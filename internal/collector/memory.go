package collector

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"statreporter/internal/config"
	"statreporter/internal/source"
)

const kibPerGiB = 1024 * 1024

// MemoryCollector parses /proc/meminfo.
type MemoryCollector struct {
	BaseCollector
}

// NewMemoryCollector creates a new memory collector.
func NewMemoryCollector(env *Env) *MemoryCollector {
	return &MemoryCollector{
		BaseCollector: NewBaseCollector("memory", env),
	}
}

// Configure applies the configuration to the collector.
func (c *MemoryCollector) Configure(cfg config.CollectorConfig) error {
	c.SetEnabled(cfg.Enabled)
	return nil
}

// Collect gathers memory and swap usage.
func (c *MemoryCollector) Collect(ctx context.Context) (*MetricData, error) {
	stats := source.Then(c.env.read(ctx, c.env.Proc("meminfo")), ParseMeminfo)
	return c.metric(MemoryInfo{Stats: stats}), nil
}

// Fallback returns a MemoryInfo that carries reason.
func (c *MemoryCollector) Fallback(reason source.Reason, detail string) *MetricData {
	return c.metric(MemoryFallback(reason, detail))
}

// MemoryFallback builds a MemoryInfo that carries reason.
func MemoryFallback(reason source.Reason, detail string) MemoryInfo {
	return MemoryInfo{Stats: source.Fail[MemoryStats](reason, detail)}
}

// ParseMeminfo derives MemoryStats from meminfo text ("Key:   value kB" lines).
// MemTotal and MemAvailable are required; the rest default to zero.
func ParseMeminfo(text string) (MemoryStats, error) {
	values := make(map[string]uint64)
	scanner := bufio.NewScanner(strings.NewReader(text))
	for scanner.Scan() {
		key, rest, ok := strings.Cut(scanner.Text(), ":")
		if !ok {
			continue
		}
		fields := strings.Fields(rest)
		if len(fields) == 0 {
			continue
		}
		v, err := source.ParseUint(fields[0])
		if err != nil {
			continue
		}
		values[strings.TrimSpace(key)] = v
	}

	total, ok := values["MemTotal"]
	if !ok {
		return MemoryStats{}, fmt.Errorf("MemTotal missing")
	}
	available, ok := values["MemAvailable"]
	if !ok {
		return MemoryStats{}, fmt.Errorf("MemAvailable missing")
	}

	s := MemoryStats{
		TotalKiB:     total,
		AvailableKiB: available,
		CachedKiB:    values["Cached"] + values["Buffers"],
		SwapTotalKiB: values["SwapTotal"],
		SwapFreeKiB:  values["SwapFree"],
	}
	if total > available {
		s.UsedKiB = total - available
	}
	if s.SwapTotalKiB > s.SwapFreeKiB {
		s.SwapUsedKiB = s.SwapTotalKiB - s.SwapFreeKiB
	}

	s.TotalGiB = kibToGiB(s.TotalKiB)
	s.AvailableGiB = kibToGiB(s.AvailableKiB)
	s.UsedGiB = kibToGiB(s.UsedKiB)
	s.CachedGiB = kibToGiB(s.CachedKiB)
	s.SwapTotalGiB = kibToGiB(s.SwapTotalKiB)
	s.SwapUsedGiB = kibToGiB(s.SwapUsedKiB)
	s.UsedPercent = percentOf(s.UsedKiB, s.TotalKiB)
	s.SwapPercent = percentOf(s.SwapUsedKiB, s.SwapTotalKiB)
	return s, nil
}

func kibToGiB(kib uint64) float64 {
	return round2(float64(kib) / kibPerGiB)
}

// percentOf returns part/total as a percentage rounded to 0.1, or 0 when total is 0.
func percentOf(part, total uint64) float64 {
	if total == 0 {
		return 0
	}
	return round1(float64(part) / float64(total) * 100)
}
