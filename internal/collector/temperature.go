package collector

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"statreporter/internal/config"
	"statreporter/internal/logger"
	"statreporter/internal/source"
)

const thermalZonePrefix = "thermal_zone"

// TemperatureCollector reads thermal zones from sysfs and GPU temperatures
// from the configured GPU command.
type TemperatureCollector struct {
	BaseCollector
	includeZones []string // zone names or labels to keep; empty means all
}

// NewTemperatureCollector creates a new temperature collector.
func NewTemperatureCollector(env *Env) *TemperatureCollector {
	return &TemperatureCollector{
		BaseCollector: NewBaseCollector("temperature", env),
	}
}

// Configure applies the configuration to the collector.
func (c *TemperatureCollector) Configure(cfg config.CollectorConfig) error {
	c.SetEnabled(cfg.Enabled)
	c.includeZones = cfg.IncludeZones
	return nil
}

// Collect gathers thermal zone and GPU temperatures.
func (c *TemperatureCollector) Collect(ctx context.Context) (*MetricData, error) {
	info := TemperatureInfo{
		Sensors: c.collectZones(ctx),
		GPU:     c.collectGPU(ctx),
	}
	if !info.Sensors.Ok() {
		log := logger.WithComponent("collector")
		log.Debug().
			Str("collector", c.Name()).
			Str("reason", info.Sensors.Reason.String()).
			Msg("No thermal sensor readings")
	}
	return c.metric(info), nil
}

// Fallback returns a TemperatureInfo with both lists failed.
func (c *TemperatureCollector) Fallback(reason source.Reason, detail string) *MetricData {
	return c.metric(TemperatureFallback(reason, detail))
}

// TemperatureFallback builds a TemperatureInfo whose lists carry reason.
func TemperatureFallback(reason source.Reason, detail string) TemperatureInfo {
	return TemperatureInfo{
		Sensors: source.Fail[[]TemperatureReading](reason, detail),
		GPU:     source.Fail[[]TemperatureReading](reason, detail),
	}
}

func (c *TemperatureCollector) collectZones(ctx context.Context) source.Result[[]TemperatureReading] {
	dir := c.env.Sys("class", "thermal")
	entries := c.env.list(dir)
	if !entries.Ok() && entries.Reason != source.SourceNotFound {
		return source.Fail[[]TemperatureReading](entries.Reason, entries.Detail)
	}

	zones := thermalZones(entries.Value)
	readings := make([]TemperatureReading, 0, len(zones))
	for _, zone := range zones {
		label := zone
		if t, ok := c.env.read(ctx, c.env.Sys("class", "thermal", zone, "type")).Get(); ok && t != "" {
			label = t
		}
		if !c.shouldInclude(zone, label) {
			continue
		}

		readings = append(readings, TemperatureReading{
			Label:   label,
			Zone:    zone,
			Celsius: source.Then(c.env.read(ctx, c.env.Sys("class", "thermal", zone, "temp")), parseMilliCelsius),
		})
	}

	if len(readings) == 0 {
		return source.Fail[[]TemperatureReading](source.SourceNotFound, "no thermal sensor found")
	}
	return source.OK(readings)
}

func (c *TemperatureCollector) collectGPU(ctx context.Context) source.Result[[]TemperatureReading] {
	out := c.env.run(ctx, c.env.Commands.GPUTemperature)
	if !out.Ok() {
		return source.Fail[[]TemperatureReading](out.Reason, out.Detail)
	}

	lines := nonEmptyLines(out.Value)
	if len(lines) == 0 {
		return source.Fail[[]TemperatureReading](source.SourceNotFound, "no GPU reported")
	}

	readings := make([]TemperatureReading, 0, len(lines))
	for i, line := range lines {
		label := "GPU (NVIDIA)"
		if len(lines) > 1 {
			label = fmt.Sprintf("GPU %d (NVIDIA)", i)
		}
		readings = append(readings, TemperatureReading{
			Label:   label,
			Celsius: source.Then(source.OK(line), parseCelsius),
		})
	}
	return source.OK(readings)
}

func (c *TemperatureCollector) shouldInclude(zone, label string) bool {
	if len(c.includeZones) == 0 {
		return true
	}
	for _, z := range c.includeZones {
		if z == zone || z == label {
			return true
		}
	}
	return false
}

// thermalZones keeps thermal_zoneN entries ordered by N.
func thermalZones(names []string) []string {
	var zones []string
	for _, name := range names {
		if _, ok := zoneIndex(name); ok {
			zones = append(zones, name)
		}
	}
	sort.Slice(zones, func(i, j int) bool {
		a, _ := zoneIndex(zones[i])
		b, _ := zoneIndex(zones[j])
		return a < b
	})
	return zones
}

func zoneIndex(name string) (int, bool) {
	if !strings.HasPrefix(name, thermalZonePrefix) {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimPrefix(name, thermalZonePrefix))
	return n, err == nil
}

// parseMilliCelsius converts sysfs millidegrees ("45500") to 45.5.
func parseMilliCelsius(text string) (float64, error) {
	milli, err := source.ParseInt(text)
	if err != nil {
		return 0, err
	}
	return math.Round(float64(milli)/100) / 10, nil
}

func parseCelsius(text string) (float64, error) {
	v, err := source.ParseFloat(text)
	if err != nil {
		return 0, err
	}
	return round1(v), nil
}

func nonEmptyLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
