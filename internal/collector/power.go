package collector

import (
	"context"
	"fmt"
	"strings"

	"statreporter/internal/config"
	"statreporter/internal/source"
)

var (
	defaultBatteryPrefixes = []string{"BAT"}
	defaultACPrefixes      = []string{"AC", "ADP"}
)

// PowerCollector reports every battery and AC adapter under power_supply.
// Devices matching neither prefix set (peripheral batteries, USB-C ports) are skipped.
type PowerCollector struct {
	BaseCollector
	batteryPrefixes []string
	acPrefixes      []string
}

// NewPowerCollector creates a new power collector.
func NewPowerCollector(env *Env) *PowerCollector {
	return &PowerCollector{
		BaseCollector:   NewBaseCollector("power", env),
		batteryPrefixes: defaultBatteryPrefixes,
		acPrefixes:      defaultACPrefixes,
	}
}

// Configure applies the configuration to the collector.
func (c *PowerCollector) Configure(cfg config.CollectorConfig) error {
	c.SetEnabled(cfg.Enabled)
	c.batteryPrefixes = defaultBatteryPrefixes
	if len(cfg.BatteryPrefixes) > 0 {
		c.batteryPrefixes = cfg.BatteryPrefixes
	}
	c.acPrefixes = defaultACPrefixes
	if len(cfg.ACPrefixes) > 0 {
		c.acPrefixes = cfg.ACPrefixes
	}
	return nil
}

// DefaultConfig returns the default CollectorConfig for this collector.
func (c *PowerCollector) DefaultConfig() config.CollectorConfig {
	return config.CollectorConfig{
		Enabled:         true,
		BatteryPrefixes: defaultBatteryPrefixes,
		ACPrefixes:      defaultACPrefixes,
	}
}

// Collect gathers battery and AC adapter state.
func (c *PowerCollector) Collect(ctx context.Context) (*MetricData, error) {
	return c.metric(PowerInfo{Supplies: c.collectSupplies(ctx)}), nil
}

// Fallback returns a PowerInfo with the supply list failed.
func (c *PowerCollector) Fallback(reason source.Reason, detail string) *MetricData {
	return c.metric(PowerFallback(reason, detail))
}

// PowerFallback builds a PowerInfo that carries reason.
func PowerFallback(reason source.Reason, detail string) PowerInfo {
	return PowerInfo{Supplies: source.Fail[PowerSupplies](reason, detail)}
}

func (c *PowerCollector) collectSupplies(ctx context.Context) source.Result[PowerSupplies] {
	entries := c.env.list(c.env.Sys("class", "power_supply"))
	if !entries.Ok() && entries.Reason != source.SourceNotFound {
		return source.Fail[PowerSupplies](entries.Reason, entries.Detail)
	}

	var supplies PowerSupplies
	for _, name := range entries.Value {
		switch {
		case hasAnyPrefix(name, c.batteryPrefixes):
			supplies.Batteries = append(supplies.Batteries, c.readBattery(ctx, name))
		case hasAnyPrefix(name, c.acPrefixes):
			supplies.Adapters = append(supplies.Adapters, c.readAdapter(ctx, name))
		}
	}

	if len(supplies.Batteries) == 0 && len(supplies.Adapters) == 0 {
		return source.Fail[PowerSupplies](source.SourceNotFound, "no power source detected")
	}
	return source.OK(supplies)
}

func (c *PowerCollector) readBattery(ctx context.Context, name string) Battery {
	attr := func(file string) source.Result[string] {
		return c.env.read(ctx, c.env.Sys("class", "power_supply", name, file))
	}

	b := Battery{
		Name:          name,
		Status:        source.Then(attr("status"), parseBatteryStatus),
		Percent:       source.Then(attr("capacity"), parsePercent),
		ChargeNowMAh:  source.Then(attr("charge_now"), parseMicroAmpHours),
		ChargeFullMAh: source.Then(attr("charge_full"), parseMicroAmpHours),
	}
	if present, ok := attr("present").Get(); ok && present == "0" {
		b.Status = source.OK(BatteryNotPresent)
	}
	return b
}

func (c *PowerCollector) readAdapter(ctx context.Context, name string) ACAdapter {
	online := c.env.read(ctx, c.env.Sys("class", "power_supply", name, "online"))
	return ACAdapter{
		Name:   name,
		Online: source.Then(online, parseOnline),
	}
}

func parseBatteryStatus(text string) (BatteryStatus, error) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "":
		return "", fmt.Errorf("empty status")
	case "charging":
		return BatteryCharging, nil
	case "discharging":
		return BatteryDischarging, nil
	case "full":
		return BatteryFull, nil
	default:
		return BatteryUnknown, nil
	}
}

func parsePercent(text string) (int, error) {
	v, err := source.ParseInt(text)
	if err != nil {
		return 0, err
	}
	if v < 0 || v > 100 {
		return 0, fmt.Errorf("capacity %d out of range", v)
	}
	return int(v), nil
}

// parseMicroAmpHours converts a sysfs charge value (µAh) to mAh.
func parseMicroAmpHours(text string) (float64, error) {
	v, err := source.ParseUint(text)
	if err != nil {
		return 0, err
	}
	return float64(v) / 1000, nil
}

func parseOnline(text string) (bool, error) {
	switch strings.TrimSpace(text) {
	case "1":
		return true, nil
	case "0":
		return false, nil
	default:
		return false, fmt.Errorf("unexpected online value %q", text)
	}
}

func hasAnyPrefix(name string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}
