package collector

import (
	"context"
	"strings"

	"statreporter/internal/config"
	"statreporter/internal/source"
)

const (
	criticalPercent = 90
	warningPercent  = 70
)

// DiskUsageCollector reports mounted filesystem usage from the configured df command.
type DiskUsageCollector struct {
	BaseCollector
}

// NewDiskUsageCollector creates a new disk usage collector.
func NewDiskUsageCollector(env *Env) *DiskUsageCollector {
	return &DiskUsageCollector{
		BaseCollector: NewBaseCollector("disk_usage", env),
	}
}

// Configure applies the configuration to the collector.
func (c *DiskUsageCollector) Configure(cfg config.CollectorConfig) error {
	c.SetEnabled(cfg.Enabled)
	return nil
}

// Collect runs df and parses its table.
func (c *DiskUsageCollector) Collect(ctx context.Context) (*MetricData, error) {
	out := c.env.run(ctx, c.env.Commands.DiskUsage)
	entries := source.Map(out, ParseDiskUsage)
	return c.metric(DiskUsageInfo{Entries: entries}), nil
}

// Fallback returns a DiskUsageInfo with the entry list failed.
func (c *DiskUsageCollector) Fallback(reason source.Reason, detail string) *MetricData {
	return c.metric(DiskUsageFallback(reason, detail))
}

// DiskUsageFallback builds a DiskUsageInfo that carries reason.
func DiskUsageFallback(reason source.Reason, detail string) DiskUsageInfo {
	return DiskUsageInfo{Entries: source.Fail[[]DiskUsageEntry](reason, detail)}
}

// ParseDiskUsage parses "df --output=source,fstype,size,used,avail,pcent,target"
// output. The header line is dropped, short rows are skipped and mount
// points containing spaces are kept whole.
func ParseDiskUsage(text string) []DiskUsageEntry {
	lines := strings.Split(text, "\n")
	entries := make([]DiskUsageEntry, 0, len(lines))
	for i, line := range lines {
		if i == 0 {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 7 {
			continue
		}
		entries = append(entries, DiskUsageEntry{
			Source:   fields[0],
			FSType:   fields[1],
			Size:     fields[2],
			Used:     fields[3],
			Avail:    fields[4],
			Percent:  fields[5],
			Target:   strings.Join(fields[6:], " "),
			Severity: UsageSeverity(fields[5]),
		})
	}
	return entries
}

// UsageSeverity ranks a df percentage such as "85%": above 90 is critical,
// above 70 a warning. Anything unparsable ("-") is unknown.
func UsageSeverity(pcent string) Severity {
	v, err := source.ParseInt(strings.TrimSuffix(strings.TrimSpace(pcent), "%"))
	if err != nil {
		return SeverityUnknown
	}
	switch {
	case v > criticalPercent:
		return SeverityCritical
	case v > warningPercent:
		return SeverityWarning
	default:
		return SeverityOK
	}
}
