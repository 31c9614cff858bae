package collector

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/host"
	"golang.org/x/sys/unix"

	"statreporter/internal/config"
	"statreporter/internal/source"
)

// GeneralCollector reports hostname, kernel and uptime.
type GeneralCollector struct {
	BaseCollector
	hostInfo func(ctx context.Context) (*host.InfoStat, error)
	uname    func(*unix.Utsname) error
}

// NewGeneralCollector creates a new general info collector.
func NewGeneralCollector(env *Env) *GeneralCollector {
	return &GeneralCollector{
		BaseCollector: NewBaseCollector("general", env),
		hostInfo:      host.InfoWithContext,
		uname:         unix.Uname,
	}
}

// Configure applies the configuration to the collector.
func (c *GeneralCollector) Configure(cfg config.CollectorConfig) error {
	c.SetEnabled(cfg.Enabled)
	return nil
}

// Collect gathers host identity and uptime.
func (c *GeneralCollector) Collect(ctx context.Context) (*MetricData, error) {
	var uts unix.Utsname
	unameErr := c.uname(&uts)

	info := GeneralInfo{
		Hostname: c.hostname(ctx, &uts, unameErr),
		Kernel:   kernel(&uts, unameErr),
	}

	info.Uptime = source.Then(c.env.read(ctx, c.env.Proc("uptime")), parseUptime)
	if d, ok := info.Uptime.Get(); ok {
		info.UptimeText = FormatUptime(d)
	} else {
		info.UptimeText = uptimeFallback(info.Uptime.Reason)
	}

	return c.metric(info), nil
}

// Fallback returns a GeneralInfo with every field failed.
func (c *GeneralCollector) Fallback(reason source.Reason, detail string) *MetricData {
	return c.metric(GeneralFallback(reason, detail))
}

// GeneralFallback builds a GeneralInfo whose fields all carry reason.
func GeneralFallback(reason source.Reason, detail string) GeneralInfo {
	return GeneralInfo{
		Hostname:   source.Fail[string](reason, detail),
		Kernel:     source.Fail[string](reason, detail),
		Uptime:     source.Fail[time.Duration](reason, detail),
		UptimeText: uptimeFallback(reason),
	}
}

func (c *GeneralCollector) hostname(ctx context.Context, uts *unix.Utsname, unameErr error) source.Result[string] {
	info, err := c.hostInfo(ctx)
	if err == nil && info != nil && info.Hostname != "" {
		return source.OK(info.Hostname)
	}
	if unameErr == nil {
		if name := unix.ByteSliceToString(uts.Nodename[:]); name != "" {
			return source.OK(name)
		}
	}
	if err != nil {
		return source.Fail[string](source.UnexpectedError, err.Error())
	}
	return source.Fail[string](source.SourceNotFound, "hostname is empty")
}

func kernel(uts *unix.Utsname, unameErr error) source.Result[string] {
	if unameErr != nil {
		return source.Fail[string](source.Classify(unameErr), unameErr.Error())
	}
	name := unix.ByteSliceToString(uts.Sysname[:])
	release := unix.ByteSliceToString(uts.Release[:])
	return source.OK(strings.TrimSpace(name + " " + release))
}

// parseUptime reads the first field of /proc/uptime (seconds since boot).
func parseUptime(text string) (time.Duration, error) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return 0, fmt.Errorf("empty uptime")
	}
	secs, err := source.ParseFloat(fields[0])
	if err != nil {
		return 0, err
	}
	if secs < 0 {
		return 0, fmt.Errorf("negative uptime %q", fields[0])
	}
	return time.Duration(secs * float64(time.Second)), nil
}

// FormatUptime renders d as "<h>h <m>min <s>s"; hours are not wrapped into days.
func FormatUptime(d time.Duration) string {
	total := int64(d / time.Second)
	return fmt.Sprintf("%dh %dmin %ds", total/3600, (total%3600)/60, total%60)
}

func uptimeFallback(reason source.Reason) string {
	return fmt.Sprintf("uptime unavailable (%s)", reason)
}
