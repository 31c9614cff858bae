package collector

import (
	"context"
	"fmt"
	"regexp"

	"statreporter/internal/config"
	"statreporter/internal/source"
)

const sectorSize = 512

// wholeDisk matches whole-disk names; partitions (sda1, nvme0n1p2) are excluded.
var wholeDisk = regexp.MustCompile(`^(?:[shv]d[a-z]+|nvme\d+n\d+|mmcblk\d+)$`)

// StorageCollector lists physical block devices from sysfs.
type StorageCollector struct {
	BaseCollector
}

// NewStorageCollector creates a new storage collector.
func NewStorageCollector(env *Env) *StorageCollector {
	return &StorageCollector{
		BaseCollector: NewBaseCollector("storage", env),
	}
}

// Configure applies the configuration to the collector.
func (c *StorageCollector) Configure(cfg config.CollectorConfig) error {
	c.SetEnabled(cfg.Enabled)
	return nil
}

// Collect gathers model, capacity and media type for each whole disk.
func (c *StorageCollector) Collect(ctx context.Context) (*MetricData, error) {
	return c.metric(StorageInfo{Devices: c.collectDevices(ctx)}), nil
}

// Fallback returns a StorageInfo with the device list failed.
func (c *StorageCollector) Fallback(reason source.Reason, detail string) *MetricData {
	return c.metric(StorageFallback(reason, detail))
}

// StorageFallback builds a StorageInfo that carries reason.
func StorageFallback(reason source.Reason, detail string) StorageInfo {
	return StorageInfo{Devices: source.Fail[[]BlockDevice](reason, detail)}
}

func (c *StorageCollector) collectDevices(ctx context.Context) source.Result[[]BlockDevice] {
	entries := c.env.list(c.env.Sys("block"))
	if !entries.Ok() {
		return source.Fail[[]BlockDevice](entries.Reason, entries.Detail)
	}

	devices := make([]BlockDevice, 0, len(entries.Value))
	for _, name := range entries.Value {
		if !wholeDisk.MatchString(name) {
			continue
		}
		devices = append(devices, c.readDevice(ctx, name))
	}
	if len(devices) == 0 {
		return source.Fail[[]BlockDevice](source.SourceNotFound, "no block device found")
	}
	return source.OK(devices)
}

func (c *StorageCollector) readDevice(ctx context.Context, name string) BlockDevice {
	attr := func(elem ...string) source.Result[string] {
		return c.env.read(ctx, c.env.Sys(append([]string{"block", name}, elem...)...))
	}

	model := attr("device", "model")
	if m, ok := model.Get(); !ok || m == "" {
		// mmcblk devices expose their model as device/name.
		alt := attr("device", "name")
		switch v, ok := alt.Get(); {
		case ok && v != "":
			model = alt
		case model.Ok():
			model = source.Fail[string](source.MalformedValue, "empty model")
		}
	}

	return BlockDevice{
		Name:       name,
		Model:      model,
		SizeGB:     source.Then(attr("size"), parseSectorsGB),
		Rotational: source.Then(attr("queue", "rotational"), parseRotational),
	}
}

// parseSectorsGB converts a sysfs size (512-byte sectors) to decimal GB.
func parseSectorsGB(text string) (float64, error) {
	sectors, err := source.ParseUint(text)
	if err != nil {
		return 0, err
	}
	return round1(float64(sectors) * sectorSize / 1e9), nil
}

func parseRotational(text string) (bool, error) {
	switch text {
	case "1":
		return true, nil
	case "0":
		return false, nil
	default:
		return false, fmt.Errorf("unexpected rotational value %q", text)
	}
}
