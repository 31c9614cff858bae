package snapshot

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/benbjohnson/clock"

	"statreporter/internal/collector"
	"statreporter/internal/config"
	"statreporter/internal/logger"
	"statreporter/internal/source"
)

func init() {
	_ = logger.Init(logger.Config{Level: "disabled"})
}

// fakeCollector returns a fixed memory record, an error or a panic.
type fakeCollector struct {
	name    string
	enabled bool
	err     error
	panics  bool
	data    interface{}
}

func (f *fakeCollector) Name() string  { return f.name }
func (f *fakeCollector) Enabled() bool { return f.enabled }

func (f *fakeCollector) Collect(ctx context.Context) (*collector.MetricData, error) {
	if f.panics {
		panic("sensor exploded")
	}
	if f.err != nil {
		return nil, f.err
	}
	return &collector.MetricData{Type: f.name, Data: f.data}, nil
}

func (f *fakeCollector) Fallback(reason source.Reason, detail string) *collector.MetricData {
	return &collector.MetricData{Type: f.name, Data: collector.MemoryFallback(reason, detail)}
}

func (f *fakeCollector) Configure(cfg config.CollectorConfig) error {
	f.enabled = cfg.Enabled
	return nil
}

func (f *fakeCollector) DefaultConfig() config.CollectorConfig {
	return config.CollectorConfig{Enabled: true}
}

func newAggregator(t *testing.T, cs ...collector.Collector) *Aggregator {
	t.Helper()
	r := collector.NewRegistry()
	for _, c := range cs {
		if err := r.Register(c); err != nil {
			t.Fatalf("Register: %v", err)
		}
	}
	return NewAggregator(r, clock.NewMock())
}

func TestAggregator_UnregisteredDomainsAreDisabled(t *testing.T) {
	snap := newAggregator(t).Collect(context.Background())

	if snap.Memory.Stats.Reason != source.Disabled {
		t.Errorf("Memory reason = %q, want disabled", snap.Memory.Stats.Reason)
	}
	if snap.Network.Interfaces.Reason != source.Disabled {
		t.Errorf("Network reason = %q, want disabled", snap.Network.Interfaces.Reason)
	}
	if snap.Hostname() != "" {
		t.Errorf("Hostname() = %q, want empty", snap.Hostname())
	}
}

func TestAggregator_RecordIsPlaced(t *testing.T) {
	stats := collector.MemoryStats{TotalKiB: 100, AvailableKiB: 50, UsedKiB: 50, UsedPercent: 50}
	c := &fakeCollector{name: "memory", enabled: true, data: collector.MemoryInfo{Stats: source.OK(stats)}}

	snap := newAggregator(t, c).Collect(context.Background())
	got, ok := snap.Memory.Stats.Get()
	if !ok || got.UsedPercent != 50 {
		t.Errorf("Memory = %+v", snap.Memory)
	}
}

func TestAggregator_DisabledCollector(t *testing.T) {
	c := &fakeCollector{name: "memory", enabled: false}

	snap := newAggregator(t, c).Collect(context.Background())
	if snap.Memory.Stats.Reason != source.Disabled {
		t.Errorf("reason = %q, want disabled", snap.Memory.Stats.Reason)
	}
	if snap.Memory.Stats.Detail != "disabled in configuration" {
		t.Errorf("detail = %q", snap.Memory.Stats.Detail)
	}
}

func TestAggregator_PanicBecomesUnexpectedError(t *testing.T) {
	c := &fakeCollector{name: "memory", enabled: true, panics: true}

	snap := newAggregator(t, c).Collect(context.Background())
	if snap.Memory.Stats.Reason != source.UnexpectedError {
		t.Errorf("reason = %q, want unexpected_error", snap.Memory.Stats.Reason)
	}
}

func TestAggregator_ErrorReasons(t *testing.T) {
	c := &fakeCollector{name: "memory", enabled: true, err: errors.New("boom")}
	snap := newAggregator(t, c).Collect(context.Background())
	if snap.Memory.Stats.Reason != source.UnexpectedError {
		t.Errorf("reason = %q, want unexpected_error", snap.Memory.Stats.Reason)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c = &fakeCollector{name: "memory", enabled: true, err: context.Canceled}
	snap = newAggregator(t, c).Collect(ctx)
	if snap.Memory.Stats.Reason != source.Timeout {
		t.Errorf("reason = %q, want timeout", snap.Memory.Stats.Reason)
	}
}

func TestAggregator_UnexpectedRecordTypeIsDiscarded(t *testing.T) {
	c := &fakeCollector{name: "memory", enabled: true, data: "not a record"}

	snap := newAggregator(t, c).Collect(context.Background())
	if snap.Memory.Stats.Reason != source.Disabled {
		t.Errorf("reason = %q, want the untouched disabled placeholder", snap.Memory.Stats.Reason)
	}
}

func TestAggregator_TimestampFromClock(t *testing.T) {
	mock := clock.NewMock()
	mock.Set(time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC))
	agg := NewAggregator(collector.NewRegistry(), mock)

	if got := agg.Collect(context.Background()).Timestamp; !got.Equal(mock.Now()) {
		t.Errorf("Timestamp = %v, want %v", got, mock.Now())
	}
}

func writeFixture(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestAggregator_UnchangedHostGivesEqualSnapshots(t *testing.T) {
	root := t.TempDir()
	proc := filepath.Join(root, "proc")
	sys := filepath.Join(root, "sys")
	writeFixture(t, filepath.Join(proc, "uptime"), "100.00 50.00")
	writeFixture(t, filepath.Join(proc, "meminfo"), "MemTotal: 16000000 kB\nMemAvailable: 8000000 kB\n")
	writeFixture(t, filepath.Join(proc, "1", "status"), "Name:\tinit\nUid:\t0\t0\t0\t0\nVmRSS:\t1000 kB\n")
	writeFixture(t, filepath.Join(sys, "class", "thermal", "thermal_zone0", "temp"), "45500")
	writeFixture(t, filepath.Join(sys, "class", "power_supply", "AC", "online"), "1")
	writeFixture(t, filepath.Join(sys, "block", "sda", "size"), "1000")
	writeFixture(t, filepath.Join(sys, "class", "net", "eth0", "operstate"), "up")

	mock := clock.NewMock()
	env := &collector.Env{
		Reader:   source.NewAccessor(time.Second),
		Clock:    mock,
		ProcRoot: proc,
		SysRoot:  sys,
		// Every helper command is switched off.
		Commands: config.CommandsConfig{},
	}
	registry := collector.DefaultRegistry(env)
	if err := registry.Configure(map[string]config.CollectorConfig{"webport": {Enabled: false}}); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	agg := NewAggregator(registry, mock)

	first := agg.Collect(context.Background())
	mock.Add(1500 * time.Millisecond)
	second := agg.Collect(context.Background())

	if first.Timestamp.Equal(second.Timestamp) {
		t.Error("expected distinct timestamps")
	}
	second.Timestamp = first.Timestamp
	if !reflect.DeepEqual(first, second) {
		t.Errorf("snapshots differ:\n%+v\n%+v", first, second)
	}

	if got := first.Memory.Stats.Or(collector.MemoryStats{}).UsedPercent; got != 50 {
		t.Errorf("UsedPercent = %v, want 50", got)
	}
	if first.Disks.Entries.Reason != source.Disabled {
		t.Errorf("Disks reason = %q, want disabled (no df command)", first.Disks.Entries.Reason)
	}
}
