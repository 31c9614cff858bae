package collector

import (
	"reflect"
	"testing"
	"time"

	"github.com/benbjohnson/clock"

	"statreporter/internal/source"
)

const sampleMeminfo = `MemTotal:       16000000 kB
MemFree:         2000000 kB
MemAvailable:    8000000 kB
Buffers:          500000 kB
Cached:          3000000 kB
SwapCached:            0 kB
SwapTotal:       2097152 kB
SwapFree:        1048576 kB
HugePages_Total:       0
`

func TestParseMeminfo(t *testing.T) {
	s, err := ParseMeminfo(sampleMeminfo)
	if err != nil {
		t.Fatalf("ParseMeminfo failed: %v", err)
	}

	if s.UsedKiB != 8000000 {
		t.Errorf("UsedKiB = %d, want 8000000", s.UsedKiB)
	}
	if s.UsedPercent != 50.0 {
		t.Errorf("UsedPercent = %v, want 50.0", s.UsedPercent)
	}
	if s.CachedKiB != 3500000 {
		t.Errorf("CachedKiB = %d, want 3500000", s.CachedKiB)
	}
	if s.TotalGiB != 15.26 {
		t.Errorf("TotalGiB = %v, want 15.26", s.TotalGiB)
	}
	if s.UsedGiB != 7.63 {
		t.Errorf("UsedGiB = %v, want 7.63", s.UsedGiB)
	}
	if s.SwapTotalGiB != 2 || s.SwapUsedGiB != 1 {
		t.Errorf("swap = %v/%v GiB, want 1/2", s.SwapUsedGiB, s.SwapTotalGiB)
	}
	if s.SwapPercent != 50.0 {
		t.Errorf("SwapPercent = %v, want 50.0", s.SwapPercent)
	}
}

func TestParseMeminfo_ZeroTotal(t *testing.T) {
	s, err := ParseMeminfo("MemTotal: 0 kB\nMemAvailable: 0 kB\n")
	if err != nil {
		t.Fatalf("ParseMeminfo failed: %v", err)
	}
	if s.UsedPercent != 0 || s.SwapPercent != 0 {
		t.Errorf("percentages = %v/%v, want 0/0", s.UsedPercent, s.SwapPercent)
	}
}

func TestParseMeminfo_MissingRequiredKeys(t *testing.T) {
	if _, err := ParseMeminfo("MemTotal: 1000 kB\n"); err == nil {
		t.Error("expected an error without MemAvailable")
	}
	if _, err := ParseMeminfo("MemAvailable: 1000 kB\n"); err == nil {
		t.Error("expected an error without MemTotal")
	}
}

func TestMemoryCollector_Collect(t *testing.T) {
	env, _ := newTestEnv(t)
	writeFile(t, env.Proc("meminfo"), sampleMeminfo)

	info := collect[MemoryInfo](t, NewMemoryCollector(env))
	stats, ok := info.Stats.Get()
	if !ok {
		t.Fatalf("Stats failed: %v", info.Stats.Error())
	}
	if stats.TotalKiB != 16000000 {
		t.Errorf("TotalKiB = %d", stats.TotalKiB)
	}
}

func TestMemoryCollector_Malformed(t *testing.T) {
	env, _ := newTestEnv(t)
	writeFile(t, env.Proc("meminfo"), "garbage\n")

	info := collect[MemoryInfo](t, NewMemoryCollector(env))
	if info.Stats.Reason != source.MalformedValue {
		t.Errorf("Reason = %q, want malformed_value", info.Stats.Reason)
	}
}

func TestMemoryCollector_Missing(t *testing.T) {
	env, _ := newTestEnv(t)

	info := collect[MemoryInfo](t, NewMemoryCollector(env))
	if info.Stats.Reason != source.SourceNotFound {
		t.Errorf("Reason = %q, want source_not_found", info.Stats.Reason)
	}
}

func TestMemoryCollector_RepeatableOnUnchangedHost(t *testing.T) {
	env, _ := newTestEnv(t)
	writeFile(t, env.Proc("meminfo"), sampleMeminfo)
	c := NewMemoryCollector(env)

	first := collect[MemoryInfo](t, c)
	env.Clock.(*clock.Mock).Add(time.Minute)
	second := collect[MemoryInfo](t, c)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("collections differ:\n%+v\n%+v", first, second)
	}
}
