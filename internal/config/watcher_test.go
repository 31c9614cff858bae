package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/goleak"

	"statreporter/internal/logger"
)

func TestMonitorWatcher_ReloadsOnWrite(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "Monitor.json")
	if err := os.WriteFile(path, []byte(`{"Collectors": {}}`), 0644); err != nil {
		t.Fatal(err)
	}

	got := make(chan *MonitorConfig, 4)
	w, err := NewMonitorWatcher(path, func(mc *MonitorConfig) { got <- mc })
	if err != nil {
		t.Fatalf("NewMonitorWatcher failed: %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer w.Stop()

	if err := os.WriteFile(path, []byte(`{"Collectors": {"process": {"Enabled": true, "TopN": 7}}}`), 0644); err != nil {
		t.Fatal(err)
	}

	// A single write may arrive as several events; the last reload wins.
	deadline := time.After(5 * time.Second)
	for {
		select {
		case mc := <-got:
			if mc.Collectors["process"].TopN == 7 {
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for reload")
		}
	}
}

func TestFileWatcher_IgnoresOtherFiles(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "Logging.json")

	called := make(chan struct{}, 1)
	w, err := NewFileWatcher(path, func() { called <- struct{}{} })
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := os.WriteFile(filepath.Join(dir, "other.json"), []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-called:
		t.Fatal("callback fired for an unrelated file")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestFileWatcher_StopIsIdempotent(t *testing.T) {
	defer goleak.VerifyNone(t)

	w, err := NewLoggingWatcher(filepath.Join(t.TempDir(), "Logging.json"), func(*logger.Config) {})
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	if !w.IsRunning() {
		t.Error("expected running after Start")
	}
	_ = w.Stop()
	_ = w.Stop()
	if w.IsRunning() {
		t.Error("expected stopped after Stop")
	}
}

func TestConfigWatcher_ReloadsRefreshInterval(t *testing.T) {
	defer goleak.VerifyNone(t)

	path := filepath.Join(t.TempDir(), "StatReporter.json")
	if err := os.WriteFile(path, []byte(`{"RefreshInterval": "1500ms"}`), 0644); err != nil {
		t.Fatal(err)
	}

	got := make(chan *Config, 4)
	w, err := NewConfigWatcher(path, func(cfg *Config) { got <- cfg })
	if err != nil {
		t.Fatalf("NewConfigWatcher failed: %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer w.Stop()

	if err := os.WriteFile(path, []byte(`{"RefreshInterval": "3s"}`), 0644); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(5 * time.Second)
	for {
		select {
		case cfg := <-got:
			if cfg.RefreshInterval == 3*time.Second {
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for reload")
		}
	}
}

func TestFileWatcher_CoalescesBurstOfWrites(t *testing.T) {
	defer goleak.VerifyNone(t)

	path := filepath.Join(t.TempDir(), "Monitor.json")
	if err := os.WriteFile(path, []byte(`{}`), 0644); err != nil {
		t.Fatal(err)
	}

	called := make(chan struct{}, 8)
	w, err := NewFileWatcher(path, func() { called <- struct{}{} })
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	for i := 0; i < 3; i++ {
		if err := os.WriteFile(path, []byte(`{"Collectors": {}}`), 0644); err != nil {
			t.Fatal(err)
		}
	}

	select {
	case <-called:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload")
	}
	select {
	case <-called:
		t.Error("expected a single reload for a burst of writes")
	case <-time.After(3 * reloadDelay):
	}
}
