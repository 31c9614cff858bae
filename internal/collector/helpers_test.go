package collector

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/benbjohnson/clock"

	"statreporter/internal/config"
	"statreporter/internal/logger"
	"statreporter/internal/source"
)

func init() {
	_ = logger.Init(logger.Config{Level: "disabled"})
}

// stubReader reads files from disk through a real Accessor but answers
// commands from a fixed table. Unknown commands are unavailable. Listings
// registered in dirs replace the real directory.
type stubReader struct {
	*source.Accessor
	commands map[string]source.Result[string]
	dirs     map[string]source.Result[[]string]
}

func (r *stubReader) ListDir(path string) source.Result[[]string] {
	if res, ok := r.dirs[path]; ok {
		return res
	}
	return r.Accessor.ListDir(path)
}

func (r *stubReader) ReadText(ctx context.Context, src source.Source) source.Result[string] {
	if !src.IsCommand() {
		return r.Accessor.ReadText(ctx, src)
	}
	key := strings.Join(src.Argv, " ")
	if res, ok := r.commands[key]; ok {
		return res
	}
	return source.Fail[string](source.CommandUnavailable, src.Argv[0])
}

// newTestEnv builds an Env rooted at fresh proc and sys directories.
func newTestEnv(t *testing.T) (*Env, *stubReader) {
	t.Helper()
	root := t.TempDir()
	procRoot := filepath.Join(root, "proc")
	sysRoot := filepath.Join(root, "sys")
	for _, dir := range []string{procRoot, sysRoot} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}

	reader := &stubReader{
		Accessor: source.NewAccessor(time.Second),
		commands: make(map[string]source.Result[string]),
		dirs:     make(map[string]source.Result[[]string]),
	}
	mock := clock.NewMock()
	mock.Set(time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC))

	env := &Env{
		Reader:   reader,
		Clock:    mock,
		ProcRoot: procRoot,
		SysRoot:  sysRoot,
		Commands: config.DefaultCommands(),
	}
	return env, reader
}

func (r *stubReader) set(argv []string, res source.Result[string]) {
	r.commands[strings.Join(argv, " ")] = res
}

// writeFile creates path (and its parents) with content.
func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func mkdir(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}
}

// collect runs c and returns its Data as T.
func collect[T any](t *testing.T, c Collector) T {
	t.Helper()
	metric, err := c.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if metric.Type != c.Name() {
		t.Errorf("Type = %q, want %q", metric.Type, c.Name())
	}
	data, ok := metric.Data.(T)
	if !ok {
		t.Fatalf("Data has type %T", metric.Data)
	}
	return data
}
