package collector

import (
	"context"
	"path/filepath"

	"github.com/benbjohnson/clock"

	"statreporter/internal/config"
	"statreporter/internal/logger"
	"statreporter/internal/source"
)

// Env is what every collector reads the host through.
type Env struct {
	Reader   source.Reader
	Clock    clock.Clock
	ProcRoot string
	SysRoot  string
	Commands config.CommandsConfig
}

// NewEnv builds an Env backed by the real OS from cfg.
func NewEnv(cfg *config.Config) *Env {
	return &Env{
		Reader:   source.NewAccessor(cfg.CommandTimeout),
		Clock:    clock.New(),
		ProcRoot: cfg.Paths.ProcRoot,
		SysRoot:  cfg.Paths.SysRoot,
		Commands: cfg.Commands,
	}
}

// Proc joins elem under the proc root.
func (e *Env) Proc(elem ...string) string {
	return filepath.Join(append([]string{e.ProcRoot}, elem...)...)
}

// Sys joins elem under the sys root.
func (e *Env) Sys(elem ...string) string {
	return filepath.Join(append([]string{e.SysRoot}, elem...)...)
}

func (e *Env) read(ctx context.Context, path string) source.Result[string] {
	return e.Reader.ReadText(ctx, source.File(path))
}

// run executes argv with extra arguments appended. An empty argv means the
// command was switched off in configuration.
func (e *Env) run(ctx context.Context, argv []string, extra ...string) source.Result[string] {
	if len(argv) == 0 {
		return source.Fail[string](source.Disabled, "no command configured")
	}
	full := make([]string, 0, len(argv)+len(extra))
	full = append(full, argv...)
	full = append(full, extra...)

	res := e.Reader.ReadText(ctx, source.Command(full...))
	if !res.Ok() {
		log := logger.WithComponent("collector")
		log.Debug().
			Str("command", argv[0]).
			Str("reason", res.Reason.String()).
			Str("detail", res.Detail).
			Msg("Command degraded")
	}
	return res
}

func (e *Env) list(path string) source.Result[[]string] {
	return e.Reader.ListDir(path)
}
