package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"sort"
	"strings"
	"time"

	"golang.org/x/sys/unix"
)

// DefaultCommandTimeout bounds helper commands when no timeout is configured.
const DefaultCommandTimeout = 5 * time.Second

// Source names a readable text source: a file path or a command line.
type Source struct {
	Path string
	Argv []string
}

// File returns a file Source.
func File(path string) Source {
	return Source{Path: path}
}

// Command returns a command Source.
func Command(argv ...string) Source {
	return Source{Argv: argv}
}

// IsCommand reports whether s runs a command.
func (s Source) IsCommand() bool {
	return len(s.Argv) > 0
}

func (s Source) String() string {
	if s.IsCommand() {
		return strings.Join(s.Argv, " ")
	}
	return s.Path
}

// Reader is the read side used by collectors.
type Reader interface {
	// ReadText returns the trimmed content of a file or the trimmed
	// stdout of a command.
	ReadText(ctx context.Context, src Source) Result[string]

	// ListDir returns the sorted entry names of a directory.
	ListDir(path string) Result[[]string]
}

// Accessor is the OS-backed Reader.
type Accessor struct {
	timeout   time.Duration
	waitDelay time.Duration
	lookPath  func(string) (string, error)
}

// NewAccessor creates an Accessor whose commands are killed after timeout.
// A non-positive timeout selects DefaultCommandTimeout.
func NewAccessor(timeout time.Duration) *Accessor {
	if timeout <= 0 {
		timeout = DefaultCommandTimeout
	}
	return &Accessor{
		timeout:   timeout,
		waitDelay: 500 * time.Millisecond,
		lookPath:  exec.LookPath,
	}
}

// Timeout returns the per-command bound.
func (a *Accessor) Timeout() time.Duration {
	return a.timeout
}

// ReadText reads src. It never panics and never returns an error:
// every failure is folded into the Result.
func (a *Accessor) ReadText(ctx context.Context, src Source) (res Result[string]) {
	defer func() {
		if r := recover(); r != nil {
			res = Fail[string](UnexpectedError, fmt.Sprintf("%s: %v", src, r))
		}
	}()

	if src.IsCommand() {
		return a.run(ctx, src.Argv)
	}
	return a.readFile(src.Path)
}

// ListDir lists a directory, classifying errors like ReadText.
func (a *Accessor) ListDir(path string) Result[[]string] {
	entries, err := os.ReadDir(path)
	if err != nil {
		return Fail[[]string](Classify(err), err.Error())
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return OK(names)
}

func (a *Accessor) readFile(path string) Result[string] {
	data, err := os.ReadFile(path)
	if err != nil {
		return Fail[string](Classify(err), err.Error())
	}
	return OK(strings.TrimSpace(string(data)))
}

func (a *Accessor) run(ctx context.Context, argv []string) Result[string] {
	name := argv[0]
	if _, err := a.lookPath(name); err != nil {
		return Fail[string](CommandUnavailable, name)
	}

	runCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	var stdout bytes.Buffer
	cmd := exec.CommandContext(runCtx, name, argv[1:]...)
	cmd.Stdout = &stdout
	cmd.WaitDelay = a.waitDelay

	err := cmd.Run()
	if err == nil || errors.Is(err, exec.ErrWaitDelay) {
		return OK(strings.TrimSpace(stdout.String()))
	}

	// A killed command surfaces as an ExitError; report it as a timeout.
	if ctxErr := runCtx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return Fail[string](Timeout, fmt.Sprintf("%s exceeded %s", name, a.timeout))
		}
		return Fail[string](Timeout, fmt.Sprintf("%s canceled", name))
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return Fail[string](CommandFailed, fmt.Sprintf("%s exited with status %d", name, exitErr.ExitCode()))
	}
	return Fail[string](Classify(err), err.Error())
}

// Classify maps an OS error to a Reason.
func Classify(err error) Reason {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, unix.ENOTDIR):
		return SourceNotFound
	case errors.Is(err, fs.ErrPermission), errors.Is(err, unix.EACCES), errors.Is(err, unix.EPERM):
		return PermissionDenied
	case errors.Is(err, os.ErrDeadlineExceeded), errors.Is(err, context.DeadlineExceeded):
		return Timeout
	default:
		return UnexpectedError
	}
}
