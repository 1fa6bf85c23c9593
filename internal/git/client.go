package git

import (
	"context"
	"errors"
	"fmt"
)

// ErrToolNotFound indicates the git binary is missing from the search path.
var ErrToolNotFound = errors.New("git: command `git` not found: is git installed?")

// ErrInvalidOutput indicates git produced stdout that is not valid UTF-8.
var ErrInvalidOutput = errors.New("git: output contains invalid UTF-8")

// SpawnError wraps a process start failure other than "executable not found".
type SpawnError struct {
	Program string
	Err     error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to run `%s`: %v", e.Program, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// ExitError reports a git invocation that ran and exited non-zero. Detail
// holds the first non-empty line of stderr when one was usable.
type ExitError struct {
	Program string
	Code    int
	Detail  string
}

func (e *ExitError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s exited with status %d: %s", e.Program, e.Code, e.Detail)
	}
	return fmt.Sprintf("%s exited with status %d", e.Program, e.Code)
}

// SignalError reports a git invocation terminated by a signal.
type SignalError struct {
	Program string
	Signal  string
}

func (e *SignalError) Error() string {
	return fmt.Sprintf("%s killed by signal %s", e.Program, e.Signal)
}

// Client describes the git CLI operations required by the resolution layer.
// Every method operates on an explicit directory; none depends on the
// process working directory.
type Client interface {
	// Describe runs `git describe` in dir with the provided arguments
	// appended verbatim, returning the raw version string.
	Describe(ctx context.Context, dir string, args []string) (string, error)

	// GitDir resolves the repository metadata directory for dir. A relative
	// answer is joined onto dir, an absolute one is returned as-is.
	GitDir(ctx context.Context, dir string) (string, error)

	// Submodules returns the display paths of all nested repositories under
	// dir, recursively, in the order git reports them.
	Submodules(ctx context.Context, dir string) ([]string, error)
}
