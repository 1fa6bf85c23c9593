package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

const defaultProgram = "git"

// Config controls how the CLI-backed client invokes git.
type Config struct {
	// Program is the binary looked up on PATH. Defaults to "git".
	Program string
}

// NewClient constructs a Client that shells out to the git binary.
func NewClient(cfg Config) Client {
	program := strings.TrimSpace(cfg.Program)
	if program == "" {
		program = defaultProgram
	}
	return &cliClient{program: program}
}

type cliClient struct {
	program string
}

// Describe runs `git describe` in dir with the caller's arguments appended
// verbatim. Argument semantics are left to git itself; malformed arguments
// surface as an ExitError.
func (c *cliClient) Describe(ctx context.Context, dir string, args []string) (string, error) {
	cmdArgs := append([]string{"-C", dir, "describe"}, args...)
	return c.run(ctx, "git describe", cmdArgs)
}

// GitDir resolves the metadata directory for dir via `git rev-parse --git-dir`.
func (c *cliClient) GitDir(ctx context.Context, dir string) (string, error) {
	out, err := c.run(ctx, "git rev-parse", []string{"-C", dir, "rev-parse", "--git-dir"})
	if err != nil {
		return "", err
	}
	if filepath.IsAbs(out) {
		return out, nil
	}
	// git answers relative to the queried directory, so join it back there
	// rather than onto the process working directory.
	return filepath.Join(dir, out), nil
}

// Submodules enumerates nested repositories with `git submodule foreach`,
// recursively and quietly, printing each display path.
func (c *cliClient) Submodules(ctx context.Context, dir string) ([]string, error) {
	out, err := c.run(ctx, "git submodule", []string{
		"-C", dir, "submodule", "foreach", "--quiet", "--recursive", "echo $displaypath",
	})
	if err != nil {
		return nil, err
	}
	return splitLines(out), nil
}

// run spawns the program with stdout and stderr captured, waits for exit,
// and classifies the outcome. On success the stdout bytes lose exactly one
// trailing newline and must decode as UTF-8.
func (c *cliClient) run(ctx context.Context, label string, args []string) (string, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, c.program, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", classifyExit(label, exitErr, stderr.Bytes())
		}
		if errors.Is(err, exec.ErrNotFound) {
			return "", fmt.Errorf("%w (running `%s`)", ErrToolNotFound, label)
		}
		return "", &SpawnError{Program: label, Err: err}
	}

	raw := stripTrailingNewline(stdout.Bytes())
	if !utf8.Valid(raw) {
		return "", fmt.Errorf("failed to parse output of `%s`: %w", label, ErrInvalidOutput)
	}
	return string(raw), nil
}

func classifyExit(label string, exitErr *exec.ExitError, stderr []byte) error {
	code := exitErr.ExitCode()
	if code < 0 {
		if signal := terminationSignal(exitErr); signal != "" {
			return &SignalError{Program: label, Signal: signal}
		}
		return &ExitError{Program: label, Code: -1}
	}
	return &ExitError{Program: label, Code: code, Detail: firstStderrLine(stderr)}
}

// firstStderrLine extracts the first non-empty, valid-UTF-8 stderr line so
// error messages stay short. Returns "" when no usable line exists.
func firstStderrLine(stderr []byte) string {
	for _, line := range bytes.Split(stderr, []byte{'\n'}) {
		if len(line) == 0 {
			continue
		}
		if !utf8.Valid(line) {
			return ""
		}
		return string(line)
	}
	return ""
}

// stripTrailingNewline removes at most one trailing newline byte. No other
// trimming happens; embedded and leading whitespace is preserved.
func stripTrailingNewline(raw []byte) []byte {
	if len(raw) > 0 && raw[len(raw)-1] == '\n' {
		return raw[:len(raw)-1]
	}
	return raw
}

// splitLines breaks captured output into lines, discarding empty ones. The
// final newline of `submodule foreach` output would otherwise yield a
// trailing empty entry, and a repository without submodules prints nothing.
func splitLines(out string) []string {
	if out == "" {
		return nil
	}
	var lines []string
	for _, line := range strings.Split(out, "\n") {
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}
