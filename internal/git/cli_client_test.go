package git

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// writeStub creates a shell script standing in for the git binary so the
// runner can be exercised without a repository.
func writeStub(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("stub executables require a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "fakegit")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script+"\n"), 0o755); err != nil {
		t.Fatalf("writing stub: %v", err)
	}
	return path
}

func TestDescribePassesArgumentsVerbatim(t *testing.T) {
	t.Parallel()

	stub := writeStub(t, `printf '%s\n' "$*"`)
	client := NewClient(Config{Program: stub})

	out, err := client.Describe(context.Background(), "/some/dir", []string{"--always", "--dirty=-modified"})
	if err != nil {
		t.Fatalf("describe: %v", err)
	}

	want := "-C /some/dir describe --always --dirty=-modified"
	if out != want {
		t.Fatalf("describe args: want %q got %q", want, out)
	}
}

func TestRunStripsExactlyOneTrailingNewline(t *testing.T) {
	t.Parallel()

	stub := writeStub(t, `printf 'v1.2.3\n\n'`)
	client := NewClient(Config{Program: stub})

	out, err := client.Describe(context.Background(), ".", nil)
	if err != nil {
		t.Fatalf("describe: %v", err)
	}
	if out != "v1.2.3\n" {
		t.Fatalf("expected single newline stripped, got %q", out)
	}
}

func TestRunReportsExitErrorWithFirstStderrLine(t *testing.T) {
	t.Parallel()

	stub := writeStub(t, `echo 'fatal: not a git repository' >&2; echo 'more context' >&2; exit 128`)
	client := NewClient(Config{Program: stub})

	_, err := client.Describe(context.Background(), ".", nil)
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected ExitError, got %v", err)
	}
	if exitErr.Code != 128 {
		t.Fatalf("exit code: want 128 got %d", exitErr.Code)
	}
	if exitErr.Detail != "fatal: not a git repository" {
		t.Fatalf("detail: got %q", exitErr.Detail)
	}
	if !strings.Contains(err.Error(), "exited with status 128: fatal: not a git repository") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestRunOmitsDetailWhenStderrIsEmpty(t *testing.T) {
	t.Parallel()

	stub := writeStub(t, `exit 2`)
	client := NewClient(Config{Program: stub})

	_, err := client.Describe(context.Background(), ".", nil)
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected ExitError, got %v", err)
	}
	if exitErr.Detail != "" {
		t.Fatalf("expected empty detail, got %q", exitErr.Detail)
	}
	if strings.Contains(err.Error(), ":") && !strings.HasSuffix(err.Error(), "exited with status 2") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestRunReportsToolNotFound(t *testing.T) {
	t.Parallel()

	client := NewClient(Config{Program: "definitely-not-a-real-binary-4f1c"})

	_, err := client.Describe(context.Background(), ".", nil)
	if !errors.Is(err, ErrToolNotFound) {
		t.Fatalf("expected ErrToolNotFound, got %v", err)
	}
}

func TestRunRejectsInvalidUTF8Output(t *testing.T) {
	t.Parallel()

	stub := writeStub(t, `printf '\377\376\n'`)
	client := NewClient(Config{Program: stub})

	_, err := client.Describe(context.Background(), ".", nil)
	if !errors.Is(err, ErrInvalidOutput) {
		t.Fatalf("expected ErrInvalidOutput, got %v", err)
	}
}

func TestRunReportsSignalTermination(t *testing.T) {
	t.Parallel()

	stub := writeStub(t, `kill -s TERM $$`)
	client := NewClient(Config{Program: stub})

	_, err := client.Describe(context.Background(), ".", nil)
	var sigErr *SignalError
	if !errors.As(err, &sigErr) {
		t.Fatalf("expected SignalError, got %v", err)
	}
	if sigErr.Signal == "" {
		t.Fatalf("expected a signal name")
	}
}

func TestGitDirJoinsRelativeAnswerOntoQueriedDirectory(t *testing.T) {
	t.Parallel()

	stub := writeStub(t, `echo '.git'`)
	client := NewClient(Config{Program: stub})

	dir, err := client.GitDir(context.Background(), "/work/repo")
	if err != nil {
		t.Fatalf("git dir: %v", err)
	}
	if dir != filepath.Join("/work/repo", ".git") {
		t.Fatalf("git dir: got %q", dir)
	}
}

func TestGitDirReturnsAbsoluteAnswerAsIs(t *testing.T) {
	t.Parallel()

	stub := writeStub(t, `echo '/work/repo/.git'`)
	client := NewClient(Config{Program: stub})

	dir, err := client.GitDir(context.Background(), "/elsewhere")
	if err != nil {
		t.Fatalf("git dir: %v", err)
	}
	if dir != "/work/repo/.git" {
		t.Fatalf("git dir: got %q", dir)
	}
}

func TestSubmodulesPreservesOrderAndDropsEmptyLines(t *testing.T) {
	t.Parallel()

	stub := writeStub(t, `printf 'sub-b\nsub-a\n\nnested/sub-c\n'`)
	client := NewClient(Config{Program: stub})

	paths, err := client.Submodules(context.Background(), ".")
	if err != nil {
		t.Fatalf("submodules: %v", err)
	}

	want := []string{"sub-b", "sub-a", "nested/sub-c"}
	if len(paths) != len(want) {
		t.Fatalf("paths: want %v got %v", want, paths)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Fatalf("paths[%d]: want %q got %q", i, want[i], paths[i])
		}
	}
}

func TestSubmodulesEmptyOutputYieldsNoPaths(t *testing.T) {
	t.Parallel()

	stub := writeStub(t, `:`)
	client := NewClient(Config{Program: stub})

	paths, err := client.Submodules(context.Background(), ".")
	if err != nil {
		t.Fatalf("submodules: %v", err)
	}
	if len(paths) != 0 {
		t.Fatalf("expected no paths, got %v", paths)
	}
}

func TestStripTrailingNewlineIsIdempotentOnCleanInput(t *testing.T) {
	t.Parallel()

	clean := []byte("v1.2.3")
	if got := stripTrailingNewline(clean); string(got) != "v1.2.3" {
		t.Fatalf("strip on clean input: got %q", got)
	}

	once := stripTrailingNewline([]byte("v1.2.3\n"))
	twice := stripTrailingNewline(once)
	if string(once) != "v1.2.3" || string(twice) != "v1.2.3" {
		t.Fatalf("strip not idempotent: once %q twice %q", once, twice)
	}
}

func TestFirstStderrLineSkipsLeadingEmptyLines(t *testing.T) {
	t.Parallel()

	if got := firstStderrLine([]byte("\n\nwarning: something\n")); got != "warning: something" {
		t.Fatalf("got %q", got)
	}
	if got := firstStderrLine(nil); got != "" {
		t.Fatalf("expected empty detail, got %q", got)
	}
	if got := firstStderrLine([]byte{0xff, 0xfe, '\n', 'o', 'k'}); got != "" {
		t.Fatalf("expected empty detail for invalid UTF-8, got %q", got)
	}
}
