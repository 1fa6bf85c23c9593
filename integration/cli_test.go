//go:build integration
// +build integration

package integration_test

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/launchbynttdata/launch-git-version-injector/internal/domain/decor"
	"github.com/launchbynttdata/launch-git-version-injector/internal/git"
	"github.com/launchbynttdata/launch-git-version-injector/internal/services/resolve"
)

const gitTerminalPromptOff = "GIT_TERMINAL_PROMPT=0"

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not available")
	}
}

func runGit(t *testing.T, dir string, args ...string) {
	t.Helper()
	base := []string{
		"-c", "user.name=gvi-integration",
		"-c", "user.email=gvi-integration@example.com",
		"-c", "protocol.file.allow=always",
	}
	cmd := exec.Command("git", append(base, args...)...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), gitTerminalPromptOff)
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("git %v: %v\n%s", args, err, out)
	}
}

// newRepo creates a git repository with one committed file and returns its path.
func newRepo(t *testing.T, tag string) string {
	t.Helper()
	dir := t.TempDir()
	runGit(t, dir, "init", "-q")
	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("integration fixture\n"), 0o644); err != nil {
		t.Fatalf("writing fixture file: %v", err)
	}
	runGit(t, dir, "add", "README.md")
	runGit(t, dir, "commit", "-q", "-m", "initial commit")
	if tag != "" {
		runGit(t, dir, "tag", tag)
	}
	return dir
}

func newService() resolve.Service {
	return resolve.NewService(git.NewClient(git.Config{}))
}

func TestResolveVersionAgainstRealRepository(t *testing.T) {
	requireGit(t)
	ctx := context.Background()

	repo := newRepo(t, "v0.1.0")
	svc := newService()

	version, err := svc.Version(ctx, repo, decor.Options{})
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if version != "v0.1.0" {
		t.Fatalf("clean repo: want v0.1.0 got %q", version)
	}

	// Dirty the working tree and expect the modified marker.
	if err := os.WriteFile(filepath.Join(repo, "README.md"), []byte("changed\n"), 0o644); err != nil {
		t.Fatalf("modifying tracked file: %v", err)
	}

	version, err = svc.Version(ctx, repo, decor.Options{})
	if err != nil {
		t.Fatalf("version after modification: %v", err)
	}
	if version != "v0.1.0-modified" {
		t.Fatalf("dirty repo: want v0.1.0-modified got %q", version)
	}
}

func TestResolveVersionAppliesDecoration(t *testing.T) {
	requireGit(t)

	repo := newRepo(t, "v2.0.0")
	version, err := newService().Version(context.Background(), repo, decor.Options{Prefix: "app-", Suffix: "+ci"})
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if version != "app-v2.0.0+ci" {
		t.Fatalf("decorated: got %q", version)
	}
}

func TestResolveVersionOutsideRepository(t *testing.T) {
	requireGit(t)
	ctx := context.Background()

	dir := t.TempDir()
	svc := newService()

	version, err := svc.Version(ctx, dir, decor.Options{}.WithFallback("unknown"))
	if err != nil {
		t.Fatalf("fallback version: %v", err)
	}
	if version != "unknown" {
		t.Fatalf("fallback: want unknown got %q", version)
	}

	_, err = svc.Version(ctx, dir, decor.Options{})
	var exitErr *git.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected ExitError outside a repository, got %v", err)
	}
}

func TestResolveSubmoduleVersions(t *testing.T) {
	requireGit(t)
	ctx := context.Background()

	// sub-a: tagged v1 with no extra commits. sub-b: one commit past v1.
	subA := newRepo(t, "v1")
	subB := newRepo(t, "v1")
	if err := os.WriteFile(filepath.Join(subB, "extra.txt"), []byte("one more\n"), 0o644); err != nil {
		t.Fatalf("writing extra file: %v", err)
	}
	runGit(t, subB, "add", "extra.txt")
	runGit(t, subB, "commit", "-q", "-m", "one past the tag")

	root := newRepo(t, "v0.1.0")
	runGit(t, root, "submodule", "add", "-q", subA, "sub-a")
	runGit(t, root, "submodule", "add", "-q", subB, "sub-b")
	runGit(t, root, "commit", "-q", "-m", "add submodules")

	entries, err := newService().SubmoduleVersions(ctx, root, decor.Options{})
	if err != nil {
		t.Fatalf("submodule versions: %v", err)
	}

	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %v", entries)
	}
	if entries[0].Path != "sub-a" || entries[0].Version != "v1" {
		t.Fatalf("sub-a entry: got %+v", entries[0])
	}
	if entries[1].Path != "sub-b" {
		t.Fatalf("sub-b entry: got %+v", entries[1])
	}
	if ok, _ := regexp.MatchString(`^v1-1-g[0-9a-f]{7,}$`, entries[1].Version); !ok {
		t.Fatalf("sub-b version: want v1-1-g<hash> got %q", entries[1].Version)
	}
}

func TestResolveSubmoduleVersionsEmptySet(t *testing.T) {
	requireGit(t)

	root := newRepo(t, "")
	entries, err := newService().SubmoduleVersions(context.Background(), root, decor.Options{})
	if err != nil {
		t.Fatalf("submodule versions: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no entries, got %v", entries)
	}
}
