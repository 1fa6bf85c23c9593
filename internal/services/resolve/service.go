package resolve

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/launchbynttdata/launch-git-version-injector/internal/domain/decor"
	"github.com/launchbynttdata/launch-git-version-injector/internal/git"
)

// ErrNilClient indicates the service was constructed without a git client.
var ErrNilClient = errors.New("resolve service: nil git client")

// Entry is one (path, version) pair produced by submodule aggregation.
// Path is relative to the root working tree; it is "" for the
// single-repository case.
type Entry struct {
	Path    string
	Version string
}

// Service derives version strings by orchestrating the git client.
type Service struct {
	client git.Client
}

// NewService constructs a Service instance.
func NewService(client git.Client) Service {
	return Service{client: client}
}

// Version resolves the decorated version for a single directory. A describe
// failure yields the fallback verbatim when one is configured; otherwise the
// error propagates unchanged.
func (s Service) Version(ctx context.Context, dir string, opts decor.Options) (string, error) {
	if s.client == nil {
		return "", ErrNilClient
	}

	raw, err := s.client.Describe(ctx, dir, opts.Args())
	if err != nil {
		if opts.HasFallback() {
			return opts.FallbackValue(), nil
		}
		return "", err
	}
	return opts.Decorate(raw), nil
}

// SubmoduleVersions resolves one decorated version per submodule of the
// repository rooted at dir, in the order git enumerates them. Locator and
// enumerator failures are always fatal; a per-submodule describe failure is
// substituted with the fallback when configured, and otherwise aborts the
// whole call with no partial results.
func (s Service) SubmoduleVersions(ctx context.Context, dir string, opts decor.Options) ([]Entry, error) {
	if s.client == nil {
		return nil, ErrNilClient
	}

	gitDir, err := s.client.GitDir(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("locating git directory: %w", err)
	}
	worktree := filepath.Dir(gitDir)

	paths, err := s.client.Submodules(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("enumerating submodules: %w", err)
	}
	if len(paths) == 0 {
		return []Entry{}, nil
	}

	entries := make([]Entry, 0, len(paths))
	for _, path := range paths {
		raw, err := s.client.Describe(ctx, filepath.Join(worktree, path), opts.Args())
		if err != nil {
			if opts.HasFallback() {
				entries = append(entries, Entry{Path: path, Version: opts.FallbackValue()})
				continue
			}
			return nil, fmt.Errorf("describing submodule %s: %w", path, err)
		}
		entries = append(entries, Entry{Path: path, Version: opts.Decorate(raw)})
	}

	return entries, nil
}
