package inject

import (
	"errors"
	"fmt"
	"strings"

	semver "github.com/blang/semver/v4"
)

// Format selects how resolved versions are rendered for the build system.
type Format string

const (
	// FormatEnv renders plain NAME=value assignments for CI env files.
	FormatEnv Format = "env"
	// FormatExport renders `export NAME=value` lines for shell eval.
	FormatExport Format = "export"
	// FormatDotenv renders NAME="value" lines with quoting.
	FormatDotenv Format = "dotenv"
	// FormatLdflags renders -X flags for `go build -ldflags`.
	FormatLdflags Format = "ldflags"
)

var ErrEmptyVariable = errors.New("inject service: variable name is empty")

// ParseFormat converts a string into a Format value.
func ParseFormat(value string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(value))) {
	case FormatEnv, "":
		return FormatEnv, nil
	case FormatExport:
		return FormatExport, nil
	case FormatDotenv:
		return FormatDotenv, nil
	case FormatLdflags:
		return FormatLdflags, nil
	default:
		return "", fmt.Errorf("invalid inject format %q", value)
	}
}

// Config controls the rendering of one resolved version.
type Config struct {
	Format Format
	// Variable is the environment variable name, or for ldflags output the
	// variable identifier inside the target package.
	Variable string
	// Package is the import path carrying the stamped variable; only
	// consulted for ldflags output.
	Package string
	// ExpandSemver additionally emits MAJOR/MINOR/PATCH variables when the
	// version parses as (tolerant) semver.
	ExpandSemver bool
}

// Service renders resolved versions into build-variable assignments.
type Service struct{}

// NewService constructs a Service instance.
func NewService() Service {
	return Service{}
}

// Render produces the output lines for a single resolved version.
func (s Service) Render(version string, cfg Config) ([]string, error) {
	variable := strings.TrimSpace(cfg.Variable)
	if variable == "" {
		return nil, ErrEmptyVariable
	}

	if cfg.Format == FormatLdflags {
		pkg := strings.TrimSpace(cfg.Package)
		target := variable
		if pkg != "" {
			target = pkg + "." + variable
		}
		return []string{fmt.Sprintf("-X '%s=%s'", target, version)}, nil
	}

	lines := []string{s.assignment(variable, version, cfg.Format)}

	if cfg.ExpandSemver {
		if parsed, ok := Components(version); ok {
			lines = append(lines,
				s.assignment(variable+"_MAJOR", fmt.Sprintf("%d", parsed.Major), cfg.Format),
				s.assignment(variable+"_MINOR", fmt.Sprintf("%d", parsed.Minor), cfg.Format),
				s.assignment(variable+"_PATCH", fmt.Sprintf("%d", parsed.Patch), cfg.Format),
			)
		}
	}

	return lines, nil
}

func (s Service) assignment(name, value string, format Format) string {
	switch format {
	case FormatExport:
		return fmt.Sprintf("export %s=%s", name, value)
	case FormatDotenv:
		return fmt.Sprintf("%s=%q", name, value)
	default:
		return fmt.Sprintf("%s=%s", name, value)
	}
}

// Components parses a described version tolerantly, ignoring a leading "v"
// and treating markers such as "-modified" as pre-release identifiers.
// Reports false when the version is not semver-shaped (e.g. a bare short
// hash from `describe --always`).
func Components(version string) (semver.Version, bool) {
	parsed, err := semver.ParseTolerant(version)
	if err != nil {
		return semver.Version{}, false
	}
	return parsed, true
}
