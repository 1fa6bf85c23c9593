package emit

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"text/template"

	"github.com/launchbynttdata/launch-git-version-injector/internal/services/resolve"
)

const sourceTemplate = `// Code generated by gvi. DO NOT EDIT.

package {{.Package}}

// {{.Variable}} is the git-derived version for this build.
const {{.Variable}} = {{printf "%q" .Version}}
{{- if .HasSubmodules}}

// {{.Variable}}Submodules lists (path, version) pairs for every nested
// repository, in git's enumeration order.
var {{.Variable}}Submodules = [][2]string{
{{- range .Submodules}}
	{ {{- printf "%q" .Path}}, {{printf "%q" .Version -}} },
{{- end}}
}
{{- end}}
`

var tmpl = template.Must(template.New("source").Parse(sourceTemplate))

// Config controls the shape of the generated source file.
type Config struct {
	// Package is the package clause of the generated file. Defaults to "main".
	Package string
	// Variable names the generated constant. Defaults to "Version".
	Variable string
	// Submodules, when non-nil, adds the submodule version table.
	Submodules []resolve.Entry
}

// Service renders resolved versions into Go source files.
type Service struct{}

// NewService constructs a Service instance.
func NewService() Service {
	return Service{}
}

type templateData struct {
	Package       string
	Variable      string
	Version       string
	HasSubmodules bool
	Submodules    []resolve.Entry
}

// Source renders the generated file contents for the resolved version.
func (s Service) Source(version string, cfg Config) ([]byte, error) {
	pkg := strings.TrimSpace(cfg.Package)
	if pkg == "" {
		pkg = "main"
	}
	variable := strings.TrimSpace(cfg.Variable)
	if variable == "" {
		variable = "Version"
	}

	var buf bytes.Buffer
	err := tmpl.Execute(&buf, templateData{
		Package:       pkg,
		Variable:      variable,
		Version:       version,
		HasSubmodules: cfg.Submodules != nil,
		Submodules:    cfg.Submodules,
	})
	if err != nil {
		return nil, fmt.Errorf("rendering generated source: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteFile renders the generated source and writes it to path.
func (s Service) WriteFile(path, version string, cfg Config) error {
	data, err := s.Source(version, cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
