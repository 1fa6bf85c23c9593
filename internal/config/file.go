package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/goccy/go-yaml"
)

// File holds optional defaults loaded from a YAML configuration file. File
// values rank below flags and environment variables and above built-in
// defaults.
type File struct {
	DescribeArgs []string `yaml:"describe_args"`
	Prefix       string   `yaml:"prefix"`
	Suffix       string   `yaml:"suffix"`
	Fallback     *string  `yaml:"fallback"`
	LogLevel     string   `yaml:"log_level"`
}

// LoadFile parses the YAML defaults file at path. A missing file is only an
// error when the caller explicitly named one; pass required=false for the
// conventional default location.
func LoadFile(path string, required bool) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !required && errors.Is(err, fs.ErrNotExist) {
			return File{}, nil
		}
		return File{}, fmt.Errorf("reading config file %s: %w", path, err)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return File{}, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return file, nil
}
