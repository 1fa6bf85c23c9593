package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/launchbynttdata/launch-git-version-injector/internal/config"
)

type flagBase struct {
	fs      *pflag.FlagSet
	setting string
	name    string
	envKey  string
}

func newFlagBase(fs *pflag.FlagSet, setting, name, envKey string) flagBase {
	return flagBase{fs: fs, setting: setting, name: name, envKey: envKey}
}

func (b flagBase) changed() bool {
	if b.fs == nil || b.name == "" {
		return false
	}
	return b.fs.Changed(b.name)
}

func describeUsage(usage, envKey string) string {
	trimmed := strings.TrimSpace(usage)
	if envKey == "" {
		return trimmed
	}
	if trimmed == "" {
		return fmt.Sprintf("env: %s", envKey)
	}
	return fmt.Sprintf("%s (env: %s)", trimmed, envKey)
}

type stringFlag struct {
	base       flagBase
	defaultVal string
	value      string
}

func bindStringFlag(fs *pflag.FlagSet, name, envKey, defaultVal, usage string) *stringFlag {
	f := &stringFlag{
		base:       newFlagBase(fs, name, name, envKey),
		defaultVal: defaultVal,
		value:      defaultVal,
	}
	if fs == nil {
		return f
	}
	fs.StringVar(&f.value, name, defaultVal, describeUsage(usage, envKey))
	return f
}

// Value resolves the flag with env > CLI > default precedence.
func (f *stringFlag) Value(resolver config.Resolver) string {
	return f.ValueOr(resolver, f.defaultVal)
}

// ValueOr resolves the flag with an externally supplied default, letting
// config-file values slot in below flags and above built-in defaults.
func (f *stringFlag) ValueOr(resolver config.Resolver, defaultVal string) string {
	return resolver.String(f.base.setting, f.base.envKey, f.value, f.base.changed(), defaultVal)
}

// OptionalValue reports the resolved value and whether any source set it.
func (f *stringFlag) OptionalValue(resolver config.Resolver) (string, bool) {
	return resolver.OptionalString(f.base.setting, f.base.envKey, f.value, f.base.changed())
}

type boolFlag struct {
	base       flagBase
	defaultVal bool
	value      bool
}

func bindBoolFlag(fs *pflag.FlagSet, name, envKey string, defaultVal bool, usage string) *boolFlag {
	f := &boolFlag{
		base:       newFlagBase(fs, name, name, envKey),
		defaultVal: defaultVal,
		value:      defaultVal,
	}
	if fs == nil {
		return f
	}
	fs.BoolVar(&f.value, name, defaultVal, describeUsage(usage, envKey))
	return f
}

func (f *boolFlag) Value(resolver config.Resolver) (bool, error) {
	return resolver.Bool(f.base.setting, f.base.envKey, f.value, f.base.changed(), f.defaultVal)
}

type stringSliceFlag struct {
	base       flagBase
	defaultVal []string
	value      []string
}

func bindStringSliceFlag(fs *pflag.FlagSet, name, envKey string, defaultVal []string, usage string) *stringSliceFlag {
	f := &stringSliceFlag{
		base:       newFlagBase(fs, name, name, envKey),
		defaultVal: append([]string(nil), defaultVal...),
		value:      append([]string(nil), defaultVal...),
	}
	if fs == nil {
		return f
	}
	fs.StringSliceVar(&f.value, name, defaultVal, describeUsage(usage, envKey))
	return f
}

func (f *stringSliceFlag) Value(resolver config.Resolver) []string {
	return f.ValueOr(resolver, f.defaultVal)
}

func (f *stringSliceFlag) ValueOr(resolver config.Resolver, defaultVal []string) []string {
	return resolver.StringSlice(f.base.setting, f.base.envKey, f.value, f.base.changed(), defaultVal)
}
