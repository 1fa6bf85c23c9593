package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/launchbynttdata/launch-git-version-injector/internal/config"
	"github.com/launchbynttdata/launch-git-version-injector/internal/domain/decor"
	"github.com/launchbynttdata/launch-git-version-injector/internal/git"
	"github.com/launchbynttdata/launch-git-version-injector/internal/logging"
	"github.com/launchbynttdata/launch-git-version-injector/internal/services/emit"
	"github.com/launchbynttdata/launch-git-version-injector/internal/services/inject"
	"github.com/launchbynttdata/launch-git-version-injector/internal/services/resolve"
	"github.com/launchbynttdata/launch-git-version-injector/internal/version"
)

const (
	envDir          = "GVI_DIR"
	envDescribeArgs = "GVI_DESCRIBE_ARGS"
	envPrefix       = "GVI_PREFIX"
	envSuffix       = "GVI_SUFFIX"
	envFallback     = "GVI_FALLBACK"
	envConfig       = "GVI_CONFIG"
	envLogLevel     = "GVI_LOG_LEVEL"
	envGitProgram   = "GVI_GIT"

	envSort          = "GVI_SORT"
	envFormat        = "GVI_FORMAT"
	envVariable      = "GVI_VAR"
	envLdflagsPkg    = "GVI_LDFLAGS_PACKAGE"
	envSemver        = "GVI_SEMVER"
	envModuleVersion = "GVI_MODULE_VERSION"
	envPackage       = "GVI_PACKAGE"
	envOut           = "GVI_OUT"
	envSubmodules    = "GVI_SUBMODULES"
)

const (
	flagDir           = "dir"
	flagDescribeArgs  = "describe-args"
	flagPrefix        = "prefix"
	flagSuffix        = "suffix"
	flagFallback      = "fallback"
	flagConfig        = "config"
	flagVariable      = "var"
	flagModuleVersion = "module-version"

	defaultConfigPath = ".gvi.yaml"
	defaultOutPath    = "version_gen.go"
)

// Execute runs the CLI root command with the provided context.
func Execute(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	return newRootCommand().ExecuteContext(ctx)
}

type rootFlagSet struct {
	dir          *stringFlag
	describeArgs *stringSliceFlag
	prefix       *stringFlag
	suffix       *stringFlag
	fallback     *stringFlag
	configPath   *stringFlag
	logLevel     *stringFlag
	gitProgram   *stringFlag
}

type runtimeConfig struct {
	resolver config.Resolver
	logger   *zap.Logger
	service  resolve.Service
	opts     decor.Options
	dir      string
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "gvi",
		Short:         "Git Version Injector",
		Long:          "Derives version strings from git describe and injects them into builds as env vars, ldflags, or generated Go source.",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.Version = version.Version
	cmd.SetVersionTemplate("gvi {{.Version}}\n")

	flags := bindRootFlags(cmd)
	cmd.AddCommand(
		newDescribeCommand(flags),
		newSubmodulesCommand(flags),
		newInjectCommand(flags),
		newGenerateCommand(flags),
		newVersionCommand(),
	)

	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build metadata",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := fmt.Fprintf(cmd.OutOrStdout(), "gvi %s\nbuild date: %s\n", version.Version, version.BuildDate); err != nil {
				return fmt.Errorf("writing version info: %w", err)
			}
			return nil
		},
	}
}

func bindRootFlags(cmd *cobra.Command) *rootFlagSet {
	fs := cmd.PersistentFlags()
	return &rootFlagSet{
		dir:          bindStringFlag(fs, flagDir, envDir, ".", "Repository directory to resolve versions for"),
		describeArgs: bindStringSliceFlag(fs, flagDescribeArgs, envDescribeArgs, nil, "Arguments passed verbatim to git describe (default --always,--dirty=-modified)"),
		prefix:       bindStringFlag(fs, flagPrefix, envPrefix, "", "String prepended to resolved versions"),
		suffix:       bindStringFlag(fs, flagSuffix, envSuffix, "", "String appended to resolved versions"),
		fallback:     bindStringFlag(fs, flagFallback, envFallback, "", "Literal value substituted when git describe fails"),
		configPath:   bindStringFlag(fs, flagConfig, envConfig, defaultConfigPath, "YAML file with default settings"),
		logLevel:     bindStringFlag(fs, "log-level", envLogLevel, logging.LevelTerse, "Log verbosity (terse or verbose)"),
		gitProgram:   bindStringFlag(fs, "git", envGitProgram, "", "Path to the git binary (default: git on PATH)"),
	}
}

func newDescribeCommand(rootFlags *rootFlagSet) *cobra.Command {
	return &cobra.Command{
		Use:   "describe",
		Short: "Resolve the git-derived version of one repository",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			runtime, cleanup, err := buildRuntime(rootFlags)
			if err != nil {
				return err
			}
			defer cleanup()

			resolved, err := runtime.service.Version(ctx, runtime.dir, runtime.opts)
			if err != nil {
				return err
			}

			runtime.logger.Debug("version resolved",
				zap.String("dir", runtime.dir),
				zap.Strings("describeArgs", runtime.opts.Args()),
				zap.String("version", resolved),
			)

			if _, err := fmt.Fprintln(cmd.OutOrStdout(), resolved); err != nil {
				return fmt.Errorf("writing version: %w", err)
			}
			return nil
		},
	}
}

func newSubmodulesCommand(rootFlags *rootFlagSet) *cobra.Command {
	var sortFlag *boolFlag

	cmd := &cobra.Command{
		Use:   "submodules",
		Short: "Resolve one version per submodule of the repository",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			runtime, cleanup, err := buildRuntime(rootFlags)
			if err != nil {
				return err
			}
			defer cleanup()

			entries, err := runtime.service.SubmoduleVersions(ctx, runtime.dir, runtime.opts)
			if err != nil {
				return err
			}

			sorted, err := sortFlag.Value(runtime.resolver)
			if err != nil {
				return err
			}
			if sorted {
				sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
			}

			runtime.logger.Debug("submodule versions resolved",
				zap.String("dir", runtime.dir),
				zap.Int("count", len(entries)),
				zap.Bool("sorted", sorted),
			)

			for _, entry := range entries {
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", entry.Path, entry.Version); err != nil {
					return fmt.Errorf("writing submodule versions: %w", err)
				}
			}
			return nil
		},
	}

	sortFlag = bindBoolFlag(cmd.Flags(), "sort", envSort, false, "Sort entries by path instead of git's enumeration order")

	return cmd
}

func newInjectCommand(rootFlags *rootFlagSet) *cobra.Command {
	var (
		formatFlag        *stringFlag
		variableFlag      *stringFlag
		ldflagsPkgFlag    *stringFlag
		semverFlag        *boolFlag
		moduleVersionFlag *stringFlag
	)

	cmd := &cobra.Command{
		Use:   "inject",
		Short: "Render the resolved version as env assignments or ldflags",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			runtime, cleanup, err := buildRuntime(rootFlags)
			if err != nil {
				return err
			}
			defer cleanup()

			opts := runtime.opts
			// --module-version mirrors a build-system-provided version: it
			// only acts when no explicit fallback is configured.
			if !opts.HasFallback() {
				if moduleVersion, ok := moduleVersionFlag.OptionalValue(runtime.resolver); ok {
					opts = opts.WithFallback(moduleVersion)
				}
			}

			resolved, err := runtime.service.Version(ctx, runtime.dir, opts)
			if err != nil {
				return err
			}

			format, err := inject.ParseFormat(formatFlag.Value(runtime.resolver))
			if err != nil {
				return err
			}

			expandSemver, err := semverFlag.Value(runtime.resolver)
			if err != nil {
				return err
			}

			lines, err := inject.NewService().Render(resolved, inject.Config{
				Format:       format,
				Variable:     variableFlag.Value(runtime.resolver),
				Package:      ldflagsPkgFlag.Value(runtime.resolver),
				ExpandSemver: expandSemver,
			})
			if err != nil {
				return err
			}

			runtime.logger.Debug("version rendered",
				zap.String("format", string(format)),
				zap.String("version", resolved),
				zap.Int("lines", len(lines)),
			)

			for _, line := range lines {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), line); err != nil {
					return fmt.Errorf("writing assignments: %w", err)
				}
			}
			return nil
		},
	}

	fs := cmd.Flags()
	formatFlag = bindStringFlag(fs, "format", envFormat, string(inject.FormatEnv), "Output format (env, export, dotenv, ldflags)")
	variableFlag = bindStringFlag(fs, flagVariable, envVariable, "VERSION", "Variable name to assign")
	ldflagsPkgFlag = bindStringFlag(fs, "ldflags-package", envLdflagsPkg, "", "Import path of the package holding the stamped variable (ldflags format)")
	semverFlag = bindBoolFlag(fs, "semver", envSemver, false, "Also emit MAJOR/MINOR/PATCH variables when the version is semver-shaped")
	moduleVersionFlag = bindStringFlag(fs, flagModuleVersion, envModuleVersion, "", "Build-system version used as fallback when none is configured")

	return cmd
}

func newGenerateCommand(rootFlags *rootFlagSet) *cobra.Command {
	var (
		packageFlag    *stringFlag
		outFlag        *stringFlag
		variableFlag   *stringFlag
		submodulesFlag *boolFlag
		moduleVerFlag  *stringFlag
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a Go source file with the resolved version",
		Long:  "Writes a generated Go source file carrying the resolved version constant, intended to be invoked from a go:generate directive.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			runtime, cleanup, err := buildRuntime(rootFlags)
			if err != nil {
				return err
			}
			defer cleanup()

			opts := runtime.opts
			if !opts.HasFallback() {
				if moduleVersion, ok := moduleVerFlag.OptionalValue(runtime.resolver); ok {
					opts = opts.WithFallback(moduleVersion)
				}
			}

			resolved, err := runtime.service.Version(ctx, runtime.dir, opts)
			if err != nil {
				return err
			}

			cfg := emit.Config{
				Package:  packageFlag.Value(runtime.resolver),
				Variable: variableFlag.Value(runtime.resolver),
			}

			withSubmodules, err := submodulesFlag.Value(runtime.resolver)
			if err != nil {
				return err
			}
			if withSubmodules {
				entries, err := runtime.service.SubmoduleVersions(ctx, runtime.dir, opts)
				if err != nil {
					return err
				}
				cfg.Submodules = entries
			}

			out := outFlag.Value(runtime.resolver)
			emitter := emit.NewService()

			if out == "-" {
				src, err := emitter.Source(resolved, cfg)
				if err != nil {
					return err
				}
				if _, err := cmd.OutOrStdout().Write(src); err != nil {
					return fmt.Errorf("writing generated source: %w", err)
				}
				return nil
			}

			if err := emitter.WriteFile(out, resolved, cfg); err != nil {
				return err
			}

			runtime.logger.Info("version file generated",
				zap.String("path", out),
				zap.String("version", resolved),
				zap.Bool("submodules", withSubmodules),
			)
			return nil
		},
	}

	fs := cmd.Flags()
	packageFlag = bindStringFlag(fs, "package", envPackage, "main", "Package clause of the generated file")
	outFlag = bindStringFlag(fs, "out", envOut, defaultOutPath, "Output path, or - for stdout")
	variableFlag = bindStringFlag(fs, flagVariable, envVariable, "Version", "Name of the generated constant")
	submodulesFlag = bindBoolFlag(fs, "submodules", envSubmodules, false, "Include the submodule version table")
	moduleVerFlag = bindStringFlag(fs, flagModuleVersion, envModuleVersion, "", "Build-system version used as fallback when none is configured")

	return cmd
}

func buildRuntime(flags *rootFlagSet) (runtimeConfig, func(), error) {
	nopResolver := config.NewResolver(zap.NewNop())

	configPath, configRequired := flags.configPath.OptionalValue(nopResolver)
	if !configRequired {
		configPath = defaultConfigPath
	}
	file, err := config.LoadFile(configPath, configRequired)
	if err != nil {
		return runtimeConfig{}, nil, err
	}

	logLevel := flags.logLevel.ValueOr(nopResolver, fileLogLevel(file))
	logger, err := logging.New(logLevel)
	if err != nil {
		return runtimeConfig{}, nil, fmt.Errorf("configuring logger: %w", err)
	}

	resolver := config.NewResolver(logger)

	dir := strings.TrimSpace(flags.dir.Value(resolver))
	if dir == "" {
		dir = "."
	}

	opts := decor.Options{
		DescribeArgs: flags.describeArgs.ValueOr(resolver, file.DescribeArgs),
		Prefix:       flags.prefix.ValueOr(resolver, file.Prefix),
		Suffix:       flags.suffix.ValueOr(resolver, file.Suffix),
	}
	if fallback, ok := flags.fallback.OptionalValue(resolver); ok {
		opts = opts.WithFallback(fallback)
	} else if file.Fallback != nil {
		opts = opts.WithFallback(*file.Fallback)
	}

	client := git.NewClient(git.Config{Program: flags.gitProgram.Value(resolver)})

	cleanup := func() {
		_ = logger.Sync()
	}

	return runtimeConfig{
		resolver: resolver,
		logger:   logger,
		service:  resolve.NewService(client),
		opts:     opts,
		dir:      dir,
	}, cleanup, nil
}

func fileLogLevel(file config.File) string {
	if strings.TrimSpace(file.LogLevel) == "" {
		return logging.LevelTerse
	}
	return file.LogLevel
}
