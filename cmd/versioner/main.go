// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the versioner CLI.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/versioner/internal/logging"
	"github.com/pdiddy/versioner/pkg/types"
)

// buildVersion is set at build time via ldflags.
var buildVersion = "dev"

// app carries the configuration and logger shared by all subcommands.
type app struct {
	v      *viper.Viper
	cfg    types.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New(), logger: slog.Default()}

	root := &cobra.Command{
		Use:   "versioner",
		Short: "Version management for notebooks and Databricks bundle files",
		Long: `versioner keeps one version string in step across a project: the
__version__.py declaration is the source of truth, and versioner applies it to
notebook filenames (analysis.ipynb -> analysis_v0.1.0.ipynb), the version
field of databricks.yml, and variables.pkg_version.default in
resources/variables.yml.

Examples:
  versioner notebooks              Version all Jupyter notebooks
  versioner notebooks --dry-run    Preview notebook versioning changes
  versioner update-yaml            Update databricks.yml and resources/variables.yml
  versioner all                    Version notebooks and update YAML files
  versioner table user_events      Print the versioned table name
  versioner version                Show version information`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
	}

	root.PersistentFlags().String("config", "", "config file (default: <root>/versioner.yaml or ~/.config/versioner/config.yaml)")
	root.PersistentFlags().String("root", "", "project root (default: current directory)")
	root.PersistentFlags().String("log-level", "", "log level: "+strings.Join(logging.Levels, ", "))
	root.PersistentFlags().String("log-format", "", "log format: "+strings.Join(logging.Formats, ", "))

	root.AddCommand(
		newNotebooksCmd(a),
		newUpdateYAMLCmd(a),
		newAllCmd(a),
		newVersionCmd(a),
		newTableCmd(a),
	)
	return root
}

// load reads configuration from defaults, the config file, VERSIONER_*
// environment variables and flags, in increasing order of precedence.
func (a *app) load(cmd *cobra.Command) error {
	def := types.DefaultConfig()
	a.v.SetDefault("root", def.Root)
	a.v.SetDefault("backup", def.Backup)
	a.v.SetDefault("backup_suffix", def.BackupSuffix)
	a.v.SetDefault("table.separator", def.Table.Separator)
	a.v.SetDefault("table.sanitize", def.Table.Sanitize)
	a.v.SetDefault("log.level", def.Log.Level)
	a.v.SetDefault("log.format", def.Log.Format)

	flags := cmd.Flags()
	for key, name := range map[string]string{
		"root":       "root",
		"log.level":  "log-level",
		"log.format": "log-format",
	} {
		if f := flags.Lookup(name); f != nil {
			if err := a.v.BindPFlag(key, f); err != nil {
				return fmt.Errorf("binding flag %s: %w", name, err)
			}
		}
	}

	a.v.SetEnvPrefix("VERSIONER")
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	a.v.AutomaticEnv()

	cfgFile, _ := flags.GetString("config")
	if cfgFile != "" {
		a.v.SetConfigFile(cfgFile)
	} else {
		a.v.SetConfigName("versioner")
		a.v.SetConfigType("yaml")
		a.v.AddConfigPath(a.v.GetString("root"))
		if home, err := os.UserHomeDir(); err == nil {
			a.v.AddConfigPath(filepath.Join(home, ".config", "versioner"))
		}
	}

	readErr := a.v.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if readErr != nil && (cfgFile != "" || !errors.As(readErr, &notFound)) {
		return fmt.Errorf("reading config: %w", readErr)
	}

	if err := a.v.Unmarshal(&a.cfg); err != nil {
		return fmt.Errorf("decoding config: %w", err)
	}
	if err := a.cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger, err := logging.New(cmd.ErrOrStderr(), a.cfg.Log.Level, a.cfg.Log.Format)
	if err != nil {
		return err
	}
	a.logger = logger
	if readErr == nil {
		a.logger.Info("using config file", "path", a.v.ConfigFileUsed())
	}
	return nil
}

// absRoot returns the configured root as an absolute path for display.
func (a *app) absRoot() string {
	abs, err := filepath.Abs(a.cfg.Root)
	if err != nil {
		return a.cfg.Root
	}
	return abs
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
