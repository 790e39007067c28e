// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types holds the configuration records shared by the CLI and the
// internal packages.
package types

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/pdiddy/versioner/internal/logging"
)

// Log levels and formats accepted in configuration.
var (
	LogLevels  = names(logging.Levels)
	LogFormats = names(logging.Formats)
)

func names(list []string) []any {
	out := make([]any, len(list))
	for i, s := range list {
		out[i] = s
	}
	return out
}

// Config is the versioner configuration, read from versioner.yaml,
// VERSIONER_* environment variables and command-line flags.
type Config struct {
	// Root is the project root scanned for notebooks and manifests.
	Root string `json:"root" mapstructure:"root" yaml:"root"`

	// Backup controls whether manifests are copied before being rewritten.
	Backup bool `json:"backup" mapstructure:"backup" yaml:"backup"`

	// BackupSuffix is appended to a manifest's path to name its backup.
	BackupSuffix string `json:"backup_suffix" mapstructure:"backup_suffix" yaml:"backup_suffix"`

	Table TableConfig `json:"table" mapstructure:"table" yaml:"table"`
	Log   LogConfig   `json:"log" mapstructure:"log" yaml:"log"`
}

// TableConfig holds defaults for the table subcommand.
type TableConfig struct {
	// Separator goes between a table name and its version (default "_").
	Separator string `json:"separator" mapstructure:"separator" yaml:"separator"`

	// Sanitize replaces dots in the version with underscores.
	Sanitize bool `json:"sanitize" mapstructure:"sanitize" yaml:"sanitize"`
}

// LogConfig selects the diagnostic log level and encoding.
type LogConfig struct {
	Level  string `json:"level" mapstructure:"level" yaml:"level"`
	Format string `json:"format" mapstructure:"format" yaml:"format"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		Root:         ".",
		Backup:       true,
		BackupSuffix: ".bak",
		Table:        TableConfig{Separator: "_"},
		Log:          LogConfig{Level: "info", Format: "text"},
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Root, validation.Required),
		validation.Field(&c.BackupSuffix, validation.Required, validation.By(noPathSeparator)),
	); err != nil {
		return err
	}
	if err := c.Table.Validate(); err != nil {
		return err
	}
	return c.Log.Validate()
}

// Validate validates the table configuration.
func (c *TableConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Separator, validation.Length(0, 8), validation.By(noPathSeparator)),
	)
}

// Validate validates the log configuration.
func (c *LogConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Level, validation.In(LogLevels...)),
		validation.Field(&c.Format, validation.In(LogFormats...)),
	)
}

func noPathSeparator(value any) error {
	s, _ := value.(string)
	if strings.ContainsAny(s, `/\`) {
		return errors.New("must not contain a path separator")
	}
	return nil
}
