// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package table formats versioned table names such as user_events_v0.1.0
// and prod.analytics.user_events_v0.1.0.
package table

import (
	"strings"

	"github.com/pdiddy/versioner/internal/version"
)

// DefaultSeparator joins the table name and its version.
const DefaultSeparator = "_"

// Options controls how a table name is formatted.
type Options struct {
	// Separator goes between the base name and "v<version>". Empty means "_".
	Separator string
	// Version is used as-is when set; otherwise it is resolved from StartDir.
	Version string
	// StartDir is where version resolution starts. Empty means ".".
	StartDir string
	// Sanitize replaces dots in the version with underscores, for catalogs
	// that treat dots in identifiers as path separators.
	Sanitize bool
}

// Name returns base<separator>v<version>.
func Name(base, v, separator string) string {
	if separator == "" {
		separator = DefaultSeparator
	}
	return base + separator + "v" + v
}

// FormatName returns the versioned name for base, resolving the project
// version unless opts.Version is set.
func FormatName(base string, opts Options) (string, error) {
	v, err := resolve(opts)
	if err != nil {
		return "", err
	}
	return Name(base, v, opts.Separator), nil
}

// FormatFullPath returns catalog.schema.<versioned name>.
func FormatFullPath(base, catalog, schema string, opts Options) (string, error) {
	name, err := FormatName(base, opts)
	if err != nil {
		return "", err
	}
	return catalog + "." + schema + "." + name, nil
}

func resolve(opts Options) (string, error) {
	v := opts.Version
	if v == "" {
		start := opts.StartDir
		if start == "" {
			start = "."
		}
		resolved, err := version.Resolve(start)
		if err != nil {
			return "", err
		}
		v = resolved
	}
	if opts.Sanitize {
		v = strings.ReplaceAll(v, ".", "_")
	}
	return v, nil
}
