// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package notebook renames Jupyter notebooks so their filenames carry the
// canonical project version, e.g. analysis.ipynb -> analysis_v0.1.0.ipynb.
//
// Renaming is split into a pure decision step (Plan) and an I/O step
// (Apply) so the decisions can be tested without a filesystem.
package notebook

import (
	"path/filepath"
	"regexp"
	"strings"
)

// Ext is the notebook file extension.
const Ext = ".ipynb"

// versionSuffix splits a stem at the last "_v<digit>" marker. A base name
// that itself contains "_v<digit>" after that point is ambiguous.
var versionSuffix = regexp.MustCompile(`^(.*)_v(\d.*)$`)

// Notebook is a notebook file found on disk.
type Notebook struct {
	Path      string
	Base      string
	Version   string
	Versioned bool
}

// NewNotebook parses the filename of path.
func NewNotebook(path string) Notebook {
	base, v, ok := ParseName(path)
	return Notebook{Path: path, Base: base, Version: v, Versioned: ok}
}

// ParseName splits a notebook filename into its base name and embedded
// version. ok is false when the name carries no version suffix, in which
// case base is the whole stem. Any leading directory is ignored.
func ParseName(filename string) (base, version string, ok bool) {
	stem := strings.TrimSuffix(filepath.Base(filename), Ext)
	m := versionSuffix.FindStringSubmatch(stem)
	if m == nil || m[1] == "" {
		return stem, "", false
	}
	return m[1], m[2], true
}

// FormatName returns the versioned filename for base.
func FormatName(base, version string) string {
	return base + "_v" + version + Ext
}
