// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package manifest keeps the version fields of the bundle's YAML files in
// step with the project version: the top-level version in databricks.yml
// and variables.pkg_version.default in resources/variables.yml.
//
// Files are edited as yaml.Node trees so that key order, comments and every
// field other than the target survive a rewrite.
package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"
)

// DefaultBackupSuffix is appended to a file's path to name its backup.
const DefaultBackupSuffix = ".bak"

// ErrMalformed is returned when a file is not a YAML mapping or the target
// field path runs through a value that is not a mapping.
var ErrMalformed = errors.New("malformed manifest")

// Target names a YAML file relative to the project root and the field path
// inside it that holds the version.
type Target struct {
	Path  string
	Field []string
	// Label is how the field is named in messages.
	Label string
}

var (
	// ManifestTarget is the bundle manifest's top-level version.
	ManifestTarget = Target{
		Path:  "databricks.yml",
		Field: []string{"version"},
		Label: "version",
	}
	// VariablesTarget is the pkg_version variable's default value.
	VariablesTarget = Target{
		Path:  filepath.Join("resources", "variables.yml"),
		Field: []string{"variables", "pkg_version", "default"},
		Label: "pkg_version.default",
	}
)

// DefaultTargets returns the files updated by UpdateAll, in order.
func DefaultTargets() []Target {
	return []Target{ManifestTarget, VariablesTarget}
}

// Options controls an update.
type Options struct {
	DryRun bool
	Backup bool
	// BackupSuffix defaults to DefaultBackupSuffix.
	BackupSuffix string
	Logger       *slog.Logger
}

// Result describes what happened to one target file.
type Result struct {
	Path    string
	Updated bool
	// Skipped is set when the file does not exist.
	Skipped bool
	Old     string
	New     string
	// Backup is the backup path, set only when a backup was written.
	Backup  string
	DryRun  bool
	Message string
	Err     error
}

// UpdateAll updates every default target under root. A failure on one file
// is recorded on its Result and does not stop the others.
func UpdateAll(root, version string, opts Options) []Result {
	targets := DefaultTargets()
	results := make([]Result, 0, len(targets))
	for _, t := range targets {
		results = append(results, Update(root, t, version, opts))
	}
	return results
}

// Update sets t's field under root to version.
func Update(root string, t Target, version string, opts Options) Result {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	suffix := opts.BackupSuffix
	if suffix == "" {
		suffix = DefaultBackupSuffix
	}

	path := filepath.Join(root, t.Path)
	res := Result{Path: path, New: version, DryRun: opts.DryRun}

	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		res.Skipped = true
		res.Message = fmt.Sprintf("Skipped %s: file not found", t.Path)
		return res
	}
	if err != nil {
		return failed(res, t, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return failed(res, t, fmt.Errorf("reading %s: %w", t.Path, err))
	}
	doc, err := load(data)
	if err != nil {
		return failed(res, t, err)
	}

	current, err := locate(doc.Content[0], t.Field, false)
	if err != nil {
		return failed(res, t, err)
	}
	var had bool
	if current != nil && !isNull(deref(current)) {
		res.Old, had = deref(current).Value, true
	}

	if had && res.Old == version && deref(current).ShortTag() == "!!str" {
		res.Message = fmt.Sprintf("Already at version %s: %s", version, t.Path)
		return res
	}

	field, err := locate(doc.Content[0], t.Field, true)
	if err != nil {
		return failed(res, t, err)
	}
	setString(field, version)

	action := "Updated"
	if opts.DryRun {
		action = "Would update"
	}
	from := res.Old
	if !had {
		from = "(no version)"
	}
	res.Message = fmt.Sprintf("%s %s in %s: %s -> %s", action, t.Label, t.Path, from, version)
	res.Updated = true

	backupPath := path + suffix
	if opts.DryRun {
		if opts.Backup {
			res.Message += fmt.Sprintf(" (would back up to %s)", filepath.Base(backupPath))
		}
		return res
	}

	out, err := encode(doc)
	if err != nil {
		res.Updated = false
		return failed(res, t, err)
	}

	if opts.Backup {
		if err := os.WriteFile(backupPath, data, info.Mode().Perm()); err != nil {
			res.Updated = false
			return failed(res, t, fmt.Errorf("writing backup %s: %w", backupPath, err))
		}
		res.Backup = backupPath
		res.Message += fmt.Sprintf(" (backup: %s)", filepath.Base(backupPath))
		logger.Debug("wrote backup", "path", backupPath)
	}

	if err := os.WriteFile(path, out, info.Mode().Perm()); err != nil {
		res.Updated = false
		return failed(res, t, fmt.Errorf("writing %s: %w", t.Path, err))
	}
	logger.Debug("updated manifest", "path", path, "field", t.Label, "version", version)
	return res
}

// Current returns the version stored at t's field under root. ok is false
// when the field is absent or empty.
func Current(root string, t Target) (value string, ok bool, err error) {
	data, err := os.ReadFile(filepath.Join(root, t.Path))
	if err != nil {
		return "", false, err
	}
	doc, err := load(data)
	if err != nil {
		return "", false, err
	}
	n, err := locate(doc.Content[0], t.Field, false)
	if err != nil || n == nil || isNull(deref(n)) {
		return "", false, err
	}
	return deref(n).Value, true, nil
}

func failed(res Result, t Target, err error) Result {
	res.Err = err
	res.Message = fmt.Sprintf("Error: %s: %v", t.Path, err)
	return res
}

// load parses data into a document whose single child is a mapping. Empty
// and null documents become an empty mapping. A stream with more than one
// document is rejected because rewriting it would drop the others.
func load(data []byte) (*yaml.Node, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	var doc yaml.Node
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	var next yaml.Node
	switch err := dec.Decode(&next); {
	case err == nil:
		return nil, fmt.Errorf("%w: multiple YAML documents", ErrMalformed)
	case !errors.Is(err, io.EOF):
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		doc.Kind = yaml.DocumentNode
		doc.Content = []*yaml.Node{newMapping()}
	}
	root := doc.Content[0]
	if isNull(root) {
		*root = *newMapping()
	}
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: top level is not a mapping", ErrMalformed)
	}
	return &doc, nil
}

// locate walks path from m and returns the value node of the last key. With
// create set, missing or null mappings along the path are created and a
// missing last key is appended; otherwise a missing key yields nil.
func locate(m *yaml.Node, path []string, create bool) (*yaml.Node, error) {
	for i, key := range path {
		m = deref(m)
		if m.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("%w: %s is not a mapping", ErrMalformed, strings.Join(path[:i], "."))
		}

		last := i == len(path)-1
		val := lookup(m, key)
		switch {
		case val == nil && !create:
			return nil, nil
		case val == nil:
			val = &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null"}
			if !last {
				val = newMapping()
			}
			m.Content = append(m.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}, val)
		case !last && isNull(val):
			if !create {
				return nil, nil
			}
			*val = *newMapping()
		}

		if last {
			if deref(val).Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("%w: %s is not a scalar", ErrMalformed, strings.Join(path, "."))
			}
			return val, nil
		}
		m = val
	}
	return nil, nil
}

func lookup(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

// setString replaces n with a string scalar, keeping any quoting style and
// comments the old value had.
func setString(n *yaml.Node, v string) {
	style := n.Style & (yaml.DoubleQuotedStyle | yaml.SingleQuotedStyle)
	if n.Kind == yaml.AliasNode {
		style = 0
	}
	n.Kind = yaml.ScalarNode
	n.Tag = "!!str"
	n.Value = v
	n.Style = style
	n.Alias = nil
	n.Anchor = ""
}

// deref follows an alias to its anchored node.
func deref(n *yaml.Node) *yaml.Node {
	if n.Kind == yaml.AliasNode && n.Alias != nil {
		return n.Alias
	}
	return n
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null"
}

func newMapping() *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
}

func encode(doc *yaml.Node) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encoding yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding yaml: %w", err)
	}
	return buf.Bytes(), nil
}
