// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package notebook

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/pdiddy/versioner/internal/version"
)

// checkpointDir holds Jupyter autosave copies, which are never renamed.
const checkpointDir = ".ipynb_checkpoints"

// ErrCollision is recorded when a rename target already exists.
var ErrCollision = errors.New("target file already exists")

// Kind classifies a rename outcome.
type Kind int

const (
	// Renamed means the file was (or in a dry run would be) renamed.
	Renamed Kind = iota
	// SkippedCurrent means the filename already carries the canonical version.
	SkippedCurrent
	// SkippedNoChange means the computed target equals the source path.
	SkippedNoChange
	// Failed means the item could not be renamed; Err holds the cause.
	Failed
)

func (k Kind) String() string {
	switch k {
	case Renamed:
		return "renamed"
	case SkippedCurrent:
		return "skipped-already-current"
	case SkippedNoChange:
		return "skipped-no-change"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Outcome is the decision (and, after Apply, the result) for one notebook.
type Outcome struct {
	Kind        Kind
	OldPath     string
	NewPath     string
	FromVersion string
	Version     string
	DryRun      bool
	Err         error
}

// Options controls a VersionAll run.
type Options struct {
	// DryRun reports decisions without renaming anything.
	DryRun bool
	// Version overrides version resolution when non-empty.
	Version string
	// StartDir is where the version file search begins. Defaults to the root.
	StartDir string
	// Logger receives diagnostics. Defaults to slog.Default().
	Logger *slog.Logger
}

// walkDir is swapped out in tests to simulate unreadable directories.
var walkDir = filepath.WalkDir

// Find returns every notebook under root, sorted by path. Checkpoint
// directories are skipped. Only an error on root itself fails the scan; an
// unreadable subdirectory is logged and skipped.
func Find(root string) ([]string, error) {
	return find(root, slog.Default())
}

func find(root string, logger *slog.Logger) ([]string, error) {
	var paths []string
	err := walkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d == nil || path == root {
				return err
			}
			logger.Warn("skipping unreadable path", "path", path, "error", err)
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if d.Name() == checkpointDir {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() && filepath.Ext(path) == Ext {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning notebooks in %s: %w", root, err)
	}
	sort.Strings(paths)
	return paths, nil
}

// Plan decides what to do with each notebook in paths without touching the
// filesystem. exists reports whether a path is already taken on disk; a
// target is also taken when it is another notebook's current path or an
// earlier item claimed it. A planned rename does not free its source path.
func Plan(paths []string, target string, exists func(string) bool) []Outcome {
	claimed := make(map[string]bool, len(paths))
	for _, p := range paths {
		claimed[p] = true
	}

	outcomes := make([]Outcome, 0, len(paths))
	for _, p := range paths {
		nb := NewNotebook(p)
		o := Outcome{OldPath: p, FromVersion: nb.Version, Version: target}

		newPath := filepath.Join(filepath.Dir(p), FormatName(nb.Base, target))
		switch {
		case nb.Versioned && nb.Version == target:
			o.Kind = SkippedCurrent
		case newPath == p:
			o.Kind = SkippedNoChange
		case claimed[newPath] || exists(newPath):
			o.Kind = Failed
			o.NewPath = newPath
			o.Err = fmt.Errorf("%w: %s", ErrCollision, filepath.Base(newPath))
		default:
			o.Kind = Renamed
			o.NewPath = newPath
			claimed[newPath] = true
		}
		outcomes = append(outcomes, o)
	}
	return outcomes
}

// Apply performs the renames decided by Plan and returns the updated
// outcomes. Each target is checked again right before renaming so an
// existing file is never replaced. One failure does not stop the batch.
func Apply(outcomes []Outcome) []Outcome {
	applied := make([]Outcome, len(outcomes))
	for i, o := range outcomes {
		if o.Kind == Renamed {
			if err := rename(o.OldPath, o.NewPath); err != nil {
				o.Kind = Failed
				o.Err = err
			}
		}
		applied[i] = o
	}
	return applied
}

func rename(oldPath, newPath string) error {
	if _, err := os.Lstat(newPath); err == nil {
		return fmt.Errorf("%w: %s", ErrCollision, filepath.Base(newPath))
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("checking %s: %w", newPath, err)
	}
	return os.Rename(oldPath, newPath)
}

// VersionAll brings every notebook under root to the canonical version. The
// version is resolved once per run. The only errors returned are those that
// stop the whole run; per-file failures are recorded on the outcomes.
func VersionAll(root string, opts Options) ([]Outcome, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	target := opts.Version
	if target == "" {
		start := opts.StartDir
		if start == "" {
			start = root
		}
		v, err := version.Resolve(start)
		if err != nil {
			return nil, err
		}
		target = v
	}
	logger.Debug("resolved project version", "version", target, "root", root)

	paths, err := find(root, logger)
	if err != nil {
		return nil, err
	}
	logger.Debug("found notebooks", "count", len(paths))

	outcomes := Plan(paths, target, pathExists)
	if opts.DryRun {
		for i := range outcomes {
			outcomes[i].DryRun = true
		}
		return outcomes, nil
	}
	return Apply(outcomes), nil
}

func pathExists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}
