// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package version locates and reads the canonical project version from a
// __version__.py declaration file. The version is read fresh on every call;
// nothing is cached between calls.
package version

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

const (
	// FileName is the version-declaration file searched for.
	FileName = "__version__.py"
	// srcDir is the conventional source subdirectory.
	srcDir = "src"
)

var (
	// ErrNotFound is returned when no candidate location holds a version file.
	ErrNotFound = errors.New("version file not found")
	// ErrFormat is returned when a version file has no recognizable declaration.
	ErrFormat = errors.New("version declaration not found")
)

// declPattern matches `__version__ = "x"`, `__version__ = 'x'` and the
// annotated `__version__: str = "x"` forms.
var declPattern = regexp.MustCompile(`(?m)^\s*__version__\s*(?::\s*str\s*)?=\s*(?:"([^"\n]+)"|'([^'\n]+)')`)

// NotFoundError lists every location that was checked.
type NotFoundError struct {
	Searched []string
}

func (e *NotFoundError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "could not find %s; searched locations:", FileName)
	for _, p := range e.Searched {
		fmt.Fprintf(&b, "\n  - %s", p)
	}
	return b.String()
}

// Is reports whether target is ErrNotFound.
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// FormatError names the version file that held no valid declaration.
type FormatError struct {
	Path string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("could not parse version from %s; expected format: __version__ = \"x.y.z\"", e.Path)
}

// Is reports whether target is ErrFormat.
func (e *FormatError) Is(target error) bool { return target == ErrFormat }

// Candidates returns the prioritized list of version file locations for
// startDir:
//
//  1. startDir/__version__.py
//  2. startDir/src/__version__.py
//  3. startDir/src/<pkg>/__version__.py for each non-hidden package
//     directory, in lexical order
//  4. the parent of startDir
//
// Candidates only lists; it does not check that the files exist.
func Candidates(startDir string) []string {
	src := filepath.Join(startDir, srcDir)
	locations := []string{
		filepath.Join(startDir, FileName),
		filepath.Join(src, FileName),
	}

	if entries, err := os.ReadDir(src); err == nil {
		var pkgs []string
		for _, e := range entries {
			if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
				pkgs = append(pkgs, e.Name())
			}
		}
		sort.Strings(pkgs)
		for _, pkg := range pkgs {
			locations = append(locations, filepath.Join(src, pkg, FileName))
		}
	}

	abs, err := filepath.Abs(startDir)
	if err != nil {
		abs = startDir
	}
	locations = append(locations, filepath.Join(filepath.Dir(abs), FileName))
	return locations
}

// Find returns the first candidate that exists as a regular file.
func Find(startDir string) (string, error) {
	candidates := Candidates(startDir)
	for _, p := range candidates {
		info, err := os.Stat(p)
		if err == nil && info.Mode().IsRegular() {
			return p, nil
		}
	}
	return "", &NotFoundError{Searched: candidates}
}

// Parse extracts the version from the first declaration line in content.
func Parse(content string) (string, bool) {
	m := declPattern.FindStringSubmatch(content)
	if m == nil {
		return "", false
	}
	if m[1] != "" {
		return m[1], true
	}
	return m[2], true
}

// ParseFile reads path and returns its declared version.
func ParseFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading version file %s: %w", path, err)
	}
	v, ok := Parse(string(data))
	if !ok {
		return "", &FormatError{Path: path}
	}
	return v, nil
}

// Resolve finds the version file for startDir and returns its version.
func Resolve(startDir string) (string, error) {
	path, err := Find(startDir)
	if err != nil {
		return "", err
	}
	return ParseFile(path)
}
