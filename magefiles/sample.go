//go:build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// sampleFiles is a small project tree for trying the CLI by hand.
var sampleFiles = map[string]string{
	"src/sample_pkg/__version__.py":  "__version__ = \"0.2.0\"\n",
	"notebooks/analysis.ipynb":       "{\"cells\": [], \"nbformat\": 4, \"nbformat_minor\": 5}\n",
	"notebooks/model_v0.1.0.ipynb":   "{\"cells\": [], \"nbformat\": 4, \"nbformat_minor\": 5}\n",
	"notebooks/etl/ingest.ipynb":     "{\"cells\": [], \"nbformat\": 4, \"nbformat_minor\": 5}\n",
	"databricks.yml":                 "bundle:\n  name: sample\nversion: 0.1.0\n",
	"resources/variables.yml":        "variables:\n  pkg_version:\n    description: Package version\n    default: 0.1.0\n",
	"notebooks/.ipynb_checkpoints/x": "checkpoint\n",
}

// Sample writes a sample project into sample/, replacing any previous one.
func Sample() error {
	if err := os.RemoveAll(sampleDir); err != nil {
		return fmt.Errorf("removing %s: %w", sampleDir, err)
	}
	for rel, content := range sampleFiles {
		path := filepath.Join(sampleDir, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		fmt.Println("  ", path)
	}
	fmt.Println("Sample project written.")
	return nil
}

// DryRun builds the CLI and previews every change against the sample project.
func DryRun() error {
	mg.SerialDeps(Build, Sample)
	return sh.RunV(filepath.Join(binDir, binName), "all", "--dry-run", "--root", sampleDir)
}
