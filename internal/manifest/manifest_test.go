// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package manifest

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"
)

const bundleYAML = `# Bundle manifest
bundle:
  name: demo
version: 0.1.0 # managed by versioner
targets:
  dev:
    mode: development
`

const variablesYAML = `variables:
  pkg_version:
    description: Package version
    default: 0.1.0
  catalog:
    default: main
`

func TestUpdateManifest(t *testing.T) {
	root := t.TempDir()
	path := writeFile(t, root, "databricks.yml", bundleYAML)

	res := Update(root, ManifestTarget, "0.2.0", Options{Backup: true})
	require.NoError(t, res.Err)
	assert.True(t, res.Updated)
	assert.Equal(t, "0.1.0", res.Old)
	assert.Equal(t, path+".bak", res.Backup)
	assert.Equal(t, "Updated version in databricks.yml: 0.1.0 -> 0.2.0 (backup: databricks.yml.bak)", res.Message)

	out := readFile(t, path)
	assert.Contains(t, out, "version: 0.2.0 # managed by versioner")
	assert.Contains(t, out, "# Bundle manifest")
	assert.NotContains(t, out, "0.1.0")

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
	assert.Equal(t, map[string]any{
		"bundle":  map[string]any{"name": "demo"},
		"version": "0.2.0",
		"targets": map[string]any{"dev": map[string]any{"mode": "development"}},
	}, doc)

	assert.Equal(t, bundleYAML, readFile(t, path+".bak"))

	again := Update(root, ManifestTarget, "0.2.0", Options{Backup: true})
	require.NoError(t, again.Err)
	assert.False(t, again.Updated)
	assert.Empty(t, again.Backup)
	assert.Equal(t, "Already at version 0.2.0: databricks.yml", again.Message)
	assert.Equal(t, bundleYAML, readFile(t, path+".bak"), "no new backup on a no-op run")
}

func TestUpdateKeepsKeyOrder(t *testing.T) {
	root := t.TempDir()
	path := writeFile(t, root, "databricks.yml", "zeta: 1\nversion: 0.1.0\nalpha: 2\n")

	res := Update(root, ManifestTarget, "0.2.0", Options{})
	require.NoError(t, res.Err)
	assert.Equal(t, "zeta: 1\nversion: 0.2.0\nalpha: 2\n", readFile(t, path))
}

func TestUpdateVariables(t *testing.T) {
	root := t.TempDir()
	path := writeFile(t, root, filepath.Join("resources", "variables.yml"), variablesYAML)

	res := Update(root, VariablesTarget, "0.2.0", Options{})
	require.NoError(t, res.Err)
	assert.True(t, res.Updated)
	assert.Equal(t, "Updated pkg_version.default in "+filepath.Join("resources", "variables.yml")+": 0.1.0 -> 0.2.0", res.Message)

	got, ok, err := Current(root, VariablesTarget)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "0.2.0", got)

	out := readFile(t, path)
	assert.Contains(t, out, "description: Package version")
	assert.Contains(t, out, "default: main")
	assert.NoFileExists(t, path+".bak")
}

func TestUpdateCreatesMissingFields(t *testing.T) {
	tests := []struct {
		name    string
		target  Target
		content string
	}{
		{name: "empty manifest", target: ManifestTarget, content: ""},
		{name: "null manifest", target: ManifestTarget, content: "~\n"},
		{name: "manifest without version", target: ManifestTarget, content: "bundle:\n  name: demo\n"},
		{name: "variables without pkg_version", target: VariablesTarget, content: "variables:\n  catalog:\n    default: main\n"},
		{name: "variables with empty pkg_version", target: VariablesTarget, content: "variables:\n  pkg_version:\n"},
		{name: "variables with empty default", target: VariablesTarget, content: "variables:\n  pkg_version:\n    default:\n"},
		{name: "no variables key", target: VariablesTarget, content: "other: true\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			writeFile(t, root, tt.target.Path, tt.content)

			res := Update(root, tt.target, "1.4.0", Options{})
			require.NoError(t, res.Err)
			assert.True(t, res.Updated)
			assert.Contains(t, res.Message, "(no version) -> 1.4.0")

			got, ok, err := Current(root, tt.target)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "1.4.0", got)
		})
	}
}

func TestUpdatePreservesQuoting(t *testing.T) {
	root := t.TempDir()
	path := writeFile(t, root, "databricks.yml", "version: \"0.1.0\"\nname: 'demo'\n")

	res := Update(root, ManifestTarget, "0.2.0", Options{})
	require.NoError(t, res.Err)
	assert.Equal(t, "version: \"0.2.0\"\nname: 'demo'\n", readFile(t, path))
}

func TestUpdateQuotesAmbiguousVersion(t *testing.T) {
	root := t.TempDir()
	path := writeFile(t, root, "databricks.yml", "version: 0.1.0\n")

	res := Update(root, ManifestTarget, "1.0", Options{})
	require.NoError(t, res.Err)
	assert.Equal(t, "version: \"1.0\"\n", readFile(t, path))

	got, ok, err := Current(root, ManifestTarget)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "1.0", got)
}

func TestUpdateLeadingDocumentMarker(t *testing.T) {
	root := t.TempDir()
	path := writeFile(t, root, "databricks.yml", "---\nversion: 0.1.0\n")

	res := Update(root, ManifestTarget, "0.2.0", Options{})
	require.NoError(t, res.Err)
	assert.True(t, res.Updated)
	assert.Contains(t, readFile(t, path), "version: 0.2.0")
}

func TestUpdateRewritesNonStringVersion(t *testing.T) {
	tests := []struct {
		name    string
		content string
		version string
		want    string
	}{
		{name: "float", content: "version: 1.10\n", version: "1.10", want: "version: \"1.10\"\n"},
		{name: "int", content: "version: 2\n", version: "2", want: "version: \"2\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			path := writeFile(t, root, "databricks.yml", tt.content)

			res := Update(root, ManifestTarget, tt.version, Options{})
			require.NoError(t, res.Err)
			assert.True(t, res.Updated)
			assert.Equal(t, tt.want, readFile(t, path))

			again := Update(root, ManifestTarget, tt.version, Options{})
			require.NoError(t, again.Err)
			assert.False(t, again.Updated)
			assert.Equal(t, "Already at version "+tt.version+": databricks.yml", again.Message)
		})
	}
}

func TestUpdateMalformed(t *testing.T) {
	tests := []struct {
		name    string
		target  Target
		content string
	}{
		{name: "invalid yaml", target: ManifestTarget, content: "version: [0.1.0\n"},
		{name: "sequence root", target: ManifestTarget, content: "- a\n- b\n"},
		{name: "scalar root", target: ManifestTarget, content: "just text\n"},
		{name: "version is a mapping", target: ManifestTarget, content: "version:\n  major: 1\n"},
		{name: "variables is a list", target: VariablesTarget, content: "variables:\n  - pkg_version\n"},
		{name: "pkg_version is a scalar", target: VariablesTarget, content: "variables:\n  pkg_version: 0.1.0\n"},
		{name: "multiple documents", target: ManifestTarget, content: "version: 0.1.0\n---\nbundle:\n  name: second\n"},
		{name: "invalid second document", target: ManifestTarget, content: "version: 0.1.0\n---\nkey: [x\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			path := writeFile(t, root, tt.target.Path, tt.content)

			res := Update(root, tt.target, "0.2.0", Options{Backup: true})
			require.Error(t, res.Err)
			assert.True(t, errors.Is(res.Err, ErrMalformed), "got %v", res.Err)
			assert.False(t, res.Updated)
			assert.Contains(t, res.Message, "Error: ")
			assert.Equal(t, tt.content, readFile(t, path))
			assert.NoFileExists(t, path+".bak")
		})
	}
}

func TestUpdateAll(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "databricks.yml", bundleYAML)
	writeFile(t, root, filepath.Join("resources", "variables.yml"), variablesYAML)

	results := UpdateAll(root, "0.2.0", Options{Backup: true})
	require.Len(t, results, 2)
	for _, r := range results {
		require.NoError(t, r.Err)
		assert.True(t, r.Updated)
		assert.FileExists(t, r.Backup)
	}
	assert.Equal(t, filepath.Join(root, "databricks.yml"), results[0].Path)
	assert.Equal(t, filepath.Join(root, "resources", "variables.yml"), results[1].Path)
}

func TestUpdateAllMissingVariables(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "databricks.yml", bundleYAML)

	results := UpdateAll(root, "0.2.0", Options{Backup: true})
	require.Len(t, results, 2)
	assert.True(t, results[0].Updated)
	assert.NoError(t, results[0].Err)

	assert.False(t, results[1].Updated)
	assert.True(t, results[1].Skipped)
	assert.NoError(t, results[1].Err)
	assert.Equal(t, "Skipped "+filepath.Join("resources", "variables.yml")+": file not found", results[1].Message)
	assert.NoDirExists(t, filepath.Join(root, "resources"))
}

func TestUpdateAllMalformedDoesNotStopOthers(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "databricks.yml", "- not\n- a mapping\n")
	writeFile(t, root, filepath.Join("resources", "variables.yml"), variablesYAML)

	results := UpdateAll(root, "0.2.0", Options{})
	require.Len(t, results, 2)
	assert.True(t, errors.Is(results[0].Err, ErrMalformed))
	require.NoError(t, results[1].Err)
	assert.True(t, results[1].Updated)
}

func TestUpdateDryRun(t *testing.T) {
	root := t.TempDir()
	manifestPath := writeFile(t, root, "databricks.yml", bundleYAML)
	variablesPath := writeFile(t, root, filepath.Join("resources", "variables.yml"), variablesYAML)

	dry := UpdateAll(root, "0.2.0", Options{DryRun: true, Backup: true})
	require.Len(t, dry, 2)
	assert.Equal(t, bundleYAML, readFile(t, manifestPath))
	assert.Equal(t, variablesYAML, readFile(t, variablesPath))
	assert.NoFileExists(t, manifestPath+".bak")
	assert.NoFileExists(t, variablesPath+".bak")
	assert.Equal(t, "Would update version in databricks.yml: 0.1.0 -> 0.2.0 (would back up to databricks.yml.bak)", dry[0].Message)

	applied := UpdateAll(root, "0.2.0", Options{Backup: true})
	require.Len(t, applied, 2)
	for i := range applied {
		assert.Equal(t, dry[i].Updated, applied[i].Updated)
		assert.Equal(t, dry[i].Old, applied[i].Old)
		assert.True(t, dry[i].DryRun)
		assert.False(t, applied[i].DryRun)
	}
}

func TestUpdateCustomBackupSuffix(t *testing.T) {
	root := t.TempDir()
	path := writeFile(t, root, "databricks.yml", bundleYAML)

	res := Update(root, ManifestTarget, "0.3.0", Options{Backup: true, BackupSuffix: ".orig"})
	require.NoError(t, res.Err)
	assert.Equal(t, path+".orig", res.Backup)
	assert.Equal(t, bundleYAML, readFile(t, path+".orig"))
}

func TestUpdateOverwritesPriorBackup(t *testing.T) {
	root := t.TempDir()
	path := writeFile(t, root, "databricks.yml", bundleYAML)
	writeFile(t, root, "databricks.yml.bak", "stale\n")

	res := Update(root, ManifestTarget, "0.2.0", Options{Backup: true})
	require.NoError(t, res.Err)
	assert.Equal(t, bundleYAML, readFile(t, path+".bak"))
}

func TestCurrentMissingFile(t *testing.T) {
	_, ok, err := Current(t.TempDir(), ManifestTarget)
	assert.False(t, ok)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestCurrentMissingField(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, filepath.Join("resources", "variables.yml"), "variables:\n  catalog:\n    default: main\n")

	got, ok, err := Current(root, VariablesTarget)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, got)
}

func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}
