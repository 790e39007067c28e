package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pdiddy/versioner/internal/manifest"
	"github.com/pdiddy/versioner/internal/version"
)

func newUpdateYAMLCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update-yaml",
		Short: "Update version in databricks.yml and resources/variables.yml",
		Long: `Update-yaml writes the project version into the top-level version field
of databricks.yml and into variables.pkg_version.default of
resources/variables.yml. Either file may be absent. Each file is backed up to
<file>.bak before it is rewritten unless --no-backup is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			noBackup, _ := cmd.Flags().GetBool("no-backup")
			return a.runUpdateYAML(cmd.OutOrStdout(), dryRun, !noBackup)
		},
	}
	cmd.Flags().Bool("dry-run", false, "show what would be changed without modifying files")
	cmd.Flags().Bool("no-backup", false, "do not create backup files")
	return cmd
}

func (a *app) runUpdateYAML(w io.Writer, dryRun, backup bool) error {
	v, err := version.Resolve(a.cfg.Root)
	if err != nil {
		return err
	}
	a.logger.Debug("resolved project version", "version", v)

	if dryRun {
		fmt.Fprintln(w, "(dry run) no files will be modified")
	}

	results := manifest.UpdateAll(a.cfg.Root, v, manifest.Options{
		DryRun:       dryRun,
		Backup:       backup && a.cfg.Backup,
		BackupSuffix: a.cfg.BackupSuffix,
		Logger:       a.logger,
	})

	failed := 0
	for _, r := range results {
		fmt.Fprintln(w, r.Message)
		if r.Err != nil {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d YAML file(s) could not be updated", failed)
	}
	return nil
}
