package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pdiddy/versioner/internal/notebook"
	"github.com/pdiddy/versioner/internal/version"
)

func newNotebooksCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notebooks",
		Short: "Version all Jupyter notebooks in the project",
		Long: `Notebooks renames every .ipynb file under the project root so its name
ends in _v<version>, where <version> is read from __version__.py. Notebooks
already at the project version are left alone, and a rename that would
replace an existing file is reported as an error instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			return a.runNotebooks(cmd.OutOrStdout(), dryRun)
		},
	}
	cmd.Flags().Bool("dry-run", false, "show what would be changed without modifying files")
	return cmd
}

func (a *app) runNotebooks(w io.Writer, dryRun bool) error {
	fmt.Fprintf(w, "Searching for notebooks in: %s\n", a.absRoot())
	if dryRun {
		fmt.Fprintln(w, "(dry run) no files will be renamed")
	}

	outcomes, err := notebook.VersionAll(a.cfg.Root, notebook.Options{
		DryRun: dryRun,
		Logger: a.logger,
	})
	if err != nil {
		if errors.Is(err, version.ErrNotFound) {
			return fmt.Errorf("%w\n\nmake sure your project has a %s file", err, version.FileName)
		}
		return err
	}

	if len(outcomes) == 0 {
		fmt.Fprintln(w, "No notebooks found.")
		return nil
	}

	notebook.PrintResults(w, outcomes)
	if s := notebook.Summarize(outcomes); s.HasFailures() {
		return fmt.Errorf("%d notebook(s) could not be renamed", s.Failed)
	}
	return nil
}
