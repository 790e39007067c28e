package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newAllCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "all",
		Short: "Run all versioning operations (notebooks + YAML)",
		Long: `All versions notebooks and then updates the bundle YAML files. The YAML
step runs even when the notebook step fails; the command fails if either
step did.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			noBackup, _ := cmd.Flags().GetBool("no-backup")
			w := cmd.OutOrStdout()

			fmt.Fprintln(w, "=== Versioning Notebooks ===")
			nbErr := a.runNotebooks(w, dryRun)
			if nbErr != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", nbErr)
			}

			fmt.Fprintln(w, "\n=== Updating Databricks YAML ===")
			yamlErr := a.runUpdateYAML(w, dryRun, !noBackup)
			if yamlErr != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", yamlErr)
			}

			if nbErr != nil || yamlErr != nil {
				return errors.New("versioning finished with errors")
			}
			return nil
		},
	}
	cmd.Flags().Bool("dry-run", false, "show what would be changed without modifying files")
	cmd.Flags().Bool("no-backup", false, "do not create backup files")
	return cmd
}
