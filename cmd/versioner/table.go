package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/versioner/internal/table"
)

func newTableCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "table <name>",
		Short: "Print a table name with the project version appended",
		Long: `Table prints <name><separator>v<version>, or
<catalog>.<schema>.<name><separator>v<version> when --catalog and --schema
are given, using the version from __version__.py unless --version is set.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			catalog, _ := flags.GetString("catalog")
			schema, _ := flags.GetString("schema")
			if (catalog == "") != (schema == "") {
				return errors.New("--catalog and --schema must be given together")
			}

			opts := table.Options{
				Separator: a.cfg.Table.Separator,
				Sanitize:  a.cfg.Table.Sanitize,
				StartDir:  a.cfg.Root,
			}
			if flags.Changed("separator") {
				opts.Separator, _ = flags.GetString("separator")
			}
			if flags.Changed("sanitize") {
				opts.Sanitize, _ = flags.GetBool("sanitize")
			}
			opts.Version, _ = flags.GetString("version")

			var (
				name string
				err  error
			)
			if catalog != "" {
				name, err = table.FormatFullPath(args[0], catalog, schema, opts)
			} else {
				name, err = table.FormatName(args[0], opts)
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), name)
			return nil
		},
	}
	cmd.Flags().String("catalog", "", "catalog to prefix the table with")
	cmd.Flags().String("schema", "", "schema to prefix the table with")
	cmd.Flags().String("separator", table.DefaultSeparator, "separator between the table name and its version")
	cmd.Flags().Bool("sanitize", false, "replace dots in the version with underscores")
	cmd.Flags().String("version", "", "version to use instead of the one in __version__.py")
	return cmd
}
