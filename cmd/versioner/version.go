package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/pdiddy/versioner/internal/manifest"
	"github.com/pdiddy/versioner/internal/version"
)

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long: `Version prints the versioner release, the project version declared in
__version__.py, and the versions currently recorded in the bundle YAML files.`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			a.printVersion(cmd.OutOrStdout())
		},
	}
}

func (a *app) printVersion(w io.Writer) {
	fmt.Fprintf(w, "versioner version %s\n", buildVersion)

	path, err := version.Find(a.cfg.Root)
	if err != nil {
		fmt.Fprintln(w, "Project version: (not found)")
	} else if v, err := version.ParseFile(path); err != nil {
		fmt.Fprintf(w, "Project version: (unreadable: %s)\n", path)
	} else {
		fmt.Fprintf(w, "Project version: %s (%s)\n", v, path)
	}

	for _, t := range manifest.DefaultTargets() {
		v, ok, err := manifest.Current(a.cfg.Root, t)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			fmt.Fprintf(w, "%s: (file not found)\n", t.Path)
		case err != nil:
			fmt.Fprintf(w, "%s: (error: %v)\n", t.Path, err)
		case !ok:
			fmt.Fprintf(w, "%s: (no version)\n", t.Path)
		default:
			fmt.Fprintf(w, "%s: %s\n", t.Path, v)
		}
	}
}
