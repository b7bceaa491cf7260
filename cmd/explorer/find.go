package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newFindCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "find <path>",
		Short: "Show details of a single entry",
		Long: `The find command resolves a path with the configured OS path rules
(case-insensitive on darwin and windows) and prints the entry found.

Example:
  explorer find src/main.go
  explorer find SRC/Main.go --os windows`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runFind(cmd, args[0])
		},
	}
}

func (a *app) runFind(cmd *cobra.Command, p string) error {
	n, err := walk(cmd.Context(), a.explorer, p)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "path:      %s\n", n.Path())
	fmt.Fprintf(out, "id:        %d\n", a.explorer.EnsureNodeID(n))
	fmt.Fprintf(out, "kind:      %s\n", n.Kind())
	fmt.Fprintf(out, "size:      %s\n", displaySize(n))
	if mt := n.ModTime(); !mt.IsZero() {
		fmt.Fprintf(out, "modified:  %s\n", mt.Format(time.RFC3339))
	}
	fmt.Fprintf(out, "readonly:  %t\n", n.IsReadOnly())
	if n.IsDirectory() {
		fmt.Fprintf(out, "children:  %s\n", n.State())
	}
	if primary := n.NestedIn(); primary != nil {
		fmt.Fprintf(out, "nested in: %s\n", primary.Name())
	}
	return nil
}
