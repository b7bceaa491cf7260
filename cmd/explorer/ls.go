package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ls [path]",
		Short: "List the children of a directory",
		Long: `The ls command lists a directory in explorer order. Entries grouped
under a primary by file nesting are shown indented below it.

Example:
  explorer ls
  explorer ls src --sort type --nest`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := "/"
			if len(args) > 0 {
				p = args[0]
			}
			return a.runLs(cmd, p)
		},
	}
}

func (a *app) runLs(cmd *cobra.Command, p string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	n, err := walk(ctx, a.explorer, p)
	if err != nil {
		return err
	}
	if !n.IsDirectory() {
		fmt.Fprintf(out, "%-7s %10s  %s\n", n.Kind(), displaySize(n), displayName(n))
		return nil
	}

	children, err := n.FetchChildren(ctx, "")
	if err != nil {
		return err
	}
	for _, c := range children {
		fmt.Fprintf(out, "%-7s %10s  %s\n", c.Kind(), displaySize(c), displayName(c))
		for _, d := range c.NestedChildren() {
			fmt.Fprintf(out, "%-7s %10s    └ %s\n", d.Kind(), displaySize(d), displayName(d))
		}
	}
	return nil
}
