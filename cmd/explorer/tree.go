package main

import (
	"context"
	"fmt"
	"io"

	"github.com/brettbedarf/explorerfs/internal/util"
	"github.com/brettbedarf/explorerfs/model"
	"github.com/spf13/cobra"
)

func newTreeCmd(a *app) *cobra.Command {
	var depth int
	cmd := &cobra.Command{
		Use:   "tree [path]",
		Short: "Display the tree below a directory",
		Long: `The tree command expands directories recursively in explorer order.
Nested entries are marked with ↳ below their primary.

Example:
  explorer tree
  explorer tree src --depth 2`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := "/"
			if len(args) > 0 {
				p = args[0]
			}
			return a.runTree(cmd, p, depth)
		},
	}
	cmd.Flags().IntVarP(&depth, "depth", "d", 3, "Maximum depth; 0 for unlimited")
	return cmd
}

func (a *app) runTree(cmd *cobra.Command, p string, depth int) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	n, err := walk(ctx, a.explorer, p)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, n.Path())
	if !n.IsDirectory() {
		return nil
	}
	if _, err := n.FetchChildren(ctx, ""); err != nil {
		return err
	}
	return printTree(ctx, out, n, "", 1, depth)
}

func printTree(ctx context.Context, out io.Writer, n *model.Node, prefix string, level, maxDepth int) error {
	logger := util.GetLogger("tree")

	children, err := n.FetchChildren(ctx, "")
	if err != nil {
		if ctx.Err() != nil {
			return err
		}
		// keep going with the siblings
		logger.Warn().Err(err).Str("path", n.Path()).Msg("Failed to list directory")
		fmt.Fprintf(out, "%s└── [%v]\n", prefix, err)
		return nil
	}

	for i, c := range children {
		branch, next := "├── ", "│   "
		if i == len(children)-1 {
			branch, next = "└── ", "    "
		}
		fmt.Fprintf(out, "%s%s%s\n", prefix, branch, displayName(c))
		for _, d := range c.NestedChildren() {
			fmt.Fprintf(out, "%s%s↳ %s\n", prefix, next, displayName(d))
		}
		if c.IsDirectory() && (maxDepth <= 0 || level < maxDepth) {
			if err := printTree(ctx, out, c, prefix+next, level+1, maxDepth); err != nil {
				return err
			}
		}
	}
	return nil
}
