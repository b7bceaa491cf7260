package main

import (
	"fmt"
	"strings"

	"github.com/brettbedarf/explorerfs/model"
	"github.com/spf13/cobra"
)

func newValidateCmd(a *app) *cobra.Command {
	var rename string
	cmd := &cobra.Command{
		Use:   "validate <parent> <name>",
		Short: "Check a name for a new entry",
		Long: `The validate command checks whether name can be created inside parent.
The name may contain separators to create nested entries. With --rename the
check is for renaming that existing child of parent instead.

Example:
  explorer validate / "new folder/file.txt"
  explorer validate src main.go --rename old.go`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runValidate(cmd, args[0], args[1], rename)
		},
	}
	cmd.Flags().StringVar(&rename, "rename", "", "Existing child being renamed")
	return cmd
}

func (a *app) runValidate(cmd *cobra.Command, parentPath, name, rename string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	parent, err := walk(ctx, a.explorer, parentPath)
	if err != nil {
		return err
	}
	if !parent.IsDirectory() {
		return fmt.Errorf("%s: %w", parent.Path(), model.ErrNotDirectory)
	}
	// siblings must be known for collision checks
	if _, err := parent.FetchChildren(ctx, ""); err != nil {
		return err
	}

	// load the existing directories a multi-segment name descends into
	dir := parent
	segs := strings.FieldsFunc(name, func(c rune) bool { return c == '/' || c == '\\' })
	for _, seg := range segs[:max(len(segs)-1, 0)] {
		child, ok := dir.GetChild(seg)
		if !ok || !child.IsDirectory() {
			break
		}
		if _, err := child.FetchChildren(ctx, ""); err != nil {
			return err
		}
		dir = child
	}

	var self *model.Node
	if rename != "" {
		var ok bool
		if self, ok = parent.GetChild(rename); !ok {
			return fmt.Errorf("%s: no such file or directory", a.explorer.Profile().Join(parent.Path(), rename))
		}
	}

	v := model.ValidateName(parent, self, name, nil)
	if v == nil {
		fmt.Fprintf(out, "OK: %q\n", name)
		return nil
	}
	fmt.Fprintf(out, "%s: %s\n", v, v.Message())
	if v.IsError() {
		return fmt.Errorf("invalid name %q", name)
	}
	return nil
}
