package main

import (
	"context"
	"fmt"

	"github.com/brettbedarf/explorerfs/model"
)

// walk lists every directory along p so the node at p is loaded, then returns it
func walk(ctx context.Context, ex *model.Explorer, p string) (*model.Node, error) {
	profile := ex.Profile()
	n := ex.Root()
	for _, seg := range profile.Split(p) {
		if !n.IsDirectory() {
			return nil, fmt.Errorf("%s: %w", n.Path(), model.ErrNotDirectory)
		}
		if _, err := n.FetchChildren(ctx, ""); err != nil {
			return nil, err
		}
		child, ok := n.GetChild(seg)
		if !ok {
			return nil, fmt.Errorf("%s: no such file or directory", profile.Join(n.Path(), seg))
		}
		n = child
	}
	return n, nil
}

func displayName(n *model.Node) string {
	if n.IsDirectory() {
		return n.Name() + "/"
	}
	return n.Name()
}

func displaySize(n *model.Node) string {
	if n.IsDirectory() {
		return "-"
	}
	return fmt.Sprintf("%d", n.Size())
}
