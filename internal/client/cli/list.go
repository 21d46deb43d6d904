package cli

import (
	"context"
	"strings"

	"github.com/fatih/color"

	"github.com/avolkovs/keepsake/internal/pathtree"
)

var folderFn = color.New(color.FgCyan).PrintlnFunc()

// List prints the vault hierarchy with folders highlighted.
func (a *App) List(ctx context.Context) error {
	printNodes(a.sync.Tree(), 0)
	return nil
}

func printNodes(nodes []pathtree.Node, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, n := range nodes {
		if n.IsDir {
			folderFn(indent + n.Name + "/")
			printNodes(n.Children, depth+1)
		} else {
			printlnFn(indent + n.Name)
		}
	}
}
