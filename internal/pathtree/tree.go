package pathtree

import (
	"sort"
	"strings"
)

// Node is one entry in the rendered tree: a file, or a folder with children.
type Node struct {
	// Path is the full slash-delimited path of the node.
	Path string
	// Name is the last path segment.
	Name string
	// IsDir marks folder nodes. Folder nodes carry children; file nodes never do.
	IsDir bool
	// Children of a folder, ordered files-first then folders, each alphabetical.
	Children []Node
}

// BuildTree groups a flat path list into a forest. A node is a folder iff
// other paths nest under it. Sibling order is fixed for UI determinism:
// files first, then folders, each group alphabetical by name.
func BuildTree(paths []string) []Node {
	return buildLevel("", paths)
}

func buildLevel(prefix string, paths []string) []Node {
	// Group paths by their first segment below prefix.
	type group struct {
		name     string
		leaf     bool
		children []string
	}
	byName := map[string]*group{}
	order := []string{}

	for _, p := range paths {
		rest := p
		if prefix != "" {
			rest = strings.TrimPrefix(p, prefix+"/")
		}
		name, tail, nested := strings.Cut(rest, "/")
		g, ok := byName[name]
		if !ok {
			g = &group{name: name}
			byName[name] = g
			order = append(order, name)
		}
		if nested {
			g.children = append(g.children, tail)
		} else {
			g.leaf = true
		}
	}

	var files, folders []Node
	sort.Strings(order)
	for _, name := range order {
		g := byName[name]
		path := name
		if prefix != "" {
			path = prefix + "/" + name
		}
		if len(g.children) > 0 {
			childPaths := make([]string, len(g.children))
			for i, c := range g.children {
				childPaths[i] = path + "/" + c
			}
			node := Node{Path: path, Name: name, IsDir: true, Children: buildLevel(path, childPaths)}
			folders = append(folders, node)
			// A path that is both a leaf and a prefix of others would mean a
			// file and folder share a name; the set invariants forbid it, but
			// if it happens the file rendering is dropped in favor of the folder.
			continue
		}
		files = append(files, Node{Path: path, Name: name})
	}

	return append(files, folders...)
}
