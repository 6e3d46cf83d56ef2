package ingest

import (
	"sort"
	"strings"
)

// treeNode is one entry in the rendered directory structure.
type treeNode struct {
	name     string
	children map[string]*treeNode
}

func newTreeNode(name string) *treeNode {
	return &treeNode{name: name, children: make(map[string]*treeNode)}
}

func (n *treeNode) child(name string) *treeNode {
	if c, ok := n.children[name]; ok {
		return c
	}
	c := newTreeNode(name)
	n.children[name] = c
	return c
}

func (n *treeNode) isDir() bool {
	return len(n.children) > 0
}

// sortedChildren returns children with directories first, each group
// alphabetical.
func (n *treeNode) sortedChildren() []*treeNode {
	nodes := make([]*treeNode, 0, len(n.children))
	for _, c := range n.children {
		nodes = append(nodes, c)
	}
	sort.Slice(nodes, func(i, j int) bool {
		if nodes[i].isDir() != nodes[j].isDir() {
			return nodes[i].isDir()
		}
		return nodes[i].name < nodes[j].name
	})
	return nodes
}

// renderTree renders the file list as a directory structure with box
// drawing connectors:
//
//	Directory structure:
//	└── myrepo/
//	    ├── cmd/
//	    │   └── main.go
//	    └── README.md
//
// Paths are slash-separated and relative to the repository root.
func renderTree(rootName string, paths []string) string {
	root := newTreeNode(rootName)
	for _, p := range paths {
		node := root
		for _, part := range strings.Split(p, "/") {
			node = node.child(part)
		}
	}

	var b strings.Builder
	b.WriteString("Directory structure:\n")
	b.WriteString("└── " + rootName + "/\n")
	renderChildren(&b, root, "    ")
	return b.String()
}

func renderChildren(b *strings.Builder, node *treeNode, indent string) {
	children := node.sortedChildren()
	for i, child := range children {
		connector := "├── "
		childIndent := indent + "│   "
		if i == len(children)-1 {
			connector = "└── "
			childIndent = indent + "    "
		}

		name := child.name
		if child.isDir() {
			name += "/"
		}
		b.WriteString(indent + connector + name + "\n")

		if child.isDir() {
			renderChildren(b, child, childIndent)
		}
	}
}
