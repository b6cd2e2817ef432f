// Package tree folds a flat stream of walk entries into a namespace tree that
// mirrors directory nesting.
package tree

import (
	"iter"
	"maps"
	"slices"

	"github.com/agentic-research/staticres/internal/walk"
)

// Visibility is the export qualifier of a namespace. The zero value means
// fully exported.
type Visibility int

const (
	Exported Visibility = iota
	Unexported
)

func (v Visibility) String() string {
	switch v {
	case Exported:
		return "exported"
	case Unexported:
		return "unexported"
	default:
		return "unknown"
	}
}

// Node is one namespace level. Children and Files are keyed by the raw path
// segment, before sanitization.
type Node struct {
	Name       string
	Visibility Visibility
	Children   map[string]*Node
	Files      map[string]walk.Entry
}

// Stats counts what a build folded in and what it skipped.
type Stats struct {
	Dirs    int
	Files   int
	Skipped int
}

// Globber produces the entry stream for a pattern.
type Globber interface {
	Glob(pattern string) (iter.Seq2[walk.Entry, error], error)
}

// New returns an empty root namespace.
func New(name string, vis Visibility) *Node {
	return &Node{
		Name:       name,
		Visibility: vis,
		Children:   make(map[string]*Node),
		Files:      make(map[string]walk.Entry),
	}
}

// FromGlob runs pattern through g and folds every entry into a fresh tree.
// Pattern compilation errors are returned as is; per-entry failures are
// skipped and counted.
func FromGlob(g Globber, pattern, rootName string, vis Visibility) (*Node, Stats, error) {
	entries, err := g.Glob(pattern)
	if err != nil {
		return nil, Stats{}, err
	}
	root, stats := Build(entries, rootName, vis)
	return root, stats, nil
}

// Build folds entries into a new tree in arrival order. Entries paired with
// an error are dropped.
func Build(entries iter.Seq2[walk.Entry, error], rootName string, vis Visibility) (*Node, Stats) {
	root := New(rootName, vis)
	var stats Stats
	for e, err := range entries {
		if err != nil {
			stats.Skipped++
			continue
		}
		if !root.Insert(e) {
			stats.Skipped++
			continue
		}
		if e.IsDir {
			stats.Dirs++
		} else {
			stats.Files++
		}
	}
	return root, stats
}

// Insert folds a single entry into the tree rooted at n, creating
// intermediate namespaces on demand. It reports false when the entry had no
// usable final segment or lost to a directory of the same name.
//
// Directories take precedence over files at the same slot: a directory
// replaces a file entry, and a file arriving after a directory is dropped.
// Re-inserting an existing directory keeps its contents.
func (n *Node) Insert(e walk.Entry) bool {
	segments := e.Segments()
	if len(segments) == 0 {
		return false
	}
	dirs, last := segments[:len(segments)-1], segments[len(segments)-1]

	cur := n
	for _, dir := range dirs {
		cur = cur.child(dir)
	}

	if e.IsDir {
		cur.child(last)
		return true
	}
	if _, ok := cur.Children[last]; ok {
		return false
	}
	cur.Files[last] = e
	return true
}

// child returns the namespace for name, creating it if needed.
func (n *Node) child(name string) *Node {
	if c, ok := n.Children[name]; ok {
		return c
	}
	delete(n.Files, name)
	c := New(name, Exported)
	n.Children[name] = c
	return c
}

// Lookup descends through the named children and returns the node found, or
// nil.
func (n *Node) Lookup(segments ...string) *Node {
	cur := n
	for _, seg := range segments {
		next, ok := cur.Children[seg]
		if !ok {
			return nil
		}
		cur = next
	}
	return cur
}

// ChildNames returns the raw names of n's children in sorted order.
func (n *Node) ChildNames() []string {
	return slices.Sorted(maps.Keys(n.Children))
}

// FileNames returns the raw names of n's files in sorted order.
func (n *Node) FileNames() []string {
	return slices.Sorted(maps.Keys(n.Files))
}

// Depth returns the number of namespace levels below n.
func (n *Node) Depth() int {
	d := 0
	for _, c := range n.Children {
		d = max(d, c.Depth()+1)
	}
	return d
}
