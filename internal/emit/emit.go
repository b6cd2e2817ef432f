// Package emit turns a namespace tree into a declaration tree that a
// language backend can render. Emission resolves every file to its canonical
// path but never reads file contents.
package emit

import (
	"errors"
	"fmt"

	"github.com/agentic-research/staticres/internal/ident"
	"github.com/agentic-research/staticres/internal/tree"
)

var (
	ErrPathResolution      = errors.New("path resolution failure")
	ErrIdentifierCollision = errors.New("identifier collision")
)

// Resolver canonicalizes walker paths to absolute host paths.
type Resolver interface {
	Canonicalize(path string) (string, error)
}

// Namespace is a nested declaration. Namespaces and Consts are sorted by
// their raw names.
type Namespace struct {
	Name       string
	Raw        string
	Visibility tree.Visibility
	Namespaces []*Namespace
	Consts     []Const
}

// Const binds an identifier to the bytes of the file at Canonical.
type Const struct {
	Name      string
	Raw       string
	Path      string
	Canonical string
}

type Options struct {
	// Strict rejects siblings that map to the same identifier instead of
	// leaving the duplicate for the compiler to report.
	Strict bool
}

// Emit walks root depth-first. It fails if any file cannot be resolved; no
// partial declaration is returned.
func Emit(root *tree.Node, r Resolver, opts Options) (*Namespace, error) {
	e := emitter{resolver: r, opts: opts}
	return e.namespace(root, nil)
}

type emitter struct {
	resolver Resolver
	opts     Options
}

func (e *emitter) namespace(n *tree.Node, parents []string) (*Namespace, error) {
	ns := &Namespace{
		Name:       ident.Sanitize(n.Name),
		Raw:        n.Name,
		Visibility: n.Visibility,
	}
	seen := make(map[string]string)
	path := append(parents[:len(parents):len(parents)], ns.Name)

	for _, name := range n.ChildNames() {
		child, err := e.namespace(n.Children[name], path)
		if err != nil {
			return nil, err
		}
		if err := e.claim(seen, child.Name, name, path); err != nil {
			return nil, err
		}
		ns.Namespaces = append(ns.Namespaces, child)
	}

	for _, name := range n.FileNames() {
		entry := n.Files[name]
		canonical, err := e.resolver.Canonicalize(entry.Path)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrPathResolution, entry.Path, err)
		}
		c := Const{
			Name:      ident.Sanitize(name),
			Raw:       name,
			Path:      entry.Path,
			Canonical: canonical,
		}
		if err := e.claim(seen, c.Name, name, path); err != nil {
			return nil, err
		}
		ns.Consts = append(ns.Consts, c)
	}
	return ns, nil
}

func (e *emitter) claim(seen map[string]string, id, raw string, path []string) error {
	if !e.opts.Strict {
		return nil
	}
	key := ident.Export(id)
	if prev, ok := seen[key]; ok {
		return fmt.Errorf("%w: %q and %q both map to %s in %v", ErrIdentifierCollision, prev, raw, key, path)
	}
	seen[key] = raw
	return nil
}

// Count returns the total number of namespaces below ns and the number of
// constants in its whole subtree.
func (ns *Namespace) Count() (namespaces, consts int) {
	consts = len(ns.Consts)
	for _, child := range ns.Namespaces {
		n, c := child.Count()
		namespaces += n + 1
		consts += c
	}
	return namespaces, consts
}

// Walk calls fn for every constant in depth-first order with the identifier
// path of its enclosing namespaces, root first.
func (ns *Namespace) Walk(fn func(path []string, c Const) error) error {
	return ns.walk(nil, fn)
}

func (ns *Namespace) walk(parents []string, fn func([]string, Const) error) error {
	path := append(parents[:len(parents):len(parents)], ns.Name)
	for _, child := range ns.Namespaces {
		if err := child.walk(path, fn); err != nil {
			return err
		}
	}
	for _, c := range ns.Consts {
		if err := fn(path, c); err != nil {
			return err
		}
	}
	return nil
}
