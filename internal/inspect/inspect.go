// Package inspect presents a bundle's namespace tree for humans (a rendered
// tree) and tools (JSON, optionally filtered with JSONPath).
package inspect

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"
	"github.com/ohler55/ojg"
	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"

	"github.com/agentic-research/staticres/api"
	"github.com/agentic-research/staticres/internal/emit"
	"github.com/agentic-research/staticres/internal/render"
)

var (
	namespaceStyle = lipgloss.NewStyle().Bold(true)
	pathStyle      = lipgloss.NewStyle().Faint(true)
)

// Manifest converts an emitted namespace into its JSON-friendly shape.
func Manifest(ns *emit.Namespace, pattern string) api.Manifest {
	root := namespace(ns, render.RootIdent(ns))
	return api.Manifest{Version: api.ManifestVersion, Pattern: pattern, Root: root}
}

func namespace(ns *emit.Namespace, id string) api.Namespace {
	out := api.Namespace{Name: ns.Raw, Ident: id}
	for _, child := range ns.Namespaces {
		out.Namespaces = append(out.Namespaces, namespace(child, render.FieldIdent(child.Name)))
	}
	for _, c := range ns.Consts {
		out.Consts = append(out.Consts, api.Const{
			Name:      c.Raw,
			Ident:     render.FieldIdent(c.Name),
			Path:      c.Path,
			Canonical: c.Canonical,
		})
	}
	return out
}

// Tree renders the manifest as an indented tree of Go identifiers.
func Tree(m api.Manifest) string {
	t := subtree(m.Root)
	return t.String()
}

func subtree(ns api.Namespace) *tree.Tree {
	t := tree.Root(namespaceStyle.Render(ns.Ident)).Enumerator(tree.RoundedEnumerator)
	for _, child := range ns.Namespaces {
		t.Child(subtree(child))
	}
	for _, c := range ns.Consts {
		t.Child(c.Ident + " " + pathStyle.Render("<- "+c.Path))
	}
	return t
}

// JSON encodes the manifest. A non-empty query is evaluated as JSONPath
// against the manifest and the list of matches is encoded instead.
func JSON(m api.Manifest, query string) (string, error) {
	var data any = generic(m)
	if query != "" {
		x, err := jp.ParseString(query)
		if err != nil {
			return "", fmt.Errorf("invalid jsonpath '%s': %w", query, err)
		}
		data = x.Get(data)
	}
	return oj.JSON(data, &ojg.Options{Indent: 2, Sort: true}), nil
}

func generic(m api.Manifest) map[string]any {
	return map[string]any{
		"version": m.Version,
		"pattern": m.Pattern,
		"root":    genericNamespace(m.Root),
	}
}

func genericNamespace(ns api.Namespace) map[string]any {
	namespaces := make([]any, 0, len(ns.Namespaces))
	for _, child := range ns.Namespaces {
		namespaces = append(namespaces, genericNamespace(child))
	}
	consts := make([]any, 0, len(ns.Consts))
	for _, c := range ns.Consts {
		consts = append(consts, map[string]any{
			"name":      c.Name,
			"ident":     c.Ident,
			"path":      c.Path,
			"canonical": c.Canonical,
		})
	}
	return map[string]any{
		"name":       ns.Name,
		"ident":      ns.Ident,
		"namespaces": namespaces,
		"consts":     consts,
	}
}
