// Package render writes a declaration tree as Go source.
//
// The root namespace becomes a package-level variable whose type is a nested
// anonymous struct: one struct field per child namespace and one []byte field
// per file. An init function assigns every file field from its backend
// binding, so with the embed backend the Go compiler reads the bytes at build
// time.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/agentic-research/staticres/internal/emit"
	"github.com/agentic-research/staticres/internal/ident"
	"github.com/agentic-research/staticres/internal/tree"
)

const generator = "staticres"

var ErrNoPackage = errors.New("package name is required")

type Options struct {
	Package string
	Pattern string
	Backend Backend
}

// Output is rendered source. When Formatted is false the source could not be
// formatted and Syntax, if set, locates the problem; the source is still
// returned so the Go compiler reports the failure where it belongs.
type Output struct {
	Source    []byte
	Formatted bool
	Syntax    error
}

// Render produces the Go file for ns. Backend errors are fatal.
func Render(ns *emit.Namespace, opts Options) (*Output, error) {
	if opts.Package == "" {
		return nil, ErrNoPackage
	}
	r := renderer{opts: opts, root: RootIdent(ns)}
	if err := r.bind(ns, []string{r.root}); err != nil {
		return nil, err
	}

	src := r.source(ns)
	formatted, err := FormatGo(src)
	if err != nil {
		return &Output{Source: src, Syntax: syntaxError(src, err)}, nil
	}
	return &Output{Source: formatted, Formatted: true}, nil
}

// RootIdent returns the Go identifier of the root variable.
func RootIdent(ns *emit.Namespace) string {
	if ns.Visibility == tree.Unexported {
		return ident.Unexport(ns.Name)
	}
	return ident.Export(ns.Name)
}

// FieldIdent returns the struct field name for an emitted identifier. All
// namespaces below the root and all constants are exported.
func FieldIdent(name string) string {
	return ident.Export(name)
}

type assignment struct {
	target  string
	binding Binding
	hidden  string
}

type renderer struct {
	opts    Options
	root    string
	assigns []assignment
	embeds  int
}

func (r *renderer) bind(ns *emit.Namespace, path []string) error {
	for _, child := range ns.Namespaces {
		childPath := append(path[:len(path):len(path)], FieldIdent(child.Name))
		if err := r.bind(child, childPath); err != nil {
			return err
		}
	}
	for _, c := range ns.Consts {
		b, err := r.opts.Backend.Bind(c)
		if err != nil {
			return err
		}
		a := assignment{
			target:  strings.Join(append(path[:len(path):len(path)], FieldIdent(c.Name)), "."),
			binding: b,
		}
		if b.EmbedPath != "" {
			a.hidden = fmt.Sprintf("_%s_%d", r.root, r.embeds)
			r.embeds++
		}
		r.assigns = append(r.assigns, a)
	}
	return nil
}

func (r *renderer) source(ns *emit.Namespace) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "// Code generated by %s from %s; DO NOT EDIT.\n\n", generator, strconv.Quote(r.opts.Pattern))
	fmt.Fprintf(&b, "package %s\n\n", r.opts.Package)
	if r.embeds > 0 {
		b.WriteString("import _ \"embed\"\n\n")
	}

	fmt.Fprintf(&b, "// %s holds the files matched by %s.\n", r.root, strconv.Quote(r.opts.Pattern))
	fmt.Fprintf(&b, "var %s struct {\n", r.root)
	writeFields(&b, ns, 1)
	b.WriteString("}\n")

	for _, a := range r.assigns {
		if a.hidden == "" {
			continue
		}
		fmt.Fprintf(&b, "\n//go:embed %s\nvar %s []byte\n", embedPattern(a.binding.EmbedPath), a.hidden)
	}

	if len(r.assigns) > 0 {
		b.WriteString("\nfunc init() {\n")
		for _, a := range r.assigns {
			if a.hidden != "" {
				fmt.Fprintf(&b, "\t%s = %s\n", a.target, a.hidden)
			} else {
				fmt.Fprintf(&b, "\t%s = []byte(%s)\n", a.target, strconv.Quote(string(a.binding.Data)))
			}
		}
		b.WriteString("}\n")
	}
	return b.Bytes()
}

func writeFields(b *bytes.Buffer, ns *emit.Namespace, depth int) {
	indent := strings.Repeat("\t", depth)
	for _, child := range ns.Namespaces {
		fmt.Fprintf(b, "%s%s struct {\n", indent, FieldIdent(child.Name))
		writeFields(b, child, depth+1)
		fmt.Fprintf(b, "%s}\n", indent)
	}
	for _, c := range ns.Consts {
		fmt.Fprintf(b, "%s%s []byte\n", indent, FieldIdent(c.Name))
	}
}

// embedPattern escapes path.Match syntax and quotes names that //go:embed
// would otherwise split.
func embedPattern(p string) string {
	var sb strings.Builder
	for _, r := range p {
		if strings.ContainsRune(`*?[\`, r) {
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	escaped := sb.String()
	if strings.ContainsAny(escaped, " \t\"`") {
		return strconv.Quote(escaped)
	}
	return escaped
}

func syntaxError(src []byte, formatErr error) error {
	if err := Validate(src); err != nil {
		return err
	}
	return formatErr
}
