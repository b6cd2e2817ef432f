package render

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
)

// Diagnostic is a lint finding in generated source.
type Diagnostic struct {
	Message string
	Line    uint32
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("line %d: %s", d.Line+1, d.Message)
}

const fieldListQuery = `(field_declaration_list) @fields`

// Lint checks generated source for problems the renderer cannot rule out on
// its own. It currently reports struct fields declared twice in the same
// struct, which happens when two sibling names sanitize to one identifier.
func Lint(src []byte) ([]Diagnostic, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(golang.GetLanguage())
	tree, err := parser.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return nil, err
	}

	q, err := sitter.NewQuery([]byte(fieldListQuery), golang.GetLanguage())
	if err != nil {
		return nil, err
	}
	qc := sitter.NewQueryCursor()
	qc.Exec(q, tree.RootNode())

	var diags []Diagnostic
	for {
		m, ok := qc.NextMatch()
		if !ok {
			break
		}
		for _, c := range m.Captures {
			diags = append(diags, duplicateFields(c.Node, src)...)
		}
	}
	return diags, nil
}

func duplicateFields(list *sitter.Node, src []byte) []Diagnostic {
	var diags []Diagnostic
	seen := make(map[string]bool)
	for i := 0; i < int(list.NamedChildCount()); i++ {
		field := list.NamedChild(i)
		if field.Type() != "field_declaration" {
			continue
		}
		// field_declaration: name {, name} type
		for j := 0; j < int(field.ChildCount()); j++ {
			if field.FieldNameForChild(j) != "name" {
				continue
			}
			name := field.Child(j)
			id := name.Content(src)
			if seen[id] {
				diags = append(diags, Diagnostic{
					Message: fmt.Sprintf("duplicate field %s", id),
					Line:    name.StartPoint().Row,
				})
			}
			seen[id] = true
		}
	}
	return diags
}
