package render

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
)

// SyntaxError locates a syntax error in generated source.
type SyntaxError struct {
	Line    uint32 // 0-indexed
	Column  uint32 // 0-indexed
	Snippet string
}

func (e *SyntaxError) Error() string {
	if e.Snippet == "" {
		return fmt.Sprintf("%d:%d: syntax error", e.Line+1, e.Column+1)
	}
	return fmt.Sprintf("%d:%d: syntax error near %q", e.Line+1, e.Column+1, e.Snippet)
}

// Validate parses Go source with tree-sitter and returns the first syntax
// error, or nil if the tree is clean.
func Validate(src []byte) error {
	parser := sitter.NewParser()
	parser.SetLanguage(golang.GetLanguage())

	tree, err := parser.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return fmt.Errorf("tree-sitter parse failed: %w", err)
	}
	root := tree.RootNode()
	if root == nil {
		return fmt.Errorf("tree-sitter returned nil root")
	}
	if !root.HasError() {
		return nil
	}

	errNode := findFirstError(root)
	if errNode == nil {
		return &SyntaxError{}
	}
	snippet := errNode.Content(src)
	if len(snippet) > 40 {
		snippet = snippet[:40]
	}
	return &SyntaxError{
		Line:    errNode.StartPoint().Row,
		Column:  errNode.StartPoint().Column,
		Snippet: snippet,
	}
}

// findFirstError does a depth-first search for the first ERROR or MISSING
// node.
func findFirstError(node *sitter.Node) *sitter.Node {
	if node.IsError() || node.IsMissing() {
		return node
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.HasError() || child.IsError() || child.IsMissing() {
			if found := findFirstError(child); found != nil {
				return found
			}
		}
	}
	return nil
}
