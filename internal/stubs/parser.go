// Package stubs reads function declarations out of PHP stub files with
// tree-sitter.
package stubs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	php "github.com/tree-sitter/tree-sitter-php/bindings/go"
)

// ErrSyntax is returned when a stub file does not parse cleanly.
var ErrSyntax = errors.New("stub syntax error")

// File holds the functions declared by one stub file, in source order.
type File struct {
	Path      string
	Functions []*FunctionNode
}

// Parser parses PHP stub files.
type Parser struct {
	language *sitter.Language
}

// NewParser creates a new stub parser.
func NewParser() *Parser {
	return &Parser{
		language: sitter.NewLanguage(php.LanguagePHP()),
	}
}

// ParseFile reads and parses a stub file.
func (p *Parser) ParseFile(ctx context.Context, filePath string) (*File, error) {
	source, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read stub %s: %w", filePath, err)
	}
	return p.Parse(ctx, filePath, source)
}

// Parse parses stub source. filePath is only used for reporting.
func (p *Parser) Parse(ctx context.Context, filePath string, source []byte) (*File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	parser := sitter.NewParser()
	defer parser.Close()

	parser.SetLanguage(p.language)

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Errorf("failed to parse php file: %s", filePath)
	}
	defer tree.Close()

	root := tree.RootNode()
	if bad := firstError(root); bad != nil {
		return nil, fmt.Errorf("%w: %s:%d", ErrSyntax, filePath, startLine(bad))
	}

	file := &File{Path: filePath, Functions: []*FunctionNode{}}
	w := &walker{source: source, file: file}
	w.statements(root, nil)
	return file, nil
}

type walker struct {
	source []byte
	file   *File
}

// statements visits the children of a statement container. A namespace
// definition without a body applies to the siblings that follow it.
func (w *walker) statements(node *sitter.Node, namespace []string) {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(uint(i))
		switch child.Kind() {
		case "namespace_definition":
			name := splitNamespace(nodeText(child.ChildByFieldName("name"), w.source))
			if body := child.ChildByFieldName("body"); body != nil {
				w.statements(body, name)
			} else {
				namespace = name
			}
		case "function_definition":
			w.function(child, namespace)
		case "class_declaration", "interface_declaration", "trait_declaration", "enum_declaration":
			// methods are not functions
		case "comment":
		default:
			w.statements(child, namespace)
		}
	}
}

func (w *walker) function(node *sitter.Node, namespace []string) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}

	fn := &FunctionNode{
		name:      nodeText(nameNode, w.source),
		namespace: namespace,
		params:    []*ParameterNode{},
		File:      w.file.Path,
		Line:      startLine(node),
	}
	fn.doc, fn.hasDoc = w.docComment(node)

	if params := node.ChildByFieldName("parameters"); params != nil {
		for i := 0; i < int(params.NamedChildCount()); i++ {
			if p := w.parameter(params.NamedChild(uint(i))); p != nil {
				fn.params = append(fn.params, p)
			}
		}
	}

	w.file.Functions = append(w.file.Functions, fn)
}

// docComment returns the "/**" comment directly preceding node.
func (w *walker) docComment(node *sitter.Node) (string, bool) {
	prev := node.PrevSibling()
	if prev == nil || prev.Kind() != "comment" {
		return "", false
	}
	text := nodeText(prev, w.source)
	if !strings.HasPrefix(text, "/**") {
		return "", false
	}
	return text, true
}

func (w *walker) parameter(node *sitter.Node) *ParameterNode {
	switch node.Kind() {
	case "simple_parameter", "variadic_parameter", "property_promotion_parameter":
	default:
		return nil
	}

	p := &ParameterNode{
		name:     strings.TrimPrefix(nodeText(node.ChildByFieldName("name"), w.source), "$"),
		typ:      nodeText(node.ChildByFieldName("type"), w.source),
		def:      nodeText(node.ChildByFieldName("default_value"), w.source),
		variadic: node.Kind() == "variadic_parameter",
		byRef:    findChildByType(node, "reference_modifier") != nil,
	}
	return p
}

func splitNamespace(name string) []string {
	var parts []string
	for _, part := range strings.Split(name, `\`) {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}
