package parser

import (
	"context"
	"fmt"
	"os"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/csharp"
)

// File is one parsed C# source file.
type File struct {
	Path   string
	Source []byte
	Tree   *sitter.Tree
}

// Root returns the file's compilation_unit node.
func (f *File) Root() *sitter.Node {
	return f.Tree.RootNode()
}

// Text returns the source text covered by a node of this file.
func (f *File) Text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return n.Content(f.Source)
}

// Parser parses C# sources into syntax trees.
type Parser struct {
	inner *sitter.Parser
}

// NewParser creates a parser configured with the C# grammar.
func NewParser() *Parser {
	p := sitter.NewParser()
	p.SetLanguage(csharp.GetLanguage())
	return &Parser{inner: p}
}

// ParseFile reads and parses a single source file.
func (p *Parser) ParseFile(ctx context.Context, path string) (*File, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return p.Parse(ctx, path, source)
}

// Parse parses in-memory source. The path is carried for diagnostics only.
func (p *Parser) Parse(ctx context.Context, path string, source []byte) (*File, error) {
	tree, err := p.inner.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse file %s: %w", path, err)
	}
	return &File{Path: path, Source: source, Tree: tree}, nil
}
