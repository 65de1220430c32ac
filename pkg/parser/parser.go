package parser

import (
	"context"
	"errors"
	"fmt"
	"time"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// Language represents the grammar a snippet is parsed with.
type Language string

const LangPython Language = "python"

// Default ceilings applied when no option overrides them.
const (
	DefaultMaxSourceBytes = 64 * 1024
	DefaultTimeout        = 2 * time.Second
)

// Parser wraps tree-sitter for Python parsing.
// A Parser is not safe for concurrent use; create one per goroutine.
type Parser struct {
	parser         *sitter.Parser
	maxSourceBytes int
	timeout        time.Duration
}

// ParseResult contains the parsed concrete syntax tree and its source.
type ParseResult struct {
	Tree     *sitter.Tree
	Language Language
	Source   []byte
}

// Option is a functional option for configuring Parser.
type Option func(*Parser)

// WithMaxSourceBytes rejects sources larger than n bytes (0 = no limit).
func WithMaxSourceBytes(n int) Option {
	return func(p *Parser) {
		p.maxSourceBytes = n
	}
}

// WithTimeout bounds the time tree-sitter may spend on one parse (0 = no limit).
func WithTimeout(d time.Duration) Option {
	return func(p *Parser) {
		p.timeout = d
	}
}

// New creates a new parser instance.
func New(opts ...Option) *Parser {
	p := &Parser{
		parser:         sitter.NewParser(),
		maxSourceBytes: DefaultMaxSourceBytes,
		timeout:        DefaultTimeout,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.parser.SetLanguage(python.GetLanguage())
	return p
}

// Parse parses Python source. Malformed input yields a *ParseError and
// oversized or slow input a *LimitError.
func (p *Parser) Parse(ctx context.Context, source []byte) (*ParseResult, error) {
	if p.maxSourceBytes > 0 && len(source) > p.maxSourceBytes {
		return nil, &LimitError{Limit: LimitSourceBytes, Value: len(source), Max: p.maxSourceBytes}
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	tree, err := p.parser.ParseCtx(ctx, nil, source)
	if err != nil {
		if ctx.Err() != nil {
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				ms := int(p.timeout.Milliseconds())
				return nil, &LimitError{Limit: LimitParseTime, Value: ms, Max: ms, Timeout: p.timeout}
			}
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("failed to parse: %w", err)
	}

	root := tree.RootNode()
	var pe *ParseError
	if root.HasError() {
		pe = diagnose(root, source)
	} else {
		pe = checkLayout(root, source)
	}
	if pe != nil {
		tree.Close()
		return nil, pe
	}

	return &ParseResult{
		Tree:     tree,
		Language: LangPython,
		Source:   source,
	}, nil
}

// Close releases parser resources.
func (p *Parser) Close() {
	p.parser.Close()
}

// Visitor is called for each node with its type read once. Returning false
// skips the node's children.
type Visitor func(node *sitter.Node, nodeType string) bool

// Walk traverses the tree depth-first in document order.
func Walk(node *sitter.Node, visit Visitor) {
	if node == nil {
		return
	}
	if !visit(node, node.Type()) {
		return
	}
	for i := range int(node.ChildCount()) {
		Walk(node.Child(i), visit)
	}
}

// GetNodeText extracts the source text for a node.
// Returns empty string if node is nil or byte offsets are out of bounds.
func GetNodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	start := node.StartByte()
	end := node.EndByte()
	if start > end || end > uint32(len(source)) {
		return ""
	}
	return string(source[start:end])
}
