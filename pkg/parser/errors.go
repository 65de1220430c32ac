package parser

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
)

// ParseError reports malformed source at a 1-based line and column.
type ParseError struct {
	Line    int
	Column  int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("syntax error at line %d, column %d: %s", e.Line, e.Column, e.Message)
}

// Limit names a resource ceiling.
type Limit string

const (
	LimitSourceBytes Limit = "source_bytes"
	LimitParseTime   Limit = "parse_time_ms"
	LimitNodes       Limit = "nodes"
	LimitDepth       Limit = "depth"
)

// LimitError reports input that is too large or too complex to analyze.
// Timeout is set only for LimitParseTime.
type LimitError struct {
	Limit   Limit
	Value   int
	Max     int
	Timeout time.Duration
}

func (e *LimitError) Error() string {
	if e.Limit == LimitParseTime {
		return fmt.Sprintf("resource limit exceeded: parsing took longer than %v", e.Timeout)
	}
	return fmt.Sprintf("resource limit exceeded: %s %d exceeds maximum %d", e.Limit, e.Value, e.Max)
}

// snippetLen caps how much offending text is quoted in a diagnostic.
const snippetLen = 20

// diagnose locates the first ERROR or MISSING node in document order.
func diagnose(root *sitter.Node, source []byte) *ParseError {
	var bad *sitter.Node
	Walk(root, func(n *sitter.Node, nodeType string) bool {
		if bad != nil {
			return false
		}
		if n.IsMissing() || nodeType == "ERROR" {
			bad = n
			return false
		}
		return n.HasError()
	})

	if bad == nil {
		return &ParseError{Line: 1, Column: 1, Message: "invalid syntax"}
	}

	pos := bad.StartPoint()
	pe := &ParseError{
		Line:   int(pos.Row) + 1,
		Column: int(pos.Column) + 1,
	}

	if bad.IsMissing() {
		pe.Message = fmt.Sprintf("missing %q", bad.Type())
		return pe
	}

	text := strings.TrimSpace(GetNodeText(bad, source))
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	text = Truncate(text, snippetLen)
	if text == "" {
		pe.Message = "invalid syntax"
	} else {
		pe.Message = fmt.Sprintf("invalid syntax near %q", text)
	}
	return pe
}

// Truncate shortens s to at most n bytes plus an ellipsis without splitting
// a UTF-8 sequence.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
