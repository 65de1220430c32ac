package parser

import (
	"bytes"

	sitter "github.com/smacker/go-tree-sitter"
)

// The Python grammar's indentation scanner accepts some layouts the
// language rejects: empty suites, indented top-level statements and
// siblings at mismatched columns. checkLayout reports the first of them.

// layoutExempt are named nodes that may sit at any column.
var layoutExempt = map[string]bool{
	"comment":           true,
	"line_continuation": true,
}

// checkLayout returns the earliest indentation error in document order, or
// nil when the layout is valid.
func checkLayout(root *sitter.Node, source []byte) *ParseError {
	var first *ParseError
	report := func(pe *ParseError) {
		if first == nil || pe.Line < first.Line || (pe.Line == first.Line && pe.Column < first.Column) {
			first = pe
		}
	}

	Walk(root, func(n *sitter.Node, nodeType string) bool {
		switch nodeType {
		case "module":
			if pe := checkColumns(statements(n), 0); pe != nil {
				report(pe)
			}
		case "block":
			stmts := statements(n)
			if len(stmts) == 0 {
				report(emptyBlock(n, source))
				return false
			}
			if pe := checkColumns(stmts, int(stmts[0].StartPoint().Column)); pe != nil {
				report(pe)
			}
		}
		return true
	})
	return first
}

// statements returns the named children of a suite that carry layout.
func statements(n *sitter.Node) []*sitter.Node {
	var out []*sitter.Node
	for i := range int(n.NamedChildCount()) {
		c := n.NamedChild(i)
		if !layoutExempt[c.Type()] {
			out = append(out, c)
		}
	}
	return out
}

// checkColumns requires every statement that begins a line to start at col.
// Statements after a semicolon share their line with a predecessor and are
// skipped.
func checkColumns(stmts []*sitter.Node, col int) *ParseError {
	for i, s := range stmts {
		start := s.StartPoint()
		if i > 0 && stmts[i-1].EndPoint().Row == start.Row {
			continue
		}
		got := int(start.Column)
		if got == col {
			continue
		}
		msg := "unexpected indent"
		if got < col {
			msg = "unindent does not match any outer indentation level"
		}
		return &ParseError{Line: int(start.Row) + 1, Column: got + 1, Message: msg}
	}
	return nil
}

// emptyBlock locates a suite with no statements at the first token after
// the header's colon, or on the line after the header at end of input.
func emptyBlock(block *sitter.Node, source []byte) *ParseError {
	from := block.StartByte()
	headerRow := block.StartPoint().Row
	if parent := block.Parent(); parent != nil {
		for i := range int(parent.ChildCount()) {
			c := parent.Child(i)
			if c.EndByte() > block.StartByte() {
				break
			}
			if c.Type() == ":" {
				from = c.EndByte()
				headerRow = c.StartPoint().Row
			}
		}
	}

	pe := &ParseError{Line: int(headerRow) + 2, Column: 1, Message: "expected an indented block"}
	if off := nextToken(source, int(from)); off >= 0 {
		pe.Line, pe.Column = position(source, off)
	}
	return pe
}

// nextToken returns the offset of the first byte at or after from that is
// neither whitespace nor part of a comment, or -1 at end of input.
func nextToken(source []byte, from int) int {
	for i := from; i < len(source); i++ {
		switch source[i] {
		case ' ', '\t', '\r', '\n', '\f':
			continue
		case '#':
			j := bytes.IndexByte(source[i:], '\n')
			if j < 0 {
				return -1
			}
			i += j
			continue
		}
		return i
	}
	return -1
}

// position converts a byte offset to a 1-based line and column.
func position(source []byte, off int) (line, col int) {
	line = bytes.Count(source[:off], []byte{'\n'}) + 1
	col = off - (bytes.LastIndexByte(source[:off], '\n') + 1) + 1
	return line, col
}
