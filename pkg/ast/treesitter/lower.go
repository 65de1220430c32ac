// Package treesitter lowers a tree-sitter Python parse into the typed ast.Tree.
package treesitter

import (
	"fmt"
	"strings"

	"github.com/panbanda/bigo/pkg/ast"
	"github.com/panbanda/bigo/pkg/parser"
	sitter "github.com/smacker/go-tree-sitter"
)

// Limits bounds the size of a lowered tree. Zero disables a limit.
type Limits struct {
	MaxNodes int
	MaxDepth int
}

// Lower converts a parse result into a typed tree. It fails with a
// *parser.LimitError when the tree exceeds limits.
func Lower(result *parser.ParseResult, limits Limits) (*ast.Tree, error) {
	l := &lowerer{source: result.Source, limits: limits}
	root := result.Tree.RootNode()

	mod := l.newNode(ast.KindModule, "<module>", root)
	mod.Children = l.block(root, 0, false)
	if l.err != nil {
		return nil, l.err
	}

	return &ast.Tree{Root: mod, Warnings: l.warnings, Nodes: l.nodes}, nil
}

type lowerer struct {
	source   []byte
	limits   Limits
	nodes    int
	warnings []ast.Warning
	err      error
}

func (l *lowerer) newNode(kind ast.Kind, name string, n *sitter.Node) *ast.Node {
	l.nodes++
	if l.err == nil && l.limits.MaxNodes > 0 && l.nodes > l.limits.MaxNodes {
		l.err = &parser.LimitError{Limit: parser.LimitNodes, Value: l.nodes, Max: l.limits.MaxNodes}
	}
	return &ast.Node{Kind: kind, Name: name, Pos: pos(n)}
}

// enter reports whether lowering may descend to depth.
func (l *lowerer) enter(depth int) bool {
	if l.err != nil {
		return false
	}
	if l.limits.MaxDepth > 0 && depth > l.limits.MaxDepth {
		l.err = &parser.LimitError{Limit: parser.LimitDepth, Value: depth, Max: l.limits.MaxDepth}
		return false
	}
	return true
}

func (l *lowerer) warn(n *sitter.Node, construct, msg string) {
	l.warnings = append(l.warnings, ast.Warning{
		Kind:      ast.WarnUnsupportedConstruct,
		Construct: construct,
		Pos:       pos(n),
		Message:   msg,
	})
}

func (l *lowerer) text(n *sitter.Node) string {
	return parser.GetNodeText(n, l.source)
}

// block lowers the statements of a block-like node.
func (l *lowerer) block(n *sitter.Node, depth int, inClass bool) []*ast.Node {
	if n == nil {
		return nil
	}
	var out []*ast.Node
	for i := range int(n.NamedChildCount()) {
		out = append(out, l.stmt(n.NamedChild(i), depth+1, inClass)...)
	}
	return out
}

func (l *lowerer) stmt(n *sitter.Node, depth int, inClass bool) []*ast.Node {
	if n == nil || !l.enter(depth) {
		return nil
	}

	switch t := n.Type(); t {
	case "comment", "pass_statement", "continue_statement",
		"import_statement", "import_from_statement", "future_import_statement",
		"global_statement", "nonlocal_statement":
		return nil

	case "block":
		return l.block(n, depth, inClass)

	case "function_definition":
		return []*ast.Node{l.function(n, nil, depth, inClass)}

	case "class_definition":
		return []*ast.Node{l.class(n, depth)}

	case "decorated_definition":
		return l.decorated(n, depth, inClass)

	case "for_statement":
		return l.forLoop(n, depth)

	case "while_statement":
		return l.whileLoop(n, depth)

	case "if_statement":
		return l.conditional(n, depth)

	case "try_statement", "with_statement":
		node := l.newNode(ast.KindBlock, strings.TrimSuffix(t, "_statement"), n)
		node.Children = l.generic(n, depth)
		return []*ast.Node{node}

	case "expression_statement":
		var out []*ast.Node
		for i := range int(n.NamedChildCount()) {
			out = append(out, l.exprStmt(n.NamedChild(i), depth+1)...)
		}
		return out

	case "return_statement":
		node := l.newNode(ast.KindReturn, "return", n)
		node.Children = l.generic(n, depth)
		return []*ast.Node{node}

	case "break_statement":
		return []*ast.Node{l.newNode(ast.KindExit, "break", n)}

	case "raise_statement":
		node := l.newNode(ast.KindExit, "raise", n)
		node.Children = l.generic(n, depth)
		return []*ast.Node{node}

	case "assert_statement", "delete_statement":
		return l.generic(n, depth)

	case "case_clause", "except_clause", "except_group_clause", "finally_clause":
		return l.generic(n, depth)

	default:
		l.warn(n, t, fmt.Sprintf("unsupported construct %s analyzed as a plain block", t))
		node := l.newNode(ast.KindBlock, t, n)
		node.Children = l.generic(n, depth)
		return []*ast.Node{node}
	}
}

// generic lowers the children of a node with no dedicated handling:
// nested statements stay statements, everything else is scanned as an expression.
func (l *lowerer) generic(n *sitter.Node, depth int) []*ast.Node {
	var out []*ast.Node
	for i := range int(n.NamedChildCount()) {
		c := n.NamedChild(i)
		switch t := c.Type(); {
		case t == "block":
			out = append(out, l.block(c, depth+1, false)...)
		case isStatement(t):
			out = append(out, l.stmt(c, depth+1, false)...)
		case isClause(t):
			out = append(out, l.generic(c, depth+1)...)
		default:
			out = append(out, l.exprNodes(c, depth+1)...)
		}
	}
	return out
}

func isStatement(t string) bool {
	return strings.HasSuffix(t, "_statement") || strings.HasSuffix(t, "_definition")
}

func isClause(t string) bool {
	switch t {
	case "except_clause", "except_group_clause", "else_clause", "finally_clause",
		"with_clause", "case_clause":
		return true
	}
	return false
}

func (l *lowerer) function(n *sitter.Node, decorators []string, depth int, inClass bool) *ast.Node {
	node := l.newNode(ast.KindFunction, l.text(n.ChildByFieldName("name")), n)
	node.Func = &ast.Function{
		Params:     l.params(n.ChildByFieldName("parameters")),
		Decorators: decorators,
		Method:     inClass,
		Async:      hasToken(n, "async"),
	}
	node.Children = l.block(n.ChildByFieldName("body"), depth, false)
	return node
}

func (l *lowerer) class(n *sitter.Node, depth int) *ast.Node {
	node := l.newNode(ast.KindClass, l.text(n.ChildByFieldName("name")), n)
	node.Children = l.block(n.ChildByFieldName("body"), depth, true)
	return node
}

func (l *lowerer) decorated(n *sitter.Node, depth int, inClass bool) []*ast.Node {
	var decorators []string
	for i := range int(n.NamedChildCount()) {
		c := n.NamedChild(i)
		if c.Type() == "decorator" {
			decorators = append(decorators, strings.TrimSpace(strings.TrimPrefix(l.text(c), "@")))
		}
	}

	def := n.ChildByFieldName("definition")
	if def == nil {
		return nil
	}
	switch def.Type() {
	case "function_definition":
		return []*ast.Node{l.function(def, decorators, depth, inClass)}
	case "class_definition":
		return []*ast.Node{l.class(def, depth)}
	default:
		return l.stmt(def, depth+1, inClass)
	}
}

func (l *lowerer) params(n *sitter.Node) []string {
	if n == nil {
		return nil
	}
	var names []string
	for i := range int(n.NamedChildCount()) {
		if name := firstIdentifier(n.NamedChild(i)); name != nil {
			names = append(names, l.text(name))
		}
	}
	return names
}

func (l *lowerer) forLoop(n *sitter.Node, depth int) []*ast.Node {
	// The iterable is evaluated once, before the first iteration.
	iter, out := l.expr(n.ChildByFieldName("right"), depth+1)

	loop := l.newNode(ast.KindLoop, "for", n)
	loop.Loop = &ast.Loop{
		Form:   ast.FormFor,
		Target: l.targets(n.ChildByFieldName("left")),
		Iter:   iter,
	}
	loop.Children = l.block(n.ChildByFieldName("body"), depth, false)
	out = append(out, loop)

	if alt := n.ChildByFieldName("alternative"); alt != nil {
		out = append(out, l.block(alt.ChildByFieldName("body"), depth, false)...)
	}
	return out
}

func (l *lowerer) whileLoop(n *sitter.Node, depth int) []*ast.Node {
	cond, condNodes := l.expr(n.ChildByFieldName("condition"), depth+1)

	loop := l.newNode(ast.KindLoop, "while", n)
	loop.Loop = &ast.Loop{
		Form:     ast.FormWhile,
		Iter:     cond,
		Infinite: cond.Text == "True" || cond.Text == "1",
	}
	// The condition is re-evaluated on every iteration.
	loop.Children = append(condNodes, l.block(n.ChildByFieldName("body"), depth, false)...)

	out := []*ast.Node{loop}
	if alt := n.ChildByFieldName("alternative"); alt != nil {
		out = append(out, l.block(alt.ChildByFieldName("body"), depth, false)...)
	}
	return out
}

func (l *lowerer) conditional(n *sitter.Node, depth int) []*ast.Node {
	cond := l.newNode(ast.KindConditional, "if", n)
	cond.Children = l.exprNodes(n.ChildByFieldName("condition"), depth+1)

	arm := l.newNode(ast.KindArm, "if", n)
	arm.Children = l.block(n.ChildByFieldName("consequence"), depth, false)
	cond.Children = append(cond.Children, arm)

	for i := range int(n.NamedChildCount()) {
		c := n.NamedChild(i)
		switch c.Type() {
		case "elif_clause":
			a := l.newNode(ast.KindArm, "elif", c)
			// An elif condition only runs when the earlier arms did not.
			a.Children = l.exprNodes(c.ChildByFieldName("condition"), depth+1)
			a.Children = append(a.Children, l.block(c.ChildByFieldName("consequence"), depth, false)...)
			cond.Children = append(cond.Children, a)
		case "else_clause":
			a := l.newNode(ast.KindArm, "else", c)
			a.Children = l.block(c.ChildByFieldName("body"), depth, false)
			cond.Children = append(cond.Children, a)
		}
	}
	return []*ast.Node{cond}
}

func (l *lowerer) exprStmt(n *sitter.Node, depth int) []*ast.Node {
	if !l.enter(depth) {
		return nil
	}
	switch n.Type() {
	case "assignment":
		return l.assignment(n, depth)
	case "augmented_assignment":
		return l.augmented(n, depth)
	default:
		return l.exprNodes(n, depth)
	}
}

func (l *lowerer) assignment(n *sitter.Node, depth int) []*ast.Node {
	left := n.ChildByFieldName("left")
	right := n.ChildByFieldName("right")
	if right == nil {
		// Bare annotation such as "x: int".
		return nil
	}

	// Chained assignment: a = b = value.
	if right.Type() == "assignment" {
		out := l.assignment(right, depth+1)
		if len(out) > 0 && out[len(out)-1].Assign != nil {
			node := l.newNode(ast.KindAssign, "=", n)
			node.Assign = &ast.Assign{Targets: l.targets(left), Op: "=", Value: out[len(out)-1].Assign.Value}
			out = append(out, node)
		}
		return out
	}

	// Pair tuple targets with tuple values so each target keeps its own value.
	if isSequence(left) && isSequence(right) && left.NamedChildCount() == right.NamedChildCount() {
		var out []*ast.Node
		for i := range int(left.NamedChildCount()) {
			out = append(out, l.assign(n, left.NamedChild(i), right.NamedChild(i), "=", depth))
		}
		return out
	}

	return []*ast.Node{l.assign(n, left, right, "=", depth)}
}

func (l *lowerer) augmented(n *sitter.Node, depth int) []*ast.Node {
	op := "="
	if o := n.ChildByFieldName("operator"); o != nil {
		op = o.Type()
	}
	node := l.assign(n, n.ChildByFieldName("left"), n.ChildByFieldName("right"), op, depth)

	switch op {
	case "//=", "/=", ">>=":
		node.Assign.Value.Scale = ast.ScaleDivide
	case "*=", "<<=":
		node.Assign.Value.Scale = max(node.Assign.Value.Scale, ast.ScaleMultiply)
	case "+=", "-=":
		node.Assign.Value.Scale = max(node.Assign.Value.Scale, ast.ScaleStep)
	}
	return []*ast.Node{node}
}

func (l *lowerer) assign(at, left, right *sitter.Node, op string, depth int) *ast.Node {
	value, calls := l.expr(right, depth+1)
	node := l.newNode(ast.KindAssign, op, at)
	node.Assign = &ast.Assign{Targets: l.targets(left), Op: op, Value: value}
	node.Children = calls
	return node
}

// targets returns the names bound by an assignment or loop target.
// Subscript stores do not rebind a name and are skipped.
func (l *lowerer) targets(n *sitter.Node) []string {
	if n == nil {
		return nil
	}
	switch n.Type() {
	case "identifier", "attribute":
		return []string{l.text(n)}
	case "subscript":
		return nil
	}
	var names []string
	for i := range int(n.NamedChildCount()) {
		names = append(names, l.targets(n.NamedChild(i))...)
	}
	return names
}

func isSequence(n *sitter.Node) bool {
	if n == nil {
		return false
	}
	switch n.Type() {
	case "pattern_list", "tuple_pattern", "expression_list", "tuple":
		return true
	}
	return false
}

func hasToken(n *sitter.Node, token string) bool {
	for i := range int(n.ChildCount()) {
		if n.Child(i).Type() == token {
			return true
		}
	}
	return false
}

func firstIdentifier(n *sitter.Node) *sitter.Node {
	if n == nil {
		return nil
	}
	if n.Type() == "identifier" {
		return n
	}
	for i := range int(n.NamedChildCount()) {
		if id := firstIdentifier(n.NamedChild(i)); id != nil {
			return id
		}
	}
	return nil
}

func pos(n *sitter.Node) ast.Position {
	p := n.StartPoint()
	return ast.Position{Line: int(p.Row) + 1, Column: int(p.Column) + 1}
}
