package treesitter

import (
	"strconv"
	"strings"

	"github.com/panbanda/bigo/pkg/ast"
	"github.com/panbanda/bigo/pkg/parser"
	sitter "github.com/smacker/go-tree-sitter"
)

const maxExprText = 80

// exprFacts accumulates the summary of one expression.
type exprFacts struct {
	idents []string
	seen   map[string]bool
	scale  ast.Scale
	slice  bool
	calls  bool
}

func (f *exprFacts) ident(name string) {
	if name == "" || f.seen[name] {
		return
	}
	f.seen[name] = true
	f.idents = append(f.idents, name)
}

func (f *exprFacts) merge(e ast.Expr) {
	for _, id := range e.Idents {
		f.ident(id)
	}
	f.scale = max(f.scale, e.Scale)
	f.slice = f.slice || e.Slice
	f.calls = f.calls || !e.Constant && len(e.Idents) == 0
}

// expr summarizes n and returns the call, comprehension and conditional
// nodes found inside it in evaluation order.
func (l *lowerer) expr(n *sitter.Node, depth int) (ast.Expr, []*ast.Node) {
	if n == nil {
		return ast.Expr{Constant: true}, nil
	}
	f := &exprFacts{seen: make(map[string]bool)}
	nodes := l.scan(n, depth, f)
	return ast.Expr{
		Text:     l.snippet(n),
		Idents:   f.idents,
		Scale:    f.scale,
		Slice:    f.slice,
		Constant: len(f.idents) == 0 && !f.calls,
	}, nodes
}

func (l *lowerer) exprNodes(n *sitter.Node, depth int) []*ast.Node {
	_, nodes := l.expr(n, depth)
	return nodes
}

func (l *lowerer) scan(n *sitter.Node, depth int, f *exprFacts) []*ast.Node {
	if n == nil || !l.enter(depth) {
		return nil
	}

	switch n.Type() {
	case "identifier":
		f.ident(l.text(n))
		return nil

	case "attribute":
		f.ident(l.text(n))
		return l.scan(n.ChildByFieldName("object"), depth+1, f)

	case "call":
		f.calls = true
		return []*ast.Node{l.call(n, depth, f)}

	case "list_comprehension", "set_comprehension", "dictionary_comprehension", "generator_expression":
		f.calls = true
		return l.comprehension(n, depth, f)

	case "conditional_expression":
		return l.ternary(n, depth, f)

	case "lambda":
		l.warn(n, "lambda", "lambda body is not analyzed")
		return nil

	case "keyword_argument":
		return l.scan(n.ChildByFieldName("value"), depth+1, f)

	case "binary_operator":
		f.scale = max(f.scale, l.binaryScale(n))

	case "subscript":
		for i := range int(n.NamedChildCount()) {
			if n.NamedChild(i).Type() == "slice" {
				f.slice = true
			}
		}
	}

	var out []*ast.Node
	for i := range int(n.NamedChildCount()) {
		out = append(out, l.scan(n.NamedChild(i), depth+1, f)...)
	}
	return out
}

func (l *lowerer) call(n *sitter.Node, depth int, f *exprFacts) *ast.Node {
	c := &ast.Call{}
	var children []*ast.Node

	fn := n.ChildByFieldName("function")
	switch {
	case fn == nil:
	case fn.Type() == "identifier":
		c.Callee = l.text(fn)
	case fn.Type() == "attribute":
		c.Callee = l.text(fn.ChildByFieldName("attribute"))
		obj := fn.ChildByFieldName("object")
		c.Receiver = l.text(obj)
		children = l.scan(obj, depth+1, f)
	default:
		c.Callee = l.snippet(fn)
		children = l.scan(fn, depth+1, f)
	}

	node := l.newNode(ast.KindCall, c.Callee, n)
	node.Call = c

	if c.Receiver == "" && (c.Callee == "eval" || c.Callee == "exec") {
		l.warn(n, c.Callee, "dynamic code passed to "+c.Callee+" is not analyzed")
	}

	if args := n.ChildByFieldName("arguments"); args != nil {
		if args.Type() == "generator_expression" {
			e, nodes := l.expr(args, depth+1)
			f.merge(e)
			c.Args = append(c.Args, e)
			children = append(children, nodes...)
		} else {
			for i := range int(args.NamedChildCount()) {
				arg := args.NamedChild(i)
				if arg.Type() == "comment" {
					continue
				}
				e, nodes := l.expr(arg, depth+1)
				f.merge(e)
				c.Args = append(c.Args, e)
				children = append(children, nodes...)
			}
		}
	}

	node.Children = children
	return node
}

// comprehension lowers each for-clause to a nested loop. The first iterable is
// evaluated once, so its nodes precede the outer loop.
func (l *lowerer) comprehension(n *sitter.Node, depth int, f *exprFacts) []*ast.Node {
	var clauses, filters []*sitter.Node
	for i := range int(n.NamedChildCount()) {
		c := n.NamedChild(i)
		switch c.Type() {
		case "for_in_clause":
			clauses = append(clauses, c)
		case "if_clause":
			filters = append(filters, c)
		}
	}
	body := n.ChildByFieldName("body")
	if len(clauses) == 0 {
		return l.scan(body, depth+1, f)
	}

	lazy := n.Type() == "generator_expression"
	var pre []*ast.Node
	var outer, cur *ast.Node
	for _, cl := range clauses {
		iter, nodes := l.expr(cl.ChildByFieldName("right"), depth+1)
		f.merge(iter)

		loop := l.newNode(ast.KindLoop, "comprehension", cl)
		loop.Loop = &ast.Loop{
			Form:   ast.FormComprehension,
			Target: l.targets(cl.ChildByFieldName("left")),
			Iter:   iter,
			Lazy:   lazy,
		}
		if cur == nil {
			pre = nodes
			outer = loop
		} else {
			cur.Children = append(cur.Children, nodes...)
			cur.Children = append(cur.Children, loop)
		}
		cur = loop
	}

	for _, flt := range filters {
		cur.Children = append(cur.Children, l.scan(flt, depth+1, f)...)
	}
	cur.Children = append(cur.Children, l.scan(body, depth+1, f)...)
	return append(pre, outer)
}

// ternary lowers "a if cond else b" to a conditional with two arms so that
// calls in the two values are not counted on the same execution path.
func (l *lowerer) ternary(n *sitter.Node, depth int, f *exprFacts) []*ast.Node {
	if n.NamedChildCount() < 3 {
		var out []*ast.Node
		for i := range int(n.NamedChildCount()) {
			out = append(out, l.scan(n.NamedChild(i), depth+1, f)...)
		}
		return out
	}

	value, cond, alt := n.NamedChild(0), n.NamedChild(1), n.NamedChild(2)

	node := l.newNode(ast.KindConditional, "if-expression", n)
	node.Children = l.scan(cond, depth+1, f)

	a := l.newNode(ast.KindArm, "if", value)
	a.Children = l.scan(value, depth+1, f)
	b := l.newNode(ast.KindArm, "else", alt)
	b.Children = l.scan(alt, depth+1, f)

	node.Children = append(node.Children, a, b)
	return []*ast.Node{node}
}

func (l *lowerer) binaryScale(n *sitter.Node) ast.Scale {
	op := n.ChildByFieldName("operator")
	if op == nil {
		return ast.ScaleNone
	}
	left := l.intLiteral(n.ChildByFieldName("left"))
	right := l.intLiteral(n.ChildByFieldName("right"))

	switch op.Type() {
	case "//", "/":
		if right >= 2 {
			return ast.ScaleDivide
		}
	case ">>":
		if right >= 1 {
			return ast.ScaleDivide
		}
	case "*":
		if left >= 2 || right >= 2 {
			return ast.ScaleMultiply
		}
	case "<<":
		if right >= 1 {
			return ast.ScaleMultiply
		}
	case "+", "-":
		return ast.ScaleStep
	}
	return ast.ScaleNone
}

// intLiteral returns the value of an integer literal node, or 0.
func (l *lowerer) intLiteral(n *sitter.Node) int64 {
	if n == nil || n.Type() != "integer" {
		return 0
	}
	v, err := strconv.ParseInt(l.text(n), 0, 64)
	if err != nil {
		return 0
	}
	return v
}

func (l *lowerer) snippet(n *sitter.Node) string {
	return parser.Truncate(strings.Join(strings.Fields(l.text(n)), " "), maxExprText)
}
