// Package extract computes structural metrics and per-function complexity
// facts from a typed syntax tree in a single traversal.
package extract

import (
	"fmt"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/panbanda/bigo/pkg/ast"
)

// Methods that grow the receiving collection.
var growthMethods = map[string]bool{
	"append": true, "extend": true, "add": true, "insert": true,
	"appendleft": true, "extendleft": true, "update": true,
	"setdefault": true, "push": true, "put": true,
}

// Methods that consume the receiving collection, advancing a loop over it.
var consumeMethods = map[string]bool{
	"pop": true, "popleft": true, "popitem": true, "remove": true,
	"discard": true, "get": true, "clear": true, "get_nowait": true,
}

// frame is the traversal state for one node. It is passed by value so that
// every level sees its own counters.
type frame struct {
	fn     *FunctionProfile
	region *Region
	loop   *LoopFact
	depth  int // nesting counter: loops plus branches holding a self-call
	linear int // enclosing input-bounded loops in the current function
	comp   int // enclosing input-bounded comprehension clauses
}

type walker struct {
	profile *Profile
	seen    map[string]bool
}

// Extract walks tree once and returns its profile.
func Extract(tree *ast.Tree) *Profile {
	p := &Profile{
		Module:   newFunctionProfile(ModuleName, 1, nil),
		Warnings: tree.Warnings,
		byName:   make(map[string]*FunctionProfile),
		ids:      make(map[string]uint32),
		cyclic:   roaring.New(),
	}
	p.Metrics.Functions = []string{}

	w := &walker{profile: p, seen: make(map[string]bool)}
	root := frame{fn: p.Module, region: &p.Module.Body}
	for _, c := range tree.Root.Children {
		w.walk(c, root)
	}

	p.link()
	return p
}

func newFunctionProfile(name string, line int, params []string) *FunctionProfile {
	return &FunctionProfile{
		Name:     name,
		Line:     line,
		params:   params,
		divisors: make(map[string]bool),
	}
}

func (w *walker) bump(depth int) {
	if depth > w.profile.Metrics.NestedDepth {
		w.profile.Metrics.NestedDepth = depth
	}
}

func (w *walker) walk(n *ast.Node, f frame) {
	switch n.Kind {
	case ast.KindFunction:
		w.function(n, f)
		return

	case ast.KindLoop:
		w.loop(n, f)
		return

	case ast.KindConditional:
		for _, c := range n.Children {
			if c.Kind == ast.KindArm && f.fn != w.profile.Module && containsSelfCall(c, f.fn) {
				g := f
				g.depth++
				w.bump(g.depth)
				w.walk(c, g)
				continue
			}
			w.walk(c, f)
		}
		return

	case ast.KindCall:
		w.call(n, f)

	case ast.KindAssign:
		w.assign(n, f)

	case ast.KindReturn:
		if f.loop != nil {
			f.loop.EarlyExit = true
			f.fn.EarlyExits++
		}

	case ast.KindExit:
		if f.loop != nil {
			f.loop.EarlyExit = true
			f.fn.EarlyExits++
		}
	}

	for _, c := range n.Children {
		w.walk(c, f)
	}
}

func (w *walker) function(n *ast.Node, f frame) {
	var params, decorators []string
	method := false
	if n.Func != nil {
		params = n.Func.Params
		decorators = n.Func.Decorators
		method = n.Func.Method
	}

	p := newFunctionProfile(n.Name, n.Pos.Line, params)
	p.Method = method
	p.Memoized = memoized(decorators, params)
	w.profile.Functions = append(w.profile.Functions, p)
	w.profile.byName[n.Name] = p

	if !w.seen[n.Name] {
		w.seen[n.Name] = true
		w.profile.Metrics.Functions = append(w.profile.Metrics.Functions, n.Name)
	}

	g := frame{fn: p, region: &p.Body, depth: f.depth}
	for _, c := range n.Children {
		w.walk(c, g)
	}

	cont, term, _ := pathCalls(n.Children, p)
	p.Branching = max(cont, term)
	p.Shrink, p.ShrinkEvidence = shrinkOf(p)
	for _, args := range p.selfArgs {
		for _, a := range args {
			if a.Slice {
				p.SlicedArgs = true
			}
		}
	}
}

func (w *walker) loop(n *ast.Node, f frame) {
	w.profile.Metrics.Loops++

	lf := &LoopFact{Line: n.Pos.Line}
	if n.Loop != nil {
		lf.Form = n.Loop.Form
		lf.Lazy = n.Loop.Lazy
	}
	lf.Bound, lf.Evidence = loopBound(n)
	f.region.Loops = append(f.region.Loops, lf)

	g := f
	g.depth++
	w.bump(g.depth)
	g.region = &lf.Body
	g.loop = lf
	if lf.Bound == BoundLinear || lf.Bound == BoundUnknown {
		g.linear++
	}

	if lf.Form == ast.FormComprehension {
		if lf.Bound == BoundLinear || lf.Bound == BoundUnknown {
			g.comp++
		}
		if !lf.Lazy {
			f.fn.Growth = max(f.fn.Growth, g.comp)
		}
	} else {
		g.comp = 0
	}

	for _, c := range n.Children {
		w.walk(c, g)
	}
}

func (w *walker) call(n *ast.Node, f frame) {
	c := n.Call
	if c == nil {
		return
	}

	if isSelfCall(c, f.fn, w.profile.Module) {
		w.profile.Metrics.RecursiveCalls++
		f.fn.SelfCalls++
		f.fn.selfArgs = append(f.fn.selfArgs, c.Args)
		if f.loop != nil {
			f.fn.SelfCallInLoop = true
		}
		return
	}

	if c.Receiver != "" && growthMethods[c.Callee] && f.linear > 0 {
		f.fn.Growth = max(f.fn.Growth, f.linear)
	}

	if c.Receiver == "" || c.Receiver == "self" || c.Receiver == "cls" {
		f.region.Calls = append(f.region.Calls, CallSite{Callee: c.Callee, Line: n.Pos.Line})
	}
}

func (w *walker) assign(n *ast.Node, f frame) {
	a := n.Assign
	if a == nil {
		return
	}
	if a.Value.Scale == ast.ScaleDivide {
		for _, t := range a.Targets {
			f.fn.divisors[t] = true
		}
	}
	// result += [x] grows result like append does.
	if a.Op == "+=" && f.linear > 0 && strings.HasPrefix(a.Value.Text, "[") {
		f.fn.Growth = max(f.fn.Growth, f.linear)
	}
}

func isSelfCall(c *ast.Call, fn, module *FunctionProfile) bool {
	if fn == module || c.Callee != fn.Name {
		return false
	}
	if c.Receiver == "" {
		return true
	}
	return fn.Method && (c.Receiver == "self" || c.Receiver == "cls")
}

func containsSelfCall(n *ast.Node, fn *FunctionProfile) bool {
	found := false
	ast.WalkScope(&ast.Node{Children: []*ast.Node{n}}, func(m *ast.Node) bool {
		if found {
			return false
		}
		if m.Kind == ast.KindCall && m.Call != nil && isSelfCall(m.Call, fn, nil) {
			found = true
		}
		return !found
	})
	return found
}

func memoized(decorators, params []string) bool {
	for _, d := range decorators {
		name := d
		if i := strings.IndexByte(name, '('); i >= 0 {
			name = name[:i]
		}
		if name == "cache" || strings.HasSuffix(name, ".cache") ||
			strings.Contains(name, "lru_cache") || strings.Contains(name, "memo") {
			return true
		}
	}
	for _, p := range params {
		if strings.Contains(p, "memo") {
			return true
		}
	}
	return false
}

// loopBound decides how a loop's iteration count relates to its input.
func loopBound(n *ast.Node) (Bound, string) {
	if n.Loop == nil {
		return BoundUnknown, "loop with no recognizable bound"
	}
	if n.Loop.Form == ast.FormWhile {
		return whileBound(n)
	}

	iter := n.Loop.Iter
	switch {
	case len(iter.Idents) == 0 && (iter.Constant || strings.HasPrefix(iter.Text, "range(")):
		return BoundConstant, fmt.Sprintf("iterates over the constant %s", iter.Text)
	case isLogRange(iter.Text):
		return BoundLog, fmt.Sprintf("iterates over the logarithmic range %s", iter.Text)
	default:
		return BoundLinear, fmt.Sprintf("iterates over %s", iter.Text)
	}
}

func isLogRange(text string) bool {
	for _, fn := range []string{"log(", "log2(", "log10(", "bit_length("} {
		if strings.Contains(text, fn) {
			return true
		}
	}
	return false
}

func whileBound(n *ast.Node) (Bound, string) {
	cond := n.Loop.Iter
	if n.Loop.Infinite {
		return BoundUnknown, "runs until an exit inside the body"
	}
	if len(cond.Idents) == 0 {
		return BoundUnknown, fmt.Sprintf("condition %s has no loop variable", cond.Text)
	}

	var assigns []*ast.Assign
	divided := make(map[string]bool)
	consumed := make(map[string]bool)
	ast.WalkScope(n, func(m *ast.Node) bool {
		switch {
		case m.Kind == ast.KindAssign && m.Assign != nil:
			assigns = append(assigns, m.Assign)
			if m.Assign.Value.Scale >= ast.ScaleMultiply {
				for _, t := range m.Assign.Targets {
					divided[t] = true
				}
			}
		case m.Kind == ast.KindCall && m.Call != nil && m.Call.Receiver != "" && consumeMethods[m.Call.Callee]:
			consumed[m.Call.Receiver] = true
		}
		return true
	})

	var advanced []string
	for _, a := range assigns {
		for _, t := range a.Targets {
			if !cond.Uses(t) {
				continue
			}
			switch {
			case a.Value.Scale == ast.ScaleDivide:
				return BoundLog, fmt.Sprintf("%s is divided each iteration", t)
			case a.Value.Scale == ast.ScaleMultiply:
				return BoundLog, fmt.Sprintf("%s is multiplied each iteration", t)
			}
			for _, id := range a.Value.Idents {
				if id != t && divided[id] {
					return BoundLog, fmt.Sprintf("%s moves to the midpoint %s, halving the search range each iteration", t, id)
				}
			}
			advanced = append(advanced, t)
		}
	}
	if len(advanced) > 0 {
		return BoundLinear, fmt.Sprintf("%s advances each iteration", advanced[0])
	}
	for _, id := range cond.Idents {
		if consumed[id] {
			return BoundLinear, fmt.Sprintf("%s is consumed each iteration", id)
		}
	}
	return BoundUnknown, fmt.Sprintf("condition %s is not updated in the body", cond.Text)
}

// pathCalls returns the most self-calls on a path that falls through the
// statements and on a path that returns inside them (-1 if none returns).
// done is set when every path returns.
func pathCalls(nodes []*ast.Node, fn *FunctionProfile) (cont, term int, done bool) {
	cont, term = 0, -1
	for _, n := range nodes {
		c, t, d := pathNode(n, fn)
		if t >= 0 {
			term = max(term, cont+t)
		}
		if d {
			return cont, term, true
		}
		cont += c
	}
	return cont, term, false
}

func pathNode(n *ast.Node, fn *FunctionProfile) (cont, term int, done bool) {
	switch n.Kind {
	case ast.KindFunction, ast.KindClass:
		return 0, -1, false

	case ast.KindReturn:
		c, t, _ := pathCalls(n.Children, fn)
		return 0, max(c, t), true

	case ast.KindExit:
		c, t, _ := pathCalls(n.Children, fn)
		if n.Name == "raise" {
			return 0, max(c, t), true
		}
		return c, t, false

	case ast.KindCall:
		c, t, _ := pathCalls(n.Children, fn)
		if n.Call != nil && isSelfCall(n.Call, fn, nil) {
			c++
		}
		return c, t, false

	case ast.KindLoop:
		// The body may run zero times, so a loop never ends every path.
		c, t, _ := pathCalls(n.Children, fn)
		return c, t, false

	case ast.KindConditional:
		var pre, arms []*ast.Node
		for _, c := range n.Children {
			if c.Kind == ast.KindArm {
				arms = append(arms, c)
			} else {
				pre = append(pre, c)
			}
		}
		pc, pt, _ := pathCalls(pre, fn)

		contBest, termBest := -1, pt
		if len(arms) == 0 || arms[len(arms)-1].Name != "else" {
			contBest = 0
		}
		for _, arm := range arms {
			ac, at, ad := pathCalls(arm.Children, fn)
			if at >= 0 {
				termBest = max(termBest, pc+at)
			}
			if !ad {
				contBest = max(contBest, ac)
			}
		}
		if contBest < 0 {
			return 0, termBest, true
		}
		return pc + contBest, termBest, false

	default:
		return pathCalls(n.Children, fn)
	}
}

// shrinkOf decides how the recursive arguments reduce the input. The slowest
// shrinking call site decides.
func shrinkOf(p *FunctionProfile) (Shrink, string) {
	if len(p.selfArgs) == 0 {
		return ShrinkNone, ""
	}
	worst, evidence := ShrinkNone, ""
	for _, args := range p.selfArgs {
		s, e := siteShrink(args, p)
		if s > worst {
			worst, evidence = s, e
		}
	}
	return worst, evidence
}

func siteShrink(args []ast.Expr, p *FunctionProfile) (Shrink, string) {
	best, evidence := ShrinkUnknown, "no argument visibly shrinks"
	for _, a := range args {
		if a.Scale == ast.ScaleDivide {
			return ShrinkHalve, fmt.Sprintf("argument %s divides the input", a.Text)
		}
		for _, id := range a.Idents {
			if p.divisors[id] {
				return ShrinkHalve, fmt.Sprintf("argument %s is bounded by the midpoint %s", a.Text, id)
			}
		}
		switch {
		case a.Slice || a.Scale == ast.ScaleStep:
			if best > ShrinkStep {
				best, evidence = ShrinkStep, fmt.Sprintf("argument %s shrinks the input by a constant", a.Text)
			}
		case isChildAccess(a, p.params):
			if best > ShrinkStructural {
				best, evidence = ShrinkStructural, fmt.Sprintf("argument %s descends into a child", a.Text)
			}
		}
	}
	return best, evidence
}

// isChildAccess matches param.field, such as node.left.
func isChildAccess(a ast.Expr, params []string) bool {
	root, field, ok := strings.Cut(a.Text, ".")
	if !ok || field == "" || strings.ContainsAny(field, ".()[] ") {
		return false
	}
	for _, p := range params {
		if p == root && p != "self" && p != "cls" {
			return true
		}
	}
	return false
}
