package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleTree() *Tree {
	inner := &Node{Kind: KindFunction, Name: "inner", Children: []*Node{
		{Kind: KindLoop, Loop: &Loop{Form: FormFor}},
	}}
	outer := &Node{Kind: KindFunction, Name: "outer", Children: []*Node{
		{Kind: KindLoop, Loop: &Loop{Form: FormWhile}, Children: []*Node{
			{Kind: KindCall, Name: "outer", Call: &Call{Callee: "outer"}},
		}},
		inner,
	}}
	return &Tree{Root: &Node{Kind: KindModule, Children: []*Node{outer}}}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "loop", KindLoop.String())
	assert.Equal(t, "conditional", KindConditional.String())
	assert.Equal(t, "kind(99)", Kind(99).String())
}

func TestScaleOrdering(t *testing.T) {
	assert.Greater(t, ScaleDivide, ScaleMultiply)
	assert.Greater(t, ScaleMultiply, ScaleStep)
	assert.Greater(t, ScaleStep, ScaleNone)
}

func TestCountAndFunctions(t *testing.T) {
	tree := sampleTree()
	assert.Equal(t, 2, Count(tree.Root, KindLoop))
	assert.Equal(t, 1, Count(tree.Root, KindCall))

	var names []string
	for _, fn := range tree.Functions() {
		names = append(names, fn.Name)
	}
	assert.Equal(t, []string{"outer", "inner"}, names)
}

func TestWalkScopeStopsAtNestedDefinitions(t *testing.T) {
	outer := sampleTree().Functions()[0]

	loops := 0
	WalkScope(outer, func(n *Node) bool {
		if n.Kind == KindLoop {
			loops++
		}
		return true
	})
	assert.Equal(t, 1, loops, "the loop inside inner belongs to inner")
}

func TestWalkSkipsChildren(t *testing.T) {
	visited := 0
	Walk(sampleTree().Root, func(n *Node) bool {
		visited++
		return n.Kind == KindModule
	})
	assert.Equal(t, 2, visited)
}

func TestExprUses(t *testing.T) {
	e := Expr{Text: "mid + 1", Idents: []string{"mid"}, Scale: ScaleStep}
	assert.True(t, e.Uses("mid"))
	assert.False(t, e.Uses("left"))
}

func TestWarningString(t *testing.T) {
	w := Warning{Kind: WarnUnsupportedConstruct, Construct: "match_statement", Pos: Position{Line: 4, Column: 1}, Message: "match statement analyzed as a plain block"}
	assert.Equal(t, "line 4: match statement analyzed as a plain block", w.String())
}
