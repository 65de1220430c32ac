package extract

import (
	"github.com/RoaringBitmap/roaring/v2"
	"github.com/panbanda/bigo/pkg/ast"
	"github.com/panbanda/bigo/pkg/models"
)

// ModuleName names the pseudo-function holding top-level statements.
const ModuleName = "<module>"

// Bound classifies how many times a loop runs relative to its input.
type Bound int

const (
	BoundConstant Bound = iota
	BoundLog
	BoundLinear
	BoundUnknown
)

func (b Bound) String() string {
	switch b {
	case BoundConstant:
		return "constant"
	case BoundLog:
		return "logarithmic"
	case BoundLinear:
		return "linear"
	default:
		return "unknown"
	}
}

// Shrink classifies how recursive calls reduce their input.
// Values are ordered from fastest to slowest shrinking.
type Shrink int

const (
	ShrinkNone       Shrink = iota // no self-calls
	ShrinkHalve                    // input divided by a constant factor
	ShrinkStructural               // descends into a child such as node.left
	ShrinkStep                     // input reduced by a constant amount
	ShrinkUnknown
)

func (s Shrink) String() string {
	switch s {
	case ShrinkNone:
		return "none"
	case ShrinkHalve:
		return "halving"
	case ShrinkStructural:
		return "structural"
	case ShrinkStep:
		return "stepping"
	default:
		return "unknown"
	}
}

// LoopFact describes one loop and the loops nested in it.
type LoopFact struct {
	Form      ast.LoopForm
	Line      int
	Bound     Bound
	Evidence  string
	Lazy      bool
	EarlyExit bool
	Body      Region
}

// CallSite is a call to a name that may be defined in the snippet.
type CallSite struct {
	Callee string
	Line   int
}

// Region is a sequence of statements: the loops and calls it contains at its own level.
type Region struct {
	Loops []*LoopFact
	Calls []CallSite
}

// FunctionProfile is everything the classifier needs about one function.
type FunctionProfile struct {
	Name     string
	Line     int
	Method   bool
	Memoized bool
	Body     Region

	SelfCalls      int
	Branching      int // most self-calls on a single execution path
	SelfCallInLoop bool
	Shrink         Shrink
	ShrinkEvidence string
	SlicedArgs     bool

	Growth     int // loop depth at which a collection grows; 0 when none does
	EarlyExits int
	Callees    []string

	params   []string
	divisors map[string]bool
	selfArgs [][]ast.Expr
}

// Recursive reports whether the function calls itself.
func (f *FunctionProfile) Recursive() bool {
	return f.SelfCalls > 0
}

// Profile is the result of feature extraction.
type Profile struct {
	Metrics   models.StructuralMetrics
	Module    *FunctionProfile
	Functions []*FunctionProfile
	Cycles    [][]string
	Warnings  []ast.Warning

	byName map[string]*FunctionProfile
	ids    map[string]uint32
	cyclic *roaring.Bitmap
}

// Lookup resolves a callee name. A later definition rebinds the name, so the
// last definition wins.
func (p *Profile) Lookup(name string) *FunctionProfile {
	return p.byName[name]
}

// InCycle reports whether the named function is part of a mutual recursion cycle.
func (p *Profile) InCycle(name string) bool {
	id, ok := p.ids[name]
	return ok && p.cyclic.Contains(id)
}

// CycleOf returns the mutual recursion cycle containing name, if any.
func (p *Profile) CycleOf(name string) []string {
	if !p.InCycle(name) {
		return nil
	}
	for _, c := range p.Cycles {
		for _, n := range c {
			if n == name {
				return c
			}
		}
	}
	return nil
}

// HasRecursion reports whether any function recurses directly or mutually.
func (p *Profile) HasRecursion() bool {
	return p.Metrics.RecursiveCalls > 0 || len(p.Cycles) > 0
}

// All returns the function profiles followed by the module profile.
func (p *Profile) All() []*FunctionProfile {
	all := make([]*FunctionProfile, 0, len(p.Functions)+1)
	all = append(all, p.Functions...)
	return append(all, p.Module)
}
