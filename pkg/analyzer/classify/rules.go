package classify

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/panbanda/bigo/pkg/analyzer/extract"
	"github.com/panbanda/bigo/pkg/models"
)

// RuleBased is the deterministic classifier. It needs no external service and
// always produces the same estimate for the same profile.
type RuleBased struct{}

// NewRuleBased creates the rule-table classifier.
func NewRuleBased() *RuleBased {
	return &RuleBased{}
}

// Name identifies the strategy.
func (r *RuleBased) Name() string {
	return StrategyRule
}

// Classify returns the rule-table estimate for in.Profile.
func (r *RuleBased) Classify(ctx context.Context, in Input) (models.ComplexityEstimate, error) {
	if err := ctx.Err(); err != nil {
		return models.ComplexityEstimate{}, err
	}
	return Baseline(in.Profile), nil
}

// Baseline derives time and space classes from the profile's structure.
func Baseline(p *extract.Profile) models.ComplexityEstimate {
	e := newEvaluator(p)

	var timeBest, spaceBest *verdict
	for _, fn := range p.All() {
		v := e.function(fn)
		if timeBest == nil || v.time.Compare(timeBest.time) > 0 {
			timeBest = v
		}
		if spaceBest == nil || v.space.Compare(spaceBest.space) > 0 {
			spaceBest = v
		}
	}

	patterns := 0
	for _, fn := range p.All() {
		v := e.function(fn)
		if !v.derived && v.time.Compare(timeBest.time) == 0 {
			patterns += max(v.patterns, 1)
		}
	}

	if timeBest.time.IsConstant() {
		patterns = 1
	}

	trivial := p.Metrics.Loops == 0 && !p.HasRecursion()
	ev := evidence{
		trivial:      trivial,
		corroborated: timeBest.exact,
		patterns:     patterns,
		ambiguities:  len(e.ambiguities),
		earlyExits:   timeBest.earlyExits,
		warnings:     len(p.Warnings),
	}

	est := models.ComplexityEstimate{
		TimeComplexity:  timeBest.time.String(),
		SpaceComplexity: spaceBest.space.String(),
		Confidence:      score(ev),
	}
	est.Analysis = describe(timeBest, spaceBest, e.ambiguities, trivial, len(p.Warnings))
	return est
}

// verdict is the classification of one function.
type verdict struct {
	name         string
	time         Class
	space        Class
	feature      string
	spaceFeature string
	exact        bool
	derived      bool // the dominant cost comes from a callee
	patterns     int
	earlyExits   int
}

// cost is the time of a region along its most expensive path.
type cost struct {
	class      Class
	feature    string
	nest       int // loops on the dominant chain
	exact      bool
	derived    bool
	ties       int
	earlyExits int
}

type evaluator struct {
	profile     *extract.Profile
	done        map[*extract.FunctionProfile]*verdict
	active      map[*extract.FunctionProfile]bool
	ambiguities []string
	seen        map[string]bool
}

func newEvaluator(p *extract.Profile) *evaluator {
	return &evaluator{
		profile: p,
		done:    make(map[*extract.FunctionProfile]*verdict),
		active:  make(map[*extract.FunctionProfile]bool),
		seen:    make(map[string]bool),
	}
}

// ambiguous records a ClassificationAmbiguous condition once.
func (e *evaluator) ambiguous(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if e.seen[msg] {
		return
	}
	e.seen[msg] = true
	e.ambiguities = append(e.ambiguities, msg)
}

func (e *evaluator) function(fn *extract.FunctionProfile) *verdict {
	if v, ok := e.done[fn]; ok {
		return v
	}
	e.active[fn] = true
	defer delete(e.active, fn)

	work := e.region(&fn.Body, fn)
	v := &verdict{
		name:       fn.Name,
		time:       work.class,
		exact:      work.exact,
		derived:    work.derived,
		patterns:   work.ties,
		earlyExits: work.earlyExits,
	}
	v.feature = loopFeature(work)

	if fn.Recursive() {
		e.recursion(fn, work, v)
	}

	if cycle := e.profile.CycleOf(fn.Name); cycle != nil {
		e.ambiguous("%s are mutually recursive; their depth is assumed linear", strings.Join(cycle, " and "))
		if v.time.Compare(Linear) < 0 {
			v.time = Linear
			v.feature = fmt.Sprintf("mutual recursion between %s", strings.Join(cycle, " and "))
			v.derived = false
		}
		v.exact = false
	}

	e.space(fn, v)
	e.done[fn] = v
	return v
}

// recursion applies the recurrence for fn's self-calls on top of the per-call work.
func (e *evaluator) recursion(fn *extract.FunctionProfile, work cost, v *verdict) {
	w := work.class
	if fn.SlicedArgs {
		w = Max(w, Linear)
	}
	b := max(fn.Branching, 1)
	v.derived = false
	v.patterns = 1
	v.exact = work.exact && fn.Shrink != extract.ShrinkUnknown

	switch {
	case fn.SelfCallInLoop:
		e.ambiguous("%s calls itself inside a loop, so the number of recursive calls depends on the loop bound", fn.Name)
		v.time = Exponential
		v.feature = "recursive call inside a loop, branching on every iteration"
		v.exact = false
		return

	case fn.Memoized:
		states := Linear
		if fn.Shrink == extract.ShrinkHalve {
			states = Logarithmic
		}
		v.time = states.Times(w)
		v.feature = fmt.Sprintf("memoized recursion computing each of %s subproblems once", states)
		return
	}

	if fn.Shrink == extract.ShrinkUnknown {
		e.ambiguous("recursive calls in %s do not visibly shrink the input", fn.Name)
	}

	switch fn.Shrink {
	case extract.ShrinkHalve:
		if b == 1 {
			switch {
			case w.IsConstant():
				v.time = Logarithmic
				v.feature = "single recursive call on a constant fraction of the input, logarithmic depth"
			case w.Poly > epsilon:
				v.time = w
				v.feature = fmt.Sprintf("single recursive call on half the input; the %s work per call dominates", w)
			default:
				v.time = Class{Log: w.Log + 1}
				v.feature = fmt.Sprintf("single halving recursive call with %s work per level", w)
			}
			break
		}
		crit := math.Log2(float64(b))
		switch {
		case w.Poly > crit+epsilon:
			v.time = w
		case w.Poly > crit-epsilon:
			v.time = Class{Poly: crit, Log: w.Log + 1}
		default:
			v.time = Class{Poly: crit}
		}
		v.feature = fmt.Sprintf("divide and conquer with %d recursive calls on halves and %s combine work (%s)", b, w, fn.ShrinkEvidence)

	case extract.ShrinkStructural:
		v.time = Linear.Times(w)
		v.feature = fmt.Sprintf("recursion visiting each element once (%s)", fn.ShrinkEvidence)

	default:
		if b == 1 {
			v.time = Linear.Times(w)
			v.feature = fmt.Sprintf("single recursive call reducing the input by a constant, n levels deep (%s)", fn.ShrinkEvidence)
			return
		}
		v.time = Class{Exp: b}
		v.feature = fmt.Sprintf("%d recursive calls per invocation each reducing the input by a constant, so the call tree grows exponentially", b)
	}
}

// space derives the extra memory of fn: call stack, growing collections,
// sliced arguments and the space of callees.
func (e *evaluator) space(fn *extract.FunctionProfile, v *verdict) {
	v.space = Constant
	v.spaceFeature = "no structure grows with the input"

	consider := func(c Class, feature string) {
		if c.Compare(v.space) > 0 {
			v.space = c
			v.spaceFeature = feature
		}
	}

	if fn.Growth > 0 {
		consider(Poly(float64(fn.Growth)), fmt.Sprintf("a collection built inside %d nested loop(s)", fn.Growth))
	}

	if fn.Recursive() || e.profile.InCycle(fn.Name) {
		switch {
		case fn.Shrink == extract.ShrinkHalve && !fn.SelfCallInLoop:
			consider(Logarithmic, "recursion stack of logarithmic depth")
		default:
			consider(Linear, "recursion stack up to n frames deep")
		}
		if fn.Memoized {
			consider(Linear, "memo table holding one entry per subproblem")
		}
	}

	if fn.SlicedArgs {
		if fn.Shrink == extract.ShrinkHalve {
			consider(Linear, "slices copied for the recursive calls, halving at each level")
		} else {
			consider(Quadratic, "a slice copied on each of n recursive levels")
		}
	}

	for _, name := range fn.Callees {
		callee := e.profile.Lookup(name)
		if callee == nil || e.active[callee] {
			continue
		}
		cv := e.function(callee)
		consider(cv.space, fmt.Sprintf("%s in %s", cv.spaceFeature, name))
	}
}

// region returns the cost of the most expensive path through r.
func (e *evaluator) region(r *extract.Region, fn *extract.FunctionProfile) cost {
	best := cost{class: Constant, exact: true}

	pick := func(c cost) {
		switch cmp := c.class.Compare(best.class); {
		case cmp > 0:
			c.ties = max(c.ties, 1)
			best = c
		case cmp == 0 && !c.class.IsConstant():
			best.ties += max(c.ties, 1)
		}
	}

	for _, call := range r.Calls {
		callee := e.profile.Lookup(call.Callee)
		if callee == nil || callee == fn {
			continue
		}
		if e.active[callee] {
			// A call back into a function still being evaluated closes a
			// cycle; its cost is settled by the cycle rule.
			continue
		}
		v := e.function(callee)
		pick(cost{
			class:      v.time,
			feature:    fmt.Sprintf("call to %s at line %d, which is %s (%s)", call.Callee, call.Line, v.time, v.feature),
			exact:      v.exact,
			derived:    true,
			earlyExits: v.earlyExits,
		})
	}

	for _, l := range r.Loops {
		pick(e.loop(l, fn))
	}
	return best
}

func (e *evaluator) loop(l *extract.LoopFact, fn *extract.FunctionProfile) cost {
	factor := Linear
	switch l.Bound {
	case extract.BoundConstant:
		factor = Constant
	case extract.BoundLog:
		factor = Logarithmic
	case extract.BoundUnknown:
		e.ambiguous("%s at line %d has no recognizable bound (%s); assumed linear", l.Form, l.Line, l.Evidence)
	}

	inner := e.region(&l.Body, fn)
	c := cost{
		class:      factor.Times(inner.class),
		exact:      l.Bound != extract.BoundUnknown && inner.exact,
		derived:    inner.derived && factor.IsConstant(),
		earlyExits: inner.earlyExits,
		nest:       1,
	}
	if l.EarlyExit {
		c.earlyExits++
	}

	desc := fmt.Sprintf("%s at line %d (%s)", l.Form, l.Line, l.Evidence)
	switch {
	case inner.class.IsConstant():
		c.feature = desc
	case inner.derived:
		c.feature = fmt.Sprintf("%s making a %s", desc, inner.feature)
	default:
		c.feature = fmt.Sprintf("%s containing %s", desc, inner.feature)
		c.nest += inner.nest
	}
	return c
}

func loopFeature(c cost) string {
	switch {
	case c.feature == "":
		return "straight-line code"
	case c.derived:
		return c.feature
	case c.nest == 1:
		return "single " + c.feature
	default:
		return fmt.Sprintf("%d nested loops: %s", c.nest, c.feature)
	}
}

func describe(t, s *verdict, ambiguities []string, trivial bool, warnings int) string {
	var b strings.Builder

	if trivial && t.time.IsConstant() {
		b.WriteString("No loops or recursion: every statement runs a constant number of times, so time is O(1) and space is O(1).")
	} else {
		fmt.Fprintf(&b, "Time %s (%s), driven by %s: %s.", t.time, t.time.Name(), subject(t.name), t.feature)
		fmt.Fprintf(&b, " Space %s: %s.", s.space, s.spaceFeature)
		if t.earlyExits > 0 {
			b.WriteString(" Early exits can end the loop sooner; the bound is for the worst case.")
		}
	}

	if len(ambiguities) > 0 {
		fmt.Fprintf(&b, " Ambiguous: %s; confidence lowered.", strings.Join(ambiguities, "; "))
	}
	if warnings > 0 {
		fmt.Fprintf(&b, " %d construct(s) were not analyzed.", warnings)
	}
	return b.String()
}

func subject(name string) string {
	if name == extract.ModuleName {
		return "top-level code"
	}
	return name
}
