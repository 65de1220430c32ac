package classify

import (
	"context"
	"testing"

	"github.com/panbanda/bigo/pkg/analyzer/extract"
	"github.com/panbanda/bigo/pkg/ast/treesitter"
	"github.com/panbanda/bigo/pkg/parser"
	"github.com/panbanda/bigo/pkg/samples"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func profileOf(t *testing.T, code string) *extract.Profile {
	t.Helper()
	p := parser.New()
	defer p.Close()

	result, err := p.Parse(context.Background(), []byte(code))
	require.NoError(t, err)
	tree, err := treesitter.Lower(result, treesitter.Limits{})
	require.NoError(t, err)
	return extract.Extract(tree)
}

func TestBaselineSamples(t *testing.T) {
	confidence := map[string]float64{
		"binary_search":       85,
		"bubble_sort":         90,
		"factorial_recursive": 90,
		"fibonacci_naive":     90,
		"linear_search":       85,
		"merge_sort":          90,
	}

	for _, s := range samples.All() {
		t.Run(s.Name, func(t *testing.T) {
			est := Baseline(profileOf(t, s.Code))
			assert.Equal(t, s.Time, est.TimeComplexity, est.Analysis)
			assert.Equal(t, s.Space, est.SpaceComplexity, est.Analysis)
			assert.Equal(t, confidence[s.Name], est.Confidence, est.Analysis)
		})
	}
}

func TestBaselineAnalysisNamesDominantFeature(t *testing.T) {
	tests := []struct {
		sample string
		want   []string
	}{
		{"binary_search", []string{"logarithmic", "binary_search", "while-loop", "midpoint"}},
		{"bubble_sort", []string{"quadratic", "2 nested loops"}},
		{"fibonacci_naive", []string{"exponential", "2 recursive calls"}},
		{"merge_sort", []string{"divide and conquer", "merge"}},
		{"factorial_recursive", []string{"recursion stack"}},
	}
	for _, tt := range tests {
		t.Run(tt.sample, func(t *testing.T) {
			s, ok := samples.Get(tt.sample)
			require.True(t, ok)
			est := Baseline(profileOf(t, s.Code))
			for _, w := range tt.want {
				assert.Contains(t, est.Analysis, w)
			}
		})
	}
}

func TestBaselineTrivial(t *testing.T) {
	tests := []struct {
		name string
		code string
	}{
		{"assignments", "x = 1\ny = x + 2\n"},
		{"call", "print('hello')\n"},
		{"function without loops", "def add(a, b):\n    return a + b\n"},
		{"conditional", "if x > 0:\n    y = 1\nelse:\n    y = 2\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			est := Baseline(profileOf(t, tt.code))
			assert.Equal(t, "O(1)", est.TimeComplexity)
			assert.Equal(t, "O(1)", est.SpaceComplexity)
			assert.GreaterOrEqual(t, est.Confidence, 90.0)
			assert.Contains(t, est.Analysis, "No loops or recursion")
		})
	}
}

func TestBaselineClasses(t *testing.T) {
	tests := []struct {
		name  string
		code  string
		time  string
		space string
	}{
		{
			name:  "summing loop",
			code:  "def total(xs):\n    s = 0\n    for x in xs:\n        s += x\n    return s\n",
			time:  "O(n)",
			space: "O(1)",
		},
		{
			name:  "collecting loop",
			code:  "def evens(xs):\n    out = []\n    for x in xs:\n        if x % 2 == 0:\n            out.append(x)\n    return out\n",
			time:  "O(n)",
			space: "O(n)",
		},
		{
			name:  "sequential loops",
			code:  "def f(xs):\n    for x in xs:\n        print(x)\n    for y in xs:\n        print(y)\n",
			time:  "O(n)",
			space: "O(1)",
		},
		{
			name:  "linear times log",
			code:  "def f(n):\n    for i in range(n):\n        j = 1\n        while j < n:\n            j *= 2\n",
			time:  "O(n log n)",
			space: "O(1)",
		},
		{
			name:  "constant inner loop",
			code:  "def f(xs):\n    for x in xs:\n        for k in range(3):\n            print(x, k)\n",
			time:  "O(n)",
			space: "O(1)",
		},
		{
			name:  "cubic",
			code:  "def f(n):\n    for i in range(n):\n        for j in range(n):\n            for k in range(n):\n                print(i, j, k)\n",
			time:  "O(n^3)",
			space: "O(1)",
		},
		{
			name:  "caller includes callee",
			code:  "def inner(xs):\n    for x in xs:\n        print(x)\n\ndef outer(xs):\n    for x in xs:\n        inner(xs)\n",
			time:  "O(n^2)",
			space: "O(1)",
		},
		{
			name:  "memoized fibonacci",
			code:  "from functools import lru_cache\n\n@lru_cache(maxsize=None)\ndef fib(n):\n    if n < 2:\n        return n\n    return fib(n - 1) + fib(n - 2)\n",
			time:  "O(n)",
			space: "O(n)",
		},
		{
			name:  "three-way split",
			code:  "def f(xs):\n    if len(xs) <= 1:\n        return 0\n    third = len(xs) // 3\n    return f(xs[:third]) + f(xs[third:2 * third]) + f(xs[2 * third:])\n",
			time:  "O(n^1.58)",
			space: "O(n)",
		},
		{
			name:  "tree size",
			code:  "def size(node):\n    if node is None:\n        return 0\n    return 1 + size(node.left) + size(node.right)\n",
			time:  "O(n)",
			space: "O(n)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			est := Baseline(profileOf(t, tt.code))
			assert.Equal(t, tt.time, est.TimeComplexity, est.Analysis)
			assert.Equal(t, tt.space, est.SpaceComplexity, est.Analysis)
		})
	}
}

func TestBaselineHalvingRecursionNeverWorseThanLinear(t *testing.T) {
	codes := []string{
		"def count(n):\n    if n <= 1:\n        return 0\n    return 1 + count(n // 2)\n",
		"def search(arr, lo, hi, x):\n    if lo > hi:\n        return -1\n    mid = (lo + hi) // 2\n    if arr[mid] == x:\n        return mid\n    if arr[mid] < x:\n        return search(arr, mid + 1, hi, x)\n    return search(arr, lo, mid - 1, x)\n",
		"def halve_sum(xs, n):\n    if n <= 1:\n        return 0\n    s = 0\n    for i in range(n):\n        s += xs[i]\n    return s + halve_sum(xs, n // 2)\n",
	}
	for _, code := range codes {
		est := Baseline(profileOf(t, code))
		assert.Contains(t, []string{"O(log n)", "O(n)"}, est.TimeComplexity, est.Analysis)
	}
}

func TestBaselineMutualRecursion(t *testing.T) {
	code := `def is_even(n):
    if n == 0:
        return True
    return is_odd(n - 1)

def is_odd(n):
    if n == 0:
        return False
    return is_even(n - 1)
`
	est := Baseline(profileOf(t, code))

	assert.Equal(t, "O(n)", est.TimeComplexity)
	assert.Equal(t, "O(n)", est.SpaceComplexity)
	assert.Contains(t, est.Analysis, "mutually recursive")
	assert.Less(t, est.Confidence, 90.0)
}

func TestBaselineAmbiguityLowersConfidence(t *testing.T) {
	clear := Baseline(profileOf(t, "def f(xs):\n    for x in xs:\n        print(x)\n"))
	forever := Baseline(profileOf(t, "def f(q):\n    while True:\n        if q.done():\n            break\n        q.step()\n"))

	assert.Equal(t, "O(n)", forever.TimeComplexity, "an unbounded loop is assumed linear")
	assert.Contains(t, forever.Analysis, "Ambiguous")
	assert.Less(t, forever.Confidence, clear.Confidence)
}

func TestBaselineSelfCallInLoop(t *testing.T) {
	code := `def permute(items, prefix):
    for i in range(len(items)):
        permute(items[:i] + items[i + 1:], prefix + [items[i]])
`
	est := Baseline(profileOf(t, code))

	assert.Equal(t, "O(2^n)", est.TimeComplexity)
	assert.Contains(t, est.Analysis, "inside a loop")
	assert.Less(t, est.Confidence, 90.0)
}

func TestBaselineWarningsLowerConfidence(t *testing.T) {
	plain := Baseline(profileOf(t, "for x in xs:\n    print(x)\n"))
	warned := Baseline(profileOf(t, "for x in xs:\n    eval(x)\n"))

	assert.Equal(t, plain.TimeComplexity, warned.TimeComplexity)
	assert.Less(t, warned.Confidence, plain.Confidence)
	assert.Contains(t, warned.Analysis, "not analyzed")
}

func TestBaselineDeterministic(t *testing.T) {
	for _, s := range samples.All() {
		first := Baseline(profileOf(t, s.Code))
		second := Baseline(profileOf(t, s.Code))
		assert.Equal(t, first, second, s.Name)
	}
}

func TestRuleBasedClassify(t *testing.T) {
	s, _ := samples.Get("bubble_sort")
	p := profileOf(t, s.Code)
	r := NewRuleBased()

	assert.Equal(t, StrategyRule, r.Name())

	est, err := r.Classify(context.Background(), Input{Code: s.Code, Profile: p})
	require.NoError(t, err)
	assert.Equal(t, Baseline(p), est)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.Classify(ctx, Input{Code: s.Code, Profile: p})
	assert.ErrorIs(t, err, context.Canceled)
}
