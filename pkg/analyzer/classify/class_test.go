package classify

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassString(t *testing.T) {
	tests := []struct {
		class Class
		want  string
	}{
		{Constant, "O(1)"},
		{Logarithmic, "O(log n)"},
		{Class{Log: 2}, "O(log^2 n)"},
		{Linear, "O(n)"},
		{Linearithmic, "O(n log n)"},
		{Quadratic, "O(n^2)"},
		{Class{Poly: 2, Log: 1}, "O(n^2 log n)"},
		{Class{Poly: math.Log2(3)}, "O(n^1.58)"},
		{Poly(0.5), "O(n^0.5)"},
		{Exponential, "O(2^n)"},
		{Class{Exp: 3}, "O(3^n)"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.class.String())
		})
	}
}

func TestClassCompare(t *testing.T) {
	ordered := []Class{Constant, Logarithmic, Class{Log: 2}, Poly(0.5), Linear, Linearithmic, Quadratic, Poly(3), Exponential, Class{Exp: 3}}
	for i := range ordered {
		for j := range ordered {
			got := ordered[i].Compare(ordered[j])
			switch {
			case i < j:
				assert.Equal(t, -1, got, "%s vs %s", ordered[i], ordered[j])
			case i > j:
				assert.Equal(t, 1, got, "%s vs %s", ordered[i], ordered[j])
			default:
				assert.Equal(t, 0, got, "%s vs itself", ordered[i])
			}
		}
	}
}

func TestClassTimes(t *testing.T) {
	assert.Equal(t, Quadratic, Linear.Times(Linear))
	assert.Equal(t, Linearithmic, Linear.Times(Logarithmic))
	assert.Equal(t, Linear, Constant.Times(Linear))
	assert.Equal(t, Exponential, Exponential.Times(Quadratic))
	assert.Equal(t, Class{Exp: 3}, Exponential.Times(Class{Exp: 3}))
}

func TestMaxKeepsFirstOnTie(t *testing.T) {
	a := Class{Poly: 1}
	b := Class{Poly: 1 + epsilon/2}
	assert.Equal(t, a, Max(a, b))
	assert.Equal(t, Quadratic, Max(Linear, Quadratic))
}

func TestClassName(t *testing.T) {
	assert.Equal(t, "constant", Constant.Name())
	assert.Equal(t, "logarithmic", Logarithmic.Name())
	assert.Equal(t, "linear", Linear.Name())
	assert.Equal(t, "linearithmic", Linearithmic.Name())
	assert.Equal(t, "quadratic", Quadratic.Name())
	assert.Equal(t, "cubic", Poly(3).Name())
	assert.Equal(t, "polynomial", Poly(1.58).Name())
	assert.Equal(t, "exponential", Exponential.Name())
}

func TestParseClass(t *testing.T) {
	tests := []struct {
		in   string
		want Class
		ok   bool
	}{
		{"O(1)", Constant, true},
		{"O(log n)", Logarithmic, true},
		{"O(log(n))", Logarithmic, true},
		{"O(n)", Linear, true},
		{"Θ(n)", Linear, true},
		{"O(n log n)", Linearithmic, true},
		{"O(n * log(n))", Linearithmic, true},
		{"O(n²)", Quadratic, true},
		{"O(n^2)", Quadratic, true},
		{"O(n³)", Poly(3), true},
		{"O(n^1.5)", Poly(1.5), true},
		{"O(log^2 n)", Class{Log: 2}, true},
		{"O(sqrt(n))", Poly(0.5), true},
		{"O(2^n)", Exponential, true},
		{" o(N) ", Linear, true},
		{"O(V + E)", Class{}, false},
		{"O(n!)", Class{}, false},
		{"O()", Class{}, false},
		{"linear", Class{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseClass(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, 0, got.Compare(tt.want), "got %s", got)
			}
		})
	}
}

func TestParseClassRoundTrip(t *testing.T) {
	for _, c := range []Class{Constant, Logarithmic, Linear, Linearithmic, Quadratic, Exponential, Class{Poly: 2, Log: 1}} {
		got, ok := ParseClass(c.String())
		assert.True(t, ok, c.String())
		assert.Equal(t, 0, got.Compare(c), c.String())
	}
}
