package classify

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Class is an asymptotic class of the form n^Poly · log^Log n, or Exp^n when
// Exp is set.
type Class struct {
	Poly float64
	Log  int
	Exp  int
}

// Common classes.
var (
	Constant     = Class{}
	Logarithmic  = Class{Log: 1}
	Linear       = Class{Poly: 1}
	Linearithmic = Class{Poly: 1, Log: 1}
	Quadratic    = Class{Poly: 2}
	Exponential  = Class{Exp: 2}
)

const epsilon = 1e-9

// Poly returns the class n^k.
func Poly(k float64) Class {
	return Class{Poly: k}
}

// IsConstant reports whether c is O(1).
func (c Class) IsConstant() bool {
	return c.Exp == 0 && c.Poly < epsilon && c.Log == 0
}

// Times returns the class of running c for each step of o.
func (c Class) Times(o Class) Class {
	if c.Exp > 0 || o.Exp > 0 {
		return Class{Exp: max(c.Exp, o.Exp)}
	}
	return Class{Poly: c.Poly + o.Poly, Log: c.Log + o.Log}
}

// Compare orders classes by growth rate.
func (c Class) Compare(o Class) int {
	switch {
	case c.Exp != o.Exp:
		return cmpInt(c.Exp, o.Exp)
	case math.Abs(c.Poly-o.Poly) > epsilon:
		if c.Poly < o.Poly {
			return -1
		}
		return 1
	default:
		return cmpInt(c.Log, o.Log)
	}
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Max returns the faster-growing class; a wins ties.
func Max(a, b Class) Class {
	if b.Compare(a) > 0 {
		return b
	}
	return a
}

func (c Class) String() string {
	if c.Exp > 0 {
		return fmt.Sprintf("O(%d^n)", c.Exp)
	}

	var parts []string
	switch {
	case c.Poly < epsilon:
	case math.Abs(c.Poly-1) < epsilon:
		parts = append(parts, "n")
	default:
		parts = append(parts, "n^"+formatPower(c.Poly))
	}
	switch {
	case c.Log == 1:
		parts = append(parts, "log n")
	case c.Log > 1:
		parts = append(parts, fmt.Sprintf("log^%d n", c.Log))
	}
	if len(parts) == 0 {
		return "O(1)"
	}
	return "O(" + strings.Join(parts, " ") + ")"
}

func formatPower(p float64) string {
	if math.Abs(p-math.Round(p)) < epsilon {
		return strconv.Itoa(int(math.Round(p)))
	}
	return strings.TrimRight(strings.TrimRight(strconv.FormatFloat(p, 'f', 2, 64), "0"), ".")
}

// Name is the conventional adjective for the class.
func (c Class) Name() string {
	switch {
	case c.Exp > 0:
		return "exponential"
	case c.IsConstant():
		return "constant"
	case c.Poly < epsilon:
		return "logarithmic"
	case c.Compare(Linear) == 0:
		return "linear"
	case c.Compare(Linearithmic) == 0:
		return "linearithmic"
	case c.Compare(Quadratic) == 0:
		return "quadratic"
	case math.Abs(c.Poly-3) < epsilon && c.Log == 0:
		return "cubic"
	default:
		return "polynomial"
	}
}

var (
	expClass  = regexp.MustCompile(`^(\d+)\^n$`)
	polyClass = regexp.MustCompile(`^(?:n(?:\^(\d+(?:\.\d+)?))?)?\*?(?:log(?:\^(\d+))?(?:n|\(n\)))?$`)
	notations = strings.NewReplacer(" ", "", "²", "^2", "³", "^3", "·", "*", "θ", "o", "ω", "o")
)

// ParseClass reads a big-O string such as "O(n log n)" or "O(n²)".
func ParseClass(s string) (Class, bool) {
	t := notations.Replace(strings.ToLower(strings.TrimSpace(s)))
	if !strings.HasPrefix(t, "o(") || !strings.HasSuffix(t, ")") {
		return Class{}, false
	}
	t = t[2 : len(t)-1]

	switch t {
	case "1":
		return Constant, true
	case "sqrt(n)", "√n":
		return Poly(0.5), true
	case "", "n!":
		return Class{}, false
	}

	if m := expClass.FindStringSubmatch(t); m != nil {
		base, _ := strconv.Atoi(m[1])
		if base < 2 {
			return Constant, true
		}
		return Class{Exp: base}, true
	}

	m := polyClass.FindStringSubmatch(t)
	if m == nil {
		return Class{}, false
	}
	var c Class
	if strings.HasPrefix(t, "n") {
		c.Poly = 1
		if m[1] != "" {
			c.Poly, _ = strconv.ParseFloat(m[1], 64)
		}
	}
	if strings.Contains(t, "log") {
		c.Log = 1
		if m[2] != "" {
			c.Log, _ = strconv.Atoi(m[2])
		}
	}
	return c, true
}
