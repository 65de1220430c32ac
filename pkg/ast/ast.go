package ast

import "fmt"

// Position represents a location in source code (1-based).
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Kind identifies the type of a Node.
type Kind int

const (
	KindModule Kind = iota
	KindFunction
	KindClass
	KindLoop
	KindConditional
	KindArm
	KindCall
	KindAssign
	KindReturn
	KindExit
	KindBlock
)

var kindNames = [...]string{
	KindModule:      "module",
	KindFunction:    "function",
	KindClass:       "class",
	KindLoop:        "loop",
	KindConditional: "conditional",
	KindArm:         "arm",
	KindCall:        "call",
	KindAssign:      "assign",
	KindReturn:      "return",
	KindExit:        "exit",
	KindBlock:       "block",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// LoopForm distinguishes the syntactic loop constructs.
type LoopForm int

const (
	FormFor LoopForm = iota
	FormWhile
	FormComprehension
)

func (f LoopForm) String() string {
	switch f {
	case FormFor:
		return "for-loop"
	case FormWhile:
		return "while-loop"
	case FormComprehension:
		return "comprehension"
	default:
		return "loop"
	}
}

// Scale is the strongest arithmetic change an expression applies to its operands.
// Values are ordered: a larger Scale dominates a smaller one.
type Scale int

const (
	ScaleNone     Scale = iota
	ScaleStep           // x + k, x - k
	ScaleMultiply       // x * k, x << k
	ScaleDivide         // x // k, x / k, x >> k
)

func (s Scale) String() string {
	switch s {
	case ScaleStep:
		return "step"
	case ScaleMultiply:
		return "multiply"
	case ScaleDivide:
		return "divide"
	default:
		return "none"
	}
}

// Expr summarizes an expression without keeping its tree.
type Expr struct {
	Text     string
	Idents   []string
	Scale    Scale
	Slice    bool // contains a slice subscript such as a[lo:hi]
	Constant bool // no identifiers and no calls
}

// Uses reports whether the expression reads the identifier.
func (e Expr) Uses(name string) bool {
	for _, id := range e.Idents {
		if id == name {
			return true
		}
	}
	return false
}

// Loop holds the facts of a KindLoop node.
type Loop struct {
	Form     LoopForm
	Target   []string // for-loop and comprehension variables
	Iter     Expr     // iterable for for-loops and comprehensions, condition for while-loops
	Infinite bool     // while True
	Lazy     bool     // generator expression
}

// Call holds the facts of a KindCall node.
type Call struct {
	Callee   string
	Receiver string // object text for attribute calls, empty for bare names
	Args     []Expr
}

// Assign holds the facts of a KindAssign node.
type Assign struct {
	Targets []string
	Op      string // "=" or an augmented operator such as "//="
	Value   Expr
}

// Function holds the facts of a KindFunction node.
type Function struct {
	Params     []string
	Decorators []string
	Method     bool
	Async      bool
}

// Node is one typed syntax tree node. Only the facts matching Kind are set.
type Node struct {
	Kind     Kind
	Name     string
	Pos      Position
	Children []*Node

	Loop   *Loop
	Call   *Call
	Assign *Assign
	Func   *Function
}

// WarningKind classifies non-fatal lowering diagnostics.
type WarningKind string

// WarnUnsupportedConstruct marks syntax the analyzer does not model.
const WarnUnsupportedConstruct WarningKind = "unsupported_construct"

// Warning is a non-fatal diagnostic recorded while building the tree.
type Warning struct {
	Kind      WarningKind
	Construct string
	Pos       Position
	Message   string
}

func (w Warning) String() string {
	return fmt.Sprintf("line %d: %s", w.Pos.Line, w.Message)
}

// Tree is the typed syntax tree of one snippet.
type Tree struct {
	Root     *Node
	Warnings []Warning
	Nodes    int
}
