package expr

import (
	"fmt"
	"math"
	"sort"

	"github.com/ishanwen-byte/gpsr-go/internal/constants"
)

// Primitive is a named operator of fixed arity.
type Primitive struct {
	Name  string
	Arity int
	Fn    func(args []float64) float64
}

// Functions is the operator library a primitive set can draw from, keyed by name.
var Functions = map[string]Primitive{
	"add":  {Name: "add", Arity: 2, Fn: func(a []float64) float64 { return a[0] + a[1] }},
	"sub":  {Name: "sub", Arity: 2, Fn: func(a []float64) float64 { return a[0] - a[1] }},
	"mul":  {Name: "mul", Arity: 2, Fn: func(a []float64) float64 { return a[0] * a[1] }},
	"div":  {Name: "div", Arity: 2, Fn: func(a []float64) float64 { return a[0] / a[1] }},
	"sin":  {Name: "sin", Arity: 1, Fn: func(a []float64) float64 { return math.Sin(a[0]) }},
	"cos":  {Name: "cos", Arity: 1, Fn: func(a []float64) float64 { return math.Cos(a[0]) }},
	"tan":  {Name: "tan", Arity: 1, Fn: func(a []float64) float64 { return math.Tan(a[0]) }},
	"exp":  {Name: "exp", Arity: 1, Fn: func(a []float64) float64 { return math.Exp(a[0]) }},
	"log":  {Name: "log", Arity: 1, Fn: func(a []float64) float64 { return math.Log(a[0]) }},
	"sqrt": {Name: "sqrt", Arity: 1, Fn: func(a []float64) float64 { return math.Sqrt(a[0]) }},
	"n2":   {Name: "n2", Arity: 1, Fn: func(a []float64) float64 { return a[0] * a[0] }},
	"n3":   {Name: "n3", Arity: 1, Fn: func(a []float64) float64 { return a[0] * a[0] * a[0] }},
	"neg":  {Name: "neg", Arity: 1, Fn: func(a []float64) float64 { return -a[0] }},
	"abs":  {Name: "abs", Arity: 1, Fn: func(a []float64) float64 { return math.Abs(a[0]) }},
	"inv":  {Name: "inv", Arity: 1, Fn: func(a []float64) float64 { return 1 / a[0] }},
	"tanh": {Name: "tanh", Arity: 1, Fn: func(a []float64) float64 { return math.Tanh(a[0]) }},
}

// FunctionNames returns the names in Functions, sorted.
func FunctionNames() []string {
	names := make([]string, 0, len(Functions))
	for k := range Functions {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// PrimitiveSet is the set of operators and terminals trees of one run are built from.
// Input variables are named x1..xN by default.
type PrimitiveSet struct {
	primitives []Primitive
	byName     map[string]int
	variables  []string
	hasConst   bool
}

// NewPrimitiveSet creates a primitive set with nVars input variables and no operators.
func NewPrimitiveSet(nVars int) *PrimitiveSet {
	vars := make([]string, nVars)
	for i := range vars {
		vars[i] = fmt.Sprintf("x%d", i+1)
	}
	return &PrimitiveSet{
		byName:    make(map[string]int),
		variables: vars,
	}
}

// NewPrimitiveSetFromNames builds a primitive set from operator names in Functions.
// The constant tag may appear among names; whether constants are generated is decided
// by withConst alone.
func NewPrimitiveSetFromNames(nVars int, names []string, withConst bool) (*PrimitiveSet, error) {
	ps := NewPrimitiveSet(nVars)
	for _, name := range names {
		if name == constants.ConstTag {
			continue
		}
		p, ok := Functions[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s (available: %v)", ErrUnknownPrimitive, name, FunctionNames())
		}
		if err := ps.AddPrimitive(p); err != nil {
			return nil, err
		}
	}
	if withConst {
		ps.AddConstant()
	}
	return ps, nil
}

// AddPrimitive registers an operator. Names must be unique and arity positive.
func (ps *PrimitiveSet) AddPrimitive(p Primitive) error {
	if p.Arity < 1 {
		return fmt.Errorf("primitive %s: arity must be positive", p.Name)
	}
	if p.Fn == nil {
		return fmt.Errorf("primitive %s: nil function", p.Name)
	}
	if _, exists := ps.byName[p.Name]; exists {
		return fmt.Errorf("primitive %s already registered", p.Name)
	}
	ps.byName[p.Name] = len(ps.primitives)
	ps.primitives = append(ps.primitives, p)
	return nil
}

// AddConstant enables the optimizable constant terminal.
func (ps *PrimitiveSet) AddConstant() {
	ps.hasConst = true
}

// HasConstant reports whether constant slots can be generated.
func (ps *PrimitiveSet) HasConstant() bool {
	return ps.hasConst
}

// RenameArguments renames input variables, keyed by current name.
func (ps *PrimitiveSet) RenameArguments(names map[string]string) {
	for i, v := range ps.variables {
		if n, ok := names[v]; ok {
			ps.variables[i] = n
		}
	}
}

// Lookup returns the operator with the given name.
func (ps *PrimitiveSet) Lookup(name string) (Primitive, bool) {
	idx, ok := ps.byName[name]
	if !ok {
		return Primitive{}, false
	}
	return ps.primitives[idx], true
}

// VariableIndex returns the position of the named input variable.
func (ps *PrimitiveSet) VariableIndex(name string) (int, bool) {
	for i, v := range ps.variables {
		if v == name {
			return i, true
		}
	}
	return 0, false
}

// Primitives returns the registered operators in registration order.
func (ps *PrimitiveSet) Primitives() []Primitive {
	return ps.primitives
}

// Variables returns the input variable names.
func (ps *PrimitiveSet) Variables() []string {
	return ps.variables
}

// NumVariables returns the number of input variables.
func (ps *PrimitiveSet) NumVariables() int {
	return len(ps.variables)
}

// NumTerminals counts the distinct terminals: variables plus the constant slot.
func (ps *PrimitiveSet) NumTerminals() int {
	n := len(ps.variables)
	if ps.hasConst {
		n++
	}
	return n
}

// TerminalRatio is the share of terminals among all primitives and terminals.
func (ps *PrimitiveSet) TerminalRatio() float64 {
	t := float64(ps.NumTerminals())
	return t / (t + float64(len(ps.primitives)))
}

// PrimitiveNode returns a tree node for operator p.
func PrimitiveNode(p Primitive) Node {
	return Node{Kind: KindPrimitive, Name: p.Name, Arity: p.Arity}
}

// VariableNode returns a tree node reading input column idx of ps.
func (ps *PrimitiveSet) VariableNode(idx int) Node {
	return Node{Kind: KindVariable, Name: ps.variables[idx], Index: idx}
}

// ConstNode returns a constant slot holding value.
func ConstNode(value float64) Node {
	return Node{Kind: KindConstant, Name: constants.ConstTag, Value: value}
}
