package population

import (
	"math"

	"github.com/ishanwen-byte/gpsr-go/pkg/expr"
)

// Direction tags the optimization direction of a fitness value.
type Direction int

const (
	Minimize Direction = iota
	Maximize
)

// Fitness is a single-objective fitness value. The zero value is invalid and
// minimizing.
type Fitness struct {
	Direction Direction
	value     float64
	valid     bool
}

// Valid reports whether a value has been assigned.
func (f Fitness) Valid() bool {
	return f.valid
}

// Value returns the assigned value, NaN when invalid.
func (f Fitness) Value() float64 {
	if !f.valid {
		return math.NaN()
	}
	return f.value
}

// Set assigns v.
func (f *Fitness) Set(v float64) {
	f.value = v
	f.valid = true
}

// Invalidate clears the value.
func (f *Fitness) Invalidate() {
	f.value = 0
	f.valid = false
}

// Better reports whether f is strictly better than o under f's direction.
// Invalid values are never better, and any valid value beats an invalid one.
func (f Fitness) Better(o Fitness) bool {
	if !f.valid {
		return false
	}
	if !o.valid {
		return true
	}
	if f.Direction == Maximize {
		return f.value > o.value
	}
	return f.value < o.value
}

// Individual is one candidate expression with its fitness.
type Individual struct {
	Tree    expr.Tree
	Fitness Fitness
}

// New wraps t in an individual with invalid minimizing fitness.
func New(t expr.Tree) *Individual {
	return &Individual{Tree: t, Fitness: Fitness{Direction: Minimize}}
}

// Clone deep copies the individual, fitness included.
func (ind *Individual) Clone() *Individual {
	return &Individual{Tree: ind.Tree.Clone(), Fitness: ind.Fitness}
}

// Len is the node count of the tree.
func (ind *Individual) Len() int {
	return ind.Tree.Len()
}

// String renders the tree.
func (ind *Individual) String() string {
	return ind.Tree.String()
}

// Population is an ordered set of individuals.
type Population []*Individual

// Invalid returns the individuals that still need evaluating, in order.
func (p Population) Invalid() []*Individual {
	var out []*Individual
	for _, ind := range p {
		if !ind.Fitness.Valid() {
			out = append(out, ind)
		}
	}
	return out
}
