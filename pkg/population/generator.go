package population

import (
	"math/rand"

	"github.com/ishanwen-byte/gpsr-go/pkg/expr"
)

// Generator produces trees for new individuals. Queued trees are handed out before
// any random tree is built: the queue is popped from its back, so InsertBack batches
// come out last-first and InsertFront batches only after everything queued behind them.
// A Generator is not safe for concurrent use.
type Generator struct {
	base    expr.GenFunc
	pending []expr.Tree
}

// NewGenerator wraps base; nil selects expr.GenHalfAndHalf.
func NewGenerator(base expr.GenFunc) *Generator {
	if base == nil {
		base = expr.GenHalfAndHalf
	}
	return &Generator{base: base}
}

// Generate returns the next queued tree or, with an empty queue, a random one.
func (g *Generator) Generate(ps *expr.PrimitiveSet, rng *rand.Rand, min, max int) expr.Tree {
	if n := len(g.pending); n > 0 {
		t := g.pending[n-1]
		g.pending = g.pending[:n-1]
		return t
	}
	return g.base(ps, rng, min, max)
}

// InsertFront queues batch ahead of the queued trees, keeping its order.
func (g *Generator) InsertFront(batch []expr.Tree) {
	pending := make([]expr.Tree, 0, len(batch)+len(g.pending))
	pending = append(pending, batch...)
	g.pending = append(pending, g.pending...)
}

// InsertBack queues batch after the queued trees.
func (g *Generator) InsertBack(batch []expr.Tree) {
	g.pending = append(g.pending, batch...)
}

// Clear drops every queued tree.
func (g *Generator) Clear() {
	g.pending = nil
}

// Len is the number of queued trees.
func (g *Generator) Len() int {
	return len(g.pending)
}

// Population builds n individuals through Generate.
func (g *Generator) Population(ps *expr.PrimitiveSet, rng *rand.Rand, n, min, max int) Population {
	pop := make(Population, n)
	for i := range pop {
		pop[i] = New(g.Generate(ps, rng, min, max))
	}
	return pop
}
