package population

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ishanwen-byte/gpsr-go/pkg/expr"
)

func primitiveSet(t *testing.T) *expr.PrimitiveSet {
	t.Helper()
	ps, err := expr.NewPrimitiveSetFromNames(1, []string{"add", "mul"}, true)
	require.NoError(t, err)
	return ps
}

func parse(t *testing.T, ps *expr.PrimitiveSet, src string) expr.Tree {
	t.Helper()
	tree, err := expr.Parse(ps, src)
	require.NoError(t, err)
	return tree
}

func TestFitness(t *testing.T) {
	var f Fitness
	assert.False(t, f.Valid())
	assert.True(t, math.IsNaN(f.Value()))

	f.Set(0.5)
	assert.True(t, f.Valid())
	assert.Equal(t, 0.5, f.Value())

	g := Fitness{}
	g.Set(0.25)
	assert.True(t, g.Better(f))
	assert.False(t, f.Better(g))
	assert.False(t, f.Better(f))
	assert.True(t, f.Better(Fitness{}))
	assert.False(t, Fitness{}.Better(f))

	upper := Fitness{Direction: Maximize}
	upper.Set(2)
	other := Fitness{Direction: Maximize}
	other.Set(1)
	assert.True(t, upper.Better(other))

	f.Invalidate()
	assert.False(t, f.Valid())
}

func TestIndividualClone(t *testing.T) {
	ps := primitiveSet(t)
	ind := New(parse(t, ps, "add(x1,const)"))
	ind.Fitness.Set(3)

	c := ind.Clone()
	c.Tree[2].Value = 7
	c.Fitness.Invalidate()

	assert.Equal(t, 1.0, ind.Tree[2].Value)
	assert.True(t, ind.Fitness.Valid())
	assert.Equal(t, "add(x1,1)", ind.String())
	assert.Equal(t, 3, ind.Len())
}

func TestPopulationInvalid(t *testing.T) {
	ps := primitiveSet(t)
	pop := Population{New(parse(t, ps, "x1")), New(parse(t, ps, "const")), New(parse(t, ps, "add(x1,x1)"))}
	pop[1].Fitness.Set(0)

	invalid := pop.Invalid()
	require.Len(t, invalid, 2)
	assert.Same(t, pop[0], invalid[0])
	assert.Same(t, pop[2], invalid[1])
}

func TestGeneratorInsertBackIsLIFO(t *testing.T) {
	ps := primitiveSet(t)
	rng := rand.New(rand.NewSource(1))
	a := parse(t, ps, "add(x1,x1)")
	b := parse(t, ps, "mul(x1,x1)")

	gen := NewGenerator(nil)
	gen.InsertBack([]expr.Tree{a, b})
	require.Equal(t, 2, gen.Len())

	assert.True(t, gen.Generate(ps, rng, 1, 2).Equal(b))
	assert.True(t, gen.Generate(ps, rng, 1, 2).Equal(a))
	assert.Equal(t, 0, gen.Len())
}

func TestGeneratorInsertFront(t *testing.T) {
	ps := primitiveSet(t)
	rng := rand.New(rand.NewSource(1))
	a := parse(t, ps, "x1")
	b := parse(t, ps, "const")
	c := parse(t, ps, "add(x1,const)")

	gen := NewGenerator(nil)
	gen.InsertBack([]expr.Tree{c})
	gen.InsertFront([]expr.Tree{a, b})

	// queue is [a, b, c], popped from the back
	assert.True(t, gen.Generate(ps, rng, 1, 2).Equal(c))
	assert.True(t, gen.Generate(ps, rng, 1, 2).Equal(b))
	assert.True(t, gen.Generate(ps, rng, 1, 2).Equal(a))
}

func TestGeneratorClear(t *testing.T) {
	ps := primitiveSet(t)
	rng := rand.New(rand.NewSource(1))
	queued := parse(t, ps, "add(mul(x1,const),const)")

	calls := 0
	base := func(ps *expr.PrimitiveSet, rng *rand.Rand, min, max int) expr.Tree {
		calls++
		return expr.GenFull(ps, rng, min, max)
	}

	gen := NewGenerator(base)
	gen.InsertBack([]expr.Tree{queued})
	gen.Clear()

	for i := 0; i < 10; i++ {
		tree := gen.Generate(ps, rng, 3, 3)
		assert.False(t, tree.Equal(queued))
	}
	assert.Equal(t, 10, calls)
}

func TestGeneratorPopulation(t *testing.T) {
	ps := primitiveSet(t)
	rng := rand.New(rand.NewSource(2))
	seed := parse(t, ps, "add(mul(const,x1),const)")

	gen := NewGenerator(nil)
	gen.InsertBack([]expr.Tree{seed})
	pop := gen.Population(ps, rng, 5, 1, 2)

	require.Len(t, pop, 5)
	assert.True(t, pop[0].Tree.Equal(seed))
	for _, ind := range pop {
		assert.False(t, ind.Fitness.Valid())
		assert.NoError(t, ind.Tree.Validate())
	}
}
