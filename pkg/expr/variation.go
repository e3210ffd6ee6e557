package expr

import (
	"math/rand"
)

// MateFunc recombines two trees. Inputs are never modified.
type MateFunc func(rng *rand.Rand, a, b Tree) (Tree, Tree)

// MutateFunc alters one tree. The input is never modified.
type MutateFunc func(rng *rand.Rand, t Tree) Tree

// CxOnePoint swaps a random subtree of a with a random subtree of b.
// Roots are never chosen, so trees shorter than two nodes are returned unchanged.
func CxOnePoint(rng *rand.Rand, a, b Tree) (Tree, Tree) {
	if len(a) < 2 || len(b) < 2 {
		return a.Clone(), b.Clone()
	}
	ia := 1 + rng.Intn(len(a)-1)
	ib := 1 + rng.Intn(len(b)-1)
	_, ea := a.SearchSubtree(ia)
	_, eb := b.SearchSubtree(ib)

	c1 := splice(a, ia, ea, b[ib:eb])
	c2 := splice(b, ib, eb, a[ia:ea])
	return c1, c2
}

// MutUniform returns a mutation that replaces a random subtree with a new GenFull tree
// of height in [min, max].
func MutUniform(ps *PrimitiveSet, min, max int) MutateFunc {
	return func(rng *rand.Rand, t Tree) Tree {
		if len(t) == 0 {
			return t
		}
		idx := rng.Intn(len(t))
		_, end := t.SearchSubtree(idx)
		return splice(t, idx, end, GenFull(ps, rng, min, max))
	}
}

// splice returns t with t[begin:end] replaced by sub.
func splice(t Tree, begin, end int, sub Tree) Tree {
	out := make(Tree, 0, len(t)-(end-begin)+len(sub))
	out = append(out, t[:begin]...)
	out = append(out, sub...)
	out = append(out, t[end:]...)
	return out
}

// Limit is a hard structural cap: results with Key(t) > Max are rejected.
type Limit struct {
	Name string
	Key  func(Tree) int
	Max  int
}

// HeightLimit caps tree height.
func HeightLimit(max int) Limit {
	return Limit{Name: "height", Key: Tree.Height, Max: max}
}

// LenLimit caps node count.
func LenLimit(max int) Limit {
	return Limit{Name: "len", Key: Tree.Len, Max: max}
}

// ConstLimit caps the number of constant slots.
func ConstLimit(max int) Limit {
	return Limit{Name: "const", Key: Tree.ConstCount, Max: max}
}

func withinLimits(t Tree, limits []Limit) bool {
	for _, l := range limits {
		if l.Key(t) > l.Max {
			return false
		}
	}
	return true
}

// LimitMate wraps mate so that an offspring violating any limit is replaced by the
// parent in the same position.
func LimitMate(mate MateFunc, limits ...Limit) MateFunc {
	if len(limits) == 0 {
		return mate
	}
	return func(rng *rand.Rand, a, b Tree) (Tree, Tree) {
		c1, c2 := mate(rng, a, b)
		if !withinLimits(c1, limits) {
			c1 = a.Clone()
		}
		if !withinLimits(c2, limits) {
			c2 = b.Clone()
		}
		return c1, c2
	}
}

// LimitMutate wraps mutate so that a mutant violating any limit is replaced by its input.
func LimitMutate(mutate MutateFunc, limits ...Limit) MutateFunc {
	if len(limits) == 0 {
		return mutate
	}
	return func(rng *rand.Rand, t Tree) Tree {
		m := mutate(rng, t)
		if !withinLimits(m, limits) {
			return t.Clone()
		}
		return m
	}
}
