package expr

import (
	"math/rand"

	"github.com/ishanwen-byte/gpsr-go/internal/constants"
)

// GenFunc builds a random tree whose height lies in [min, max].
type GenFunc func(ps *PrimitiveSet, rng *rand.Rand, min, max int) Tree

// GenFull generates trees where every leaf sits at the same depth.
func GenFull(ps *PrimitiveSet, rng *rand.Rand, min, max int) Tree {
	return generate(ps, rng, min, max, func(height, depth int) bool {
		return depth == height
	})
}

// GenGrow generates trees whose leaves may stop anywhere between min and the drawn height.
func GenGrow(ps *PrimitiveSet, rng *rand.Rand, min, max int) Tree {
	ratio := ps.TerminalRatio()
	return generate(ps, rng, min, max, func(height, depth int) bool {
		return depth == height || (depth >= min && rng.Float64() < ratio)
	})
}

// GenHalfAndHalf picks GenGrow or GenFull with equal probability.
func GenHalfAndHalf(ps *PrimitiveSet, rng *rand.Rand, min, max int) Tree {
	if rng.Intn(2) == 0 {
		return GenGrow(ps, rng, min, max)
	}
	return GenFull(ps, rng, min, max)
}

func generate(ps *PrimitiveSet, rng *rand.Rand, min, max int, leaf func(height, depth int) bool) Tree {
	height := min
	if max > min {
		height = min + rng.Intn(max-min+1)
	}

	var t Tree
	stack := []int{0}
	for len(stack) > 0 {
		depth := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if len(ps.primitives) == 0 || leaf(height, depth) {
			t = append(t, randomTerminal(ps, rng))
			continue
		}
		p := ps.primitives[rng.Intn(len(ps.primitives))]
		t = append(t, PrimitiveNode(p))
		for i := 0; i < p.Arity; i++ {
			stack = append(stack, depth+1)
		}
	}
	return t
}

func randomTerminal(ps *PrimitiveSet, rng *rand.Rand) Node {
	i := rng.Intn(ps.NumTerminals())
	if i < len(ps.variables) {
		return ps.VariableNode(i)
	}
	return ConstNode(constants.ConstInitial)
}
