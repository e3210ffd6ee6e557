package algorithm

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/ishanwen-byte/gpsr-go/pkg/evaluator"
	"github.com/ishanwen-byte/gpsr-go/pkg/expr"
	"github.com/ishanwen-byte/gpsr-go/pkg/population"
)

var ErrIncompleteToolbox = errors.New("toolbox is missing an operator")

// SelectFunc picks k individuals from pop. The returned individuals may repeat and
// alias members of pop.
type SelectFunc func(rng *rand.Rand, pop []*population.Individual, k int) []*population.Individual

// Toolbox holds the operators one run is built from.
type Toolbox struct {
	Select   SelectFunc
	Mate     expr.MateFunc
	Mutate   expr.MutateFunc
	Evaluate evaluator.EvalFunc
	Map      evaluator.Mapper
}

// Validate reports the first missing operator. A nil Map means serial evaluation.
func (tb *Toolbox) Validate() error {
	switch {
	case tb == nil:
		return ErrIncompleteToolbox
	case tb.Select == nil:
		return missing("select")
	case tb.Mate == nil:
		return missing("mate")
	case tb.Mutate == nil:
		return missing("mutate")
	case tb.Evaluate == nil:
		return missing("evaluate")
	}
	return nil
}

func (tb *Toolbox) mapper() evaluator.Mapper {
	if tb.Map == nil {
		return evaluator.SerialMapper{}
	}
	return tb.Map
}

// SelTournament returns a selection that runs k tournaments of size tournSize, drawing
// aspirants uniformly with replacement. The first best aspirant wins a tournament.
func SelTournament(tournSize int) SelectFunc {
	if tournSize < 1 {
		tournSize = 1
	}
	return func(rng *rand.Rand, pop []*population.Individual, k int) []*population.Individual {
		chosen := make([]*population.Individual, 0, k)
		if len(pop) == 0 {
			return chosen
		}
		for i := 0; i < k; i++ {
			best := pop[rng.Intn(len(pop))]
			for j := 1; j < tournSize; j++ {
				aspirant := pop[rng.Intn(len(pop))]
				if aspirant.Fitness.Better(best.Fitness) {
					best = aspirant
				}
			}
			chosen = append(chosen, best)
		}
		return chosen
	}
}

// VarAnd clones pop and applies crossover to consecutive pairs with probability cxpb,
// then mutation to each offspring with probability mutpb. Every altered offspring has
// its fitness invalidated; the others keep the parent's fitness.
func VarAnd(rng *rand.Rand, pop []*population.Individual, tb *Toolbox, cxpb, mutpb float64) []*population.Individual {
	offspring := make([]*population.Individual, len(pop))
	for i, ind := range pop {
		offspring[i] = ind.Clone()
	}

	for i := 1; i < len(offspring); i += 2 {
		if rng.Float64() < cxpb {
			a, b := offspring[i-1], offspring[i]
			a.Tree, b.Tree = tb.Mate(rng, a.Tree, b.Tree)
			a.Fitness.Invalidate()
			b.Fitness.Invalidate()
		}
	}

	for _, ind := range offspring {
		if rng.Float64() < mutpb {
			ind.Tree = tb.Mutate(rng, ind.Tree)
			ind.Fitness.Invalidate()
		}
	}
	return offspring
}

func missing(op string) error {
	return fmt.Errorf("%w: %s", ErrIncompleteToolbox, op)
}
