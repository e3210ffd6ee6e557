package algorithm

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ishanwen-byte/gpsr-go/pkg/archive"
	"github.com/ishanwen-byte/gpsr-go/pkg/population"
	"github.com/ishanwen-byte/gpsr-go/pkg/stats"
)

// EvaluateInvalid scores every individual of pop whose fitness is invalid, then offers
// the whole population to hof when it is non-nil. It returns the number of individuals
// evaluated.
func EvaluateInvalid(ctx context.Context, tb *Toolbox, hof *archive.HallOfFame, pop []*population.Individual) (int, error) {
	invalid := population.Population(pop).Invalid()
	if len(invalid) > 0 {
		results, err := tb.mapper().Map(ctx, tb.Evaluate, invalid)
		if err != nil {
			return 0, err
		}
		for i, ind := range invalid {
			ind.Fitness.Set(results[i])
		}
	}
	if hof != nil {
		hof.Update(pop)
	}
	return len(invalid), nil
}

// Generational is the simple generational loop: each generation selects a full-size
// offspring population, varies it, evaluates the changed individuals and replaces the
// parents with it.
type Generational struct {
	Toolbox    *Toolbox
	PCrossover float64
	PMutate    float64
	HallOfFame *archive.HallOfFame
	Stats      *stats.MultiStatistics
	Rng        *rand.Rand
	Verbose    bool
	Logger     *logrus.Logger
}

// Run evolves pop for ngen generations after evaluating generation 0 and returns the
// final population with one logbook record per generation. Cancellation of ctx is
// observed between generations; the population and logbook built so far are returned
// along with ctx.Err().
func (g *Generational) Run(ctx context.Context, pop population.Population, ngen int) (population.Population, *stats.Logbook, error) {
	if err := g.Toolbox.Validate(); err != nil {
		return nil, nil, err
	}
	if g.Rng == nil {
		return nil, nil, fmt.Errorf("generational algorithm requires a random source")
	}
	logger := g.Logger
	if logger == nil {
		logger = logrus.New()
	}
	ms := g.Stats
	if ms == nil {
		ms = stats.Default()
	}
	logbook := stats.NewLogbook(ms)

	logger.WithFields(logrus.Fields{
		"population":  len(pop),
		"generations": ngen,
		"p_crossover": g.PCrossover,
		"p_mutate":    g.PMutate,
	}).Info("Starting evolution")
	start := time.Now()

	if err := ctx.Err(); err != nil {
		return pop, logbook, err
	}
	nevals, err := EvaluateInvalid(ctx, g.Toolbox, g.HallOfFame, pop)
	if err != nil {
		return pop, logbook, fmt.Errorf("failed to evaluate generation 0: %w", err)
	}
	g.record(logger, logbook, ms, 0, nevals, pop)

	for gen := 1; gen <= ngen; gen++ {
		if err := ctx.Err(); err != nil {
			logger.WithField("generation", gen).Warn("Evolution cancelled")
			return pop, logbook, err
		}

		offspring := g.Toolbox.Select(g.Rng, pop, len(pop))
		offspring = VarAnd(g.Rng, offspring, g.Toolbox, g.PCrossover, g.PMutate)

		nevals, err := EvaluateInvalid(ctx, g.Toolbox, g.HallOfFame, offspring)
		if err != nil {
			return pop, logbook, fmt.Errorf("failed to evaluate generation %d: %w", gen, err)
		}
		pop = offspring
		g.record(logger, logbook, ms, gen, nevals, pop)
	}

	fields := logrus.Fields{
		"generations": ngen,
		"duration":    time.Since(start),
	}
	if g.HallOfFame != nil {
		if best, ok := g.HallOfFame.Best(); ok {
			fields["best_fitness"] = best.Fitness.Value()
			fields["best"] = best.String()
		}
	}
	logger.WithFields(fields).Info("Evolution completed")

	return pop, logbook, nil
}

func (g *Generational) record(logger *logrus.Logger, lb *stats.Logbook, ms *stats.MultiStatistics, gen, nevals int, pop population.Population) {
	r := lb.Record(gen, nevals, ms.Compile(pop))
	entry := logger.WithFields(logrus.Fields(lb.Fields(r)))
	if g.Verbose {
		entry.Info("Generation")
	} else {
		entry.Debug("Generation")
	}
}
