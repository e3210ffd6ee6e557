package trainer

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ishanwen-byte/gpsr-go/internal/constants"
	"github.com/ishanwen-byte/gpsr-go/internal/types"
	"github.com/ishanwen-byte/gpsr-go/pkg/algorithm"
	"github.com/ishanwen-byte/gpsr-go/pkg/archive"
	"github.com/ishanwen-byte/gpsr-go/pkg/dataset"
	"github.com/ishanwen-byte/gpsr-go/pkg/evaluator"
	"github.com/ishanwen-byte/gpsr-go/pkg/expr"
	"github.com/ishanwen-byte/gpsr-go/pkg/optimizer"
	"github.com/ishanwen-byte/gpsr-go/pkg/population"
	"github.com/ishanwen-byte/gpsr-go/pkg/stats"
)

var ErrMissingCollaborator = errors.New("missing collaborator")

// Result is the outcome of a training run.
type Result struct {
	RunID          string
	Best           *population.Individual
	TrainFitness   float64
	TestFitness    float64
	HallOfFame     []*population.Individual
	Population     population.Population
	Logbook        *stats.Logbook
	OptimizerCalls int64
	Checkpoint     string
	Duration       time.Duration
}

// Option customizes a Trainer.
type Option func(*Trainer)

// WithLogger shares logger with every component.
func WithLogger(logger *logrus.Logger) Option {
	return func(t *Trainer) {
		t.logger = logger
	}
}

// WithOptimizer replaces the configured constant optimizer.
func WithOptimizer(opt optimizer.ConstOptimizer) Option {
	return func(t *Trainer) {
		t.optimizer = opt
	}
}

// WithGenFunc replaces the base tree generator of the population.
func WithGenFunc(gen expr.GenFunc) Option {
	return func(t *Trainer) {
		t.genFunc = gen
	}
}

// WithRunID fixes the run ID instead of drawing a random one.
func WithRunID(id string) Option {
	return func(t *Trainer) {
		t.runID = id
	}
}

// Trainer wires one symbolic regression run: primitive set, constant optimizer, hall
// of fame, evaluator, toolbox and generator, all owned by the trainer.
type Trainer struct {
	config  types.Config
	dataset *dataset.Dataset

	pset      *expr.PrimitiveSet
	optimizer optimizer.ConstOptimizer
	hof       *archive.HallOfFame
	evaluator *evaluator.Evaluator
	toolbox   *algorithm.Toolbox
	genFunc   expr.GenFunc
	generator *population.Generator
	rng       *rand.Rand
	seeds     []expr.Tree
	trained   bool

	runID  string
	logger *logrus.Logger
}

// New builds a trainer for ds. Configuration seeds and the resume checkpoint, if any,
// are queued in the generator.
func New(config types.Config, ds *dataset.Dataset, opts ...Option) (*Trainer, error) {
	t := &Trainer{config: config, dataset: ds}
	for _, opt := range opts {
		opt(t)
	}
	if t.logger == nil {
		t.logger = logrus.New()
	}
	if t.runID == "" {
		t.runID = uuid.New().String()
	}

	if ds == nil {
		return nil, fmt.Errorf("%w: dataset", ErrMissingCollaborator)
	}
	gp := &t.config.GP
	if gp.PopulationSize < 1 {
		return nil, fmt.Errorf("population size must be positive, got %d", gp.PopulationSize)
	}
	if gp.Generations < 0 {
		return nil, fmt.Errorf("generations must be non-negative, got %d", gp.Generations)
	}
	if gp.TournamentSize < 1 {
		gp.TournamentSize = constants.DefaultTournamentSize
	}
	if gp.HallOfFameSize < 1 {
		gp.HallOfFameSize = constants.DefaultHallOfFameSize
	}

	pset, err := expr.NewPrimitiveSetFromNames(ds.NInputVar, ds.FunctionSet, gp.ConstOptimize)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMissingCollaborator, err)
	}
	t.pset = pset

	if gp.ConstOptimize && t.optimizer == nil {
		opt, err := optimizer.New(gp.ConstOptimizer, gp.ConstParams)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMissingCollaborator, err)
		}
		t.optimizer = opt
	}

	t.hof = archive.NewHallOfFame(gp.HallOfFameSize, t.logger)

	ev, err := evaluator.New(gp.Evaluator(), ds, t.optimizer, t.hof, t.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create evaluator: %w", err)
	}
	t.evaluator = ev

	t.toolbox = t.buildToolbox()
	t.evaluator.SetCompiler(evaluator.CompilerFor(t.pset))

	t.generator = population.NewGenerator(t.genFunc)
	t.rng = rand.New(rand.NewSource(gp.Seed))

	if err := t.queueSeeds(); err != nil {
		return nil, err
	}

	t.logger.WithFields(logrus.Fields{
		"run_id":       t.runID,
		"variables":    pset.Variables(),
		"primitives":   len(pset.Primitives()),
		"const":        pset.HasConstant(),
		"population":   gp.PopulationSize,
		"generations":  gp.Generations,
		"seed":         gp.Seed,
		"queued":       t.generator.Len(),
		"hall_of_fame": t.hof.MaxSize(),
	}).Info("Initialized trainer")

	return t, nil
}

func (t *Trainer) buildToolbox() *algorithm.Toolbox {
	gp := t.config.GP

	var limits []expr.Limit
	if gp.MaxDepth > 0 {
		limits = append(limits, expr.HeightLimit(gp.MaxDepth))
	}
	if gp.MaxLen > 0 {
		limits = append(limits, expr.LenLimit(gp.MaxLen))
	}
	if t.pset.HasConstant() && gp.MaxConst > 0 {
		limits = append(limits, expr.ConstLimit(gp.MaxConst))
	}

	mutate := expr.MutUniform(t.pset, constants.MutateMinDepth, constants.MutateMaxDepth)
	return &algorithm.Toolbox{
		Select:   algorithm.SelTournament(gp.TournamentSize),
		Mate:     expr.LimitMate(expr.CxOnePoint, limits...),
		Mutate:   expr.LimitMutate(mutate, limits...),
		Evaluate: t.evaluator.Evaluate,
		Map:      evaluator.NewMapper(gp.Workers),
	}
}

func (t *Trainer) queueSeeds() error {
	var seeds []expr.Tree
	for i, src := range t.config.GP.Seeds {
		tree, err := expr.Parse(t.pset, src)
		if err != nil {
			return fmt.Errorf("failed to parse seed %d: %w", i, err)
		}
		seeds = append(seeds, tree)
	}

	if path := t.config.GP.ResumeFrom; path != "" {
		cp, err := archive.LoadCheckpoint(path)
		if err != nil {
			return fmt.Errorf("failed to resume: %w", err)
		}
		inds, err := cp.Individuals(t.pset)
		if err != nil {
			return fmt.Errorf("failed to resume from %s: %w", path, err)
		}
		for _, ind := range inds {
			seeds = append(seeds, ind.Tree)
		}
		t.logger.WithFields(logrus.Fields{
			"run_id": cp.RunID,
			"file":   path,
			"seeds":  len(inds),
		}).Info("Resuming from checkpoint")
	}

	t.seeds = seeds
	t.generator.InsertBack(seeds)
	return nil
}

func (t *Trainer) reset() {
	t.hof.Clear()
	t.evaluator.Reset()
	t.rng.Seed(t.config.GP.Seed)
	if t.trained {
		t.generator.InsertFront(t.seeds)
	}
}

// Generator exposes the injection queue; trees queued before Train seed the
// initial population.
func (t *Trainer) Generator() *population.Generator {
	return t.generator
}

// PrimitiveSet is the primitive set trees of this run are built from.
func (t *Trainer) PrimitiveSet() *expr.PrimitiveSet {
	return t.pset
}

// Evaluator is the evaluator of this run.
func (t *Trainer) Evaluator() *evaluator.Evaluator {
	return t.evaluator
}

// RunID identifies this run in logs and checkpoints.
func (t *Trainer) RunID() string {
	return t.runID
}

// Train builds the initial population, runs the generational algorithm and returns the
// best individual found. Every call starts from the same state: an empty hall of fame,
// the random source reseeded and the configured seeds queued again.
func (t *Trainer) Train(ctx context.Context) (*Result, error) {
	gp := t.config.GP
	start := time.Now()

	t.reset()
	pop := t.generator.Population(t.pset, t.rng, gp.PopulationSize, constants.InitMinDepth, constants.InitMaxDepth)
	if n := t.generator.Len(); n > 0 {
		t.logger.WithField("dropped", n).Debug("Queued trees exceed the population")
		t.generator.Clear()
	}
	t.trained = true

	alg := &algorithm.Generational{
		Toolbox:    t.toolbox,
		PCrossover: gp.PCrossover,
		PMutate:    gp.PMutate,
		HallOfFame: t.hof,
		Stats:      stats.Default(),
		Rng:        t.rng,
		Verbose:    gp.Verbose,
		Logger:     t.logger,
	}
	final, logbook, err := alg.Run(ctx, pop, gp.Generations)
	if err != nil {
		return nil, fmt.Errorf("training failed: %w", err)
	}

	best, ok := t.hof.Best()
	if !ok {
		return nil, fmt.Errorf("training produced no valid individual")
	}
	testFitness, err := t.evaluator.TestFitness(best.Tree)
	if err != nil {
		return nil, fmt.Errorf("failed to score best individual on test split: %w", err)
	}

	result := &Result{
		RunID:          t.runID,
		Best:           best,
		TrainFitness:   best.Fitness.Value(),
		TestFitness:    testFitness,
		HallOfFame:     t.hof.Items(),
		Population:     final,
		Logbook:        logbook,
		OptimizerCalls: t.evaluator.OptimizerCalls(),
		Duration:       time.Since(start),
	}

	if gp.CheckpointDir != "" {
		cp := archive.NewCheckpoint(t.runID, t.config, t.hof, logbook)
		path, err := archive.SaveCheckpoint(gp.CheckpointDir, cp, t.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to save checkpoint: %w", err)
		}
		result.Checkpoint = path
	}

	t.logger.WithFields(logrus.Fields{
		"run_id":        t.runID,
		"best":          best.String(),
		"train_fitness": result.TrainFitness,
		"test_fitness":  result.TestFitness,
		"duration":      result.Duration,
	}).Info("Training completed")

	return result, nil
}
