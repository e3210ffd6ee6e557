package evaluator

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/ishanwen-byte/gpsr-go/internal/constants"
	"github.com/ishanwen-byte/gpsr-go/internal/types"
	"github.com/ishanwen-byte/gpsr-go/pkg/dataset"
	"github.com/ishanwen-byte/gpsr-go/pkg/expr"
	"github.com/ishanwen-byte/gpsr-go/pkg/fitness"
	"github.com/ishanwen-byte/gpsr-go/pkg/optimizer"
	"github.com/ishanwen-byte/gpsr-go/pkg/population"
)

var (
	ErrToolboxNotSet = errors.New("evaluator has no compiler bound")
	ErrEvaluation    = errors.New("evaluation failed")
	ErrOptimizer     = errors.New("constant optimization failed")
)

// Compiler turns a tree into an executable program.
type Compiler func(t expr.Tree) (*expr.Program, error)

// CompilerFor compiles trees against ps.
func CompilerFor(ps *expr.PrimitiveSet) Compiler {
	return func(t expr.Tree) (*expr.Program, error) {
		return expr.Compile(ps, t)
	}
}

// Incumbent exposes the current best individual, read for early stopping.
type Incumbent interface {
	Best() (*population.Individual, bool)
}

// Evaluator scores individuals on the training split, optimizing their constant slots
// first when configured to. It is safe for concurrent use on distinct individuals.
type Evaluator struct {
	config    types.EvaluatorConfig
	optimizer optimizer.ConstOptimizer
	incumbent Incumbent
	logger    *logrus.Logger

	xTrain   [][]float64
	yTrain   []float64
	xTest    [][]float64
	trainFit fitness.Bound
	testFit  fitness.Bound

	mu      sync.RWMutex
	compile Compiler

	// test loss of the last incumbent checked for early stopping
	stopMu   sync.Mutex
	stopTree expr.Tree
	stopLoss float64

	optimizerCalls atomic.Int64
}

// New creates an evaluator over ds. opt is required when constant optimization is on;
// incumbent is required when early stopping is on. A nil logger selects logrus.New().
func New(config types.EvaluatorConfig, ds *dataset.Dataset, opt optimizer.ConstOptimizer, incumbent Incumbent, logger *logrus.Logger) (*Evaluator, error) {
	if ds == nil {
		return nil, fmt.Errorf("evaluator requires a dataset")
	}
	if config.Metric == "" {
		config.Metric = constants.DefaultMetric
	}
	if config.FailurePolicy == "" {
		config.FailurePolicy = constants.DefaultFailurePolicy
	}
	if config.FailurePolicy != constants.FailureWorst && config.FailurePolicy != constants.FailureFatal {
		return nil, fmt.Errorf("unknown failure policy %q", config.FailurePolicy)
	}
	if config.ConstOptimize && opt == nil {
		return nil, fmt.Errorf("constant optimization requires an optimizer")
	}
	if config.ConstOptimize && config.EarlyStopping && incumbent == nil {
		return nil, fmt.Errorf("early stopping requires a hall of fame")
	}

	metric, err := fitness.Make(config.Metric)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logrus.New()
	}

	e := &Evaluator{
		config:    config,
		optimizer: opt,
		incumbent: incumbent,
		logger:    logger,
		xTrain:    ds.TrainColumns(),
		yTrain:    ds.YTrain,
		trainFit:  fitness.Bind(metric, ds.YTrain),
		testFit:   fitness.Bind(metric, ds.YTrain),
	}
	e.xTest = e.xTrain
	if ds.HasTest() {
		e.xTest = ds.TestColumns()
		e.testFit = fitness.Bind(metric, ds.YTest)
	}

	logger.WithFields(logrus.Fields{
		"metric":         config.Metric,
		"const_optimize": config.ConstOptimize,
		"early_stopping": config.EarlyStopping,
		"threshold":      config.Threshold,
		"failure_policy": config.FailurePolicy,
		"samples":        len(ds.YTrain),
	}).Debug("Initialized evaluator")

	return e, nil
}

// SetCompiler binds the compiler used for every evaluation.
func (e *Evaluator) SetCompiler(c Compiler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.compile = c
}

func (e *Evaluator) compiler() Compiler {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.compile
}

// Reset forgets the cached incumbent test loss and zeroes the optimizer call counter.
func (e *Evaluator) Reset() {
	e.stopMu.Lock()
	e.stopTree = nil
	e.stopLoss = 0
	e.stopMu.Unlock()
	e.optimizerCalls.Store(0)
}

// OptimizerCalls is the number of constant optimizations run so far.
func (e *Evaluator) OptimizerCalls() int64 {
	return e.optimizerCalls.Load()
}

// Evaluate returns the training fitness of ind. With constant optimization on, the
// constant slots of ind.Tree are optimized first and the optimized tree replaces
// ind.Tree. Once the incumbent's test loss is below the threshold, early stopping
// short-circuits every evaluation to constants.SentinelFitness.
func (e *Evaluator) Evaluate(ind *population.Individual) (float64, error) {
	compile := e.compiler()
	if compile == nil {
		return 0, ErrToolboxNotSet
	}

	tree := ind.Tree
	if e.config.ConstOptimize {
		idxs := tree.ConstIndices()

		if e.config.EarlyStopping {
			stop, err := e.reachedThreshold(compile)
			if err != nil {
				return 0, err
			}
			if stop {
				return constants.SentinelFitness, nil
			}
		}

		if len(idxs) > 0 {
			optimized, err := e.optimizeConstants(compile, tree, idxs)
			if err != nil {
				return 0, err
			}
			ind.Tree = optimized
			tree = optimized
		}
	}

	return e.score(compile, tree, e.xTrain, e.trainFit)
}

// TrainFitness scores t on the training split without touching its constants.
func (e *Evaluator) TrainFitness(t expr.Tree) (float64, error) {
	compile := e.compiler()
	if compile == nil {
		return 0, ErrToolboxNotSet
	}
	return e.score(compile, t, e.xTrain, e.trainFit)
}

// TestFitness scores t on the test split, or on the training split when the dataset
// has no test split.
func (e *Evaluator) TestFitness(t expr.Tree) (float64, error) {
	compile := e.compiler()
	if compile == nil {
		return 0, ErrToolboxNotSet
	}
	return e.score(compile, t, e.xTest, e.testFit)
}

func (e *Evaluator) reachedThreshold(compile Compiler) (bool, error) {
	best, ok := e.incumbent.Best()
	if !ok {
		return false, nil
	}

	e.stopMu.Lock()
	defer e.stopMu.Unlock()
	if e.stopTree == nil || !e.stopTree.Equal(best.Tree) {
		loss, err := e.score(compile, best.Tree, e.xTest, e.testFit)
		if err != nil {
			return false, err
		}
		e.stopTree = best.Tree
		e.stopLoss = loss
	}
	return e.stopLoss < e.config.Threshold, nil
}

func (e *Evaluator) optimizeConstants(compile Compiler, tree expr.Tree, idxs []int) (expr.Tree, error) {
	var objErr error
	objective := func(values []float64) float64 {
		candidate, err := expr.ApplyConstants(tree, idxs, values)
		if err != nil {
			objErr = err
			return math.Inf(1)
		}
		prog, err := compile(candidate)
		if err != nil {
			objErr = err
			return math.Inf(1)
		}
		yHat, err := prog.Eval(e.xTrain...)
		if err != nil {
			objErr = err
			return math.Inf(1)
		}
		return fitness.MSE(e.yTrain, yHat)
	}

	x0 := make([]float64, len(idxs))
	for i := range x0 {
		x0[i] = constants.ConstInitial
	}

	e.optimizerCalls.Add(1)
	values, err := e.optimizer.Minimize(objective, x0)
	if objErr != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrEvaluation, tree, objErr)
	}
	if err != nil {
		e.logger.WithFields(logrus.Fields{
			"expression": tree.String(),
			"constants":  len(idxs),
		}).WithError(err).Warn("Constant optimization failed")
		return nil, fmt.Errorf("%w: %s: %v", ErrOptimizer, tree, err)
	}
	if len(values) != len(idxs) {
		return nil, fmt.Errorf("%w: optimizer returned %d values for %d constants", ErrOptimizer, len(values), len(idxs))
	}

	optimized, err := expr.ApplyConstants(tree, idxs, values)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEvaluation, err)
	}
	if err := expr.CheckConstTags(optimized, idxs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEvaluation, err)
	}
	return optimized, nil
}

func (e *Evaluator) score(compile Compiler, t expr.Tree, cols [][]float64, bound fitness.Bound) (float64, error) {
	prog, err := compile(t)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to compile %s: %v", ErrEvaluation, t, err)
	}
	yHat, err := prog.Eval(cols...)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to execute %s: %v", ErrEvaluation, t, err)
	}

	loss := bound(yHat)
	if math.IsNaN(loss) || math.IsInf(loss, 0) {
		if e.config.FailurePolicy == constants.FailureFatal {
			return 0, fmt.Errorf("%w: non-finite loss for %s", ErrEvaluation, t)
		}
		e.logger.WithField("expression", t.String()).Debug("Non-finite loss, scoring as worst")
		return math.Inf(1), nil
	}
	return loss, nil
}
