package optimizer

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/optimize"

	"github.com/ishanwen-byte/gpsr-go/internal/constants"
)

var (
	ErrUnknownOptimizer = errors.New("unknown constant optimizer")
	ErrOptimizer        = errors.New("constant optimization failed")
)

// ConstOptimizer minimizes a scalar objective over a parameter vector.
// Implementations must be safe for concurrent use.
type ConstOptimizer interface {
	Minimize(objective func([]float64) float64, x0 []float64) ([]float64, error)
}

// Func adapts a plain function to ConstOptimizer.
type Func func(objective func([]float64) float64, x0 []float64) ([]float64, error)

// Minimize calls f.
func (f Func) Minimize(objective func([]float64) float64, x0 []float64) ([]float64, error) {
	return f(objective, x0)
}

// Params keys understood by New.
const (
	ParamMaxIterations  = "max_iterations"
	ParamMaxEvaluations = "max_evaluations"
	ParamTolerance      = "tolerance"
)

// New returns the optimizer registered under name, configured from params.
func New(name string, params map[string]float64) (ConstOptimizer, error) {
	g := &Gonum{
		MaxIterations:  int(params[ParamMaxIterations]),
		MaxEvaluations: int(params[ParamMaxEvaluations]),
		Tolerance:      params[ParamTolerance],
	}
	switch name {
	case constants.OptimizerNelderMead, constants.OptimizerScipy, "":
		g.Method = func() optimize.Method { return &optimize.NelderMead{} }
	case constants.OptimizerBFGS:
		g.Method = func() optimize.Method { return &optimize.BFGS{} }
		g.Gradient = true
	case constants.OptimizerLBFGS:
		g.Method = func() optimize.Method { return &optimize.LBFGS{} }
		g.Gradient = true
	default:
		return nil, fmt.Errorf("%w: %q (available: %v)", ErrUnknownOptimizer, name, Names())
	}
	return g, nil
}

// Names returns the registered optimizer names.
func Names() []string {
	return []string{constants.OptimizerNelderMead, constants.OptimizerBFGS, constants.OptimizerLBFGS}
}

// Gonum runs a gonum/optimize method. A fresh method value is built per call.
type Gonum struct {
	Method         func() optimize.Method
	Gradient       bool // supply a central finite-difference gradient
	MaxIterations  int
	MaxEvaluations int
	Tolerance      float64
}

// Minimize implements ConstOptimizer. Non-finite objective values are treated as +Inf.
// The best location found is returned even when the method stops on a limit.
func (g *Gonum) Minimize(objective func([]float64) float64, x0 []float64) (x []float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			x, err = nil, fmt.Errorf("%w: %v", ErrOptimizer, r)
		}
	}()

	f := func(x []float64) float64 {
		v := objective(x)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return math.Inf(1)
		}
		return v
	}
	problem := optimize.Problem{Func: f}
	if g.Gradient {
		problem.Grad = func(grad, x []float64) {
			fd.Gradient(grad, f, x, &fd.Settings{Formula: fd.Central})
		}
	}

	settings := &optimize.Settings{
		MajorIterations: g.MaxIterations,
		FuncEvaluations: g.MaxEvaluations,
	}
	if g.Tolerance > 0 {
		settings.Converger = &optimize.FunctionConverge{Absolute: g.Tolerance, Iterations: 20}
	}

	start := make([]float64, len(x0))
	copy(start, x0)
	result, err := optimize.Minimize(problem, start, settings, g.Method())
	if result == nil || result.X == nil {
		return nil, fmt.Errorf("%w: %v", ErrOptimizer, err)
	}
	out := make([]float64, len(result.X))
	copy(out, result.X)
	return out, nil
}
