package dataset

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// Koza is the default operator set of the benchmarks.
var Koza = []string{"add", "sub", "mul", "div", "sin", "cos", "exp", "log"}

// Spec describes a one-variable benchmark sampled uniformly on [Low, High].
type Spec struct {
	Name        string
	Expression  string
	Fn          func(x float64) float64
	Low, High   float64
	TrainSize   int
	TestSize    int
	FunctionSet []string
}

// unit returns a benchmark sampled with 20 train and 20 test points on [-1, 1].
func unit(expression string, fn func(x float64) float64) Spec {
	return Spec{Expression: expression, Fn: fn, Low: -1, High: 1, TrainSize: 20, TestSize: 20}
}

var benchmarks = map[string]Spec{
	"Nguyen-1": unit("x1^3 + x1^2 + x1", func(x float64) float64 {
		return x*x*x + x*x + x
	}),
	"Nguyen-2": unit("x1^4 + x1^3 + x1^2 + x1", func(x float64) float64 {
		return x*x*x*x + x*x*x + x*x + x
	}),
	"Nguyen-3": unit("x1^5 + x1^4 + x1^3 + x1^2 + x1", func(x float64) float64 {
		return math.Pow(x, 5) + math.Pow(x, 4) + x*x*x + x*x + x
	}),
	"Nguyen-4": unit("x1^6 + x1^5 + x1^4 + x1^3 + x1^2 + x1", func(x float64) float64 {
		return math.Pow(x, 6) + math.Pow(x, 5) + math.Pow(x, 4) + x*x*x + x*x + x
	}),
	"R1": unit("(x1 + 1)^3 / (x1^2 - x1 + 1)", func(x float64) float64 {
		return math.Pow(x+1, 3) / (x*x - x + 1)
	}),
	"R2": unit("(x1^5 - 3 x1^3 + 1) / (x1^2 + 1)", func(x float64) float64 {
		return (math.Pow(x, 5) - 3*x*x*x + 1) / (x*x + 1)
	}),
	"Linear": withFunctionSet(unit("2 x1 + 1", func(x float64) float64 {
		return 2*x + 1
	}), "add", "sub", "mul", "div"),
}

func withFunctionSet(s Spec, names ...string) Spec {
	s.FunctionSet = names
	return s
}

// Benchmarks lists the registered benchmark names.
func Benchmarks() []string {
	names := make([]string, 0, len(benchmarks))
	for name := range benchmarks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the benchmark definition for name.
func Lookup(name string) (Spec, bool) {
	s, ok := benchmarks[name]
	if ok {
		s.Name = name
	}
	return s, ok
}

// Benchmark samples the named benchmark with rng.
func Benchmark(name string, rng *rand.Rand) (*Dataset, error) {
	s, ok := Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBenchmark, name)
	}
	return s.Sample(rng)
}

// Sample draws train and test splits of s.
func (s Spec) Sample(rng *rand.Rand) (*Dataset, error) {
	xTrain, yTrain := s.draw(rng, s.TrainSize)
	xTest, yTest := s.draw(rng, s.TestSize)
	fs := s.FunctionSet
	if len(fs) == 0 {
		fs = Koza
	}
	return New(xTrain, yTrain, xTest, yTest, append([]string(nil), fs...))
}

func (s Spec) draw(rng *rand.Rand, n int) ([][]float64, []float64) {
	x := make([][]float64, n)
	y := make([]float64, n)
	for i := range x {
		v := s.Low + rng.Float64()*(s.High-s.Low)
		x[i] = []float64{v}
		y[i] = s.Fn(v)
	}
	return x, y
}
