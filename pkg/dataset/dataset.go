package dataset

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"

	"github.com/ishanwen-byte/gpsr-go/internal/types"
)

var (
	ErrShape            = errors.New("dataset shape mismatch")
	ErrUnknownBenchmark = errors.New("unknown benchmark")
)

// Dataset holds row-major train and test splits and the operators the search may use.
type Dataset struct {
	XTrain      [][]float64
	YTrain      []float64
	XTest       [][]float64
	YTest       []float64
	NInputVar   int
	FunctionSet []string
}

// New validates the splits and returns a dataset. Every row of both splits must have
// the same width, and each split must have one target per row.
func New(xTrain [][]float64, yTrain []float64, xTest [][]float64, yTest []float64, functionSet []string) (*Dataset, error) {
	if len(xTrain) == 0 {
		return nil, fmt.Errorf("%w: empty training split", ErrShape)
	}
	if len(xTrain) != len(yTrain) {
		return nil, fmt.Errorf("%w: %d training rows, %d targets", ErrShape, len(xTrain), len(yTrain))
	}
	if len(xTest) != len(yTest) {
		return nil, fmt.Errorf("%w: %d test rows, %d targets", ErrShape, len(xTest), len(yTest))
	}

	width := len(xTrain[0])
	if width == 0 {
		return nil, fmt.Errorf("%w: rows have no input variables", ErrShape)
	}
	for i, row := range xTrain {
		if len(row) != width {
			return nil, fmt.Errorf("%w: training row %d has %d values, expected %d", ErrShape, i, len(row), width)
		}
	}
	for i, row := range xTest {
		if len(row) != width {
			return nil, fmt.Errorf("%w: test row %d has %d values, expected %d", ErrShape, i, len(row), width)
		}
	}

	return &Dataset{
		XTrain:      xTrain,
		YTrain:      yTrain,
		XTest:       xTest,
		YTest:       yTest,
		NInputVar:   width,
		FunctionSet: functionSet,
	}, nil
}

// Columns transposes row-major samples into one slice per input variable.
func Columns(x [][]float64) [][]float64 {
	if len(x) == 0 {
		return nil
	}
	cols := make([][]float64, len(x[0]))
	for j := range cols {
		cols[j] = make([]float64, len(x))
		for i, row := range x {
			cols[j][i] = row[j]
		}
	}
	return cols
}

// TrainColumns returns the training inputs column-major.
func (d *Dataset) TrainColumns() [][]float64 {
	return Columns(d.XTrain)
}

// TestColumns returns the test inputs column-major, nil when there is no test split.
func (d *Dataset) TestColumns() [][]float64 {
	return Columns(d.XTest)
}

// HasTest reports whether the dataset carries a test split.
func (d *Dataset) HasTest() bool {
	return len(d.YTest) > 0
}

// AddNoise perturbs the training targets with Gaussian noise whose standard deviation is
// level times the root mean square of the clean targets.
func (d *Dataset) AddNoise(level float64, rng *rand.Rand) {
	if level <= 0 || len(d.YTrain) == 0 {
		return
	}
	rms := floats.Norm(d.YTrain, 2) / math.Sqrt(float64(len(d.YTrain)))
	scale := level * rms
	for i := range d.YTrain {
		d.YTrain[i] += rng.NormFloat64() * scale
	}
}

// FromConfig builds the configured benchmark. A non-empty function set in cfg replaces
// the benchmark's own operators.
func FromConfig(cfg types.DatasetConfig) (*Dataset, error) {
	rng := rand.New(rand.NewSource(cfg.Seed))
	d, err := Benchmark(cfg.Name, rng)
	if err != nil {
		return nil, err
	}
	if len(cfg.FunctionSet) > 0 {
		d.FunctionSet = append([]string(nil), cfg.FunctionSet...)
	}
	d.AddNoise(cfg.Noise, rng)
	return d, nil
}
