package dataset

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ishanwen-byte/gpsr-go/internal/types"
)

func TestNewValidatesShape(t *testing.T) {
	tests := []struct {
		name   string
		xTrain [][]float64
		yTrain []float64
		xTest  [][]float64
		yTest  []float64
		valid  bool
	}{
		{
			name:   "valid",
			xTrain: [][]float64{{1, 2}, {3, 4}},
			yTrain: []float64{1, 2},
			xTest:  [][]float64{{5, 6}},
			yTest:  []float64{3},
			valid:  true,
		},
		{
			name:   "no test split",
			xTrain: [][]float64{{1}},
			yTrain: []float64{1},
			valid:  true,
		},
		{
			name:   "empty training split",
			xTrain: nil,
			yTrain: nil,
		},
		{
			name:   "target count mismatch",
			xTrain: [][]float64{{1}, {2}},
			yTrain: []float64{1},
		},
		{
			name:   "ragged rows",
			xTrain: [][]float64{{1, 2}, {3}},
			yTrain: []float64{1, 2},
		},
		{
			name:   "test width mismatch",
			xTrain: [][]float64{{1, 2}},
			yTrain: []float64{1},
			xTest:  [][]float64{{1}},
			yTest:  []float64{1},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			d, err := New(test.xTrain, test.yTrain, test.xTest, test.yTest, nil)
			if test.valid {
				require.NoError(t, err)
				assert.Equal(t, len(test.xTrain[0]), d.NInputVar)
			} else {
				assert.True(t, errors.Is(err, ErrShape))
			}
		})
	}
}

func TestColumns(t *testing.T) {
	cols := Columns([][]float64{{1, 2}, {3, 4}, {5, 6}})
	assert.Equal(t, [][]float64{{1, 3, 5}, {2, 4, 6}}, cols)
	assert.Nil(t, Columns(nil))
}

func TestBenchmark(t *testing.T) {
	for _, name := range Benchmarks() {
		t.Run(name, func(t *testing.T) {
			d, err := Benchmark(name, rand.New(rand.NewSource(1)))
			require.NoError(t, err)
			assert.Equal(t, 1, d.NInputVar)
			assert.Len(t, d.YTrain, 20)
			assert.True(t, d.HasTest())
			assert.NotEmpty(t, d.FunctionSet)

			spec, ok := Lookup(name)
			require.True(t, ok)
			for i, row := range d.XTrain {
				assert.GreaterOrEqual(t, row[0], spec.Low)
				assert.LessOrEqual(t, row[0], spec.High)
				assert.InDelta(t, spec.Fn(row[0]), d.YTrain[i], 1e-12)
			}
		})
	}

	_, err := Benchmark("Nguyen-99", rand.New(rand.NewSource(1)))
	assert.True(t, errors.Is(err, ErrUnknownBenchmark))
}

func TestBenchmarkDeterministic(t *testing.T) {
	a, err := Benchmark("R1", rand.New(rand.NewSource(3)))
	require.NoError(t, err)
	b, err := Benchmark("R1", rand.New(rand.NewSource(3)))
	require.NoError(t, err)
	assert.Equal(t, a.XTrain, b.XTrain)
	assert.Equal(t, a.YTest, b.YTest)
}

func TestFromConfig(t *testing.T) {
	clean, err := FromConfig(types.DatasetConfig{Name: "Linear", Seed: 5})
	require.NoError(t, err)
	assert.Equal(t, []string{"add", "sub", "mul", "div"}, clean.FunctionSet)

	noisy, err := FromConfig(types.DatasetConfig{
		Name:        "Linear",
		Seed:        5,
		Noise:       0.1,
		FunctionSet: []string{"add", "mul"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"add", "mul"}, noisy.FunctionSet)
	assert.Equal(t, clean.XTrain, noisy.XTrain)

	diff := 0.0
	for i := range clean.YTrain {
		diff += math.Abs(clean.YTrain[i] - noisy.YTrain[i])
	}
	assert.Greater(t, diff, 0.0)
	assert.Equal(t, clean.YTest, noisy.YTest)
}
