package fitness

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/ishanwen-byte/gpsr-go/internal/constants"
)

var ErrUnsupportedMetric = errors.New("unsupported fitness metric")

// Metric scores predictions yHat against targets y. varY is the variance of the
// targets of the split being scored. Lower is better.
type Metric func(y, yHat []float64, varY float64) float64

// Bound is a Metric with targets and their variance fixed.
type Bound func(yHat []float64) float64

var metrics = map[string]Metric{
	constants.MetricMSE: func(y, yHat []float64, _ float64) float64 {
		return meanSquared(y, yHat, 1)
	},
	constants.MetricRMSE: func(y, yHat []float64, _ float64) float64 {
		return math.Sqrt(meanSquared(y, yHat, 1))
	},
	constants.MetricNMSE: func(y, yHat []float64, varY float64) float64 {
		return meanSquared(y, yHat, varY)
	},
	constants.MetricNRMSE: func(y, yHat []float64, varY float64) float64 {
		return math.Sqrt(meanSquared(y, yHat, varY))
	},
}

// Make returns the metric registered under name.
func Make(name string) (Metric, error) {
	m, ok := metrics[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %v)", ErrUnsupportedMetric, name, Names())
	}
	return m, nil
}

// Names returns the supported metric names.
func Names() []string {
	return []string{constants.MetricMSE, constants.MetricRMSE, constants.MetricNMSE, constants.MetricNRMSE}
}

// Bind fixes y and its population variance into m.
func Bind(m Metric, y []float64) Bound {
	varY := Variance(y)
	return func(yHat []float64) float64 {
		return m(y, yHat, varY)
	}
}

// Variance is the population variance of y.
func Variance(y []float64) float64 {
	return stat.PopVariance(y, nil)
}

// MSE is the mean squared residual, the objective constant optimization minimizes.
func MSE(y, yHat []float64) float64 {
	return meanSquared(y, yHat, 1)
}

func meanSquared(y, yHat []float64, denom float64) float64 {
	if len(y) == 0 || len(yHat) != len(y) {
		return math.NaN()
	}
	sum := 0.0
	for i := range y {
		d := y[i] - yHat[i]
		sum += d * d / denom
	}
	return sum / float64(len(y))
}
