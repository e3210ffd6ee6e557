package evaluator

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/ishanwen-byte/gpsr-go/pkg/population"
)

// EvalFunc scores one individual.
type EvalFunc func(ind *population.Individual) (float64, error)

// Mapper applies an EvalFunc to a batch, returning results in input order.
type Mapper interface {
	Map(ctx context.Context, fn EvalFunc, inds []*population.Individual) ([]float64, error)
}

// SerialMapper evaluates one individual at a time and stops at the first error.
type SerialMapper struct{}

// Map implements Mapper.
func (SerialMapper) Map(ctx context.Context, fn EvalFunc, inds []*population.Individual) ([]float64, error) {
	results := make([]float64, len(inds))
	for i, ind := range inds {
		v, err := fn(ind)
		if err != nil {
			return nil, err
		}
		results[i] = v
	}
	return results, nil
}

// ParallelMapper evaluates up to Workers individuals at once. The first error cancels
// the evaluations that have not started yet.
type ParallelMapper struct {
	Workers int
}

// Map implements Mapper.
func (m ParallelMapper) Map(ctx context.Context, fn EvalFunc, inds []*population.Individual) ([]float64, error) {
	results := make([]float64, len(inds))

	g, gctx := errgroup.WithContext(ctx)
	if m.Workers > 0 {
		g.SetLimit(m.Workers)
	}
	for i, ind := range inds {
		i, ind := i, ind
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			v, err := fn(ind)
			if err != nil {
				return err
			}
			results[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// NewMapper selects SerialMapper for one worker and ParallelMapper otherwise.
func NewMapper(workers int) Mapper {
	if workers <= 1 {
		return SerialMapper{}
	}
	return ParallelMapper{Workers: workers}
}
