package stats

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/ishanwen-byte/gpsr-go/pkg/population"
)

// Reducer summarizes a sample.
type Reducer func(values []float64) float64

// Mean averages the finite values, NaN when there are none.
func Mean(values []float64) float64 {
	finite := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			finite = append(finite, v)
		}
	}
	if len(finite) == 0 {
		return math.NaN()
	}
	return stat.Mean(finite, nil)
}

// Min is the smallest value, NaN for an empty sample.
func Min(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	return floats.Min(values)
}

// Statistics extracts one value per individual and reduces it with registered functions.
type Statistics struct {
	key      func(*population.Individual) float64
	fields   []string
	reducers []Reducer
}

// NewStatistics creates statistics over key.
func NewStatistics(key func(*population.Individual) float64) *Statistics {
	return &Statistics{key: key}
}

// FitnessKey reads the fitness value.
func FitnessKey(ind *population.Individual) float64 {
	return ind.Fitness.Value()
}

// SizeKey reads the node count.
func SizeKey(ind *population.Individual) float64 {
	return float64(ind.Len())
}

// Register adds a named reducer. Fields compile in registration order.
func (s *Statistics) Register(name string, fn Reducer) *Statistics {
	s.fields = append(s.fields, name)
	s.reducers = append(s.reducers, fn)
	return s
}

// Fields returns the registered names.
func (s *Statistics) Fields() []string {
	return s.fields
}

// Compile reduces the whole population.
func (s *Statistics) Compile(pop []*population.Individual) map[string]float64 {
	values := make([]float64, len(pop))
	for i, ind := range pop {
		values[i] = s.key(ind)
	}
	out := make(map[string]float64, len(s.fields))
	for i, name := range s.fields {
		out[name] = s.reducers[i](values)
	}
	return out
}

// MultiStatistics groups Statistics into named chapters.
type MultiStatistics struct {
	chapters []string
	stats    map[string]*Statistics
}

// NewMultiStatistics creates an empty grouping.
func NewMultiStatistics() *MultiStatistics {
	return &MultiStatistics{stats: make(map[string]*Statistics)}
}

// Add registers s under chapter.
func (m *MultiStatistics) Add(chapter string, s *Statistics) *MultiStatistics {
	if _, exists := m.stats[chapter]; !exists {
		m.chapters = append(m.chapters, chapter)
	}
	m.stats[chapter] = s
	return m
}

// Chapters returns chapter names in registration order.
func (m *MultiStatistics) Chapters() []string {
	return m.chapters
}

// Fields returns the fields of chapter.
func (m *MultiStatistics) Fields(chapter string) []string {
	if s, ok := m.stats[chapter]; ok {
		return s.Fields()
	}
	return nil
}

// Compile computes every chapter over pop.
func (m *MultiStatistics) Compile(pop []*population.Individual) map[string]map[string]float64 {
	out := make(map[string]map[string]float64, len(m.chapters))
	for _, ch := range m.chapters {
		out[ch] = m.stats[ch].Compile(pop)
	}
	return out
}

// Default returns the fitness (avg, min) and size (avg) chapters a run records.
func Default() *MultiStatistics {
	return NewMultiStatistics().
		Add("fitness", NewStatistics(FitnessKey).Register("avg", Mean).Register("min", Min)).
		Add("size", NewStatistics(SizeKey).Register("avg", Mean))
}
