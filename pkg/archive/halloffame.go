package archive

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ishanwen-byte/gpsr-go/pkg/population"
)

// HallOfFame keeps the best individuals ever evaluated, best first.
// Individuals with invalid fitness are never stored, and an individual whose tree
// equals a stored one is skipped. Reads may run concurrently with each other.
type HallOfFame struct {
	maxSize int
	items   []*population.Individual

	mu     sync.RWMutex
	logger *logrus.Logger
}

// NewHallOfFame creates a hall of fame holding at most maxSize individuals.
func NewHallOfFame(maxSize int, logger *logrus.Logger) *HallOfFame {
	if maxSize < 1 {
		maxSize = 1
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &HallOfFame{maxSize: maxSize, logger: logger}
}

// Update offers every individual of pop. Stored entries are deep copies.
func (h *HallOfFame) Update(pop []*population.Individual) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, ind := range pop {
		if !ind.Fitness.Valid() {
			continue
		}
		full := len(h.items) >= h.maxSize
		if full && !ind.Fitness.Better(h.items[len(h.items)-1].Fitness) {
			continue
		}
		if h.contains(ind) {
			continue
		}
		if full {
			h.items = h.items[:len(h.items)-1]
		}
		pos := h.insert(ind.Clone())
		if pos == 0 {
			h.logger.WithFields(logrus.Fields{
				"fitness":    ind.Fitness.Value(),
				"size":       ind.Len(),
				"expression": ind.String(),
			}).Debug("New best individual")
		}
	}
}

func (h *HallOfFame) contains(ind *population.Individual) bool {
	for _, it := range h.items {
		if it.Tree.Equal(ind.Tree) {
			return true
		}
	}
	return false
}

// insert places ind after every entry that is not worse than it.
func (h *HallOfFame) insert(ind *population.Individual) int {
	pos := len(h.items)
	for i, it := range h.items {
		if ind.Fitness.Better(it.Fitness) {
			pos = i
			break
		}
	}
	h.items = append(h.items, nil)
	copy(h.items[pos+1:], h.items[pos:])
	h.items[pos] = ind
	return pos
}

// Len is the number of stored individuals.
func (h *HallOfFame) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.items)
}

// MaxSize is the capacity.
func (h *HallOfFame) MaxSize() int {
	return h.maxSize
}

// Best returns a copy of the best individual, or false when empty.
func (h *HallOfFame) Best() (*population.Individual, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.items) == 0 {
		return nil, false
	}
	return h.items[0].Clone(), true
}

// Items returns copies of the stored individuals, best first.
func (h *HallOfFame) Items() []*population.Individual {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]*population.Individual, len(h.items))
	for i, it := range h.items {
		out[i] = it.Clone()
	}
	return out
}

// Clear empties the hall of fame.
func (h *HallOfFame) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.items = nil
}
