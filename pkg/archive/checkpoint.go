package archive

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ishanwen-byte/gpsr-go/internal/constants"
	"github.com/ishanwen-byte/gpsr-go/internal/types"
	"github.com/ishanwen-byte/gpsr-go/pkg/expr"
	"github.com/ishanwen-byte/gpsr-go/pkg/population"
	"github.com/ishanwen-byte/gpsr-go/pkg/stats"
)

// CheckpointVersion is the format version written into every checkpoint.
const CheckpointVersion = "1.0"

// LatestCheckpoint is the file name that always holds the most recent checkpoint.
const LatestCheckpoint = "latest.json"

// Entry is a stored hall-of-fame individual. Non-finite fitness is written as null.
type Entry struct {
	Expression string    `json:"expression"`
	Fitness    *float64  `json:"fitness"`
	Size       int       `json:"size"`
	Height     int       `json:"height"`
	Constants  []float64 `json:"constants,omitempty"`
}

// RecordEntry is a logbook record with non-finite values written as null.
type RecordEntry struct {
	Gen    int                            `json:"gen"`
	NEvals int                            `json:"nevals"`
	Stats  map[string]map[string]*float64 `json:"stats"`
}

// Checkpoint is the persisted result of a run.
type Checkpoint struct {
	Version     string        `json:"version"`
	RunID       string        `json:"run_id"`
	CreatedAt   time.Time     `json:"created_at"`
	Generations int           `json:"generations"`
	HallOfFame  []Entry       `json:"hall_of_fame"`
	Logbook     []RecordEntry `json:"logbook"`
	Config      types.Config  `json:"config"`
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// NewCheckpoint snapshots hof and lb.
func NewCheckpoint(runID string, cfg types.Config, hof *HallOfFame, lb *stats.Logbook) *Checkpoint {
	cp := &Checkpoint{
		Version:   CheckpointVersion,
		RunID:     runID,
		CreatedAt: time.Now(),
		Config:    cfg,
	}
	if hof != nil {
		for _, ind := range hof.Items() {
			cp.HallOfFame = append(cp.HallOfFame, Entry{
				Expression: ind.String(),
				Fitness:    finite(ind.Fitness.Value()),
				Size:       ind.Len(),
				Height:     ind.Tree.Height(),
				Constants:  ind.Tree.ConstValues(),
			})
		}
	}
	if lb != nil {
		for _, r := range lb.Records {
			entry := RecordEntry{Gen: r.Gen, NEvals: r.NEvals, Stats: make(map[string]map[string]*float64)}
			for ch, fields := range r.Stats {
				entry.Stats[ch] = make(map[string]*float64, len(fields))
				for f, v := range fields {
					entry.Stats[ch][f] = finite(v)
				}
			}
			cp.Logbook = append(cp.Logbook, entry)
		}
		if n := len(lb.Records); n > 0 {
			cp.Generations = lb.Records[n-1].Gen
		}
	}
	return cp
}

// Individuals parses the stored hall of fame back into individuals over ps.
// Constant slots keep their optimized values.
func (cp *Checkpoint) Individuals(ps *expr.PrimitiveSet) ([]*population.Individual, error) {
	out := make([]*population.Individual, 0, len(cp.HallOfFame))
	for i, e := range cp.HallOfFame {
		tree, err := expr.Parse(ps, e.Expression)
		if err != nil {
			return nil, fmt.Errorf("failed to parse hall of fame entry %d: %w", i, err)
		}
		ind := population.New(tree)
		if e.Fitness != nil {
			ind.Fitness.Set(*e.Fitness)
		} else {
			ind.Fitness.Set(math.Inf(1))
		}
		out = append(out, ind)
	}
	return out, nil
}

// SaveCheckpoint writes cp to dir as checkpoint_<run id>.json and latest.json and
// returns the path of the former.
func SaveCheckpoint(dir string, cp *Checkpoint, logger *logrus.Logger) (string, error) {
	if dir == "" {
		dir = filepath.Join(constants.OutputDir, constants.CheckpointDir)
	}
	if logger == nil {
		logger = logrus.New()
	}

	data, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal checkpoint: %w", err)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create checkpoint directory: %w", err)
	}

	checkpointFile := filepath.Join(dir, fmt.Sprintf("checkpoint_%s.json", cp.RunID))
	if err := os.WriteFile(checkpointFile, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write checkpoint file: %w", err)
	}

	latestFile := filepath.Join(dir, LatestCheckpoint)
	if err := os.WriteFile(latestFile, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write latest checkpoint: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"run_id":      cp.RunID,
		"generations": cp.Generations,
		"file":        checkpointFile,
	}).Info("Saved checkpoint")

	return checkpointFile, nil
}

// LoadCheckpoint reads a checkpoint file.
func LoadCheckpoint(path string) (*Checkpoint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read checkpoint file: %w", err)
	}

	var cp Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal checkpoint: %w", err)
	}
	if cp.Version != CheckpointVersion {
		return nil, fmt.Errorf("unsupported checkpoint version %q", cp.Version)
	}
	return &cp, nil
}
