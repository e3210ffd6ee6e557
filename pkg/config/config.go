package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ishanwen-byte/gpsr-go/internal/constants"
	"github.com/ishanwen-byte/gpsr-go/internal/types"
	"github.com/ishanwen-byte/gpsr-go/pkg/dataset"
	"github.com/ishanwen-byte/gpsr-go/pkg/expr"
	"github.com/ishanwen-byte/gpsr-go/pkg/fitness"
	"github.com/ishanwen-byte/gpsr-go/pkg/optimizer"
)

// Manager handles configuration loading and validation
type Manager struct {
	config *types.Config
	path   string
}

// NewManager creates a new configuration manager
func NewManager() *Manager {
	return &Manager{
		config: getDefaultConfig(),
	}
}

// Load loads configuration from a file
func (m *Manager) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	config := getDefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	// Apply environment variable overrides
	if err := m.applyEnvOverrides(config); err != nil {
		return fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := m.validate(config); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	m.config = config
	m.path = path
	return nil
}

// Save saves configuration to a file
func (m *Manager) Save(path string) error {
	data, err := yaml.Marshal(m.config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetConfig returns the current configuration
func (m *Manager) GetConfig() *types.Config {
	return m.config
}

// SetConfig updates the configuration
func (m *Manager) SetConfig(config *types.Config) {
	m.config = config
}

// GetPath returns the configuration file path
func (m *Manager) GetPath() string {
	return m.path
}

// Validate checks the current configuration
func (m *Manager) Validate() error {
	if err := m.validate(m.config); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to the configuration
func (m *Manager) applyEnvOverrides(config *types.Config) error {
	if seed := os.Getenv(constants.EnvSeed); seed != "" {
		n, err := strconv.ParseInt(seed, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", constants.EnvSeed, err)
		}
		config.GP.Seed = n
	}
	if gens := os.Getenv(constants.EnvGenerations); gens != "" {
		n, err := strconv.Atoi(gens)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", constants.EnvGenerations, err)
		}
		config.GP.Generations = n
	}
	if size := os.Getenv(constants.EnvPopulation); size != "" {
		n, err := strconv.Atoi(size)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", constants.EnvPopulation, err)
		}
		config.GP.PopulationSize = n
	}
	if workers := os.Getenv(constants.EnvWorkers); workers != "" {
		n, err := strconv.Atoi(workers)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", constants.EnvWorkers, err)
		}
		config.GP.Workers = n
	}
	if verbose := os.Getenv(constants.EnvVerbose); verbose != "" {
		config.GP.Verbose = strings.ToLower(verbose) == "true"
	}
	if dir := os.Getenv(constants.EnvCheckpointDir); dir != "" {
		config.GP.CheckpointDir = dir
	}

	return nil
}

// validate validates the configuration
func (m *Manager) validate(config *types.Config) error {
	// Validate dataset configuration
	ds := config.Task.Dataset
	if _, ok := dataset.Lookup(ds.Name); !ok {
		return fmt.Errorf("unknown dataset %q (available: %v)", ds.Name, dataset.Benchmarks())
	}
	for _, name := range ds.FunctionSet {
		if _, ok := expr.Functions[name]; !ok && name != constants.ConstTag {
			return fmt.Errorf("unknown function %q (available: %v)", name, expr.FunctionNames())
		}
	}
	if ds.Noise < 0 {
		return fmt.Errorf("dataset noise must be non-negative")
	}

	// Validate GP configuration
	gp := config.GP
	if gp.PopulationSize <= 0 {
		return fmt.Errorf("population size must be positive")
	}
	if gp.Generations < 0 {
		return fmt.Errorf("generations must be non-negative")
	}
	if gp.PCrossover < 0 || gp.PCrossover > 1 {
		return fmt.Errorf("crossover probability must be in [0, 1]")
	}
	if gp.PMutate < 0 || gp.PMutate > 1 {
		return fmt.Errorf("mutation probability must be in [0, 1]")
	}
	if gp.TournamentSize <= 0 {
		return fmt.Errorf("tournament size must be positive")
	}
	if gp.MaxDepth < 0 || gp.MaxLen < 0 || gp.MaxConst < 0 {
		return fmt.Errorf("structural limits must be non-negative")
	}
	if gp.Workers <= 0 {
		return fmt.Errorf("workers must be positive")
	}
	if gp.HallOfFameSize <= 0 {
		return fmt.Errorf("hall of fame size must be positive")
	}
	if _, err := fitness.Make(gp.Metric); err != nil {
		return err
	}
	if gp.ConstOptimize {
		if _, err := optimizer.New(gp.ConstOptimizer, gp.ConstParams); err != nil {
			return err
		}
	}
	if gp.FailurePolicy != constants.FailureWorst && gp.FailurePolicy != constants.FailureFatal {
		return fmt.Errorf("failure policy must be %q or %q", constants.FailureWorst, constants.FailureFatal)
	}
	if gp.EarlyStopping && gp.Threshold <= 0 {
		return fmt.Errorf("early stopping threshold must be positive")
	}

	return nil
}

// getDefaultConfig returns the default configuration
func getDefaultConfig() *types.Config {
	return &types.Config{
		Task: types.TaskConfig{
			Dataset: types.DatasetConfig{
				Name: constants.DefaultDataset,
			},
		},
		GP: types.GPConfig{
			PopulationSize: constants.DefaultPopulationSize,
			PCrossover:     constants.DefaultPCrossover,
			PMutate:        constants.DefaultPMutate,
			Generations:    constants.DefaultGenerations,
			Seed:           constants.DefaultSeed,
			Verbose:        true,
			TournamentSize: constants.DefaultTournamentSize,
			MaxDepth:       constants.DefaultMaxDepth,
			MaxLen:         constants.DefaultMaxLen,
			MaxConst:       constants.DefaultMaxConst,
			Metric:         constants.DefaultMetric,
			ConstOptimize:  true,
			ConstOptimizer: constants.DefaultOptimizer,
			EarlyStopping:  false,
			Threshold:      constants.DefaultThreshold,
			Workers:        constants.DefaultWorkers,
			FailurePolicy:  constants.DefaultFailurePolicy,
			HallOfFameSize: constants.DefaultHallOfFameSize,
		},
	}
}

// Default returns a fresh default configuration
func Default() *types.Config {
	return getDefaultConfig()
}

// CreateDefaultConfig creates a default configuration file
func CreateDefaultConfig(path string) error {
	manager := NewManager()
	return manager.Save(path)
}
