package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ishanwen-byte/gpsr-go/internal/constants"
	"github.com/ishanwen-byte/gpsr-go/internal/types"
)

var envVars = []string{
	constants.EnvSeed,
	constants.EnvGenerations,
	constants.EnvPopulation,
	constants.EnvWorkers,
	constants.EnvVerbose,
	constants.EnvCheckpointDir,
}

// clearEnv unsets the override variables and restores them when the test ends.
func clearEnv(t *testing.T) {
	t.Helper()
	original := map[string]string{}
	for _, k := range envVars {
		original[k] = os.Getenv(k)
		os.Unsetenv(k)
	}
	t.Cleanup(func() {
		for k, v := range original {
			if v != "" {
				os.Setenv(k, v)
			} else {
				os.Unsetenv(k)
			}
		}
	})
}

func TestNewManager(t *testing.T) {
	manager := NewManager()
	assert.NotNil(t, manager)
	assert.NotNil(t, manager.config)
	assert.Empty(t, manager.path)
	assert.NoError(t, manager.Validate())
}

func TestLoadAndSave(t *testing.T) {
	clearEnv(t)

	tempDir, err := os.MkdirTemp("", "config_test")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	configPath := filepath.Join(tempDir, "config.yaml")

	manager := NewManager()
	manager.GetConfig().GP.Seeds = []string{"add(mul(const,x1),const)"}
	manager.GetConfig().GP.ConstParams = map[string]float64{"max_iterations": 200}
	err = manager.Save(configPath)
	require.NoError(t, err)

	_, err = os.Stat(configPath)
	require.NoError(t, err)

	newManager := NewManager()
	err = newManager.Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, manager.config, newManager.config)
	assert.Equal(t, configPath, newManager.GetPath())
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	clearEnv(t)

	tempDir, err := os.MkdirTemp("", "config_test")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	configPath := filepath.Join(tempDir, "partial.yaml")
	partial := `
task:
  dataset:
    name: Nguyen-2
    function_set: [add, sub, mul, div, const]
gp:
  population_size: 200
  early_stopping: true
  metric: rmse
`
	require.NoError(t, os.WriteFile(configPath, []byte(partial), 0644))

	manager := NewManager()
	require.NoError(t, manager.Load(configPath))

	config := manager.GetConfig()
	assert.Equal(t, "Nguyen-2", config.Task.Dataset.Name)
	assert.Equal(t, 200, config.GP.PopulationSize)
	assert.True(t, config.GP.EarlyStopping)
	assert.Equal(t, constants.MetricRMSE, config.GP.Metric)
	assert.Equal(t, constants.DefaultGenerations, config.GP.Generations)
	assert.Equal(t, constants.DefaultThreshold, config.GP.Threshold)
	assert.True(t, config.GP.ConstOptimize)
}

func TestLoadNonExistentFile(t *testing.T) {
	manager := NewManager()
	err := manager.Load("/non/existent/file.yaml")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestInvalidConfig(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "config_test")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	configPath := filepath.Join(tempDir, "invalid_config.yaml")

	invalidYAML := "invalid: yaml: content: ["
	err = os.WriteFile(configPath, []byte(invalidYAML), 0644)
	require.NoError(t, err)

	manager := NewManager()
	err = manager.Load(configPath)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(c *types.Config)
		expected string
	}{
		{"unknown dataset", func(c *types.Config) { c.Task.Dataset.Name = "Keijzer-99" }, "unknown dataset"},
		{"unknown function", func(c *types.Config) { c.Task.Dataset.FunctionSet = []string{"add", "gamma"} }, "unknown function"},
		{"negative noise", func(c *types.Config) { c.Task.Dataset.Noise = -1 }, "noise must be non-negative"},
		{"population", func(c *types.Config) { c.GP.PopulationSize = 0 }, "population size must be positive"},
		{"generations", func(c *types.Config) { c.GP.Generations = -1 }, "generations must be non-negative"},
		{"crossover", func(c *types.Config) { c.GP.PCrossover = 1.5 }, "crossover probability"},
		{"mutation", func(c *types.Config) { c.GP.PMutate = -0.1 }, "mutation probability"},
		{"tournament", func(c *types.Config) { c.GP.TournamentSize = 0 }, "tournament size must be positive"},
		{"limits", func(c *types.Config) { c.GP.MaxLen = -1 }, "structural limits"},
		{"workers", func(c *types.Config) { c.GP.Workers = 0 }, "workers must be positive"},
		{"hall of fame", func(c *types.Config) { c.GP.HallOfFameSize = 0 }, "hall of fame size"},
		{"metric", func(c *types.Config) { c.GP.Metric = "mae" }, "unsupported fitness metric"},
		{"optimizer", func(c *types.Config) { c.GP.ConstOptimizer = "annealing" }, "unknown constant optimizer"},
		{"failure policy", func(c *types.Config) { c.GP.FailurePolicy = "ignore" }, "failure policy"},
		{"threshold", func(c *types.Config) {
			c.GP.EarlyStopping = true
			c.GP.Threshold = 0
		}, "threshold must be positive"},
	}

	manager := NewManager()
	assert.NoError(t, manager.validate(manager.GetConfig()))

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			config := getDefaultConfig()
			test.mutate(config)
			err := manager.validate(config)
			require.Error(t, err)
			assert.Contains(t, err.Error(), test.expected)
		})
	}

	// optimizer is only checked when constants are optimized
	config := getDefaultConfig()
	config.GP.ConstOptimize = false
	config.GP.ConstOptimizer = "annealing"
	assert.NoError(t, manager.validate(config))
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	manager := NewManager()
	config := getDefaultConfig()

	os.Setenv(constants.EnvSeed, "123")
	os.Setenv(constants.EnvGenerations, "50")
	os.Setenv(constants.EnvPopulation, "300")
	os.Setenv(constants.EnvWorkers, "4")
	os.Setenv(constants.EnvVerbose, "false")
	os.Setenv(constants.EnvCheckpointDir, "custom-checkpoints")

	err := manager.applyEnvOverrides(config)
	require.NoError(t, err)

	assert.Equal(t, int64(123), config.GP.Seed)
	assert.Equal(t, 50, config.GP.Generations)
	assert.Equal(t, 300, config.GP.PopulationSize)
	assert.Equal(t, 4, config.GP.Workers)
	assert.False(t, config.GP.Verbose)
	assert.Equal(t, "custom-checkpoints", config.GP.CheckpointDir)
}

func TestEnvOverridesInvalid(t *testing.T) {
	clearEnv(t)
	os.Setenv(constants.EnvGenerations, "many")

	err := NewManager().applyEnvOverrides(getDefaultConfig())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), constants.EnvGenerations)
}

func TestGetSetConfig(t *testing.T) {
	manager := NewManager()

	config := manager.GetConfig()
	assert.NotNil(t, config)

	newConfig := getDefaultConfig()
	newConfig.GP.Generations = 999
	manager.SetConfig(newConfig)

	updatedConfig := manager.GetConfig()
	assert.Equal(t, 999, updatedConfig.GP.Generations)
}

func TestCreateDefaultConfig(t *testing.T) {
	clearEnv(t)

	tempDir, err := os.MkdirTemp("", "config_test")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	configPath := filepath.Join(tempDir, "default_config.yaml")

	err = CreateDefaultConfig(configPath)
	require.NoError(t, err)

	_, err = os.Stat(configPath)
	require.NoError(t, err)

	manager := NewManager()
	err = manager.Load(configPath)
	require.NoError(t, err)

	config := manager.GetConfig()
	assert.NotNil(t, config)
	assert.Equal(t, constants.DefaultPopulationSize, config.GP.PopulationSize)
	assert.Equal(t, constants.DefaultGenerations, config.GP.Generations)
	assert.Equal(t, constants.DefaultDataset, config.Task.Dataset.Name)
}
