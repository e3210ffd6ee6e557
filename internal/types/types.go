package types

// Config represents the complete configuration of a symbolic regression run
type Config struct {
	Task TaskConfig `yaml:"task" json:"task"`
	GP   GPConfig   `yaml:"gp" json:"gp"`
}

// TaskConfig describes the regression task
type TaskConfig struct {
	Dataset DatasetConfig `yaml:"dataset" json:"dataset"`
}

// DatasetConfig selects the benchmark dataset and the operators allowed for it
type DatasetConfig struct {
	Name        string   `yaml:"name" json:"name"`
	FunctionSet []string `yaml:"function_set,omitempty" json:"function_set,omitempty"`
	Noise       float64  `yaml:"noise" json:"noise"`
	Seed        int64    `yaml:"seed" json:"seed"`
}

// GPConfig represents the genetic-programming search configuration
type GPConfig struct {
	PopulationSize int                `yaml:"population_size" json:"population_size"`
	PCrossover     float64            `yaml:"p_crossover" json:"p_crossover"`
	PMutate        float64            `yaml:"p_mutate" json:"p_mutate"`
	Generations    int                `yaml:"generations" json:"generations"`
	Seed           int64              `yaml:"seed" json:"seed"`
	Verbose        bool               `yaml:"verbose" json:"verbose"`
	TournamentSize int                `yaml:"tournament_size" json:"tournament_size"`
	MaxDepth       int                `yaml:"max_depth" json:"max_depth"`
	MaxLen         int                `yaml:"max_len" json:"max_len"`
	MaxConst       int                `yaml:"max_const" json:"max_const"`
	Metric         string             `yaml:"metric" json:"metric"`
	ConstOptimize  bool               `yaml:"const_optimize" json:"const_optimize"`
	ConstOptimizer string             `yaml:"const_optimizer" json:"const_optimizer"`
	ConstParams    map[string]float64 `yaml:"const_params,omitempty" json:"const_params,omitempty"`
	EarlyStopping  bool               `yaml:"early_stopping" json:"early_stopping"`
	Threshold      float64            `yaml:"threshold" json:"threshold"`
	Workers        int                `yaml:"workers" json:"workers"`
	FailurePolicy  string             `yaml:"failure_policy" json:"failure_policy"`
	HallOfFameSize int                `yaml:"hall_of_fame_size" json:"hall_of_fame_size"`
	CheckpointDir  string             `yaml:"checkpoint_dir" json:"checkpoint_dir"`
	ResumeFrom     string             `yaml:"resume_from,omitempty" json:"resume_from,omitempty"`
	Seeds          []string           `yaml:"seeds,omitempty" json:"seeds,omitempty"`
}

// EvaluatorConfig carries the evaluation protocol settings derived from GPConfig
type EvaluatorConfig struct {
	Metric        string  `yaml:"metric" json:"metric"`
	ConstOptimize bool    `yaml:"const_optimize" json:"const_optimize"`
	EarlyStopping bool    `yaml:"early_stopping" json:"early_stopping"`
	Threshold     float64 `yaml:"threshold" json:"threshold"`
	FailurePolicy string  `yaml:"failure_policy" json:"failure_policy"`
}

// Evaluator returns the evaluation settings of the GP configuration
func (c GPConfig) Evaluator() EvaluatorConfig {
	return EvaluatorConfig{
		Metric:        c.Metric,
		ConstOptimize: c.ConstOptimize,
		EarlyStopping: c.EarlyStopping,
		Threshold:     c.Threshold,
		FailurePolicy: c.FailurePolicy,
	}
}
