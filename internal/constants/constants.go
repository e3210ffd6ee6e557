package constants

// Application constants
const (
	Name        = "gpsr-go"
	Version     = "1.0.0"
	Description = "Genetic-programming symbolic regression with per-individual constant optimization"

	// Default GP configuration values
	DefaultPopulationSize = 1000
	DefaultPCrossover     = 0.5
	DefaultPMutate        = 0.1
	DefaultGenerations    = 1000
	DefaultSeed           = 0
	DefaultTournamentSize = 3
	DefaultMaxDepth       = 17
	DefaultMaxLen         = 30
	DefaultMaxConst       = 0 // 0 = unlimited
	DefaultWorkers        = 1
	DefaultHallOfFameSize = 1

	// Early stopping
	DefaultThreshold = 1e-12
	SentinelFitness  = 1.0

	// Tree generation bounds used for the initial population and for mutation subtrees
	InitMinDepth   = 1
	InitMaxDepth   = 2
	MutateMinDepth = 0
	MutateMaxDepth = 2

	// ConstTag is the canonical name of an optimizable constant slot. Every constant
	// node carrying this name is re-optimized on each evaluation.
	ConstTag = "const"

	// ConstInitial is the value a freshly generated constant slot starts from.
	ConstInitial = 1.0

	// Directory names
	OutputDir     = "gpsr_output"
	CheckpointDir = "checkpoints"

	// Exit codes
	ExitSuccess = 0
	ExitError   = 1
)

// Fitness metric names
const (
	MetricMSE   = "mse"
	MetricRMSE  = "rmse"
	MetricNMSE  = "nmse"
	MetricNRMSE = "nrmse"

	DefaultMetric = MetricNMSE
)

// Constant optimizer names
const (
	OptimizerNelderMead = "nelder-mead"
	OptimizerScipy      = "scipy" // alias for nelder-mead
	OptimizerBFGS       = "bfgs"
	OptimizerLBFGS      = "lbfgs"

	DefaultOptimizer = OptimizerNelderMead
)

// Evaluation failure policies
const (
	FailureWorst = "worst"
	FailureFatal = "fatal"

	DefaultFailurePolicy = FailureWorst
)

// Default dataset
const (
	DefaultDataset = "R1"
)

// Environment variable overrides
const (
	EnvSeed          = "GPSR_SEED"
	EnvGenerations   = "GPSR_GENERATIONS"
	EnvPopulation    = "GPSR_POPULATION"
	EnvWorkers       = "GPSR_WORKERS"
	EnvVerbose       = "GPSR_VERBOSE"
	EnvCheckpointDir = "GPSR_CHECKPOINT_DIR"
)
