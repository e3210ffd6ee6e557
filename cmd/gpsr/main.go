package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ishanwen-byte/gpsr-go/internal/constants"
)

var (
	configPath   string
	seed         int64
	generations  int
	logLevel     string
	showLogbook  bool
	outputFormat string

	logger = logrus.New()

	rootCmd = &cobra.Command{
		Use:     "gpsr",
		Short:   "Genetic-programming symbolic regression",
		Long:    constants.Description,
		Version: constants.Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := logrus.ParseLevel(logLevel)
			if err != nil {
				return err
			}
			logger.SetLevel(level)
			return nil
		},
		SilenceUsage: true,
	}

	trainCmd = &cobra.Command{
		Use:   "train",
		Short: "Run a symbolic regression search on the configured benchmark",
		Args:  cobra.NoArgs,
		RunE:  runTrain, // Defined in train.go
	}

	initConfigCmd = &cobra.Command{
		Use:   "init-config [path]",
		Short: "Write the default configuration as YAML",
		Args:  cobra.ExactArgs(1),
		RunE:  runInitConfig, // Defined in train.go
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	trainCmd.Flags().StringVarP(&configPath, "config", "c", "", "configuration file (defaults apply when empty)")
	trainCmd.Flags().Int64Var(&seed, "seed", 0, "override gp.seed")
	trainCmd.Flags().IntVar(&generations, "generations", 0, "override gp.generations")
	trainCmd.Flags().BoolVar(&showLogbook, "logbook", false, "print the logbook table after training")
	trainCmd.Flags().StringVarP(&outputFormat, "output", "o", "text", "result format (text, yaml)")

	rootCmd.AddCommand(trainCmd, initConfigCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger.WithError(err).Error("Command failed")
		os.Exit(constants.ExitError)
	}
}
