package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ishanwen-byte/gpsr-go/pkg/config"
	"github.com/ishanwen-byte/gpsr-go/pkg/dataset"
	"github.com/ishanwen-byte/gpsr-go/pkg/trainer"
)

// summary is the printable outcome of a run.
type summary struct {
	RunID        string    `yaml:"run_id"`
	Dataset      string    `yaml:"dataset"`
	Expression   string    `yaml:"expression"`
	Size         int       `yaml:"size"`
	Constants    []float64 `yaml:"constants,omitempty"`
	TrainFitness float64   `yaml:"train_fitness"`
	TestFitness  float64   `yaml:"test_fitness"`
	Generations  int       `yaml:"generations"`
	Checkpoint   string    `yaml:"checkpoint,omitempty"`
	Duration     string    `yaml:"duration"`
}

func runTrain(cmd *cobra.Command, args []string) error {
	manager := config.NewManager()
	if configPath != "" {
		if err := manager.Load(configPath); err != nil {
			return err
		}
	}
	cfg := manager.GetConfig()
	if cmd.Flags().Changed("seed") {
		cfg.GP.Seed = seed
	}
	if cmd.Flags().Changed("generations") {
		cfg.GP.Generations = generations
	}
	if err := manager.Validate(); err != nil {
		return err
	}

	ds, err := dataset.FromConfig(cfg.Task.Dataset)
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}

	tr, err := trainer.New(*cfg, ds, trainer.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to create trainer: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.WithFields(logrus.Fields{
		"config":  manager.GetPath(),
		"dataset": cfg.Task.Dataset.Name,
		"run_id":  tr.RunID(),
	}).Info("Starting training")

	result, err := tr.Train(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	s := summary{
		RunID:        result.RunID,
		Dataset:      cfg.Task.Dataset.Name,
		Expression:   result.Best.String(),
		Size:         result.Best.Len(),
		Constants:    result.Best.Tree.ConstValues(),
		TrainFitness: result.TrainFitness,
		TestFitness:  result.TestFitness,
		Generations:  cfg.GP.Generations,
		Checkpoint:   result.Checkpoint,
		Duration:     result.Duration.String(),
	}
	switch outputFormat {
	case "yaml":
		data, err := yaml.Marshal(s)
		if err != nil {
			return fmt.Errorf("failed to marshal result: %w", err)
		}
		fmt.Fprint(out, string(data))
	default:
		fmt.Fprintf(out, "best:          %s\n", s.Expression)
		fmt.Fprintf(out, "size:          %d\n", s.Size)
		fmt.Fprintf(out, "train fitness: %g\n", s.TrainFitness)
		fmt.Fprintf(out, "test fitness:  %g\n", s.TestFitness)
		if s.Checkpoint != "" {
			fmt.Fprintf(out, "checkpoint:    %s\n", s.Checkpoint)
		}
	}
	if showLogbook {
		fmt.Fprintln(out)
		fmt.Fprint(out, result.Logbook.String())
	}
	return nil
}

func runInitConfig(cmd *cobra.Command, args []string) error {
	if err := config.CreateDefaultConfig(args[0]); err != nil {
		return err
	}
	logger.WithField("file", args[0]).Info("Wrote default configuration")
	return nil
}
