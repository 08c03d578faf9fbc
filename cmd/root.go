package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/slim-sim/slim-sim/sim"
)

var (
	recipePath  string // Path to the YAML recipe
	seed        int64  // Overrides the recipe seed when set
	generations int64  // Overrides the recipe generation count when set
	logLevel    string // Log verbosity level
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "slim-sim",
	Short: "Forward-time Wright-Fisher population genetics simulator",
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setupLogging applies --log; an unknown level is fatal.
func setupLogging() {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", logLevel)
	}
	logrus.SetLevel(level)
}

// loadRecipe reads --recipe and applies the --seed and --generations
// overrides the user set explicitly.
func loadRecipe(cmd *cobra.Command) (*sim.Config, error) {
	if recipePath == "" {
		return nil, errRecipeRequired
	}
	cfg, err := sim.LoadConfig(recipePath)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("seed") {
		logrus.Infof("Overriding recipe seed %d with --seed %d", cfg.Seed, seed)
		cfg.Seed = seed
	}
	if cmd.Flags().Changed("generations") {
		cfg.Generations = generations
	}
	return cfg, cfg.Validate()
}

// init sets up CLI flags and subcommands
func init() {
	rootCmd.PersistentFlags().StringVar(&recipePath, "recipe", "", "Path to the YAML simulation recipe")
	rootCmd.PersistentFlags().Int64Var(&seed, "seed", 1, "Random seed (overrides the recipe)")
	rootCmd.PersistentFlags().Int64Var(&generations, "generations", 0, "Number of generations (overrides the recipe)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(replicateCmd)
	rootCmd.AddCommand(consoleCmd)
}
