package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/slim-sim/slim-sim/sim"
	"github.com/slim-sim/slim-sim/sim/store"
	"github.com/slim-sim/slim-sim/sim/trace"
)

var (
	storeKind string // Persistence backend: none, memory or sqlite
	storePath string // SQLite database path
	quiet     bool   // Suppress recipe output on stdout
)

var errRecipeRequired = errors.New("--recipe is required")

// runCmd executes one simulation described by a recipe
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one simulation from a recipe",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()

		cfg, err := loadRecipe(cmd)
		if err != nil {
			logrus.Fatalf("Unable to load recipe: %v", err)
		}

		var out io.Writer = os.Stdout
		if quiet {
			out = nil
		}
		startTime := time.Now()
		s, runErr := runSimulation(cfg, out)
		if s == nil {
			logrus.Fatalf("Unable to build simulation: %v", runErr)
		}

		s.Metrics().Print()
		if st := s.Trace(); st != nil {
			printTraceSummary(os.Stdout, trace.Summarize(st))
		}
		printRunFooter(os.Stdout, s, time.Since(startTime))

		if storeKind != "none" {
			run, err := persistRun(cmd.Context(), s, runErr)
			if err != nil {
				logrus.Fatalf("Unable to store run: %v", err)
			}
			logrus.Infof("Stored run %s (%s)", run.ID, storeKind)
		}

		if runErr != nil {
			logrus.Fatalf("Simulation terminated: %v", runErr)
		}
		logrus.Info("Simulation complete.")
	},
}

// runSimulation builds and runs cfg, copying recipe output to out when
// out is non-nil. The simulation is nil only if it could not be built.
func runSimulation(cfg *sim.Config, out io.Writer) (*sim.Simulation, error) {
	s, err := sim.NewSimulation(cfg)
	if err != nil {
		return nil, err
	}
	if out != nil {
		s.TeeOutput(out)
	}
	logrus.Infof("Starting simulation: seed=%d, generations=%d, subpopulations=%d",
		cfg.Seed, cfg.Generations, len(cfg.Subpopulations))
	return s, s.Run()
}

// persistRun saves s to the backend selected by --store.
func persistRun(ctx context.Context, s *sim.Simulation, runErr error) (store.RunRecord, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	st, err := store.NewStore(storeKind, storePath)
	if err != nil {
		return store.RunRecord{}, err
	}
	if err := st.Init(ctx); err != nil {
		return store.RunRecord{}, err
	}
	defer st.Close()
	return store.SaveSimulation(ctx, st, s, runErr)
}

func printTraceSummary(w io.Writer, ts *trace.TraceSummary) {
	fmt.Fprintln(w, "=== Fixation Trace ===")
	fmt.Fprintf(w, "Fixed Mutations      : %d\n", ts.FixedCount)
	fmt.Fprintf(w, "Lost Mutations       : %d\n", ts.LostCount)
	if ts.FixedCount == 0 {
		return
	}
	fmt.Fprintf(w, "Mean Sojourn (gens)  : %.2f\n", ts.MeanSojournTime)
	fmt.Fprintf(w, "Max Sojourn (gens)   : %d\n", ts.MaxSojournTime)
	fmt.Fprintf(w, "Mean Fixed s         : %.4g\n", ts.MeanFixedSelectionCoeff)
}

func printRunFooter(w io.Writer, s *sim.Simulation, elapsed time.Duration) {
	var individualGens int64
	for _, gs := range s.Metrics().Generations {
		individualGens += int64(gs.Individuals)
	}
	fmt.Fprintf(w, "Simulated %s individual-generations in %s; %s of output\n",
		humanize.Comma(individualGens), elapsed.Round(time.Millisecond), humanize.Bytes(uint64(s.Output().Len())))
}

func init() {
	runCmd.Flags().StringVar(&storeKind, "store", "none", "Persist the run: none, memory or sqlite")
	runCmd.Flags().StringVar(&storePath, "store-path", "slim-runs.db", "SQLite database path for --store sqlite")
	runCmd.Flags().BoolVar(&quiet, "quiet", false, "Do not echo recipe output to stdout")
}
