package cmd

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/stat"

	"github.com/slim-sim/slim-sim/sim"
	"github.com/slim-sim/slim-sim/sim/store"
)

var (
	replicates  int // Number of independent runs
	parallelism int // Maximum concurrent runs
)

// replicateResult is the outcome of one replicate.
type replicateResult struct {
	Seed          int64
	Final         sim.GenerationStats
	Substitutions int
	RunID         string
	Err           error
}

// replicateCmd runs the same recipe under consecutive seeds in parallel
var replicateCmd = &cobra.Command{
	Use:   "replicate",
	Short: "Run independent replicates of a recipe under consecutive seeds",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()

		cfg, err := loadRecipe(cmd)
		if err != nil {
			logrus.Fatalf("Unable to load recipe: %v", err)
		}
		if replicates < 1 || parallelism < 1 {
			logrus.Fatalf("--replicates and --parallel must be at least 1")
		}

		var st store.Store
		if storeKind != "none" {
			st, err = store.NewStore(storeKind, storePath)
			if err == nil {
				err = st.Init(cmd.Context())
			}
			if err != nil {
				logrus.Fatalf("Unable to open store: %v", err)
			}
			defer st.Close()
		}

		var mu sync.Mutex
		results := runReplicates(cfg, replicates, parallelism, func(s *sim.Simulation, runErr error) string {
			if st == nil {
				return ""
			}
			mu.Lock()
			defer mu.Unlock()
			run, err := store.SaveSimulation(cmd.Context(), st, s, runErr)
			if err != nil {
				logrus.Errorf("Unable to store replicate seed=%d: %v", s.Config().Seed, err)
				return ""
			}
			return run.ID
		})
		printReplicates(os.Stdout, results)
	},
}

// runReplicates runs n copies of cfg with seeds cfg.Seed, cfg.Seed+1, ...
// on at most parallel goroutines. Each replicate owns its Simulation, so
// results depend only on the seed. save, if non-nil, is called once per
// finished replicate and returns the stored run ID.
func runReplicates(cfg *sim.Config, n, parallel int, save func(*sim.Simulation, error) string) []replicateResult {
	results := make([]replicateResult, n)
	p := pool.New().WithMaxGoroutines(parallel)
	for i := range n {
		p.Go(func() {
			c := *cfg
			c.Seed = cfg.Seed + int64(i)
			res := replicateResult{Seed: c.Seed}

			s, err := sim.NewSimulation(&c)
			if err != nil {
				res.Err = err
				results[i] = res
				return
			}
			res.Err = s.Run()
			res.Final, _ = s.Metrics().Last()
			res.Substitutions = len(s.Population().Substitutions())
			if save != nil {
				res.RunID = save(s, res.Err)
			}
			logrus.Debugf("replicate seed=%d finished", c.Seed)
			results[i] = res
		})
	}
	p.Wait()
	return results
}

func printReplicates(w io.Writer, results []replicateResult) {
	fmt.Fprintln(w, "=== Replicates ===")
	fmt.Fprintf(w, "%-8s %-10s %-14s %-10s %-10s %s\n", "seed", "segsites", "substitutions", "mean_w", "diversity", "status")
	var fitness, diversity, subs []float64
	for _, r := range results {
		status := "ok"
		if r.Err != nil {
			status = r.Err.Error()
		} else {
			fitness = append(fitness, r.Final.MeanFitness)
			diversity = append(diversity, r.Final.Diversity)
			subs = append(subs, float64(r.Substitutions))
		}
		fmt.Fprintf(w, "%-8d %-10s %-14s %-10.4f %-10.4f %s\n", r.Seed,
			humanize.Comma(int64(r.Final.Segregating)), humanize.Comma(int64(r.Substitutions)),
			r.Final.MeanFitness, r.Final.Diversity, status)
	}
	if len(fitness) < 2 {
		return
	}
	meanW, sdW := stat.MeanStdDev(fitness, nil)
	meanD, sdD := stat.MeanStdDev(diversity, nil)
	fmt.Fprintf(w, "Mean Fitness         : %.4f ± %.4f\n", meanW, sdW)
	fmt.Fprintf(w, "Diversity            : %.4f ± %.4f\n", meanD, sdD)
	fmt.Fprintf(w, "Substitutions        : %.2f\n", stat.Mean(subs, nil))
}

func init() {
	replicateCmd.Flags().IntVar(&replicates, "replicates", 10, "Number of replicates")
	replicateCmd.Flags().IntVar(&parallelism, "parallel", 4, "Maximum replicates run concurrently")
	replicateCmd.Flags().StringVar(&storeKind, "store", "none", "Persist each replicate: none, memory or sqlite")
	replicateCmd.Flags().StringVar(&storePath, "store-path", "slim-runs.db", "SQLite database path for --store sqlite")
}
