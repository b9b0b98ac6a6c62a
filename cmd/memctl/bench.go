package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/joshuapare/memkit/internal/replay"
)

var (
	benchStrategy   string
	benchCapacity   string
	benchBlockSize  string
	benchBlockCount int
	benchOps        int
	benchMaxSize    int
	benchSeed       uint64
)

func init() {
	cmd := newBenchCmd()
	addAllocatorFlags(cmd, &benchStrategy, &benchCapacity, &benchBlockSize, &benchBlockCount)
	cmd.Flags().IntVar(&benchOps, "ops", 100000, "Number of operations to generate")
	cmd.Flags().IntVar(&benchMaxSize, "max-size", 256, "Largest allocation size")
	cmd.Flags().Uint64Var(&benchSeed, "seed", 1, "Workload seed")
	rootCmd.AddCommand(cmd)
}

func newBenchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bench",
		Short: "Run a generated alloc/free workload",
		Long: `The bench command generates a pseudo-random alloc/free workload and
replays it, reporting throughput and the final allocator state. The same seed
always generates the same workload.

Example:
  memctl bench --strategy freelist --ops 1000000
  memctl bench --strategy pool --block-size 128 --max-size 128 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench()
		},
	}
}

// BenchResult is the bench command output.
type BenchResult struct {
	Strategy  replay.Strategy `json:"strategy"`
	Ops       int             `json:"ops"`
	Seed      uint64          `json:"seed"`
	Elapsed   time.Duration   `json:"elapsed_ns"`
	OpsPerSec float64         `json:"ops_per_sec"`
	Report    replay.Report   `json:"report"`
}

func runBench() error {
	cfg, err := buildConfig(benchStrategy, benchCapacity, benchBlockSize, benchBlockCount)
	if err != nil {
		return err
	}

	maxSize := benchMaxSize
	if cfg.Strategy == replay.Pool {
		maxSize = min(maxSize, cfg.BlockSize)
	}
	ops := replay.Generate(benchOps, maxSize, benchSeed)
	printVerbose("Generated %d operations (seed %d, max size %d)\n", len(ops), benchSeed, maxSize)

	r, err := replay.New(cfg)
	if err != nil {
		return err
	}
	start := time.Now()
	r.Run(ops)
	elapsed := time.Since(start)

	rep, err := r.Finish()
	if err != nil {
		return fmt.Errorf("bench failed: %w", err)
	}

	result := BenchResult{
		Strategy: cfg.Strategy,
		Ops:      len(ops),
		Seed:     benchSeed,
		Elapsed:  elapsed,
		Report:   rep,
	}
	if elapsed > 0 {
		result.OpsPerSec = float64(len(ops)) / elapsed.Seconds()
	}

	if jsonOut {
		return printJSON(result)
	}

	printInfo("Strategy:     %s\n", result.Strategy)
	printInfo("Operations:   %d in %s\n", result.Ops, elapsed.Round(time.Microsecond))
	printInfo("Throughput:   %.0f ops/s\n", result.OpsPerSec)
	printInfo("Allocs:       %d (%d failed)\n", rep.Allocs, rep.Stats.AllocFailures)
	printInfo("Frees:        %d\n", rep.Frees)
	printInfo("Peak:         %s of %s\n", formatBytes(rep.Stats.Peak), formatBytes(rep.Stats.Capacity))
	return nil
}
