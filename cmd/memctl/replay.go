package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joshuapare/memkit/internal/replay"
	"github.com/joshuapare/memkit/internal/trace"
)

var (
	replayStrategy   string
	replayCapacity   string
	replayBlockSize  string
	replayBlockCount int
	replayEncoding   string
)

func init() {
	cmd := newReplayCmd()
	addAllocatorFlags(cmd, &replayStrategy, &replayCapacity, &replayBlockSize, &replayBlockCount)
	cmd.Flags().StringVar(&replayEncoding, "encoding", string(trace.EncodingAuto), "Trace encoding: auto, utf8, utf16, latin1")
	rootCmd.AddCommand(cmd)
}

// addAllocatorFlags registers the flags that pick and size an allocator.
func addAllocatorFlags(cmd *cobra.Command, strategy, capacity, blockSize *string, blockCount *int) {
	cmd.Flags().StringVarP(strategy, "strategy", "s", string(replay.FreeList), "Allocator: linear, stack, pool, freelist")
	cmd.Flags().StringVar(capacity, "capacity", "1m", "Region size for linear, stack and freelist (k/m/g suffixes)")
	cmd.Flags().StringVar(blockSize, "block-size", "64", "Pool block size (k/m/g suffixes)")
	cmd.Flags().IntVar(blockCount, "block-count", 1024, "Pool block count")
}

func newReplayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "replay <trace>",
		Short: "Replay an allocation trace",
		Long: `The replay command runs a trace file against one allocator and reports
allocation failures, ignored frees and ids still live at the end.

Trace lines are "alloc <id> [size [alignment]]", "free <id>", "reset",
"mark <name>" and "rewind <name>"; '#' starts a comment.

Example:
  memctl replay frame.trace
  memctl replay frame.trace --strategy stack --capacity 64k
  memctl replay ids.trace --strategy pool --block-size 32 --block-count 256 --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(args)
		},
	}
}

// buildConfig turns the allocator flags into a replay.Config.
func buildConfig(strategy, capacity, blockSize string, blockCount int) (replay.Config, error) {
	st, err := replay.ParseStrategy(strategy)
	if err != nil {
		return replay.Config{}, err
	}
	capBytes, err := trace.ParseSize(capacity)
	if err != nil {
		return replay.Config{}, fmt.Errorf("invalid --capacity: %w", err)
	}
	bs, err := trace.ParseSize(blockSize)
	if err != nil {
		return replay.Config{}, fmt.Errorf("invalid --block-size: %w", err)
	}
	opts, err := allocatorOptions(string(st))
	if err != nil {
		return replay.Config{}, err
	}
	return replay.Config{
		Strategy:   st,
		Capacity:   capBytes,
		BlockSize:  bs,
		BlockCount: blockCount,
		Options:    opts,
	}, nil
}

func runReplay(args []string) error {
	tracePath := args[0]

	cfg, err := buildConfig(replayStrategy, replayCapacity, replayBlockSize, replayBlockCount)
	if err != nil {
		return err
	}

	printVerbose("Parsing trace: %s\n", tracePath)
	ops, err := trace.ParseFile(tracePath, trace.Encoding(strings.ToLower(replayEncoding)))
	if err != nil {
		return fmt.Errorf("failed to parse trace: %w", err)
	}
	printVerbose("Replaying %d operations on %s\n", len(ops), cfg.Strategy)

	rep, err := replay.Replay(cfg, ops)
	if err != nil {
		return fmt.Errorf("replay failed: %w", err)
	}

	if jsonOut {
		return printJSON(rep)
	}
	printReport(rep)
	return nil
}

func printReport(rep replay.Report) {
	printInfo("Strategy:     %s\n", rep.Strategy)
	printInfo("Operations:   %d\n", rep.Ops)
	printInfo("Allocs:       %d\n", rep.Allocs)
	printInfo("Frees:        %d\n", rep.Frees)
	if rep.Ignored > 0 {
		printInfo("Ignored:      %d (strategy cannot free individually)\n", rep.Ignored)
	}
	if rep.Resets > 0 || rep.Rewinds > 0 {
		printInfo("Resets:       %d\n", rep.Resets)
		printInfo("Rewinds:      %d\n", rep.Rewinds)
	}
	printInfo("Capacity:     %s\n", formatBytes(rep.Stats.Capacity))
	printInfo("Used:         %s\n", formatBytes(rep.Stats.Used))
	printInfo("Peak:         %s\n", formatBytes(rep.Stats.Peak))
	if rep.Stats.Splits > 0 || rep.Stats.Coalesces > 0 {
		printInfo("Splits:       %d\n", rep.Stats.Splits)
		printInfo("Coalesces:    %d\n", rep.Stats.Coalesces)
	}

	printInfo("\nFailures:     %d\n", len(rep.Failures))
	for _, f := range rep.Failures {
		if f.ID != "" {
			printInfo("  line %d: %s %s: %s\n", f.Line, f.Op, f.ID, f.Error)
		} else {
			printInfo("  line %d: %s: %s\n", f.Line, f.Op, f.Error)
		}
	}

	printInfo("Leaked:       %d ids, %s\n", len(rep.Leaked), formatBytes(rep.LeakedBytes))
	if len(rep.Leaked) > 0 {
		printVerbose("  %s\n", strings.Join(rep.Leaked, ", "))
	}
}

// formatBytes formats a byte count as a human-readable string.
func formatBytes(n int) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := unit, 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
