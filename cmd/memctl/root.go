package main

import (
	"fmt"
	"log/slog"
	"os"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/joshuapare/memkit/alloc"
	"github.com/joshuapare/memkit/internal/logger"
	"github.com/joshuapare/memkit/pkg/region"
)

var (
	// Global flags
	verbose      bool
	quiet        bool
	jsonOut      bool
	logLevel     string
	logDir       string
	providerName string
)

var (
	appLog   = logger.Discard
	closeLog = func() error { return nil }
)

var rootCmd = &cobra.Command{
	Use:   "memctl",
	Short: "Replay and benchmark allocation traces against memkit allocators",
	Long: `memctl drives the memkit allocators (linear, stack, pool and free list)
through recorded or generated allocation traces and reports fragmentation,
failures and leaks.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogging(cmd)
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeLog()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output and allocator diagnostics")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().
		StringVar(&logLevel, "log-level", "info", "Allocator diagnostic level: debug, info, warn, error")
	rootCmd.PersistentFlags().
		StringVar(&logDir, "log-dir", "", "Write allocator diagnostics as JSON to a dated file in this directory")
	rootCmd.PersistentFlags().
		StringVar(&providerName, "provider", "", "Backing memory provider: heap or mmap (default mmap on unix)")
}

// setupLogging enables allocator diagnostics when --verbose, --log-dir or an
// explicit --log-level asks for them. --verbose alone logs at debug.
func setupLogging(cmd *cobra.Command) error {
	levelSet := cmd.Flags().Changed("log-level")
	enabled := verbose || logDir != "" || levelSet

	level := slog.LevelDebug
	if levelSet || !verbose {
		l, err := logger.ParseLevel(logLevel)
		if err != nil {
			return fmt.Errorf("invalid --log-level: %w", err)
		}
		level = l
	}

	// --quiet silences stderr, not a log file.
	if quiet && logDir == "" {
		enabled = false
	}

	l, closeFn, err := logger.New(logger.Options{
		Enabled: enabled,
		Level:   level,
		Dir:     logDir,
	})
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	appLog, closeLog = l, closeFn
	return nil
}

// allocatorOptions builds the options every command hands to the allocator.
func allocatorOptions(name string) (*alloc.Options, error) {
	p, err := region.ByName(providerName)
	if err != nil {
		return nil, err
	}
	return &alloc.Options{Logger: appLog, Name: name, Provider: p}, nil
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...any) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...any) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as indented JSON
func printJSON(v any) error {
	encoder := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
