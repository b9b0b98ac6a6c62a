package main

import (
	"runtime"

	"github.com/spf13/cobra"
)

// Set with -ldflags "-X main.version=..." at release time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if jsonOut {
				return printJSON(map[string]string{
					"version": version,
					"commit":  commit,
					"built":   date,
					"go":      runtime.Version(),
				})
			}
			printInfo("memctl %s (%s/%s, %s)\n", version, runtime.GOOS, runtime.GOARCH, runtime.Version())
			printInfo("  commit: %s\n", commit)
			printInfo("  built:  %s\n", date)
			return nil
		},
	})
}
