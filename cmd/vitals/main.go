package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "vitals",
	Short: "Vitals - health and alerting sidecar for the Gatherly backend",
	Long: `Vitals watches the Gatherly backend's dependencies (Postgres, object
storage) and the process itself, serves health and Prometheus endpoints,
and pushes threshold alerts to the configured notification channels.`,
	Version: Version,
}

func init() {
	// Set version template
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"Vitals version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(checkCmd)
}
