// Package main provides the undobench CLI, a diagnostic harness for the
// mesh undo store: it simulates editing sessions and reports how well
// snapshots deduplicate under different chunk sizes.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// configPath is set by the --config flag; empty uses defaults.
	configPath string

	// verbose enables debug logging of per-step compaction stats.
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "undobench",
	Short: "Benchmark the deduplicating mesh undo store",
	Long: `undobench simulates an edit-mode session: it encodes a sequence of
undo steps over a synthetic mesh, mutating a configurable fraction of the
data between steps, and reports the store's expanded versus compacted
memory after each step.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: undobench.yaml in the working directory)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log per-step compaction statistics")

	rootCmd.AddCommand(benchCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("undobench v0.1.0")
	},
}
