// Bench command for the undobench CLI.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dkrider/meshundo/internal/bench"
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Run a simulated edit session and report deduplication",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := loadConfig()
		if err != nil {
			return err
		}

		// Flags override config-file values.
		for _, key := range []string{
			cfgKeySteps, cfgKeyVerts, cfgKeyMutateFraction,
			cfgKeyChunkCount, cfgKeyBackground, cfgKeySeed,
		} {
			if f := cmd.Flags().Lookup(key); f != nil && f.Changed {
				if err := v.BindPFlag(key, f); err != nil {
					return err
				}
			}
		}

		cfg := bench.Config{
			Steps:          v.GetInt(cfgKeySteps),
			Verts:          v.GetInt(cfgKeyVerts),
			MutateFraction: v.GetFloat64(cfgKeyMutateFraction),
			ChunkCount:     v.GetInt(cfgKeyChunkCount),
			Background:     v.GetBool(cfgKeyBackground),
			Seed:           v.GetInt64(cfgKeySeed),
		}

		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

		report, err := bench.Run(cfg, logger)
		if err != nil {
			return fmt.Errorf("bench: %w", err)
		}

		fmt.Printf("%-6s %12s %14s %14s %8s\n", "step", "undo_size", "expanded", "compacted", "ratio")
		for _, sr := range report.Steps {
			fmt.Printf("%-6d %12d %14d %14d %7.1f%%\n",
				sr.Step, sr.UndoSize, sr.ExpandedSize, sr.CompactedSize, sr.Ratio()*100)
		}
		fmt.Printf("\nfinal: %d bytes expanded, %d bytes held (%.1f%%)\n",
			report.FinalExpanded, report.FinalCompacted,
			float64(report.FinalCompacted)/float64(report.FinalExpanded)*100)
		return nil
	},
}

func init() {
	benchCmd.Flags().Int(cfgKeySteps, 32, "number of undo steps to encode")
	benchCmd.Flags().Int(cfgKeyVerts, 4096, "vertex count of the simulated mesh")
	benchCmd.Flags().Float64(cfgKeyMutateFraction, 0.05, "fraction of the position buffer touched between steps")
	benchCmd.Flags().Int(cfgKeyChunkCount, 0, "elements per deduplication chunk (0 = default)")
	benchCmd.Flags().Bool(cfgKeyBackground, false, "compact snapshots on a background worker")
	benchCmd.Flags().Int64(cfgKeySeed, 1, "random seed")
}
