// Command wfc is the CLI driver around the constraint-propagation core:
// it loads an XML problem document (SPEC_FULL §C.1), dispatches to the
// overlapping or tiled reducer, runs the bounded-retry loop (SPEC_FULL
// §C.2), and either PNG-encodes the result or opens the Ebiten debug
// preview window (SPEC_FULL §C.5).
//
// Grounded on rybkr-sudoku/cmd's one-command-per-file cobra layout and
// jinterlante1206-AleutianLocal/cmd/aleutian/main.go's root/Execute shape.
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var logger *slog.Logger

var rootCmd = &cobra.Command{
	Use:   "wfc",
	Short: "Wave Function Collapse constraint solver",
	Long: `wfc synthesizes 2D images or tile grids consistent with the local
adjacency statistics of a small input sample, using the overlapping or
tiled WFC model.`,
}

func init() {
	var verbose bool
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable debug logging")
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Default().Error("wfc failed", "err", err)
		os.Exit(1)
	}
}
