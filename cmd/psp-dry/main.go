// Package main provides the psp-dry command-line tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:   "psp-dry",
		Short: "Clean and normalize proteomics plate expression matrices",
		Long: `psp-dry runs the "dry" processing pipeline: log transform, histone
normalization, coverage filtering, per-sample offset optimization,
outlier removal, and median normalization of GCT-like matrices.`,
		Version: fmt.Sprintf("%s (%s) built %s", version, commit, date),
		SilenceUsage: true,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug-level logging")
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger(verbose)
		if err != nil {
			return fmt.Errorf("building logger: %w", err)
		}
		cmd.SetContext(withLogger(cmd.Context(), logger))
		return nil
	}

	root.AddCommand(newRunCmd())
	root.AddCommand(newConfigCmd())
	root.AddCommand(newHistoryCmd())

	return root
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		cfg := zap.NewDevelopmentConfig()
		return cfg.Build()
	}
	return zap.NewProduction()
}
