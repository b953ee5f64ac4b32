package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/broadinstitute/psp-dry/internal/history"
)

func newHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history <history.duckdb>",
		Short: "List past pipeline runs recorded with --history-db",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(args[0], limit)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of runs to show")

	return cmd
}

func runHistory(path string, limit int) error {
	store, err := history.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.ListRuns(limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs recorded")
		return nil
	}

	fmt.Printf("%-40s %-6s %-20s %s\n", "input", "assay", "provenance", "ran_at")
	for _, r := range runs {
		fmt.Printf("%-40s %-6s %-20s %s\n", r.InputPath, r.Assay.String(), r.ProvenanceCode, r.RanAt)
	}
	return nil
}
