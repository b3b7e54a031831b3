package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"alcyxob/microcycle/internal/domain"
	"alcyxob/microcycle/internal/engine"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize",
	Short: "Summarize a compiled plan saved as JSON",
	Example: `  # Summarize a saved plan
  planctl summarize --in plan.json

  # Pipe straight from generate
  planctl generate --days 14 --json | planctl summarize`,
	RunE: runSummarize,
}

var summarizeIn string

func init() {
	rootCmd.AddCommand(summarizeCmd)

	summarizeCmd.Flags().StringVar(&summarizeIn, "in", "", "Plan JSON file (default stdin)")
}

func runSummarize(cmd *cobra.Command, args []string) error {
	var reader io.Reader = cmd.InOrStdin()
	if summarizeIn != "" {
		f, err := os.Open(summarizeIn)
		if err != nil {
			return fmt.Errorf("opening plan file: %w", err)
		}
		defer f.Close()
		reader = f
	}

	var plan domain.CompiledPlan
	if err := json.NewDecoder(reader).Decode(&plan); err != nil {
		return fmt.Errorf("decoding plan JSON: %w", err)
	}
	if len(plan.Days) == 0 {
		return fmt.Errorf("plan holds no days")
	}

	printPlan(cmd.OutOrStdout(), &plan)

	summary := engine.Summarize(&plan)
	fmt.Fprintf(cmd.OutOrStdout(), "\nTotal exercises: %d\n", summary.TotalExercises)
	return nil
}
