package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "planctl",
	Short: "Generate and inspect training microcycles from the command line",
	Long: `planctl runs the planning pipeline without the HTTP server or a
database. It is meant for trying out profiles, previewing what a horizon
looks like, and inspecting plans saved as JSON.

Generation uses the completion backend when COMPLETION_API_KEY is set
and falls back to the deterministic planner and the exercise templates
otherwise, exactly like the server does.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
