package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"alcyxob/microcycle/internal/completion"
	"alcyxob/microcycle/internal/config"
	"alcyxob/microcycle/internal/domain"
	"alcyxob/microcycle/internal/engine"
	"alcyxob/microcycle/internal/policy"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a plan for an ad-hoc athlete profile",
	Example: `  # Three training days a week over the default horizon
  planctl generate --frequency 3 --goal strength

  # Two weeks tapering into a race, machine-readable output
  planctl generate --days 14 --event "2025-06-07:10k race:high" --json`,
	RunE: runGenerate,
}

var (
	genDays           int
	genFrequency      int
	genGoal           string
	genEquipment      string
	genDislikes       string
	genSessionMinutes int
	genEvents         []string
	genModel          string
	genRefine         bool
	genJSON           bool
)

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().IntVar(&genDays, "days", 0, "Horizon length in days (0 uses the configured default)")
	generateCmd.Flags().IntVar(&genFrequency, "frequency", 3, "Training days per week (0-7)")
	generateCmd.Flags().StringVar(&genGoal, "goal", "", "Training goal, e.g. strength, hypertrophy, endurance")
	generateCmd.Flags().StringVar(&genEquipment, "equipment", "", "Available equipment, free text")
	generateCmd.Flags().StringVar(&genDislikes, "dislikes", "", "Comma-separated exercises to avoid")
	generateCmd.Flags().IntVar(&genSessionMinutes, "session-minutes", 0, "Target session length in minutes")
	generateCmd.Flags().StringArrayVar(&genEvents, "event", nil, `Calendar event as "DATE:LABEL[:INTENSITY]", repeatable`)
	generateCmd.Flags().StringVar(&genModel, "model", "", "Completion model override")
	generateCmd.Flags().BoolVar(&genRefine, "refine", false, "Run the refinement pass (needs a completion backend)")
	generateCmd.Flags().BoolVar(&genJSON, "json", false, "Emit the compiled plan as JSON")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if genFrequency < 0 || genFrequency > 7 {
		return fmt.Errorf("frequency must be between 0 and 7, got %d", genFrequency)
	}

	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	events, err := parseEventFlags(genEvents)
	if err != nil {
		return err
	}

	client, err := completion.NewClient(cfg.Completion)
	if err != nil {
		return fmt.Errorf("initializing completion client: %w", err)
	}
	if !client.IsAvailable() && !genJSON {
		fmt.Fprintln(cmd.ErrOrStderr(), "No completion API key configured, using the deterministic planner.")
	}

	pctx := domain.PlanningContext{
		Today:       policy.Midnight(time.Now().UTC()),
		HorizonDays: genDays,
		Profile: domain.Profile{
			Goal:                genGoal,
			TrainingDaysPerWeek: genFrequency,
			Equipment:           genEquipment,
			Dislikes:            genDislikes,
			SessionMinutes:      genSessionMinutes,
		},
		Events: events,
	}

	eng := engine.New(client, cfg.Planner, nil)
	plan, err := eng.Plan(cmd.Context(), pctx, engine.Options{
		HorizonDays:      genDays,
		Model:            genModel,
		EnableRefinement: genRefine,
	})
	if err != nil {
		return err
	}

	if genJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(plan)
	}

	printPlan(cmd.OutOrStdout(), plan)
	return nil
}

// parseEventFlags turns repeated --event values into planning events.
func parseEventFlags(raw []string) ([]domain.ScheduledEvent, error) {
	var events []domain.ScheduledEvent
	for _, r := range raw {
		parts := strings.SplitN(r, ":", 3)
		if len(parts) < 2 || parts[1] == "" {
			return nil, fmt.Errorf(`invalid --event %q, expected "DATE:LABEL[:INTENSITY]"`, r)
		}
		date, err := time.Parse("2006-01-02", parts[0])
		if err != nil {
			return nil, fmt.Errorf("invalid --event date %q, expected YYYY-MM-DD", parts[0])
		}
		ev := domain.ScheduledEvent{Date: date, Label: parts[1]}
		if len(parts) == 3 {
			switch intensity := domain.EventIntensity(strings.ToLower(parts[2])); intensity {
			case domain.IntensityLow, domain.IntensityMedium, domain.IntensityHigh:
				ev.Intensity = intensity
			default:
				return nil, fmt.Errorf("invalid --event intensity %q, expected low, medium, or high", parts[2])
			}
		}
		events = append(events, ev)
	}
	return events, nil
}

func printPlan(w io.Writer, plan *domain.CompiledPlan) {
	summary := engine.Summarize(plan)
	fmt.Fprintf(w, "Plan %s\n", plan.ID)
	fmt.Fprintf(w, "%d days: %d train, %d recovery, %d rest, %d event. ~%.1f h/week.\n\n",
		summary.TotalDays, summary.TrainingDays, summary.RecoveryDays,
		summary.RestDays, summary.EventDays, summary.EstimatedWeeklyHours)

	for _, day := range plan.Days {
		fmt.Fprintf(w, "%s  %-8s %s\n", day.Date.Format("Mon 2006-01-02"), day.Action, describeDay(day))
		for _, ex := range day.Exercises {
			fmt.Fprintf(w, "    %d. %-28s %s\n", ex.Order, ex.Name, describeDose(ex))
		}
	}

	if plan.Notes != "" {
		fmt.Fprintf(w, "\nNotes: %s\n", plan.Notes)
	}
	for _, warning := range plan.Warnings {
		fmt.Fprintf(w, "Warning: %s\n", warning)
	}
}

func describeDay(day domain.CompiledDay) string {
	var b strings.Builder
	if day.Focus != "" {
		b.WriteString(string(day.Focus))
	}
	if minutes := engine.EstimateDuration(day); minutes > 0 {
		fmt.Fprintf(&b, " (~%d min)", minutes)
	}
	if day.Reason != "" {
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		fmt.Fprintf(&b, "- %s", day.Reason)
	}
	return b.String()
}

func describeDose(ex domain.ExerciseSpec) string {
	if ex.Reps != nil {
		return fmt.Sprintf("%dx%d, rest %ds", ex.Sets, *ex.Reps, ex.RestSeconds)
	}
	return fmt.Sprintf("%d set(s), ~%d min", ex.Sets, (ex.DurationSeconds+59)/60)
}
