package planner

import (
	"context"
	"fmt"
	"strings"

	"alcyxob/microcycle/internal/completion"
	"alcyxob/microcycle/internal/domain"
	"alcyxob/microcycle/internal/policy"
)

// generativeStrategy asks the completion service for the weekly skeleton,
// then normalizes and re-checks the reply. The model proposes; the policy
// layer disposes.
type generativeStrategy struct {
	client         *completion.Client
	model          string
	maxConsecutive int
	taperWindow    float64
}

// NewGenerative builds the completion-backed strategy.
func NewGenerative(client *completion.Client, cfg Config) Strategy {
	s := &generativeStrategy{
		client:         client,
		model:          cfg.Model,
		maxConsecutive: cfg.MaxConsecutive,
		taperWindow:    cfg.TaperWindow,
	}
	if s.maxConsecutive <= 0 {
		s.maxConsecutive = policy.DefaultMaxConsecutiveTraining
	}
	if s.taperWindow <= 0 {
		s.taperWindow = policy.DefaultTaperWindowDays
	}
	return s
}

func (s *generativeStrategy) Name() string { return domain.StrategyGenerative }

// abstractPlanPayload is the JSON shape the model is asked to reply with.
type abstractPlanPayload struct {
	Days []abstractDayPayload `json:"days"`
}

type abstractDayPayload struct {
	Date   string   `json:"date"`
	Action string   `json:"action"`
	Tags   []string `json:"tags"`
	Reason string   `json:"reason"`
}

const abstractPlanSchema = `{"days":[{"date":"YYYY-MM-DD","action":"train|recovery|rest|event","tags":["string"],"reason":"string"}]}`

const planSystemPrompt = "You are a careful strength and conditioning coach planning a training microcycle for one athlete. Reply with JSON only, no prose."

func (s *generativeStrategy) Plan(ctx context.Context, pctx domain.PlanningContext) (domain.AbstractPlan, error) {
	msgs := []completion.Message{
		completion.System(planSystemPrompt),
		completion.User(buildPlanPrompt(pctx, s.maxConsecutive)),
	}

	payload, err := completion.GenerateStructured[abstractPlanPayload](ctx, s.client, s.model, msgs, abstractPlanSchema)
	if err != nil {
		return nil, fmt.Errorf("generative planning: %w", err)
	}

	plan := normalizePayload(payload, pctx)
	plan = policy.EnforceCadence(plan, s.maxConsecutive)
	plan = policy.TaperAroundEvents(plan, pctx.Events, s.taperWindow)
	return plan, nil
}

func buildPlanPrompt(pctx domain.PlanningContext, maxConsecutive int) string {
	var b strings.Builder

	start := policy.Midnight(pctx.Today)
	fmt.Fprintf(&b, "Plan the next %d days for this athlete, starting %s (a %s).\n\n",
		pctx.HorizonDays, start.Format("2006-01-02"), start.Weekday())

	b.WriteString("Athlete:\n")
	if pctx.Profile.Goal != "" {
		fmt.Fprintf(&b, "- goal: %s\n", pctx.Profile.Goal)
	}
	fmt.Fprintf(&b, "- training days per week: %d\n", pctx.Profile.TrainingDaysPerWeek)
	if pctx.Profile.Equipment != "" {
		fmt.Fprintf(&b, "- equipment: %s\n", pctx.Profile.Equipment)
	}
	if pctx.Profile.Dislikes != "" {
		fmt.Fprintf(&b, "- dislikes: %s\n", pctx.Profile.Dislikes)
	}
	if pctx.Profile.SessionMinutes > 0 {
		fmt.Fprintf(&b, "- session length: %d minutes\n", pctx.Profile.SessionMinutes)
	}

	if len(pctx.Events) > 0 {
		b.WriteString("\nFixed calendar events (immovable):\n")
		for _, ev := range pctx.Events {
			fmt.Fprintf(&b, "- %s: %s", dateKey(ev.Date), ev.Label)
			if ev.Intensity != "" {
				fmt.Fprintf(&b, " (intensity: %s)", ev.Intensity)
			}
			b.WriteString("\n")
		}
	}

	if len(pctx.History) > 0 {
		b.WriteString("\nRecent training history:\n")
		for _, h := range pctx.History {
			fmt.Fprintf(&b, "- %s: %s", dateKey(h.Date), historyLabel(h))
			if h.Exertion != nil {
				fmt.Fprintf(&b, ", exertion %d/10", *h.Exertion)
			}
			if h.Soreness != nil {
				fmt.Fprintf(&b, ", soreness %d/10", *h.Soreness)
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("\nRules:\n")
	fmt.Fprintf(&b, "1. Output exactly %d days, one per calendar day, starting %s.\n",
		pctx.HorizonDays, start.Format("2006-01-02"))
	fmt.Fprintf(&b, "2. Never plan more than %d training days in a row.\n", maxConsecutive)
	b.WriteString("3. Days with a calendar event get action \"event\".\n")
	b.WriteString("4. No heavy lower-body work and no long conditioning within a day and a half of a demanding event.\n")
	b.WriteString("5. Match the athlete's weekly frequency; remaining days are \"rest\" or \"recovery\".\n")
	b.WriteString("6. Tags name the session focus, e.g. [\"upper\"], [\"lower\"], [\"conditioning\"], [\"mobility\"].\n")

	fmt.Fprintf(&b, "\nReply with JSON only, matching: %s\n", abstractPlanSchema)
	return b.String()
}

func historyLabel(h domain.HistoryDay) string {
	label := h.Focus
	if label == "" {
		label = "session"
	}
	if h.Completed {
		return label + " (completed)"
	}
	return label + " (skipped)"
}

// normalizePayload re-anchors the model's reply onto the real calendar:
// exactly one entry per horizon day, dates forced to today+i regardless of
// what the model claimed, actions folded into the known set, and event days
// forced to agree with the actual calendar.
func normalizePayload(payload abstractPlanPayload, pctx domain.PlanningContext) domain.AbstractPlan {
	start := policy.Midnight(pctx.Today)
	events := eventsByDate(pctx.Events)

	plan := make(domain.AbstractPlan, pctx.HorizonDays)
	for i := 0; i < pctx.HorizonDays; i++ {
		date := start.AddDate(0, 0, i)
		day := domain.AbstractDay{Date: date, Action: domain.ActionRest}

		if i < len(payload.Days) {
			raw := payload.Days[i]
			action := strings.ToLower(strings.TrimSpace(raw.Action))
			if domain.KnownAction(action) {
				day.Action = domain.DayAction(action)
			}
			day.Tags = cleanTags(raw.Tags)
			day.Reason = strings.TrimSpace(raw.Reason)
		}

		if ev, ok := events[dateKey(date)]; ok {
			day.Action = domain.ActionEvent
			if len(day.Tags) == 0 {
				day.Tags = eventTags(ev)
			}
			if day.Reason == "" {
				day.Reason = ev.Label
			}
		} else if day.Action == domain.ActionEvent {
			// The model invented an event that is not on the calendar.
			day.Action = domain.ActionRest
		}

		plan[i] = day
	}
	return plan
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag != "" {
			out = append(out, tag)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
