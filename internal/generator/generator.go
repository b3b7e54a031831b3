package generator

import (
	"context"
	"fmt"
	"log"
	"strings"

	"alcyxob/microcycle/internal/completion"
	"alcyxob/microcycle/internal/domain"
)

// Session size and sanity limits applied to every compiled day.
const (
	minSessionExercises = 4
	maxSessionExercises = 6
	maxSets             = 10
	maxReps             = 50
	minRestSeconds      = 15
	maxRestSeconds      = 600
)

// Request describes one day the compiler must fill with exercises.
type Request struct {
	Focus          domain.Focus
	Tags           []string
	Profile        domain.Profile
	SessionMinutes int
	Strategy       *domain.AdaptationStrategy
	Previous       string // short summary of the last similar session
}

// Generator compiles abstract days into concrete exercise prescriptions.
// The completion service is used when available; the built-in templates
// guarantee a session either way.
type Generator struct {
	client *completion.Client
	model  string
}

// New builds an exercise generator. The model may be empty, in which case
// the client's configured default is used.
func New(client *completion.Client, model string) *Generator {
	return &Generator{client: client, model: model}
}

// Generate compiles one session. The returned source is either "model" or
// "template". The error is non-nil only when the context is done; any
// other failure silently falls back to the templates.
func (g *Generator) Generate(ctx context.Context, req Request) ([]domain.ExerciseSpec, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}

	if g.client.IsAvailable() {
		specs, err := g.generateWithModel(ctx, req)
		if err == nil {
			return specs, domain.SourceModel, nil
		}
		if ctx.Err() != nil {
			return nil, "", ctx.Err()
		}
		log.Printf("WARN: exercise generation for focus %q fell back to templates: %v", req.Focus, err)
	}

	return g.fromTemplates(req), domain.SourceTemplate, nil
}

// --- Model path ---

type exercisePayload struct {
	Exercises []exerciseEntry `json:"exercises"`
}

type exerciseEntry struct {
	Name            string   `json:"name"`
	Sets            int      `json:"sets"`
	Reps            *int     `json:"reps"`
	RestSeconds     int      `json:"restSeconds"`
	LoadKg          *float64 `json:"loadKg"`
	DurationSeconds int      `json:"durationSeconds"`
}

const exerciseSchema = `{"exercises":[{"name":"string","sets":int,"reps":int|null,"restSeconds":int,"loadKg":number|null,"durationSeconds":int}]}`

const exerciseSystemPrompt = "You are an experienced personal trainer writing one day of training for one athlete. Reply with JSON only, no prose."

func (g *Generator) generateWithModel(ctx context.Context, req Request) ([]domain.ExerciseSpec, error) {
	msgs := []completion.Message{
		completion.System(exerciseSystemPrompt),
		completion.User(buildExercisePrompt(req)),
	}

	payload, err := completion.GenerateStructured[exercisePayload](ctx, g.client, g.model, msgs, exerciseSchema)
	if err != nil {
		return nil, err
	}

	specs := g.sanitize(payload.Exercises, req)
	if len(specs) == 0 {
		return nil, fmt.Errorf("model returned no usable exercises")
	}
	return specs, nil
}

// sanitize clamps model output into the limits the rest of the system
// relies on, drops disliked movements, and tops the session up from the
// templates when the model under-delivers.
func (g *Generator) sanitize(entries []exerciseEntry, req Request) []domain.ExerciseSpec {
	dislikes := req.Profile.DislikeList()

	specs := make([]domain.ExerciseSpec, 0, maxSessionExercises)
	for _, e := range entries {
		if len(specs) == maxSessionExercises {
			break
		}
		name := strings.TrimSpace(e.Name)
		if name == "" || disliked(name, dislikes) {
			continue
		}

		spec := domain.ExerciseSpec{
			Name:        name,
			Sets:        clampInt(e.Sets, 1, maxSets),
			RestSeconds: clampInt(e.RestSeconds, minRestSeconds, maxRestSeconds),
			Order:       len(specs),
		}
		if e.Reps != nil && *e.Reps > 0 {
			reps := clampInt(*e.Reps, 1, maxReps)
			spec.Reps = &reps
		}
		if e.LoadKg != nil && *e.LoadKg > 0 {
			load := *e.LoadKg
			spec.LoadKg = &load
		}
		spec.DurationSeconds = e.DurationSeconds
		if spec.DurationSeconds <= 0 {
			spec.DurationSeconds = estimateSeconds(spec)
		}
		specs = append(specs, spec)
	}

	if len(specs) < minSessionExercises {
		specs = g.padFromTemplates(specs, req)
	}
	return specs
}

// estimateSeconds fills in a duration for entries the model left blank:
// roughly four seconds per rep plus the rest between sets. Time-based
// work without a rep count gets a minute per set and a five-minute floor.
func estimateSeconds(spec domain.ExerciseSpec) int {
	if spec.Reps == nil {
		secs := spec.Sets * (60 + spec.RestSeconds)
		if secs < 300 {
			secs = 300
		}
		return secs
	}
	return spec.Sets * (*spec.Reps*4 + spec.RestSeconds)
}

// padFromTemplates tops a short session up with admissible template
// entries the session does not already contain.
func (g *Generator) padFromTemplates(specs []domain.ExerciseSpec, req Request) []domain.ExerciseSpec {
	tokens := ParseEquipment(req.Profile.Equipment)
	dislikes := req.Profile.DislikeList()

	have := map[string]bool{}
	for _, s := range specs {
		have[strings.ToLower(s.Name)] = true
	}

	for _, ex := range templateFor(req.Focus) {
		if len(specs) >= minSessionExercises {
			break
		}
		if !admissible(ex, tokens) {
			continue
		}
		name := ex.Name
		if disliked(name, dislikes) {
			if ex.Alternative == "" || disliked(ex.Alternative, dislikes) {
				continue
			}
			name = ex.Alternative
		}
		if have[strings.ToLower(name)] {
			continue
		}
		specs = append(specs, ex.spec(name, len(specs)))
		have[strings.ToLower(name)] = true
	}
	return specs
}

// --- Template path ---

func (g *Generator) fromTemplates(req Request) []domain.ExerciseSpec {
	table := templateFor(req.Focus)
	tokens := ParseEquipment(req.Profile.Equipment)
	dislikes := req.Profile.DislikeList()

	specs := make([]domain.ExerciseSpec, 0, maxSessionExercises)
	for _, ex := range table {
		if len(specs) == maxSessionExercises {
			break
		}
		if !admissible(ex, tokens) {
			continue
		}
		name := ex.Name
		if disliked(name, dislikes) {
			if ex.Alternative == "" || disliked(ex.Alternative, dislikes) {
				continue
			}
			name = ex.Alternative
		}
		specs = append(specs, ex.spec(name, len(specs)))
	}

	// A session must still exist even when the athlete dislikes the whole
	// table: re-run without the dislike filter.
	if len(specs) == 0 {
		for _, ex := range table {
			if len(specs) == maxSessionExercises {
				break
			}
			if !admissible(ex, tokens) {
				continue
			}
			specs = append(specs, ex.spec(ex.Name, len(specs)))
		}
	}

	return applyStrategy(specs, req.Strategy)
}

func buildExercisePrompt(req Request) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Write one %s session for this athlete.\n\n", req.Focus)

	b.WriteString("Athlete:\n")
	if req.Profile.Goal != "" {
		fmt.Fprintf(&b, "- goal: %s\n", req.Profile.Goal)
	}
	equipment := req.Profile.Equipment
	if strings.TrimSpace(equipment) == "" {
		equipment = "bodyweight only"
	}
	fmt.Fprintf(&b, "- available equipment: %s\n", equipment)
	if req.Profile.Dislikes != "" {
		fmt.Fprintf(&b, "- dislikes (never program these): %s\n", req.Profile.Dislikes)
	}
	if req.SessionMinutes > 0 {
		fmt.Fprintf(&b, "- session budget: about %d minutes\n", req.SessionMinutes)
	}
	if len(req.Tags) > 0 {
		fmt.Fprintf(&b, "- session emphasis: %s\n", strings.Join(req.Tags, ", "))
	}
	if req.Previous != "" {
		fmt.Fprintf(&b, "- previous similar session: %s\n", req.Previous)
	}

	if req.Strategy != nil && !req.Strategy.Empty() {
		b.WriteString("\nAdaptation directives from recent feedback (apply them exactly):\n")
		for _, ld := range req.Strategy.LoadAdjustments {
			fmt.Fprintf(&b, "- adjust load on %q by %+.1f kg", ld.Pattern, ld.DeltaKg)
			if ld.Reason != "" {
				fmt.Fprintf(&b, " (%s)", ld.Reason)
			}
			b.WriteString("\n")
		}
		for _, vd := range req.Strategy.VolumeAdjustments {
			fmt.Fprintf(&b, "- adjust sets on %q by %+d", vd.Pattern, vd.SetDelta)
			if vd.RepDelta != nil {
				fmt.Fprintf(&b, " and reps by %+d", *vd.RepDelta)
			}
			if vd.Reason != "" {
				fmt.Fprintf(&b, " (%s)", vd.Reason)
			}
			b.WriteString("\n")
		}
		for _, sub := range req.Strategy.Substitutions {
			fmt.Fprintf(&b, "- replace %q with %q", sub.Pattern, sub.Replacement)
			if sub.Reason != "" {
				fmt.Fprintf(&b, " (%s)", sub.Reason)
			}
			b.WriteString("\n")
		}
		if req.Strategy.Notes != "" {
			fmt.Fprintf(&b, "- note: %s\n", req.Strategy.Notes)
		}
	}

	b.WriteString("\nProgramming rules:\n")
	b.WriteString("1. 4 to 6 exercises, compound movements first, isolation and core last.\n")
	switch goalCategory(req.Profile.Goal) {
	case "strength":
		b.WriteString("2. Strength emphasis: 3-5 sets of 5-8 reps, 120-180 seconds rest.\n")
	case "endurance":
		b.WriteString("2. Endurance emphasis: 2-4 sets of 12-20 reps, 60-90 seconds rest.\n")
	default:
		b.WriteString("2. Hypertrophy emphasis: 3-4 sets of 8-12 reps, 90-120 seconds rest.\n")
	}
	b.WriteString("3. Time-based work (holds, flows, steady cardio) uses reps: null and carries its length in durationSeconds.\n")
	b.WriteString("4. Only use equipment the athlete listed; bodyweight is always allowed.\n")
	b.WriteString("5. durationSeconds estimates the exercise's total time including rest.\n")

	fmt.Fprintf(&b, "\nReply with JSON only, matching: %s\n", exerciseSchema)
	return b.String()
}

// goalCategory folds a free-text goal into one of the three programming
// categories.
func goalCategory(goal string) string {
	lower := strings.ToLower(goal)
	switch {
	case strings.Contains(lower, "strength") || strings.Contains(lower, "power"):
		return "strength"
	case strings.Contains(lower, "endurance") || strings.Contains(lower, "cardio") ||
		strings.Contains(lower, "conditioning") || strings.Contains(lower, "marathon"):
		return "endurance"
	default:
		return "hypertrophy"
	}
}
