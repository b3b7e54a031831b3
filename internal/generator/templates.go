package generator

import (
	"alcyxob/microcycle/internal/domain"
)

// templateExercise is one entry of a built-in session template. Equipment
// lists the tokens the athlete must have for the entry to be admissible;
// an empty list means bodyweight is enough. Alternative names a substitute
// used when the athlete dislikes the primary movement.
type templateExercise struct {
	Name        string
	Sets        int
	Reps        int // 0 means time-based work; Seconds carries the effort
	RestSeconds int
	Seconds     int // estimated total time for all sets including rest
	Equipment   []string
	Alternative string
}

func (e templateExercise) spec(name string, order int) domain.ExerciseSpec {
	spec := domain.ExerciseSpec{
		Name:            name,
		Sets:            e.Sets,
		RestSeconds:     e.RestSeconds,
		DurationSeconds: e.Seconds,
		Order:           order,
	}
	if e.Reps > 0 {
		reps := e.Reps
		spec.Reps = &reps
	}
	return spec
}

// templates holds one session per focus, ordered compound to isolation.
// Every table keeps at least four bodyweight-only entries so the fallback
// can always fill a session, whatever the athlete owns.
var templates = map[domain.Focus][]templateExercise{
	domain.FocusUpper: {
		{Name: "Barbell bench press", Sets: 4, Reps: 8, RestSeconds: 120, Seconds: 610, Equipment: []string{"barbell", "bench"}, Alternative: "Dumbbell bench press"},
		{Name: "Pull-up", Sets: 3, Reps: 8, RestSeconds: 120, Seconds: 456, Equipment: []string{"pull-up bar"}, Alternative: "Inverted row"},
		{Name: "Push-up", Sets: 3, Reps: 12, RestSeconds: 90, Seconds: 414, Alternative: "Incline push-up"},
		{Name: "One-arm dumbbell row", Sets: 3, Reps: 10, RestSeconds: 90, Seconds: 390, Equipment: []string{"dumbbell"}, Alternative: "Band row"},
		{Name: "Overhead press", Sets: 3, Reps: 8, RestSeconds: 120, Seconds: 456, Equipment: []string{"barbell"}, Alternative: "Pike push-up"},
		{Name: "Triceps dip", Sets: 3, Reps: 10, RestSeconds: 90, Seconds: 390, Alternative: "Close-grip push-up"},
		{Name: "Lateral raise", Sets: 3, Reps: 15, RestSeconds: 60, Seconds: 360, Equipment: []string{"dumbbell"}, Alternative: "Band lateral raise"},
		{Name: "Superman", Sets: 3, Reps: 12, RestSeconds: 60, Seconds: 324},
		{Name: "Plank shoulder tap", Sets: 3, RestSeconds: 60, Seconds: 270},
	},
	domain.FocusLower: {
		{Name: "Back squat", Sets: 4, Reps: 6, RestSeconds: 180, Seconds: 816, Equipment: []string{"barbell"}, Alternative: "Goblet squat"},
		{Name: "Romanian deadlift", Sets: 3, Reps: 8, RestSeconds: 150, Seconds: 546, Equipment: []string{"barbell"}, Alternative: "Single-leg hip hinge"},
		{Name: "Bulgarian split squat", Sets: 3, Reps: 10, RestSeconds: 90, Seconds: 390, Alternative: "Reverse lunge"},
		{Name: "Kettlebell swing", Sets: 3, Reps: 15, RestSeconds: 90, Seconds: 450, Equipment: []string{"kettlebell"}, Alternative: "Jump squat"},
		{Name: "Walking lunge", Sets: 3, Reps: 12, RestSeconds: 90, Seconds: 414, Alternative: "Step-up"},
		{Name: "Glute bridge", Sets: 3, Reps: 15, RestSeconds: 60, Seconds: 360, Alternative: "Single-leg glute bridge"},
		{Name: "Standing calf raise", Sets: 3, Reps: 20, RestSeconds: 45, Seconds: 375},
	},
	domain.FocusFull: {
		{Name: "Deadlift", Sets: 3, Reps: 5, RestSeconds: 180, Seconds: 600, Equipment: []string{"barbell"}, Alternative: "Kettlebell deadlift"},
		{Name: "Front squat", Sets: 3, Reps: 8, RestSeconds: 150, Seconds: 546, Equipment: []string{"barbell"}, Alternative: "Goblet squat"},
		{Name: "Push-up", Sets: 3, Reps: 12, RestSeconds: 90, Seconds: 414, Alternative: "Incline push-up"},
		{Name: "Inverted row", Sets: 3, Reps: 10, RestSeconds: 90, Seconds: 390, Equipment: []string{"pull-up bar"}, Alternative: "Band row"},
		{Name: "Dumbbell thruster", Sets: 3, Reps: 10, RestSeconds: 90, Seconds: 390, Equipment: []string{"dumbbell"}, Alternative: "Jump squat"},
		{Name: "Air squat", Sets: 3, Reps: 15, RestSeconds: 60, Seconds: 360},
		{Name: "Bear crawl", Sets: 3, RestSeconds: 60, Seconds: 330},
		{Name: "Plank", Sets: 3, RestSeconds: 60, Seconds: 315},
	},
	domain.FocusConditioning: {
		{Name: "Rowing intervals", Sets: 6, RestSeconds: 60, Seconds: 720, Equipment: []string{"rower"}, Alternative: "Burpee intervals"},
		{Name: "Bike intervals", Sets: 6, RestSeconds: 60, Seconds: 720, Equipment: []string{"bike"}, Alternative: "High-knee run"},
		{Name: "Burpee", Sets: 4, Reps: 12, RestSeconds: 60, Seconds: 432, Alternative: "Squat thrust"},
		{Name: "Mountain climber", Sets: 4, RestSeconds: 45, Seconds: 300},
		{Name: "Jumping jack", Sets: 3, RestSeconds: 30, Seconds: 225},
		{Name: "High-knee run", Sets: 4, RestSeconds: 45, Seconds: 300},
	},
	domain.FocusMobility: {
		{Name: "Cat-cow", Sets: 2, Reps: 10, RestSeconds: 30, Seconds: 140},
		{Name: "World's greatest stretch", Sets: 2, Reps: 8, RestSeconds: 30, Seconds: 160},
		{Name: "Hip flexor stretch", Sets: 2, RestSeconds: 30, Seconds: 150},
		{Name: "Hamstring stretch", Sets: 2, RestSeconds: 30, Seconds: 150},
		{Name: "Thoracic rotation", Sets: 2, Reps: 10, RestSeconds: 30, Seconds: 140},
		{Name: "Deep squat hold", Sets: 2, RestSeconds: 30, Seconds: 150},
	},
	domain.FocusYoga: {
		{Name: "Sun salutation A", Sets: 3, RestSeconds: 30, Seconds: 270},
		{Name: "Warrior sequence", Sets: 2, RestSeconds: 30, Seconds: 240},
		{Name: "Triangle pose", Sets: 2, RestSeconds: 30, Seconds: 150},
		{Name: "Seated forward fold", Sets: 2, RestSeconds: 30, Seconds: 180},
		{Name: "Pigeon pose", Sets: 2, RestSeconds: 30, Seconds: 180},
		{Name: "Corpse pose", Sets: 1, RestSeconds: 0, Seconds: 180},
	},
	domain.FocusPilates: {
		{Name: "Pilates hundred", Sets: 3, RestSeconds: 45, Seconds: 315},
		{Name: "Roll-up", Sets: 3, Reps: 10, RestSeconds: 45, Seconds: 255},
		{Name: "Single-leg circle", Sets: 2, Reps: 10, RestSeconds: 30, Seconds: 140},
		{Name: "Side-lying leg lift", Sets: 3, Reps: 12, RestSeconds: 30, Seconds: 234},
		{Name: "Swimming hold", Sets: 3, RestSeconds: 30, Seconds: 180},
	},
	domain.FocusCalisthenics: {
		{Name: "Pull-up", Sets: 4, Reps: 6, RestSeconds: 120, Seconds: 576, Equipment: []string{"pull-up bar"}, Alternative: "Inverted row"},
		{Name: "Pistol squat progression", Sets: 3, Reps: 6, RestSeconds: 120, Seconds: 432, Alternative: "Box pistol squat"},
		{Name: "Push-up", Sets: 4, Reps: 12, RestSeconds: 90, Seconds: 552, Alternative: "Incline push-up"},
		{Name: "Hanging knee raise", Sets: 3, Reps: 10, RestSeconds: 90, Seconds: 390, Equipment: []string{"pull-up bar"}, Alternative: "Lying leg raise"},
		{Name: "Hollow body hold", Sets: 3, RestSeconds: 60, Seconds: 270},
		{Name: "Air squat", Sets: 3, Reps: 20, RestSeconds: 60, Seconds: 420},
	},
}

// templateFor returns the session table for a focus, falling back to the
// upper-body table for anything the map does not know.
func templateFor(focus domain.Focus) []templateExercise {
	if table, ok := templates[focus]; ok {
		return table
	}
	return templates[domain.FocusUpper]
}
