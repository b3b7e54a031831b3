package policy

import (
	"fmt"
	"strings"
	"time"

	"alcyxob/microcycle/internal/domain"
)

// Hard safety limits applied to every plan, whichever strategy produced it.
const (
	DefaultMaxConsecutiveTraining = 3
	DefaultTaperWindowDays        = 1.5
)

// Explicit intensity values that mark an event as demanding.
var highIntensityValues = map[string]bool{
	"high":    true,
	"hard":    true,
	"intense": true,
}

// Keywords in an event label or tags that imply high intensity even when
// the athlete did not set one.
var highIntensityKeywords = map[string]bool{
	"race":        true,
	"run":         true,
	"sprint":      true,
	"game":        true,
	"match":       true,
	"competition": true,
	"tournament":  true,
	"marathon":    true,
	"triathlon":   true,
	"soccer":      true,
	"football":    true,
	"basketball":  true,
	"hockey":      true,
	"rugby":       true,
	"tennis":      true,
	"fight":       true,
	"bout":        true,
}

// Day tags that load the lower body enough to compromise an imminent event.
var lowerBodyTags = map[string]bool{
	"lower":    true,
	"legs":     true,
	"squat":    true,
	"deadlift": true,
	"lunge":    true,
}

// Day tags that mean the session competes with an event for the same
// energy system.
var conditioningTags = map[string]bool{
	"conditioning": true,
	"run":          true,
	"cardio":       true,
}

// HighIntensity reports whether an event should be treated as demanding:
// either the athlete said so explicitly, or the label/tags imply it.
func HighIntensity(ev domain.ScheduledEvent) bool {
	if highIntensityValues[strings.ToLower(strings.TrimSpace(string(ev.Intensity)))] {
		return true
	}
	for _, tok := range tokenize(ev.Label) {
		if highIntensityKeywords[tok] {
			return true
		}
	}
	for _, tag := range ev.Tags {
		for _, tok := range tokenize(tag) {
			if highIntensityKeywords[tok] {
				return true
			}
		}
	}
	return false
}

// EnforceCadence caps uninterrupted training streaks. Any day that would be
// the (max+1)th consecutive train day is rewritten to recovery, which also
// resets the streak. The input slice is never mutated.
func EnforceCadence(days []domain.AbstractDay, maxConsecutive int) []domain.AbstractDay {
	if maxConsecutive <= 0 {
		maxConsecutive = DefaultMaxConsecutiveTraining
	}
	out := cloneDays(days)
	streak := 0
	for i := range out {
		if out[i].Action != domain.ActionTrain {
			streak = 0
			continue
		}
		streak++
		if streak > maxConsecutive {
			out[i].Action = domain.ActionRecovery
			out[i].Tags = []string{"mobility"}
			out[i].Reason = "enforced"
			streak = 0
		}
	}
	return out
}

// TaperAroundEvents protects demanding events from interfering training.
// A train day inside the window loses lower-body work, and a train day on
// the event date itself additionally loses conditioning work; either case
// rewrites the day to mobility-focused recovery citing the event. The input
// slice is never mutated.
func TaperAroundEvents(days []domain.AbstractDay, events []domain.ScheduledEvent, windowDays float64) []domain.AbstractDay {
	if windowDays <= 0 {
		windowDays = DefaultTaperWindowDays
	}
	out := cloneDays(days)
	for i := range out {
		if out[i].Action != domain.ActionTrain {
			continue
		}
		for _, ev := range events {
			if !HighIntensity(ev) {
				continue
			}
			dist := daysApart(out[i].Date, ev.Date)
			if dist > windowDays {
				continue
			}
			lower := hasAnyTag(out[i].Tags, lowerBodyTags)
			sameDayConditioning := dist == 0 && hasAnyTag(out[i].Tags, conditioningTags)
			if lower || sameDayConditioning {
				out[i].Action = domain.ActionRecovery
				out[i].Tags = []string{"mobility"}
				out[i].Reason = fmt.Sprintf("tapering for %s", ev.Label)
				break
			}
		}
	}
	return out
}

// daysApart returns the absolute distance between two dates in days, with
// both sides normalized to UTC midnight first so time-of-day and zone
// differences cannot shift the result.
func daysApart(a, b time.Time) float64 {
	d := Midnight(a).Sub(Midnight(b)).Hours() / 24
	if d < 0 {
		d = -d
	}
	return d
}

// Midnight normalizes a timestamp to UTC midnight of its calendar day.
func Midnight(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

func hasAnyTag(tags []string, set map[string]bool) bool {
	for _, tag := range tags {
		for _, tok := range tokenize(tag) {
			if set[tok] {
				return true
			}
		}
	}
	return false
}

// tokenize lowercases s and splits it into alphanumeric words, so "10k
// Race!" yields ["10k", "race"] and "team meeting" never matches "meet".
func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
	})
}

func cloneDays(days []domain.AbstractDay) []domain.AbstractDay {
	out := make([]domain.AbstractDay, len(days))
	copy(out, days)
	for i := range out {
		if out[i].Tags != nil {
			tags := make([]string, len(out[i].Tags))
			copy(tags, out[i].Tags)
			out[i].Tags = tags
		}
	}
	return out
}
