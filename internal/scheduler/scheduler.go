// Package scheduler runs the recurring auto-planning sweep. Athletes who
// opted in with autoPlan get their stored horizon topped up on a cron
// schedule, so a plan is always waiting without anyone calling the API.
package scheduler

import (
	"alcyxob/microcycle/internal/repository"
	"alcyxob/microcycle/internal/service"
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron"
)

// athleteTimeout bounds a single athlete's generation run so one stuck
// completion call cannot stall the whole sweep.
const athleteTimeout = 2 * time.Minute

type Scheduler struct {
	cron     *cron.Cron
	spec     string
	athletes repository.AthleteRepository
	planning service.PlanningService
}

// New builds a scheduler that sweeps on the given cron spec. Descriptor
// specs like "@daily" are accepted.
func New(spec string, athletes repository.AthleteRepository, planning service.PlanningService) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		spec:     spec,
		athletes: athletes,
		planning: planning,
	}
}

// Start registers the sweep and starts the cron loop.
func (s *Scheduler) Start() error {
	if err := s.cron.AddFunc(s.spec, func() { s.RunOnce(context.Background()) }); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", s.spec, err)
	}
	s.cron.Start()
	log.Printf("Scheduler: auto-planning sweep registered on %q", s.spec)
	return nil
}

// Stop halts the cron loop. A sweep already in flight finishes on its own.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}

// RunOnce sweeps every auto-plan athlete once and returns how many runs
// succeeded and how many failed. One athlete's failure never aborts the
// sweep; it is logged and the loop moves on.
func (s *Scheduler) RunOnce(ctx context.Context) (planned, failed int) {
	athletes, err := s.athletes.ListAutoPlan(ctx)
	if err != nil {
		log.Printf("ERROR: Scheduler: listing auto-plan athletes: %v", err)
		return 0, 0
	}
	if len(athletes) == 0 {
		return 0, 0
	}

	for _, athlete := range athletes {
		runCtx, cancel := context.WithTimeout(ctx, athleteTimeout)
		result, err := s.planning.GeneratePlan(runCtx, athlete.ID, service.GenerateOptions{})
		cancel()
		if err != nil {
			failed++
			log.Printf("ERROR: Scheduler: planning for athlete %s: %v", athlete.ID.Hex(), err)
			continue
		}
		planned++
		newDays := len(result.Plan.Days) - len(result.SkippedDates)
		log.Printf("Scheduler: stored %d new day(s) for athlete %s", newDays, athlete.ID.Hex())
	}

	log.Printf("Scheduler: sweep finished, %d planned, %d failed of %d athlete(s)", planned, failed, len(athletes))
	return planned, failed
}
