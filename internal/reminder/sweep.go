package reminder

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"crewcall/internal/model"
	"crewcall/internal/repository"
)

// SweepConfig controls the background reminder sweep.
type SweepConfig struct {
	Interval  time.Duration
	Lookahead time.Duration
	Timeout   time.Duration
}

// StartSweep runs a background job that periodically scans upcoming
// confirmed productions and schedules reminders for their assigned
// operators. It covers productions created or confirmed while no explicit
// scheduling call happened, e.g. after a restart.
func StartSweep(
	ctx context.Context,
	cfg SweepConfig,
	scheduler *Scheduler,
	productions repository.ProductionRepository,
	assignments repository.AssignmentRepository,
) {
	interval := cfg.Interval
	if interval <= 0 {
		interval = time.Minute
	}
	lookahead := cfg.Lookahead
	if lookahead <= 0 {
		lookahead = 2 * time.Hour
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				now := time.Now()
				tickCtx, cancel := context.WithTimeout(ctx, timeout)
				n, err := sweepOnce(tickCtx, scheduler, productions, assignments, now, lookahead)
				cancel()
				if err != nil {
					log.Printf("reminder sweep error: %v", err)
					continue
				}
				if n > 0 {
					log.Printf("reminder sweep scheduled %d reminders", n)
				}
			}
		}
	}()
}

func sweepOnce(
	ctx context.Context,
	scheduler *Scheduler,
	productions repository.ProductionRepository,
	assignments repository.AssignmentRepository,
	now time.Time,
	lookahead time.Duration,
) (int, error) {
	upcoming, err := productions.ListStartingBetween(ctx, now, now.Add(lookahead),
		[]string{model.StatusConfirmed, model.StatusInProgress})
	if err != nil {
		return 0, err
	}

	total := 0
	for i := range upcoming {
		p := &upcoming[i]
		assigned, err := assignments.ListByProduction(ctx, p.ID)
		if err != nil {
			log.Printf("reminder sweep: assignments for %s: %v", p.ID, err)
			continue
		}
		recipients := make([]uuid.UUID, 0, len(assigned))
		for _, a := range assigned {
			if a.Status != model.AssignmentDeclined {
				recipients = append(recipients, a.OperatorUID)
			}
		}
		if len(recipients) == 0 {
			continue
		}
		total += len(scheduler.ScheduleProductionReminders(p, recipients, now))
	}
	return total, nil
}
