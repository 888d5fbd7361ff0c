package reminder

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"crewcall/internal/model"
	"crewcall/internal/push"
)

// Offsets are the reminder lead times before a production's start.
var Offsets = []time.Duration{60 * time.Minute, 30 * time.Minute, 10 * time.Minute}

// Reminder is one scheduled local notification.
type Reminder struct {
	ProductionID uuid.UUID
	Offset       time.Duration
	FireAt       time.Time
	Title        string
	Body         string
}

// Scheduler registers time-delayed reminders for productions and delivers
// them to assigned operators through the push service when they fire.
//
// Offsets already in the past at scheduling time are silently skipped rather
// than fired immediately, so a device coming back online late does not get a
// burst of stale reminders. Scheduling is independent per offset. There is
// no replacement logic when a start time changes after scheduling: stale
// reminders for the old time still fire.
type Scheduler struct {
	pusher *push.Service

	mu        sync.Mutex
	timers    map[string]*time.Timer
	scheduled map[string]bool // production|offset pairs already handled
	closed    bool
}

// NewScheduler creates a reminder scheduler.
func NewScheduler(pusher *push.Service) *Scheduler {
	return &Scheduler{
		pusher:    pusher,
		timers:    make(map[string]*time.Timer),
		scheduled: make(map[string]bool),
	}
}

func key(productionID uuid.UUID, offset time.Duration) string {
	return fmt.Sprintf("%s|%s", productionID, offset)
}

// ScheduleProductionReminders computes the reminder set for a production and
// registers a timer per future offset. Recipients receive the push when a
// timer fires. The returned slice lists exactly what was scheduled now;
// offsets in the past and offsets scheduled earlier are skipped.
func (s *Scheduler) ScheduleProductionReminders(p *model.Production, recipients []uuid.UUID, now time.Time) []Reminder {
	var scheduled []Reminder

	for _, offset := range Offsets {
		fireAt := p.StartTime.Add(-offset)
		if !fireAt.After(now) {
			continue
		}

		k := key(p.ID, offset)
		s.mu.Lock()
		if s.closed || s.scheduled[k] {
			s.mu.Unlock()
			continue
		}
		s.scheduled[k] = true

		r := Reminder{
			ProductionID: p.ID,
			Offset:       offset,
			FireAt:       fireAt,
			Title:        fmt.Sprintf("%s starts in %d minutes", p.Name, int(offset.Minutes())),
			Body:         fmt.Sprintf("Call time %s at %s", p.CallTime.Format("15:04"), p.Venue),
		}
		recips := append([]uuid.UUID(nil), recipients...)
		s.timers[k] = time.AfterFunc(fireAt.Sub(now), func() {
			s.fire(r, recips)
		})
		s.mu.Unlock()

		scheduled = append(scheduled, r)
	}
	return scheduled
}

func (s *Scheduler) fire(r Reminder, recipients []uuid.UUID) {
	s.mu.Lock()
	delete(s.timers, key(r.ProductionID, r.Offset))
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	data := map[string]string{"production_id": r.ProductionID.String()}
	for _, uid := range recipients {
		if err := s.pusher.SendToUser(ctx, uid, r.Title, r.Body, data); err != nil {
			log.Printf("reminder: deliver %s to %s: %v", r.ProductionID, uid, err)
		}
	}
}

// Pending returns the number of reminders waiting to fire.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// CancelAll stops every pending timer. Already-handled offsets stay marked
// so they are not rescheduled.
func (s *Scheduler) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, t := range s.timers {
		t.Stop()
		delete(s.timers, k)
	}
}

// Close cancels all timers and refuses further scheduling.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for k, t := range s.timers {
		t.Stop()
		delete(s.timers, k)
	}
}
