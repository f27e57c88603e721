// Package scheduler owns the per-user weekly report jobs: one armed timer
// per user with a configured reminder, rebuilt from the store on startup.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"vitameter/internal/dates"
	"vitameter/internal/db"
	"vitameter/internal/metrics"
)

const fireTimeout = time.Minute

// Store is the durable source of truth the scheduler reads from. Birth dates
// are re-read at fire time, never captured at registration.
type Store interface {
	GetBirthDate(ctx context.Context, userID int64) (time.Time, bool, error)
	ListReminders(ctx context.Context) ([]db.UserReminder, error)
}

// Sender delivers one weekly report to the user. Implementations own
// rendering and formatting; the scheduler only decides when and for whom.
type Sender interface {
	DeliverReport(ctx context.Context, deliveryID string, userID int64, birthDate time.Time) error
}

type job struct {
	spec     dates.ReminderSpec
	nextFire time.Time
	timer    *time.Timer
	gen      uint64
}

// Scheduler maintains at most one weekly job per user. All job-table
// mutations go through one mutex; a stale timer callback recognizes itself
// by generation and does nothing, so replacing a job can never double-fire.
type Scheduler struct {
	store  Store
	sender Sender
	loc    *time.Location
	logger *zerolog.Logger
	now    func() time.Time

	mu      sync.Mutex
	jobs    map[int64]*job
	lastGen uint64
	stopped bool
}

// New creates a scheduler. Call RecoverOnStartup before exposing
// RegisterOrReplace to user traffic.
func New(store Store, sender Sender, loc *time.Location, logger *zerolog.Logger) *Scheduler {
	return &Scheduler{
		store:  store,
		sender: sender,
		loc:    loc,
		logger: logger,
		now:    time.Now,
		jobs:   make(map[int64]*job),
	}
}

// RecoverOnStartup rebuilds the job table from every stored reminder spec.
func (s *Scheduler) RecoverOnStartup(ctx context.Context) error {
	reminders, err := s.store.ListReminders(ctx)
	if err != nil {
		return err
	}
	for _, r := range reminders {
		s.RegisterOrReplace(r.UserID, r.Spec)
	}
	s.logger.Info().Int("jobs", len(reminders)).Msg("reminder jobs recovered")
	return nil
}

// RegisterOrReplace arms the weekly job for the user, replacing any existing
// one. Registering an identical spec is a no-op: the armed timer and its
// next-fire instant stay untouched. Returns the next-fire instant, or the
// zero time when the scheduler has been stopped and nothing was armed.
func (s *Scheduler) RegisterOrReplace(userID int64, spec dates.ReminderSpec) time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.jobs[userID]; ok && existing.spec == spec {
		return existing.nextFire
	}
	return s.armLocked(userID, spec, NextOccurrence(s.now(), spec, s.loc))
}

// armLocked replaces the user's job with one firing at next.
// Caller holds s.mu.
func (s *Scheduler) armLocked(userID int64, spec dates.ReminderSpec, next time.Time) time.Time {
	if s.stopped {
		return time.Time{}
	}
	if old, ok := s.jobs[userID]; ok {
		old.timer.Stop()
	}

	s.lastGen++
	j := &job{spec: spec, nextFire: next, gen: s.lastGen}
	gen := j.gen
	j.timer = time.AfterFunc(next.Sub(s.now()), func() { s.fire(userID, gen) })
	s.jobs[userID] = j

	s.logger.Info().
		Int64("user_id", userID).
		Int("weekday", spec.Weekday).
		Str("at", next.Format(time.RFC3339)).
		Msg("reminder job armed")
	return next
}

// fire runs one occurrence and re-arms the job a week later. A generation
// mismatch means the job was replaced while this timer was in flight.
func (s *Scheduler) fire(userID int64, gen uint64) {
	s.mu.Lock()
	j, ok := s.jobs[userID]
	if !ok || j.gen != gen {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	metrics.IncReminderFired()
	s.deliver(userID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.jobs[userID]; ok && cur.gen == gen && !s.stopped {
		next := cur.nextFire.AddDate(0, 0, 7)
		for !next.After(s.now()) {
			next = next.AddDate(0, 0, 7)
		}
		cur.nextFire = next
		cur.timer = time.AfterFunc(next.Sub(s.now()), func() { s.fire(userID, gen) })
	}
}

// deliver reads the current birth date and pushes the report out. A missing
// birth date is a silent skip; a delivery error never breaks the cadence.
func (s *Scheduler) deliver(userID int64) {
	ctx, cancel := context.WithTimeout(context.Background(), fireTimeout)
	defer cancel()

	birthDate, ok, err := s.store.GetBirthDate(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", userID).Msg("read birth date at fire time")
		return
	}
	if !ok {
		s.logger.Debug().Int64("user_id", userID).Msg("no birth date set, skipping report")
		return
	}

	deliveryID := uuid.NewString()
	if err := s.sender.DeliverReport(ctx, deliveryID, userID, birthDate); err != nil {
		metrics.IncDeliveryFailed()
		s.logger.Error().Err(err).
			Int64("user_id", userID).
			Str("delivery_id", deliveryID).
			Msg("weekly report delivery failed")
		return
	}

	s.logger.Info().
		Int64("user_id", userID).
		Str("delivery_id", deliveryID).
		Msg("weekly report delivered")
}

// NextFire returns the armed next-fire instant for the user, if any.
func (s *Scheduler) NextFire(userID int64) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[userID]
	if !ok {
		return time.Time{}, false
	}
	return j.nextFire, true
}

// Jobs returns the number of armed jobs.
func (s *Scheduler) Jobs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Stop disarms every job. In-flight fires complete; nothing re-arms after.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	for _, j := range s.jobs {
		j.timer.Stop()
	}
	s.logger.Info().Msg("scheduler stopped")
}

// NextOccurrence computes the first instant strictly after now that matches
// the spec's weekday and time of day in loc. Weekday 0 is Monday.
func NextOccurrence(now time.Time, spec dates.ReminderSpec, loc *time.Location) time.Time {
	local := now.In(loc)
	target := time.Date(local.Year(), local.Month(), local.Day(), spec.Hour, spec.Minute, 0, 0, loc)

	// time.Weekday has Sunday=0; the spec counts from Monday.
	localWeekday := (int(local.Weekday()) + 6) % 7
	target = target.AddDate(0, 0, (spec.Weekday-localWeekday+7)%7)

	if !target.After(now) {
		target = target.AddDate(0, 0, 7)
	}
	return target
}
