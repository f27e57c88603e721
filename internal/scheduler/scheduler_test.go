package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vitameter/internal/dates"
	"vitameter/internal/db"
)

type mockStore struct {
	mu         sync.Mutex
	birthDates map[int64]time.Time
	reminders  []db.UserReminder
}

func newMockStore() *mockStore {
	return &mockStore{birthDates: make(map[int64]time.Time)}
}

func (m *mockStore) GetBirthDate(_ context.Context, userID int64) (time.Time, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.birthDates[userID]
	return t, ok, nil
}

func (m *mockStore) ListReminders(context.Context) ([]db.UserReminder, error) {
	return m.reminders, nil
}

type mockSender struct {
	mu    sync.Mutex
	calls []int64
}

func (m *mockSender) DeliverReport(_ context.Context, _ string, userID int64, _ time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, userID)
	return nil
}

func (m *mockSender) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func newTestScheduler(store Store, sender Sender, now time.Time) *Scheduler {
	logger := zerolog.Nop()
	s := New(store, sender, dates.ReportLocation, &logger)
	s.now = func() time.Time { return now }
	return s
}

func TestNextOccurrence(t *testing.T) {
	// Thursday 2026-08-27 12:00 MSK.
	base := time.Date(2026, time.August, 27, 12, 0, 0, 0, dates.ReportLocation)

	tests := []struct {
		name string
		spec dates.ReminderSpec
		want time.Time
	}{
		{
			"next monday",
			dates.ReminderSpec{Weekday: 0, Hour: 9, Minute: 0},
			time.Date(2026, time.August, 31, 9, 0, 0, 0, dates.ReportLocation),
		},
		{
			"later same day",
			dates.ReminderSpec{Weekday: 3, Hour: 18, Minute: 30},
			time.Date(2026, time.August, 27, 18, 30, 0, 0, dates.ReportLocation),
		},
		{
			"earlier same weekday rolls a week",
			dates.ReminderSpec{Weekday: 3, Hour: 9, Minute: 0},
			time.Date(2026, time.September, 3, 9, 0, 0, 0, dates.ReportLocation),
		},
		{
			"exact now rolls a week",
			dates.ReminderSpec{Weekday: 3, Hour: 12, Minute: 0},
			time.Date(2026, time.September, 3, 12, 0, 0, 0, dates.ReportLocation),
		},
		{
			"sunday",
			dates.ReminderSpec{Weekday: 6, Hour: 0, Minute: 5},
			time.Date(2026, time.August, 30, 0, 5, 0, 0, dates.ReportLocation),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextOccurrence(base, tt.spec, dates.ReportLocation)
			assert.True(t, got.Equal(tt.want), "got %v, want %v", got, tt.want)
			assert.True(t, got.After(base), "occurrence must be strictly after now")
		})
	}
}

func TestRegisterOrReplace_Idempotent(t *testing.T) {
	now := time.Date(2026, time.August, 27, 12, 0, 0, 0, dates.ReportLocation)
	s := newTestScheduler(newMockStore(), &mockSender{}, now)
	defer s.Stop()

	spec := dates.ReminderSpec{Weekday: 0, Hour: 9, Minute: 0}
	first := s.RegisterOrReplace(1, spec)
	second := s.RegisterOrReplace(1, spec)

	assert.True(t, first.Equal(second), "identical registration must not move next fire")
	assert.Equal(t, 1, s.Jobs())
}

func TestRegisterOrReplace_ReplacesJob(t *testing.T) {
	now := time.Date(2026, time.August, 27, 12, 0, 0, 0, dates.ReportLocation)
	s := newTestScheduler(newMockStore(), &mockSender{}, now)
	defer s.Stop()

	monday := s.RegisterOrReplace(1, dates.ReminderSpec{Weekday: 0, Hour: 9, Minute: 0})
	wednesday := s.RegisterOrReplace(1, dates.ReminderSpec{Weekday: 2, Hour: 18, Minute: 30})

	assert.Equal(t, 1, s.Jobs(), "replacement must not leave two jobs armed")
	assert.False(t, monday.Equal(wednesday))

	next, ok := s.NextFire(1)
	require.True(t, ok)
	assert.True(t, next.Equal(wednesday))
	assert.Equal(t, time.Wednesday, next.In(dates.ReportLocation).Weekday())
}

func TestStaleTimerDoesNotFireAfterReplace(t *testing.T) {
	now := time.Date(2026, time.August, 27, 12, 0, 0, 0, dates.ReportLocation)
	store := newMockStore()
	store.birthDates[1] = time.Date(2000, time.January, 1, 0, 0, 0, 0, dates.ReportLocation)
	sender := &mockSender{}
	s := newTestScheduler(store, sender, now)
	defer s.Stop()

	s.RegisterOrReplace(1, dates.ReminderSpec{Weekday: 0, Hour: 9, Minute: 0})

	// Simulate the old timer's callback arriving after replacement.
	s.mu.Lock()
	staleGen := s.jobs[1].gen
	s.mu.Unlock()

	s.RegisterOrReplace(1, dates.ReminderSpec{Weekday: 2, Hour: 18, Minute: 30})
	s.fire(1, staleGen)

	assert.Equal(t, 0, sender.count(), "stale generation must never deliver")
	assert.Equal(t, 1, s.Jobs())
}

func TestRecoverOnStartup(t *testing.T) {
	now := time.Date(2026, time.August, 27, 12, 0, 0, 0, dates.ReportLocation)
	store := newMockStore()
	store.reminders = []db.UserReminder{
		{UserID: 1, Spec: dates.ReminderSpec{Weekday: 0, Hour: 9, Minute: 0}},
		{UserID: 2, Spec: dates.ReminderSpec{Weekday: 6, Hour: 21, Minute: 15}},
	}
	s := newTestScheduler(store, &mockSender{}, now)
	defer s.Stop()

	require.NoError(t, s.RecoverOnStartup(context.Background()))

	assert.Equal(t, 2, s.Jobs())
	_, ok := s.NextFire(1)
	assert.True(t, ok)
	_, ok = s.NextFire(2)
	assert.True(t, ok)
	_, ok = s.NextFire(3)
	assert.False(t, ok, "no job for a user without a stored reminder")
}

func TestFire_DeliversAndReArms(t *testing.T) {
	now := time.Date(2026, time.August, 27, 12, 0, 0, 0, dates.ReportLocation)
	store := newMockStore()
	store.birthDates[1] = time.Date(2000, time.January, 1, 0, 0, 0, 0, dates.ReportLocation)
	sender := &mockSender{}
	s := newTestScheduler(store, sender, now)
	defer s.Stop()

	first := s.RegisterOrReplace(1, dates.ReminderSpec{Weekday: 0, Hour: 9, Minute: 0})

	s.mu.Lock()
	gen := s.jobs[1].gen
	s.mu.Unlock()
	s.fire(1, gen)

	assert.Equal(t, 1, sender.count())

	next, ok := s.NextFire(1)
	require.True(t, ok)
	assert.True(t, next.Equal(first.AddDate(0, 0, 7)), "job must re-arm exactly a week later")
}

func TestRegisterOrReplace_AfterStopArmsNothing(t *testing.T) {
	now := time.Date(2026, time.August, 27, 12, 0, 0, 0, dates.ReportLocation)
	s := newTestScheduler(newMockStore(), &mockSender{}, now)

	s.Stop()
	next := s.RegisterOrReplace(1, dates.ReminderSpec{Weekday: 0, Hour: 9, Minute: 0})

	assert.True(t, next.IsZero(), "a stopped scheduler must not promise a fire instant")
	assert.Equal(t, 0, s.Jobs())
}

func TestFire_NoBirthDateIsSilentNoop(t *testing.T) {
	now := time.Date(2026, time.August, 27, 12, 0, 0, 0, dates.ReportLocation)
	store := newMockStore() // no birth dates stored
	sender := &mockSender{}
	s := newTestScheduler(store, sender, now)
	defer s.Stop()

	s.RegisterOrReplace(1, dates.ReminderSpec{Weekday: 0, Hour: 9, Minute: 0})

	s.mu.Lock()
	gen := s.jobs[1].gen
	s.mu.Unlock()
	s.fire(1, gen)

	assert.Equal(t, 0, sender.count(), "firing without a birth date must not deliver")
	_, ok := s.NextFire(1)
	assert.True(t, ok, "cadence continues even when nothing was delivered")
}
