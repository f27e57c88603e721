package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vitameter/internal/dates"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	database, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return database
}

func TestBirthDateRoundTrip(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	_, ok, err := database.GetBirthDate(ctx, 42)
	require.NoError(t, err)
	assert.False(t, ok, "no birth date expected for unknown user")

	birth := time.Date(2000, time.January, 1, 0, 0, 0, 0, dates.ReportLocation)
	require.NoError(t, database.SetBirthDate(ctx, 42, birth))

	got, ok, err := database.GetBirthDate(ctx, 42)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, got.Equal(birth))
	assert.Equal(t, dates.ReportLocation, got.Location(), "stored dates read back in the reporting zone")

	// Overwrite.
	birth2 := time.Date(1995, time.June, 15, 0, 0, 0, 0, dates.ReportLocation)
	require.NoError(t, database.SetBirthDate(ctx, 42, birth2))
	got, ok, err = database.GetBirthDate(ctx, 42)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, got.Equal(birth2))
}

func TestClearBirthDateKeepsReminder(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	spec := dates.ReminderSpec{Weekday: 0, Hour: 9, Minute: 0}
	require.NoError(t, database.SetBirthDate(ctx, 7, time.Date(1990, time.May, 5, 0, 0, 0, 0, dates.ReportLocation)))
	require.NoError(t, database.SetReminder(ctx, 7, spec))

	require.NoError(t, database.ClearBirthDate(ctx, 7))

	_, ok, err := database.GetBirthDate(ctx, 7)
	require.NoError(t, err)
	assert.False(t, ok)

	got, ok, err := database.GetReminder(ctx, 7)
	require.NoError(t, err)
	require.True(t, ok, "clearing birth date must not touch the reminder")
	assert.Equal(t, spec, got)
}

func TestSetReminderWithoutBirthDate(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	spec := dates.ReminderSpec{Weekday: 2, Hour: 18, Minute: 30}
	require.NoError(t, database.SetReminder(ctx, 100, spec))

	got, ok, err := database.GetReminder(ctx, 100)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, spec, got)

	_, ok, err = database.GetBirthDate(ctx, 100)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestListReminders(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, database.SetReminder(ctx, 1, dates.ReminderSpec{Weekday: 0, Hour: 9, Minute: 0}))
	require.NoError(t, database.SetReminder(ctx, 2, dates.ReminderSpec{Weekday: 6, Hour: 21, Minute: 15}))
	// User with a birth date only must not appear.
	require.NoError(t, database.SetBirthDate(ctx, 3, time.Date(2001, time.February, 3, 0, 0, 0, 0, dates.ReportLocation)))

	list, err := database.ListReminders(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, int64(1), list[0].UserID)
	assert.Equal(t, int64(2), list[1].UserID)
	assert.Equal(t, dates.ReminderSpec{Weekday: 6, Hour: 21, Minute: 15}, list[1].Spec)
}
