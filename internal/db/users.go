package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"vitameter/internal/dates"
)

const birthDateLayout = "2006-01-02"

// GetBirthDate returns the stored birth date for the user.
// The second return value is false when no birth date is set.
func (db *DB) GetBirthDate(ctx context.Context, userID int64) (time.Time, bool, error) {
	var raw sql.NullString
	err := db.QueryRowContext(ctx,
		"SELECT birth_date FROM users WHERE user_id = ?", userID,
	).Scan(&raw)
	if err == sql.ErrNoRows {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	if !raw.Valid {
		return time.Time{}, false, nil
	}

	t, err := time.ParseInLocation(birthDateLayout, raw.String, dates.ReportLocation)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("corrupt birth_date for user %d: %w", userID, err)
	}
	return t, true, nil
}

// SetBirthDate stores the birth date, creating the user row if needed.
// Only the date part is persisted.
func (db *DB) SetBirthDate(ctx context.Context, userID int64, birthDate time.Time) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO users (user_id, birth_date) VALUES (?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			birth_date = excluded.birth_date,
			updated_at = CURRENT_TIMESTAMP`,
		userID, birthDate.Format(birthDateLayout))
	return err
}

// ClearBirthDate removes the birth date but leaves the reminder spec intact.
func (db *DB) ClearBirthDate(ctx context.Context, userID int64) error {
	_, err := db.ExecContext(ctx, `
		UPDATE users SET birth_date = NULL, updated_at = CURRENT_TIMESTAMP
		WHERE user_id = ?`, userID)
	return err
}

// GetReminder returns the stored weekly reminder spec for the user.
// The second return value is false when no reminder is configured.
func (db *DB) GetReminder(ctx context.Context, userID int64) (dates.ReminderSpec, bool, error) {
	var day, hour, minute sql.NullInt64
	err := db.QueryRowContext(ctx,
		"SELECT reminder_day, reminder_hour, reminder_minute FROM users WHERE user_id = ?",
		userID,
	).Scan(&day, &hour, &minute)
	if err == sql.ErrNoRows {
		return dates.ReminderSpec{}, false, nil
	}
	if err != nil {
		return dates.ReminderSpec{}, false, err
	}
	if !day.Valid || !hour.Valid || !minute.Valid {
		return dates.ReminderSpec{}, false, nil
	}

	return dates.ReminderSpec{
		Weekday: int(day.Int64),
		Hour:    int(hour.Int64),
		Minute:  int(minute.Int64),
	}, true, nil
}

// SetReminder stores the weekly reminder spec, replacing any previous one.
func (db *DB) SetReminder(ctx context.Context, userID int64, spec dates.ReminderSpec) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO users (user_id, reminder_day, reminder_hour, reminder_minute)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			reminder_day = excluded.reminder_day,
			reminder_hour = excluded.reminder_hour,
			reminder_minute = excluded.reminder_minute,
			updated_at = CURRENT_TIMESTAMP`,
		userID, spec.Weekday, spec.Hour, spec.Minute)
	return err
}

// UserReminder pairs a user with their stored reminder spec.
type UserReminder struct {
	UserID int64
	Spec   dates.ReminderSpec
}

// ListReminders returns every user that has a reminder configured.
// Used on startup to rebuild the scheduler's job table.
func (db *DB) ListReminders(ctx context.Context) ([]UserReminder, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT user_id, reminder_day, reminder_hour, reminder_minute
		FROM users
		WHERE reminder_day IS NOT NULL
		  AND reminder_hour IS NOT NULL
		  AND reminder_minute IS NOT NULL
		ORDER BY user_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []UserReminder
	for rows.Next() {
		var r UserReminder
		if err := rows.Scan(&r.UserID, &r.Spec.Weekday, &r.Spec.Hour, &r.Spec.Minute); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
