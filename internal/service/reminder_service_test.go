package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/hottakes-api/internal/domain/entity"
	"github.com/yourusername/hottakes-api/internal/testutil"
)

func TestReminderService_SendsToPendingPlayersOncePerDay(t *testing.T) {
	// Arrange
	env := newTestEnv(t)
	ctx := context.Background()
	lock := env.clock.Add(6 * time.Hour)
	testutil.SeedGameDay(t, env.db, 1, entity.GameDayStatusActive, &lock)
	h := testutil.SeedHottakes(t, env.db, 1, 10)

	done := testutil.SeedUser(t, env.db, "done", ptr("done@example.com"))
	testutil.SeedUser(t, env.db, "todo", ptr("todo@example.com"))
	testutil.SeedUser(t, env.db, "broken", ptr("broken@example.com"))
	testutil.SeedUser(t, env.db, "nomail", nil)
	env.email.failFor = map[string]bool{"broken@example.com": true}

	_, err := env.submissions.Submit(ctx, done.ID, "1", SubmitInput{SwipeDecisions: skipAll(h)})
	require.NoError(t, err)

	// Act
	report, err := env.reminders.SendDailyReminders(ctx)

	// Assert
	require.NoError(t, err, "ошибка отдельного письма не прерывает рассылку")
	assert.Equal(t, 1, report.GameDay)
	assert.Equal(t, 2, report.Candidates)
	assert.Equal(t, 1, report.Sent)
	assert.Equal(t, 1, report.Failed)
	require.Len(t, env.email.reminders, 1)
	assert.Equal(t, "todo@example.com", env.email.reminders[0].To)
	assert.True(t, env.email.reminders[0].LockTime.Equal(lock))

	again, err := env.reminders.SendDailyReminders(ctx)
	require.NoError(t, err)
	assert.True(t, again.Skipped, "второй запуск в тот же день пропускается")
	assert.Len(t, env.email.reminders, 1)

	env.clock = env.clock.Add(24 * time.Hour)
	env.gameDays.now = func() time.Time { return env.clock.Add(-24 * time.Hour) }
	next, err := env.reminders.SendDailyReminders(ctx)
	require.NoError(t, err)
	assert.False(t, next.Skipped, "на следующий день блокировка другая")
}

func TestReminderService_NoActiveDay(t *testing.T) {
	env := newTestEnv(t)
	testutil.SeedUser(t, env.db, "idle", ptr("idle@example.com"))

	report, err := env.reminders.SendDailyReminders(context.Background())
	require.NoError(t, err)
	assert.True(t, report.Skipped)
	assert.Empty(t, env.email.reminders)
}
