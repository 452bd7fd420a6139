package reminder

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/hottakes-api/pkg/logger"
)

func TestScheduler_NextRun(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*3600)
	s := NewScheduler(Config{Hour: 9, Minute: 30, Location: loc}, func(context.Context) error { return nil }, logger.Nop())

	// 05:00 UTC = 08:00 местного, запуск сегодня
	now := time.Date(2025, 6, 1, 5, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 6, 1, 9, 30, 0, 0, loc), s.NextRun(now))

	// ровно в момент запуска следующий запуск завтра
	now = time.Date(2025, 6, 1, 6, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 6, 2, 9, 30, 0, 0, loc), s.NextRun(now))

	// после запуска тоже завтра
	now = time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC)
	assert.True(t, s.NextRun(now).Equal(time.Date(2025, 6, 2, 9, 30, 0, 0, loc)))
}

func TestScheduler_StartTwice(t *testing.T) {
	s := NewScheduler(Config{Hour: 3}, func(context.Context) error { return nil }, logger.Nop())

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	assert.ErrorIs(t, s.Start(context.Background()), ErrAlreadyStarted, "второй Start должен вернуть ошибку")
}

func TestScheduler_StopIsIdempotent(t *testing.T) {
	s := NewScheduler(Config{Hour: 3}, func(context.Context) error { return nil }, logger.Nop())
	s.Stop()

	require.NoError(t, s.Start(context.Background()))
	s.Stop()
	s.Stop()
}

func TestScheduler_RunNowRejectsOverlap(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	var calls int32

	s := NewScheduler(Config{}, func(ctx context.Context) error {
		atomic.AddInt32(&calls, 1)
		close(entered)
		<-release
		return nil
	}, logger.Nop())

	errCh := make(chan error, 1)
	go func() { errCh <- s.RunNow(context.Background()) }()
	<-entered

	assert.ErrorIs(t, s.RunNow(context.Background()), ErrAlreadyRunning)

	close(release)
	require.NoError(t, <-errCh)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestScheduler_RunNowPropagatesError(t *testing.T) {
	boom := errors.New("boom")
	s := NewScheduler(Config{}, func(context.Context) error { return boom }, logger.Nop())

	assert.ErrorIs(t, s.RunNow(context.Background()), boom)
	// после ошибки слот освобождается
	assert.ErrorIs(t, s.RunNow(context.Background()), boom)
}

func TestScheduler_FiresAtNextRun(t *testing.T) {
	fired := make(chan struct{}, 1)
	s := NewScheduler(Config{Hour: 12, Minute: 0}, func(context.Context) error {
		select {
		case fired <- struct{}{}:
		default:
		}
		return nil
	}, logger.Nop())

	// часы за 50мс до запуска
	target := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	offset := time.Now().Sub(target.Add(-50 * time.Millisecond))
	s.now = func() time.Time { return time.Now().Add(-offset) }

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("джоба не была запущена")
	}
}
