package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"

	pgRepo "github.com/yourusername/hottakes-api/internal/repository/postgres"
	"github.com/yourusername/hottakes-api/internal/testutil"
	"github.com/yourusername/hottakes-api/pkg/auth"
	"github.com/yourusername/hottakes-api/pkg/logger"
)

// testEnv - сервисы поверх sqlite в памяти с управляемыми часами
type testEnv struct {
	db    *gorm.DB
	cache *testutil.MemoryCache
	email *recordingEmail
	clock time.Time

	users       *pgRepo.UserRepo
	gameDays    *GameDayService
	submissions *SubmissionService
	hottakes    *HottakeService
	leaderboard *LeaderboardService
	auth        *AuthService
	reminders   *ReminderService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := logger.Nop()
	env := &testEnv{
		db:    testutil.NewTestDB(t),
		cache: testutil.NewMemoryCache(),
		email: &recordingEmail{},
		clock: time.Date(2025, 5, 10, 12, 0, 0, 0, time.UTC),
	}
	now := func() time.Time { return env.clock }

	env.users = pgRepo.NewUserRepo(env.db)
	hottakeRepo := pgRepo.NewHottakeRepo(env.db)
	gameDayRepo := pgRepo.NewGameDayRepo(env.db)
	submissionRepo := pgRepo.NewSubmissionRepo(env.db)

	lbCache := NewLeaderboardCache(env.cache, time.Minute, log)
	env.gameDays = NewGameDayService(gameDayRepo, submissionRepo, lbCache, log)
	env.gameDays.now = now
	env.submissions = NewSubmissionService(submissionRepo, hottakeRepo, env.users, env.gameDays, lbCache, 10, log)
	env.submissions.now = now
	env.hottakes = NewHottakeService(hottakeRepo, env.gameDays, env.submissions, log)
	env.leaderboard = NewLeaderboardService(submissionRepo, hottakeRepo, lbCache, log)

	jwtService, err := auth.NewJWTService("test-secret", 1)
	if err != nil {
		t.Fatalf("jwt service: %v", err)
	}
	env.auth, err = NewAuthService(env.users, env.cache, jwtService, env.email, "https://hottakes.test/", log)
	if err != nil {
		t.Fatalf("auth service: %v", err)
	}
	env.auth.now = now

	env.reminders = NewReminderService(env.users, submissionRepo, env.cache, env.gameDays, env.email, "https://hottakes.test", time.UTC, log)
	env.reminders.now = now
	return env
}

type resetMail struct {
	To, Nickname, Link string
}

// recordingEmail запоминает письма; адреса из failFor дают ошибку
type recordingEmail struct {
	mu        sync.Mutex
	reminders []ReminderEmail
	resets    []resetMail
	failFor   map[string]bool
}

func (r *recordingEmail) SendReminder(_ context.Context, msg ReminderEmail) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failFor[msg.To] {
		return errors.New("smtp: mailbox unavailable")
	}
	r.reminders = append(r.reminders, msg)
	return nil
}

func (r *recordingEmail) SendPasswordReset(_ context.Context, to, nickname, link string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resets = append(r.resets, resetMail{To: to, Nickname: nickname, Link: link})
	return nil
}

func ptr[T any](v T) *T { return &v }
