package service

import (
	"context"
	"fmt"
	"time"

	"github.com/yourusername/hottakes-api/internal/domain/repository"
	"github.com/yourusername/hottakes-api/pkg/logger"
)

const reminderLockTTL = 26 * time.Hour

// ReminderReport - итог одного запуска рассылки
type ReminderReport struct {
	GameDay    int  `json:"gameDay"`
	Candidates int  `json:"candidates"`
	Sent       int  `json:"sent"`
	Failed     int  `json:"failed"`
	Skipped    bool `json:"skipped"`
}

// ReminderService рассылает напоминания тем, кто еще не сделал сабмит
type ReminderService struct {
	userRepo       repository.UserRepository
	submissionRepo repository.SubmissionRepository
	cacheRepo      repository.CacheRepository
	gameDays       *GameDayService
	email          EmailService
	publicURL      string
	location       *time.Location
	log            *logger.Logger
	now            func() time.Time
}

// NewReminderService создает сервис напоминаний
func NewReminderService(
	userRepo repository.UserRepository,
	submissionRepo repository.SubmissionRepository,
	cacheRepo repository.CacheRepository,
	gameDays *GameDayService,
	email EmailService,
	publicURL string,
	location *time.Location,
	log *logger.Logger,
) *ReminderService {
	if location == nil {
		location = time.UTC
	}
	return &ReminderService{
		userRepo:       userRepo,
		submissionRepo: submissionRepo,
		cacheRepo:      cacheRepo,
		gameDays:       gameDays,
		email:          email,
		publicURL:      publicURL,
		location:       location,
		log:            log.Named("ReminderService"),
		now:            time.Now,
	}
}

func (s *ReminderService) lockKey(gameDay int) string {
	return fmt.Sprintf("reminder:%s:day:%d", s.now().In(s.location).Format("2006-01-02"), gameDay)
}

// SendDailyReminders отправляет письма по текущему игровому дню.
// Одна рассылка на календарный день (SETNX), ошибки отдельных писем не прерывают рассылку.
func (s *ReminderService) SendDailyReminders(ctx context.Context) (*ReminderReport, error) {
	report := &ReminderReport{}

	day, err := s.gameDays.FindCurrentGameDay(ctx)
	if err != nil {
		return nil, err
	}
	if day == nil {
		s.log.Info("Нет активного игрового дня, напоминания не нужны")
		report.Skipped = true
		return report, nil
	}
	report.GameDay = day.GameDay

	if s.cacheRepo != nil {
		acquired, err := s.cacheRepo.SetNX(ctx, s.lockKey(day.GameDay), s.now().Unix(), reminderLockTTL)
		if err != nil {
			return nil, fmt.Errorf("acquire reminder lock: %w", err)
		}
		if !acquired {
			s.log.Info("Напоминания за сегодня уже отправлены", "game_day", day.GameDay)
			report.Skipped = true
			return report, nil
		}
	}

	users, err := s.userRepo.ListWithEmail(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users with email: %w", err)
	}
	submitted, err := s.submissionRepo.ListUserIDsByGameDay(ctx, day.GameDay)
	if err != nil {
		return nil, fmt.Errorf("list submitters of day %d: %w", day.GameDay, err)
	}
	done := make(map[uint]struct{}, len(submitted))
	for _, id := range submitted {
		done[id] = struct{}{}
	}

	for i := range users {
		user := &users[i]
		if _, ok := done[user.ID]; ok || !user.HasEmail() {
			continue
		}
		report.Candidates++

		err := s.email.SendReminder(ctx, ReminderEmail{
			To:       *user.Email,
			Nickname: user.Nickname,
			GameDay:  day.GameDay,
			LockTime: day.LockTime,
			Link:     s.publicURL,
		})
		if err != nil {
			report.Failed++
			s.log.Error("Не удалось отправить напоминание", "user_id", user.ID, "game_day", day.GameDay, "error", err)
			if ctx.Err() != nil {
				return report, ctx.Err()
			}
			continue
		}
		report.Sent++
	}

	s.log.Info("Рассылка напоминаний завершена",
		"game_day", report.GameDay, "candidates", report.Candidates, "sent", report.Sent, "failed", report.Failed)
	return report, nil
}
