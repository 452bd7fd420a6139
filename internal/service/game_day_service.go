package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/yourusername/hottakes-api/internal/domain/entity"
	"github.com/yourusername/hottakes-api/internal/domain/repository"
	apperrors "github.com/yourusername/hottakes-api/internal/pkg/errors"
	"github.com/yourusername/hottakes-api/pkg/logger"
)

// GameDayParamActive - значение параметра gameDay для текущего дня
const GameDayParamActive = "active"

// GameDayService отвечает за выбор текущего дня, блокировку сабмитов
// и админский жизненный цикл игровых дней
type GameDayService struct {
	gameDayRepo    repository.GameDayRepository
	submissionRepo repository.SubmissionRepository
	lbCache        *LeaderboardCache
	log            *logger.Logger
	now            func() time.Time
}

// NewGameDayService создает новый сервис игровых дней
func NewGameDayService(
	gameDayRepo repository.GameDayRepository,
	submissionRepo repository.SubmissionRepository,
	lbCache *LeaderboardCache,
	log *logger.Logger,
) *GameDayService {
	return &GameDayService{
		gameDayRepo:    gameDayRepo,
		submissionRepo: submissionRepo,
		lbCache:        lbCache,
		log:            log.Named("GameDayService"),
		now:            time.Now,
	}
}

// SelectCurrentGameDay выбирает текущий день среди days.
// Кандидаты: ACTIVE, у которых lockTime не задан или еще не наступил.
// Дни с явным lockTime идут раньше дней без него, дальше по lockTime,
// createdAt и id. Возвращает nil, если кандидатов нет.
func SelectCurrentGameDay(days []entity.GameDay, now time.Time) *entity.GameDay {
	candidates := make([]entity.GameDay, 0, len(days))
	for _, d := range days {
		if !d.IsActive() || d.IsLockedAt(now) {
			continue
		}
		candidates = append(candidates, d)
	}
	if len(candidates) == 0 {
		return nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		switch {
		case a.LockTime != nil && b.LockTime == nil:
			return true
		case a.LockTime == nil && b.LockTime != nil:
			return false
		case a.LockTime != nil && !a.LockTime.Equal(*b.LockTime):
			return a.LockTime.Before(*b.LockTime)
		case !a.CreatedAt.Equal(b.CreatedAt):
			return a.CreatedAt.Before(b.CreatedAt)
		default:
			return a.ID < b.ID
		}
	})

	current := candidates[0]
	return &current
}

// FindCurrentGameDay возвращает текущий игровой день или nil
func (s *GameDayService) FindCurrentGameDay(ctx context.Context) (*entity.GameDay, error) {
	active, err := s.gameDayRepo.ListByStatus(ctx, entity.GameDayStatusActive)
	if err != nil {
		return nil, fmt.Errorf("list active game days: %w", err)
	}
	return SelectCurrentGameDay(active, s.now()), nil
}

// FindCurrentGameDayNumber возвращает номер текущего дня или nil
func (s *GameDayService) FindCurrentGameDayNumber(ctx context.Context) (*int, error) {
	day, err := s.FindCurrentGameDay(ctx)
	if err != nil || day == nil {
		return nil, err
	}
	n := day.GameDay
	return &n, nil
}

// ResolveGameDayParam переводит параметр запроса в номер дня.
// Пустое значение и "active" означают текущий день, иначе ожидается целое число.
func (s *GameDayService) ResolveGameDayParam(ctx context.Context, raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, GameDayParamActive) {
		current, err := s.FindCurrentGameDayNumber(ctx)
		if err != nil {
			return 0, err
		}
		if current == nil {
			return 0, apperrors.NotFoundf("no active game day")
		}
		return *current, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.Validationf("gameDay must be an integer or %q, got %q", GameDayParamActive, raw).
			WithIssues(apperrors.Issue{Path: "gameDay", Message: "not an integer"})
	}
	return n, nil
}

// CheckLock проверяет, можно ли еще писать сабмиты в день gameDay на момент now
func (s *GameDayService) CheckLock(ctx context.Context, gameDay int, now time.Time) error {
	day, err := s.getByNumber(ctx, gameDay)
	if err != nil {
		return err
	}
	return checkLock(day, now)
}

func checkLock(day *entity.GameDay, now time.Time) error {
	if day.LockTime == nil {
		return nil
	}
	if !day.AcceptsSubmissions() {
		return apperrors.Forbiddenf("game day %d is locked because it is not active", day.GameDay).
			WithDetail("status", day.Status)
	}
	if day.IsLockedAt(now) {
		return apperrors.Forbiddenf("game day %d is locked since %s", day.GameDay, day.LockTime.UTC().Format(time.RFC3339)).
			WithDetail("lockTime", day.LockTime.UTC())
	}
	return nil
}

func (s *GameDayService) getByNumber(ctx context.Context, gameDay int) (*entity.GameDay, error) {
	day, err := s.gameDayRepo.GetByNumber(ctx, gameDay)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFoundf("game day %d not found", gameDay)
		}
		return nil, err
	}
	return day, nil
}

func (s *GameDayService) getByID(ctx context.Context, id uint) (*entity.GameDay, error) {
	day, err := s.gameDayRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFoundf("game day record #%d not found", id)
		}
		return nil, err
	}
	return day, nil
}

// GetByNumber возвращает игровой день по номеру
func (s *GameDayService) GetByNumber(ctx context.Context, gameDay int) (*entity.GameDay, error) {
	return s.getByNumber(ctx, gameDay)
}

// List возвращает все игровые дни по возрастанию номера
func (s *GameDayService) List(ctx context.Context) ([]entity.GameDay, error) {
	return s.gameDayRepo.List(ctx)
}

// CreateGameDayInput - параметры создания дня. Пустой GameDay означает max+1.
type CreateGameDayInput struct {
	GameDay     *int
	Description string
	Status      string
	StartTime   *time.Time
	LockTime    *time.Time
}

// Create создает игровой день
func (s *GameDayService) Create(ctx context.Context, input CreateGameDayInput) (*entity.GameDay, error) {
	status := input.Status
	if status == "" {
		status = entity.GameDayStatusPending
	}
	if !entity.ValidGameDayStatus(status) {
		return nil, apperrors.Validationf("unknown game day status %q", status).
			WithIssues(apperrors.Issue{Path: "status", Message: "must be one of PENDING, ACTIVE, FINALIZED, ARCHIVED"})
	}
	if err := validateWindow(input.StartTime, input.LockTime); err != nil {
		return nil, err
	}

	number := 0
	if input.GameDay != nil {
		if *input.GameDay <= 0 {
			return nil, apperrors.Validationf("gameDay must be positive").
				WithIssues(apperrors.Issue{Path: "gameDay", Message: "must be positive"})
		}
		number = *input.GameDay
	} else {
		max, err := s.gameDayRepo.MaxNumber(ctx)
		if err != nil {
			return nil, fmt.Errorf("get max game day: %w", err)
		}
		number = max + 1
	}

	day := &entity.GameDay{
		GameDay:     number,
		Description: input.Description,
		Status:      status,
		StartTime:   input.StartTime,
		LockTime:    input.LockTime,
	}
	if status == entity.GameDayStatusFinalized {
		now := s.now()
		day.FinalizedAt = &now
	}

	if err := s.gameDayRepo.Create(ctx, day); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, apperrors.Conflictf("game day %d already exists", number)
		}
		return nil, err
	}

	s.log.Info("Создан игровой день", "game_day", day.GameDay, "status", day.Status)
	return day, nil
}

// UpdateGameDayInput - частичное обновление дня. nil означает "не менять".
type UpdateGameDayInput struct {
	Description    *string
	Status         *string
	StartTime      *time.Time
	LockTime       *time.Time
	ClearStartTime bool
	ClearLockTime  bool
}

func (in UpdateGameDayInput) changesLockTime(current *time.Time) bool {
	if in.ClearLockTime {
		return current != nil
	}
	if in.LockTime == nil {
		return false
	}
	return current == nil || !in.LockTime.Equal(*current)
}

// Update применяет частичное обновление.
// Наступивший lockTime изменить нельзя ни в каком статусе: иначе понижение
// ACTIVE дня до PENDING позволило бы заново открыть пики после дедлайна.
// Статусы пишутся напрямую; переходы назад разрешены, но логируются.
func (s *GameDayService) Update(ctx context.Context, id uint, input UpdateGameDayInput) (*entity.GameDay, error) {
	day, err := s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}
	now := s.now()

	if input.changesLockTime(day.LockTime) && day.IsLockedAt(now) {
		return nil, apperrors.Forbiddenf("lock time of game day %d has already passed and cannot be changed", day.GameDay).
			WithDetail("lockTime", day.LockTime.UTC())
	}

	if input.Description != nil {
		day.Description = *input.Description
	}
	if input.ClearStartTime {
		day.StartTime = nil
	} else if input.StartTime != nil {
		day.StartTime = input.StartTime
	}
	if input.ClearLockTime {
		day.LockTime = nil
	} else if input.LockTime != nil {
		day.LockTime = input.LockTime
	}
	if err := validateWindow(day.StartTime, day.LockTime); err != nil {
		return nil, err
	}

	if input.Status != nil && *input.Status != day.Status {
		next := *input.Status
		if !entity.ValidGameDayStatus(next) {
			return nil, apperrors.Validationf("unknown game day status %q", next).
				WithIssues(apperrors.Issue{Path: "status", Message: "must be one of PENDING, ACTIVE, FINALIZED, ARCHIVED"})
		}
		if entity.IsBackwardTransition(day.Status, next) {
			s.log.Warn("Игровой день переводится назад по жизненному циклу",
				"game_day", day.GameDay, "from", day.Status, "to", next)
		}
		day.Status = next
		if next == entity.GameDayStatusFinalized && day.FinalizedAt == nil {
			day.FinalizedAt = &now
		}
	}

	if err := s.gameDayRepo.Update(ctx, day); err != nil {
		return nil, err
	}
	return day, nil
}

// Finalize переводит день в FINALIZED и проставляет finalizedAt, если его не было
func (s *GameDayService) Finalize(ctx context.Context, id uint) (*entity.GameDay, error) {
	day, err := s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if entity.IsBackwardTransition(day.Status, entity.GameDayStatusFinalized) {
		s.log.Warn("Финализация архивного дня", "game_day", day.GameDay, "from", day.Status)
	}
	day.Status = entity.GameDayStatusFinalized
	if day.FinalizedAt == nil {
		now := s.now()
		day.FinalizedAt = &now
	}
	if err := s.gameDayRepo.Update(ctx, day); err != nil {
		return nil, err
	}
	s.log.Info("Игровой день финализирован", "game_day", day.GameDay)
	return day, nil
}

// Delete удаляет день вместе с хоттейками. Дни с сабмитами удалять нельзя.
func (s *GameDayService) Delete(ctx context.Context, id uint) error {
	day, err := s.getByID(ctx, id)
	if err != nil {
		return err
	}

	count, err := s.submissionRepo.CountByGameDay(ctx, day.GameDay)
	if err != nil {
		return fmt.Errorf("count submissions of game day %d: %w", day.GameDay, err)
	}
	if count > 0 {
		return apperrors.Conflictf("game day %d has %d submissions and cannot be deleted", day.GameDay, count).
			WithDetail("submissions", count)
	}

	if err := s.gameDayRepo.DeleteWithHottakes(ctx, day); err != nil {
		return err
	}
	s.lbCache.Invalidate(ctx, day.GameDay)
	s.log.Info("Игровой день удален", "game_day", day.GameDay)
	return nil
}

func validateWindow(start, lock *time.Time) error {
	if start != nil && lock != nil && lock.Before(*start) {
		return apperrors.Validationf("lockTime must not be before startTime").
			WithIssues(apperrors.Issue{Path: "lockTime", Message: "before startTime"})
	}
	return nil
}
