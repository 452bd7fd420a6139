package service

import (
	"context"
	"errors"
	"strings"

	"github.com/yourusername/hottakes-api/internal/domain/entity"
	"github.com/yourusername/hottakes-api/internal/domain/repository"
	apperrors "github.com/yourusername/hottakes-api/internal/pkg/errors"
	"github.com/yourusername/hottakes-api/pkg/logger"
)

// HottakeService предоставляет методы для работы с хоттейками
type HottakeService struct {
	hottakeRepo repository.HottakeRepository
	gameDays    *GameDayService
	submissions *SubmissionService
	log         *logger.Logger
}

// NewHottakeService создает новый сервис хоттейков
func NewHottakeService(
	hottakeRepo repository.HottakeRepository,
	gameDays *GameDayService,
	submissions *SubmissionService,
	log *logger.Logger,
) *HottakeService {
	return &HottakeService{
		hottakeRepo: hottakeRepo,
		gameDays:    gameDays,
		submissions: submissions,
		log:         log.Named("HottakeService"),
	}
}

// List возвращает хоттейки дня; gameDay=all возвращает все
func (s *HottakeService) List(ctx context.Context, rawGameDay string) ([]entity.Hottake, error) {
	if strings.EqualFold(strings.TrimSpace(rawGameDay), GameDayParamAll) {
		return s.hottakeRepo.ListAll(ctx)
	}
	gameDay, err := s.gameDays.ResolveGameDayParam(ctx, rawGameDay)
	if err != nil {
		return nil, err
	}
	return s.hottakeRepo.ListByGameDay(ctx, gameDay)
}

// Create создает открытый хоттейк. Без gameDay используется текущий день.
func (s *HottakeService) Create(ctx context.Context, text string, gameDay *int) (*entity.Hottake, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.Validationf("hottake text must not be empty").
			WithIssues(apperrors.Issue{Path: "text", Message: "required"})
	}

	var number int
	if gameDay != nil {
		number = *gameDay
	} else {
		current, err := s.gameDays.ResolveGameDayParam(ctx, "")
		if err != nil {
			return nil, err
		}
		number = current
	}
	if _, err := s.gameDays.GetByNumber(ctx, number); err != nil {
		return nil, err
	}

	hottake := &entity.Hottake{Text: text, Status: entity.HottakeStatusOpen, GameDay: number}
	if err := s.hottakeRepo.Create(ctx, hottake); err != nil {
		return nil, err
	}
	s.log.Info("Создан хоттейк", "hottake_id", hottake.ID, "game_day", number)
	return hottake, nil
}

// UpdateStatus меняет исход хоттейка и пересчитывает сохраненные счета его дня.
// Возврат в OPEN разрешен для исправления ошибочного исхода.
func (s *HottakeService) UpdateStatus(ctx context.Context, id uint, status string) (*entity.Hottake, error) {
	if !entity.ValidHottakeStatus(status) {
		return nil, apperrors.Validationf("unknown hottake status %q", status).
			WithIssues(apperrors.Issue{Path: "status", Message: "must be one of OPEN, TRUE, FALSE"})
	}

	hottake, err := s.hottakeRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFoundf("hottake #%d not found", id)
		}
		return nil, err
	}
	if hottake.Status == status {
		return hottake, nil
	}

	if err := s.hottakeRepo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	s.log.Info("Статус хоттейка изменен", "hottake_id", id, "from", hottake.Status, "to", status, "game_day", hottake.GameDay)
	hottake.Status = status

	// Счета всегда пересчитываются при чтении, здесь только освежаем сохраненные
	if _, err := s.submissions.RescoreGameDay(ctx, hottake.GameDay); err != nil {
		s.log.Warn("Не удалось пересчитать счета после смены статуса", "game_day", hottake.GameDay, "error", err)
	}
	return hottake, nil
}
