package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/yourusername/hottakes-api/internal/domain/entity"
	"github.com/yourusername/hottakes-api/internal/domain/repository"
	"github.com/yourusername/hottakes-api/internal/handler/dto"
	apperrors "github.com/yourusername/hottakes-api/internal/pkg/errors"
	"github.com/yourusername/hottakes-api/internal/service/scoring"
	"github.com/yourusername/hottakes-api/pkg/logger"
)

// GameDayParamAll - значение параметра gameDay для выборки по всем дням
const GameDayParamAll = "all"

// SubmitInput - пики и решения свайпа от игрока
type SubmitInput struct {
	Picks          []*uint
	SwipeDecisions []entity.SwipeDecision
}

// SubmissionListFilter - фильтры GET /api/submissions
type SubmissionListFilter struct {
	Nickname   string
	UserID     *uint
	RawGameDay string
}

// SubmissionService отвечает за запись и чтение сабмитов
type SubmissionService struct {
	submissionRepo repository.SubmissionRepository
	hottakeRepo    repository.HottakeRepository
	userRepo       repository.UserRepository
	gameDays       *GameDayService
	lbCache        *LeaderboardCache
	scorer         *submissionScorer
	hottakesPerDay int
	log            *logger.Logger
	now            func() time.Time
}

// NewSubmissionService создает новый сервис сабмитов
func NewSubmissionService(
	submissionRepo repository.SubmissionRepository,
	hottakeRepo repository.HottakeRepository,
	userRepo repository.UserRepository,
	gameDays *GameDayService,
	lbCache *LeaderboardCache,
	hottakesPerDay int,
	log *logger.Logger,
) *SubmissionService {
	log = log.Named("SubmissionService")
	return &SubmissionService{
		submissionRepo: submissionRepo,
		hottakeRepo:    hottakeRepo,
		userRepo:       userRepo,
		gameDays:       gameDays,
		lbCache:        lbCache,
		scorer:         &submissionScorer{hottakeRepo: hottakeRepo, submissionRepo: submissionRepo, log: log},
		hottakesPerDay: hottakesPerDay,
		log:            log,
		now:            time.Now,
	}
}

// ValidateSubmitShape проверяет форму входа до бизнес-правил:
// не больше пяти пиков, пики уникальны, id решений уникальны, решения допустимы.
func ValidateSubmitShape(input SubmitInput) error {
	var issues []apperrors.Issue

	if len(input.Picks) > entity.MaxPicks {
		issues = append(issues, apperrors.Issue{
			Path:    "picks",
			Message: fmt.Sprintf("at most %d picks allowed, got %d", entity.MaxPicks, len(input.Picks)),
		})
	}
	seenPicks := make(map[uint]int, len(input.Picks))
	for i, pick := range input.Picks {
		if pick == nil {
			continue
		}
		if first, dup := seenPicks[*pick]; dup {
			issues = append(issues, apperrors.Issue{
				Path:    fmt.Sprintf("picks.%d", i),
				Message: fmt.Sprintf("hottake %d is already ranked at position %d", *pick, first),
			})
			continue
		}
		seenPicks[*pick] = i
	}

	seenDecisions := make(map[uint]struct{}, len(input.SwipeDecisions))
	for i, d := range input.SwipeDecisions {
		if !entity.ValidDecision(d.Decision) {
			issues = append(issues, apperrors.Issue{
				Path:    fmt.Sprintf("swipeDecisions.%d.decision", i),
				Message: fmt.Sprintf("decision must be hit, pass or skip, got %q", d.Decision),
			})
		}
		if _, dup := seenDecisions[d.HottakeID]; dup {
			issues = append(issues, apperrors.Issue{
				Path:    fmt.Sprintf("swipeDecisions.%d.hottakeId", i),
				Message: fmt.Sprintf("duplicate decision for hottake %d", d.HottakeID),
			})
			continue
		}
		seenDecisions[d.HottakeID] = struct{}{}
	}

	if len(issues) > 0 {
		return apperrors.Validationf("invalid submission").WithIssues(issues...)
	}
	return nil
}

// Submit сохраняет сабмит пользователя за игровой день.
//
// Порядок проверок: форма входа, пользователь, блокировка дня, статус дня,
// ровно hottakesPerDay открытых хоттейков, решения покрывают ровно открытые
// хоттейки, пики только из открытых. Дальше upsert по (user, gameDay) и
// пересчет счета по свежим статусам. Upsert и исправление счета не атомарны:
// если статус хоттейка сменится между ними, счет поправится при следующем чтении.
func (s *SubmissionService) Submit(ctx context.Context, userID uint, rawGameDay string, input SubmitInput) (*dto.SubmissionView, error) {
	if err := ValidateSubmitShape(input); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Unauthorizedf("session user no longer exists")
		}
		return nil, err
	}

	gameDay, err := s.gameDays.ResolveGameDayParam(ctx, rawGameDay)
	if err != nil {
		return nil, err
	}
	day, err := s.gameDays.GetByNumber(ctx, gameDay)
	if err != nil {
		return nil, err
	}
	if err := checkLock(day, s.now()); err != nil {
		return nil, err
	}
	if !day.AcceptsSubmissions() {
		return nil, apperrors.Validationf("game day %d is %s and no longer accepts submissions", day.GameDay, day.Status).
			WithDetail("status", day.Status)
	}

	hottakes, err := s.hottakeRepo.ListByGameDay(ctx, gameDay)
	if err != nil {
		return nil, fmt.Errorf("load hottakes of game day %d: %w", gameDay, err)
	}
	open := make(map[uint]struct{}, len(hottakes))
	for _, h := range hottakes {
		if h.IsOpen() {
			open[h.ID] = struct{}{}
		}
	}
	if len(open) != s.hottakesPerDay {
		return nil, apperrors.Validationf("game day %d must have exactly %d open hottakes, found %d", gameDay, s.hottakesPerDay, len(open)).
			WithDetail("count", len(open)).
			WithDetail("expected", s.hottakesPerDay)
	}

	if err := checkAgainstOpen(input, open); err != nil {
		return nil, err
	}

	submission := &entity.Submission{
		UserID:         user.ID,
		GameDay:        gameDay,
		Picks:          input.Picks,
		SwipeDecisions: input.SwipeDecisions,
		Score:          scoring.Calculate(input.Picks, hottakes, input.SwipeDecisions),
	}
	if err := s.submissionRepo.Upsert(ctx, submission); err != nil {
		return nil, err
	}

	fresh, err := s.hottakeRepo.ListByGameDay(ctx, gameDay)
	if err != nil {
		return nil, fmt.Errorf("reload hottakes of game day %d: %w", gameDay, err)
	}
	if score := scoring.Calculate(submission.Picks, fresh, submission.SwipeDecisions); score != submission.Score {
		if err := s.submissionRepo.UpdateScore(ctx, submission.ID, score); err != nil {
			return nil, fmt.Errorf("correct score of submission #%d: %w", submission.ID, err)
		}
		submission.Score = score
	}

	s.lbCache.Invalidate(ctx, gameDay)
	s.log.Info("Сабмит сохранен", "user_id", user.ID, "game_day", gameDay, "picks", len(submission.Picks))

	return dto.NewSubmissionView(submission, user.Nickname, submission.Score), nil
}

func checkAgainstOpen(input SubmitInput, open map[uint]struct{}) error {
	var issues []apperrors.Issue

	decided := make(map[uint]struct{}, len(input.SwipeDecisions))
	for i, d := range input.SwipeDecisions {
		decided[d.HottakeID] = struct{}{}
		if _, ok := open[d.HottakeID]; !ok {
			issues = append(issues, apperrors.Issue{
				Path:    fmt.Sprintf("swipeDecisions.%d.hottakeId", i),
				Message: fmt.Sprintf("hottake %d is not an open hottake of this game day", d.HottakeID),
			})
		}
	}
	missing := make([]uint, 0)
	for id := range open {
		if _, ok := decided[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		sort.Slice(missing, func(i, j int) bool { return missing[i] < missing[j] })
		issues = append(issues, apperrors.Issue{
			Path:    "swipeDecisions",
			Message: fmt.Sprintf("missing decisions for hottakes %v", missing),
		})
	}

	for i, pick := range input.Picks {
		if pick == nil {
			continue
		}
		if _, ok := open[*pick]; !ok {
			issues = append(issues, apperrors.Issue{
				Path:    fmt.Sprintf("picks.%d", i),
				Message: fmt.Sprintf("hottake %d is not an open hottake of this game day", *pick),
			})
		}
	}

	if len(issues) > 0 {
		return apperrors.Validationf("submission does not match the open hottakes").WithIssues(issues...)
	}
	return nil
}

// Get возвращает сабмит игрока за день с пересчитанным счетом
func (s *SubmissionService) Get(ctx context.Context, nickname, rawGameDay string) (*dto.SubmissionView, error) {
	user, err := s.userRepo.GetByNickname(ctx, nickname)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFoundf("user %q not found", nickname)
		}
		return nil, err
	}
	gameDay, err := s.gameDays.ResolveGameDayParam(ctx, rawGameDay)
	if err != nil {
		return nil, err
	}

	sub, err := s.submissionRepo.GetByUserAndGameDay(ctx, user.ID, gameDay)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFoundf("%s has no submission for game day %d", nickname, gameDay)
		}
		return nil, err
	}

	subs := []entity.Submission{*sub}
	scores, _, err := s.scorer.rescore(ctx, subs)
	if err != nil {
		return nil, err
	}
	return dto.NewSubmissionView(&subs[0], user.Nickname, scores[0]), nil
}

// List возвращает сабмиты по фильтрам. gameDay=all снимает фильтр по дню.
func (s *SubmissionService) List(ctx context.Context, filter SubmissionListFilter) ([]dto.SubmissionView, error) {
	var repoFilter repository.SubmissionFilter

	if filter.UserID != nil {
		repoFilter.UserID = filter.UserID
	}
	if nickname := strings.TrimSpace(filter.Nickname); nickname != "" {
		user, err := s.userRepo.GetByNickname(ctx, nickname)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return []dto.SubmissionView{}, nil
			}
			return nil, err
		}
		if repoFilter.UserID != nil && *repoFilter.UserID != user.ID {
			return []dto.SubmissionView{}, nil
		}
		repoFilter.UserID = &user.ID
	}

	if !strings.EqualFold(strings.TrimSpace(filter.RawGameDay), GameDayParamAll) {
		gameDay, err := s.gameDays.ResolveGameDayParam(ctx, filter.RawGameDay)
		if err != nil {
			return nil, err
		}
		repoFilter.GameDay = &gameDay
	}

	subs, err := s.submissionRepo.List(ctx, repoFilter)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	scores, _, err := s.scorer.rescore(ctx, subs)
	if err != nil {
		return nil, err
	}

	views := make([]dto.SubmissionView, 0, len(subs))
	for i := range subs {
		views = append(views, *dto.NewSubmissionView(&subs[i], nicknameOf(&subs[i]), scores[i]))
	}
	return views, nil
}

// RescoreGameDay пересчитывает сохраненные счета дня, возвращает число исправлений
func (s *SubmissionService) RescoreGameDay(ctx context.Context, gameDay int) (int, error) {
	subs, err := s.submissionRepo.List(ctx, repository.SubmissionFilter{GameDay: &gameDay})
	if err != nil {
		return 0, fmt.Errorf("list submissions of game day %d: %w", gameDay, err)
	}
	_, corrected, err := s.scorer.rescore(ctx, subs)
	if err != nil {
		return 0, err
	}
	s.lbCache.Invalidate(ctx, gameDay)
	if corrected > 0 {
		s.log.Info("Счета пересчитаны", "game_day", gameDay, "corrected", corrected, "total", len(subs))
	}
	return corrected, nil
}

// RescoreAll пересчитывает счета всех сабмитов
func (s *SubmissionService) RescoreAll(ctx context.Context) (int, error) {
	subs, err := s.submissionRepo.List(ctx, repository.SubmissionFilter{})
	if err != nil {
		return 0, fmt.Errorf("list submissions: %w", err)
	}
	_, corrected, err := s.scorer.rescore(ctx, subs)
	if err != nil {
		return 0, err
	}
	invalidated := make(map[int]struct{})
	for _, sub := range subs {
		if _, done := invalidated[sub.GameDay]; !done {
			s.lbCache.Invalidate(ctx, sub.GameDay)
			invalidated[sub.GameDay] = struct{}{}
		}
	}
	s.log.Info("Пересчет всех счетов завершен", "corrected", corrected, "total", len(subs))
	return corrected, nil
}

func nicknameOf(sub *entity.Submission) string {
	if sub.User != nil {
		return sub.User.Nickname
	}
	return fmt.Sprintf("user#%d", sub.UserID)
}
