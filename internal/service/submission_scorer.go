package service

import (
	"context"
	"fmt"

	"github.com/yourusername/hottakes-api/internal/domain/entity"
	"github.com/yourusername/hottakes-api/internal/domain/repository"
	"github.com/yourusername/hottakes-api/internal/service/scoring"
	"github.com/yourusername/hottakes-api/pkg/logger"
)

// submissionScorer пересчитывает счет сабмитов по текущим статусам хоттейков
// и записывает исправления в базу. Сохраненный score - только кеш.
type submissionScorer struct {
	hottakeRepo    repository.HottakeRepository
	submissionRepo repository.SubmissionRepository
	log            *logger.Logger
}

// hottakesByDay загружает хоттейки всех дней, встречающихся в subs
func (sc *submissionScorer) hottakesByDay(ctx context.Context, subs []entity.Submission) (map[int][]entity.Hottake, error) {
	seen := make(map[int]struct{})
	days := make([]int, 0)
	for _, sub := range subs {
		if _, ok := seen[sub.GameDay]; ok {
			continue
		}
		seen[sub.GameDay] = struct{}{}
		days = append(days, sub.GameDay)
	}

	hottakes, err := sc.hottakeRepo.ListByGameDays(ctx, days)
	if err != nil {
		return nil, fmt.Errorf("load hottakes for game days %v: %w", days, err)
	}
	byDay := make(map[int][]entity.Hottake, len(days))
	for _, h := range hottakes {
		byDay[h.GameDay] = append(byDay[h.GameDay], h)
	}
	return byDay, nil
}

// rescore возвращает актуальные счета (в порядке subs) и число исправленных строк.
// Ошибка записи исправления не прерывает чтение, она только логируется.
func (sc *submissionScorer) rescore(ctx context.Context, subs []entity.Submission) ([]int, int, error) {
	if len(subs) == 0 {
		return nil, 0, nil
	}
	byDay, err := sc.hottakesByDay(ctx, subs)
	if err != nil {
		return nil, 0, err
	}

	scores := make([]int, len(subs))
	corrected := 0
	for i := range subs {
		sub := &subs[i]
		scores[i] = scoring.Calculate(sub.Picks, byDay[sub.GameDay], sub.SwipeDecisions)
		if scores[i] == sub.Score {
			continue
		}
		if err := sc.submissionRepo.UpdateScore(ctx, sub.ID, scores[i]); err != nil {
			sc.log.Warn("Не удалось обновить сохраненный счет",
				"submission_id", sub.ID, "stored", sub.Score, "actual", scores[i], "error", err)
			continue
		}
		sub.Score = scores[i]
		corrected++
	}
	return scores, corrected, nil
}
