package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/yourusername/hottakes-api/internal/domain/repository"
	"github.com/yourusername/hottakes-api/internal/handler/dto"
	"github.com/yourusername/hottakes-api/pkg/logger"
)

// LeaderboardService собирает таблицу лидеров из сабмитов
type LeaderboardService struct {
	submissionRepo repository.SubmissionRepository
	scorer         *submissionScorer
	cache          *LeaderboardCache
	log            *logger.Logger
}

// NewLeaderboardService создает новый сервис таблицы лидеров
func NewLeaderboardService(
	submissionRepo repository.SubmissionRepository,
	hottakeRepo repository.HottakeRepository,
	cache *LeaderboardCache,
	log *logger.Logger,
) *LeaderboardService {
	log = log.Named("LeaderboardService")
	return &LeaderboardService{
		submissionRepo: submissionRepo,
		scorer:         &submissionScorer{hottakeRepo: hottakeRepo, submissionRepo: submissionRepo, log: log},
		cache:          cache,
		log:            log,
	}
}

// Build возвращает таблицу за день gameDay или, при nil, общую по всем дням.
// Счета всегда пересчитываются по текущим статусам хоттейков. В общей таблице
// счета дней суммируются по никнейму, а submittedAt - самый ранний из сабмитов.
// Порядок: счет по убыванию, затем submittedAt по возрастанию, затем никнейм.
func (s *LeaderboardService) Build(ctx context.Context, gameDay *int) ([]dto.LeaderboardEntry, error) {
	// Поколение читается до сборки: инвалидация во время сборки сменит ключ
	key, cacheable := s.cache.versionedKey(ctx, gameDay)
	var cached []dto.LeaderboardEntry
	if cacheable && s.cache.get(ctx, key, &cached) {
		return cached, nil
	}

	subs, err := s.submissionRepo.List(ctx, repository.SubmissionFilter{GameDay: gameDay})
	if err != nil {
		return nil, fmt.Errorf("list submissions for leaderboard: %w", err)
	}
	scores, corrected, err := s.scorer.rescore(ctx, subs)
	if err != nil {
		return nil, err
	}
	if corrected > 0 {
		s.log.Info("Исправлены устаревшие счета при сборке лидерборда", "corrected", corrected)
	}

	byUser := make(map[uint]*dto.LeaderboardEntry)
	order := make([]uint, 0)
	for i := range subs {
		sub := &subs[i]
		entry, ok := byUser[sub.UserID]
		if !ok {
			entry = &dto.LeaderboardEntry{Nickname: nicknameOf(sub), SubmittedAt: sub.UpdatedAt}
			byUser[sub.UserID] = entry
			order = append(order, sub.UserID)
		}
		entry.Score += scores[i]
		entry.Submissions++
		if sub.UpdatedAt.Before(entry.SubmittedAt) {
			entry.SubmittedAt = sub.UpdatedAt
		}
	}

	entries := make([]dto.LeaderboardEntry, 0, len(order))
	for _, userID := range order {
		entries = append(entries, *byUser[userID])
	}
	SortLeaderboard(entries)

	if cacheable {
		s.cache.set(ctx, key, entries)
	}
	return entries, nil
}

// SortLeaderboard упорядочивает записи и проставляет ранги с 1
func SortLeaderboard(entries []dto.LeaderboardEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if !a.SubmittedAt.Equal(b.SubmittedAt) {
			return a.SubmittedAt.Before(b.SubmittedAt)
		}
		return a.Nickname < b.Nickname
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
}

// ExportRows возвращает таблицу в виде строк для выгрузки (заголовок первой строкой)
func ExportRows(entries []dto.LeaderboardEntry) [][]interface{} {
	rows := make([][]interface{}, 0, len(entries)+1)
	rows = append(rows, []interface{}{"Rank", "Nickname", "Score", "Submissions", "Submitted At"})
	for _, e := range entries {
		rows = append(rows, []interface{}{e.Rank, e.Nickname, e.Score, e.Submissions, e.SubmittedAt.UTC().Format(time.RFC3339)})
	}
	return rows
}
