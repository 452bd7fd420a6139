package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yourusername/hottakes-api/internal/domain/repository"
	apperrors "github.com/yourusername/hottakes-api/internal/pkg/errors"
	"github.com/yourusername/hottakes-api/pkg/logger"
)

const (
	leaderboardAllKey    = "leaderboard:all"
	leaderboardAllGenKey = "leaderboard:gen:all"
	// Поколение должно жить дольше любой закешированной таблицы
	minLeaderboardGenTTL = 24 * time.Hour
)

func leaderboardDayKey(gameDay int) string {
	return fmt.Sprintf("leaderboard:day:%d", gameDay)
}

func leaderboardDayGenKey(gameDay int) string {
	return fmt.Sprintf("leaderboard:gen:day:%d", gameDay)
}

// LeaderboardCache хранит собранные таблицы лидеров в Redis.
// Ключ таблицы содержит номер поколения; Invalidate увеличивает поколение,
// поэтому таблица, собранная до инвалидации, под новым ключом уже не найдется.
// Ошибки кеша только логируются: таблица всегда может быть пересчитана из базы.
type LeaderboardCache struct {
	cacheRepo repository.CacheRepository
	ttl       time.Duration
	genTTL    time.Duration
	log       *logger.Logger
}

// NewLeaderboardCache создает кеш; ttl <= 0 или nil cacheRepo отключают кеширование
func NewLeaderboardCache(cacheRepo repository.CacheRepository, ttl time.Duration, log *logger.Logger) *LeaderboardCache {
	genTTL := minLeaderboardGenTTL
	if 10*ttl > genTTL {
		genTTL = 10 * ttl
	}
	return &LeaderboardCache{cacheRepo: cacheRepo, ttl: ttl, genTTL: genTTL, log: log.Named("LeaderboardCache")}
}

func (c *LeaderboardCache) enabled() bool {
	return c != nil && c.cacheRepo != nil && c.ttl > 0
}

func genKey(gameDay *int) string {
	if gameDay == nil {
		return leaderboardAllGenKey
	}
	return leaderboardDayGenKey(*gameDay)
}

// versionedKey возвращает ключ таблицы для текущего поколения.
// false - кеш выключен или поколение не прочитать, таблицу не кешируем.
func (c *LeaderboardCache) versionedKey(ctx context.Context, gameDay *int) (string, bool) {
	if !c.enabled() {
		return "", false
	}
	var generation int64
	if err := c.cacheRepo.GetJSON(ctx, genKey(gameDay), &generation); err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		c.log.Warn("Не удалось прочитать поколение лидерборда", "key", genKey(gameDay), "error", err)
		return "", false
	}
	base := leaderboardAllKey
	if gameDay != nil {
		base = leaderboardDayKey(*gameDay)
	}
	return fmt.Sprintf("%s:v%d", base, generation), true
}

func (c *LeaderboardCache) get(ctx context.Context, key string, dest interface{}) bool {
	return c.cacheRepo.GetJSON(ctx, key, dest) == nil
}

func (c *LeaderboardCache) set(ctx context.Context, key string, value interface{}) {
	if err := c.cacheRepo.SetJSON(ctx, key, value, c.ttl); err != nil {
		c.log.Warn("Не удалось сохранить лидерборд в кеш", "key", key, "error", err)
	}
}

// Invalidate переводит таблицу дня и общую таблицу на новое поколение
func (c *LeaderboardCache) Invalidate(ctx context.Context, gameDay int) {
	if c == nil || c.cacheRepo == nil {
		return
	}
	for _, key := range []string{leaderboardDayGenKey(gameDay), leaderboardAllGenKey} {
		if _, err := c.cacheRepo.IncrementWithTTL(ctx, key, c.genTTL); err != nil {
			c.log.Warn("Не удалось сбросить кеш лидерборда", "game_day", gameDay, "key", key, "error", err)
		}
	}
}
