package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yourusername/hottakes-api/internal/domain/entity"
	apperrors "github.com/yourusername/hottakes-api/internal/pkg/errors"
)

// NewTestDB создает чистую in-memory sqlite базу со всеми таблицами.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	// у каждого соединения :memory: своя база
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&entity.User{}, &entity.GameDay{}, &entity.Hottake{}, &entity.Submission{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// SeedUser создает пользователя с паролем "password123".
func SeedUser(t *testing.T, db *gorm.DB, nickname string, email *string) *entity.User {
	t.Helper()
	user := &entity.User{Nickname: nickname, Email: email, Password: "password123"}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("seed user %s: %v", nickname, err)
	}
	return user
}

// SeedGameDay создает игровой день.
func SeedGameDay(t *testing.T, db *gorm.DB, number int, status string, lockTime *time.Time) *entity.GameDay {
	t.Helper()
	day := &entity.GameDay{GameDay: number, Status: status, LockTime: lockTime, Description: fmt.Sprintf("Day %d", number)}
	if err := db.Create(day).Error; err != nil {
		t.Fatalf("seed game day %d: %v", number, err)
	}
	return day
}

// SeedHottakes создает n открытых хоттейков для дня.
func SeedHottakes(t *testing.T, db *gorm.DB, gameDay, n int) []entity.Hottake {
	t.Helper()
	hottakes := make([]entity.Hottake, 0, n)
	for i := 0; i < n; i++ {
		h := entity.Hottake{Text: fmt.Sprintf("take %d.%d", gameDay, i+1), Status: entity.HottakeStatusOpen, GameDay: gameDay}
		if err := db.Create(&h).Error; err != nil {
			t.Fatalf("seed hottake: %v", err)
		}
		hottakes = append(hottakes, h)
	}
	return hottakes
}

// SetHottakeStatus меняет статус хоттейка в обход сервисов.
func SetHottakeStatus(t *testing.T, db *gorm.DB, id uint, status string) {
	t.Helper()
	if err := db.Model(&entity.Hottake{}).Where("id = ?", id).Update("status", status).Error; err != nil {
		t.Fatalf("set hottake #%d status: %v", id, err)
	}
}

type cacheItem struct {
	value     []byte
	expiresAt time.Time
}

// MemoryCache - потокобезопасная реализация repository.CacheRepository в памяти.
type MemoryCache struct {
	mu    sync.Mutex
	items map[string]cacheItem
	now   func() time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{items: make(map[string]cacheItem), now: time.Now}
}

func (c *MemoryCache) getLocked(key string) (cacheItem, bool) {
	item, ok := c.items[key]
	if !ok {
		return cacheItem{}, false
	}
	if !item.expiresAt.IsZero() && !c.now().Before(item.expiresAt) {
		delete(c.items, key)
		return cacheItem{}, false
	}
	return item, true
}

func (c *MemoryCache) expiry(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return c.now().Add(ttl)
}

func (c *MemoryCache) SetJSON(_ context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = cacheItem{value: data, expiresAt: c.expiry(expiration)}
	return nil
}

func (c *MemoryCache) GetJSON(_ context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	item, ok := c.getLocked(key)
	c.mu.Unlock()
	if !ok {
		return apperrors.ErrNotFound
	}
	return json.Unmarshal(item.value, dest)
}

func (c *MemoryCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		delete(c.items, key)
	}
	return nil
}

func (c *MemoryCache) Exists(_ context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.getLocked(key)
	return ok, nil
}

func (c *MemoryCache) SetNX(_ context.Context, key string, value interface{}, expiration time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.getLocked(key); ok {
		return false, nil
	}
	c.items[key] = cacheItem{value: []byte(fmt.Sprint(value)), expiresAt: c.expiry(expiration)}
	return true, nil
}

func (c *MemoryCache) IncrementWithTTL(_ context.Context, key string, ttl time.Duration) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	item, ok := c.getLocked(key)
	var n int64
	if ok {
		if _, err := fmt.Sscan(string(item.value), &n); err != nil {
			return 0, err
		}
	} else {
		item.expiresAt = c.expiry(ttl)
	}
	n++
	item.value = []byte(fmt.Sprint(n))
	c.items[key] = item
	return n, nil
}

func (c *MemoryCache) Ping(context.Context) error {
	return nil
}

// Keys возвращает живые ключи (для проверок инвалидации).
func (c *MemoryCache) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([]string, 0, len(c.items))
	for key := range c.items {
		if _, ok := c.getLocked(key); ok {
			keys = append(keys, key)
		}
	}
	return keys
}
