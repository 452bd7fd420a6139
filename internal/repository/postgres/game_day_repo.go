package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/yourusername/hottakes-api/internal/domain/entity"
	apperrors "github.com/yourusername/hottakes-api/internal/pkg/errors"
)

// GameDayRepo реализует repository.GameDayRepository
type GameDayRepo struct {
	db *gorm.DB
}

// NewGameDayRepo создает новый репозиторий игровых дней
func NewGameDayRepo(db *gorm.DB) *GameDayRepo {
	return &GameDayRepo{db: db}
}

// Create создает игровой день. Повтор номера дня дает ErrConflict.
func (r *GameDayRepo) Create(ctx context.Context, day *entity.GameDay) error {
	if err := r.db.WithContext(ctx).Create(day).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: game day %d already exists", apperrors.ErrConflict, day.GameDay)
		}
		return fmt.Errorf("create game day %d: %w", day.GameDay, err)
	}
	return nil
}

func (r *GameDayRepo) GetByID(ctx context.Context, id uint) (*entity.GameDay, error) {
	var day entity.GameDay
	if err := r.db.WithContext(ctx).First(&day, id).Error; err != nil {
		return nil, notFound(err, "game day record #%d", id)
	}
	return &day, nil
}

// GetByNumber ищет день по порядковому номеру
func (r *GameDayRepo) GetByNumber(ctx context.Context, gameDay int) (*entity.GameDay, error) {
	var day entity.GameDay
	if err := r.db.WithContext(ctx).Where("game_day = ?", gameDay).First(&day).Error; err != nil {
		return nil, notFound(err, "game day %d", gameDay)
	}
	return &day, nil
}

func (r *GameDayRepo) List(ctx context.Context) ([]entity.GameDay, error) {
	var days []entity.GameDay
	err := r.db.WithContext(ctx).Order("game_day ASC").Find(&days).Error
	return days, err
}

func (r *GameDayRepo) ListByStatus(ctx context.Context, status string) ([]entity.GameDay, error) {
	var days []entity.GameDay
	err := r.db.WithContext(ctx).Where("status = ?", status).Order("game_day ASC").Find(&days).Error
	return days, err
}

func (r *GameDayRepo) MaxNumber(ctx context.Context) (int, error) {
	var max int
	err := r.db.WithContext(ctx).
		Model(&entity.GameDay{}).
		Select("COALESCE(MAX(game_day), 0)").
		Scan(&max).Error
	return max, err
}

func (r *GameDayRepo) Update(ctx context.Context, day *entity.GameDay) error {
	if err := r.db.WithContext(ctx).Save(day).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: game day %d already exists", apperrors.ErrConflict, day.GameDay)
		}
		return err
	}
	return nil
}

// DeleteWithHottakes удаляет день и его хоттейки в одной транзакции
func (r *GameDayRepo) DeleteWithHottakes(ctx context.Context, day *entity.GameDay) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("game_day = ?", day.GameDay).Delete(&entity.Hottake{}).Error; err != nil {
			return fmt.Errorf("delete hottakes of game day %d: %w", day.GameDay, err)
		}
		result := tx.Delete(&entity.GameDay{}, day.ID)
		if result.Error != nil {
			return fmt.Errorf("delete game day %d: %w", day.GameDay, result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: game day %d", apperrors.ErrNotFound, day.GameDay)
		}
		return nil
	})
}
