package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/yourusername/hottakes-api/internal/domain/entity"
	apperrors "github.com/yourusername/hottakes-api/internal/pkg/errors"
)

// HottakeRepo реализует repository.HottakeRepository
type HottakeRepo struct {
	db *gorm.DB
}

// NewHottakeRepo создает новый репозиторий хоттейков
func NewHottakeRepo(db *gorm.DB) *HottakeRepo {
	return &HottakeRepo{db: db}
}

func (r *HottakeRepo) Create(ctx context.Context, hottake *entity.Hottake) error {
	return r.db.WithContext(ctx).Create(hottake).Error
}

func (r *HottakeRepo) GetByID(ctx context.Context, id uint) (*entity.Hottake, error) {
	var hottake entity.Hottake
	if err := r.db.WithContext(ctx).First(&hottake, id).Error; err != nil {
		return nil, notFound(err, "hottake #%d", id)
	}
	return &hottake, nil
}

// UpdateStatus меняет только статус хоттейка
func (r *HottakeRepo) UpdateStatus(ctx context.Context, id uint, status string) error {
	result := r.db.WithContext(ctx).
		Model(&entity.Hottake{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return fmt.Errorf("update hottake #%d status: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: hottake #%d", apperrors.ErrNotFound, id)
	}
	return nil
}

func (r *HottakeRepo) ListByGameDay(ctx context.Context, gameDay int) ([]entity.Hottake, error) {
	var hottakes []entity.Hottake
	err := r.db.WithContext(ctx).Where("game_day = ?", gameDay).Order("id ASC").Find(&hottakes).Error
	return hottakes, err
}

func (r *HottakeRepo) ListByGameDays(ctx context.Context, gameDays []int) ([]entity.Hottake, error) {
	if len(gameDays) == 0 {
		return nil, nil
	}
	var hottakes []entity.Hottake
	err := r.db.WithContext(ctx).Where("game_day IN ?", gameDays).Order("game_day ASC, id ASC").Find(&hottakes).Error
	return hottakes, err
}

func (r *HottakeRepo) ListAll(ctx context.Context) ([]entity.Hottake, error) {
	var hottakes []entity.Hottake
	err := r.db.WithContext(ctx).Order("game_day ASC, id ASC").Find(&hottakes).Error
	return hottakes, err
}
