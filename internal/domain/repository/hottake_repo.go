package repository

import (
	"context"

	"github.com/yourusername/hottakes-api/internal/domain/entity"
)

// HottakeRepository определяет методы для работы с хоттейками
type HottakeRepository interface {
	Create(ctx context.Context, hottake *entity.Hottake) error
	GetByID(ctx context.Context, id uint) (*entity.Hottake, error)
	UpdateStatus(ctx context.Context, id uint, status string) error
	ListByGameDay(ctx context.Context, gameDay int) ([]entity.Hottake, error)
	// ListByGameDays возвращает хоттейки нескольких дней одним запросом
	ListByGameDays(ctx context.Context, gameDays []int) ([]entity.Hottake, error)
	ListAll(ctx context.Context) ([]entity.Hottake, error)
}
