package repository

import (
	"context"

	"github.com/yourusername/hottakes-api/internal/domain/entity"
)

// GameDayRepository определяет методы для работы с игровыми днями
type GameDayRepository interface {
	Create(ctx context.Context, day *entity.GameDay) error
	GetByID(ctx context.Context, id uint) (*entity.GameDay, error)
	GetByNumber(ctx context.Context, gameDay int) (*entity.GameDay, error)
	List(ctx context.Context) ([]entity.GameDay, error)
	ListByStatus(ctx context.Context, status string) ([]entity.GameDay, error)
	// MaxNumber возвращает наибольший номер дня или 0, если дней нет
	MaxNumber(ctx context.Context) (int, error)
	Update(ctx context.Context, day *entity.GameDay) error
	// DeleteWithHottakes удаляет день и его хоттейки в одной транзакции
	DeleteWithHottakes(ctx context.Context, day *entity.GameDay) error
}
