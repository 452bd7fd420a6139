package repository

import (
	"context"

	"github.com/yourusername/hottakes-api/internal/domain/entity"
)

// UserRepository определяет методы для работы с пользователями
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id uint) (*entity.User, error)
	GetByNickname(ctx context.Context, nickname string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByResetToken(ctx context.Context, token string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	// ListByIDs возвращает пользователей по списку id (порядок не гарантируется)
	ListByIDs(ctx context.Context, ids []uint) ([]entity.User, error)
	// ListWithEmail возвращает всех пользователей, у которых указан email
	ListWithEmail(ctx context.Context) ([]entity.User, error)
}
