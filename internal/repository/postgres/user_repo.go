package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/yourusername/hottakes-api/internal/domain/entity"
	apperrors "github.com/yourusername/hottakes-api/internal/pkg/errors"
)

// UserRepo реализует repository.UserRepository
type UserRepo struct {
	db *gorm.DB
}

// NewUserRepo создает новый репозиторий пользователей
func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{db: db}
}

// Create создает нового пользователя. Занятый никнейм или email дают ErrConflict.
func (r *UserRepo) Create(ctx context.Context, user *entity.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: nickname or email is already taken", apperrors.ErrConflict)
		}
		return fmt.Errorf("create user %s: %w", user.Nickname, err)
	}
	return nil
}

// GetByID возвращает пользователя по ID
func (r *UserRepo) GetByID(ctx context.Context, id uint) (*entity.User, error) {
	var user entity.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFound(err, "user #%d", id)
	}
	return &user, nil
}

// GetByNickname возвращает пользователя по никнейму
func (r *UserRepo) GetByNickname(ctx context.Context, nickname string) (*entity.User, error) {
	var user entity.User
	if err := r.db.WithContext(ctx).Where("nickname = ?", nickname).First(&user).Error; err != nil {
		return nil, notFound(err, "user %q", nickname)
	}
	return &user, nil
}

// GetByEmail возвращает пользователя по email
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	var user entity.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, notFound(err, "user with email %q", email)
	}
	return &user, nil
}

// GetByResetToken возвращает пользователя по токену сброса пароля
func (r *UserRepo) GetByResetToken(ctx context.Context, token string) (*entity.User, error) {
	var user entity.User
	if err := r.db.WithContext(ctx).Where("reset_token = ?", token).First(&user).Error; err != nil {
		return nil, notFound(err, "reset token")
	}
	return &user, nil
}

// Update сохраняет пользователя целиком
func (r *UserRepo) Update(ctx context.Context, user *entity.User) error {
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: nickname or email is already taken", apperrors.ErrConflict)
		}
		return err
	}
	return nil
}

// ListByIDs возвращает пользователей по списку id
func (r *UserRepo) ListByIDs(ctx context.Context, ids []uint) ([]entity.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var users []entity.User
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error
	return users, err
}

// ListWithEmail возвращает пользователей с непустым email
func (r *UserRepo) ListWithEmail(ctx context.Context) ([]entity.User, error) {
	var users []entity.User
	err := r.db.WithContext(ctx).
		Where("email IS NOT NULL AND email <> ''").
		Order("id ASC").
		Find(&users).Error
	return users, err
}
