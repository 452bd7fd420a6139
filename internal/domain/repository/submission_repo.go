package repository

import (
	"context"

	"github.com/yourusername/hottakes-api/internal/domain/entity"
)

// SubmissionFilter - фильтры выборки сабмитов, nil означает "без фильтра"
type SubmissionFilter struct {
	UserID  *uint
	GameDay *int
}

// SubmissionRepository определяет методы для работы с сабмитами
type SubmissionRepository interface {
	// Upsert вставляет сабмит или перезаписывает существующий для (user, gameDay).
	// После вызова submission содержит сохраненную строку.
	Upsert(ctx context.Context, submission *entity.Submission) error
	GetByUserAndGameDay(ctx context.Context, userID uint, gameDay int) (*entity.Submission, error)
	// List возвращает сабмиты вместе с пользователями
	List(ctx context.Context, filter SubmissionFilter) ([]entity.Submission, error)
	UpdateScore(ctx context.Context, id uint, score int) error
	CountByGameDay(ctx context.Context, gameDay int) (int64, error)
	ListUserIDsByGameDay(ctx context.Context, gameDay int) ([]uint, error)
}
