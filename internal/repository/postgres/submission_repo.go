package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yourusername/hottakes-api/internal/domain/entity"
	"github.com/yourusername/hottakes-api/internal/domain/repository"
	apperrors "github.com/yourusername/hottakes-api/internal/pkg/errors"
)

// SubmissionRepo реализует repository.SubmissionRepository
type SubmissionRepo struct {
	db *gorm.DB
}

// NewSubmissionRepo создает новый репозиторий сабмитов
func NewSubmissionRepo(db *gorm.DB) *SubmissionRepo {
	return &SubmissionRepo{db: db}
}

// Upsert выполняет INSERT ... ON CONFLICT (user_id, game_day) DO UPDATE.
// Unique violation здесь означает, что в базе осталось старое ограничение
// на один сабмит на пользователя (миграция 000002 не применена).
func (r *SubmissionRepo) Upsert(ctx context.Context, submission *entity.Submission) error {
	if submission.Picks == nil {
		submission.Picks = []*uint{}
	}
	if submission.SwipeDecisions == nil {
		submission.SwipeDecisions = []entity.SwipeDecision{}
	}

	err := r.db.WithContext(ctx).Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "game_day"}},
		DoUpdates: clause.AssignmentColumns([]string{"picks", "swipe_decisions", "score", "updated_at"}),
	}).Create(submission).Error
	if err != nil {
		if isUniqueViolation(err) {
			conflict := apperrors.Conflictf(
				"submission for user #%d and game day %d violates a uniqueness constraint; the database still enforces one submission per user, apply migration 000002_submissions_user_game_day_unique",
				submission.UserID, submission.GameDay,
			)
			// При TranslateError драйвер отдает голый gorm.ErrDuplicatedKey без имени ограничения
			if name := constraintName(err); name != "" {
				conflict = conflict.WithDetail("constraint", name)
			}
			return conflict
		}
		return fmt.Errorf("upsert submission user #%d game day %d: %w", submission.UserID, submission.GameDay, err)
	}

	// На конфликте драйвер может не вернуть id обновленной строки, перечитываем
	stored, err := r.GetByUserAndGameDay(ctx, submission.UserID, submission.GameDay)
	if err != nil {
		return err
	}
	*submission = *stored
	return nil
}

func (r *SubmissionRepo) GetByUserAndGameDay(ctx context.Context, userID uint, gameDay int) (*entity.Submission, error) {
	var submission entity.Submission
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("user_id = ? AND game_day = ?", userID, gameDay).
		First(&submission).Error
	if err != nil {
		return nil, notFound(err, "submission of user #%d for game day %d", userID, gameDay)
	}
	return &submission, nil
}

func (r *SubmissionRepo) List(ctx context.Context, filter repository.SubmissionFilter) ([]entity.Submission, error) {
	query := r.db.WithContext(ctx).Preload("User")
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.GameDay != nil {
		query = query.Where("game_day = ?", *filter.GameDay)
	}

	var submissions []entity.Submission
	err := query.Order("game_day ASC, updated_at ASC, id ASC").Find(&submissions).Error
	return submissions, err
}

// UpdateScore обновляет только сохраненный счет, не трогая updated_at
func (r *SubmissionRepo) UpdateScore(ctx context.Context, id uint, score int) error {
	result := r.db.WithContext(ctx).
		Model(&entity.Submission{}).
		Where("id = ?", id).
		UpdateColumn("score", score)
	if result.Error != nil {
		return fmt.Errorf("update score of submission #%d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: submission #%d", apperrors.ErrNotFound, id)
	}
	return nil
}

func (r *SubmissionRepo) CountByGameDay(ctx context.Context, gameDay int) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Submission{}).Where("game_day = ?", gameDay).Count(&count).Error
	return count, err
}

func (r *SubmissionRepo) ListUserIDsByGameDay(ctx context.Context, gameDay int) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&entity.Submission{}).Where("game_day = ?", gameDay).Pluck("user_id", &ids).Error
	return ids, err
}
