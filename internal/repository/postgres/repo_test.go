package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yourusername/hottakes-api/internal/domain/entity"
	"github.com/yourusername/hottakes-api/internal/domain/repository"
	apperrors "github.com/yourusername/hottakes-api/internal/pkg/errors"
	"github.com/yourusername/hottakes-api/internal/testutil"
)

func uintPtr(v uint) *uint { return &v }

// ============================================================================
// isUniqueViolation
// ============================================================================

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"pgconn 23505", &pgconn.PgError{Code: "23505"}, true},
		{"wrapped pgconn", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"}), true},
		{"pgconn other code", &pgconn.PgError{Code: "23503"}, false},
		{"lib/pq 23505", &pq.Error{Code: "23505"}, true},
		{"gorm translated", gorm.ErrDuplicatedKey, true},
		{"plain error", errors.New("boom"), false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isUniqueViolation(tt.err))
		})
	}
}

func TestConstraintName(t *testing.T) {
	assert.Equal(t, "submissions_user_id_key", constraintName(&pgconn.PgError{Code: "23505", ConstraintName: "submissions_user_id_key"}))
	assert.Equal(t, "idx_x", constraintName(&pq.Error{Code: "23505", Constraint: "idx_x"}))
	assert.Empty(t, constraintName(errors.New("x")))
}

// ============================================================================
// SubmissionRepo
// ============================================================================

func TestSubmissionRepo_UpsertKeepsSingleRow(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	user := testutil.SeedUser(t, db, "alice", nil)
	repo := NewSubmissionRepo(db)

	first := &entity.Submission{
		UserID:  user.ID,
		GameDay: 1,
		Picks:   []*uint{uintPtr(1), nil, uintPtr(3)},
		SwipeDecisions: []entity.SwipeDecision{
			{HottakeID: 1, Decision: entity.DecisionHit},
		},
		Score: 4,
	}
	require.NoError(t, repo.Upsert(ctx, first))
	require.NotZero(t, first.ID)

	second := &entity.Submission{
		UserID:  user.ID,
		GameDay: 1,
		Picks:   []*uint{uintPtr(2)},
		Score:   1,
	}
	require.NoError(t, repo.Upsert(ctx, second))

	var count int64
	require.NoError(t, db.Model(&entity.Submission{}).Where("user_id = ? AND game_day = ?", user.ID, 1).Count(&count).Error)
	assert.Equal(t, int64(1), count, "для пары (user, day) должна остаться одна строка")
	assert.Equal(t, first.ID, second.ID, "повторный сабмит обновляет ту же строку")

	stored, err := repo.GetByUserAndGameDay(ctx, user.ID, 1)
	require.NoError(t, err)
	require.Len(t, stored.Picks, 1)
	assert.Equal(t, uint(2), *stored.Picks[0])
	assert.Empty(t, stored.SwipeDecisions)
	assert.Equal(t, 1, stored.Score)
	require.NotNil(t, stored.User)
	assert.Equal(t, "alice", stored.User.Nickname)
}

func TestSubmissionRepo_SeparateRowsPerGameDay(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	user := testutil.SeedUser(t, db, "bob", nil)
	repo := NewSubmissionRepo(db)

	require.NoError(t, repo.Upsert(ctx, &entity.Submission{UserID: user.ID, GameDay: 1}))
	require.NoError(t, repo.Upsert(ctx, &entity.Submission{UserID: user.ID, GameDay: 2}))

	all, err := repo.List(ctx, repository.SubmissionFilter{UserID: &user.ID})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	day := 2
	filtered, err := repo.List(ctx, repository.SubmissionFilter{GameDay: &day})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, 2, filtered[0].GameDay)
}

func TestSubmissionRepo_NilSlotRoundTrip(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	user := testutil.SeedUser(t, db, "carol", nil)
	repo := NewSubmissionRepo(db)

	require.NoError(t, repo.Upsert(ctx, &entity.Submission{
		UserID: user.ID, GameDay: 3, Picks: []*uint{nil, uintPtr(7)},
	}))

	stored, err := repo.GetByUserAndGameDay(ctx, user.ID, 3)
	require.NoError(t, err)
	require.Len(t, stored.Picks, 2)
	assert.Nil(t, stored.Picks[0])
	assert.Equal(t, uint(7), *stored.Picks[1])
}

func TestSubmissionRepo_NotFoundAndScore(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	user := testutil.SeedUser(t, db, "dave", nil)
	repo := NewSubmissionRepo(db)

	_, err := repo.GetByUserAndGameDay(ctx, user.ID, 9)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	sub := &entity.Submission{UserID: user.ID, GameDay: 9}
	require.NoError(t, repo.Upsert(ctx, sub))
	require.NoError(t, repo.UpdateScore(ctx, sub.ID, 12))

	stored, err := repo.GetByUserAndGameDay(ctx, user.ID, 9)
	require.NoError(t, err)
	assert.Equal(t, 12, stored.Score)

	assert.ErrorIs(t, repo.UpdateScore(ctx, 9999, 1), apperrors.ErrNotFound)

	count, err := repo.CountByGameDay(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	ids, err := repo.ListUserIDsByGameDay(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, []uint{user.ID}, ids)
}

// ============================================================================
// GameDayRepo / HottakeRepo / UserRepo
// ============================================================================

func TestGameDayRepo_MaxNumberAndDelete(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	repo := NewGameDayRepo(db)

	max, err := repo.MaxNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, max)

	testutil.SeedGameDay(t, db, 1, entity.GameDayStatusFinalized, nil)
	day := testutil.SeedGameDay(t, db, 4, entity.GameDayStatusActive, nil)
	testutil.SeedHottakes(t, db, 4, 3)
	testutil.SeedHottakes(t, db, 1, 2)

	max, err = repo.MaxNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, max)

	err = repo.Create(ctx, &entity.GameDay{GameDay: 4, Status: entity.GameDayStatusPending})
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	require.NoError(t, repo.DeleteWithHottakes(ctx, day))
	_, err = repo.GetByNumber(ctx, 4)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	hottakes := NewHottakeRepo(db)
	left, err := hottakes.ListByGameDay(ctx, 4)
	require.NoError(t, err)
	assert.Empty(t, left, "хоттейки удаленного дня удаляются вместе с ним")
	other, err := hottakes.ListByGameDay(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, other, 2)
}

func TestGameDayRepo_ListByStatus(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	repo := NewGameDayRepo(db)

	lock := time.Now().Add(time.Hour)
	testutil.SeedGameDay(t, db, 2, entity.GameDayStatusActive, &lock)
	testutil.SeedGameDay(t, db, 1, entity.GameDayStatusActive, nil)
	testutil.SeedGameDay(t, db, 3, entity.GameDayStatusPending, nil)

	active, err := repo.ListByStatus(ctx, entity.GameDayStatusActive)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, 1, active[0].GameDay)
	require.NotNil(t, active[1].LockTime)
	assert.WithinDuration(t, lock, *active[1].LockTime, time.Second)
}

func TestHottakeRepo_UpdateStatus(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	repo := NewHottakeRepo(db)
	hottakes := testutil.SeedHottakes(t, db, 1, 2)

	require.NoError(t, repo.UpdateStatus(ctx, hottakes[0].ID, entity.HottakeStatusTrue))
	got, err := repo.GetByID(ctx, hottakes[0].ID)
	require.NoError(t, err)
	assert.Equal(t, entity.HottakeStatusTrue, got.Status)

	assert.ErrorIs(t, repo.UpdateStatus(ctx, 999, entity.HottakeStatusTrue), apperrors.ErrNotFound)

	many, err := repo.ListByGameDays(ctx, []int{1, 2})
	require.NoError(t, err)
	assert.Len(t, many, 2)
}

func TestUserRepo_ConflictAndLookups(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	repo := NewUserRepo(db)

	email := "eve@example.com"
	require.NoError(t, repo.Create(ctx, &entity.User{Nickname: "eve", Email: &email, Password: "secret123"}))

	err := repo.Create(ctx, &entity.User{Nickname: "eve", Password: "secret123"})
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	byEmail, err := repo.GetByEmail(ctx, email)
	require.NoError(t, err)
	assert.Equal(t, "eve", byEmail.Nickname)

	_, err = repo.GetByNickname(ctx, "nobody")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	require.NoError(t, repo.Create(ctx, &entity.User{Nickname: "frank"}))
	withEmail, err := repo.ListWithEmail(ctx)
	require.NoError(t, err)
	require.Len(t, withEmail, 1)
	assert.Equal(t, "eve", withEmail[0].Nickname)
}
