package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGameDay_IsLockedAt(t *testing.T) {
	lock := time.Date(2025, 5, 10, 18, 0, 0, 0, time.UTC)
	day := &GameDay{Status: GameDayStatusActive, LockTime: &lock}

	assert.False(t, day.IsLockedAt(lock.Add(-time.Second)))
	assert.True(t, day.IsLockedAt(lock), "ровно в lockTime день уже закрыт")
	assert.True(t, day.IsLockedAt(lock.Add(time.Minute)))
	assert.False(t, (&GameDay{}).IsLockedAt(lock), "без lockTime день не блокируется")
}

func TestGameDay_AcceptsSubmissions(t *testing.T) {
	cases := map[string]bool{
		GameDayStatusPending:   true,
		GameDayStatusActive:    true,
		GameDayStatusFinalized: false,
		GameDayStatusArchived:  false,
	}
	for status, want := range cases {
		day := &GameDay{Status: status}
		assert.Equal(t, want, day.AcceptsSubmissions(), status)
	}
}

func TestGameDayStatusHelpers(t *testing.T) {
	assert.True(t, ValidGameDayStatus(GameDayStatusArchived))
	assert.False(t, ValidGameDayStatus("active"), "статусы чувствительны к регистру")

	assert.True(t, IsBackwardTransition(GameDayStatusFinalized, GameDayStatusActive))
	assert.False(t, IsBackwardTransition(GameDayStatusPending, GameDayStatusFinalized))
	assert.False(t, IsBackwardTransition(GameDayStatusActive, GameDayStatusActive))
}

func TestValidators(t *testing.T) {
	assert.True(t, ValidHottakeStatus(HottakeStatusFalse))
	assert.False(t, ValidHottakeStatus("MAYBE"))
	assert.True(t, ValidDecision(DecisionSkip))
	assert.False(t, ValidDecision("smash"))
}
