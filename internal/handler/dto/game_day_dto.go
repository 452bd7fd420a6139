package dto

import (
	"time"

	"github.com/yourusername/hottakes-api/internal/domain/entity"
)

// CreateGameDayRequest - тело POST /api/admin/game-days
type CreateGameDayRequest struct {
	GameDay     *int       `json:"gameDay" binding:"omitempty,min=1"`
	Description string     `json:"description" binding:"max=1000"`
	Status      string     `json:"status" binding:"omitempty,oneof=PENDING ACTIVE FINALIZED ARCHIVED"`
	StartTime   *time.Time `json:"startTime"`
	LockTime    *time.Time `json:"lockTime"`
}

// UpdateGameDayRequest - тело PATCH /api/admin/game-days/:id
type UpdateGameDayRequest struct {
	Description    *string    `json:"description" binding:"omitempty,max=1000"`
	Status         *string    `json:"status" binding:"omitempty,oneof=PENDING ACTIVE FINALIZED ARCHIVED"`
	StartTime      *time.Time `json:"startTime"`
	LockTime       *time.Time `json:"lockTime"`
	ClearStartTime bool       `json:"clearStartTime"`
	ClearLockTime  bool       `json:"clearLockTime"`
}

// GameDayListResponse - список дней с номером текущего
type GameDayListResponse struct {
	GameDays       []entity.GameDay `json:"gameDays"`
	CurrentGameDay *int             `json:"currentGameDay"`
	// MaxScorePerDay - потолок счета за один день (все пики и свайпы верны)
	MaxScorePerDay int `json:"maxScorePerDay"`
}
