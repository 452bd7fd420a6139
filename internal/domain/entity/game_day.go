package entity

import "time"

// Статусы игрового дня
const (
	GameDayStatusPending   = "PENDING"
	GameDayStatusActive    = "ACTIVE"
	GameDayStatusFinalized = "FINALIZED"
	GameDayStatusArchived  = "ARCHIVED"
)

var gameDayStatusOrder = map[string]int{
	GameDayStatusPending:   0,
	GameDayStatusActive:    1,
	GameDayStatusFinalized: 2,
	GameDayStatusArchived:  3,
}

// GameDay - игровой раунд со своим набором хоттейков
type GameDay struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	GameDay     int        `gorm:"not null;uniqueIndex" json:"gameDay"`
	Description string     `gorm:"type:text;not null;default:''" json:"description"`
	Status      string     `gorm:"size:20;not null;default:'PENDING';index" json:"status"`
	StartTime   *time.Time `json:"startTime,omitempty"`
	LockTime    *time.Time `json:"lockTime,omitempty"`
	FinalizedAt *time.Time `json:"finalizedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// TableName определяет имя таблицы для GORM
func (GameDay) TableName() string {
	return "game_days"
}

// IsActive возвращает true для статуса ACTIVE
func (g *GameDay) IsActive() bool {
	return g.Status == GameDayStatusActive
}

// AcceptsSubmissions - в PENDING и ACTIVE сабмиты разрешены (до lockTime).
func (g *GameDay) AcceptsSubmissions() bool {
	return g.Status == GameDayStatusActive || g.Status == GameDayStatusPending
}

// IsLockedAt - наступило ли время блокировки на момент now.
func (g *GameDay) IsLockedAt(now time.Time) bool {
	return g.LockTime != nil && !now.Before(*g.LockTime)
}

// ValidGameDayStatus проверяет имя статуса
func ValidGameDayStatus(status string) bool {
	_, ok := gameDayStatusOrder[status]
	return ok
}

// IsBackwardTransition - переход против PENDING -> ACTIVE -> FINALIZED -> ARCHIVED.
func IsBackwardTransition(from, to string) bool {
	return gameDayStatusOrder[to] < gameDayStatusOrder[from]
}
