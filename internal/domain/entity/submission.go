package entity

import (
	"time"

	"gorm.io/datatypes"
)

// Решения свайпа
const (
	DecisionHit  = "hit"
	DecisionPass = "pass"
	DecisionSkip = "skip"
)

// MaxPicks - количество рангов в таблице пиков
const MaxPicks = 5

// SwipeDecision - решение игрока по одному хоттейку
type SwipeDecision struct {
	HottakeID uint   `json:"hottakeId"`
	Decision  string `json:"decision"`
}

// Submission - ответ игрока за игровой день.
// Picks хранит до пяти id по рангам, nil означает пустой слот.
type Submission struct {
	ID             uint                               `gorm:"primaryKey" json:"id"`
	UserID         uint                               `gorm:"not null;uniqueIndex:idx_submissions_user_game_day" json:"userId"`
	GameDay        int                                `gorm:"not null;uniqueIndex:idx_submissions_user_game_day;index" json:"gameDay"`
	Picks          datatypes.JSONSlice[*uint]         `gorm:"not null" json:"picks"`
	SwipeDecisions datatypes.JSONSlice[SwipeDecision] `gorm:"not null" json:"swipeDecisions"`
	Score          int                                `gorm:"not null;default:0" json:"score"`
	CreatedAt      time.Time                          `json:"createdAt"`
	UpdatedAt      time.Time                          `json:"updatedAt"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// TableName определяет имя таблицы для GORM
func (Submission) TableName() string {
	return "submissions"
}

// ValidDecision проверяет значение решения свайпа
func ValidDecision(decision string) bool {
	switch decision {
	case DecisionHit, DecisionPass, DecisionSkip:
		return true
	}
	return false
}
