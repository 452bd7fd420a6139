package entity

import "time"

// Статусы хоттейка
const (
	HottakeStatusOpen  = "OPEN"
	HottakeStatusTrue  = "TRUE"
	HottakeStatusFalse = "FALSE"
)

// Hottake - утверждение, исход которого станет известен позже
type Hottake struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	Status    string    `gorm:"size:10;not null;default:'OPEN'" json:"status"`
	GameDay   int       `gorm:"not null;index" json:"gameDay"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName определяет имя таблицы для GORM
func (Hottake) TableName() string {
	return "hottakes"
}

// IsOpen возвращает true, если исход еще не известен
func (h *Hottake) IsOpen() bool {
	return h.Status == HottakeStatusOpen
}

// ValidHottakeStatus проверяет имя статуса
func ValidHottakeStatus(status string) bool {
	switch status {
	case HottakeStatusOpen, HottakeStatusTrue, HottakeStatusFalse:
		return true
	}
	return false
}
