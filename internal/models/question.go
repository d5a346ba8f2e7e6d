package models

import (
	"time"
)

type Question struct {
	ID        uint  `gorm:"primaryKey"`
	ChatID    int64 `gorm:"not null;index"`
	MessageID int64 `gorm:"not null"`
	Resolved  bool  `gorm:"not null;default:false"`
	CreatedAt time.Time
}
