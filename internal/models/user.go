package models

import (
	"time"
)

// EpochDate is the quota date of a user that has never sent an award.
const EpochDate = "0001-01-01"

type User struct {
	ID          int64  `gorm:"primaryKey;autoIncrement:false"` // Telegram user ID
	Username    string `gorm:"size:255;index"`
	FirstName   string `gorm:"size:255"`
	LastName    string `gorm:"size:255"`
	Balance     int64  `gorm:"not null;default:0"`
	CoinsPerDay int    `gorm:"not null;default:0"`
	QuotaDate   string `gorm:"size:10;not null;default:'0001-01-01'"` // UTC day CoinsPerDay belongs to
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
