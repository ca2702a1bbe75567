package model

import "time"

// User stores Telegram user metadata.
type User struct {
	ID         uint  `gorm:"primaryKey"`
	TelegramID int64 `gorm:"uniqueIndex"`
	FirstName  string
	LastName   string
	Username   string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Profile is the per-user reward record: experience points and level.
type Profile struct {
	UserID    uint `gorm:"primaryKey;autoIncrement:false"`
	Points    int  `gorm:"not null;default:0"`
	Level     int  `gorm:"not null;default:1"`
	UpdatedAt time.Time
}

// DefaultProfile is what a user starts with before the first reward.
func DefaultProfile(userID uint) Profile {
	return Profile{UserID: userID, Points: 0, Level: 1}
}
