package model

import (
	"time"
)

type Account struct {
	ID         uint64    `gorm:"primaryKey"`
	Username   string    `gorm:"type:varchar(50);not null;uniqueIndex:idx_accounts_username"`
	Email      string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_accounts_email"`
	Password   string    `gorm:"type:varchar(255);not null"`
	AvatarURL  *string   `gorm:"type:varchar(512)"`
	CreatedAt  time.Time `gorm:"not null"`
	LastSeenAt *time.Time
}

func (Account) TableName() string {
	return "accounts"
}
