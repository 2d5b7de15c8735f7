package model

import (
	"time"
)

type Post struct {
	ID        uint64    `gorm:"primaryKey" json:"id"`
	AccountID uint64    `gorm:"not null;index:idx_posts_account_id" json:"account_id"`
	Title     string    `gorm:"type:varchar(100);not null" json:"title"`
	Body      string    `gorm:"type:text" json:"body"`
	Status    string    `gorm:"type:varchar(16);not null;default:active;index:idx_posts_status" json:"status"` // active | removed
	CreatedAt time.Time `gorm:"not null" json:"created_at"`

	// 查询时聚合的媒体数量，不落库
	MediaCount int64 `gorm:"->;-:migration" json:"media_count"`
}

func (Post) TableName() string {
	return "posts"
}
