package model

import (
	"time"
)

type MediaItem struct {
	ID           uint64    `gorm:"primaryKey" json:"id"`
	PostID       uint64    `gorm:"not null;index:idx_media_items_post_sort,priority:1" json:"post_id"`
	Kind         string    `gorm:"type:varchar(16);not null" json:"kind"` // image | video
	URL          string    `gorm:"type:varchar(1024);not null" json:"url"`
	SortOrder    int       `gorm:"not null;default:1;index:idx_media_items_post_sort,priority:2" json:"sort_order"`
	FileName     string    `gorm:"type:varchar(255)" json:"file_name"`
	Size         int64     `gorm:"not null;default:0" json:"size"`
	ProviderPath *string   `gorm:"type:varchar(512);index:idx_media_items_provider_path" json:"provider_path"`
	Width        int       `gorm:"not null;default:0" json:"width"`
	Height       int       `gorm:"not null;default:0" json:"height"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
}

func (MediaItem) TableName() string {
	return "media_items"
}

// IsRemote 二进制是否托管在云存储上
func (m *MediaItem) IsRemote() bool {
	return m.ProviderPath != nil && *m.ProviderPath != ""
}

// MediaItemWithOwner 媒体连同所属帖子的作者与状态
type MediaItemWithOwner struct {
	MediaItem
	OwnerID    uint64
	PostStatus string
}

// MediaStats 用户媒体统计
type MediaStats struct {
	TotalFiles  int64
	TotalSize   int64
	RemoteFiles int64
	LocalFiles  int64
}

// AllModels 需要自动迁移的模型
func AllModels() []any {
	return []any{&Account{}, &Post{}, &MediaItem{}}
}
