package repository

import (
	"Mosaic/internal/model"
	"Mosaic/internal/pkg/consts"
	"context"
	"errors"

	"gorm.io/gorm"
)

type MediaRepo interface {
	CreateMedia(ctx context.Context, media *model.MediaItem) error
	GetMaxSortOrder(ctx context.Context, postID uint64) (int, error)
	GetMediaWithOwner(ctx context.Context, id uint64) (*model.MediaItemWithOwner, error)
	GetMediaByPost(ctx context.Context, postID uint64) ([]*model.MediaItem, error)
	GetMediaOfRemovedPosts(ctx context.Context, afterID uint64, limit int) ([]*model.MediaItem, error)
	ExistsByProviderPath(ctx context.Context, providerPath string) (bool, error)
	GetStatsByAccount(ctx context.Context, accountID uint64) (*model.MediaStats, error)
	DeleteMedia(ctx context.Context, id uint64) error
}

type MediaRepoImpl struct {
	db *gorm.DB
}

func NewMediaRepo(db *gorm.DB) MediaRepo {
	return &MediaRepoImpl{db: db}
}

func (s *MediaRepoImpl) CreateMedia(ctx context.Context, media *model.MediaItem) error {
	return s.db.WithContext(ctx).Create(media).Error
}

// GetMaxSortOrder 帖子当前最大排序值，没有媒体时返回 0
func (s *MediaRepoImpl) GetMaxSortOrder(ctx context.Context, postID uint64) (int, error) {
	var maxOrder int
	err := s.db.WithContext(ctx).
		Model(&model.MediaItem{}).
		Select("COALESCE(MAX(sort_order), 0)").
		Where("post_id = ?", postID).
		Scan(&maxOrder).Error
	if err != nil {
		return 0, err
	}
	return maxOrder, nil
}

func (s *MediaRepoImpl) GetMediaWithOwner(ctx context.Context, id uint64) (*model.MediaItemWithOwner, error) {
	var item model.MediaItemWithOwner
	result := s.db.WithContext(ctx).
		Model(&model.MediaItem{}).
		Select("media_items.*, posts.account_id AS owner_id, posts.status AS post_status").
		Joins("JOIN posts ON posts.id = media_items.post_id").
		Where("media_items.id = ?", id).
		Limit(1).
		Scan(&item)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return &item, nil
}

func (s *MediaRepoImpl) GetMediaByPost(ctx context.Context, postID uint64) ([]*model.MediaItem, error) {
	items := make([]*model.MediaItem, 0)
	err := s.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("sort_order ASC").
		Order("id ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// GetMediaOfRemovedPosts 按 id 游标分页，返回 id 大于 afterID 的记录
func (s *MediaRepoImpl) GetMediaOfRemovedPosts(ctx context.Context, afterID uint64, limit int) ([]*model.MediaItem, error) {
	items := make([]*model.MediaItem, 0)
	err := s.db.WithContext(ctx).
		Joins("JOIN posts ON posts.id = media_items.post_id").
		Where("posts.status = ? AND media_items.id > ?", consts.PostStatusRemoved, afterID).
		Order("media_items.id ASC").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *MediaRepoImpl) ExistsByProviderPath(ctx context.Context, providerPath string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&model.MediaItem{}).
		Where("provider_path = ?", providerPath).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *MediaRepoImpl) GetStatsByAccount(ctx context.Context, accountID uint64) (*model.MediaStats, error) {
	var stats model.MediaStats
	err := s.db.WithContext(ctx).
		Model(&model.MediaItem{}).
		Select(`COUNT(*) AS total_files,
			COALESCE(SUM(media_items.size), 0) AS total_size,
			COALESCE(SUM(CASE WHEN media_items.provider_path IS NOT NULL AND media_items.provider_path <> '' THEN 1 ELSE 0 END), 0) AS remote_files`).
		Joins("JOIN posts ON posts.id = media_items.post_id").
		Where("posts.account_id = ? AND posts.status = ?", accountID, consts.PostStatusActive).
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	stats.LocalFiles = stats.TotalFiles - stats.RemoteFiles
	return &stats, nil
}

func (s *MediaRepoImpl) DeleteMedia(ctx context.Context, id uint64) error {
	result := s.db.WithContext(ctx).Delete(&model.MediaItem{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// IsNotFound 判断是否为记录不存在
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
