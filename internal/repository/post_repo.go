package repository

import (
	"Mosaic/internal/model"
	"Mosaic/internal/pkg/consts"
	"context"
	"errors"

	"gorm.io/gorm"
)

type PostRepo interface {
	CreatePost(ctx context.Context, post *model.Post) error
	GetPost(ctx context.Context, id uint64) (*model.Post, error)
	GetActivePost(ctx context.Context, id uint64) (*model.Post, error)
	GetActivePostsByAccount(ctx context.Context, accountID uint64) ([]*model.Post, error)
	MarkRemoved(ctx context.Context, id uint64) error
}

type PostRepoImpl struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepo {
	return &PostRepoImpl{
		db: db,
	}
}

func (s *PostRepoImpl) CreatePost(ctx context.Context, post *model.Post) error {
	if post.Status == "" {
		post.Status = consts.PostStatusActive
	}
	return s.db.WithContext(ctx).Create(post).Error
}

// GetPost 不区分状态，软删除的帖子同样返回
func (s *PostRepoImpl) GetPost(ctx context.Context, id uint64) (*model.Post, error) {
	var post model.Post
	err := s.db.WithContext(ctx).First(&post, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

func (s *PostRepoImpl) GetActivePost(ctx context.Context, id uint64) (*model.Post, error) {
	var post model.Post
	err := s.db.WithContext(ctx).
		Select("posts.*, (?) AS media_count", s.mediaCountSubQuery()).
		Where("posts.id = ? AND posts.status = ?", id, consts.PostStatusActive).
		First(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

func (s *PostRepoImpl) GetActivePostsByAccount(ctx context.Context, accountID uint64) ([]*model.Post, error) {
	posts := make([]*model.Post, 0)
	err := s.db.WithContext(ctx).
		Select("posts.*, (?) AS media_count", s.mediaCountSubQuery()).
		Where("posts.account_id = ? AND posts.status = ?", accountID, consts.PostStatusActive).
		Order("posts.created_at DESC").
		Order("posts.id DESC").
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (s *PostRepoImpl) MarkRemoved(ctx context.Context, id uint64) error {
	return s.db.WithContext(ctx).
		Model(&model.Post{}).
		Where("id = ?", id).
		Update("status", consts.PostStatusRemoved).Error
}

func (s *PostRepoImpl) mediaCountSubQuery() *gorm.DB {
	return s.db.Model(&model.MediaItem{}).
		Select("COUNT(*)").
		Where("media_items.post_id = posts.id")
}
