package service

import (
	"Mosaic/internal/api/dto"
	"Mosaic/internal/model"
	"Mosaic/internal/pkg/consts"
	"Mosaic/internal/pkg/kafka"
	"Mosaic/internal/repository"
	"context"
	"strings"

	"github.com/jinzhu/copier"
)

type PostService interface {
	CreatePost(ctx context.Context, accountID uint64, dto *dto.CreatePostDTO) (*dto.PostDTO, error)
	ListPosts(ctx context.Context, accountID uint64) ([]*dto.PostDTO, error)
	GetPost(ctx context.Context, postID uint64) (*dto.PostDetailDTO, error)
	DeletePost(ctx context.Context, accountID uint64, postID uint64) error
}

type postServiceImpl struct {
	postRepo  repository.PostRepo
	mediaRepo repository.MediaRepo
	publisher kafka.Publisher
}

func NewPostService(postRepo repository.PostRepo, mediaRepo repository.MediaRepo, publisher kafka.Publisher) PostService {
	return &postServiceImpl{
		postRepo:  postRepo,
		mediaRepo: mediaRepo,
		publisher: publisher,
	}
}

func (s *postServiceImpl) CreatePost(ctx context.Context, accountID uint64, postDTO *dto.CreatePostDTO) (*dto.PostDTO, error) {
	title := strings.TrimSpace(postDTO.Titulo)
	if title == "" {
		return nil, ErrParamInvalid
	}
	post := &model.Post{
		AccountID: accountID,
		Title:     title,
		Body:      postDTO.Descripcion,
		Status:    consts.PostStatusActive,
	}
	if err := s.postRepo.CreatePost(ctx, post); err != nil {
		return nil, err
	}
	return toPostDTO(post)
}

func (s *postServiceImpl) ListPosts(ctx context.Context, accountID uint64) ([]*dto.PostDTO, error) {
	posts, err := s.postRepo.GetActivePostsByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	postDTOs := make([]*dto.PostDTO, 0, len(posts))
	if err = copier.Copy(&postDTOs, &posts); err != nil {
		return nil, err
	}
	return postDTOs, nil
}

func (s *postServiceImpl) GetPost(ctx context.Context, postID uint64) (*dto.PostDetailDTO, error) {
	post, err := s.postRepo.GetActivePost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}

	items, err := s.mediaRepo.GetMediaByPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	postDTO, err := toPostDTO(post)
	if err != nil {
		return nil, err
	}
	mediaDTOs := make([]*dto.MediaDTO, 0, len(items))
	if err = copier.Copy(&mediaDTOs, &items); err != nil {
		return nil, err
	}
	return &dto.PostDetailDTO{Post: postDTO, Contenido: mediaDTOs}, nil
}

// DeletePost 软删除，不级联删除媒体，媒体由定时任务回收
func (s *postServiceImpl) DeletePost(ctx context.Context, accountID uint64, postID uint64) error {
	post, err := s.postRepo.GetPost(ctx, postID)
	if err != nil {
		return err
	}
	if post == nil || post.Status != consts.PostStatusActive {
		return ErrPostNotFound
	}
	if post.AccountID != accountID {
		return ErrPostForbidden
	}
	if err = s.postRepo.MarkRemoved(ctx, postID); err != nil {
		return err
	}

	s.publisher.Publish(ctx, &kafka.Event{
		Type:      kafka.EventPostRemoved,
		AccountID: accountID,
		PostID:    postID,
	})
	return nil
}

func toPostDTO(post *model.Post) (*dto.PostDTO, error) {
	postDTO := &dto.PostDTO{}
	if err := copier.Copy(postDTO, post); err != nil {
		return nil, err
	}
	return postDTO, nil
}
