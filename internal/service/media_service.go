package service

import (
	"Mosaic/internal/api/dto"
	"Mosaic/internal/model"
	"Mosaic/internal/pkg/consts"
	"Mosaic/internal/pkg/kafka"
	"Mosaic/internal/pkg/util"
	"Mosaic/internal/repository"
	"Mosaic/internal/storage"
	"context"
	"errors"
	"fmt"
	"io"
	log "log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/jinzhu/copier"
)

type MediaService interface {
	UploadLocal(ctx context.Context, accountID uint64, upload *dto.LocalUpload, file io.ReadSeeker) (*dto.MediaDTO, error)
	RegisterRemote(ctx context.Context, accountID uint64, dto *dto.RegisterRemoteMediaDTO) (*dto.MediaDTO, error)
	DeleteMedia(ctx context.Context, accountID uint64, mediaID uint64) error
	GetMediaURL(ctx context.Context, mediaID uint64) (string, error)
	GetStorageStats(ctx context.Context, accountID uint64) (*dto.StorageStatsDTO, error)
}

// MediaOptions 上传限制与签名链接有效期
type MediaOptions struct {
	MaxUploadSize int64
	SignedURLTTL  time.Duration
}

type mediaServiceImpl struct {
	postRepo  repository.PostRepo
	mediaRepo repository.MediaRepo
	backends  storage.Backends
	locker    OrderLocker
	publisher kafka.Publisher
	opts      MediaOptions
}

func NewMediaService(
	postRepo repository.PostRepo,
	mediaRepo repository.MediaRepo,
	backends storage.Backends,
	locker OrderLocker,
	publisher kafka.Publisher,
	opts MediaOptions,
) MediaService {
	return &mediaServiceImpl{
		postRepo:  postRepo,
		mediaRepo: mediaRepo,
		backends:  backends,
		locker:    locker,
		publisher: publisher,
		opts:      opts,
	}
}

// UploadLocal 先落盘再校验，任何失败都会删除已接收的文件
func (s *mediaServiceImpl) UploadLocal(ctx context.Context, accountID uint64, upload *dto.LocalUpload, file io.ReadSeeker) (result *dto.MediaDTO, err error) {
	if file == nil {
		return nil, ErrFileMissing
	}
	if upload.PostID == 0 {
		return nil, ErrParamInvalid
	}
	if s.backends.Local == nil {
		return nil, fmt.Errorf("%w: local storage", storage.ErrNotConfigured)
	}

	contentType := upload.ContentType
	if util.NeedsSniffing(contentType) {
		if contentType, err = util.DetectContentType(file); err != nil {
			return nil, err
		}
		if _, err = file.Seek(0, io.SeekStart); err != nil {
			return nil, err
		}
	}

	locator := s.backends.Local.NewLocator(accountID, upload.PostID, filepath.Ext(upload.FileName))
	size, err := s.backends.Local.Save(ctx, locator, file)
	if err != nil {
		return nil, err
	}
	registered := false
	defer func() {
		if err == nil || registered {
			return
		}
		if delErr := s.backends.Local.Delete(context.WithoutCancel(ctx), locator); delErr != nil {
			log.WarnContext(ctx, "cleanup rejected upload failed", "locator", locator, "err", delErr)
		}
	}()

	if err = util.ValidateUpload(upload.FileName, contentType, size, s.opts.MaxUploadSize); err != nil {
		if errors.Is(err, util.ErrMediaTooLarge) {
			return nil, ErrFileTooLarge
		}
		return nil, ErrFileNotSupported
	}

	if _, err = s.ownedActivePost(ctx, accountID, upload.PostID); err != nil {
		return nil, err
	}

	item := &model.MediaItem{
		PostID:   upload.PostID,
		Kind:     util.ClassifyKind(contentType),
		URL:      locator,
		FileName: storage.SanitizeFileName(upload.FileName),
		Size:     size,
	}
	if item.Kind == consts.MediaKindImage {
		if _, seekErr := file.Seek(0, io.SeekStart); seekErr == nil {
			if w, h, dimErr := util.ImageDimensions(file); dimErr == nil {
				item.Width, item.Height = w, h
			} else {
				log.DebugContext(ctx, "decode image dimensions failed", "file", upload.FileName, "err", dimErr)
			}
		}
	}

	if err = s.insertWithNextOrder(ctx, item); err != nil {
		return nil, err
	}
	registered = true
	s.publishMedia(ctx, kafka.EventMediaRegistered, accountID, item)
	return toMediaDTO(item)
}

// RegisterRemote 不信任客户端提交的信息，逐项重新校验；拒绝时不删除云端对象
func (s *mediaServiceImpl) RegisterRemote(ctx context.Context, accountID uint64, in *dto.RegisterRemoteMediaDTO) (*dto.MediaDTO, error) {
	if in.PostID == 0 || strings.TrimSpace(in.Tipo) == "" || strings.TrimSpace(in.URL) == "" ||
		strings.TrimSpace(in.FileName) == "" || in.Tamano <= 0 || strings.TrimSpace(in.ProviderPath) == "" {
		return nil, ErrParamInvalid
	}
	kind, ok := util.NormalizeKind(in.Tipo)
	if !ok {
		return nil, ErrMediaKindInvalid
	}

	post, err := s.ownedActivePost(ctx, accountID, in.PostID)
	if err != nil {
		return nil, err
	}

	if err = storage.ValidateObjectPath(in.ProviderPath, post.AccountID, post.ID); err != nil {
		log.WarnContext(ctx, "object path rejected", "path", in.ProviderPath, "err", err)
		return nil, ErrObjectPathInvalid
	}

	if s.backends.Remote == nil {
		return nil, ErrObjectNotFound
	}
	exists, err := s.backends.Remote.Exists(ctx, in.ProviderPath)
	if err != nil {
		log.ErrorContext(ctx, "object existence check failed", "path", in.ProviderPath, "err", err)
		return nil, fmt.Errorf("%w: %v", ErrUpstreamFailure, err)
	}
	if !exists {
		return nil, ErrObjectNotFound
	}

	providerPath := in.ProviderPath
	item := &model.MediaItem{
		PostID:       post.ID,
		Kind:         kind,
		URL:          strings.TrimSpace(in.URL),
		FileName:     in.FileName,
		Size:         in.Tamano,
		ProviderPath: &providerPath,
	}
	if err = s.insertWithNextOrder(ctx, item); err != nil {
		return nil, err
	}
	s.publishMedia(ctx, kafka.EventMediaRegistered, accountID, item)
	return toMediaDTO(item)
}

// DeleteMedia 先尽力删除二进制，再删除记录
func (s *mediaServiceImpl) DeleteMedia(ctx context.Context, accountID uint64, mediaID uint64) error {
	item, err := s.mediaRepo.GetMediaWithOwner(ctx, mediaID)
	if err != nil {
		return err
	}
	if item == nil {
		return ErrMediaNotFound
	}
	if item.OwnerID != accountID {
		return ErrMediaForbidden
	}

	s.deleteBinary(ctx, &item.MediaItem)

	if err = s.mediaRepo.DeleteMedia(ctx, mediaID); err != nil {
		if repository.IsNotFound(err) {
			return ErrMediaNotFound
		}
		return err
	}
	s.publishMedia(ctx, kafka.EventMediaDeleted, accountID, &item.MediaItem)
	return nil
}

func (s *mediaServiceImpl) GetMediaURL(ctx context.Context, mediaID uint64) (string, error) {
	item, err := s.mediaRepo.GetMediaWithOwner(ctx, mediaID)
	if err != nil {
		return "", err
	}
	if item == nil || item.PostStatus != consts.PostStatusActive {
		return "", ErrMediaNotFound
	}

	if item.IsRemote() {
		if s.backends.Remote == nil {
			return item.URL, nil
		}
		signed, err := s.backends.Remote.SignedURL(ctx, *item.ProviderPath, s.opts.SignedURLTTL)
		if err != nil {
			log.ErrorContext(ctx, "sign media url failed", "media_id", mediaID, "err", err)
			return "", fmt.Errorf("%w: %v", ErrUpstreamFailure, err)
		}
		return signed, nil
	}

	if s.backends.Local == nil {
		return item.URL, nil
	}
	return s.backends.Local.Locate(ctx, item.URL)
}

func (s *mediaServiceImpl) GetStorageStats(ctx context.Context, accountID uint64) (*dto.StorageStatsDTO, error) {
	stats, err := s.mediaRepo.GetStatsByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	statsDTO := &dto.StorageStatsDTO{}
	if err = copier.Copy(statsDTO, stats); err != nil {
		return nil, err
	}
	return statsDTO, nil
}

func (s *mediaServiceImpl) ownedActivePost(ctx context.Context, accountID uint64, postID uint64) (*model.Post, error) {
	post, err := s.postRepo.GetActivePost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	if post.AccountID != accountID {
		return nil, ErrPostForbidden
	}
	return post, nil
}

// insertWithNextOrder 排序值为当前最大值 + 1，空帖子从 1 开始
func (s *mediaServiceImpl) insertWithNextOrder(ctx context.Context, item *model.MediaItem) error {
	return s.locker.WithPostLock(ctx, item.PostID, func(ctx context.Context) error {
		maxOrder, err := s.mediaRepo.GetMaxSortOrder(ctx, item.PostID)
		if err != nil {
			return err
		}
		item.SortOrder = maxOrder + 1
		return s.mediaRepo.CreateMedia(ctx, item)
	})
}

func (s *mediaServiceImpl) deleteBinary(ctx context.Context, item *model.MediaItem) {
	backend := s.backends.For(item.ProviderPath)
	if backend == nil {
		log.WarnContext(ctx, "no storage backend for media, skip binary deletion", "media_id", item.ID)
		return
	}
	locator := storage.LocatorOf(item.URL, item.ProviderPath)
	if err := backend.Delete(ctx, locator); err != nil {
		log.WarnContext(ctx, "delete media binary failed",
			"media_id", item.ID,
			"backend", backend.Name(),
			"locator", locator,
			"err", err,
		)
	}
}

func (s *mediaServiceImpl) publishMedia(ctx context.Context, eventType string, accountID uint64, item *model.MediaItem) {
	event := &kafka.Event{
		Type:      eventType,
		AccountID: accountID,
		PostID:    item.PostID,
		MediaID:   item.ID,
	}
	if item.ProviderPath != nil {
		event.ProviderPath = *item.ProviderPath
	}
	s.publisher.Publish(ctx, event)
}

func toMediaDTO(item *model.MediaItem) (*dto.MediaDTO, error) {
	mediaDTO := &dto.MediaDTO{}
	if err := copier.Copy(mediaDTO, item); err != nil {
		return nil, err
	}
	return mediaDTO, nil
}
