package job

import (
	"Mosaic/internal/model"
	"Mosaic/internal/pkg/consts"
	"Mosaic/internal/pkg/redis"
	"Mosaic/internal/repository"
	"Mosaic/internal/storage"
	"context"
	"errors"
	log "log/slog"
	"time"

	"github.com/google/uuid"
)

const (
	orphanBatchSize  = 100
	orphanJobLockTTL = 30 * time.Minute
)

// OrphanCleanupJob 回收已删除帖子的媒体，以及云存储中无人引用的对象
type OrphanCleanupJob struct {
	postRepo  repository.PostRepo
	mediaRepo repository.MediaRepo
	backends  storage.Backends
	grace     time.Duration
	now       func() time.Time
}

func NewOrphanCleanupJob(postRepo repository.PostRepo, mediaRepo repository.MediaRepo, backends storage.Backends, grace time.Duration) *OrphanCleanupJob {
	return &OrphanCleanupJob{
		postRepo:  postRepo,
		mediaRepo: mediaRepo,
		backends:  backends,
		grace:     grace,
		now:       time.Now,
	}
}

// CleanupResult 单次执行的统计
type CleanupResult struct {
	PurgedMedia    int
	DeletedObjects int
}

// Run 供 cron 调用，多实例部署时通过 Redis 锁保证只有一个实例执行
func (s *OrphanCleanupJob) Run() {
	ctx := context.Background()

	if redis.Enabled() {
		owner := uuid.NewString()
		ok, err := redis.TryLock(ctx, consts.OrphanCleanJobLock, owner, orphanJobLockTTL, 1)
		if err != nil {
			log.Error("acquire orphan cleanup lock failed", "err", err)
			return
		}
		if !ok {
			log.Info("orphan cleanup already running elsewhere, skip")
			return
		}
		defer redis.UnLock(ctx, consts.OrphanCleanJobLock, owner)
	}

	log.Info("start orphan cleanup job")
	result, err := s.Execute(ctx)
	if err != nil {
		log.Error("orphan cleanup job failed", "err", err, "purged_media", result.PurgedMedia, "deleted_objects", result.DeletedObjects)
		return
	}
	if result.PurgedMedia > 0 || result.DeletedObjects > 0 {
		log.Info("orphan cleanup job finished", "purged_media", result.PurgedMedia, "deleted_objects", result.DeletedObjects)
	}
}

func (s *OrphanCleanupJob) Execute(ctx context.Context) (CleanupResult, error) {
	var result CleanupResult

	purged, err := s.purgeRemovedPostMedia(ctx)
	result.PurgedMedia = purged
	if err != nil {
		return result, err
	}

	deleted, err := s.sweepProviderObjects(ctx)
	result.DeletedObjects = deleted
	return result, err
}

// purgeRemovedPostMedia 先删二进制再删记录；二进制删除失败的记录留到下次，游标越过它们继续
func (s *OrphanCleanupJob) purgeRemovedPostMedia(ctx context.Context) (int, error) {
	total := 0
	var lastID uint64
	for {
		items, err := s.mediaRepo.GetMediaOfRemovedPosts(ctx, lastID, orphanBatchSize)
		if err != nil {
			return total, err
		}

		purged := 0
		for _, item := range items {
			lastID = item.ID
			if !s.deleteBinary(ctx, item) {
				continue
			}
			if err = s.mediaRepo.DeleteMedia(ctx, item.ID); err != nil && !repository.IsNotFound(err) {
				return total, err
			}
			purged++
		}
		total += purged

		if len(items) < orphanBatchSize {
			return total, nil
		}
	}
}

func (s *OrphanCleanupJob) deleteBinary(ctx context.Context, item *model.MediaItem) bool {
	backend := s.backends.For(item.ProviderPath)
	if backend == nil {
		log.Warn("no storage backend for media, keep row", "media_id", item.ID)
		return false
	}
	locator := storage.LocatorOf(item.URL, item.ProviderPath)
	if err := backend.Delete(ctx, locator); err != nil {
		log.Warn("delete orphan media binary failed", "media_id", item.ID, "locator", locator, "err", err)
		return false
	}
	return true
}

// sweepProviderObjects 删除帖子已失效、或超过宽限期仍未登记的直传对象
func (s *OrphanCleanupJob) sweepProviderObjects(ctx context.Context) (int, error) {
	remote := s.backends.Remote
	if remote == nil {
		return 0, nil
	}

	objects, err := remote.List(ctx, consts.ObjectRootPrefix+"/")
	if err != nil {
		return 0, err
	}

	deadline := s.now().Add(-s.grace)
	deleted := 0
	for _, obj := range objects {
		orphan, err := s.isOrphan(ctx, obj, deadline)
		if err != nil {
			return deleted, err
		}
		if !orphan {
			continue
		}
		if err = remote.Delete(ctx, obj.Path); err != nil {
			log.Warn("delete orphan object failed", "path", obj.Path, "err", err)
			continue
		}
		deleted++
	}
	return deleted, nil
}

func (s *OrphanCleanupJob) isOrphan(ctx context.Context, obj storage.ObjectInfo, deadline time.Time) (bool, error) {
	stale := !obj.Updated.IsZero() && obj.Updated.Before(deadline)

	accountID, postID, err := storage.ParseObjectPath(obj.Path)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidObjectPath) {
			return stale, nil
		}
		return false, err
	}

	post, err := s.postRepo.GetPost(ctx, postID)
	if err != nil {
		return false, err
	}
	if post == nil || post.Status != consts.PostStatusActive || post.AccountID != accountID {
		return true, nil
	}

	if !stale {
		return false, nil
	}
	referenced, err := s.mediaRepo.ExistsByProviderPath(ctx, obj.Path)
	if err != nil {
		return false, err
	}
	return !referenced, nil
}
