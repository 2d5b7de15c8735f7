package wire

import (
	"Mosaic/internal/api"
	"Mosaic/internal/api/config"
	"Mosaic/internal/api/handler"
	"Mosaic/internal/job"
	"Mosaic/internal/pkg/consts"
	"Mosaic/internal/pkg/cron"
	"Mosaic/internal/pkg/firebase"
	"Mosaic/internal/pkg/kafka"
	"Mosaic/internal/pkg/minio"
	"Mosaic/internal/pkg/security"
	"Mosaic/internal/repository"
	"Mosaic/internal/service"
	"Mosaic/internal/storage"
	"context"
	"errors"
	"fmt"
	"io"
	log "log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	mb                      = int64(1) << 20
	defaultMaxUploadMB      = 50
	defaultCredentialTTLMin = 60
	defaultSignedURLMin     = 60
	defaultOrphanGraceHours = 24
)

// ApplicationContainer 封装了应用运行所需的所有顶级组件
type ApplicationContainer struct {
	Router    *gin.Engine
	DB        *gorm.DB
	CronMgr   *cron.Manager
	Publisher kafka.Publisher
	closers   []io.Closer
}

// Close 释放存储与消息客户端
func (a *ApplicationContainer) Close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func BuildApplication(ctx context.Context, db *gorm.DB, cfg *config.Config) (*ApplicationContainer, error) {
	security.Init(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpireHours)*time.Hour)

	storageCfg := cfg.Storage
	maxUpload := orDefault(storageCfg.Local.MaxSizeMB, defaultMaxUploadMB) * mb
	credentialTTL := time.Duration(orDefault(int64(storageCfg.CredentialTTLMinutes), defaultCredentialTTLMin)) * time.Minute
	signedURLTTL := time.Duration(orDefault(int64(storageCfg.SignedURLMinutes), defaultSignedURLMin)) * time.Minute

	local, err := storage.NewLocalBackend(storageCfg.Local.Root, storageCfg.Local.PublicPrefix)
	if err != nil {
		return nil, err
	}

	container := &ApplicationContainer{DB: db}

	remote, closer, err := buildRemoteBackend(ctx, storageCfg, credentialTTL, maxUpload)
	if err != nil {
		return nil, err
	}
	if closer != nil {
		container.closers = append(container.closers, closer)
	}

	publisher, err := kafka.NewPublisher(cfg.Kafka)
	if err != nil {
		_ = container.Close()
		return nil, err
	}
	container.Publisher = publisher
	container.closers = append(container.closers, publisher)

	backends := storage.Backends{Local: local}
	if remote != nil {
		backends.Remote = remote
	}

	accountRepo := repository.NewAccountRepo(db)
	postRepo := repository.NewPostRepository(db)
	mediaRepo := repository.NewMediaRepo(db)

	accountService := service.NewAccountService(accountRepo, backends.Remote)
	postService := service.NewPostService(postRepo, mediaRepo, publisher)
	mediaService := service.NewMediaService(postRepo, mediaRepo, backends, service.NewOrderLocker(), publisher, service.MediaOptions{
		MaxUploadSize: maxUpload,
		SignedURLTTL:  signedURLTTL,
	})

	handlers := &api.HandlersGroup{
		AccountHandler: handler.NewAccountHandler(accountService),
		PostHandler:    handler.NewPostHandler(postService),
		MediaHandler:   handler.NewMediaHandler(mediaService, maxUpload),
	}
	container.Router = api.SetupRouter(handlers, api.RouterOptions{
		UploadsPrefix:      local.PublicPrefix(),
		UploadsRoot:        local.Root(),
		LogIndex:           cfg.Logstash.Index,
		MaxMultipartMemory: 8 * mb,
	})

	grace := time.Duration(orDefault(int64(cfg.Cron.OrphanGraceHours), defaultOrphanGraceHours)) * time.Hour
	orphanJob := job.NewOrphanCleanupJob(postRepo, mediaRepo, backends, grace)
	container.CronMgr = cron.NewCronManager(orphanJob, cfg.Cron.OrphanCleanup)

	return container, nil
}

// buildRemoteBackend 按 storage.provider 构建直传存储，none 时返回 nil
func buildRemoteBackend(ctx context.Context, cfg config.StorageConfig, credentialTTL time.Duration, maxUpload int64) (storage.Delegating, io.Closer, error) {
	switch cfg.Provider {
	case consts.ProviderFirebase:
		clients, err := firebase.Init(ctx, cfg.Firebase)
		if err != nil {
			return nil, nil, err
		}
		objects, err := storage.NewGCSObjects(clients.Storage, cfg.Firebase.Bucket, cfg.Firebase.SignerEmail, cfg.Firebase.SignerKeyFile)
		if err != nil {
			_ = clients.Close()
			return nil, nil, err
		}
		return storage.NewFirebaseBackend(clients.Auth, objects, cfg.Firebase.Bucket, credentialTTL), clients, nil

	case consts.ProviderMinIO:
		clients, err := minio.Init(ctx, cfg.MinIO)
		if err != nil {
			return nil, nil, err
		}
		return storage.NewMinioBackend(clients.Internal, clients.External, clients.Bucket, clients.PublicBase(), credentialTTL, maxUpload), nil, nil

	case consts.ProviderNone, "":
		log.Warn("No delegated storage provider configured, direct upload disabled")
		return nil, nil, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage.provider %q", cfg.Provider)
	}
}

func orDefault(v, def int64) int64 {
	if v <= 0 {
		return def
	}
	return v
}
