package minio

import (
	"Mosaic/internal/api/config"
	"context"
	"fmt"
	log "log/slog"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Clients 内网客户端负责读写，外网客户端只做预签名，保证签名中的 Host 与浏览器一致
type Clients struct {
	Internal *minio.Client
	External *minio.Client
	Bucket   string
}

// Init 初始化 MinIO 客户端并确保存储桶存在
func Init(ctx context.Context, cfg config.MinIOConfig) (*Clients, error) {
	external, err := newClient(cfg.ExternalEndpoint, cfg.ExternalUseSSL, cfg)
	if err != nil {
		return nil, err
	}

	internal := external
	if cfg.InternalEndpoint != "" {
		internal, err = newClient(cfg.InternalEndpoint, cfg.InternalUseSSL, cfg)
		if err != nil {
			return nil, err
		}
	}

	if err = EnsureBucket(ctx, internal, cfg.Bucket); err != nil {
		return nil, err
	}
	return &Clients{Internal: internal, External: external, Bucket: cfg.Bucket}, nil
}

func newClient(endpoint string, useSSL bool, cfg config.MinIOConfig) (*minio.Client, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("minio endpoint is empty")
	}
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: useSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize minio client: %w", err)
	}
	return client, nil
}

// EnsureBucket 存储桶不存在时创建
func EnsureBucket(ctx context.Context, client *minio.Client, bucket string) error {
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("failed to connect to minio server: %w", err)
	}
	if !exists {
		if err = client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("create bucket %s: %w", bucket, err)
		}
		log.Info("MinIO bucket created", "bucket", bucket)
	}

	return nil
}

// PublicBase 浏览器访问对象使用的地址
func (c *Clients) PublicBase() string {
	return c.External.EndpointURL().String()
}
