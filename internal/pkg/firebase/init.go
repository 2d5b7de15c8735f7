package firebase

import (
	"Mosaic/internal/api/config"
	"context"
	"errors"
	"fmt"
	log "log/slog"

	gcs "cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

// Clients Firebase 鉴权与 Cloud Storage 客户端
type Clients struct {
	App     *firebase.App
	Auth    *auth.Client
	Storage *gcs.Client
}

// Init 初始化 Firebase App、Auth 与 GCS 客户端，未配置凭证文件时使用默认凭证
func Init(ctx context.Context, cfg config.FirebaseConfig) (*Clients, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("storage.firebase.bucket is required")
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
		log.Info("Using credentials file for Firebase clients", "file", cfg.CredentialsFile)
	} else {
		log.Info("Using Application Default Credentials for Firebase clients")
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{
		ProjectID:     cfg.ProjectID,
		StorageBucket: cfg.Bucket,
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase app init failed: %w", err)
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase auth init failed: %w", err)
	}

	storageClient, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage.NewClient failed: %w", err)
	}

	log.Info("Firebase clients initialized", "project", cfg.ProjectID, "bucket", cfg.Bucket)
	return &Clients{App: app, Auth: authClient, Storage: storageClient}, nil
}

// Close 释放 GCS 连接
func (c *Clients) Close() error {
	if c == nil || c.Storage == nil {
		return nil
	}
	return c.Storage.Close()
}
