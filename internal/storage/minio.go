package storage

import (
	"Mosaic/internal/pkg/consts"
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
)

// MinioObjects 由 *minio.Client 实现 (内网地址)
type MinioObjects interface {
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
	ListObjects(ctx context.Context, bucketName string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
}

// MinioPresigner 由 *minio.Client 实现 (外网地址，签名需与浏览器访问的 Host 一致)
type MinioPresigner interface {
	PresignedGetObject(ctx context.Context, bucketName, objectName string, expires time.Duration, reqParams url.Values) (*url.URL, error)
	PresignedPostPolicy(ctx context.Context, p *minio.PostPolicy) (*url.URL, map[string]string, error)
}

// MinioBackend 以预签名 POST 策略作为委托凭证，策略限定在账号目录内
type MinioBackend struct {
	objects       MinioObjects
	presigner     MinioPresigner
	bucket        string
	publicBase    string
	credentialTTL time.Duration
	maxSize       int64
}

func NewMinioBackend(objects MinioObjects, presigner MinioPresigner, bucket, publicBase string, credentialTTL time.Duration, maxSize int64) *MinioBackend {
	return &MinioBackend{
		objects:       objects,
		presigner:     presigner,
		bucket:        bucket,
		publicBase:    publicBase,
		credentialTTL: credentialTTL,
		maxSize:       maxSize,
	}
}

func (s *MinioBackend) Name() string {
	return consts.ProviderMinIO
}

func (s *MinioBackend) IssueCredential(ctx context.Context, accountID uint64) (*Credential, error) {
	prefix := UserPrefix(accountID)
	expiresAt := time.Now().Add(s.credentialTTL)

	policy := minio.NewPostPolicy()
	if err := policy.SetBucket(s.bucket); err != nil {
		return nil, err
	}
	if err := policy.SetKeyStartsWith(prefix); err != nil {
		return nil, err
	}
	if err := policy.SetExpires(expiresAt.UTC()); err != nil {
		return nil, err
	}
	if s.maxSize > 0 {
		if err := policy.SetContentLengthRange(1, s.maxSize); err != nil {
			return nil, err
		}
	}

	u, fields, err := s.presigner.PresignedPostPolicy(ctx, policy)
	if err != nil {
		return nil, fmt.Errorf("presign post policy: %w", err)
	}
	return &Credential{
		Provider:  consts.ProviderMinIO,
		URL:       u.String(),
		Fields:    fields,
		Bucket:    s.bucket,
		Prefix:    prefix,
		ExpiresAt: expiresAt,
	}, nil
}

func (s *MinioBackend) Locate(_ context.Context, locator string) (string, error) {
	if locator == "" {
		return "", ErrInvalidLocator
	}
	return fmt.Sprintf("%s/%s/%s", s.publicBase, s.bucket, locator), nil
}

func (s *MinioBackend) Exists(ctx context.Context, locator string) (bool, error) {
	_, err := s.objects.StatObject(ctx, s.bucket, locator, minio.StatObjectOptions{})
	if err != nil {
		if isMinioNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat %s: %w", locator, err)
	}
	return true, nil
}

func (s *MinioBackend) Delete(ctx context.Context, locator string) error {
	err := s.objects.RemoveObject(ctx, s.bucket, locator, minio.RemoveObjectOptions{})
	if err != nil && !isMinioNotFound(err) {
		return fmt.Errorf("remove %s: %w", locator, err)
	}
	return nil
}

func (s *MinioBackend) SignedURL(ctx context.Context, locator string, ttl time.Duration) (string, error) {
	u, err := s.presigner.PresignedGetObject(ctx, s.bucket, locator, ttl, nil)
	if err != nil {
		return "", fmt.Errorf("presign get %s: %w", locator, err)
	}
	return u.String(), nil
}

func (s *MinioBackend) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	objects := make([]ObjectInfo, 0)
	for obj := range s.objects.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		objects = append(objects, ObjectInfo{Path: obj.Key, Size: obj.Size, Updated: obj.LastModified})
	}
	return objects, nil
}

func isMinioNotFound(err error) bool {
	code := minio.ToErrorResponse(err).Code
	return code == "NoSuchKey" || code == "NotFound"
}
