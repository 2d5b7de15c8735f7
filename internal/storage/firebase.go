package storage

import (
	"Mosaic/internal/pkg/consts"
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

// TokenMinter 由 firebase auth.Client 实现
type TokenMinter interface {
	CustomTokenWithClaims(ctx context.Context, uid string, devClaims map[string]interface{}) (string, error)
}

// ObjectStore 云存储桶的最小操作集合
type ObjectStore interface {
	Stat(ctx context.Context, name string) (*ObjectInfo, error)
	Remove(ctx context.Context, name string) error
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
	Sign(name string, ttl time.Duration) (string, error)
	PublicURL(name string) string
}

// FirebaseBackend 使用 Firebase 自定义令牌委托客户端直传到 Cloud Storage
type FirebaseBackend struct {
	minter        TokenMinter
	objects       ObjectStore
	bucket        string
	credentialTTL time.Duration
}

func NewFirebaseBackend(minter TokenMinter, objects ObjectStore, bucket string, credentialTTL time.Duration) *FirebaseBackend {
	return &FirebaseBackend{
		minter:        minter,
		objects:       objects,
		bucket:        bucket,
		credentialTTL: credentialTTL,
	}
}

func (s *FirebaseBackend) Name() string {
	return consts.ProviderFirebase
}

// IssueCredential uid 为账号 id，附带 user_id 声明供存储安全规则校验
func (s *FirebaseBackend) IssueCredential(ctx context.Context, accountID uint64) (*Credential, error) {
	uid := strconv.FormatUint(accountID, 10)
	token, err := s.minter.CustomTokenWithClaims(ctx, uid, map[string]interface{}{
		consts.UserIDKey: accountID,
	})
	if err != nil {
		return nil, fmt.Errorf("mint firebase custom token: %w", err)
	}
	return &Credential{
		Provider:  consts.ProviderFirebase,
		Token:     token,
		Bucket:    s.bucket,
		Prefix:    UserPrefix(accountID),
		ExpiresAt: time.Now().Add(s.credentialTTL),
	}, nil
}

func (s *FirebaseBackend) Locate(_ context.Context, locator string) (string, error) {
	if locator == "" {
		return "", ErrInvalidLocator
	}
	return s.objects.PublicURL(locator), nil
}

func (s *FirebaseBackend) Exists(ctx context.Context, locator string) (bool, error) {
	info, err := s.objects.Stat(ctx, locator)
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", locator, err)
	}
	return info != nil, nil
}

func (s *FirebaseBackend) Delete(ctx context.Context, locator string) error {
	if err := s.objects.Remove(ctx, locator); err != nil {
		return fmt.Errorf("remove %s: %w", locator, err)
	}
	return nil
}

func (s *FirebaseBackend) SignedURL(_ context.Context, locator string, ttl time.Duration) (string, error) {
	return s.objects.Sign(locator, ttl)
}

func (s *FirebaseBackend) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	return s.objects.List(ctx, prefix)
}

// GCSObjects 基于 cloud.google.com/go/storage 的 ObjectStore
type GCSObjects struct {
	bucket     *gcs.BucketHandle
	bucketName string
	signer     *gcs.SignedURLOptions
}

// NewGCSObjects signerEmail 与 signerKeyFile 为空时使用客户端自身凭证签名
func NewGCSObjects(client *gcs.Client, bucketName, signerEmail, signerKeyFile string) (*GCSObjects, error) {
	objects := &GCSObjects{
		bucket:     client.Bucket(bucketName),
		bucketName: bucketName,
		signer: &gcs.SignedURLOptions{
			Scheme: gcs.SigningSchemeV4,
			Method: "GET",
		},
	}
	if signerEmail != "" {
		objects.signer.GoogleAccessID = signerEmail
	}
	if signerKeyFile != "" {
		key, err := os.ReadFile(signerKeyFile)
		if err != nil {
			return nil, fmt.Errorf("read signer key: %w", err)
		}
		objects.signer.PrivateKey = key
	}
	return objects, nil
}

func (s *GCSObjects) Stat(ctx context.Context, name string) (*ObjectInfo, error) {
	attrs, err := s.bucket.Object(name).Attrs(ctx)
	if err != nil {
		if errors.Is(err, gcs.ErrObjectNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return &ObjectInfo{Path: attrs.Name, Size: attrs.Size, Updated: attrs.Updated}, nil
}

func (s *GCSObjects) Remove(ctx context.Context, name string) error {
	err := s.bucket.Object(name).Delete(ctx)
	if err != nil && !errors.Is(err, gcs.ErrObjectNotExist) {
		return err
	}
	return nil
}

func (s *GCSObjects) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	it := s.bucket.Objects(ctx, &gcs.Query{Prefix: prefix})
	objects := make([]ObjectInfo, 0)
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		objects = append(objects, ObjectInfo{Path: attrs.Name, Size: attrs.Size, Updated: attrs.Updated})
	}
	return objects, nil
}

func (s *GCSObjects) Sign(name string, ttl time.Duration) (string, error) {
	opts := *s.signer
	opts.Expires = time.Now().Add(ttl)
	signed, err := s.bucket.SignedURL(name, &opts)
	if err != nil {
		return "", fmt.Errorf("sign %s: %w", name, err)
	}
	return signed, nil
}

// PublicURL Firebase Storage 的下载地址，读权限由安全规则决定
func (s *GCSObjects) PublicURL(name string) string {
	return fmt.Sprintf("https://firebasestorage.googleapis.com/v0/b/%s/o/%s?alt=media",
		s.bucketName, url.PathEscape(strings.TrimLeft(name, "/")))
}
