package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

var (
	ErrInvalidLocator    = errors.New("invalid storage locator")
	ErrInvalidObjectPath = errors.New("invalid object path")
	ErrNotConfigured     = errors.New("storage backend not configured")
)

// Backend 本地磁盘与云存储共享的能力：定位、存在性检查、删除
type Backend interface {
	Name() string
	// Locate 返回可供客户端读取的地址
	Locate(ctx context.Context, locator string) (string, error)
	Exists(ctx context.Context, locator string) (bool, error)
	// Delete 对象已不存在时视为成功
	Delete(ctx context.Context, locator string) error
}

// LocalStore 服务端中转上传使用的存储
type LocalStore interface {
	Backend
	NewLocator(accountID, postID uint64, ext string) string
	Save(ctx context.Context, locator string, r io.Reader) (int64, error)
}

// Delegating 可签发委托凭证、由客户端直传的云存储
type Delegating interface {
	Backend
	IssueCredential(ctx context.Context, accountID uint64) (*Credential, error)
	SignedURL(ctx context.Context, locator string, ttl time.Duration) (string, error)
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
}

// Credential 委托给客户端的短期存储凭证
type Credential struct {
	Provider  string            `json:"provider"`
	Token     string            `json:"token,omitempty"`
	URL       string            `json:"url,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
	Bucket    string            `json:"bucket,omitempty"`
	Prefix    string            `json:"prefix"`
	ExpiresAt time.Time         `json:"expires_at"`
}

// ObjectInfo 云存储中的对象
type ObjectInfo struct {
	Path    string
	Size    int64
	Updated time.Time
}

// Backends 按媒体的 provider path 选择后端
type Backends struct {
	Local  LocalStore
	Remote Delegating
}

// For providerPath 非空时走云存储，否则走本地
func (b Backends) For(providerPath *string) Backend {
	if providerPath != nil && *providerPath != "" {
		if b.Remote == nil {
			return nil
		}
		return b.Remote
	}
	if b.Local == nil {
		return nil
	}
	return b.Local
}

// LocatorOf 返回媒体在所选后端中的定位符
func LocatorOf(url string, providerPath *string) string {
	if providerPath != nil && *providerPath != "" {
		return *providerPath
	}
	return url
}
