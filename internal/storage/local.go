package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// LocalBackend 将文件保存在服务器磁盘上，通过静态路由对外提供
type LocalBackend struct {
	root         string
	publicPrefix string
}

func NewLocalBackend(root, publicPrefix string) (*LocalBackend, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve upload root: %w", err)
	}
	if err = os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create upload root: %w", err)
	}
	prefix := "/" + strings.Trim(publicPrefix, "/")
	return &LocalBackend{root: abs, publicPrefix: prefix}, nil
}

func (s *LocalBackend) Name() string {
	return "local"
}

// Root 磁盘根目录，供静态路由挂载
func (s *LocalBackend) Root() string {
	return s.root
}

// PublicPrefix 对外暴露的路径前缀
func (s *LocalBackend) PublicPrefix() string {
	return s.publicPrefix
}

// NewLocator 生成 {prefix}/posts/{a}/{p}/{unixMillis}-{uuid}{ext}
func (s *LocalBackend) NewLocator(accountID, postID uint64, ext string) string {
	name := fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), uuid.NewString(), strings.ToLower(ext))
	return path.Join(s.publicPrefix, PostPrefix(accountID, postID), name)
}

func (s *LocalBackend) Save(_ context.Context, locator string, r io.Reader) (int64, error) {
	full, err := s.resolve(locator)
	if err != nil {
		return 0, err
	}
	if err = os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return 0, fmt.Errorf("create upload dir: %w", err)
	}

	f, err := os.OpenFile(full, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, fmt.Errorf("create upload file: %w", err)
	}
	n, err := io.Copy(f, r)
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(full)
		return 0, fmt.Errorf("write upload file: %w", err)
	}
	return n, nil
}

func (s *LocalBackend) Locate(_ context.Context, locator string) (string, error) {
	if _, err := s.resolve(locator); err != nil {
		return "", err
	}
	return locator, nil
}

func (s *LocalBackend) Exists(_ context.Context, locator string) (bool, error) {
	full, err := s.resolve(locator)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(full)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

func (s *LocalBackend) Delete(_ context.Context, locator string) error {
	full, err := s.resolve(locator)
	if err != nil {
		return err
	}
	if err = os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// resolve 把对外路径映射到根目录下的文件，拒绝越界
func (s *LocalBackend) resolve(locator string) (string, error) {
	clean := path.Clean("/" + strings.TrimLeft(locator, "/"))
	if clean != locator || !strings.HasPrefix(clean, s.publicPrefix+"/") {
		return "", fmt.Errorf("%w: %s", ErrInvalidLocator, locator)
	}
	rel := strings.TrimPrefix(clean, s.publicPrefix+"/")
	full := filepath.Join(s.root, filepath.FromSlash(rel))
	if !strings.HasPrefix(full, s.root+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrInvalidLocator, locator)
	}
	return full, nil
}
