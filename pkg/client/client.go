package client

import (
	"Mosaic/internal/pkg/logger"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

const defaultTimeout = 30 * time.Second

// ErrNoUploader 凭证对应的提供方没有注册上传器
var ErrNoUploader = errors.New("no uploader registered for storage provider")

// APIError 后端返回的错误 {"error": "..."}
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// StatusOf 返回 APIError 的状态码，其他错误返回 0
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// Client Mosaic 后端 API 客户端
type Client struct {
	http      *resty.Client
	uploaders map[string]ObjectUploader
	now       func() time.Time
}

type Option func(*Client)

// WithTransport 替换底层 RoundTripper，外层仍记录调用日志
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.http.SetTransport(&logger.HTTPTransport{Transport: rt})
	}
}

// WithUploader 为某个存储提供方注册直传上传器
func WithUploader(provider string, uploader ObjectUploader) Option {
	return func(c *Client) {
		c.uploaders[provider] = uploader
	}
}

func New(baseURL string, opts ...Option) *Client {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(defaultTimeout).
		SetTransport(&logger.HTTPTransport{}).
		SetJSONMarshaler(json.Marshal).
		SetJSONUnmarshaler(json.Unmarshal).
		SetHeader("Accept", "application/json")

	c := &Client{
		http:      httpClient,
		uploaders: map[string]ObjectUploader{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) request(ctx context.Context, s *Session) *resty.Request {
	req := c.http.R().SetContext(ctx).SetError(&errorResponse{})
	if s != nil {
		req.SetAuthToken(s.Token)
	}
	return req
}

func (c *Client) Register(ctx context.Context, username, email, password string) (*Session, error) {
	var out authResponse
	resp, err := c.request(ctx, nil).
		SetBody(map[string]string{"username": username, "email": email, "password": password}).
		SetResult(&out).
		Post("/api/auth/registro")
	if err = check(resp, err, "register"); err != nil {
		return nil, err
	}
	return newSession(out.Token, out.Usuario), nil
}

func (c *Client) Login(ctx context.Context, username, password string) (*Session, error) {
	var out authResponse
	resp, err := c.request(ctx, nil).
		SetBody(map[string]string{"username": username, "password": password}).
		SetResult(&out).
		Post("/api/auth/login")
	if err = check(resp, err, "login"); err != nil {
		return nil, err
	}
	return newSession(out.Token, out.Usuario), nil
}

func (c *Client) Logout(ctx context.Context, s *Session) error {
	resp, err := c.request(ctx, s).Post("/api/auth/logout")
	if err = check(resp, err, "logout"); err != nil {
		return err
	}
	s.ForgetCredential()
	return nil
}

func (c *Client) Me(ctx context.Context, s *Session) (*Account, error) {
	var out accountResponse
	resp, err := c.request(ctx, s).SetResult(&out).Get("/api/auth/me")
	if err = check(resp, err, "get account"); err != nil {
		return nil, err
	}
	return out.Usuario, nil
}

func (c *Client) CreatePost(ctx context.Context, s *Session, title, body string) (*Post, error) {
	var out postResponse
	resp, err := c.request(ctx, s).
		SetBody(map[string]string{"titulo": title, "descripcion": body}).
		SetResult(&out).
		Post("/api/posts")
	if err = check(resp, err, "create post"); err != nil {
		return nil, err
	}
	return out.Post, nil
}

// ListPosts accountID 为 0 时查询当前账号
func (c *Client) ListPosts(ctx context.Context, s *Session, accountID uint64) ([]*Post, error) {
	path := "/api/posts/usuario"
	if accountID != 0 {
		path += "/" + strconv.FormatUint(accountID, 10)
	}
	var out postListResponse
	resp, err := c.request(ctx, s).SetResult(&out).Get(path)
	if err = check(resp, err, "list posts"); err != nil {
		return nil, err
	}
	return out.Posts, nil
}

func (c *Client) GetPost(ctx context.Context, s *Session, postID uint64) (*PostDetail, error) {
	var out PostDetail
	resp, err := c.request(ctx, s).
		SetPathParam("id", strconv.FormatUint(postID, 10)).
		SetResult(&out).
		Get("/api/posts/{id}")
	if err = check(resp, err, "get post"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeletePost(ctx context.Context, s *Session, postID uint64) error {
	resp, err := c.request(ctx, s).
		SetPathParam("id", strconv.FormatUint(postID, 10)).
		Delete("/api/posts/{id}")
	return check(resp, err, "delete post")
}

// UploadToServer 服务端中转上传
func (c *Client) UploadToServer(ctx context.Context, s *Session, postID uint64, filename, contentType string, r io.Reader) (*Media, error) {
	var out mediaResponse
	resp, err := c.request(ctx, s).
		SetMultipartFormData(map[string]string{"postId": strconv.FormatUint(postID, 10)}).
		SetMultipartField("archivo", filename, contentType, r).
		SetResult(&out).
		Post("/api/contenido/subir")
	if err = check(resp, err, "upload media"); err != nil {
		return nil, err
	}
	return out.Contenido, nil
}

func (c *Client) DeleteMedia(ctx context.Context, s *Session, mediaID uint64) error {
	resp, err := c.request(ctx, s).
		SetPathParam("id", strconv.FormatUint(mediaID, 10)).
		Delete("/api/contenido/{id}")
	return check(resp, err, "delete media")
}

func (c *Client) MediaURL(ctx context.Context, s *Session, mediaID uint64) (string, error) {
	var out mediaURLResponse
	resp, err := c.request(ctx, s).
		SetPathParam("id", strconv.FormatUint(mediaID, 10)).
		SetResult(&out).
		Get("/api/contenido/{id}/url")
	if err = check(resp, err, "get media url"); err != nil {
		return "", err
	}
	return out.URL, nil
}

func (c *Client) StorageStats(ctx context.Context, s *Session) (*StorageStats, error) {
	var out statsResponse
	resp, err := c.request(ctx, s).SetResult(&out).Get("/api/contenido/estadisticas")
	if err = check(resp, err, "get storage stats"); err != nil {
		return nil, err
	}
	return out.Estadisticas, nil
}

// StorageCredential 优先使用会话中缓存的凭证
func (c *Client) StorageCredential(ctx context.Context, s *Session) (*Credential, error) {
	now := c.now()
	if cred := s.cachedCredential(now); cred != nil {
		return cred, nil
	}

	var out credentialResponse
	resp, err := c.request(ctx, s).SetResult(&out).Get("/api/auth/firebase-token")
	if err = check(resp, err, "issue storage credential"); err != nil {
		return nil, err
	}
	cred := out.Credential
	if cred == nil {
		cred = &Credential{Token: out.FirebaseToken}
	}
	s.storeCredential(cred, now)
	return cred, nil
}

func check(resp *resty.Response, err error, op string) error {
	if err != nil {
		return errors.Wrap(err, op)
	}
	if resp.IsError() {
		msg := resp.Status()
		if body, ok := resp.Error().(*errorResponse); ok && body.Error != "" {
			msg = body.Error
		}
		return errors.WithMessage(&APIError{Status: resp.StatusCode(), Message: msg}, op)
	}
	return nil
}
