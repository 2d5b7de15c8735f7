package client

import (
	"Mosaic/internal/storage"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

const (
	DefaultIdentityToolkitURL = "https://identitytoolkit.googleapis.com"
	DefaultFirebaseStorageURL = "https://firebasestorage.googleapis.com"
)

// ObjectUploader 使用委托凭证把文件直接上传到存储提供方，返回可长期使用的下载地址
type ObjectUploader interface {
	Upload(ctx context.Context, cred *Credential, objectPath, contentType string, r io.Reader) (string, error)
}

// DirectUpload 直传所需的文件信息
type DirectUpload struct {
	PostID      uint64
	Kind        string
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// UploadDirect 完整的直传握手：取凭证、上传到提供方、回到后端登记
func (c *Client) UploadDirect(ctx context.Context, s *Session, in DirectUpload) (*Media, error) {
	if s.Account == nil {
		return nil, errors.New("session has no account")
	}
	cred, err := c.StorageCredential(ctx, s)
	if err != nil {
		return nil, err
	}
	uploader, ok := c.uploaders[cred.Provider]
	if !ok {
		return nil, errors.Wrapf(ErrNoUploader, "provider %q", cred.Provider)
	}

	objectPath := storage.ObjectPath(s.Account.ID, in.PostID, c.now().UnixMilli(), in.FileName)
	downloadURL, err := uploader.Upload(ctx, cred, objectPath, in.ContentType, in.Body)
	if err != nil {
		return nil, errors.Wrap(err, "upload to storage provider")
	}

	var out mediaResponse
	resp, err := c.request(ctx, s).
		SetBody(registerRemoteRequest{
			PostID:       in.PostID,
			Tipo:         in.Kind,
			URL:          downloadURL,
			FileName:     in.FileName,
			Tamano:       in.Size,
			ProviderPath: objectPath,
		}).
		SetResult(&out).
		Post("/api/contenido/firebase")
	if err = check(resp, err, "register media"); err != nil {
		return nil, err
	}
	return out.Contenido, nil
}

// FirebaseUploader 用自定义令牌换取 ID token，再通过 Firebase Storage REST 接口上传
type FirebaseUploader struct {
	http        *resty.Client
	apiKey      string
	identityURL string
	storageURL  string
}

func NewFirebaseUploader(apiKey string, opts ...FirebaseOption) *FirebaseUploader {
	u := &FirebaseUploader{
		http: resty.New().
			SetTimeout(5 * time.Minute).
			SetJSONMarshaler(json.Marshal).
			SetJSONUnmarshaler(json.Unmarshal),
		apiKey:      apiKey,
		identityURL: DefaultIdentityToolkitURL,
		storageURL:  DefaultFirebaseStorageURL,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

type FirebaseOption func(*FirebaseUploader)

// WithFirebaseEndpoints 指向模拟器或测试服务
func WithFirebaseEndpoints(identityURL, storageURL string) FirebaseOption {
	return func(u *FirebaseUploader) {
		u.identityURL = strings.TrimRight(identityURL, "/")
		u.storageURL = strings.TrimRight(storageURL, "/")
	}
}

type signInResponse struct {
	IDToken string `json:"idToken"`
}

type firebaseObject struct {
	Name           string `json:"name"`
	Bucket         string `json:"bucket"`
	DownloadTokens string `json:"downloadTokens"`
}

type googleError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (u *FirebaseUploader) Upload(ctx context.Context, cred *Credential, objectPath, contentType string, r io.Reader) (string, error) {
	if cred.Token == "" || cred.Bucket == "" {
		return "", errors.New("firebase credential requires token and bucket")
	}

	var session signInResponse
	resp, err := u.http.R().
		SetContext(ctx).
		SetQueryParam("key", u.apiKey).
		SetBody(map[string]any{"token": cred.Token, "returnSecureToken": true}).
		SetResult(&session).
		SetError(&googleError{}).
		Post(u.identityURL + "/v1/accounts:signInWithCustomToken")
	if err = checkProvider(resp, err, "sign in with custom token"); err != nil {
		return "", err
	}

	var object firebaseObject
	resp, err = u.http.R().
		SetContext(ctx).
		SetHeader("Authorization", "Firebase "+session.IDToken).
		SetHeader("Content-Type", contentType).
		SetQueryParam("name", objectPath).
		SetQueryParam("uploadType", "media").
		SetBody(r).
		SetResult(&object).
		SetError(&googleError{}).
		Post(fmt.Sprintf("%s/v0/b/%s/o", u.storageURL, url.PathEscape(cred.Bucket)))
	if err = checkProvider(resp, err, "upload object"); err != nil {
		return "", err
	}

	downloadURL := fmt.Sprintf("%s/v0/b/%s/o/%s?alt=media", u.storageURL, url.PathEscape(cred.Bucket), url.PathEscape(objectPath))
	if object.DownloadTokens != "" {
		token := strings.Split(object.DownloadTokens, ",")[0]
		downloadURL += "&token=" + url.QueryEscape(token)
	}
	return downloadURL, nil
}

// PolicyUploader 按预签名 POST 策略以表单方式上传 (MinIO / S3)
type PolicyUploader struct {
	http *resty.Client
}

func NewPolicyUploader() *PolicyUploader {
	return &PolicyUploader{http: resty.New().SetTimeout(5 * time.Minute)}
}

func (u *PolicyUploader) Upload(ctx context.Context, cred *Credential, objectPath, contentType string, r io.Reader) (string, error) {
	if cred.URL == "" {
		return "", errors.New("policy credential requires url")
	}

	fields := make(map[string]string, len(cred.Fields)+1)
	for k, v := range cred.Fields {
		fields[k] = v
	}
	fields["key"] = objectPath

	resp, err := u.http.R().
		SetContext(ctx).
		SetMultipartFormData(fields).
		SetMultipartField("file", objectPath[strings.LastIndex(objectPath, "/")+1:], contentType, r).
		Post(cred.URL)
	if err = checkProvider(resp, err, "post policy upload"); err != nil {
		return "", err
	}
	return strings.TrimRight(cred.URL, "/") + "/" + objectPath, nil
}

func checkProvider(resp *resty.Response, err error, op string) error {
	if err != nil {
		return errors.Wrap(err, op)
	}
	if resp.IsError() {
		msg := strings.TrimSpace(resp.String())
		if body, ok := resp.Error().(*googleError); ok && body.Error.Message != "" {
			msg = body.Error.Message
		}
		return errors.Errorf("%s: provider returned %d: %s", op, resp.StatusCode(), msg)
	}
	return nil
}
