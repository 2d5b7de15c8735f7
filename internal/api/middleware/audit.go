package middleware

import (
	"Mosaic/internal/pkg/consts"
	"bytes"
	"io"
	log "log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const maxAuditBody = 16384

// 登录、注册请求体中的密码不落日志
var passwordField = regexp.MustCompile(`("password"\s*:\s*)"(?:[^"\\]|\\.)*"`)

// 响应中的会话令牌与预签名策略字段不落日志
var tokenField = regexp.MustCompile(`(?i)("(?:token|firebaseToken|policy|signature|x-amz-signature|x-amz-credential|x-amz-security-token|x-goog-signature)"\s*:\s*)"(?:[^"\\]|\\.)*"`)

const omittedBody = "[omitted]"

type responseBodyWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (r *responseBodyWriter) Write(b []byte) (int, error) {
	if r.body.Len() < maxAuditBody {
		r.body.Write(b)
	}
	return r.ResponseWriter.Write(b)
}

func (r *responseBodyWriter) Flush() {
	if flusher, ok := r.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func AuditMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		// multipart 上传只记录大小，不读取文件内容
		reqBody := ""
		if c.Request.Body != nil && !isMultipart(c.Request) {
			raw, _ := io.ReadAll(io.LimitReader(c.Request.Body, maxAuditBody+1))
			c.Request.Body = readCloser{io.MultiReader(bytes.NewReader(raw), c.Request.Body), c.Request.Body}
			reqBody = mask(string(raw))
		}

		rawQuery := c.Request.URL.RawQuery
		decodedQuery, err := url.QueryUnescape(rawQuery)
		if err != nil {
			decodedQuery = rawQuery
		}

		log.InfoContext(ctx, "Recv Request",
			log.String("method", c.Request.Method),
			log.String("path", c.Request.URL.Path),
			log.String("query", decodedQuery),
			log.Int64("content_length", c.Request.ContentLength),
			log.String("req_body", reqBody),
		)

		w := &responseBodyWriter{body: &bytes.Buffer{}, ResponseWriter: c.Writer}
		c.Writer = w
		startTime := time.Now()

		c.Next()

		// 签发存储凭证的响应整体不记录
		resBody := omittedBody
		if !c.GetBool(consts.AuditSkipResponseKey) {
			resBody = mask(w.body.String())
		}
		log.InfoContext(ctx, "Send Response",
			log.Int("status", c.Writer.Status()),
			log.Duration("latency", time.Since(startTime)),
			log.String("res_body", resBody),
		)
	}
}

type readCloser struct {
	io.Reader
	io.Closer
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/")
}

func mask(body string) string {
	body = passwordField.ReplaceAllString(body, `$1"***"`)
	return tokenField.ReplaceAllString(body, `$1"***"`)
}
