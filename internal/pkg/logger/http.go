package logger

import (
	"bytes"
	"io"
	log "log/slog"
	"net/http"
	"strings"
	"time"
)

// HTTPTransport 记录出站 HTTP 调用 (存储提供方、后端 API)
// LogBodies 打开时记录 JSON 请求/响应体，二进制上传从不落日志
type HTTPTransport struct {
	Transport http.RoundTripper
	LogBodies bool
}

const httpBodyLogLimit = 1000

func (t *HTTPTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	next := t.Transport
	if next == nil {
		next = http.DefaultTransport
	}
	start := time.Now()

	var reqBody []byte
	if t.LogBodies && req.Body != nil && isJSON(req.Header.Get("Content-Type")) {
		reqBody, _ = io.ReadAll(req.Body)
		req.Body = io.NopCloser(bytes.NewBuffer(reqBody))
	}

	resp, err := next.RoundTrip(req)
	elapsed := time.Since(start)

	fields := []any{
		log.String("method", req.Method),
		log.String("host", req.URL.Host),
		log.String("path", req.URL.Path),
		log.Duration("latency", elapsed),
	}
	if len(reqBody) > 0 {
		fields = append(fields, log.String("req_body", truncate(string(reqBody))))
	}

	if err != nil {
		log.ErrorContext(req.Context(), "HTTP_CALL_ERROR", append(fields, log.Any("err", err))...)
		return nil, err
	}

	fields = append(fields, log.Int("status", resp.StatusCode))
	if t.LogBodies && resp.Body != nil && isJSON(resp.Header.Get("Content-Type")) {
		resBody, _ := io.ReadAll(resp.Body)
		resp.Body = io.NopCloser(bytes.NewBuffer(resBody))
		fields = append(fields, log.String("res_body", truncate(string(resBody))))
	}

	switch {
	case resp.StatusCode >= 500:
		log.ErrorContext(req.Context(), "HTTP_CALL", fields...)
	case elapsed > 500*time.Millisecond:
		log.WarnContext(req.Context(), "HTTP_CALL_SLOW", fields...)
	default:
		log.InfoContext(req.Context(), "HTTP_CALL", fields...)
	}

	return resp, nil
}

func isJSON(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), "json")
}

func truncate(s string) string {
	if len(s) > httpBodyLogLimit {
		return s[:httpBodyLogLimit] + "...[truncated]"
	}
	return s
}
