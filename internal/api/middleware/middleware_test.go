package middleware

import (
	"Mosaic/internal/pkg/consts"
	"Mosaic/internal/pkg/logger"
	"Mosaic/internal/pkg/redis"
	"Mosaic/internal/pkg/security"
	"bytes"
	"io"
	log "log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
)

func init() {
	gin.SetMode(gin.TestMode)
	security.Init("middleware-test-secret", time.Hour)
}

func newAuthRouter() *gin.Engine {
	r := gin.New()
	r.GET("/me", AuthMiddleware(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"id":       c.GetUint64(consts.UserIDKey),
			"username": c.GetString(consts.UsernameKey),
		})
	})
	return r
}

func doGet(r http.Handler, path, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	r := newAuthRouter()
	token, err := security.GenerateToken(42, "ana")
	if err != nil {
		t.Fatalf("token: %v", err)
	}

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer not-a-jwt", http.StatusUnauthorized},
		{"valid token", "Bearer " + token, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doGet(r, "/me", tc.header)
			if w.Code != tc.status {
				t.Fatalf("expected %d, got %d: %s", tc.status, w.Code, w.Body.String())
			}
		})
	}

	w := doGet(r, "/me", "Bearer "+token)
	if !strings.Contains(w.Body.String(), `"id":42`) || !strings.Contains(w.Body.String(), `"username":"ana"`) {
		t.Fatalf("identity not injected: %s", w.Body.String())
	}
}

func TestAuthMiddlewareRejectsRevokedToken(t *testing.T) {
	mr := miniredis.RunT(t)
	redis.Rdb = goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = redis.Rdb.Close()
		redis.Rdb = nil
	})

	r := newAuthRouter()
	token, _ := security.GenerateToken(7, "bea")
	signature, _ := security.ExtractSignature(token)
	if err := mr.Set(consts.RevokedTokenKey+signature, "1"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if w := doGet(r, "/me", "Bearer "+token); w.Code != http.StatusUnauthorized {
		t.Fatalf("revoked token accepted: %d", w.Code)
	}

	other, _ := security.GenerateToken(8, "cai")
	if w := doGet(r, "/me", "Bearer "+other); w.Code != http.StatusOK {
		t.Fatalf("unrevoked token rejected: %d", w.Code)
	}
}

func TestTraceMiddlewarePropagatesID(t *testing.T) {
	r := gin.New()
	r.Use(TraceMiddleware())
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "%v", c.Request.Context().Value(logger.TraceIDKey))
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(traceHeader, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Header().Get(traceHeader) != "abc-123" || w.Body.String() != "abc-123" {
		t.Fatalf("trace id not propagated: header=%q body=%q", w.Header().Get(traceHeader), w.Body.String())
	}

	w = doGet(r, "/ping", "")
	if w.Header().Get(traceHeader) == "" {
		t.Fatal("trace id not generated")
	}
}

func TestCORSPreflight(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "http://app.local")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "http://app.local" {
		t.Fatal("origin not echoed")
	}
}

func TestAuditKeepsRequestBodyReadable(t *testing.T) {
	r := gin.New()
	r.Use(AuditMiddleware())
	r.POST("/echo", func(c *gin.Context) {
		body, _ := io.ReadAll(c.Request.Body)
		c.String(http.StatusOK, string(body))
	})

	payload := `{"username":"ana","password":"secret"}`
	req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Body.String() != payload {
		t.Fatalf("handler saw %q", w.Body.String())
	}
}

func TestMaskHidesSecrets(t *testing.T) {
	got := mask(`{"username":"ana","password":"s3cr\"et","token":"eyJ.x.y"}`)
	if strings.Contains(got, "s3cr") || strings.Contains(got, "eyJ") {
		t.Fatalf("secrets leaked: %s", got)
	}
	if !strings.Contains(got, `"username":"ana"`) {
		t.Fatalf("non-secret field altered: %s", got)
	}

	got = mask(`{"credential":{"provider":"minio","fields":{"key":"posts/7/","policy":"UE9MSUNZ","x-amz-signature":"abc123","X-Amz-Credential":"AKIA/20261018"}}}`)
	for _, secret := range []string{"UE9MSUNZ", "abc123", "AKIA"} {
		if strings.Contains(got, secret) {
			t.Fatalf("policy field %q leaked: %s", secret, got)
		}
	}
	if !strings.Contains(got, `"key":"posts/7/"`) {
		t.Fatalf("non-secret field altered: %s", got)
	}
}

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Default()
	log.SetDefault(log.New(log.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { log.SetDefault(prev) })
	return &buf
}

func TestAuditOmitsCredentialResponse(t *testing.T) {
	logs := captureLogs(t)
	r := gin.New()
	r.Use(AuditMiddleware())
	r.GET("/firebase-token", func(c *gin.Context) {
		c.Set(consts.AuditSkipResponseKey, true)
		c.JSON(http.StatusOK, gin.H{"credential": gin.H{"fields": gin.H{"policy": "SECRETPOLICY", "x-amz-signature": "SECRETSIG"}}})
	})
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"mensaje": "pong"})
	})

	w := doGet(r, "/firebase-token", "")
	if !strings.Contains(w.Body.String(), "SECRETSIG") {
		t.Fatalf("client must still receive the credential: %s", w.Body.String())
	}
	if strings.Contains(logs.String(), "SECRETSIG") || strings.Contains(logs.String(), "SECRETPOLICY") {
		t.Fatalf("credential written to audit log: %s", logs.String())
	}
	if !strings.Contains(logs.String(), omittedBody) {
		t.Fatalf("expected omitted marker in %s", logs.String())
	}

	logs.Reset()
	doGet(r, "/ping", "")
	if !strings.Contains(logs.String(), "pong") {
		t.Fatalf("regular responses should stay audited: %s", logs.String())
	}
}
