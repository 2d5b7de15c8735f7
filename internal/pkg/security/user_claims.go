package security

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	Issuer                   = "Mosaic"
	DefaultJWTExpirationTime = time.Hour * 24
)

var (
	jwtSecret         []byte
	jwtExpirationTime = DefaultJWTExpirationTime
)

// Init 设置签名密钥与会话有效期，进程启动时调用一次
func Init(secret string, expiration time.Duration) {
	jwtSecret = []byte(secret)
	if expiration > 0 {
		jwtExpirationTime = expiration
	} else {
		jwtExpirationTime = DefaultJWTExpirationTime
	}
}

// UserClaims 定义了我们 Token 中需要包含的业务信息
type UserClaims struct {
	UserID   uint64 `json:"id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}
