package middleware

import (
	"Mosaic/internal/pkg/consts"
	"Mosaic/internal/pkg/redis"
	"Mosaic/internal/pkg/response"
	"Mosaic/internal/pkg/security"
	"Mosaic/internal/service"
	"context"
	"strings"

	"github.com/gin-gonic/gin"
)

const bearerPrefix = "Bearer "

// AuthMiddleware 负责验证 JWT 并将账号身份信息注入 Context
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, bearerPrefix) {
			response.Fail(c, response.Unauthorized, "token no proporcionado")
			c.Abort()
			return
		}

		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, bearerPrefix))

		signature, err := security.ExtractSignature(tokenString)
		if err != nil {
			response.Fail(c, response.Unauthorized, service.ErrSessionInvalid.Error())
			c.Abort()
			return
		}

		value, err := redis.GetValue(c.Request.Context(), consts.RevokedTokenKey+signature)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		if value != "" {
			response.Fail(c, response.Unauthorized, service.ErrSessionInvalid.Error())
			c.Abort()
			return
		}

		claims, err := security.ValidateToken(tokenString)
		if err != nil {
			response.Fail(c, response.Unauthorized, service.ErrSessionInvalid.Error())
			c.Abort()
			return
		}

		c.Set(consts.UserIDKey, claims.UserID)
		c.Set(consts.UsernameKey, claims.Username)
		c.Set(consts.TokenKey, tokenString)

		newCtx := context.WithValue(c.Request.Context(), consts.UserIDKey, claims.UserID)
		c.Request = c.Request.WithContext(newCtx)

		c.Next()
	}
}
