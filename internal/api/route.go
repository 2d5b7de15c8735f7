package api

import (
	"Mosaic/internal/api/dto"
	"Mosaic/internal/api/middleware"
	"Mosaic/internal/pkg/logger"
	"Mosaic/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

func SetupRouter(group *HandlersGroup, opts RouterOptions) *gin.Engine {
	r := gin.New()
	_ = r.SetTrustedProxies([]string{"localhost"})
	if opts.MaxMultipartMemory > 0 {
		r.MaxMultipartMemory = opts.MaxMultipartMemory
	}

	// TraceId & Logger & CORS
	r.Use(middleware.TraceMiddleware())
	r.Use(middleware.AuditMiddleware())
	r.Use(middleware.CORSMiddleware())
	logger.SetupGin(r, opts.LogIndex)

	// 服务端中转上传的文件
	if opts.UploadsPrefix != "" && opts.UploadsRoot != "" {
		r.Static(opts.UploadsPrefix, opts.UploadsRoot)
	}

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/ping", func(c *gin.Context) {
			response.Success(c, dto.MessageResponse{Mensaje: "API de Mosaic funcionando correctamente"})
		})

		authGroup := apiGroup.Group("/auth")
		{
			authGroup.POST("/registro", group.AccountHandler.Register)
			authGroup.POST("/login", group.AccountHandler.Login)

			sessionGroup := authGroup.Group("")
			sessionGroup.Use(middleware.AuthMiddleware())
			{
				sessionGroup.POST("/logout", group.AccountHandler.Logout)
				sessionGroup.GET("/me", group.AccountHandler.Me)
				sessionGroup.PUT("/avatar", group.AccountHandler.UpdateAvatar)
				sessionGroup.GET("/firebase-token", group.AccountHandler.StorageCredential)
			}
		}

		postGroup := apiGroup.Group("/posts")
		postGroup.Use(middleware.AuthMiddleware())
		{
			postGroup.POST("", group.PostHandler.CreatePost)
			postGroup.GET("/usuario", group.PostHandler.ListPosts)
			postGroup.GET("/usuario/:usuarioId", group.PostHandler.ListPosts)
			postGroup.GET("/:id", group.PostHandler.GetPost)
			postGroup.DELETE("/:id", group.PostHandler.DeletePost)
		}

		mediaGroup := apiGroup.Group("/contenido")
		mediaGroup.Use(middleware.AuthMiddleware())
		{
			mediaGroup.POST("/subir", group.MediaHandler.Upload)
			mediaGroup.POST("/firebase", group.MediaHandler.RegisterRemote)
			mediaGroup.GET("/estadisticas", group.MediaHandler.Stats)
			mediaGroup.GET("/:id/url", group.MediaHandler.URL)
			mediaGroup.DELETE("/:id", group.MediaHandler.Delete)
		}
	}

	return r
}
