package handler

import (
	"Mosaic/internal/api/dto"
	"Mosaic/internal/pkg/consts"
	"Mosaic/internal/pkg/response"
	"Mosaic/internal/pkg/util"
	"Mosaic/internal/service"
	"errors"
	log "log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// multipartOverhead 表单边界与 postId 等字段的余量
const multipartOverhead = 1 << 20

type MediaHandler struct {
	mediaSvc      service.MediaService
	maxUploadSize int64
}

// NewMediaHandler maxUploadSize 为 0 时不在读取阶段限制请求体
func NewMediaHandler(mediaSvc service.MediaService, maxUploadSize int64) *MediaHandler {
	return &MediaHandler{
		mediaSvc:      mediaSvc,
		maxUploadSize: maxUploadSize,
	}
}

// Upload 服务端中转上传，表单字段 archivo + postId
func (s *MediaHandler) Upload(c *gin.Context) {
	if s.maxUploadSize > 0 {
		limit := s.maxUploadSize + multipartOverhead
		if c.Request.ContentLength > limit {
			response.Error(c, service.ErrFileTooLarge)
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
	}

	file, err := c.FormFile("archivo")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, service.ErrFileTooLarge)
			return
		}
		response.Error(c, service.ErrFileMissing)
		return
	}
	postID, ok := util.ParseID(c.PostForm("postId"))
	if !ok {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	reader, err := file.Open()
	if err != nil {
		log.ErrorContext(c.Request.Context(), "open multipart file failed", "err", err)
		response.Error(c, service.ErrFileMissing)
		return
	}
	defer func() { _ = reader.Close() }()

	item, err := s.mediaSvc.UploadLocal(c.Request.Context(), c.GetUint64(consts.UserIDKey), &dto.LocalUpload{
		PostID:      postID,
		FileName:    file.Filename,
		ContentType: file.Header.Get("Content-Type"),
		Size:        file.Size,
	}, reader)
	if err != nil {
		response.Error(c, err)
		return
	}

	log.InfoContext(c.Request.Context(), "media uploaded", "media_id", item.ID, "post_id", postID, "size", item.Size)
	response.SuccessCreated(c, dto.MediaResponse{
		Mensaje:   "Contenido subido exitosamente",
		Contenido: item,
	})
}

// RegisterRemote 客户端直传完成后登记
func (s *MediaHandler) RegisterRemote(c *gin.Context) {
	var req dto.RegisterRemoteMediaDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, response.BadRequest, service.ErrParamInvalid.Error())
		return
	}
	if err := util.ValidateDTO(&req); err != nil {
		response.Fail(c, response.BadRequest, err.Error())
		return
	}

	item, err := s.mediaSvc.RegisterRemote(c.Request.Context(), c.GetUint64(consts.UserIDKey), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessCreated(c, dto.MediaResponse{
		Mensaje:   "Contenido guardado exitosamente desde Firebase",
		Contenido: item,
	})
}

func (s *MediaHandler) Delete(c *gin.Context) {
	mediaID, ok := util.ParseID(c.Param("id"))
	if !ok {
		response.Error(c, service.ErrMediaNotFound)
		return
	}

	if err := s.mediaSvc.DeleteMedia(c.Request.Context(), c.GetUint64(consts.UserIDKey), mediaID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.MessageResponse{Mensaje: "Contenido eliminado exitosamente"})
}

func (s *MediaHandler) URL(c *gin.Context) {
	mediaID, ok := util.ParseID(c.Param("id"))
	if !ok {
		response.Error(c, service.ErrMediaNotFound)
		return
	}

	url, err := s.mediaSvc.GetMediaURL(c.Request.Context(), mediaID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.MediaURLResponse{URL: url})
}

func (s *MediaHandler) Stats(c *gin.Context) {
	stats, err := s.mediaSvc.GetStorageStats(c.Request.Context(), c.GetUint64(consts.UserIDKey))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.StorageStatsResponse{Estadisticas: stats})
}
