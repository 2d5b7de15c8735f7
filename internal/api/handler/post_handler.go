package handler

import (
	"Mosaic/internal/api/dto"
	"Mosaic/internal/pkg/consts"
	"Mosaic/internal/pkg/response"
	"Mosaic/internal/pkg/util"
	"Mosaic/internal/service"

	"github.com/gin-gonic/gin"
)

type PostHandler struct {
	postSvc service.PostService
}

func NewPostHandler(postSvc service.PostService) *PostHandler {
	return &PostHandler{
		postSvc: postSvc,
	}
}

func (s *PostHandler) CreatePost(c *gin.Context) {
	var req dto.CreatePostDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, response.BadRequest, service.ErrParamInvalid.Error())
		return
	}
	if err := util.ValidateDTO(&req); err != nil {
		response.Fail(c, response.BadRequest, err.Error())
		return
	}

	post, err := s.postSvc.CreatePost(c.Request.Context(), c.GetUint64(consts.UserIDKey), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessCreated(c, dto.PostResponse{
		Mensaje: "Post creado exitosamente",
		Post:    post,
	})
}

// ListPosts 未指定 usuarioId 时查询自己的帖子
func (s *PostHandler) ListPosts(c *gin.Context) {
	accountID := c.GetUint64(consts.UserIDKey)
	if raw := c.Param("usuarioId"); raw != "" {
		id, ok := util.ParseID(raw)
		if !ok {
			response.Error(c, service.ErrParamInvalid)
			return
		}
		accountID = id
	}

	posts, err := s.postSvc.ListPosts(c.Request.Context(), accountID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.PostListResponse{Posts: posts})
}

func (s *PostHandler) GetPost(c *gin.Context) {
	postID, ok := util.ParseID(c.Param("id"))
	if !ok {
		response.Error(c, service.ErrPostNotFound)
		return
	}

	detail, err := s.postSvc.GetPost(c.Request.Context(), postID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, detail)
}

func (s *PostHandler) DeletePost(c *gin.Context) {
	postID, ok := util.ParseID(c.Param("id"))
	if !ok {
		response.Error(c, service.ErrPostNotFound)
		return
	}

	if err := s.postSvc.DeletePost(c.Request.Context(), c.GetUint64(consts.UserIDKey), postID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.MessageResponse{Mensaje: "Post eliminado exitosamente"})
}
