package handler

import (
	"Mosaic/internal/api/dto"
	"Mosaic/internal/pkg/consts"
	"Mosaic/internal/pkg/response"
	"Mosaic/internal/pkg/util"
	"Mosaic/internal/service"

	"github.com/gin-gonic/gin"
)

type AccountHandler struct {
	accountSvc service.AccountService
}

func NewAccountHandler(accountSvc service.AccountService) *AccountHandler {
	return &AccountHandler{
		accountSvc: accountSvc,
	}
}

func (s *AccountHandler) Register(c *gin.Context) {
	var req dto.RegisterDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, response.BadRequest, service.ErrParamInvalid.Error())
		return
	}
	if err := util.ValidateDTO(&req); err != nil {
		response.Fail(c, response.BadRequest, err.Error())
		return
	}

	token, account, err := s.accountSvc.Register(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessCreated(c, dto.AuthResponse{
		Mensaje: "Usuario registrado exitosamente",
		Token:   token,
		Usuario: account,
	})
}

func (s *AccountHandler) Login(c *gin.Context) {
	var req dto.LoginDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, response.BadRequest, service.ErrParamInvalid.Error())
		return
	}

	token, account, err := s.accountSvc.Login(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.AuthResponse{
		Mensaje: "Login exitoso",
		Token:   token,
		Usuario: account,
	})
}

func (s *AccountHandler) Logout(c *gin.Context) {
	if err := s.accountSvc.Logout(c.Request.Context(), c.GetString(consts.TokenKey)); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.MessageResponse{Mensaje: "Sesión cerrada"})
}

func (s *AccountHandler) Me(c *gin.Context) {
	account, err := s.accountSvc.GetAccount(c.Request.Context(), c.GetUint64(consts.UserIDKey))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.AccountResponse{Usuario: account})
}

func (s *AccountHandler) UpdateAvatar(c *gin.Context) {
	var req dto.AvatarDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, response.BadRequest, service.ErrParamInvalid.Error())
		return
	}
	if err := util.ValidateDTO(&req); err != nil {
		response.Fail(c, response.BadRequest, err.Error())
		return
	}

	account, err := s.accountSvc.UpdateAvatar(c.Request.Context(), c.GetUint64(consts.UserIDKey), req.AvatarURL)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.AccountResponse{Usuario: account})
}

// StorageCredential 签发客户端直传所需的短期凭证
func (s *AccountHandler) StorageCredential(c *gin.Context) {
	c.Set(consts.AuditSkipResponseKey, true)
	cred, err := s.accountSvc.IssueStorageCredential(c.Request.Context(), c.GetUint64(consts.UserIDKey))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.StorageCredentialResponse{
		Mensaje:       "Token de Firebase generado exitosamente",
		FirebaseToken: cred.Token,
		Credential:    cred,
	})
}
