package service

import (
	"errors"
	"net/http"
)

var (
	ErrParamInvalid              = errors.New("parámetros inválidos")
	ErrAccountExist              = errors.New("el usuario o email ya existe")
	ErrInvalidCredentials        = errors.New("credenciales inválidas")
	ErrAccountNotFound           = errors.New("usuario no encontrado")
	ErrSessionInvalid            = errors.New("token inválido o expirado")
	ErrPostNotFound              = errors.New("post no encontrado")
	ErrPostForbidden             = errors.New("no tienes permiso para modificar este post")
	ErrPostBusy                  = errors.New("el post está ocupado, intenta de nuevo")
	ErrMediaNotFound             = errors.New("contenido no encontrado")
	ErrMediaForbidden            = errors.New("no tienes permiso para eliminar este contenido")
	ErrFileMissing               = errors.New("no se subió ningún archivo")
	ErrFileNotSupported          = errors.New("solo se permiten imágenes y videos")
	ErrFileTooLarge              = errors.New("el archivo supera el tamaño máximo permitido")
	ErrMediaKindInvalid          = errors.New("tipo de contenido inválido")
	ErrObjectPathInvalid         = errors.New("la ruta del archivo no corresponde al usuario y post")
	ErrObjectNotFound            = errors.New("el archivo no existe en el almacenamiento")
	ErrStorageDelegationDisabled = errors.New("almacenamiento remoto no configurado")
	ErrUpstreamFailure           = errors.New("error del proveedor de almacenamiento")
	UnExpectedError              = errors.New("error interno, intenta más tarde")
)

var ErrorMap = map[error]int{
	ErrParamInvalid:              http.StatusBadRequest,
	ErrAccountExist:              http.StatusBadRequest,
	ErrInvalidCredentials:        http.StatusBadRequest,
	ErrAccountNotFound:           http.StatusNotFound,
	ErrSessionInvalid:            http.StatusUnauthorized,
	ErrPostNotFound:              http.StatusNotFound,
	ErrPostForbidden:             http.StatusForbidden,
	ErrPostBusy:                  http.StatusConflict,
	ErrMediaNotFound:             http.StatusNotFound,
	ErrMediaForbidden:            http.StatusForbidden,
	ErrFileMissing:               http.StatusBadRequest,
	ErrFileNotSupported:          http.StatusBadRequest,
	ErrFileTooLarge:              http.StatusBadRequest,
	ErrMediaKindInvalid:          http.StatusBadRequest,
	ErrObjectPathInvalid:         http.StatusBadRequest,
	ErrObjectNotFound:            http.StatusBadRequest,
	ErrStorageDelegationDisabled: http.StatusInternalServerError,
	ErrUpstreamFailure:           http.StatusInternalServerError,
	UnExpectedError:              http.StatusInternalServerError,
}
