package dto

import "time"

// RegisterRemoteMediaDTO 客户端直传完成后登记对象，tamano 为字节数
type RegisterRemoteMediaDTO struct {
	PostID       uint64 `json:"postId" binding:"required"`
	Tipo         string `json:"tipo" binding:"required"`
	URL          string `json:"url" binding:"required" validate:"max=1024"`
	FileName     string `json:"nombreArchivo" binding:"required" validate:"max=255"`
	Tamano       int64  `json:"tamano" binding:"required" validate:"min=1"`
	ProviderPath string `json:"firebase_path" binding:"required" validate:"max=512"`
}

// LocalUpload 服务端中转上传的文件
type LocalUpload struct {
	PostID      uint64
	FileName    string
	ContentType string
	Size        int64
}

type MediaDTO struct {
	ID           uint64    `json:"id"`
	PostID       uint64    `json:"post_id"`
	Kind         string    `json:"tipo"`
	URL          string    `json:"url"`
	SortOrder    int       `json:"orden"`
	FileName     string    `json:"nombre_archivo"`
	Size         int64     `json:"tamano"`
	ProviderPath *string   `json:"firebase_path"`
	Width        int       `json:"width,omitempty"`
	Height       int       `json:"height,omitempty"`
	CreatedAt    time.Time `json:"fecha_subida"`
}

type MediaResponse struct {
	Mensaje   string    `json:"mensaje,omitempty"`
	Contenido *MediaDTO `json:"contenido"`
}

type MediaURLResponse struct {
	URL string `json:"url"`
}

type StorageStatsDTO struct {
	TotalFiles  int64 `json:"total_archivos"`
	TotalSize   int64 `json:"tamano_total"`
	RemoteFiles int64 `json:"archivos_remotos"`
	LocalFiles  int64 `json:"archivos_locales"`
}

type StorageStatsResponse struct {
	Estadisticas *StorageStatsDTO `json:"estadisticas"`
}

// StorageCredentialResponse firebaseToken 保持旧客户端兼容，credential 为完整凭证
type StorageCredentialResponse struct {
	Mensaje       string `json:"mensaje,omitempty"`
	FirebaseToken string `json:"firebaseToken,omitempty"`
	Credential    any    `json:"credential"`
}
