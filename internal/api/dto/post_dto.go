package dto

import "time"

type CreatePostDTO struct {
	Titulo      string `json:"titulo" binding:"required" validate:"min=1,max=100"`
	Descripcion string `json:"descripcion" validate:"max=5000"`
}

type PostDTO struct {
	ID         uint64    `json:"id"`
	AccountID  uint64    `json:"usuario_id"`
	Title      string    `json:"titulo"`
	Body       string    `json:"descripcion"`
	CreatedAt  time.Time `json:"fecha_creacion"`
	Status     string    `json:"estado"`
	MediaCount int64     `json:"contenido_count"`
}

type PostResponse struct {
	Mensaje string   `json:"mensaje,omitempty"`
	Post    *PostDTO `json:"post"`
}

type PostListResponse struct {
	Posts []*PostDTO `json:"posts"`
}

type PostDetailDTO struct {
	Post      *PostDTO    `json:"post"`
	Contenido []*MediaDTO `json:"contenidos"`
}
