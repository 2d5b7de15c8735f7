package dto

import "time"

type RegisterDTO struct {
	Username string `json:"username" binding:"required" validate:"min=3,max=50"`
	Email    string `json:"email" binding:"required" validate:"email,max=255"`
	Password string `json:"password" binding:"required" validate:"min=1,max=72"`
}

type LoginDTO struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AvatarDTO struct {
	AvatarURL string `json:"foto_perfil_url" binding:"required" validate:"max=512"`
}

// AccountDTO 对外的账号信息，从不包含密码哈希
type AccountDTO struct {
	ID         uint64     `json:"id"`
	Username   string     `json:"username"`
	Email      string     `json:"email"`
	AvatarURL  *string    `json:"foto_perfil_url"`
	CreatedAt  time.Time  `json:"fecha_registro"`
	LastSeenAt *time.Time `json:"ultimo_acceso,omitempty"`
}

type AuthResponse struct {
	Mensaje string      `json:"mensaje"`
	Token   string      `json:"token"`
	Usuario *AccountDTO `json:"usuario"`
}

type AccountResponse struct {
	Usuario *AccountDTO `json:"usuario"`
}
