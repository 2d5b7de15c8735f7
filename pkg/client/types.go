package client

import "time"

type Account struct {
	ID         uint64     `json:"id"`
	Username   string     `json:"username"`
	Email      string     `json:"email"`
	AvatarURL  *string    `json:"foto_perfil_url"`
	CreatedAt  time.Time  `json:"fecha_registro"`
	LastSeenAt *time.Time `json:"ultimo_acceso,omitempty"`
}

type Post struct {
	ID         uint64    `json:"id"`
	AccountID  uint64    `json:"usuario_id"`
	Title      string    `json:"titulo"`
	Body       string    `json:"descripcion"`
	CreatedAt  time.Time `json:"fecha_creacion"`
	Status     string    `json:"estado"`
	MediaCount int64     `json:"contenido_count"`
}

type Media struct {
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

type PostDetail struct {
	Post  *Post    `json:"post"`
	Media []*Media `json:"contenidos"`
}

type StorageStats struct {
	TotalFiles  int64 `json:"total_archivos"`
	TotalSize   int64 `json:"tamano_total"`
	RemoteFiles int64 `json:"archivos_remotos"`
	LocalFiles  int64 `json:"archivos_locales"`
}

// Credential 后端签发的直传凭证
type Credential struct {
	Provider  string            `json:"provider"`
	Token     string            `json:"token,omitempty"`
	URL       string            `json:"url,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
	Bucket    string            `json:"bucket,omitempty"`
	Prefix    string            `json:"prefix"`
	ExpiresAt time.Time         `json:"expires_at"`
}

type authResponse struct {
	Token   string   `json:"token"`
	Usuario *Account `json:"usuario"`
}

type accountResponse struct {
	Usuario *Account `json:"usuario"`
}

type postResponse struct {
	Post *Post `json:"post"`
}

type postListResponse struct {
	Posts []*Post `json:"posts"`
}

type mediaResponse struct {
	Contenido *Media `json:"contenido"`
}

type mediaURLResponse struct {
	URL string `json:"url"`
}

type statsResponse struct {
	Estadisticas *StorageStats `json:"estadisticas"`
}

type credentialResponse struct {
	FirebaseToken string      `json:"firebaseToken"`
	Credential    *Credential `json:"credential"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type registerRemoteRequest struct {
	PostID       uint64 `json:"postId"`
	Tipo         string `json:"tipo"`
	URL          string `json:"url"`
	FileName     string `json:"nombreArchivo"`
	Tamano       int64  `json:"tamano"`
	ProviderPath string `json:"firebase_path"`
}
