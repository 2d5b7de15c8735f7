package consts

// 媒体类型
const (
	MediaKindImage = "image"
	MediaKindVideo = "video"
)

const (
	MimePrefixImage = "image"
	MimePrefixVideo = "video"
)

// 帖子状态
const (
	PostStatusActive  = "active"
	PostStatusRemoved = "removed"
)

// 存储提供方
const (
	ProviderFirebase = "firebase"
	ProviderMinIO    = "minio"
	ProviderNone     = "none"
)

const (
	ObjectRootPrefix = "posts"
	UserIDKey        = "user_id"
	UsernameKey      = "username"
	TokenKey         = "token"

	// AuditSkipResponseKey 处理器设置后审计日志不记录响应体
	AuditSkipResponseKey = "audit_skip_response"
)
