package dto

// ErrorResponse 错误响应 {"error": "..."}
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse 只包含提示信息的响应
type MessageResponse struct {
	Mensaje string `json:"mensaje"`
}
