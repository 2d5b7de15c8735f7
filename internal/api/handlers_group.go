package api

import "Mosaic/internal/api/handler"

// HandlersGroup 封装了所有已初始化的 Handler 实例
type HandlersGroup struct {
	AccountHandler *handler.AccountHandler
	PostHandler    *handler.PostHandler
	MediaHandler   *handler.MediaHandler
}

// RouterOptions 静态文件挂载与访问日志配置
type RouterOptions struct {
	// UploadsPrefix 为空时不挂载本地上传目录
	UploadsPrefix string
	UploadsRoot   string
	LogIndex      string
	// MaxMultipartMemory 超过部分由 net/http 写入临时文件
	MaxMultipartMemory int64
}
