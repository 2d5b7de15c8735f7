package util

import (
	"Mosaic/internal/pkg/consts"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrUnsupportedMedia = errors.New("solo se permiten imágenes y videos")
	ErrMediaTooLarge    = errors.New("el archivo supera el tamaño máximo permitido")
)

const octetStream = "application/octet-stream"

// AllowedExtensions 服务端中转上传允许的扩展名
var AllowedExtensions = map[string]struct{}{
	".jpeg": {},
	".jpg":  {},
	".png":  {},
	".gif":  {},
	".mp4":  {},
	".webm": {},
	".mov":  {},
}

// NeedsSniffing 声明的类型缺失或为通用二进制时需要嗅探真实类型
func NeedsSniffing(declared string) bool {
	declared = strings.TrimSpace(strings.ToLower(declared))
	return declared == "" || strings.HasPrefix(declared, octetStream)
}

// DetectContentType 读取文件头识别 MIME 类型，调用方负责重置读取位置
func DetectContentType(r io.Reader) (string, error) {
	mt, err := mimetype.DetectReader(r)
	if err != nil {
		return "", fmt.Errorf("detect content type: %w", err)
	}
	return mt.String(), nil
}

// ValidateUpload 扩展名白名单、图片/视频类型与大小限制
func ValidateUpload(filename, contentType string, size, maxSize int64) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := AllowedExtensions[ext]; !ok {
		return ErrUnsupportedMedia
	}
	ct := strings.ToLower(contentType)
	if !strings.HasPrefix(ct, consts.MimePrefixImage+"/") && !strings.HasPrefix(ct, consts.MimePrefixVideo+"/") {
		return ErrUnsupportedMedia
	}
	if maxSize > 0 && size > maxSize {
		return ErrMediaTooLarge
	}
	return nil
}

// ClassifyKind video/* 为视频，其余一律按图片处理
func ClassifyKind(contentType string) string {
	if strings.HasPrefix(strings.ToLower(contentType), consts.MimePrefixVideo+"/") {
		return consts.MediaKindVideo
	}
	return consts.MediaKindImage
}

// NormalizeKind 接受 imagen 作为 image 的别名
func NormalizeKind(kind string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case consts.MediaKindImage, "imagen":
		return consts.MediaKindImage, true
	case consts.MediaKindVideo:
		return consts.MediaKindVideo, true
	default:
		return "", false
	}
}

// ImageDimensions 按 EXIF 方向修正后的宽高
func ImageDimensions(r io.Reader) (int, int, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return 0, 0, err
	}
	b := img.Bounds()
	return b.Dx(), b.Dy(), nil
}
