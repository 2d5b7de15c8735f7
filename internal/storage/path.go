package storage

import (
	"fmt"
	"path"
	"strconv"
	"strings"
)

const objectRoot = "posts"

// UserPrefix 账号在云存储中的根目录
func UserPrefix(accountID uint64) string {
	return fmt.Sprintf("%s/%d/", objectRoot, accountID)
}

// PostPrefix 帖子媒体必须位于的目录 posts/{accountId}/{postId}/
func PostPrefix(accountID, postID uint64) string {
	return fmt.Sprintf("%s/%d/%d/", objectRoot, accountID, postID)
}

// ObjectPath 客户端直传时使用的对象路径
func ObjectPath(accountID, postID uint64, unixMillis int64, filename string) string {
	return PostPrefix(accountID, postID) + strconv.FormatInt(unixMillis, 10) + "_" + SanitizeFileName(filename)
}

// SanitizeFileName 去掉目录部分，避免文件名跳出帖子目录
func SanitizeFileName(filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" || name == ".." {
		return "file"
	}
	return name
}

// ValidateObjectPath 路径必须精确以 posts/{accountId}/{postId}/ 开头且只多出一段文件名
func ValidateObjectPath(objectPath string, accountID, postID uint64) error {
	prefix := PostPrefix(accountID, postID)
	if !strings.HasPrefix(objectPath, prefix) {
		return fmt.Errorf("%w: expected prefix %s", ErrInvalidObjectPath, prefix)
	}
	name := strings.TrimPrefix(objectPath, prefix)
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, "/\\") {
		return fmt.Errorf("%w: bad file name %q", ErrInvalidObjectPath, name)
	}
	return nil
}

// ParseObjectPath 从 posts/{accountId}/{postId}/{name} 中解析出账号与帖子
func ParseObjectPath(objectPath string) (accountID, postID uint64, err error) {
	parts := strings.Split(objectPath, "/")
	if len(parts) != 4 || parts[0] != objectRoot || parts[3] == "" {
		return 0, 0, fmt.Errorf("%w: %s", ErrInvalidObjectPath, objectPath)
	}
	accountID, err = strconv.ParseUint(parts[1], 10, 64)
	if err != nil || accountID == 0 {
		return 0, 0, fmt.Errorf("%w: %s", ErrInvalidObjectPath, objectPath)
	}
	postID, err = strconv.ParseUint(parts[2], 10, 64)
	if err != nil || postID == 0 {
		return 0, 0, fmt.Errorf("%w: %s", ErrInvalidObjectPath, objectPath)
	}
	return accountID, postID, nil
}
