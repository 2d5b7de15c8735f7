package util

import (
	"strconv"
	"strings"
)

// ParseID 解析路径或表单中的正整数 id
func ParseID(raw string) (uint64, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}
