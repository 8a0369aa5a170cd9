package utils

import (
	"encoding/base64"
	"errors"
	"strconv"
	"strings"
)

var ErrMalformedID = errors.New("malformed identifier")

// EncodeGlobalID 生成 base64("<Kind>:<id>") 形式的全局 ID
func EncodeGlobalID(kind string, id uint) string {
	if id == 0 {
		return ""
	}
	return base64.StdEncoding.EncodeToString([]byte(kind + ":" + strconv.FormatUint(uint64(id), 10)))
}

// DecodeGlobalID 解析全局 ID，返回其中的类型标签和数字 ID
func DecodeGlobalID(raw string) (string, uint, error) {
	b, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return "", 0, ErrMalformedID
	}
	kind, num, ok := strings.Cut(string(b), ":")
	if !ok || kind == "" {
		return "", 0, ErrMalformedID
	}
	id, ok := ParseNumericID(num)
	if !ok {
		return "", 0, ErrMalformedID
	}
	return kind, id, nil
}

// ParseNumericID 解析纯数字 ID，0 视为无效
func ParseNumericID(raw string) (uint, bool) {
	if raw == "" {
		return 0, false
	}
	for _, r := range raw {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}
