package utils

import (
	"strconv"
)

// StringToInt converts string to int, returns 0 if error
func StringToInt(s string) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return i
}

func StringFromUint(n uint) string {
	return strconv.FormatUint(uint64(n), 10)
}

// StringToBoolPtr 解析可选的布尔查询参数，空串或非法值返回 nil
func StringToBoolPtr(s string) *bool {
	if s == "" {
		return nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return nil
	}
	return &b
}
