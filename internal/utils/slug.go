package utils

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	slugStrip      = regexp.MustCompile(`[^\w\s-]`)
	slugSeparators = regexp.MustCompile(`[-\s]+`)
)

// Slugify 把标题转换为 URL 友好的 slug：去掉重音、转小写、空白和连字符合并为单个 "-"
// 同样的输入总是得到同样的输出
func Slugify(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	plain, _, err := transform.String(t, s)
	if err != nil {
		plain = s
	}

	plain = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return unicode.ToLower(r)
	}, plain)

	plain = slugStrip.ReplaceAllString(plain, "")
	plain = slugSeparators.ReplaceAllString(strings.TrimSpace(plain), "-")
	return strings.Trim(plain, "-_")
}
