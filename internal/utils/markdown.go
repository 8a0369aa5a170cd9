package utils

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"html"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

var (
	mdParser = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			gmhtml.WithHardWraps(),
			gmhtml.WithXHTML(),
		),
	)
	policy = bluemonday.UGCPolicy()
)

const renderTTL = 30 * time.Minute

func init() {
	policy.AllowImages()
	policy.AddTargetBlankToFullyQualifiedLinks(true)
	policy.RequireNoReferrerOnLinks(true)
	// 视频嵌入由 EnhanceHTMLContent 在净化之后加入
}

// RenderMarkdown 渲染文章正文为净化后的 HTML，按内容哈希缓存
func RenderMarkdown(source string) string {
	if source == "" {
		return ""
	}

	sum := sha256.Sum256([]byte(source))
	key := "md:" + hex.EncodeToString(sum[:])
	if cached, ok := GetCache().Get(key); ok {
		return cached
	}

	var buf bytes.Buffer
	if err := mdParser.Convert([]byte(source), &buf); err != nil {
		return html.EscapeString(source) // Fallback
	}

	sanitized := policy.SanitizeBytes(buf.Bytes())
	rendered := EnhanceHTMLContent(string(sanitized))

	GetCache().Set(key, rendered, renderTTL)
	return rendered
}
