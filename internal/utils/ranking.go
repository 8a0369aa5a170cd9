package utils

import (
	"strings"
	"unicode"
)

// RelevanceConfig 搜索相关度的字段权重
type RelevanceConfig struct {
	WeightTitle   float64 // 1.0
	WeightSummary float64 // 0.4
	WeightContent float64 // 0.1
}

// 每个字段的贡献落在 [w, 2w) 之间，摘要和正文加起来也追不上一次标题命中
var DefaultRelevance = RelevanceConfig{
	WeightTitle:   1.0,
	WeightSummary: 0.4,
	WeightContent: 0.1,
}

// SearchTerms 把查询拆成去重的小写词
func SearchTerms(query string) []string {
	fields := strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	seen := make(map[string]bool, len(fields))
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		if seen[f] {
			continue
		}
		seen[f] = true
		terms = append(terms, f)
	}
	return terms
}

// MatchesAll 每个词都至少出现在一个字段中
func MatchesAll(terms []string, title, summary, content string) bool {
	if len(terms) == 0 {
		return false
	}
	haystack := strings.ToLower(title + "\n" + summary + "\n" + content)
	for _, term := range terms {
		if !strings.Contains(haystack, term) {
			return false
		}
	}
	return true
}

// saturate 词频饱和：tf=1 -> 1.0，tf 越大越接近 2
func saturate(tf int) float64 {
	if tf <= 0 {
		return 0
	}
	return 2 * float64(tf) / float64(tf+1)
}

// RelevanceScore 加权词频得分: Σ_term Σ_field w_field * 2tf/(tf+1)
func RelevanceScore(terms []string, title, summary, content string) float64 {
	return DefaultRelevance.Score(terms, title, summary, content)
}

func (cfg RelevanceConfig) Score(terms []string, title, summary, content string) float64 {
	title = strings.ToLower(title)
	summary = strings.ToLower(summary)
	content = strings.ToLower(content)

	var score float64
	for _, term := range terms {
		score += cfg.WeightTitle * saturate(strings.Count(title, term))
		score += cfg.WeightSummary * saturate(strings.Count(summary, term))
		score += cfg.WeightContent * saturate(strings.Count(content, term))
	}
	return score
}

// EscapeLike 转义 LIKE 模式中的通配符，配合 ESCAPE '\' 使用
func EscapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
