package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode"

	"newsdesk/internal/models"
	"newsdesk/internal/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// 候选集上限，防止极宽泛的查询把整张表读进内存
const maxSearchCandidates = 1000

type SearchInput struct {
	Term     string
	Category string
	Page
}

type SearchHit struct {
	models.Article
	Score float64 `json:"score"`
}

type SearchResult struct {
	Term       string      `json:"term"`
	Hits       []SearchHit `json:"hits"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PerPage    int         `json:"per_page"`
	TotalPages int         `json:"total_pages"`
}

type searchCandidate struct {
	ID          uint
	Title       string
	Summary     string
	Content     string
	PublishedAt *time.Time
	score       float64
}

// SearchArticles 数据库做 LIKE 粗筛和按字段命中的粗排序，精确打分和排序在 Go 中完成
// 命中数超过候选上限时，粗排序保证标题命中先进入候选集
func (p *Portal) SearchArticles(ctx context.Context, actor *models.User, in SearchInput) (*SearchResult, error) {
	pg := in.Page.normalize()
	result := &SearchResult{
		Term:       in.Term,
		Hits:       []SearchHit{},
		Page:       pg.Page,
		PerPage:    pg.PerPage,
		TotalPages: 1,
	}
	terms := utils.SearchTerms(in.Term)
	if len(terms) == 0 {
		return result, nil
	}
	likeTerms := p.prefilterTerms(terms)

	scope := func(q *gorm.DB) *gorm.DB {
		q = q.Model(&models.Article{}).Where("status = ?", models.StatusPublished)
		for _, term := range likeTerms {
			pattern := likePattern(term)
			q = q.Where(`(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(summary) LIKE ? ESCAPE '\' OR LOWER(content) LIKE ? ESCAPE '\')`,
				pattern, pattern, pattern)
		}
		if in.Category != "" {
			q = q.Where("category_id IN (?)",
				p.conn(ctx).Model(&models.Category{}).Select("id").Where("slug = ?", in.Category))
		}
		return q
	}

	var prefiltered int64
	if err := scope(p.conn(ctx)).Count(&prefiltered).Error; err != nil {
		return nil, ErrInternal(err)
	}
	if prefiltered == 0 {
		return result, nil
	}

	q := scope(p.conn(ctx)).Select("id", "title", "summary", "content", "published_at")
	if rank, vars := fieldRank(likeTerms); rank != "" {
		q = q.Clauses(clause.OrderBy{Expression: clause.Expr{
			SQL:                rank + " DESC, published_at DESC, id DESC",
			Vars:               vars,
			WithoutParentheses: true,
		}})
	} else {
		q = q.Order("published_at DESC, id DESC")
	}

	var candidates []searchCandidate
	if err := q.Limit(maxSearchCandidates).Scan(&candidates).Error; err != nil {
		return nil, ErrInternal(err)
	}

	matched := candidates[:0]
	for _, c := range candidates {
		// 按 Go 的小写规则再确认一次
		if !utils.MatchesAll(terms, c.Title, c.Summary, c.Content) {
			continue
		}
		c.score = utils.RelevanceScore(terms, c.Title, c.Summary, c.Content)
		matched = append(matched, c)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if a.score != b.score {
			return a.score > b.score
		}
		if !publishedAt(a).Equal(publishedAt(b)) {
			return publishedAt(a).After(publishedAt(b))
		}
		return a.ID > b.ID
	})

	result.Total = int64(len(matched))
	if prefiltered > maxSearchCandidates {
		// 候选集被截断，总数按粗筛计数
		result.Total = prefiltered
	}
	result.TotalPages = totalPages(result.Total, pg.PerPage)
	start := pg.offset()
	if start >= len(matched) {
		return result, nil
	}
	end := start + pg.PerPage
	if end > len(matched) {
		end = len(matched)
	}
	page := matched[start:end]

	ids := make([]uint, len(page))
	for i, c := range page {
		ids[i] = c.ID
	}
	var articles []models.Article
	if err := p.conn(ctx).Preload("Author").Preload("Category").Preload("Tags").
		Where("id IN ?", ids).Find(&articles).Error; err != nil {
		return nil, ErrInternal(err)
	}
	if err := p.fillEngagement(ctx, actor, articlePtrs(articles)); err != nil {
		return nil, err
	}
	byID := make(map[uint]models.Article, len(articles))
	for _, a := range articles {
		byID[a.ID] = a
	}
	for _, c := range page {
		if a, ok := byID[c.ID]; ok {
			result.Hits = append(result.Hits, SearchHit{Article: a, Score: c.score})
		}
	}
	return result, nil
}

func publishedAt(c searchCandidate) time.Time {
	if c.PublishedAt == nil {
		return time.Time{}
	}
	return *c.PublishedAt
}

// prefilterTerms 返回可以交给数据库 LIKE 粗筛的词
// SQLite 的 LOWER 只处理 ASCII，含非 ASCII 字母的词只在 Go 中匹配
func (p *Portal) prefilterTerms(terms []string) []string {
	if p.db.Dialector.Name() != "sqlite" {
		return terms
	}
	out := make([]string, 0, len(terms))
	for _, term := range terms {
		if isASCII(term) {
			out = append(out, term)
		}
	}
	return out
}

func isASCII(s string) bool {
	for _, r := range s {
		if r > unicode.MaxASCII {
			return false
		}
	}
	return true
}

func likePattern(term string) string {
	return "%" + utils.EscapeLike(term) + "%"
}

// fieldRank 按字段命中给出粗排分数，权重顺序与 RelevanceConfig 一致
func fieldRank(terms []string) (string, []interface{}) {
	if len(terms) == 0 {
		return "", nil
	}
	parts := make([]string, 0, len(terms)*3)
	vars := make([]interface{}, 0, len(terms)*3)
	for _, term := range terms {
		pattern := likePattern(term)
		for _, f := range []struct {
			column string
			weight int
		}{{"title", 100}, {"summary", 40}, {"content", 10}} {
			parts = append(parts, fmt.Sprintf(`CASE WHEN LOWER(%s) LIKE ? ESCAPE '\' THEN %d ELSE 0 END`, f.column, f.weight))
			vars = append(vars, pattern)
		}
	}
	return "(" + strings.Join(parts, " + ") + ")", vars
}
