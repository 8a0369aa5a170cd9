package services

import (
	"context"
	"fmt"
	"strings"

	"newsdesk/internal/models"
	"newsdesk/internal/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ArticleInput struct {
	Title         string `json:"title"`
	Slug          string `json:"slug"`
	Summary       string `json:"summary"`
	Content       string `json:"content"`
	CategoryID    ID     `json:"category_id"`
	TagIDs        []ID   `json:"tag_ids"`
	Status        string `json:"status"`
	IsFeatured    bool   `json:"is_featured"`
	FeaturedImage string `json:"featured_image"`
}

// ArticlePatch 部分更新，缺省字段保持不变
type ArticlePatch struct {
	Title         Field[string] `json:"title"`
	Slug          Field[string] `json:"slug"`
	Summary       Field[string] `json:"summary"`
	Content       Field[string] `json:"content"`
	CategoryID    Field[ID]     `json:"category_id"`
	TagIDs        Field[[]ID]   `json:"tag_ids"`
	Status        Field[string] `json:"status"`
	IsFeatured    Field[bool]   `json:"is_featured"`
	FeaturedImage Field[string] `json:"featured_image"`
}

type ArticleFilter struct {
	Search   string
	Category string
	Tag      string
	Author   string
	Featured *bool
	Status   string
	OrderBy  string
	Page
}

type ArticleList struct {
	Articles   []models.Article `json:"articles"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	PerPage    int              `json:"per_page"`
	TotalPages int              `json:"total_pages"`
}

var articleOrders = map[string]string{
	"":              "published_at DESC, id DESC",
	"-published_at": "published_at DESC, id DESC",
	"published_at":  "published_at ASC, id ASC",
	"-views_count":  "views_count DESC, id DESC",
	"views_count":   "views_count ASC, id ASC",
	"-created_at":   "created_at DESC, id DESC",
	"created_at":    "created_at ASC, id ASC",
	"title":         "title ASC, id ASC",
}

const (
	maxTitleLen   = 200
	maxSummaryLen = 500
)

func parseStatus(raw string) (models.ArticleStatus, error) {
	if raw == "" {
		return models.StatusDraft, nil
	}
	s := models.ArticleStatus(raw)
	if !s.Valid() {
		return "", ErrValidation("status", "must be one of draft published")
	}
	return s, nil
}

func parseTagIDs(raw []ID) ([]uint, error) {
	ids := make([]uint, 0, len(raw))
	seen := make(map[uint]bool, len(raw))
	for _, r := range raw {
		id, err := parseID(r.String(), models.KindTag)
		if err != nil {
			return nil, err
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// CreateArticle 创建文章，标签关联在同一事务中写入
func (p *Portal) CreateArticle(ctx context.Context, actor *models.User, in ArticleInput) (*models.Article, error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}
	categoryRef, err := parseOptionalID(in.CategoryID.String(), models.KindCategory)
	if err != nil {
		return nil, err
	}
	tagIDs, err := parseTagIDs(in.TagIDs)
	if err != nil {
		return nil, err
	}
	if err := p.gate.Authorize(actor, ActionCreateArticle, nil); err != nil {
		return nil, err
	}
	if categoryRef == nil {
		return nil, ErrValidation("category_id", "required")
	}
	categoryID := *categoryRef

	title, err := requireText("title", in.Title, maxTitleLen)
	if err != nil {
		return nil, err
	}
	summary, err := requireText("summary", in.Summary, maxSummaryLen)
	if err != nil {
		return nil, err
	}
	content, err := requireText("content", in.Content, 0)
	if err != nil {
		return nil, err
	}
	status, err := parseStatus(in.Status)
	if err != nil {
		return nil, err
	}
	slugSource := in.Slug
	if strings.TrimSpace(slugSource) == "" {
		slugSource = title
	}
	slug := utils.Slugify(slugSource)
	if slug == "" {
		return nil, ErrValidation("slug", "cannot be derived from title")
	}

	article := models.Article{
		Title:         title,
		Slug:          slug,
		Summary:       summary,
		Content:       content,
		FeaturedImage: strings.TrimSpace(in.FeaturedImage),
		AuthorID:      actor.ID,
		CategoryID:    categoryID,
		Status:        status,
		IsFeatured:    in.IsFeatured,
	}
	if status == models.StatusPublished {
		now := p.now()
		article.PublishedAt = &now
	}

	err = p.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureCategory(tx, categoryID); err != nil {
			return err
		}
		tags, err := loadTags(tx, tagIDs)
		if err != nil {
			return err
		}
		if err := ensureSlugFree(tx, &models.Article{}, "articles.slug", slug, 0); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Create(&article).Error; err != nil {
			if isUniqueViolation(err) {
				return ErrConflict("articles.slug")
			}
			return err
		}
		if len(tags) > 0 {
			return tx.Model(&article).Association("Tags").Append(tags)
		}
		return nil
	})
	if err != nil {
		return nil, storageError(err, "Article", slug)
	}
	return p.loadArticle(ctx, actor, article.ID)
}

// UpdateArticle 按补丁更新，null 只对 featured_image 有效
func (p *Portal) UpdateArticle(ctx context.Context, actor *models.User, ref string, patch ArticlePatch) (*models.Article, error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}
	r, err := parseRef(ref, models.KindArticle)
	if err != nil {
		return nil, err
	}
	var categoryID *uint
	if ok, err := patch.CategoryID.present("category_id"); err != nil {
		return nil, err
	} else if ok {
		id, err := parseID(patch.CategoryID.Value.String(), models.KindCategory)
		if err != nil {
			return nil, err
		}
		categoryID = &id
	}
	var tagIDs []uint
	setTags, err := patch.TagIDs.present("tag_ids")
	if err != nil {
		return nil, err
	}
	if setTags {
		if tagIDs, err = parseTagIDs(patch.TagIDs.Value); err != nil {
			return nil, err
		}
	}

	article, err := findArticle(p.conn(ctx), r)
	if err != nil {
		return nil, err
	}
	if err := p.gate.Authorize(actor, ActionUpdateArticle, &article.AuthorID); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if ok, err := patch.Title.present("title"); err != nil {
		return nil, err
	} else if ok {
		title, err := requireText("title", patch.Title.Value, maxTitleLen)
		if err != nil {
			return nil, err
		}
		updates["title"] = title
	}
	var newSlug string
	if ok, err := patch.Slug.present("slug"); err != nil {
		return nil, err
	} else if ok {
		newSlug = utils.Slugify(patch.Slug.Value)
		if newSlug == "" {
			return nil, ErrValidation("slug", "required")
		}
		if newSlug != article.Slug {
			updates["slug"] = newSlug
		}
	}
	if ok, err := patch.Summary.present("summary"); err != nil {
		return nil, err
	} else if ok {
		summary, err := requireText("summary", patch.Summary.Value, maxSummaryLen)
		if err != nil {
			return nil, err
		}
		updates["summary"] = summary
	}
	if ok, err := patch.Content.present("content"); err != nil {
		return nil, err
	} else if ok {
		content, err := requireText("content", patch.Content.Value, 0)
		if err != nil {
			return nil, err
		}
		updates["content"] = content
	}
	if ok, err := patch.Status.present("status"); err != nil {
		return nil, err
	} else if ok {
		status := models.ArticleStatus(patch.Status.Value)
		if !status.Valid() {
			return nil, ErrValidation("status", "must be one of draft published")
		}
		if article.IsPublished() && status == models.StatusDraft {
			return nil, ErrValidation("status", "published articles cannot return to draft")
		}
		updates["status"] = string(status)
		if status == models.StatusPublished && article.PublishedAt == nil {
			updates["published_at"] = p.now()
		}
	}
	if ok, err := patch.IsFeatured.present("is_featured"); err != nil {
		return nil, err
	} else if ok {
		updates["is_featured"] = patch.IsFeatured.Value
	}
	if patch.FeaturedImage.Set {
		updates["featured_image"] = strings.TrimSpace(patch.FeaturedImage.Value)
	}
	if categoryID != nil {
		updates["category_id"] = *categoryID
	}

	err = p.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if categoryID != nil {
			if err := ensureCategory(tx, *categoryID); err != nil {
				return err
			}
		}
		var tags []models.Tag
		if setTags {
			if tags, err = loadTags(tx, tagIDs); err != nil {
				return err
			}
		}
		if slug, ok := updates["slug"].(string); ok {
			if err := ensureSlugFree(tx, &models.Article{}, "articles.slug", slug, article.ID); err != nil {
				return err
			}
		}
		if len(updates) > 0 {
			if err := tx.Model(article).Omit(clause.Associations).Updates(updates).Error; err != nil {
				if isUniqueViolation(err) {
					return ErrConflict("articles.slug")
				}
				return err
			}
		}
		if setTags {
			// 空列表清空标签
			return tx.Model(article).Association("Tags").Replace(tags)
		}
		return nil
	})
	if err != nil {
		return nil, storageError(err, "Article", r.String())
	}
	return p.loadArticle(ctx, actor, article.ID)
}

// DeleteArticle 删除文章及其标签关联、点赞、收藏、评论
func (p *Portal) DeleteArticle(ctx context.Context, actor *models.User, ref string) error {
	if err := requireUser(actor); err != nil {
		return err
	}
	r, err := parseRef(ref, models.KindArticle)
	if err != nil {
		return err
	}
	article, err := findArticle(p.conn(ctx), r)
	if err != nil {
		return err
	}
	if err := p.gate.Authorize(actor, ActionDeleteArticle, &article.AuthorID); err != nil {
		return err
	}

	err = p.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("article_id = ?", article.ID).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("article_id = ?", article.ID).Delete(&models.Bookmark{}).Error; err != nil {
			return err
		}
		if err := tx.Where("article_id = ?", article.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Model(article).Association("Tags").Clear(); err != nil {
			return err
		}
		return tx.Delete(article).Error
	})
	return storageError(err, "Article", r.String())
}

// GetArticle 读取单篇文章；草稿只对作者和编辑可见，已发布文章浏览数加一
func (p *Portal) GetArticle(ctx context.Context, actor *models.User, ref string) (*models.Article, error) {
	r, err := parseRef(ref, models.KindArticle)
	if err != nil {
		return nil, err
	}
	article, err := p.readableArticle(ctx, actor, r)
	if err != nil {
		return nil, err
	}
	if article.IsPublished() {
		if err := p.IncrementViews(ctx, article.ID); err != nil {
			return nil, err
		}
		article.ViewsCount++
	}
	if err := p.fillEngagement(ctx, actor, []*models.Article{article}); err != nil {
		return nil, err
	}
	article.ContentHTML = utils.RenderMarkdown(article.Content)
	return article, nil
}

// IncrementViews 在 SQL 层原子自增
func (p *Portal) IncrementViews(ctx context.Context, articleID uint) error {
	res := p.conn(ctx).Model(&models.Article{}).
		Where("id = ?", articleID).
		UpdateColumn("views_count", gorm.Expr("views_count + ?", 1))
	if res.Error != nil {
		return ErrInternal(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound("Article", utils.StringFromUint(articleID))
	}
	return nil
}

// ListArticles 列表查询，默认只返回已发布文章
func (p *Portal) ListArticles(ctx context.Context, actor *models.User, f ArticleFilter) (*ArticleList, error) {
	order, ok := articleOrders[f.OrderBy]
	if !ok {
		return nil, ErrValidation("order_by", "unsupported ordering")
	}
	var authorID *uint
	if f.Author != "" {
		id, err := parseID(f.Author, models.KindUser)
		if err != nil {
			return nil, err
		}
		authorID = &id
	}

	status := models.StatusPublished
	var ownDrafts *uint
	switch f.Status {
	case "", string(models.StatusPublished):
	case string(models.StatusDraft):
		if err := requireUser(actor); err != nil {
			return nil, err
		}
		status = models.StatusDraft
		if !actor.IsEditor() {
			ownDrafts = &actor.ID
		}
	default:
		return nil, ErrValidation("status", "must be one of draft published")
	}

	pg := f.Page.normalize()
	scope := func(q *gorm.DB) *gorm.DB {
		q = q.Where("articles.status = ?", status)
		if ownDrafts != nil {
			q = q.Where("articles.author_id = ?", *ownDrafts)
		}
		if authorID != nil {
			q = q.Where("articles.author_id = ?", *authorID)
		}
		if f.Featured != nil {
			q = q.Where("articles.is_featured = ?", *f.Featured)
		}
		if f.Category != "" {
			q = q.Where("articles.category_id IN (?)",
				q.Session(&gorm.Session{NewDB: true}).Model(&models.Category{}).Select("id").Where("slug = ?", f.Category))
		}
		if f.Tag != "" {
			q = q.Where("articles.id IN (?)",
				q.Session(&gorm.Session{NewDB: true}).Table("article_tags").
					Select("article_tags.article_id").
					Joins("JOIN tags ON tags.id = article_tags.tag_id").
					Where("tags.slug = ?", f.Tag))
		}
		// 列表过滤只在数据库中匹配；SQLite 的 LOWER 只折叠 ASCII，非 ASCII 词在 SQLite 上区分大小写
		if term := strings.TrimSpace(f.Search); term != "" {
			pattern := "%" + utils.EscapeLike(strings.ToLower(term)) + "%"
			q = q.Where(`(LOWER(articles.title) LIKE ? ESCAPE '\' OR LOWER(articles.summary) LIKE ? ESCAPE '\' OR LOWER(articles.content) LIKE ? ESCAPE '\')`,
				pattern, pattern, pattern)
		}
		return q
	}

	var total int64
	if err := scope(p.conn(ctx).Model(&models.Article{})).Count(&total).Error; err != nil {
		return nil, ErrInternal(err)
	}

	var articles []models.Article
	err := scope(p.conn(ctx).Model(&models.Article{})).
		Preload("Author").Preload("Category").Preload("Tags").
		Order(order).
		Limit(pg.PerPage).Offset(pg.offset()).
		Find(&articles).Error
	if err != nil {
		return nil, ErrInternal(err)
	}
	if err := p.fillEngagement(ctx, actor, articlePtrs(articles)); err != nil {
		return nil, err
	}

	return &ArticleList{
		Articles:   articles,
		Total:      total,
		Page:       pg.Page,
		PerPage:    pg.PerPage,
		TotalPages: totalPages(total, pg.PerPage),
	}, nil
}

func articlePtrs(articles []models.Article) []*models.Article {
	ptrs := make([]*models.Article, len(articles))
	for i := range articles {
		ptrs[i] = &articles[i]
	}
	return ptrs
}

// fillEngagement 批量填充点赞数、评论数以及当前用户的点赞收藏状态
func (p *Portal) fillEngagement(ctx context.Context, actor *models.User, articles []*models.Article) error {
	if len(articles) == 0 {
		return nil
	}
	ids := make([]uint, len(articles))
	for i, a := range articles {
		ids[i] = a.ID
	}

	type countRow struct {
		ArticleID uint
		Count     int64
	}
	var likes, comments []countRow
	db := p.conn(ctx)
	if err := db.Model(&models.Like{}).
		Select("article_id, COUNT(*) AS count").
		Where("article_id IN ?", ids).
		Group("article_id").
		Scan(&likes).Error; err != nil {
		return ErrInternal(err)
	}
	if err := db.Model(&models.Comment{}).
		Select("article_id, COUNT(*) AS count").
		Where("article_id IN ? AND is_approved = ?", ids, true).
		Group("article_id").
		Scan(&comments).Error; err != nil {
		return ErrInternal(err)
	}

	likeMap := make(map[uint]int64, len(likes))
	for _, r := range likes {
		likeMap[r.ArticleID] = r.Count
	}
	commentMap := make(map[uint]int64, len(comments))
	for _, r := range comments {
		commentMap[r.ArticleID] = r.Count
	}

	liked := map[uint]bool{}
	bookmarked := map[uint]bool{}
	if actor != nil {
		var likedIDs, bookmarkedIDs []uint
		if err := db.Model(&models.Like{}).
			Where("user_id = ? AND article_id IN ?", actor.ID, ids).
			Pluck("article_id", &likedIDs).Error; err != nil {
			return ErrInternal(err)
		}
		if err := db.Model(&models.Bookmark{}).
			Where("user_id = ? AND article_id IN ?", actor.ID, ids).
			Pluck("article_id", &bookmarkedIDs).Error; err != nil {
			return ErrInternal(err)
		}
		for _, id := range likedIDs {
			liked[id] = true
		}
		for _, id := range bookmarkedIDs {
			bookmarked[id] = true
		}
	}

	for _, a := range articles {
		a.LikesCount = likeMap[a.ID]
		a.CommentsCount = commentMap[a.ID]
		a.IsLiked = liked[a.ID]
		a.IsBookmarked = bookmarked[a.ID]
	}
	return nil
}

// findArticle 按 ID 或 slug 查询，不做可见性检查
func findArticle(db *gorm.DB, r Ref) (*models.Article, error) {
	var article models.Article
	q := db.Preload("Author").Preload("Category").Preload("Tags")
	var err error
	if r.ID != 0 {
		err = q.First(&article, r.ID).Error
	} else {
		err = q.Where("slug = ?", r.Slug).First(&article).Error
	}
	if err != nil {
		return nil, storageError(err, "Article", r.String())
	}
	return &article, nil
}

// readableArticle 草稿对无权查看的用户表现为不存在
func (p *Portal) readableArticle(ctx context.Context, actor *models.User, r Ref) (*models.Article, error) {
	article, err := findArticle(p.conn(ctx), r)
	if err != nil {
		return nil, err
	}
	if !article.IsPublished() && !p.gate.Decide(actor, ActionViewDraft, &article.AuthorID).Allowed {
		return nil, ErrNotFound("Article", r.String())
	}
	return article, nil
}

// loadArticle 写操作后重新读取，带上计算字段
func (p *Portal) loadArticle(ctx context.Context, actor *models.User, id uint) (*models.Article, error) {
	article, err := findArticle(p.conn(ctx), Ref{ID: id})
	if err != nil {
		return nil, err
	}
	if err := p.fillEngagement(ctx, actor, []*models.Article{article}); err != nil {
		return nil, err
	}
	article.ContentHTML = utils.RenderMarkdown(article.Content)
	return article, nil
}

func ensureCategory(tx *gorm.DB, id uint) error {
	var count int64
	if err := tx.Model(&models.Category{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound("Category", utils.StringFromUint(id))
	}
	return nil
}

// loadTags 所有 ID 都必须存在
func loadTags(tx *gorm.DB, ids []uint) ([]models.Tag, error) {
	if len(ids) == 0 {
		return []models.Tag{}, nil
	}
	var tags []models.Tag
	if err := tx.Where("id IN ?", ids).Find(&tags).Error; err != nil {
		return nil, err
	}
	if len(tags) == len(ids) {
		return tags, nil
	}
	found := make(map[uint]bool, len(tags))
	for _, t := range tags {
		found[t.ID] = true
	}
	for _, id := range ids {
		if !found[id] {
			return nil, ErrNotFound("Tag", utils.StringFromUint(id))
		}
	}
	return tags, nil
}

// ensureSlugFree 检查 slug 是否已被其他记录占用，exclude 为自身 ID
func ensureSlugFree(tx *gorm.DB, model interface{}, constraint, slug string, exclude uint) error {
	return ensureUnique(tx, model, "slug", slug, constraint, exclude)
}

func ensureUnique(tx *gorm.DB, model interface{}, column, value, constraint string, exclude uint) error {
	var count int64
	q := tx.Model(model).Where(fmt.Sprintf("%s = ?", column), value)
	if exclude != 0 {
		q = q.Where("id <> ?", exclude)
	}
	if err := q.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrConflict(constraint)
	}
	return nil
}
