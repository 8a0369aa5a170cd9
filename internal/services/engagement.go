package services

import (
	"context"

	"newsdesk/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ToggleResult 切换后的状态和当前总数
type ToggleResult struct {
	Active bool  `json:"active"`
	Count  int64 `json:"count"`
}

type CommentInput struct {
	Content  string `json:"content"`
	ParentID ID     `json:"parent_id"`
}

// CommentThread 评论及其回复
type CommentThread struct {
	models.Comment
	Replies []*CommentThread `json:"replies"`
}

// ToggleLike 切换点赞状态
func (p *Portal) ToggleLike(ctx context.Context, actor *models.User, articleRef string) (*ToggleResult, error) {
	return toggleReaction(p, ctx, actor, articleRef, ActionLikeArticle, func(articleID, userID uint) *models.Like {
		return &models.Like{ArticleID: articleID, UserID: userID}
	})
}

// ToggleBookmark 切换收藏状态
func (p *Portal) ToggleBookmark(ctx context.Context, actor *models.User, articleRef string) (*ToggleResult, error) {
	return toggleReaction(p, ctx, actor, articleRef, ActionBookmarkArticle, func(articleID, userID uint) *models.Bookmark {
		return &models.Bookmark{ArticleID: articleID, UserID: userID}
	})
}

// toggleReaction 先删除，没有删到再插入；并发插入触发唯一约束时视为已激活
func toggleReaction[T any](p *Portal, ctx context.Context, actor *models.User, articleRef string, action Action, build func(articleID, userID uint) *T) (*ToggleResult, error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}
	r, err := parseRef(articleRef, models.KindArticle)
	if err != nil {
		return nil, err
	}
	if err := p.gate.Authorize(actor, action, nil); err != nil {
		return nil, err
	}
	article, err := p.readableArticle(ctx, actor, r)
	if err != nil {
		return nil, err
	}

	db := p.conn(ctx)
	res := db.Where("article_id = ? AND user_id = ?", article.ID, actor.ID).Delete(new(T))
	if res.Error != nil {
		return nil, ErrInternal(res.Error)
	}
	active := false
	if res.RowsAffected == 0 {
		if err := db.Omit(clause.Associations).Create(build(article.ID, actor.ID)).Error; err != nil && !isUniqueViolation(err) {
			return nil, ErrInternal(err)
		}
		active = true
	}

	var count int64
	if err := db.Model(new(T)).Where("article_id = ?", article.ID).Count(&count).Error; err != nil {
		return nil, ErrInternal(err)
	}
	return &ToggleResult{Active: active, Count: count}, nil
}

// AddComment 发表评论或回复，回复必须属于同一篇文章
func (p *Portal) AddComment(ctx context.Context, actor *models.User, articleRef string, in CommentInput) (*models.Comment, error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}
	r, err := parseRef(articleRef, models.KindArticle)
	if err != nil {
		return nil, err
	}
	parentID, err := parseOptionalID(in.ParentID.String(), models.KindComment)
	if err != nil {
		return nil, err
	}
	content, err := requireText("content", in.Content, 0)
	if err != nil {
		return nil, err
	}
	if err := p.gate.Authorize(actor, ActionAddComment, nil); err != nil {
		return nil, err
	}
	article, err := p.readableArticle(ctx, actor, r)
	if err != nil {
		return nil, err
	}

	db := p.conn(ctx)
	if parentID != nil {
		var parent models.Comment
		if err := db.First(&parent, *parentID).Error; err != nil {
			return nil, storageError(err, "Comment", in.ParentID.String())
		}
		if parent.ArticleID != article.ID {
			return nil, ErrValidation("parent_id", "must belong to the same article")
		}
	}

	comment := models.Comment{
		ArticleID:  article.ID,
		UserID:     actor.ID,
		ParentID:   parentID,
		Content:    content,
		IsApproved: true,
	}
	if err := db.Omit("Article", "User", "Parent").Create(&comment).Error; err != nil {
		return nil, ErrInternal(err)
	}
	comment.User = *actor
	return &comment, nil
}

// DeleteComment 删除评论及其全部回复
func (p *Portal) DeleteComment(ctx context.Context, actor *models.User, ref string) error {
	if err := requireUser(actor); err != nil {
		return err
	}
	id, err := parseID(ref, models.KindComment)
	if err != nil {
		return err
	}
	var comment models.Comment
	if err := p.conn(ctx).First(&comment, id).Error; err != nil {
		return storageError(err, "Comment", ref)
	}
	if err := p.gate.Authorize(actor, ActionDeleteComment, &comment.UserID); err != nil {
		return err
	}

	err = p.conn(ctx).Transaction(func(tx *gorm.DB) error {
		ids := []uint{comment.ID}
		frontier := []uint{comment.ID}
		for len(frontier) > 0 {
			var next []uint
			if err := tx.Model(&models.Comment{}).Where("parent_id IN ?", frontier).Pluck("id", &next).Error; err != nil {
				return err
			}
			ids = append(ids, next...)
			frontier = next
		}
		return tx.Where("id IN ?", ids).Delete(&models.Comment{}).Error
	})
	return storageError(err, "Comment", ref)
}

// ListComments 已通过的评论，按时间组织成回复树
func (p *Portal) ListComments(ctx context.Context, actor *models.User, articleRef string) ([]*CommentThread, error) {
	r, err := parseRef(articleRef, models.KindArticle)
	if err != nil {
		return nil, err
	}
	article, err := p.readableArticle(ctx, actor, r)
	if err != nil {
		return nil, err
	}

	var comments []models.Comment
	err = p.conn(ctx).Preload("User").
		Where("article_id = ? AND is_approved = ?", article.ID, true).
		Order("created_at ASC, id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, ErrInternal(err)
	}
	return buildThreads(comments), nil
}

// buildThreads 父评论不在列表中时回复挂到顶层
func buildThreads(comments []models.Comment) []*CommentThread {
	nodes := make(map[uint]*CommentThread, len(comments))
	for _, c := range comments {
		nodes[c.ID] = &CommentThread{Comment: c, Replies: []*CommentThread{}}
	}
	roots := []*CommentThread{}
	for _, c := range comments {
		node := nodes[c.ID]
		if c.ParentID != nil {
			if parent, ok := nodes[*c.ParentID]; ok {
				parent.Replies = append(parent.Replies, node)
				continue
			}
		}
		roots = append(roots, node)
	}
	return roots
}

// ListBookmarks 当前用户的收藏，最新在前
func (p *Portal) ListBookmarks(ctx context.Context, actor *models.User) ([]models.Bookmark, error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}
	var bookmarks []models.Bookmark
	err := p.conn(ctx).
		Preload("Article").Preload("Article.Author").Preload("Article.Category").
		Where("user_id = ?", actor.ID).
		Order("created_at DESC, id DESC").
		Find(&bookmarks).Error
	if err != nil {
		return nil, ErrInternal(err)
	}
	return bookmarks, nil
}
