package models

import (
	"newsdesk/internal/utils"
	"time"

	"gorm.io/gorm"
)

type ArticleStatus string

const (
	StatusDraft     ArticleStatus = "draft"
	StatusPublished ArticleStatus = "published"
)

func (s ArticleStatus) Valid() bool {
	return s == StatusDraft || s == StatusPublished
}

type Article struct {
	ID            uint          `gorm:"primaryKey" json:"id"`
	GlobalID      string        `gorm:"-" json:"global_id"`
	Title         string        `gorm:"size:200;not null" json:"title"`
	Slug          string        `gorm:"size:220;not null;uniqueIndex" json:"slug"`
	Summary       string        `gorm:"size:500" json:"summary"`
	Content       string        `gorm:"type:text;not null" json:"content"`
	FeaturedImage string        `json:"featured_image"`
	AuthorID      uint          `gorm:"not null;index" json:"author_id"`
	Author        User          `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
	CategoryID    uint          `gorm:"not null;index" json:"category_id"`
	Category      Category      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"category"`
	Tags          []Tag         `gorm:"many2many:article_tags;constraint:OnDelete:CASCADE;" json:"tags"`
	Status        ArticleStatus `gorm:"size:10;not null;default:'draft';index" json:"status"`
	IsFeatured    bool          `gorm:"default:false;index" json:"is_featured"`
	ViewsCount    int64         `gorm:"not null;default:0" json:"views_count"` // 只增不减
	PublishedAt   *time.Time    `gorm:"index" json:"published_at"`             // 首次发布时写入，之后不再清空
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`

	// 非数据库字段，用于查询时填充
	LikesCount    int64  `gorm:"-" json:"likes_count"`
	CommentsCount int64  `gorm:"-" json:"comments_count"`
	IsLiked       bool   `gorm:"-" json:"is_liked"`
	IsBookmarked  bool   `gorm:"-" json:"is_bookmarked"`
	ContentHTML   string `gorm:"-" json:"content_html,omitempty"`
}

func (a *Article) IsPublished() bool {
	return a.Status == StatusPublished
}

func (a *Article) AfterFind(tx *gorm.DB) error {
	a.GlobalID = utils.EncodeGlobalID(KindArticle, a.ID)
	return nil
}

func (a *Article) AfterCreate(tx *gorm.DB) error {
	return a.AfterFind(tx)
}
