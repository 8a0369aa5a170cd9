package models

import (
	"time"
)

// Bookmark 收藏模型 - 用户收藏文章
type Bookmark struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ArticleID uint      `gorm:"not null;index;uniqueIndex:idx_bookmark_article_user" json:"article_id"`
	Article   *Article  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"article,omitempty"`
	UserID    uint      `gorm:"not null;index;uniqueIndex:idx_bookmark_article_user" json:"user_id"`
	User      *User     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}
