package models

import (
	"time"
)

// Like 点赞 - 每个用户对每篇文章最多一条
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ArticleID uint      `gorm:"not null;index;uniqueIndex:idx_like_article_user" json:"article_id"`
	Article   *Article  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	UserID    uint      `gorm:"not null;index;uniqueIndex:idx_like_article_user" json:"user_id"`
	User      *User     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}
