package models

import (
	"newsdesk/internal/utils"
	"time"

	"gorm.io/gorm"
)

type Comment struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	GlobalID   string    `gorm:"-" json:"global_id"`
	ArticleID  uint      `gorm:"not null;index" json:"article_id"`
	Article    *Article  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	UserID     uint      `gorm:"not null;index" json:"user_id"`
	User       User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	ParentID   *uint     `gorm:"index" json:"parent_id"` // Nullable for top-level comments
	Parent     *Comment  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	IsApproved bool      `gorm:"not null;default:true;index" json:"is_approved"` // 没有审核队列，默认通过
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (c *Comment) AfterFind(tx *gorm.DB) error {
	c.GlobalID = utils.EncodeGlobalID(KindComment, c.ID)
	return nil
}

func (c *Comment) AfterCreate(tx *gorm.DB) error {
	return c.AfterFind(tx)
}
