package models

import (
	"newsdesk/internal/utils"
	"time"

	"gorm.io/gorm"
)

type Category struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	GlobalID    string    `gorm:"-" json:"global_id"`
	Name        string    `gorm:"size:100;not null;uniqueIndex" json:"name"`
	Slug        string    `gorm:"size:120;not null;uniqueIndex" json:"slug"`
	Description string    `gorm:"type:text" json:"description"`
	Image       string    `json:"image"`
	ParentID    *uint     `gorm:"index" json:"parent_id"` // 顶级分类为空
	Parent      *Category `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// 非数据库字段，详情查询时填充
	Children []Category `gorm:"-" json:"children,omitempty"`
}

// IsSubcategory 是否为子分类
func (c *Category) IsSubcategory() bool {
	return c.ParentID != nil
}

func (c *Category) AfterFind(tx *gorm.DB) error {
	c.GlobalID = utils.EncodeGlobalID(KindCategory, c.ID)
	return nil
}

func (c *Category) AfterCreate(tx *gorm.DB) error {
	return c.AfterFind(tx)
}
