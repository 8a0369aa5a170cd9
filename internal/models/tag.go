package models

import (
	"newsdesk/internal/utils"
	"time"

	"gorm.io/gorm"
)

type Tag struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	GlobalID  string    `gorm:"-" json:"global_id"`
	Name      string    `gorm:"size:50;not null;uniqueIndex" json:"name"`
	Slug      string    `gorm:"size:60;not null;uniqueIndex" json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}

func (t *Tag) AfterFind(tx *gorm.DB) error {
	t.GlobalID = utils.EncodeGlobalID(KindTag, t.ID)
	return nil
}

func (t *Tag) AfterCreate(tx *gorm.DB) error {
	return t.AfterFind(tx)
}
