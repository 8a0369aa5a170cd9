package models

import (
	"newsdesk/internal/utils"
	"time"

	"gorm.io/gorm"
)

type Role string

const (
	RoleReader     Role = "reader"
	RoleJournalist Role = "journalist"
	RoleEditor     Role = "editor"
)

// Valid 是否为已知角色
func (r Role) Valid() bool {
	switch r {
	case RoleReader, RoleJournalist, RoleEditor:
		return true
	}
	return false
}

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	GlobalID     string    `gorm:"-" json:"global_id"`
	Username     string    `gorm:"uniqueIndex;size:150;not null" json:"username"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	Password     string    `gorm:"not null" json:"-"` // bcrypt hash
	Role         Role      `gorm:"size:10;default:'reader';not null;index" json:"role"`
	FirstName    string    `gorm:"size:150" json:"first_name"`
	LastName     string    `gorm:"size:150" json:"last_name"`
	Bio          string    `gorm:"type:text" json:"bio"`
	ProfileImage string    `json:"profile_image"` // 媒体存储中的路径或 URL
	Website      string    `json:"website"`
	Twitter      string    `gorm:"size:15" json:"twitter"`
	Facebook     string    `json:"facebook"`
	Instagram    string    `gorm:"size:30" json:"instagram"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	// 硬删除：文章、评论、点赞、收藏随用户级联删除
}

func (u *User) IsEditor() bool     { return u.Role == RoleEditor }
func (u *User) IsJournalist() bool { return u.Role == RoleJournalist }

func (u *User) AfterFind(tx *gorm.DB) error {
	u.GlobalID = utils.EncodeGlobalID(KindUser, u.ID)
	return nil
}

func (u *User) AfterCreate(tx *gorm.DB) error {
	return u.AfterFind(tx)
}
