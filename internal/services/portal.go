package services

import (
	"context"
	"newsdesk/internal/models"
	"newsdesk/internal/utils"
	"time"

	"gorm.io/gorm"
)

const (
	defaultPerPage = 30
	maxPerPage     = 100
)

// Portal 是唯一的读写入口：校验输入、解析 ID、询问 Gate、执行事务
type Portal struct {
	db   *gorm.DB
	gate Gate
	now  func() time.Time
}

type Option func(*Portal)

// WithClock 替换时间来源，测试用
func WithClock(now func() time.Time) Option {
	return func(p *Portal) { p.now = now }
}

func NewPortal(db *gorm.DB, opts ...Option) *Portal {
	p := &Portal{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Portal) conn(ctx context.Context) *gorm.DB {
	return p.db.WithContext(ctx)
}

// requireUser 未登录时返回 Unauthenticated
func requireUser(actor *models.User) error {
	if actor == nil {
		return ErrUnauthenticated("")
	}
	return nil
}

// Ref 解析后的标识：数字 ID 或 slug（用户为用户名）
type Ref struct {
	ID   uint
	Slug string
}

func (r Ref) String() string {
	if r.ID != 0 {
		return utils.StringFromUint(r.ID)
	}
	return r.Slug
}

// parseID 只接受数字 ID 或全局 ID
func parseID(raw, kind string) (uint, error) {
	if id, ok := utils.ParseNumericID(raw); ok {
		return id, nil
	}
	got, id, err := utils.DecodeGlobalID(raw)
	if err != nil {
		return 0, ErrValidation("id", "malformed identifier")
	}
	if got != kind {
		return 0, ErrTypeMismatch(kind, got)
	}
	return id, nil
}

// parseRef 接受数字 ID、全局 ID 或 slug
func parseRef(raw, kind string) (Ref, error) {
	if raw == "" {
		return Ref{}, ErrValidation("id", "required")
	}
	if id, ok := utils.ParseNumericID(raw); ok {
		return Ref{ID: id}, nil
	}
	if got, id, err := utils.DecodeGlobalID(raw); err == nil {
		if got != kind {
			return Ref{}, ErrTypeMismatch(kind, got)
		}
		return Ref{ID: id}, nil
	}
	return Ref{Slug: raw}, nil
}

// parseOptionalID 空串返回 nil
func parseOptionalID(raw, kind string) (*uint, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := parseID(raw, kind)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

type Page struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
}

func (pg Page) normalize() Page {
	if pg.Page < 1 {
		pg.Page = 1
	}
	if pg.PerPage < 1 {
		pg.PerPage = defaultPerPage
	}
	if pg.PerPage > maxPerPage {
		pg.PerPage = maxPerPage
	}
	return pg
}

func (pg Page) offset() int {
	return (pg.Page - 1) * pg.PerPage
}

func totalPages(total int64, perPage int) int {
	pages := int((total + int64(perPage) - 1) / int64(perPage))
	if pages == 0 {
		pages = 1
	}
	return pages
}
