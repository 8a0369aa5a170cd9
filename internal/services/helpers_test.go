package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"newsdesk/internal/db"
	"newsdesk/internal/models"
	"newsdesk/internal/utils"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	t      *testing.T
	ctx    context.Context
	db     *gorm.DB
	portal *Portal
	clock  time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	conn, err := db.Open("sqlite", ":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Migrate(conn))
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			sqlDB.Close()
		}
	})

	f := &fixture{
		t:     t,
		ctx:   context.Background(),
		db:    conn,
		clock: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	f.portal = NewPortal(conn, WithClock(func() time.Time { return f.clock }))
	return f
}

// tick 推进测试时钟
func (f *fixture) tick(d time.Duration) {
	f.clock = f.clock.Add(d)
}

func (f *fixture) user(username string, role models.Role) *models.User {
	f.t.Helper()
	u := models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "x",
		Role:     role,
	}
	require.NoError(f.t, f.db.Create(&u).Error)
	return &u
}

func (f *fixture) category(name string, parent *models.Category) *models.Category {
	f.t.Helper()
	c := models.Category{Name: name, Slug: utils.Slugify(name)}
	if parent != nil {
		c.ParentID = &parent.ID
	}
	require.NoError(f.t, f.db.Create(&c).Error)
	return &c
}

func (f *fixture) tag(name string) *models.Tag {
	f.t.Helper()
	tag := models.Tag{Name: name, Slug: utils.Slugify(name)}
	require.NoError(f.t, f.db.Create(&tag).Error)
	return &tag
}

func (f *fixture) article(author *models.User, category *models.Category, title string, status models.ArticleStatus, tags ...*models.Tag) *models.Article {
	f.t.Helper()
	in := ArticleInput{
		Title:      title,
		Summary:    "summary of " + title,
		Content:    "content of " + title,
		CategoryID: idOf(category.ID),
		Status:     string(status),
	}
	for _, tag := range tags {
		in.TagIDs = append(in.TagIDs, idOf(tag.ID))
	}
	a, err := f.portal.CreateArticle(f.ctx, author, in)
	require.NoError(f.t, err)
	return a
}

func (f *fixture) count(model interface{}, query string, args ...interface{}) int64 {
	f.t.Helper()
	var n int64
	require.NoError(f.t, f.db.Model(model).Where(query, args...).Count(&n).Error)
	return n
}

func idOf(id uint) ID {
	return ID(utils.StringFromUint(id))
}

func ref(id uint) string {
	return utils.StringFromUint(id)
}

// decode 用 JSON 构造补丁，保留 null 和缺省的区别
func decode[T any](t *testing.T, body string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(body), &v))
	return v
}

func requireKind(t *testing.T, err error, kind Kind) *Error {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, kind, KindOf(err), err.Error())
	var e *Error
	require.True(t, errors.As(err, &e))
	return e
}
