package services

import (
	"testing"

	"newsdesk/internal/models"
	"newsdesk/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCategory(t *testing.T) {
	f := newFixture(t)
	editor := f.user("editor", models.RoleEditor)
	journalist := f.user("journalist", models.RoleJournalist)

	tech, err := f.portal.CreateCategory(f.ctx, editor, CategoryInput{Name: "Science & Tech", Description: "All things tech"})
	require.NoError(t, err)
	assert.Equal(t, "science-tech", tech.Slug)
	assert.False(t, tech.IsSubcategory())

	ai, err := f.portal.CreateCategory(f.ctx, editor, CategoryInput{Name: "AI", ParentID: ID(tech.GlobalID)})
	require.NoError(t, err)
	require.NotNil(t, ai.ParentID)
	assert.Equal(t, tech.ID, *ai.ParentID)

	_, err = f.portal.CreateCategory(f.ctx, journalist, CategoryInput{Name: "Gossip"})
	requireKind(t, err, KindPermissionDenied)

	_, err = f.portal.CreateCategory(f.ctx, editor, CategoryInput{Name: "AI"})
	e := requireKind(t, err, KindConflict)
	assert.Equal(t, "categories.name", e.Constraint)

	_, err = f.portal.CreateCategory(f.ctx, editor, CategoryInput{Name: "Other", Slug: "ai"})
	e = requireKind(t, err, KindConflict)
	assert.Equal(t, "categories.slug", e.Constraint)

	_, err = f.portal.CreateCategory(f.ctx, editor, CategoryInput{Name: "Orphan", ParentID: "999"})
	requireKind(t, err, KindNotFound)

	_, err = f.portal.CreateCategory(f.ctx, editor, CategoryInput{Name: " "})
	requireKind(t, err, KindValidation)
}

func TestGetCategoryWithChildren(t *testing.T) {
	f := newFixture(t)
	sports := f.category("Sports", nil)
	f.category("Tennis", sports)
	f.category("Football", sports)

	got, err := f.portal.GetCategory(f.ctx, "sports")
	require.NoError(t, err)
	require.Len(t, got.Children, 2)
	assert.Equal(t, "Football", got.Children[0].Name)

	got, err = f.portal.GetCategory(f.ctx, sports.GlobalID)
	require.NoError(t, err)
	assert.Equal(t, sports.ID, got.ID)

	_, err = f.portal.GetCategory(f.ctx, "nope")
	requireKind(t, err, KindNotFound)

	_, err = f.portal.GetCategory(f.ctx, utils.EncodeGlobalID(models.KindTag, sports.ID))
	requireKind(t, err, KindTypeMismatch)

	all, err := f.portal.ListCategories(f.ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Football", all[0].Name)
}

func TestUpdateCategoryRejectsCycles(t *testing.T) {
	f := newFixture(t)
	editor := f.user("editor", models.RoleEditor)
	top := f.category("Top", nil)
	mid := f.category("Mid", top)
	leaf := f.category("Leaf", mid)

	_, err := f.portal.UpdateCategory(f.ctx, editor, ref(top.ID), decode[CategoryPatch](t, `{"parent_id": `+ref(leaf.ID)+`}`))
	e := requireKind(t, err, KindValidation)
	assert.Equal(t, "parent_id", e.Field)

	_, err = f.portal.UpdateCategory(f.ctx, editor, ref(top.ID), decode[CategoryPatch](t, `{"parent_id": `+ref(top.ID)+`}`))
	requireKind(t, err, KindValidation)

	moved, err := f.portal.UpdateCategory(f.ctx, editor, ref(leaf.ID), decode[CategoryPatch](t, `{"parent_id": null, "description": "now top level"}`))
	require.NoError(t, err)
	assert.Nil(t, moved.ParentID)
	assert.Equal(t, "now top level", moved.Description)

	renamed, err := f.portal.UpdateCategory(f.ctx, editor, "mid", decode[CategoryPatch](t, `{"name": "Middle", "slug": "Middle"}`))
	require.NoError(t, err)
	assert.Equal(t, "middle", renamed.Slug)

	_, err = f.portal.UpdateCategory(f.ctx, editor, "middle", decode[CategoryPatch](t, `{"name": "Top"}`))
	requireKind(t, err, KindConflict)

	_, err = f.portal.UpdateCategory(f.ctx, editor, "middle", decode[CategoryPatch](t, `{"name": null}`))
	requireKind(t, err, KindValidation)
}

func TestDeleteCategoryPolicy(t *testing.T) {
	f := newFixture(t)
	editor := f.user("editor", models.RoleEditor)
	journalist := f.user("journalist", models.RoleJournalist)
	news := f.category("News", nil)
	local := f.category("Local", news)
	archive := f.category("Archive", nil)
	a := f.article(journalist, news, "Town Hall", models.StatusPublished)

	requireKind(t, f.portal.DeleteCategory(f.ctx, journalist, ref(news.ID), DeleteCategoryInput{}), KindPermissionDenied)

	err := f.portal.DeleteCategory(f.ctx, editor, ref(news.ID), DeleteCategoryInput{})
	e := requireKind(t, err, KindConflict)
	assert.Equal(t, "category_in_use", e.Constraint)
	assert.Equal(t, int64(1), f.count(&models.Article{}, "id = ?", a.ID))

	err = f.portal.DeleteCategory(f.ctx, editor, ref(news.ID), DeleteCategoryInput{ReassignTo: idOf(local.ID)})
	requireKind(t, err, KindValidation)

	err = f.portal.DeleteCategory(f.ctx, editor, ref(news.ID), DeleteCategoryInput{ReassignTo: idOf(news.ID)})
	requireKind(t, err, KindValidation)

	require.NoError(t, f.portal.DeleteCategory(f.ctx, editor, "news", DeleteCategoryInput{ReassignTo: ID(archive.GlobalID)}))
	assert.Zero(t, f.count(&models.Category{}, "id = ?", news.ID))
	assert.Equal(t, int64(1), f.count(&models.Article{}, "id = ? AND category_id = ?", a.ID, archive.ID))
	assert.Equal(t, int64(1), f.count(&models.Category{}, "id = ? AND parent_id = ?", local.ID, archive.ID))

	empty := f.category("Empty", nil)
	require.NoError(t, f.portal.DeleteCategory(f.ctx, editor, ref(empty.ID), DeleteCategoryInput{}))
	requireKind(t, f.portal.DeleteCategory(f.ctx, editor, ref(empty.ID), DeleteCategoryInput{}), KindNotFound)
}

func TestTags(t *testing.T) {
	f := newFixture(t)
	journalist := f.user("journalist", models.RoleJournalist)
	reader := f.user("reader", models.RoleReader)

	tag, err := f.portal.CreateTag(f.ctx, journalist, TagInput{Name: "Climate Change"})
	require.NoError(t, err)
	assert.Equal(t, "climate-change", tag.Slug)

	_, err = f.portal.CreateTag(f.ctx, reader, TagInput{Name: "Nope"})
	requireKind(t, err, KindPermissionDenied)

	_, err = f.portal.CreateTag(f.ctx, journalist, TagInput{Name: "Climate Change"})
	e := requireKind(t, err, KindConflict)
	assert.Equal(t, "tags.name", e.Constraint)

	_, err = f.portal.CreateTag(f.ctx, journalist, TagInput{Name: "This tag name is far too long to fit in fifty chars"})
	requireKind(t, err, KindValidation)

	got, err := f.portal.GetTag(f.ctx, "climate-change")
	require.NoError(t, err)
	assert.Equal(t, tag.ID, got.ID)

	got, err = f.portal.GetTag(f.ctx, tag.GlobalID)
	require.NoError(t, err)
	assert.Equal(t, tag.ID, got.ID)

	_, err = f.portal.CreateTag(f.ctx, journalist, TagInput{Name: "Analysis"})
	require.NoError(t, err)
	tags, err := f.portal.ListTags(f.ctx)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "Analysis", tags[0].Name)
}
