package services

import (
	"testing"

	"newsdesk/internal/models"
	"newsdesk/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldStates(t *testing.T) {
	type patch struct {
		Title Field[string] `json:"title"`
		Bio   Field[string] `json:"bio"`
	}

	p := decode[patch](t, `{"title": "Hello", "bio": null}`)
	assert.Equal(t, Val("Hello"), p.Title)
	assert.Equal(t, Null[string](), p.Bio)

	p = decode[patch](t, `{}`)
	assert.False(t, p.Title.Set)
	ok, err := p.Title.present("title")
	assert.False(t, ok)
	assert.NoError(t, err)

	_, err = Null[string]().present("title")
	e := requireKind(t, err, KindValidation)
	assert.Equal(t, "title", e.Field)
}

func TestIDUnmarshal(t *testing.T) {
	type body struct {
		CategoryID ID   `json:"category_id"`
		TagIDs     []ID `json:"tag_ids"`
	}
	gid := utils.EncodeGlobalID(models.KindTag, 7)

	b := decode[body](t, `{"category_id": 12, "tag_ids": [3, "`+gid+`"]}`)
	assert.Equal(t, ID("12"), b.CategoryID)
	assert.Equal(t, []ID{"3", ID(gid)}, b.TagIDs)

	b = decode[body](t, `{"category_id": null}`)
	assert.Empty(t, b.CategoryID)
}

func TestParseRef(t *testing.T) {
	r, err := parseRef("42", models.KindArticle)
	require.NoError(t, err)
	assert.Equal(t, Ref{ID: 42}, r)

	r, err = parseRef(utils.EncodeGlobalID(models.KindArticle, 9), models.KindArticle)
	require.NoError(t, err)
	assert.Equal(t, Ref{ID: 9}, r)

	r, err = parseRef("city-council-votes", models.KindArticle)
	require.NoError(t, err)
	assert.Equal(t, Ref{Slug: "city-council-votes"}, r)

	_, err = parseRef(utils.EncodeGlobalID(models.KindUser, 9), models.KindArticle)
	e := requireKind(t, err, KindTypeMismatch)
	assert.Equal(t, models.KindArticle, e.Expected)
	assert.Equal(t, models.KindUser, e.Got)

	_, err = parseRef("", models.KindArticle)
	requireKind(t, err, KindValidation)
}

func TestParseID(t *testing.T) {
	id, err := parseID("5", models.KindTag)
	require.NoError(t, err)
	assert.Equal(t, uint(5), id)

	_, err = parseID("not-an-id", models.KindTag)
	requireKind(t, err, KindValidation)

	_, err = parseID("0", models.KindTag)
	requireKind(t, err, KindValidation)

	got, err := parseOptionalID("", models.KindTag)
	require.NoError(t, err)
	assert.Nil(t, got)
}
