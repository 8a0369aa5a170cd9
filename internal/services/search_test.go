package services

import (
	"fmt"
	"testing"
	"time"

	"newsdesk/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/clause"
)

func (f *fixture) story(author *models.User, category *models.Category, title, summary, content string, status models.ArticleStatus) *models.Article {
	f.t.Helper()
	a, err := f.portal.CreateArticle(f.ctx, author, ArticleInput{
		Title:      title,
		Summary:    summary,
		Content:    content,
		CategoryID: idOf(category.ID),
		Status:     string(status),
	})
	require.NoError(f.t, err)
	return a
}

func hitTitles(res *SearchResult) []string {
	titles := make([]string, len(res.Hits))
	for i, h := range res.Hits {
		titles[i] = h.Title
	}
	return titles
}

func TestSearchRanksTitleMatchesFirst(t *testing.T) {
	f := newFixture(t)
	editor := f.user("editor", models.RoleEditor)
	news := f.category("News", nil)

	f.story(editor, news, "Ocean report", "Fisheries", "Warming seas reflect climate climate climate trends", models.StatusPublished)
	f.tick(time.Minute)
	f.story(editor, news, "Climate summit opens", "Leaders meet", "Delegates arrive", models.StatusPublished)
	f.tick(time.Minute)
	f.story(editor, news, "Budget vote", "Climate money", "Parliament debates", models.StatusPublished)
	f.tick(time.Minute)
	f.story(editor, news, "Climate draft", "Unpublished", "climate", models.StatusDraft)
	f.story(editor, news, "Football", "Cup", "Nothing relevant", models.StatusPublished)

	res, err := f.portal.SearchArticles(f.ctx, nil, SearchInput{Term: "climate"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Climate summit opens", "Budget vote", "Ocean report"}, hitTitles(res))
	assert.Equal(t, int64(3), res.Total)
	assert.Greater(t, res.Hits[0].Score, res.Hits[1].Score)
	assert.Greater(t, res.Hits[1].Score, res.Hits[2].Score)
}

func TestSearchRequiresEveryTerm(t *testing.T) {
	f := newFixture(t)
	editor := f.user("editor", models.RoleEditor)
	news := f.category("News", nil)
	f.story(editor, news, "Solar farms expand", "Energy", "The grid adapts", models.StatusPublished)
	f.story(editor, news, "Solar eclipse", "Astronomy", "Sky watchers", models.StatusPublished)

	res, err := f.portal.SearchArticles(f.ctx, nil, SearchInput{Term: "solar GRID"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Solar farms expand"}, hitTitles(res))

	res, err = f.portal.SearchArticles(f.ctx, nil, SearchInput{Term: "  "})
	require.NoError(t, err)
	assert.Empty(t, res.Hits)
	assert.Zero(t, res.Total)
}

func TestSearchTieBreaksByRecency(t *testing.T) {
	f := newFixture(t)
	editor := f.user("editor", models.RoleEditor)
	news := f.category("News", nil)
	sports := f.category("Sports", nil)

	f.story(editor, news, "Storm warning", "Weather", "Stay inside", models.StatusPublished)
	f.tick(time.Hour)
	newer := f.story(editor, sports, "Storm delays match", "Weather", "Stay inside", models.StatusPublished)

	res, err := f.portal.SearchArticles(f.ctx, nil, SearchInput{Term: "storm"})
	require.NoError(t, err)
	require.Len(t, res.Hits, 2)
	assert.Equal(t, newer.ID, res.Hits[0].ID)

	res, err = f.portal.SearchArticles(f.ctx, nil, SearchInput{Term: "storm", Category: "news"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Storm warning"}, hitTitles(res))

	res, err = f.portal.SearchArticles(f.ctx, nil, SearchInput{Term: "storm", Page: Page{Page: 2, PerPage: 1}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Storm warning"}, hitTitles(res))
	assert.Equal(t, 2, res.TotalPages)

	res, err = f.portal.SearchArticles(f.ctx, nil, SearchInput{Term: "storm", Page: Page{Page: 5, PerPage: 1}})
	require.NoError(t, err)
	assert.Empty(t, res.Hits)
}

func TestSearchTreatsWildcardsLiterally(t *testing.T) {
	f := newFixture(t)
	editor := f.user("editor", models.RoleEditor)
	news := f.category("News", nil)
	f.story(editor, news, "Rates rise", "Banks", "Inflation at 5", models.StatusPublished)

	res, err := f.portal.SearchArticles(f.ctx, nil, SearchInput{Term: "%"})
	require.NoError(t, err)
	assert.Empty(t, res.Hits)
}

func TestSearchKeepsTitleMatchesBeyondCandidateLimit(t *testing.T) {
	f := newFixture(t)
	editor := f.user("editor", models.RoleEditor)
	news := f.category("News", nil)
	f.story(editor, news, "Climate report", "Annual figures", "Emissions fell", models.StatusPublished)

	newer := f.clock.Add(time.Hour)
	rows := make([]models.Article, maxSearchCandidates+1)
	for i := range rows {
		rows[i] = models.Article{
			Title:       fmt.Sprintf("Other %d", i),
			Slug:        fmt.Sprintf("other-%d", i),
			Summary:     "Weekly digest",
			Content:     "A note on climate",
			AuthorID:    editor.ID,
			CategoryID:  news.ID,
			Status:      models.StatusPublished,
			PublishedAt: &newer,
		}
	}
	require.NoError(t, f.db.Omit(clause.Associations).CreateInBatches(&rows, 200).Error)

	res, err := f.portal.SearchArticles(f.ctx, nil, SearchInput{Term: "climate"})
	require.NoError(t, err)
	assert.Equal(t, int64(maxSearchCandidates+2), res.Total)
	require.NotEmpty(t, res.Hits)
	assert.Equal(t, "Climate report", res.Hits[0].Title)
}

func TestSearchFoldsNonASCIICase(t *testing.T) {
	f := newFixture(t)
	editor := f.user("editor", models.RoleEditor)
	news := f.category("News", nil)
	f.story(editor, news, "Été à Paris", "Chaleur", "Canicule", models.StatusPublished)
	f.story(editor, news, "Summer in Paris", "Heat", "Heatwave", models.StatusPublished)

	res, err := f.portal.SearchArticles(f.ctx, nil, SearchInput{Term: "été paris"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Été à Paris"}, hitTitles(res))
	assert.Equal(t, int64(1), res.Total)
}
