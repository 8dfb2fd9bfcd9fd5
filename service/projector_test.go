package service

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/Luismorlan/conduit/model"
	"github.com/Luismorlan/conduit/store"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func articleRecord(favoritedBy ...string) *store.ArticleRecord {
	bio := "writes things"
	created := time.Date(2021, 8, 8, 0, 0, 0, 0, time.UTC)
	return &store.ArticleRecord{
		Article: model.Article{
			Id:          "a1",
			Slug:        "hello-world",
			Title:       "Hello World",
			Description: "desc",
			Body:        "body",
			TagList:     model.EncodeTagList([]string{"go", "web"}),
			CreatedAt:   created,
			UpdatedAt:   created,
			AuthorID:    "alice",
		},
		Author:      model.User{Id: "alice", Username: "alice", Bio: &bio},
		FavoritedBy: model.NewIDSet(favoritedBy...),
	}
}

func TestProjectArticle(t *testing.T) {
	rec := articleRecord("bob", "carol")
	bio := "writes things"

	anonymous := ProjectArticle(rec, nil)
	assert.Nil(t, anonymous.Favorited)
	assert.Equal(t, 2, anonymous.FavoritesCount)

	favorited := true
	want := &model.ArticleView{
		Slug:           "hello-world",
		Title:          "Hello World",
		Description:    "desc",
		Body:           "body",
		TagList:        []string{"go", "web"},
		CreatedAt:      rec.Article.CreatedAt,
		UpdatedAt:      rec.Article.UpdatedAt,
		Favorited:      &favorited,
		FavoritesCount: 2,
		Author:         model.Author{Username: "alice", Bio: &bio},
	}
	if diff := cmp.Diff(want, ProjectArticle(rec, &model.User{Id: "bob"})); diff != "" {
		t.Errorf("ProjectArticle mismatch (-want +got):\n%s", diff)
	}

	notFavorited := ProjectArticle(rec, &model.User{Id: "alice"})
	require.NotNil(t, notFavorited.Favorited)
	assert.False(t, *notFavorited.Favorited)
}

func TestProjectArticleEmptyTags(t *testing.T) {
	rec := articleRecord()
	rec.Article.TagList = nil
	view := ProjectArticle(rec, nil)
	assert.Equal(t, []string{}, view.TagList)
	assert.Equal(t, 0, view.FavoritesCount)
}

func TestProjectProfile(t *testing.T) {
	rec := &store.ProfileRecord{User: model.User{Id: "bob", Username: "bob"}, FollowedBy: model.NewIDSet("alice")}

	assert.False(t, ProjectProfile(rec, nil).Following)
	assert.True(t, ProjectProfile(rec, &model.User{Id: "alice"}).Following)
	assert.False(t, ProjectProfile(rec, &model.User{Id: "bob"}).Following)
}

func TestProjectionWireShape(t *testing.T) {
	article, err := json.Marshal(ProjectArticle(articleRecord(), nil))
	require.Nil(t, err)
	assert.NotContains(t, string(article), `"favorited"`)
	assert.Contains(t, string(article), `"favoritesCount":0`)
	assert.Contains(t, string(article), `"tagList":["go","web"]`)

	profile, err := json.Marshal(ProjectProfile(&store.ProfileRecord{User: model.User{Username: "bob"}}, nil))
	require.Nil(t, err)
	assert.Contains(t, string(profile), `"following":false`)
}
