package service

import (
	"github.com/Luismorlan/conduit/model"
	"github.com/Luismorlan/conduit/store"
)

// Projection is pure: every field is derived from the record and the viewer,
// so all article and profile responses come out of these functions.

func ProjectAuthor(user model.User) model.Author {
	return model.Author{Username: user.Username, Bio: user.Bio, Image: user.Image}
}

// ProjectArticle leaves Favorited nil when there is no viewer.
func ProjectArticle(rec *store.ArticleRecord, viewer *model.User) *model.ArticleView {
	view := &model.ArticleView{
		Slug:           rec.Article.Slug,
		Title:          rec.Article.Title,
		Description:    rec.Article.Description,
		Body:           rec.Article.Body,
		TagList:        rec.Article.Tags(),
		CreatedAt:      rec.Article.CreatedAt,
		UpdatedAt:      rec.Article.UpdatedAt,
		FavoritesCount: rec.FavoritedBy.Len(),
		Author:         ProjectAuthor(rec.Author),
	}
	if viewer != nil {
		favorited := rec.FavoritedBy.Has(viewer.Id)
		view.Favorited = &favorited
	}
	return view
}

// ProjectProfile always resolves Following, false for anonymous viewers.
func ProjectProfile(rec *store.ProfileRecord, viewer *model.User) *model.Profile {
	return &model.Profile{
		Username:  rec.User.Username,
		Bio:       rec.User.Bio,
		Image:     rec.User.Image,
		Following: viewer != nil && rec.FollowedBy.Has(viewer.Id),
	}
}

func ProjectComment(rec *store.CommentRecord) *model.CommentView {
	return &model.CommentView{
		Id:        rec.Comment.Id,
		CreatedAt: rec.Comment.CreatedAt,
		UpdatedAt: rec.Comment.UpdatedAt,
		Body:      rec.Comment.Body,
		Author:    ProjectAuthor(rec.Author),
	}
}
