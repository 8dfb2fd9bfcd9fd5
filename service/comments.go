package service

import (
	"context"
	"strings"

	"github.com/Luismorlan/conduit/model"
	"github.com/Luismorlan/conduit/store"
	Logger "github.com/Luismorlan/conduit/utils/log"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const commentDeletedMessage = "Comment deleted"

func (s *Service) CreateComment(ctx context.Context, viewer *model.User, slug string, body string) (*model.CommentView, error) {
	if err := requireViewer(viewer); err != nil {
		return nil, err
	}
	if strings.TrimSpace(body) == "" {
		return nil, badRequest("Comment body is required")
	}
	article, err := s.findArticle(ctx, slug)
	if err != nil {
		return nil, err
	}

	comment := &model.Comment{
		Id:        s.newId(),
		Body:      body,
		AuthorID:  viewer.Id,
		ArticleID: article.Article.Id,
	}
	if err := s.store.CreateComment(ctx, comment); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFound("Article not found")
		}
		return nil, errors.Wrap(err, "create comment")
	}

	Logger.Log.WithFields(logrus.Fields{"author": viewer.Id, "slug": slug, "comment": comment.Id}).Info("comment created")
	return ProjectComment(&store.CommentRecord{Comment: *comment, Author: *viewer}), nil
}

// ListComments returns the comments of an article, oldest first.
func (s *Service) ListComments(ctx context.Context, slug string) ([]*model.CommentView, error) {
	article, err := s.findArticle(ctx, slug)
	if err != nil {
		return nil, err
	}
	records, err := s.store.FindComments(ctx, article.Article.Id)
	if err != nil {
		return nil, errors.Wrapf(err, "find comments of %s", slug)
	}

	comments := make([]*model.CommentView, 0, len(records))
	for _, rec := range records {
		comments = append(comments, ProjectComment(rec))
	}
	return comments, nil
}

// DeleteComment lets the comment's author or the article's author remove a
// comment.
func (s *Service) DeleteComment(ctx context.Context, viewer *model.User, slug string, commentId string) (*model.DeletedComment, error) {
	if err := requireViewer(viewer); err != nil {
		return nil, err
	}
	article, err := s.findArticle(ctx, slug)
	if err != nil {
		return nil, err
	}
	comment, err := s.store.FindComment(ctx, commentId)
	if errors.Is(err, store.ErrNotFound) {
		return nil, notFound("Comment not found")
	}
	if err != nil {
		return nil, errors.Wrapf(err, "find comment %s", commentId)
	}
	if comment.ArticleID != article.Article.Id {
		return nil, badRequest("Comment does not belong to article %s", slug)
	}
	if comment.AuthorID != viewer.Id && article.Article.AuthorID != viewer.Id {
		return nil, forbidden("You are not allowed to delete this comment")
	}

	if err := s.store.DeleteComment(ctx, commentId); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFound("Comment not found")
		}
		return nil, errors.Wrapf(err, "delete comment %s", commentId)
	}

	Logger.Log.WithFields(logrus.Fields{"user": viewer.Id, "slug": slug, "comment": commentId}).Info("comment deleted")
	return &model.DeletedComment{Message: commentDeletedMessage, Slug: slug}, nil
}
