package service

import (
	"context"
	"strings"

	"github.com/Luismorlan/conduit/engine"
	"github.com/Luismorlan/conduit/model"
	"github.com/Luismorlan/conduit/store"
	Logger "github.com/Luismorlan/conduit/utils/log"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type CreateArticleInput struct {
	Title       string
	Description string
	Body        string
	TagList     []string
}

// UpdateArticleInput fields left nil are not changed.
type UpdateArticleInput struct {
	Title       *string
	Description *string
	Body        *string
	TagList     *[]string
}

type ListArticlesInput struct {
	Tag       string
	Author    string
	Favorited string
	Limit     int
	Offset    int
}

func (s *Service) findArticle(ctx context.Context, slug string) (*store.ArticleRecord, error) {
	rec, err := s.store.FindArticle(ctx, slug)
	if errors.Is(err, store.ErrNotFound) {
		return nil, notFound("Article not found")
	}
	if err != nil {
		return nil, errors.Wrapf(err, "find article %s", slug)
	}
	return rec, nil
}

func (s *Service) GetArticle(ctx context.Context, slug string, viewer *model.User) (*model.ArticleView, error) {
	rec, err := s.findArticle(ctx, slug)
	if err != nil {
		return nil, err
	}
	return ProjectArticle(rec, viewer), nil
}

func (s *Service) CreateArticle(ctx context.Context, viewer *model.User, input CreateArticleInput) (*model.ArticleView, error) {
	if err := requireViewer(viewer); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, badRequest("Title is required")
	}

	slug := model.Slugify(input.Title)
	if _, err := s.store.FindArticle(ctx, slug); err == nil {
		return nil, conflict("Article with this slug already exists")
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, errors.Wrapf(err, "find article %s", slug)
	}

	article := &model.Article{
		Id:          s.newId(),
		Slug:        slug,
		Title:       input.Title,
		Description: input.Description,
		Body:        input.Body,
		TagList:     model.EncodeTagList(input.TagList),
		AuthorID:    viewer.Id,
	}
	if err := s.store.CreateArticle(ctx, article); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, conflict("Article with this slug already exists")
		}
		return nil, errors.Wrap(err, "create article")
	}

	Logger.Log.WithFields(logrus.Fields{"author": viewer.Id, "slug": slug}).Info("article created")
	s.publish(engine.TOPIC_ARTICLE_EVENT, engine.EventArticleCreated, viewer.Id, article.Id)

	rec := &store.ArticleRecord{Article: *article, Author: *viewer, FavoritedBy: model.NewIDSet()}
	return ProjectArticle(rec, viewer), nil
}

func (s *Service) UpdateArticle(ctx context.Context, viewer *model.User, slug string, input UpdateArticleInput) (*model.ArticleView, error) {
	if err := requireViewer(viewer); err != nil {
		return nil, err
	}
	rec, err := s.findArticle(ctx, slug)
	if err != nil {
		return nil, err
	}
	if rec.Article.AuthorID != viewer.Id {
		return nil, forbidden("You are not allowed to update this article")
	}

	article := rec.Article
	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, badRequest("Title must not be empty")
		}
		newSlug := model.Slugify(*input.Title)
		if newSlug != slug {
			if _, err := s.store.FindArticle(ctx, newSlug); err == nil {
				return nil, conflict("Article with this title already exists")
			} else if !errors.Is(err, store.ErrNotFound) {
				return nil, errors.Wrapf(err, "find article %s", newSlug)
			}
		}
		article.Title = *input.Title
		article.Slug = newSlug
	}
	if input.Description != nil {
		article.Description = *input.Description
	}
	if input.Body != nil {
		article.Body = *input.Body
	}
	if input.TagList != nil {
		article.TagList = model.EncodeTagList(*input.TagList)
	}
	article.UpdatedAt = s.now()

	if err := s.store.UpdateArticle(ctx, &article, slug); err != nil {
		switch {
		case errors.Is(err, store.ErrDuplicate):
			return nil, conflict("Article with this title already exists")
		case errors.Is(err, store.ErrNotFound):
			return nil, notFound("Article not found")
		}
		return nil, errors.Wrapf(err, "update article %s", slug)
	}

	Logger.Log.WithFields(logrus.Fields{"author": viewer.Id, "slug": article.Slug, "previous_slug": slug}).Info("article updated")
	s.publish(engine.TOPIC_ARTICLE_EVENT, engine.EventArticleUpdated, viewer.Id, article.Id)

	rec.Article = article
	return ProjectArticle(rec, viewer), nil
}

// DeleteArticle returns the article as it was right before deletion.
func (s *Service) DeleteArticle(ctx context.Context, viewer *model.User, slug string) (*model.ArticleView, error) {
	if err := requireViewer(viewer); err != nil {
		return nil, err
	}
	rec, err := s.findArticle(ctx, slug)
	if err != nil {
		return nil, err
	}
	if rec.Article.AuthorID != viewer.Id {
		return nil, forbidden("You are not allowed to delete this article")
	}

	if err := s.store.DeleteArticle(ctx, rec.Article.Id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFound("Article not found")
		}
		return nil, errors.Wrapf(err, "delete article %s", slug)
	}

	Logger.Log.WithFields(logrus.Fields{"author": viewer.Id, "slug": slug}).Info("article deleted")
	s.publish(engine.TOPIC_ARTICLE_EVENT, engine.EventArticleDeleted, viewer.Id, rec.Article.Id)

	return ProjectArticle(rec, viewer), nil
}

// ListArticles filters, orders and paginates articles. ArticlesCount is always
// the number of matching articles; totalPages follows the configured basis.
func (s *Service) ListArticles(ctx context.Context, input ListArticlesInput, viewer *model.User) (*model.ArticleList, error) {
	page := model.NewPage(input.Limit, input.Offset, s.config.DefaultPageLimit)
	filter := store.ArticleFilter{
		Tag:                 input.Tag,
		AuthorUsername:      input.Author,
		FavoritedByUsername: input.Favorited,
	}

	records, err := s.store.FindArticles(ctx, filter, page)
	if err != nil {
		return nil, errors.Wrap(err, "find articles")
	}
	matching, err := s.store.CountArticles(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "count articles")
	}

	basis := matching
	if s.config.CountBasis == CountGlobal {
		if basis, err = s.store.CountArticles(ctx, store.ArticleFilter{}); err != nil {
			return nil, errors.Wrap(err, "count all articles")
		}
	}

	articles := make([]*model.ArticleView, 0, len(records))
	for _, rec := range records {
		articles = append(articles, ProjectArticle(rec, viewer))
	}
	return &model.ArticleList{
		Articles:      articles,
		ArticlesCount: matching,
		Pagination:    model.NewPagination(page, basis),
	}, nil
}
