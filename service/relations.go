package service

import (
	"context"

	"github.com/Luismorlan/conduit/engine"
	"github.com/Luismorlan/conduit/model"
	"github.com/Luismorlan/conduit/store"
	Logger "github.com/Luismorlan/conduit/utils/log"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Follow edges are strict: following twice, unfollowing a user that is not
// followed, and following yourself are all rejected. Favorite edges are
// idempotent in both directions.

func (s *Service) findProfile(ctx context.Context, username string) (*store.ProfileRecord, error) {
	rec, err := s.store.FindProfile(ctx, store.ByUsername(username))
	if errors.Is(err, store.ErrNotFound) {
		return nil, notFound("User not found")
	}
	if err != nil {
		return nil, errors.Wrapf(err, "find profile %s", username)
	}
	return rec, nil
}

func (s *Service) Follow(ctx context.Context, viewer *model.User, username string) (*model.Profile, error) {
	if err := requireViewer(viewer); err != nil {
		return nil, err
	}
	target, err := s.findProfile(ctx, username)
	if err != nil {
		return nil, err
	}
	if target.User.Id == viewer.Id {
		return nil, badRequest("You cannot follow yourself")
	}
	if target.FollowedBy.Has(viewer.Id) {
		return nil, conflict("You are already following this user")
	}

	if err := s.store.Connect(ctx, model.EdgeFollows, viewer.Id, target.User.Id); err != nil {
		switch {
		case errors.Is(err, store.ErrEdgeExists):
			return nil, conflict("You are already following this user")
		case errors.Is(err, store.ErrNotFound):
			return nil, notFound("User not found")
		}
		return nil, errors.Wrapf(err, "follow %s", username)
	}

	Logger.Log.WithFields(logrus.Fields{"follower": viewer.Id, "followee": target.User.Id}).Info("user followed")
	s.publish(engine.TOPIC_RELATIONSHIP_EVENT, engine.EventFollowed, viewer.Id, target.User.Id)

	return s.GetProfile(ctx, username, viewer)
}

func (s *Service) Unfollow(ctx context.Context, viewer *model.User, username string) (*model.Profile, error) {
	if err := requireViewer(viewer); err != nil {
		return nil, err
	}
	target, err := s.findProfile(ctx, username)
	if err != nil {
		return nil, err
	}
	if target.User.Id == viewer.Id {
		return nil, badRequest("You cannot unfollow yourself")
	}
	if !target.FollowedBy.Has(viewer.Id) {
		return nil, conflict("You are not following this user")
	}

	if err := s.store.Disconnect(ctx, model.EdgeFollows, viewer.Id, target.User.Id); err != nil {
		if errors.Is(err, store.ErrEdgeMissing) {
			return nil, conflict("You are not following this user")
		}
		return nil, errors.Wrapf(err, "unfollow %s", username)
	}

	Logger.Log.WithFields(logrus.Fields{"follower": viewer.Id, "followee": target.User.Id}).Info("user unfollowed")
	s.publish(engine.TOPIC_RELATIONSHIP_EVENT, engine.EventUnfollowed, viewer.Id, target.User.Id)

	return s.GetProfile(ctx, username, viewer)
}

// Favorite is a no-op when the viewer already favorited the article.
func (s *Service) Favorite(ctx context.Context, viewer *model.User, slug string) (*model.ArticleView, error) {
	if err := requireViewer(viewer); err != nil {
		return nil, err
	}
	rec, err := s.findArticle(ctx, slug)
	if err != nil {
		return nil, err
	}
	if rec.FavoritedBy.Has(viewer.Id) {
		return ProjectArticle(rec, viewer), nil
	}

	err = s.store.Connect(ctx, model.EdgeFavorites, viewer.Id, rec.Article.Id)
	switch {
	case err == nil:
		Logger.Log.WithFields(logrus.Fields{"user": viewer.Id, "slug": slug}).Info("article favorited")
		s.publish(engine.TOPIC_RELATIONSHIP_EVENT, engine.EventFavorited, viewer.Id, rec.Article.Id)
	case errors.Is(err, store.ErrEdgeExists):
	case errors.Is(err, store.ErrNotFound):
		return nil, notFound("Article not found")
	default:
		return nil, errors.Wrapf(err, "favorite %s", slug)
	}

	return s.GetArticle(ctx, slug, viewer)
}

// Unfavorite succeeds whether or not the article was favorited.
func (s *Service) Unfavorite(ctx context.Context, viewer *model.User, slug string) (*model.ArticleView, error) {
	if err := requireViewer(viewer); err != nil {
		return nil, err
	}
	rec, err := s.findArticle(ctx, slug)
	if err != nil {
		return nil, err
	}

	err = s.store.Disconnect(ctx, model.EdgeFavorites, viewer.Id, rec.Article.Id)
	switch {
	case err == nil:
		Logger.Log.WithFields(logrus.Fields{"user": viewer.Id, "slug": slug}).Info("article unfavorited")
		s.publish(engine.TOPIC_RELATIONSHIP_EVENT, engine.EventUnfavorited, viewer.Id, rec.Article.Id)
	case errors.Is(err, store.ErrEdgeMissing):
	default:
		return nil, errors.Wrapf(err, "unfavorite %s", slug)
	}

	return s.GetArticle(ctx, slug, viewer)
}
