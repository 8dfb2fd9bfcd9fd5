// Package store is the persistence gateway for users, articles, comments and
// the follow / favorite edges between them.
package store

import (
	"context"
	"errors"

	"github.com/Luismorlan/conduit/model"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a write violates a unique constraint.
	ErrDuplicate = errors.New("duplicate record")
	// ErrEdgeExists is returned by Connect when the pair is already connected.
	ErrEdgeExists = errors.New("edge already exists")
	// ErrEdgeMissing is returned by Disconnect when the pair is not connected.
	ErrEdgeMissing = errors.New("edge does not exist")
)

// UserKey selects a user by exactly one of its unique columns.
type UserKey struct {
	Id       string
	Username string
	Email    string
}

func ByUserId(id string) UserKey { return UserKey{Id: id} }

func ByUsername(username string) UserKey { return UserKey{Username: username} }

func ByEmail(email string) UserKey { return UserKey{Email: email} }

// ArticleFilter predicates are AND-combined, empty fields are ignored.
type ArticleFilter struct {
	Tag                 string
	AuthorUsername      string
	FavoritedByUsername string
}

// ArticleRecord is an article with what a projection needs: its author and
// the ids of users who favorited it.
type ArticleRecord struct {
	Article     model.Article
	Author      model.User
	FavoritedBy model.IDSet
}

// ProfileRecord is a user with the ids of its followers.
type ProfileRecord struct {
	User       model.User
	FollowedBy model.IDSet
}

// CommentRecord is a comment together with its author.
type CommentRecord struct {
	Comment model.Comment
	Author  model.User
}

// Store is implemented by GormStore and MemoryStore. Implementations enforce
// uniqueness of usernames, emails, slugs and edges themselves and report
// violations as ErrDuplicate / ErrEdgeExists.
type Store interface {
	FindUser(ctx context.Context, key UserKey) (*model.User, error)
	FindProfile(ctx context.Context, key UserKey) (*ProfileRecord, error)
	CreateUser(ctx context.Context, user *model.User) error
	UpdateUser(ctx context.Context, user *model.User) error

	FindArticle(ctx context.Context, slug string) (*ArticleRecord, error)
	// FindArticles returns the window ordered by creation time, newest first,
	// ties in insertion order.
	FindArticles(ctx context.Context, filter ArticleFilter, page model.Page) ([]*ArticleRecord, error)
	CountArticles(ctx context.Context, filter ArticleFilter) (int64, error)
	CreateArticle(ctx context.Context, article *model.Article) error
	// UpdateArticle saves the article that was stored under previousSlug.
	UpdateArticle(ctx context.Context, article *model.Article, previousSlug string) error
	// DeleteArticle also removes the article's comments and favorites.
	DeleteArticle(ctx context.Context, articleId string) error

	FindComment(ctx context.Context, id string) (*model.Comment, error)
	// FindComments returns the comments of an article, oldest first.
	FindComments(ctx context.Context, articleId string) ([]*CommentRecord, error)
	CreateComment(ctx context.Context, comment *model.Comment) error
	DeleteComment(ctx context.Context, id string) error

	Connect(ctx context.Context, kind model.EdgeKind, from, to string) error
	Disconnect(ctx context.Context, kind model.EdgeKind, from, to string) error
}
