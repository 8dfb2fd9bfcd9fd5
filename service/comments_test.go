package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComments(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	carol := f.register(t, "carol")
	f.article(t, alice, "Hello")
	f.article(t, alice, "Other")

	first, err := f.svc.CreateComment(ctx, bob, "hello", "first!")
	require.Nil(t, err)
	assert.Equal(t, "bob", first.Author.Username)
	assert.Equal(t, "first!", first.Body)
	second, err := f.svc.CreateComment(ctx, carol, "hello", "second")
	require.Nil(t, err)
	other, err := f.svc.CreateComment(ctx, bob, "other", "elsewhere")
	require.Nil(t, err)

	_, err = f.svc.CreateComment(ctx, bob, "missing", "x")
	assertServiceError(t, err, ErrNotFound, "Article not found")
	_, err = f.svc.CreateComment(ctx, bob, "hello", "  ")
	assert.ErrorIs(t, err, ErrBadRequest)

	comments, err := f.svc.ListComments(ctx, "hello")
	require.Nil(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, first.Id, comments[0].Id)
	assert.Equal(t, second.Id, comments[1].Id)

	_, err = f.svc.DeleteComment(ctx, bob, "hello", other.Id)
	assertServiceError(t, err, ErrBadRequest, "Comment does not belong to article hello")

	_, err = f.svc.DeleteComment(ctx, carol, "hello", first.Id)
	assertServiceError(t, err, ErrForbidden, "You are not allowed to delete this comment")

	_, err = f.svc.DeleteComment(ctx, bob, "hello", "nope")
	assertServiceError(t, err, ErrNotFound, "Comment not found")

	// comment author
	deleted, err := f.svc.DeleteComment(ctx, bob, "hello", first.Id)
	require.Nil(t, err)
	assert.Equal(t, "Comment deleted", deleted.Message)
	assert.Equal(t, "hello", deleted.Slug)

	// article author
	_, err = f.svc.DeleteComment(ctx, alice, "hello", second.Id)
	require.Nil(t, err)

	comments, err = f.svc.ListComments(ctx, "hello")
	require.Nil(t, err)
	assert.Empty(t, comments)

	_, err = f.svc.ListComments(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeletingArticleRemovesComments(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	f.article(t, alice, "Hello")

	comment, err := f.svc.CreateComment(ctx, bob, "hello", "hi")
	require.Nil(t, err)
	_, err = f.svc.DeleteArticle(ctx, alice, "hello")
	require.Nil(t, err)

	_, err = f.store.FindComment(ctx, comment.Id)
	assert.NotNil(t, err)
}
