package service

import (
	"context"
	"testing"

	"github.com/Luismorlan/conduit/engine"
	"github.com/Luismorlan/conduit/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFavoriteIsIdempotent(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	f.article(t, alice, "Hello")

	first, err := f.svc.Favorite(ctx, bob, "hello")
	require.Nil(t, err)
	assert.Equal(t, 1, first.FavoritesCount)
	require.NotNil(t, first.Favorited)
	assert.True(t, *first.Favorited)

	second, err := f.svc.Favorite(ctx, bob, "hello")
	require.Nil(t, err)
	assert.Equal(t, 1, second.FavoritesCount)
	assert.True(t, *second.Favorited)

	byAlice, err := f.svc.Favorite(ctx, alice, "hello")
	require.Nil(t, err)
	assert.Equal(t, 2, byAlice.FavoritesCount)

	_, err = f.svc.Favorite(ctx, bob, "missing")
	assertServiceError(t, err, ErrNotFound, "Article not found")

	assert.Equal(t,
		[]engine.EventKind{engine.EventFavorited, engine.EventFavorited},
		f.events.Kinds(engine.TOPIC_RELATIONSHIP_EVENT))
}

func TestUnfavoriteIsUnconditional(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	f.article(t, alice, "Hello")

	view, err := f.svc.Unfavorite(ctx, bob, "hello")
	require.Nil(t, err)
	assert.Equal(t, 0, view.FavoritesCount)
	assert.False(t, *view.Favorited)

	_, err = f.svc.Favorite(ctx, bob, "hello")
	require.Nil(t, err)
	view, err = f.svc.Unfavorite(ctx, bob, "hello")
	require.Nil(t, err)
	assert.Equal(t, 0, view.FavoritesCount)
	assert.False(t, *view.Favorited)

	assert.Equal(t,
		[]engine.EventKind{engine.EventFavorited, engine.EventUnfavorited},
		f.events.Kinds(engine.TOPIC_RELATIONSHIP_EVENT))
}

func TestFollowIsStrict(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()
	alice := f.register(t, "alice")
	f.register(t, "bob")

	profile, err := f.svc.Follow(ctx, alice, "bob")
	require.Nil(t, err)
	assert.Equal(t, "bob", profile.Username)
	assert.True(t, profile.Following)

	_, err = f.svc.Follow(ctx, alice, "bob")
	assertServiceError(t, err, ErrConflict, "You are already following this user")

	profile, err = f.svc.Unfollow(ctx, alice, "bob")
	require.Nil(t, err)
	assert.False(t, profile.Following)

	_, err = f.svc.Unfollow(ctx, alice, "bob")
	assertServiceError(t, err, ErrConflict, "You are not following this user")

	_, err = f.svc.Follow(ctx, alice, "ghost")
	assertServiceError(t, err, ErrNotFound, "User not found")

	assert.Equal(t,
		[]engine.EventKind{engine.EventFollowed, engine.EventUnfollowed},
		f.events.Kinds(engine.TOPIC_RELATIONSHIP_EVENT))
}

func TestSelfFollowIsRejected(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()
	alice := f.register(t, "alice")

	_, err := f.svc.Follow(ctx, alice, "alice")
	assertServiceError(t, err, ErrBadRequest, "You cannot follow yourself")
	_, err = f.svc.Unfollow(ctx, alice, "alice")
	assertServiceError(t, err, ErrBadRequest, "You cannot unfollow yourself")

	profile, err := f.svc.GetProfile(ctx, "alice", alice)
	require.Nil(t, err)
	assert.False(t, profile.Following)
}

func TestProfileFollowingIsViewerRelative(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	carol := f.register(t, "carol")

	_, err := f.svc.Follow(ctx, alice, "carol")
	require.Nil(t, err)

	for _, tc := range []struct {
		name   string
		viewer *model.User
		want   bool
	}{
		{"follower", alice, true},
		{"stranger", bob, false},
		{"self", carol, false},
		{"anonymous", nil, false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			profile, err := f.svc.GetProfile(ctx, "carol", tc.viewer)
			require.Nil(t, err)
			assert.Equal(t, tc.want, profile.Following)
		})
	}

	_, err = f.svc.GetProfile(ctx, "ghost", nil)
	assert.ErrorIs(t, err, ErrNotFound)
}
