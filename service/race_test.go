package service

import (
	"context"
	"testing"

	"github.com/Luismorlan/conduit/auth"
	"github.com/Luismorlan/conduit/engine"
	"github.com/Luismorlan/conduit/model"
	"github.com/Luismorlan/conduit/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// staleReadStore answers the next staleReads lookups as if a concurrent
// write had not landed yet: users and articles are missing and edge sets are
// empty. Writes go to the real store, so they run into its constraints.
type staleReadStore struct {
	store.Store
	staleReads int
}

func (s *staleReadStore) stale() bool {
	if s.staleReads == 0 {
		return false
	}
	s.staleReads--
	return true
}

func (s *staleReadStore) FindUser(ctx context.Context, key store.UserKey) (*model.User, error) {
	if s.stale() {
		return nil, store.ErrNotFound
	}
	return s.Store.FindUser(ctx, key)
}

func (s *staleReadStore) FindProfile(ctx context.Context, key store.UserKey) (*store.ProfileRecord, error) {
	stale := s.stale()
	rec, err := s.Store.FindProfile(ctx, key)
	if err == nil && stale {
		rec.FollowedBy = model.NewIDSet()
	}
	return rec, err
}

func (s *staleReadStore) FindArticle(ctx context.Context, slug string) (*store.ArticleRecord, error) {
	stale := s.stale()
	rec, err := s.Store.FindArticle(ctx, slug)
	if err == nil && stale {
		rec.FavoritedBy = model.NewIDSet()
	}
	return rec, err
}

// missingArticleStore reports the article itself as missing instead of only
// hiding its favorites.
type missingArticleStore struct {
	*staleReadStore
}

func (s missingArticleStore) FindArticle(ctx context.Context, slug string) (*store.ArticleRecord, error) {
	if s.stale() {
		return nil, store.ErrNotFound
	}
	return s.Store.FindArticle(ctx, slug)
}

func (f *fixture) serviceOver(s store.Store) *Service {
	return NewService(s, auth.NewBcrypt(bcrypt.MinCost), f.tokens, Config{}).WithEventPublisher(f.events)
}

func TestFollowLosingRaceIsConflict(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()
	alice := f.register(t, "alice")
	f.register(t, "bob")

	_, err := f.svc.Follow(ctx, alice, "bob")
	require.Nil(t, err)

	racing := f.serviceOver(&staleReadStore{Store: f.store, staleReads: 1})
	_, err = racing.Follow(ctx, alice, "bob")
	assertServiceError(t, err, ErrConflict, "You are already following this user")

	assert.Equal(t,
		[]engine.EventKind{engine.EventFollowed},
		f.events.Kinds(engine.TOPIC_RELATIONSHIP_EVENT))
}

func TestFavoriteLosingRaceIsNoop(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	f.article(t, alice, "Hello")

	_, err := f.svc.Favorite(ctx, bob, "hello")
	require.Nil(t, err)

	racing := f.serviceOver(&staleReadStore{Store: f.store, staleReads: 1})
	view, err := racing.Favorite(ctx, bob, "hello")
	require.Nil(t, err)
	assert.Equal(t, 1, view.FavoritesCount)
	require.NotNil(t, view.Favorited)
	assert.True(t, *view.Favorited)

	assert.Equal(t,
		[]engine.EventKind{engine.EventFavorited},
		f.events.Kinds(engine.TOPIC_RELATIONSHIP_EVENT))
}

func TestCreateArticleLosingRaceIsConflict(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()
	alice := f.register(t, "alice")
	f.article(t, alice, "Hello World")

	racing := f.serviceOver(missingArticleStore{&staleReadStore{Store: f.store, staleReads: 1}})
	_, err := racing.CreateArticle(ctx, alice, CreateArticleInput{Title: "Hello World"})
	assertServiceError(t, err, ErrConflict, "Article with this slug already exists")

	count, err := f.store.CountArticles(ctx, store.ArticleFilter{})
	require.Nil(t, err)
	assert.Equal(t, int64(1), count)
}

func TestRegisterLosingRaceIsConflict(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()
	f.register(t, "alice")

	// both the email and the username lookups miss
	racing := f.serviceOver(&staleReadStore{Store: f.store, staleReads: 2})
	_, err := racing.Register(ctx, RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "password",
	})
	assertServiceError(t, err, ErrConflict, "Username or email already exists")
}
