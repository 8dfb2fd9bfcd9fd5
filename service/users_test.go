package service

import (
	"context"
	"sync"
	"testing"

	"github.com/Luismorlan/conduit/model"
	"github.com/Luismorlan/conduit/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapViewerCache struct {
	mu          sync.Mutex
	users       map[string]model.User
	hits        int
	invalidated []string
}

func newMapViewerCache() *mapViewerCache {
	return &mapViewerCache{users: map[string]model.User{}}
}

func (c *mapViewerCache) Get(ctx context.Context, userId string) (*model.User, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	u, ok := c.users[userId]
	if !ok {
		return nil, nil
	}
	c.hits++
	return &u, nil
}

func (c *mapViewerCache) Set(ctx context.Context, user *model.User) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.users[user.Id] = *user
	return nil
}

func (c *mapViewerCache) Invalidate(ctx context.Context, userId string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.users, userId)
	c.invalidated = append(c.invalidated, userId)
	return nil
}

func strPtr(s string) *string { return &s }

func TestRegister(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()

	view, err := f.svc.Register(ctx, RegisterInput{Username: "alice", Email: "alice@example.com", Password: "password"})
	require.Nil(t, err)
	assert.Equal(t, "alice", view.Username)
	assert.Equal(t, "alice@example.com", view.Email)
	assert.Nil(t, view.Bio)

	claims, err := f.tokens.Verify(view.Token)
	require.Nil(t, err)
	assert.Equal(t, "alice@example.com", claims.Email)

	stored, err := f.store.FindUser(ctx, store.ByUserId(claims.Id))
	require.Nil(t, err)
	assert.NotEqual(t, "password", stored.Password)

	_, err = f.svc.Register(ctx, RegisterInput{Username: "other", Email: "alice@example.com", Password: "password"})
	assertServiceError(t, err, ErrConflict, "Email already exists")

	_, err = f.svc.Register(ctx, RegisterInput{Username: "alice", Email: "other@example.com", Password: "password"})
	assertServiceError(t, err, ErrConflict, "Username already exists")
}

func TestLogin(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()
	alice := f.register(t, "alice")

	view, err := f.svc.Login(ctx, LoginInput{Email: "alice@example.com", Password: "password"})
	require.Nil(t, err)
	claims, err := f.tokens.Verify(view.Token)
	require.Nil(t, err)
	assert.Equal(t, alice.Id, claims.Id)

	_, err = f.svc.Login(ctx, LoginInput{Email: "alice@example.com", Password: "wrong"})
	assertServiceError(t, err, ErrUnauthorized, "Invalid email or password")

	_, err = f.svc.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "password"})
	assertServiceError(t, err, ErrUnauthorized, "Invalid email or password")
}

func TestCurrentUser(t *testing.T) {
	f := newFixture(t, Config{})
	alice := f.register(t, "alice")

	view, err := f.svc.CurrentUser(context.Background(), alice)
	require.Nil(t, err)
	assert.Equal(t, "alice", view.Username)
	assert.NotEmpty(t, view.Token)
}

func TestUpdateUser(t *testing.T) {
	f := newFixture(t, Config{})
	cache := newMapViewerCache()
	f.svc.WithViewerCache(cache)
	ctx := context.Background()
	alice := f.register(t, "alice")
	f.register(t, "bob")

	_, err := f.svc.UpdateUser(ctx, alice, UpdateUserInput{Password: strPtr("secret1"), ConfirmPassword: strPtr("secret2")})
	assertServiceError(t, err, ErrBadRequest, "Passwords do not match")

	_, err = f.svc.UpdateUser(ctx, alice, UpdateUserInput{Password: strPtr("secret1")})
	assertServiceError(t, err, ErrBadRequest, "Passwords do not match")

	_, err = f.svc.UpdateUser(ctx, alice, UpdateUserInput{Username: strPtr("bob")})
	assertServiceError(t, err, ErrConflict, "Username already exists")

	_, err = f.svc.UpdateUser(ctx, alice, UpdateUserInput{Email: strPtr("bob@example.com")})
	assertServiceError(t, err, ErrConflict, "Email already exists")

	view, err := f.svc.UpdateUser(ctx, alice, UpdateUserInput{
		Username:        strPtr("alicia"),
		Email:           strPtr("alice@example.com"),
		Password:        strPtr("secret1"),
		ConfirmPassword: strPtr("secret1"),
		Bio:             strPtr("hi there"),
		Image:           strPtr("https://example.com/a.png"),
	})
	require.Nil(t, err)
	assert.Equal(t, "alicia", view.Username)
	require.NotNil(t, view.Bio)
	assert.Equal(t, "hi there", *view.Bio)
	require.NotNil(t, view.Image)
	assert.Equal(t, []string{alice.Id}, cache.invalidated)

	_, err = f.svc.Login(ctx, LoginInput{Email: "alice@example.com", Password: "password"})
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = f.svc.Login(ctx, LoginInput{Email: "alice@example.com", Password: "secret1"})
	assert.Nil(t, err)

	profile, err := f.svc.GetProfile(ctx, "alicia", nil)
	require.Nil(t, err)
	assert.Equal(t, "hi there", *profile.Bio)
}

func TestViewerUsesCache(t *testing.T) {
	f := newFixture(t, Config{})
	cache := newMapViewerCache()
	f.svc.WithViewerCache(cache)
	ctx := context.Background()
	alice := f.register(t, "alice")

	viewer, err := f.svc.Viewer(ctx, alice.Id)
	require.Nil(t, err)
	assert.Equal(t, "alice", viewer.Username)
	assert.Equal(t, 0, cache.hits)

	viewer, err = f.svc.Viewer(ctx, alice.Id)
	require.Nil(t, err)
	assert.Equal(t, "alice", viewer.Username)
	assert.Equal(t, 1, cache.hits)

	_, err = f.svc.Viewer(ctx, "ghost")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestViewerWithoutCache(t *testing.T) {
	f := newFixture(t, Config{})
	alice := f.register(t, "alice")

	viewer, err := f.svc.Viewer(context.Background(), alice.Id)
	require.Nil(t, err)
	assert.Equal(t, alice.Email, viewer.Email)
}
