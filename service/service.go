// Package service holds the domain logic of the API: viewer-relative
// projection, article listing, the follow / favorite relationship rules, and
// the account, article and comment operations around them.
//
// Service methods never lock. Concurrent requests racing on the same slug,
// username, email or edge are arbitrated by the store's unique constraints;
// the pre-checks here only exist to produce a friendlier message, and a
// request that loses the race still gets a typed error.
package service

import (
	"context"
	"time"

	"github.com/Luismorlan/conduit/model"
	"github.com/Luismorlan/conduit/store"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

type TokenIssuer interface {
	Issue(user *model.User) (string, error)
}

// ViewerCache caches user records looked up on every authenticated request.
// Get returns nil, nil on a miss.
type ViewerCache interface {
	Get(ctx context.Context, userId string) (*model.User, error)
	Set(ctx context.Context, user *model.User) error
	Invalidate(ctx context.Context, userId string) error
}

// CountBasis selects which count drives totalPages in article listings.
type CountBasis string

const (
	// CountFiltered paginates over the articles matching the filter.
	CountFiltered CountBasis = "filtered"
	// CountGlobal paginates over every article regardless of the filter.
	CountGlobal CountBasis = "global"
)

type Config struct {
	DefaultPageLimit int
	CountBasis       CountBasis
}

type Service struct {
	store  store.Store
	hasher PasswordHasher
	tokens TokenIssuer

	// optional
	cache  ViewerCache
	events message.Publisher

	config Config
	now    func() time.Time
	newId  func() string
}

func NewService(s store.Store, hasher PasswordHasher, tokens TokenIssuer, config Config) *Service {
	if config.DefaultPageLimit <= 0 {
		config.DefaultPageLimit = model.DefaultPageLimit
	}
	if config.CountBasis != CountGlobal {
		config.CountBasis = CountFiltered
	}
	return &Service{
		store:  s,
		hasher: hasher,
		tokens: tokens,
		config: config,
		now:    time.Now,
		newId:  func() string { return uuid.New().String() },
	}
}

func (s *Service) WithViewerCache(cache ViewerCache) *Service {
	s.cache = cache
	return s
}

func (s *Service) WithEventPublisher(events message.Publisher) *Service {
	s.events = events
	return s
}

func requireViewer(viewer *model.User) error {
	if viewer == nil {
		return unauthorized("Unauthorized")
	}
	return nil
}
