package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Luismorlan/conduit/model"
)

// MemoryStore keeps everything in process. It stands in for the database in
// tests and in local runs without postgres, so it enforces the same unique
// constraints the schema does. All methods are safe for concurrent use.
type MemoryStore struct {
	mu sync.RWMutex

	users    map[string]*model.User
	articles map[string]*model.Article
	comments map[string]*model.Comment

	follows   *model.EdgeSet
	favorites *model.EdgeSet

	cursor int32
	now    func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:     make(map[string]*model.User),
		articles:  make(map[string]*model.Article),
		comments:  make(map[string]*model.Comment),
		follows:   model.NewEdgeSet(),
		favorites: model.NewEdgeSet(),
		now:       time.Now,
	}
}

// SetClock overrides the time source used for CreatedAt / UpdatedAt.
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *MemoryStore) findUserLocked(key UserKey) *model.User {
	if key.Id != "" {
		return s.users[key.Id]
	}
	for _, u := range s.users {
		if key.Username != "" && u.Username == key.Username {
			return u
		}
		if key.Email != "" && u.Email == key.Email {
			return u
		}
	}
	return nil
}

func (s *MemoryStore) FindUser(ctx context.Context, key UserKey) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u := s.findUserLocked(key)
	if u == nil {
		return nil, ErrNotFound
	}
	c := *u
	return &c, nil
}

func (s *MemoryStore) FindProfile(ctx context.Context, key UserKey) (*ProfileRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u := s.findUserLocked(key)
	if u == nil {
		return nil, ErrNotFound
	}
	return &ProfileRecord{User: *u, FollowedBy: s.follows.To(u.Id)}, nil
}

func (s *MemoryStore) userConflictLocked(user *model.User) bool {
	for id, u := range s.users {
		if id == user.Id {
			continue
		}
		if u.Username == user.Username || u.Email == user.Email {
			return true
		}
	}
	return false
}

func (s *MemoryStore) CreateUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.Id]; ok || s.userConflictLocked(user) {
		return ErrDuplicate
	}
	now := s.now()
	user.CreatedAt, user.UpdatedAt = now, now
	c := *user
	s.users[user.Id] = &c
	return nil
}

func (s *MemoryStore) UpdateUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.users[user.Id]
	if !ok {
		return ErrNotFound
	}
	if s.userConflictLocked(user) {
		return ErrDuplicate
	}
	user.CreatedAt = existing.CreatedAt
	user.UpdatedAt = s.now()
	c := *user
	s.users[user.Id] = &c
	return nil
}

func (s *MemoryStore) articleBySlugLocked(slug string) *model.Article {
	for _, a := range s.articles {
		if a.Slug == slug {
			return a
		}
	}
	return nil
}

func (s *MemoryStore) articleRecordLocked(a *model.Article) *ArticleRecord {
	rec := &ArticleRecord{Article: *a, FavoritedBy: s.favorites.To(a.Id)}
	if author, ok := s.users[a.AuthorID]; ok {
		rec.Author = *author
	}
	return rec
}

func (s *MemoryStore) FindArticle(ctx context.Context, slug string) (*ArticleRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a := s.articleBySlugLocked(slug)
	if a == nil {
		return nil, ErrNotFound
	}
	return s.articleRecordLocked(a), nil
}

func (s *MemoryStore) matchLocked(a *model.Article, filter ArticleFilter) bool {
	if filter.Tag != "" && !a.HasTag(filter.Tag) {
		return false
	}
	if filter.AuthorUsername != "" {
		author, ok := s.users[a.AuthorID]
		if !ok || author.Username != filter.AuthorUsername {
			return false
		}
	}
	if filter.FavoritedByUsername != "" {
		u := s.findUserLocked(ByUsername(filter.FavoritedByUsername))
		if u == nil || !s.favorites.Has(u.Id, a.Id) {
			return false
		}
	}
	return true
}

func (s *MemoryStore) filterLocked(filter ArticleFilter) []*model.Article {
	matched := []*model.Article{}
	for _, a := range s.articles {
		if s.matchLocked(a, filter) {
			matched = append(matched, a)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].Cursor < matched[j].Cursor
	})
	return matched
}

func (s *MemoryStore) FindArticles(ctx context.Context, filter ArticleFilter, page model.Page) ([]*ArticleRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := s.filterLocked(filter)
	records := []*ArticleRecord{}
	for i := page.Offset; i < len(matched) && i < page.Offset+page.Limit; i++ {
		records = append(records, s.articleRecordLocked(matched[i]))
	}
	return records, nil
}

func (s *MemoryStore) CountArticles(ctx context.Context, filter ArticleFilter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return int64(len(s.filterLocked(filter))), nil
}

func (s *MemoryStore) CreateArticle(ctx context.Context, article *model.Article) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.articles[article.Id]; ok || s.articleBySlugLocked(article.Slug) != nil {
		return ErrDuplicate
	}
	s.cursor++
	article.Cursor = s.cursor
	now := s.now()
	article.CreatedAt, article.UpdatedAt = now, now
	c := *article
	s.articles[article.Id] = &c
	return nil
}

func (s *MemoryStore) UpdateArticle(ctx context.Context, article *model.Article, previousSlug string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing := s.articleBySlugLocked(previousSlug)
	if existing == nil || existing.Id != article.Id {
		return ErrNotFound
	}
	if other := s.articleBySlugLocked(article.Slug); other != nil && other.Id != article.Id {
		return ErrDuplicate
	}
	article.CreatedAt = existing.CreatedAt
	article.Cursor = existing.Cursor
	article.AuthorID = existing.AuthorID
	article.UpdatedAt = s.now()
	c := *article
	s.articles[article.Id] = &c
	return nil
}

func (s *MemoryStore) DeleteArticle(ctx context.Context, articleId string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.articles[articleId]; !ok {
		return ErrNotFound
	}
	for id, c := range s.comments {
		if c.ArticleID == articleId {
			delete(s.comments, id)
		}
	}
	s.favorites.RemoveEndpoint(articleId)
	delete(s.articles, articleId)
	return nil
}

func (s *MemoryStore) FindComment(ctx context.Context, id string) (*model.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.comments[id]
	if !ok {
		return nil, ErrNotFound
	}
	cc := *c
	return &cc, nil
}

func (s *MemoryStore) FindComments(ctx context.Context, articleId string) ([]*CommentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := []*CommentRecord{}
	for _, c := range s.comments {
		if c.ArticleID != articleId {
			continue
		}
		rec := &CommentRecord{Comment: *c}
		if author, ok := s.users[c.AuthorID]; ok {
			rec.Author = *author
		}
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool {
		ci, cj := records[i].Comment, records[j].Comment
		if !ci.CreatedAt.Equal(cj.CreatedAt) {
			return ci.CreatedAt.Before(cj.CreatedAt)
		}
		return ci.Cursor < cj.Cursor
	})
	return records, nil
}

func (s *MemoryStore) CreateComment(ctx context.Context, comment *model.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.comments[comment.Id]; ok {
		return ErrDuplicate
	}
	if _, ok := s.articles[comment.ArticleID]; !ok {
		return ErrNotFound
	}
	s.cursor++
	comment.Cursor = s.cursor
	now := s.now()
	comment.CreatedAt, comment.UpdatedAt = now, now
	c := *comment
	s.comments[comment.Id] = &c
	return nil
}

func (s *MemoryStore) DeleteComment(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.comments[id]; !ok {
		return ErrNotFound
	}
	delete(s.comments, id)
	return nil
}

func (s *MemoryStore) edgesLocked(kind model.EdgeKind) (*model.EdgeSet, error) {
	switch kind {
	case model.EdgeFollows:
		return s.follows, nil
	case model.EdgeFavorites:
		return s.favorites, nil
	}
	return nil, fmt.Errorf("unknown edge kind %q", kind)
}

// endpointsExistLocked mirrors the foreign keys of the join tables, which
// cascade on delete in postgres.
func (s *MemoryStore) endpointsExistLocked(kind model.EdgeKind, from, to string) bool {
	if _, ok := s.users[from]; !ok {
		return false
	}
	if kind == model.EdgeFollows {
		_, ok := s.users[to]
		return ok
	}
	_, ok := s.articles[to]
	return ok
}

func (s *MemoryStore) Connect(ctx context.Context, kind model.EdgeKind, from, to string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	edges, err := s.edgesLocked(kind)
	if err != nil {
		return err
	}
	if !s.endpointsExistLocked(kind, from, to) {
		return ErrNotFound
	}
	if !edges.Add(from, to) {
		return ErrEdgeExists
	}
	return nil
}

func (s *MemoryStore) Disconnect(ctx context.Context, kind model.EdgeKind, from, to string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	edges, err := s.edgesLocked(kind)
	if err != nil {
		return err
	}
	if !edges.Remove(from, to) {
		return ErrEdgeMissing
	}
	return nil
}
