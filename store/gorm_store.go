package store

import (
	"context"
	"fmt"

	"github.com/Luismorlan/conduit/model"
	"github.com/jackc/pgconn"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SQLSTATE codes reported by postgres.
const (
	uniqueViolationCode     = "23505"
	foreignKeyViolationCode = "23503"
)

// GormStore persists into postgres through gorm. Unique indexes on users and
// articles and the composite primary keys of the join tables are the source
// of truth for every uniqueness invariant.
type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

func hasPgCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

func isUniqueViolation(err error) bool {
	return hasPgCode(err, uniqueViolationCode)
}

// isForeignKeyViolation reports a write that references a missing user or
// article.
func isForeignKeyViolation(err error) bool {
	return hasPgCode(err, foreignKeyViolationCode)
}

// translate maps gorm / driver errors onto the store sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case isUniqueViolation(err):
		return errors.Wrap(ErrDuplicate, err.Error())
	case isForeignKeyViolation(err):
		return errors.Wrap(ErrNotFound, err.Error())
	}
	return err
}

func userQuery(db *gorm.DB, key UserKey) *gorm.DB {
	switch {
	case key.Id != "":
		return db.Where("id = ?", key.Id)
	case key.Username != "":
		return db.Where("username = ?", key.Username)
	default:
		return db.Where("email = ?", key.Email)
	}
}

func (s *GormStore) FindUser(ctx context.Context, key UserKey) (*model.User, error) {
	var user model.User
	if err := userQuery(s.DB.WithContext(ctx), key).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *GormStore) FindProfile(ctx context.Context, key UserKey) (*ProfileRecord, error) {
	user, err := s.FindUser(ctx, key)
	if err != nil {
		return nil, err
	}

	var followerIds []string
	if err := s.DB.WithContext(ctx).
		Model(&model.UserFollow{}).
		Where("followee_id = ?", user.Id).
		Pluck("follower_id", &followerIds).Error; err != nil {
		return nil, err
	}
	return &ProfileRecord{User: *user, FollowedBy: model.NewIDSet(followerIds...)}, nil
}

func (s *GormStore) CreateUser(ctx context.Context, user *model.User) error {
	return translate(s.DB.WithContext(ctx).Create(user).Error)
}

func (s *GormStore) UpdateUser(ctx context.Context, user *model.User) error {
	res := s.DB.WithContext(ctx).
		Model(user).
		Select("username", "email", "password", "bio", "image", "updated_at").
		Updates(user)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// loadArticleRecords fetches authors and favorites for a page of articles in
// one query per relation.
func (s *GormStore) loadArticleRecords(ctx context.Context, articles []model.Article) ([]*ArticleRecord, error) {
	records := []*ArticleRecord{}
	if len(articles) == 0 {
		return records, nil
	}

	articleIds := make([]string, 0, len(articles))
	authorIds := make([]string, 0, len(articles))
	for _, a := range articles {
		articleIds = append(articleIds, a.Id)
		authorIds = append(authorIds, a.AuthorID)
	}

	var authors []model.User
	if err := s.DB.WithContext(ctx).Where("id IN ?", authorIds).Find(&authors).Error; err != nil {
		return nil, err
	}
	authorById := make(map[string]model.User, len(authors))
	for _, u := range authors {
		authorById[u.Id] = u
	}

	var favorites []model.ArticleFavorite
	if err := s.DB.WithContext(ctx).Where("article_id IN ?", articleIds).Find(&favorites).Error; err != nil {
		return nil, err
	}
	favoritedBy := make(map[string]model.IDSet, len(articles))
	for _, f := range favorites {
		if favoritedBy[f.ArticleID] == nil {
			favoritedBy[f.ArticleID] = model.IDSet{}
		}
		favoritedBy[f.ArticleID][f.UserID] = struct{}{}
	}

	for _, a := range articles {
		set := favoritedBy[a.Id]
		if set == nil {
			set = model.IDSet{}
		}
		records = append(records, &ArticleRecord{
			Article:     a,
			Author:      authorById[a.AuthorID],
			FavoritedBy: set,
		})
	}
	return records, nil
}

func (s *GormStore) FindArticle(ctx context.Context, slug string) (*ArticleRecord, error) {
	var article model.Article
	if err := s.DB.WithContext(ctx).Where("slug = ?", slug).First(&article).Error; err != nil {
		return nil, translate(err)
	}
	records, err := s.loadArticleRecords(ctx, []model.Article{article})
	if err != nil {
		return nil, err
	}
	return records[0], nil
}

// filteredArticles builds the WHERE part shared by FindArticles and
// CountArticles.
func (s *GormStore) filteredArticles(ctx context.Context, filter ArticleFilter) *gorm.DB {
	db := s.DB.WithContext(ctx)
	q := db.Model(&model.Article{})

	if filter.Tag != "" {
		// jsonb containment on a one element array is exact membership.
		q = q.Where("articles.tag_list::jsonb @> ?", string(model.EncodeTagList([]string{filter.Tag})))
	}
	if filter.AuthorUsername != "" {
		q = q.Where("articles.author_id IN (?)",
			db.Model(&model.User{}).Select("id").Where("username = ?", filter.AuthorUsername))
	}
	if filter.FavoritedByUsername != "" {
		q = q.Where("articles.id IN (?)",
			db.Model(&model.ArticleFavorite{}).
				Select("article_favorites.article_id").
				Joins("JOIN users ON users.id = article_favorites.user_id").
				Where("users.username = ?", filter.FavoritedByUsername))
	}
	return q
}

func (s *GormStore) FindArticles(ctx context.Context, filter ArticleFilter, page model.Page) ([]*ArticleRecord, error) {
	var articles []model.Article
	if err := s.filteredArticles(ctx, filter).
		Order("articles.created_at desc").
		Order("articles.cursor asc").
		Limit(page.Limit).
		Offset(page.Offset).
		Find(&articles).Error; err != nil {
		return nil, err
	}
	return s.loadArticleRecords(ctx, articles)
}

func (s *GormStore) CountArticles(ctx context.Context, filter ArticleFilter) (int64, error) {
	var count int64
	if err := s.filteredArticles(ctx, filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (s *GormStore) CreateArticle(ctx context.Context, article *model.Article) error {
	return translate(s.DB.WithContext(ctx).Create(article).Error)
}

func (s *GormStore) UpdateArticle(ctx context.Context, article *model.Article, previousSlug string) error {
	res := s.DB.WithContext(ctx).
		Model(&model.Article{}).
		Where("id = ? AND slug = ?", article.Id, previousSlug).
		Select("slug", "title", "description", "body", "tag_list", "updated_at").
		Updates(article)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) DeleteArticle(ctx context.Context, articleId string) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("article_id = ?", articleId).Delete(&model.ArticleFavorite{}).Error; err != nil {
			return err
		}
		if err := tx.Where("article_id = ?", articleId).Delete(&model.Comment{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", articleId).Delete(&model.Article{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (s *GormStore) FindComment(ctx context.Context, id string) (*model.Comment, error) {
	var comment model.Comment
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&comment).Error; err != nil {
		return nil, translate(err)
	}
	return &comment, nil
}

func (s *GormStore) FindComments(ctx context.Context, articleId string) ([]*CommentRecord, error) {
	var comments []model.Comment
	if err := s.DB.WithContext(ctx).
		Where("article_id = ?", articleId).
		Order("created_at asc").
		Order("cursor asc").
		Find(&comments).Error; err != nil {
		return nil, err
	}

	records := []*CommentRecord{}
	if len(comments) == 0 {
		return records, nil
	}

	authorIds := make([]string, 0, len(comments))
	for _, c := range comments {
		authorIds = append(authorIds, c.AuthorID)
	}
	var authors []model.User
	if err := s.DB.WithContext(ctx).Where("id IN ?", authorIds).Find(&authors).Error; err != nil {
		return nil, err
	}
	authorById := make(map[string]model.User, len(authors))
	for _, u := range authors {
		authorById[u.Id] = u
	}

	for _, c := range comments {
		records = append(records, &CommentRecord{Comment: c, Author: authorById[c.AuthorID]})
	}
	return records, nil
}

func (s *GormStore) CreateComment(ctx context.Context, comment *model.Comment) error {
	return translate(s.DB.WithContext(ctx).Omit(clause.Associations).Create(comment).Error)
}

func (s *GormStore) DeleteComment(ctx context.Context, id string) error {
	res := s.DB.WithContext(ctx).Where("id = ?", id).Delete(&model.Comment{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// edgeRow returns the join row for kind plus the WHERE clause selecting the
// (from, to) pair.
func edgeRow(kind model.EdgeKind, from, to string) (interface{}, string, error) {
	switch kind {
	case model.EdgeFollows:
		return &model.UserFollow{FollowerID: from, FolloweeID: to},
			"follower_id = ? AND followee_id = ?", nil
	case model.EdgeFavorites:
		return &model.ArticleFavorite{UserID: from, ArticleID: to},
			"user_id = ? AND article_id = ?", nil
	}
	return nil, "", fmt.Errorf("unknown edge kind %q", kind)
}

func (s *GormStore) Connect(ctx context.Context, kind model.EdgeKind, from, to string) error {
	row, _, err := edgeRow(kind, from, to)
	if err != nil {
		return err
	}
	err = s.DB.WithContext(ctx).Omit(clause.Associations).Create(row).Error
	switch {
	case isUniqueViolation(err):
		return ErrEdgeExists
	case isForeignKeyViolation(err):
		return ErrNotFound
	}
	return err
}

func (s *GormStore) Disconnect(ctx context.Context, kind model.EdgeKind, from, to string) error {
	row, where, err := edgeRow(kind, from, to)
	if err != nil {
		return err
	}
	res := s.DB.WithContext(ctx).Where(where, from, to).Delete(row)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrEdgeMissing
	}
	return nil
}
