package model

import "time"

/*

ArticleFavorite is a "many-to-many" relation of user favoriting an article

UserID: user id
ArticleID: article id
CreatedAt: time when relation is created

Rows are removed together with the user or the article.

*/

type ArticleFavorite struct {
	UserID    string  `gorm:"primaryKey"`
	User      User    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	ArticleID string  `gorm:"primaryKey;index"`
	Article   Article `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt time.Time
}
