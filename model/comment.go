package model

import "time"

/*

Comment is a reply left on an article

Id: primary key, uuid
Body: comment text
AuthorID: user who wrote the comment
ArticleID: article the comment belongs to, never changes after creation
Cursor: insertion sequence, used to keep listing order stable

*/

type Comment struct {
	Id        string  `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	Body      string  `gorm:"not null"`
	AuthorID  string  `gorm:"index;not null"`
	Author    User    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	ArticleID string  `gorm:"index;not null"`
	Article   Article `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Cursor    int32   `gorm:"autoIncrement"`
}
