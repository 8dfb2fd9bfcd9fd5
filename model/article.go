package model

import (
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"gorm.io/datatypes"
)

/*

Article is a piece of writing published by a user

Id: primary key, uuid
CreatedAt: time when entity is created
UpdatedAt: time when entity is last updated

Slug: url identifier derived from the title, unique
Title, Description, Body: article content in plain text
TagList: ordered tag list, stored as a JSON array
AuthorID: owner of the article, never changes after creation

Cursor: The auto-inc global-unique index to keep the insertion order of
articles, used to break ties between equal creation times.

Favorites are stored in ArticleFavorite rows.

*/

type Article struct {
	Id          string `gorm:"primaryKey"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Slug        string `gorm:"uniqueIndex;not null"`
	Title       string `gorm:"not null"`
	Description string
	Body        string
	TagList     datatypes.JSON
	AuthorID    string `gorm:"index;not null"`
	Cursor      int32  `gorm:"autoIncrement"`
}

// whitespaceRun matches the ASCII spaces plus \v, NBSP, BOM and the Unicode
// space separators.
var whitespaceRun = regexp.MustCompile(`[\s\x{0B}\x{A0}\x{1680}\x{2000}-\x{200A}\x{2028}\x{2029}\x{202F}\x{205F}\x{3000}\x{FEFF}]+`)

// Slugify lower-cases the title and replaces every run of whitespace with a
// single hyphen. Nothing else is stripped, so "Hello, World" becomes
// "hello,-world".
func Slugify(title string) string {
	return whitespaceRun.ReplaceAllString(strings.ToLower(title), "-")
}

// EncodeTagList serializes tags into the JSON column format. A nil slice is
// stored as an empty array.
func EncodeTagList(tags []string) datatypes.JSON {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		// []string always marshals.
		panic(err)
	}
	return datatypes.JSON(b)
}

// Tags decodes the stored tag list. Malformed or empty values decode to an
// empty list.
func (a *Article) Tags() []string {
	tags := []string{}
	if len(a.TagList) == 0 {
		return tags
	}
	if err := json.Unmarshal(a.TagList, &tags); err != nil || tags == nil {
		return []string{}
	}
	return tags
}

// HasTag reports exact membership of tag in the article's tag list.
func (a *Article) HasTag(tag string) bool {
	for _, t := range a.Tags() {
		if t == tag {
			return true
		}
	}
	return false
}
