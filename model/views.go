package model

import "time"

// The structs below are the JSON shapes returned to API clients.

type Author struct {
	Username string  `json:"username"`
	Bio      *string `json:"bio"`
	Image    *string `json:"image"`
}

type Profile struct {
	Username  string  `json:"username"`
	Bio       *string `json:"bio"`
	Image     *string `json:"image"`
	Following bool    `json:"following"`
}

// ArticleView leaves Favorited nil for anonymous viewers so the field is
// omitted, unlike Profile.Following which is always present.
type ArticleView struct {
	Slug           string    `json:"slug"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Body           string    `json:"body"`
	TagList        []string  `json:"tagList"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
	Favorited      *bool     `json:"favorited,omitempty"`
	FavoritesCount int       `json:"favoritesCount"`
	Author         Author    `json:"author"`
}

type ArticleList struct {
	Articles      []*ArticleView `json:"articles"`
	ArticlesCount int64          `json:"articlesCount"`
	Pagination    Pagination     `json:"pagination"`
}

type CommentView struct {
	Id        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Body      string    `json:"body"`
	Author    Author    `json:"author"`
}

type UserView struct {
	Email    string  `json:"email"`
	Username string  `json:"username"`
	Bio      *string `json:"bio"`
	Image    *string `json:"image"`
	Token    string  `json:"token"`
}

type DeletedComment struct {
	Message string `json:"message"`
	Slug    string `json:"slug"`
}
