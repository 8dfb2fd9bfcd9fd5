package server

import (
	"net/http"

	"github.com/Luismorlan/conduit/server/middlewares"
	"github.com/Luismorlan/conduit/service"
	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *service.Service
}

type registerRequest struct {
	User struct {
		Username string `json:"username" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=6"`
	} `json:"user" binding:"required"`
}

type loginRequest struct {
	User struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	} `json:"user" binding:"required"`
}

type updateUserRequest struct {
	User struct {
		Email           *string `json:"email" binding:"omitempty,email"`
		Username        *string `json:"username" binding:"omitempty,min=1"`
		Password        *string `json:"password" binding:"omitempty,min=6"`
		ConfirmPassword *string `json:"confirmPassword"`
		Bio             *string `json:"bio"`
		Image           *string `json:"image"`
	} `json:"user" binding:"required"`
}

type createArticleRequest struct {
	Article struct {
		Title       string   `json:"title" binding:"required"`
		Description string   `json:"description" binding:"required"`
		Body        string   `json:"body" binding:"required"`
		TagList     []string `json:"tagList"`
	} `json:"article" binding:"required"`
}

type updateArticleRequest struct {
	Article struct {
		Title       *string   `json:"title" binding:"omitempty,min=1"`
		Description *string   `json:"description" binding:"omitempty,min=1"`
		Body        *string   `json:"body" binding:"omitempty,min=1"`
		TagList     *[]string `json:"tagList"`
	} `json:"article" binding:"required"`
}

type listArticlesQuery struct {
	Tag       string `form:"tag"`
	Author    string `form:"author"`
	Favorited string `form:"favorited"`
	Limit     int    `form:"limit" binding:"omitempty,min=1"`
	Offset    int    `form:"offset" binding:"omitempty,min=0"`
}

type createCommentRequest struct {
	Comment struct {
		Body string `json:"body" binding:"required"`
	} `json:"comment" binding:"required"`
}

func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithBindError(c, err)
		return
	}
	user, err := h.svc.Register(c.Request.Context(), service.RegisterInput{
		Username: req.User.Username,
		Email:    req.User.Email,
		Password: req.User.Password,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": user})
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithBindError(c, err)
		return
	}
	user, err := h.svc.Login(c.Request.Context(), service.LoginInput{
		Email:    req.User.Email,
		Password: req.User.Password,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *Handler) CurrentUser(c *gin.Context) {
	user, err := h.svc.CurrentUser(c.Request.Context(), middlewares.GetViewer(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *Handler) UpdateUser(c *gin.Context) {
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithBindError(c, err)
		return
	}
	user, err := h.svc.UpdateUser(c.Request.Context(), middlewares.GetViewer(c), service.UpdateUserInput{
		Email:           req.User.Email,
		Username:        req.User.Username,
		Password:        req.User.Password,
		ConfirmPassword: req.User.ConfirmPassword,
		Bio:             req.User.Bio,
		Image:           req.User.Image,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *Handler) GetProfile(c *gin.Context) {
	profile, err := h.svc.GetProfile(c.Request.Context(), c.Param("username"), middlewares.GetViewer(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

func (h *Handler) Follow(c *gin.Context) {
	profile, err := h.svc.Follow(c.Request.Context(), middlewares.GetViewer(c), c.Param("username"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

func (h *Handler) Unfollow(c *gin.Context) {
	profile, err := h.svc.Unfollow(c.Request.Context(), middlewares.GetViewer(c), c.Param("username"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

func (h *Handler) ListArticles(c *gin.Context) {
	var query listArticlesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		abortWithBindError(c, err)
		return
	}
	list, err := h.svc.ListArticles(c.Request.Context(), service.ListArticlesInput{
		Tag:       query.Tag,
		Author:    query.Author,
		Favorited: query.Favorited,
		Limit:     query.Limit,
		Offset:    query.Offset,
	}, middlewares.GetViewer(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) CreateArticle(c *gin.Context) {
	var req createArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithBindError(c, err)
		return
	}
	article, err := h.svc.CreateArticle(c.Request.Context(), middlewares.GetViewer(c), service.CreateArticleInput{
		Title:       req.Article.Title,
		Description: req.Article.Description,
		Body:        req.Article.Body,
		TagList:     req.Article.TagList,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"article": article})
}

func (h *Handler) GetArticle(c *gin.Context) {
	article, err := h.svc.GetArticle(c.Request.Context(), c.Param("slug"), middlewares.GetViewer(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"article": article})
}

func (h *Handler) UpdateArticle(c *gin.Context) {
	var req updateArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithBindError(c, err)
		return
	}
	article, err := h.svc.UpdateArticle(c.Request.Context(), middlewares.GetViewer(c), c.Param("slug"), service.UpdateArticleInput{
		Title:       req.Article.Title,
		Description: req.Article.Description,
		Body:        req.Article.Body,
		TagList:     req.Article.TagList,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"article": article})
}

func (h *Handler) DeleteArticle(c *gin.Context) {
	article, err := h.svc.DeleteArticle(c.Request.Context(), middlewares.GetViewer(c), c.Param("slug"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"article": article})
}

func (h *Handler) Favorite(c *gin.Context) {
	article, err := h.svc.Favorite(c.Request.Context(), middlewares.GetViewer(c), c.Param("slug"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"article": article})
}

func (h *Handler) Unfavorite(c *gin.Context) {
	article, err := h.svc.Unfavorite(c.Request.Context(), middlewares.GetViewer(c), c.Param("slug"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"article": article})
}

func (h *Handler) ListComments(c *gin.Context) {
	comments, err := h.svc.ListComments(c.Request.Context(), c.Param("slug"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": comments})
}

func (h *Handler) CreateComment(c *gin.Context) {
	var req createCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithBindError(c, err)
		return
	}
	comment, err := h.svc.CreateComment(c.Request.Context(), middlewares.GetViewer(c), c.Param("slug"), req.Comment.Body)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"comment": comment})
}

func (h *Handler) DeleteComment(c *gin.Context) {
	deleted, err := h.svc.DeleteComment(c.Request.Context(), middlewares.GetViewer(c), c.Param("slug"), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, deleted)
}
