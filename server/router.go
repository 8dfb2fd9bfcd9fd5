// Package server exposes the service over a gin REST router.
package server

import (
	"net/http"

	"github.com/Luismorlan/conduit/app_setting"
	"github.com/Luismorlan/conduit/server/middlewares"
	"github.com/Luismorlan/conduit/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func corsMiddleware(origins []string) gin.HandlerFunc {
	if len(origins) == 0 {
		return cors.Default()
	}
	config := cors.DefaultConfig()
	config.AllowOrigins = origins
	config.AddAllowHeaders("Authorization")
	return cors.New(config)
}

// NewRouter builds the API router. extra middlewares run before
// authentication, which is where tracing goes.
func NewRouter(svc *service.Service, tokens middlewares.TokenVerifier, setting app_setting.ServerAppSetting, extra ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(corsMiddleware(setting.CORS_ALLOW_ORIGINS))
	router.Use(extra...)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	h := &Handler{svc: svc}
	requireViewer := middlewares.RequireViewer()

	api := router.Group("/api", middlewares.Authenticate(tokens, svc))
	api.POST("/users", h.Register)
	api.POST("/users/login", h.Login)
	api.GET("/user", requireViewer, h.CurrentUser)
	api.PUT("/user", requireViewer, h.UpdateUser)

	api.GET("/profiles/:username", h.GetProfile)
	api.POST("/profiles/:username/follow", requireViewer, h.Follow)
	api.DELETE("/profiles/:username/follow", requireViewer, h.Unfollow)

	api.GET("/articles", h.ListArticles)
	api.POST("/articles", requireViewer, h.CreateArticle)
	api.GET("/articles/:slug", h.GetArticle)
	api.PUT("/articles/:slug", requireViewer, h.UpdateArticle)
	api.DELETE("/articles/:slug", requireViewer, h.DeleteArticle)
	api.POST("/articles/:slug/favorite", requireViewer, h.Favorite)
	api.DELETE("/articles/:slug/favorite", requireViewer, h.Unfavorite)

	api.GET("/articles/:slug/comments", h.ListComments)
	api.POST("/articles/:slug/comments", requireViewer, h.CreateComment)
	api.DELETE("/articles/:slug/comments/:id", requireViewer, h.DeleteComment)

	return router
}
