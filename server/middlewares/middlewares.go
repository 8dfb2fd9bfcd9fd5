package middlewares

import (
	"context"
	"net/http"
	"strings"

	"github.com/Luismorlan/conduit/auth"
	"github.com/Luismorlan/conduit/model"
	"github.com/Luismorlan/conduit/service"
	Logger "github.com/Luismorlan/conduit/utils/log"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

const viewerKey = "viewer"

// Accepted schemes of the Authorization header.
var tokenPrefixes = []string{"Token ", "Bearer "}

type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

type ViewerResolver interface {
	Viewer(ctx context.Context, userId string) (*model.User, error)
}

// AbortWithStatus writes the error body every failed request gets.
func AbortWithStatus(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"statusCode": status,
		"message":    message,
		"error":      http.StatusText(status),
	})
}

func extractToken(header string) string {
	for _, prefix := range tokenPrefixes {
		if strings.HasPrefix(header, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(header, prefix))
		}
	}
	return ""
}

// Authenticate resolves the Authorization header into a viewer. Requests
// without the header pass through anonymously; a header that does not carry a
// valid token is rejected even on routes that allow anonymous access.
func Authenticate(tokens TokenVerifier, viewers ViewerResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}

		token := extractToken(header)
		if token == "" {
			AbortWithStatus(c, http.StatusUnauthorized, "Malformed authorization header")
			return
		}
		claims, err := tokens.Verify(token)
		if err != nil {
			AbortWithStatus(c, http.StatusUnauthorized, "Invalid token")
			return
		}

		viewer, err := viewers.Viewer(c.Request.Context(), claims.Id)
		if errors.Is(err, service.ErrUnauthorized) {
			AbortWithStatus(c, http.StatusUnauthorized, "Invalid token")
			return
		}
		if err != nil {
			Logger.Log.Errorf("fail to resolve viewer %s: %v", claims.Id, err)
			AbortWithStatus(c, http.StatusInternalServerError, "Internal server error")
			return
		}

		c.Set(viewerKey, viewer)
		c.Next()
	}
}

// RequireViewer rejects anonymous requests. It must run after Authenticate.
func RequireViewer() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetViewer(c) == nil {
			AbortWithStatus(c, http.StatusUnauthorized, "Unauthorized")
			return
		}
		c.Next()
	}
}

// GetViewer returns the authenticated user or nil.
func GetViewer(c *gin.Context) *model.User {
	v, ok := c.Get(viewerKey)
	if !ok {
		return nil
	}
	viewer, _ := v.(*model.User)
	return viewer
}
