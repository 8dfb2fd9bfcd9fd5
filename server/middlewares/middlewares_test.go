package middlewares

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Luismorlan/conduit/auth"
	"github.com/Luismorlan/conduit/model"
	"github.com/Luismorlan/conduit/service"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResolver map[string]*model.User

func (f fakeResolver) Viewer(ctx context.Context, userId string) (*model.User, error) {
	if userId == "broken" {
		return nil, errors.New("db down")
	}
	u, ok := f[userId]
	if !ok {
		return nil, &service.Error{Kind: service.ErrUnauthorized, Message: "Unauthorized"}
	}
	return u, nil
}

func newTestRouter(tokens *auth.JWT) *gin.Engine {
	gin.SetMode(gin.TestMode)
	resolver := fakeResolver{"alice": {Id: "alice", Username: "alice"}}
	router := gin.New()
	router.Use(Authenticate(tokens, resolver))
	router.GET("/open", func(c *gin.Context) {
		username := ""
		if viewer := GetViewer(c); viewer != nil {
			username = viewer.Username
		}
		c.JSON(http.StatusOK, gin.H{"viewer": username})
	})
	router.GET("/closed", RequireViewer(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"viewer": GetViewer(c).Username})
	})
	return router
}

func request(router *gin.Engine, path, authorization string) (*httptest.ResponseRecorder, map[string]interface{}) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	router.ServeHTTP(w, req)
	body := map[string]interface{}{}
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w, body
}

func TestAuthenticate(t *testing.T) {
	tokens := auth.NewJWT("secret", time.Hour)
	router := newTestRouter(tokens)
	alice, err := tokens.Issue(&model.User{Id: "alice"})
	require.Nil(t, err)
	ghost, err := tokens.Issue(&model.User{Id: "ghost"})
	require.Nil(t, err)
	broken, err := tokens.Issue(&model.User{Id: "broken"})
	require.Nil(t, err)

	for _, tc := range []struct {
		name          string
		path          string
		authorization string
		status        int
		viewer        string
	}{
		{"anonymous open", "/open", "", http.StatusOK, ""},
		{"anonymous closed", "/closed", "", http.StatusUnauthorized, ""},
		{"token scheme", "/closed", "Token " + alice, http.StatusOK, "alice"},
		{"bearer scheme", "/open", "Bearer " + alice, http.StatusOK, "alice"},
		{"unknown scheme", "/open", "Basic abc", http.StatusUnauthorized, ""},
		{"garbage token", "/open", "Token abc", http.StatusUnauthorized, ""},
		{"deleted user", "/open", "Token " + ghost, http.StatusUnauthorized, ""},
		{"store failure", "/open", "Token " + broken, http.StatusInternalServerError, ""},
	} {
		t.Run(tc.name, func(t *testing.T) {
			w, body := request(router, tc.path, tc.authorization)
			assert.Equal(t, tc.status, w.Code)
			if tc.status == http.StatusOK {
				assert.Equal(t, tc.viewer, body["viewer"])
			} else {
				assert.Equal(t, float64(tc.status), body["statusCode"])
				assert.Equal(t, http.StatusText(tc.status), body["error"])
				assert.NotEmpty(t, body["message"])
			}
		})
	}
}
