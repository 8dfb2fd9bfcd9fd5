package server

import (
	"net/http"

	"github.com/Luismorlan/conduit/server/middlewares"
	"github.com/Luismorlan/conduit/service"
	Logger "github.com/Luismorlan/conduit/utils/log"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

var statusByKind = map[error]int{
	service.ErrNotFound:     http.StatusNotFound,
	service.ErrConflict:     http.StatusConflict,
	service.ErrBadRequest:   http.StatusBadRequest,
	service.ErrForbidden:    http.StatusForbidden,
	service.ErrUnauthorized: http.StatusUnauthorized,
}

// abortWithError maps service errors onto status codes. Anything else is a 500
// whose details only go to the log.
func abortWithError(c *gin.Context, err error) {
	var serr *service.Error
	if errors.As(err, &serr) {
		if status, ok := statusByKind[serr.Kind]; ok {
			middlewares.AbortWithStatus(c, status, serr.Message)
			return
		}
	}
	Logger.Log.WithField("path", c.FullPath()).Errorf("request failed: %+v", err)
	middlewares.AbortWithStatus(c, http.StatusInternalServerError, "Internal server error")
}

func abortWithBindError(c *gin.Context, err error) {
	middlewares.AbortWithStatus(c, http.StatusBadRequest, err.Error())
}
