// Package httpapi assembles the gin router: handlers, auth and role
// middleware, rate limiting, and the response envelopes.
package httpapi

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/latroca/latroca-api/internal/apperr"
)

// envelope is the uniform response body: {"message": ..., "data": ...}.
type envelope struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func respond(c *gin.Context, status int, message string, data any) {
	c.JSON(status, envelope{Message: message, Data: data})
}

// respondErr maps application error kinds to status codes. Anything that is
// not a typed user-facing error is logged and reported as a generic 500.
func respondErr(c *gin.Context, err error) {
	var (
		v  apperr.Validation
		ua apperr.Unauthorized
		nf apperr.NotFound
	)
	switch {
	case errors.As(err, &v):
		respond(c, http.StatusBadRequest, v.Error(), nil)
	case errors.As(err, &ua):
		respond(c, http.StatusUnauthorized, ua.Error(), nil)
	case errors.As(err, &nf):
		respond(c, http.StatusNotFound, nf.Error(), nil)
	default:
		log.Printf("[http] %s %s: %v", c.Request.Method, c.FullPath(), err)
		respond(c, http.StatusInternalServerError, "Error interno del servidor.", nil)
	}
}
