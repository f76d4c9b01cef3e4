// Package httputils provides HTTP response helpers.
package httputils

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/coursewise/course-recommender/pkg/utils/errors"
)

// ErrorResponse is the error envelope: a single message under "error".
type ErrorResponse struct {
	Error string `json:"error"`
}

// WriteError resolves err to its HTTP status and writes the error envelope.
// Unregistered errors map to a generic 500 so internal details never leak.
func WriteError(c *gin.Context, err error) {
	errno := errors.FromError(err)
	c.JSON(errno.HTTPStatus(), ErrorResponse{Error: errno.Message})
}

// WriteJSON writes data as a 200 response.
func WriteJSON(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}
