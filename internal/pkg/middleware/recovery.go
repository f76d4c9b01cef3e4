package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/coursewise/course-recommender/internal/pkg/httputils"
	"github.com/coursewise/course-recommender/pkg/utils/errors"
)

// Recovery returns a middleware that converts panics to 500 responses.
// The panic value and stack stay in the log; the client sees only the
// generic internal error message.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Errorw("panic recovered",
					"panic", fmt.Sprintf("%v", r),
					"path", c.Request.URL.Path,
					"request_id", GetRequestID(c),
					"stack", string(debug.Stack()),
				)
				httputils.WriteError(c, errors.ErrInternal)
				c.Abort()
			}
		}()
		c.Next()
	}
}
