package middleware

import (
	"errors"
	"net/http"

	"contact-backend/internal/delivery/http/response"
	"contact-backend/pkg/apperror"
	"contact-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ErrorHandler renders the last error attached with c.Error. An AppError
// carries its own status, message and cause; a cause is always rendered under
// "error". Anything else is a 500.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			if appErr.Err != nil {
				response.Failure(c, appErr.Code, appErr.Message, appErr.Err.Error())
				return
			}
			response.Error(c, appErr.Code, appErr.Message, "")
			return
		}

		logger.Log.Error("Unhandled error", "path", c.FullPath(), "error", err)
		response.Error(c, http.StatusInternalServerError, "Server error", "")
	}
}

// Recovery turns a panic into a 500 with a JSON body.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Log.Error("Panic recovered",
			"error", recovered,
			"path", c.Request.URL.Path,
			"method", c.Request.Method,
		)
		response.Error(c, http.StatusInternalServerError, "Server error", "")
		c.Abort()
	})
}
