package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	apperrors "github.com/ayursutra/clinic-api/pkg/errors"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// ErrorHandler renders the last error attached to the context. Errors that
// are not application errors are reported as internal errors, and their
// detail is only shown when exposeDetail is set.
func ErrorHandler(exposeDetail bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		requestID := c.GetString(ContextRequestID)
		appErr := apperrors.As(c.Errors.Last().Err)
		status := appErr.StatusCode()

		event := log.Warn()
		if status >= 500 {
			event = log.Error()
		}
		event.
			Err(c.Errors.Last().Err).
			Str("request_id", requestID).
			Str("path", c.Request.URL.Path).
			Str("method", c.Request.Method).
			Str("client_ip", c.ClientIP()).
			Msg("Request error")

		if c.Writer.Written() {
			return
		}

		resp := ErrorResponse{Error: appErr.Label, Message: appErr.Message}
		if appErr.Kind == apperrors.KindInternal && exposeDetail && appErr.Err != nil {
			resp.Message = appErr.Err.Error()
		}
		c.AbortWithStatusJSON(status, resp)
	}
}
