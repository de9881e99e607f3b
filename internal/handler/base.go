package handler

import (
	"errors"
	"io"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/ayursutra/clinic-api/pkg/errors"
)

const bearerPrefix = "Bearer "

// BindJSON decodes the request body into obj. An empty body decodes as an
// empty object so the service reports the missing fields. On malformed JSON
// the error is attached to the context and false is returned.
func BindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		_ = c.Error(apperrors.InvalidJSON(err))
		return false
	}
	return true
}

// Fail attaches err to the context for the error middleware to render.
func Fail(c *gin.Context, err error) {
	_ = c.Error(err)
}

// BearerToken returns the token of an "Authorization: Bearer <token>"
// header, or "" when the header is absent or uses another scheme.
func BearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(header[len(bearerPrefix):])
}
