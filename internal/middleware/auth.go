package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/ayursutra/clinic-api/internal/handler"
	"github.com/ayursutra/clinic-api/pkg/auth"
)

const (
	ContextPractitionerID    = "practitionerID"
	ContextPractitionerEmail = "practitionerEmail"
)

// Authenticator verifies a bearer token.
type Authenticator interface {
	Authenticate(token string) (*auth.Claims, error)
}

type AuthMiddleware struct {
	authenticator Authenticator
}

func NewAuthMiddleware(authenticator Authenticator) *AuthMiddleware {
	return &AuthMiddleware{authenticator: authenticator}
}

// Authenticate verifies the bearer token and sets the practitioner in context
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := m.authenticator.Authenticate(handler.BearerToken(c))
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}

		c.Set(ContextPractitionerID, claims.PractitionerID)
		c.Set(ContextPractitionerEmail, claims.Email)
		c.Request = c.Request.WithContext(auth.WithPractitioner(c.Request.Context(), claims.PractitionerID))
		c.Next()
	}
}

// Skip runs mw for every request except the listed full route paths.
func Skip(mw gin.HandlerFunc, routes ...string) gin.HandlerFunc {
	skipped := make(map[string]struct{}, len(routes))
	for _, r := range routes {
		skipped[r] = struct{}{}
	}
	return func(c *gin.Context) {
		if _, ok := skipped[c.FullPath()]; ok {
			c.Next()
			return
		}
		mw(c)
	}
}
