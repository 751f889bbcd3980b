package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/finkit/gl_ledger_app/internal/core/domain"
)

const principalCtxKey = contextKey("principal")

// WithPrincipal returns a context carrying the authenticated caller.
func WithPrincipal(ctx context.Context, principal domain.Principal) context.Context {
	return context.WithValue(ctx, principalCtxKey, principal)
}

// GetPrincipalFromContext retrieves the authenticated caller from the
// request context. The second return is false when auth never ran.
func GetPrincipalFromContext(c *gin.Context) (domain.Principal, bool) {
	principal, ok := c.Request.Context().Value(principalCtxKey).(domain.Principal)
	return principal, ok
}
