package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/finkit/gl_ledger_app/internal/core/domain"
)

const (
	headerUserID   = "X-User-Id"
	headerTenantID = "X-Tenant-Id"
	headerRoles    = "X-Roles"
)

// ledgerClaims are the JWT claims the engine expects: subject is the user
// id, tenant and roles are custom claims.
type ledgerClaims struct {
	TenantID string   `json:"tenant_id"`
	Roles    []string `json:"roles"`
	jwt.RegisteredClaims
}

// AuthMiddleware resolves the caller identity and attaches a Principal to
// the request context. Two schemes are accepted: a Bearer JWT signed with
// the shared HMAC secret, or the gateway identity headers (x-user-id,
// x-tenant-id, x-roles) for deployments where an edge proxy terminates
// auth. The engine itself never issues credentials.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := GetLoggerFromCtx(c.Request.Context())

		principal, err := principalFromRequest(c, jwtSecret)
		if err != nil {
			logger.Warn("Authentication failed", slog.String("error", err.Error()))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		enrichedLogger := logger.With(
			slog.String("user_id", principal.UserID),
			slog.String("tenant_id", principal.TenantID),
		)
		ctx := WithPrincipal(c.Request.Context(), principal)
		ctx = WithLogger(ctx, enrichedLogger)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func principalFromRequest(c *gin.Context, jwtSecret string) (domain.Principal, error) {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return domain.Principal{}, errors.New("authorization header format must be Bearer {token}")
		}
		return principalFromJWT(parts[1], jwtSecret)
	}

	userID := c.GetHeader(headerUserID)
	tenantID := c.GetHeader(headerTenantID)
	if userID == "" || tenantID == "" {
		return domain.Principal{}, errors.New("authorization required")
	}
	var roles []string
	for _, role := range strings.Split(c.GetHeader(headerRoles), ",") {
		if role = strings.TrimSpace(role); role != "" {
			roles = append(roles, role)
		}
	}
	return domain.Principal{TenantID: tenantID, UserID: userID, Roles: roles}, nil
}

func principalFromJWT(tokenString, jwtSecret string) (domain.Principal, error) {
	token, err := jwt.ParseWithClaims(tokenString, &ledgerClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(jwtSecret), nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return domain.Principal{}, errors.New("token has expired")
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			return domain.Principal{}, errors.New("token not valid yet")
		default:
			return domain.Principal{}, errors.New("invalid token")
		}
	}

	claims, ok := token.Claims.(*ledgerClaims)
	if !ok || !token.Valid {
		return domain.Principal{}, errors.New("invalid token claims")
	}
	if claims.Subject == "" || claims.TenantID == "" {
		return domain.Principal{}, errors.New("token missing subject or tenant")
	}
	return domain.Principal{
		TenantID: claims.TenantID,
		UserID:   claims.Subject,
		Roles:    claims.Roles,
	}, nil
}
