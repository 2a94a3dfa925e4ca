package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/latroca/latroca-api/internal/auth"
	"github.com/latroca/latroca-api/internal/metrics"
	"github.com/latroca/latroca-api/internal/ratelimit"
)

const claimsKey = "authClaims"

// TokenRevoker reports whether a token id has been revoked. May be nil,
// which disables revocation checks.
type TokenRevoker interface {
	Revoked(c *gin.Context, jti string) bool
}

// denylistAdapter bridges the Redis denylist to the middleware.
type denylistAdapter struct {
	d *auth.Denylist
}

func (a denylistAdapter) Revoked(c *gin.Context, jti string) bool {
	return a.d.Revoked(c.Request.Context(), jti)
}

// authMiddleware parses the Bearer token, rejects revoked tokens, and stores
// the claims in the request context.
func authMiddleware(tokens *auth.TokenIssuer, revoker TokenRevoker) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		const prefix = "Bearer "
		if !strings.HasPrefix(header, prefix) {
			respond(c, http.StatusUnauthorized, "Token de autenticación requerido.", nil)
			c.Abort()
			return
		}

		claims, err := tokens.Parse(strings.TrimPrefix(header, prefix))
		if err != nil {
			respond(c, http.StatusUnauthorized, "Token inválido o expirado.", nil)
			c.Abort()
			return
		}
		if revoker != nil && revoker.Revoked(c, claims.ID) {
			respond(c, http.StatusUnauthorized, "La sesión ha sido cerrada.", nil)
			c.Abort()
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

// claimsFrom returns the claims stored by authMiddleware.
func claimsFrom(c *gin.Context) *auth.Claims {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*auth.Claims)
	return claims
}

// requireRole rejects requests whose token does not carry the role.
func requireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := claimsFrom(c)
		if claims == nil || claims.Role != role {
			respond(c, http.StatusForbidden, "No tienes permisos para esta operación.", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

// rateLimitByIP throttles by client IP. A nil limiter disables the check.
func rateLimitByIP(l *ratelimit.Limiter, rule ratelimit.Rule) gin.HandlerFunc {
	return rateLimitBy(l, rule, func(c *gin.Context) string { return c.ClientIP() })
}

// rateLimitByUser throttles by the authenticated user. Must run after
// authMiddleware.
func rateLimitByUser(l *ratelimit.Limiter, rule ratelimit.Rule) gin.HandlerFunc {
	return rateLimitBy(l, rule, func(c *gin.Context) string {
		if claims := claimsFrom(c); claims != nil {
			return claims.UserID
		}
		return c.ClientIP()
	})
}

func rateLimitBy(l *ratelimit.Limiter, rule ratelimit.Rule, key func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if l != nil && !l.Allow(c.Request.Context(), key(c), rule) {
			respond(c, http.StatusTooManyRequests, "Demasiadas solicitudes. Inténtalo más tarde.", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

// metricsMiddleware counts requests by method, route and status.
func metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.RequestsTotal.WithLabelValues(
			c.Request.Method, route, strconv.Itoa(c.Writer.Status()),
		).Inc()
	}
}
