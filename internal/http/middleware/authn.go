// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements the authentication/authorization dependency chain in
// front of protected routes. A request moves through the states
// UNAUTHENTICATED → TOKEN_VALIDATED → USER_RESOLVED → (ADMIN_VERIFIED); a
// handler behind RequireUser either receives a fully resolved identity with
// last_request already stamped, or the request was rejected before the
// handler body ran.
//
// Two admin strategies coexist deliberately:
//
//   - RequireAdmin re-fetches the user and checks super_user, so a role
//     revoked after token issue takes effect immediately.
//   - RequireAdminClaim trusts the token's is_admin claim without a lookup,
//     which is cheaper but can act on a stale role.
//
// Both are kept because callers have different freshness/cost needs; pick
// per route.
package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-blog-backend/internal/auth"
	"github.com/tbourn/go-blog-backend/internal/domain"
	"github.com/tbourn/go-blog-backend/internal/services"
)

const (
	// userKey is the Gin context key holding the resolved *domain.User.
	userKey = "user"
	// userIDKey mirrors the user's hex id for logging and handler lookups.
	userIDKey = "userID"
)

// IdentityResolver resolves a bearer access token into a user, stamping
// last_request as a side effect. *services.UserService satisfies it.
type IdentityResolver interface {
	ResolveAccess(ctx context.Context, accessToken string) (*domain.User, error)
}

// TokenVerifier verifies token claims without a user lookup.
// *auth.TokenManager satisfies it.
type TokenVerifier interface {
	ParseAccess(token string) (*auth.Claims, error)
	ParseRefresh(token string) (*auth.Claims, error)
}

// BearerToken extracts the token from an "Authorization: Bearer …" header.
// It returns "" when the header is absent or not a bearer scheme.
func BearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	const prefix = "Bearer "
	if len(h) > len(prefix) && strings.EqualFold(h[:len(prefix)], prefix) {
		return strings.TrimSpace(h[len(prefix):])
	}
	return ""
}

// RequireUser returns middleware enforcing a valid access token whose subject
// resolves to an existing user. The identity is stored in the Gin context
// (see UserFrom) and last_request is stamped before the handler runs.
//
// Failure modes:
//   - 401 unauthorized: missing/malformed/expired token.
//   - 400 bad_request: token fine, but the subject user no longer resolves.
func RequireUser(resolver IdentityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c)
		if token == "" {
			abortAuth(c, http.StatusUnauthorized, "unauthorized", "missing bearer token")
			return
		}
		u, err := resolver.ResolveAccess(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, services.ErrUserNotFound) {
				abortAuth(c, http.StatusBadRequest, "bad_request", "no user found")
			} else {
				abortAuth(c, http.StatusUnauthorized, "unauthorized", "invalid or expired token")
			}
			return
		}
		c.Set(userKey, u)
		c.Set(userIDKey, u.ID.Hex())
		c.Next()
	}
}

// RequireAdmin returns middleware that runs after RequireUser and re-fetches
// the identity's super_user flag, rejecting with 403 unless it is set.
func RequireAdmin(check func(ctx context.Context, u *domain.User) (bool, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := UserFrom(c)
		if u == nil {
			abortAuth(c, http.StatusUnauthorized, "unauthorized", "missing identity")
			return
		}
		admin, err := check(c.Request.Context(), u)
		if err != nil {
			abortAuth(c, http.StatusInternalServerError, "internal_error", "admin check failed")
			return
		}
		if !admin {
			abortAuth(c, http.StatusForbidden, "forbidden", "admin privileges required")
			return
		}
		c.Next()
	}
}

// RequireAdminClaim returns middleware that validates the access token and
// trusts its embedded is_admin claim, without resolving the user. No
// last_request stamping happens on this path.
func RequireAdminClaim(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c)
		if token == "" {
			abortAuth(c, http.StatusUnauthorized, "unauthorized", "missing bearer token")
			return
		}
		claims, err := verifier.ParseAccess(token)
		if err != nil {
			abortAuth(c, http.StatusUnauthorized, "unauthorized", "invalid or expired token")
			return
		}
		if !claims.IsAdmin {
			abortAuth(c, http.StatusForbidden, "forbidden", "admin privileges required")
			return
		}
		c.Set(userIDKey, claims.Subject)
		c.Next()
	}
}

// UserFrom returns the identity resolved by RequireUser, or nil.
func UserFrom(c *gin.Context) *domain.User {
	if v, ok := c.Get(userKey); ok {
		if u, ok := v.(*domain.User); ok {
			return u
		}
	}
	return nil
}

// abortAuth writes the standard error envelope used across the API.
func abortAuth(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, gin.H{
		"request_id": c.Writer.Header().Get(requestIDHeader),
		"code":       code,
		"message":    msg,
	})
}
