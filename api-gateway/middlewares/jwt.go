package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Khizarkk7/storefront-backend/api-gateway/config"
	"github.com/Khizarkk7/storefront-backend/services/common/auth"
	"github.com/Khizarkk7/storefront-backend/services/common/middleware"
)

// ClaimsKey holds the validated *auth.Claims on the gin context.
const ClaimsKey = "claims"

// AccessCookie is the cookie auth-service stores the access token in.
const AccessCookie = "token"

var identityHeaders = []string{
	middleware.HeaderUserID,
	middleware.HeaderUserRole,
	middleware.HeaderUserEmail,
	middleware.HeaderUserName,
	middleware.HeaderShopID,
}

// identity cookies services fall back to when headers are absent
var identityCookies = map[string]bool{"user_id": true, "user_role": true, "user_email": true}

// StripIdentity drops identity headers and cookies sent by the client. Only
// the gateway may set them, from a validated token.
func StripIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range identityHeaders {
			c.Request.Header.Del(h)
		}
		cookies := c.Request.Cookies()
		kept := cookies[:0]
		stripped := false
		for _, ck := range cookies {
			if identityCookies[ck.Name] {
				stripped = true
				continue
			}
			kept = append(kept, ck)
		}
		if stripped {
			c.Request.Header.Del("Cookie")
			for _, ck := range kept {
				c.Request.AddCookie(ck)
			}
		}
		c.Next()
	}
}

// TokenFromRequest reads a bearer token, falling back to the access cookie.
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
			return strings.TrimSpace(h[7:])
		}
		return ""
	}
	if ck, err := r.Cookie(AccessCookie); err == nil {
		return ck.Value
	}
	return ""
}

// JWTMiddleware validates the access token according to mode. Public routes
// skip validation, optional routes continue anonymously on a bad token and
// required routes answer 401.
func JWTMiddleware(secret []byte, mode string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if mode == config.AuthPublic {
			c.Next()
			return
		}
		token := TokenFromRequest(c.Request)
		if token == "" {
			if mode == config.AuthRequired {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token is required"})
				return
			}
			c.Next()
			return
		}
		claims, err := auth.ParseAndValidateToken(secret, token, auth.TokenTypeAccess)
		if err != nil {
			if mode == config.AuthRequired {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
				return
			}
			c.Next()
			return
		}
		claims.Role = auth.NormalizeRole(claims.Role)
		c.Set(ClaimsKey, claims)
		c.Set(middleware.UserIDKey, claims.UserID)
		c.Next()
	}
}

// RequireRoles answers 403 unless the validated token carries one of roles.
func RequireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := Claims(c)
		if claims == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token is required"})
			return
		}
		for _, r := range roles {
			if claims.Role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
	}
}

// Claims returns the validated claims, or nil for anonymous requests.
func Claims(c *gin.Context) *auth.Claims {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*auth.Claims)
	return claims
}
