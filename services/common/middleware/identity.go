package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Khizarkk7/storefront-backend/services/common/auth"
)

// Identity headers set by the api-gateway after it validated the JWT.
const (
	HeaderUserID    = "X-User-ID"
	HeaderUserRole  = "X-User-Role"
	HeaderUserEmail = "X-User-Email"
	HeaderUserName  = "X-User-Name"
	HeaderShopID    = "X-Shop-ID"
)

const (
	UserIDKey = "user_id"
	RoleKey   = "role"
	EmailKey  = "email"
	NameKey   = "user_name"
	ShopIDKey = "shop_id"
)

// Identity is the caller as seen by a downstream service.
type Identity struct {
	UserID string
	Role   string
	Email  string
	Name   string
	ShopID string
}

func (i Identity) Authenticated() bool { return i.UserID != "" }
func (i Identity) IsSystemAdmin() bool { return i.Role == auth.RoleSystemAdmin }
func (i Identity) IsShopAdmin() bool   { return i.Role == auth.RoleShopAdmin }

// CanAccessShop: system admins see every shop, shop admins only their own.
func (i Identity) CanAccessShop(shopID string) bool {
	if i.IsSystemAdmin() {
		return true
	}
	return i.IsShopAdmin() && i.ShopID != "" && i.ShopID == shopID
}

func readIdentity(c *gin.Context) Identity {
	id := Identity{
		UserID: c.GetHeader(HeaderUserID),
		Role:   c.GetHeader(HeaderUserRole),
		Email:  c.GetHeader(HeaderUserEmail),
		Name:   c.GetHeader(HeaderUserName),
		ShopID: c.GetHeader(HeaderShopID),
	}

	// Cookie fallback (only if behind api-gateway, never publicly exposed)
	if id.UserID == "" {
		if v, err := c.Cookie("user_id"); err == nil {
			id.UserID = v
		}
	}
	if id.Role == "" {
		if v, err := c.Cookie("user_role"); err == nil {
			id.Role = v
		}
	}
	if id.Email == "" {
		if v, err := c.Cookie("user_email"); err == nil {
			id.Email = v
		}
	}
	id.Role = auth.NormalizeRole(id.Role)
	return id
}

func storeIdentity(c *gin.Context, id Identity) {
	c.Set(UserIDKey, id.UserID)
	c.Set(RoleKey, id.Role)
	c.Set(EmailKey, id.Email)
	c.Set(NameKey, id.Name)
	c.Set(ShopIDKey, id.ShopID)
}

// AuthMiddleware requires an authenticated caller.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := readIdentity(c)
		if id.UserID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		storeIdentity(c, id)
		c.Next()
	}
}

// OptionalAuth records the caller when present and lets anonymous requests
// through (guest storefront traffic).
func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if id := readIdentity(c); id.UserID != "" {
			storeIdentity(c, id)
		}
		c.Next()
	}
}

// RequireRoles must run after AuthMiddleware.
func RequireRoles(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		if !allowed[c.GetString(RoleKey)] {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
			return
		}
		c.Next()
	}
}

// AdminOnly allows system admins and shop admins.
func AdminOnly() gin.HandlerFunc {
	return RequireRoles(auth.RoleSystemAdmin, auth.RoleShopAdmin)
}

// ShopScope rejects callers that may not act on the shop named by the
// given path parameter.
func ShopScope(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !CurrentIdentity(c).CanAccessShop(c.Param(param)) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "no access to this shop"})
			return
		}
		c.Next()
	}
}

// CurrentIdentity returns what AuthMiddleware/OptionalAuth stored.
func CurrentIdentity(c *gin.Context) Identity {
	return Identity{
		UserID: c.GetString(UserIDKey),
		Role:   c.GetString(RoleKey),
		Email:  c.GetString(EmailKey),
		Name:   c.GetString(NameKey),
		ShopID: c.GetString(ShopIDKey),
	}
}
