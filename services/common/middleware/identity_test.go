package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/Khizarkk7/storefront-backend/services/common/auth"
)

func init() { gin.SetMode(gin.TestMode) }

func newIdentityRouter() *gin.Engine {
	r := gin.New()
	r.GET("/me", AuthMiddleware(), func(c *gin.Context) {
		id := CurrentIdentity(c)
		c.JSON(http.StatusOK, gin.H{"user_id": id.UserID, "role": id.Role, "shop_id": id.ShopID})
	})
	r.GET("/admin", AuthMiddleware(), RequireRoles(auth.RoleSystemAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	r.GET("/shops/:shopId/orders", AuthMiddleware(), ShopScope("shopId"), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	r.GET("/guest", OptionalAuth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"authenticated": CurrentIdentity(c).Authenticated()})
	})
	return r
}

func do(r http.Handler, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	r := newIdentityRouter()

	w := do(r, "/me", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, "/me", map[string]string{HeaderUserID: "u1", HeaderUserRole: "shopAdmin", HeaderShopID: "s1"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":"u1","role":"shop_admin","shop_id":"s1"}`, w.Body.String())
}

func TestAuthMiddleware_CookieFallback(t *testing.T) {
	r := newIdentityRouter()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: "user_id", Value: "u9"})
	req.AddCookie(&http.Cookie{Name: "user_role", Value: "customer"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"u9"`)
}

func TestRequireRoles(t *testing.T) {
	r := newIdentityRouter()

	w := do(r, "/admin", map[string]string{HeaderUserID: "u1", HeaderUserRole: "customer"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(r, "/admin", map[string]string{HeaderUserID: "u1", HeaderUserRole: "system_admin"})
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestShopScope(t *testing.T) {
	r := newIdentityRouter()

	own := map[string]string{HeaderUserID: "u1", HeaderUserRole: "shop_admin", HeaderShopID: "s1"}
	assert.Equal(t, http.StatusNoContent, do(r, "/shops/s1/orders", own).Code)
	assert.Equal(t, http.StatusForbidden, do(r, "/shops/s2/orders", own).Code)

	admin := map[string]string{HeaderUserID: "u2", HeaderUserRole: "system_admin"}
	assert.Equal(t, http.StatusNoContent, do(r, "/shops/s2/orders", admin).Code)

	customer := map[string]string{HeaderUserID: "u3", HeaderUserRole: "customer", HeaderShopID: "s1"}
	assert.Equal(t, http.StatusForbidden, do(r, "/shops/s1/orders", customer).Code)
}

func TestOptionalAuth(t *testing.T) {
	r := newIdentityRouter()
	assert.JSONEq(t, `{"authenticated":false}`, do(r, "/guest", nil).Body.String())
	assert.JSONEq(t, `{"authenticated":true}`, do(r, "/guest", map[string]string{HeaderUserID: "u1"}).Body.String())
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(0, 2, 0)
	assert.True(t, rl.Allow("1.1.1.1"))
	assert.True(t, rl.Allow("1.1.1.1"))
	assert.False(t, rl.Allow("1.1.1.1"))
	assert.True(t, rl.Allow("2.2.2.2"))
}
