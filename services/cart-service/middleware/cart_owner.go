package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Khizarkk7/storefront-backend/services/common/middleware"
)

const (
	CartIDHeader = "X-Cart-ID"
	CartIDCookie = "cart_id"
	OwnerKey     = "cart_owner"
	GuestKey     = "cart_guest"

	guestCookieMaxAge = 7 * 24 * 60 * 60
)

// CartOwner must run after OptionalAuth. It resolves who the cart belongs to. Authenticated callers own
// "user:{id}"; everyone else gets a guest id from the X-Cart-ID header or
// cart_id cookie, minted and echoed back when missing or malformed. The
// guest owner is kept even for authenticated callers so a login can merge.
func CartOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		guestID := c.GetHeader(CartIDHeader)
		if guestID == "" {
			if v, err := c.Cookie(CartIDCookie); err == nil {
				guestID = v
			}
		}
		if _, err := uuid.Parse(guestID); err != nil {
			guestID = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(CartIDCookie, guestID, guestCookieMaxAge, "/", "", false, true)
		}
		c.Header(CartIDHeader, guestID)
		c.Set(GuestKey, "guest:"+guestID)

		if id := middleware.CurrentIdentity(c); id.Authenticated() {
			c.Set(OwnerKey, "user:"+id.UserID)
		} else {
			c.Set(OwnerKey, "guest:"+guestID)
		}
		c.Next()
	}
}

func Owner(c *gin.Context) string { return c.GetString(OwnerKey) }
func Guest(c *gin.Context) string { return c.GetString(GuestKey) }
