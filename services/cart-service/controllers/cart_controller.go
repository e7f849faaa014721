package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	cartmw "github.com/Khizarkk7/storefront-backend/services/cart-service/middleware"
	"github.com/Khizarkk7/storefront-backend/services/cart-service/models"
	"github.com/Khizarkk7/storefront-backend/services/cart-service/services"
	apperrors "github.com/Khizarkk7/storefront-backend/services/common/errors"
	"github.com/Khizarkk7/storefront-backend/services/common/middleware"
)

const IdempotencyHeader = "Idempotency-Key"

type CartController struct {
	cartService services.CartService
}

func NewCartController(cartService services.CartService) *CartController {
	return &CartController{cartService: cartService}
}

// GetCart handles GET /cart/:slug.
func (cc *CartController) GetCart(c *gin.Context) {
	cart, svcErr := cc.cartService.GetCart(c.Request.Context(), cartmw.Owner(c), c.Param("slug"))
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	c.JSON(http.StatusOK, cart)
}

// AddItem handles POST /cart/:slug/items.
func (cc *CartController) AddItem(c *gin.Context) {
	var req models.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": apperrors.Details(err)})
		return
	}
	cart, svcErr := cc.cartService.AddItem(c.Request.Context(), cartmw.Owner(c), c.Param("slug"), req)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	c.JSON(http.StatusOK, cart)
}

// SetQuantity handles PUT /cart/:slug/items/:productId.
func (cc *CartController) SetQuantity(c *gin.Context) {
	var req models.SetQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": apperrors.Details(err)})
		return
	}
	cart, svcErr := cc.cartService.SetQuantity(c.Request.Context(), cartmw.Owner(c), c.Param("slug"), c.Param("productId"), *req.Quantity)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	c.JSON(http.StatusOK, cart)
}

// RemoveItem handles DELETE /cart/:slug/items/:productId.
func (cc *CartController) RemoveItem(c *gin.Context) {
	cart, svcErr := cc.cartService.RemoveItem(c.Request.Context(), cartmw.Owner(c), c.Param("slug"), c.Param("productId"))
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	c.JSON(http.StatusOK, cart)
}

// ItemStatus handles GET /cart/:slug/items/:productId.
func (cc *CartController) ItemStatus(c *gin.Context) {
	status, svcErr := cc.cartService.ItemStatus(c.Request.Context(), cartmw.Owner(c), c.Param("slug"), c.Param("productId"))
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	c.JSON(http.StatusOK, status)
}

// ClearCart handles DELETE /cart/:slug.
func (cc *CartController) ClearCart(c *gin.Context) {
	if svcErr := cc.cartService.ClearCart(c.Request.Context(), cartmw.Owner(c), c.Param("slug")); svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
}

// MergeCart handles POST /cart/:slug/merge. Requires an authenticated
// caller; the guest cart comes from X-Cart-ID or the cart_id cookie.
func (cc *CartController) MergeCart(c *gin.Context) {
	cart, moved, svcErr := cc.cartService.MergeGuest(c.Request.Context(), cartmw.Guest(c), cartmw.Owner(c), c.Param("slug"))
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	c.JSON(http.StatusOK, gin.H{"merged": moved, "cart": cart})
}

// Checkout handles POST /cart/:slug/checkout.
func (cc *CartController) Checkout(c *gin.Context) {
	var req models.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": apperrors.Details(err)})
		return
	}

	var caller *middleware.Identity
	if id := middleware.CurrentIdentity(c); id.Authenticated() {
		caller = &id
	}

	resp, replayed, svcErr := cc.cartService.Checkout(c.Request.Context(), caller, cartmw.Owner(c), c.Param("slug"), c.GetHeader(IdempotencyHeader), req)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	if replayed {
		c.Header("Idempotent-Replayed", "true")
	}
	c.JSON(http.StatusCreated, resp)
}

// GetWishlist handles GET /wishlist/:slug.
func (cc *CartController) GetWishlist(c *gin.Context) {
	items, svcErr := cc.cartService.Wishlist(c.Request.Context(), cartmw.Owner(c), c.Param("slug"))
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "count": len(items)})
}

// ToggleWishlist handles POST /wishlist/:slug/toggle.
func (cc *CartController) ToggleWishlist(c *gin.Context) {
	var req models.ToggleWishlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": apperrors.Details(err)})
		return
	}
	in, svcErr := cc.cartService.ToggleWishlist(c.Request.Context(), cartmw.Owner(c), c.Param("slug"), req.Product)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	c.JSON(http.StatusOK, gin.H{"in_wishlist": in})
}

// RemoveFromWishlist handles DELETE /wishlist/:slug/:productId.
func (cc *CartController) RemoveFromWishlist(c *gin.Context) {
	if svcErr := cc.cartService.RemoveFromWishlist(c.Request.Context(), cartmw.Owner(c), c.Param("slug"), c.Param("productId")); svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	c.JSON(http.StatusOK, gin.H{"in_wishlist": false})
}

// InWishlist handles GET /wishlist/:slug/:productId.
func (cc *CartController) InWishlist(c *gin.Context) {
	in, svcErr := cc.cartService.InWishlist(c.Request.Context(), cartmw.Owner(c), c.Param("slug"), c.Param("productId"))
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	c.JSON(http.StatusOK, gin.H{"in_wishlist": in})
}
