package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/Khizarkk7/storefront-backend/services/cart-service/controllers"
	cartmw "github.com/Khizarkk7/storefront-backend/services/cart-service/middleware"
	"github.com/Khizarkk7/storefront-backend/services/common/middleware"
)

func RegisterCartRoutes(r *gin.Engine, cc *controllers.CartController) {
	cart := r.Group("/cart")
	cart.Use(middleware.OptionalAuth(), cartmw.CartOwner())
	{
		cart.GET("/:slug", cc.GetCart)
		cart.DELETE("/:slug", cc.ClearCart)
		cart.POST("/:slug/items", cc.AddItem)
		cart.GET("/:slug/items/:productId", cc.ItemStatus)
		cart.PUT("/:slug/items/:productId", cc.SetQuantity)
		cart.DELETE("/:slug/items/:productId", cc.RemoveItem)
		cart.POST("/:slug/merge", middleware.AuthMiddleware(), cc.MergeCart)
		cart.POST("/:slug/checkout", cc.Checkout)
	}

	wishlist := r.Group("/wishlist")
	wishlist.Use(middleware.OptionalAuth(), cartmw.CartOwner())
	{
		wishlist.GET("/:slug", cc.GetWishlist)
		wishlist.POST("/:slug/toggle", cc.ToggleWishlist)
		wishlist.GET("/:slug/:productId", cc.InWishlist)
		wishlist.DELETE("/:slug/:productId", cc.RemoveFromWishlist)
	}
}
