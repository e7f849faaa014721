package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Khizarkk7/storefront-backend/services/bff-service/services"
	"github.com/Khizarkk7/storefront-backend/services/common/middleware"
)

type BFFController struct {
	service services.BFFService
}

func NewBFFController(service services.BFFService) *BFFController {
	return &BFFController{service: service}
}

// Storefront handles GET /storefront/:slug.
func (b *BFFController) Storefront(c *gin.Context) {
	sf, svcErr := b.service.Storefront(c.Request.Context(), c.Param("slug"), c.Request.URL.Query())
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	c.JSON(http.StatusOK, sf)
}

// Dashboard handles GET /dashboard.
func (b *BFFController) Dashboard(c *gin.Context) {
	d, svcErr := b.service.Dashboard(c.Request.Context(), middleware.CurrentIdentity(c), c.Query("shop_id"))
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	c.JSON(http.StatusOK, d)
}
