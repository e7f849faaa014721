package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/Khizarkk7/storefront-backend/services/common/errors"
	"github.com/Khizarkk7/storefront-backend/services/common/middleware"
	"github.com/Khizarkk7/storefront-backend/services/common/pagination"
	"github.com/Khizarkk7/storefront-backend/services/shop-service/models"
	"github.com/Khizarkk7/storefront-backend/services/shop-service/services"
)

type ShopController struct {
	shopService services.ShopService
	menuService services.MenuService
}

func NewShopController(shopService services.ShopService, menuService services.MenuService) *ShopController {
	return &ShopController{shopService: shopService, menuService: menuService}
}

// ListShops handles GET /shops.
func (sc *ShopController) ListShops(c *gin.Context) {
	p := pagination.Parse(c)
	filter := models.ListFilter{
		Search:          c.Query("search"),
		IncludeInactive: c.Query("include_inactive") == "true",
	}
	shops, total, svcErr := sc.shopService.ListShops(c.Request.Context(), filter, p)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": shops, "meta": pagination.NewMeta(p, total)})
}

// CreateShop handles POST /shops (multipart/form-data or JSON).
func (sc *ShopController) CreateShop(c *gin.Context) {
	form, logo, done, ok := bindShopForm(c)
	if !ok {
		return
	}
	defer done()
	shop, svcErr := sc.shopService.CreateShop(c.Request.Context(), middleware.CurrentIdentity(c), form, logo)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Shop created", "shop": shop})
}

// GetShop handles GET /shops/:id.
func (sc *ShopController) GetShop(c *gin.Context) {
	shop, svcErr := sc.shopService.GetShop(c.Request.Context(), middleware.CurrentIdentity(c), c.Param("id"))
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	c.JSON(http.StatusOK, gin.H{"shop": shop})
}

// UpdateShop handles PUT /shops/:id.
func (sc *ShopController) UpdateShop(c *gin.Context) {
	form, logo, done, ok := bindShopForm(c)
	if !ok {
		return
	}
	defer done()
	shop, svcErr := sc.shopService.UpdateShop(c.Request.Context(), middleware.CurrentIdentity(c), c.Param("id"), form, logo)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Shop updated", "shop": shop})
}

// DeactivateShop handles PUT /shops/:id/deactivate.
func (sc *ShopController) DeactivateShop(c *gin.Context) {
	if svcErr := sc.shopService.DeactivateShop(c.Request.Context(), c.Param("id")); svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Shop deactivated"})
}

// GetPublicShop handles GET /shops/public/:slug.
func (sc *ShopController) GetPublicShop(c *gin.Context) {
	shop, svcErr := sc.shopService.GetPublicShop(c.Request.Context(), c.Param("slug"))
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	c.JSON(http.StatusOK, gin.H{"shop": shop})
}

// GetMenusByRole handles GET /menus/role/:roleId.
func (sc *ShopController) GetMenusByRole(c *gin.Context) {
	roleID, err := strconv.Atoi(c.Param("roleId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid role id"})
		return
	}
	menus, svcErr := sc.menuService.GetMenusByRole(c.Request.Context(), roleID)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	c.JSON(http.StatusOK, gin.H{"menus": menus})
}

// bindShopForm accepts multipart with an optional "logo" part, or plain JSON.
// The returned func closes the uploaded file.
func bindShopForm(c *gin.Context) (*models.ShopForm, *models.LogoUpload, func(), bool) {
	noop := func() {}
	var form models.ShopForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": apperrors.Details(err)})
		return nil, nil, noop, false
	}
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		return &form, nil, noop, true
	}

	fh, err := c.FormFile("logo")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return &form, nil, noop, true
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid logo upload", "details": apperrors.Details(err)})
		return nil, nil, noop, false
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid logo upload", "details": apperrors.Details(err)})
		return nil, nil, noop, false
	}
	return &form, &models.LogoUpload{Filename: fh.Filename, Size: fh.Size, Body: f}, func() { _ = f.Close() }, true
}
