package controllers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "github.com/Khizarkk7/storefront-backend/services/common/errors"
	"github.com/Khizarkk7/storefront-backend/services/common/middleware"
	"github.com/Khizarkk7/storefront-backend/services/common/pagination"
	"github.com/Khizarkk7/storefront-backend/services/inventory-service/models"
	"github.com/Khizarkk7/storefront-backend/services/inventory-service/services"
)

// InventoryController handles HTTP requests for inventory
type InventoryController struct {
	service services.InventoryService
}

func NewInventoryController(service services.InventoryService) *InventoryController {
	return &InventoryController{service: service}
}

// ListByShop handles GET /stock/shop/:shopId.
func (ic *InventoryController) ListByShop(c *gin.Context) {
	page, svcErr := ic.service.ListByShop(c.Request.Context(), c.Param("shopId"), pagination.Parse(c))
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	c.JSON(http.StatusOK, page)
}

// GetStock handles GET /stock/:productId.
func (ic *InventoryController) GetStock(c *gin.Context) {
	view, svcErr := ic.service.GetStock(c.Request.Context(), c.Param("productId"))
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	c.JSON(http.StatusOK, view)
}

// CreateStock handles POST /stock. 201 on create, 200 when the product was
// already registered.
func (ic *InventoryController) CreateStock(c *gin.Context) {
	var req models.CreateStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": apperrors.Details(err)})
		return
	}
	view, created, svcErr := ic.service.CreateStock(c.Request.Context(), middleware.CurrentIdentity(c), &req)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, view)
}

// AddQuantity handles POST /stock/:productId/add.
func (ic *InventoryController) AddQuantity(c *gin.Context) {
	ic.changeQuantity(c, ic.service.AddQuantity)
}

// ReduceQuantity handles POST /stock/:productId/reduce.
func (ic *InventoryController) ReduceQuantity(c *gin.Context) {
	ic.changeQuantity(c, ic.service.ReduceQuantity)
}

type quantityFn func(ctx context.Context, caller middleware.Identity, productID string, qty int) (*models.StockView, *services.ServiceError)

func (ic *InventoryController) changeQuantity(c *gin.Context, fn quantityFn) {
	var req models.QuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": apperrors.Details(err)})
		return
	}
	view, svcErr := fn(c.Request.Context(), middleware.CurrentIdentity(c), c.Param("productId"), req.Quantity)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	c.JSON(http.StatusOK, view)
}

// History handles GET /stock/:productId/history.
func (ic *InventoryController) History(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	rows, svcErr := ic.service.History(c.Request.Context(), middleware.CurrentIdentity(c), c.Param("productId"), limit)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	c.JSON(http.StatusOK, gin.H{"product_id": c.Param("productId"), "history": rows})
}

// CheckStock handles POST /stock/check.
func (ic *InventoryController) CheckStock(c *gin.Context) {
	var req models.ItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": apperrors.Details(err)})
		return
	}
	results, all, svcErr := ic.service.CheckStock(c.Request.Context(), req.Items)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	c.JSON(http.StatusOK, gin.H{"all_sufficient": all, "results": results})
}

// ReserveStock handles POST /stock/reserve.
func (ic *InventoryController) ReserveStock(c *gin.Context) {
	var req models.ItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": apperrors.Details(err)})
		return
	}
	results, svcErr := ic.service.Reserve(c.Request.Context(), &req)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  "Stock reserved successfully",
		"order_id": req.OrderID,
		"results":  results,
	})
}

// ReleaseStock handles POST /stock/release.
func (ic *InventoryController) ReleaseStock(c *gin.Context) {
	var req models.ItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": apperrors.Details(err)})
		return
	}
	if svcErr := ic.service.Release(c.Request.Context(), &req); svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Stock released successfully", "order_id": req.OrderID})
}

// ConfirmStock handles POST /stock/confirm.
func (ic *InventoryController) ConfirmStock(c *gin.Context) {
	var req models.ItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": apperrors.Details(err)})
		return
	}
	if svcErr := ic.service.Confirm(c.Request.Context(), &req); svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Stock confirmed successfully", "order_id": req.OrderID})
}
