package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/Khizarkk7/storefront-backend/services/common/errors"
	"github.com/Khizarkk7/storefront-backend/services/common/middleware"
	"github.com/Khizarkk7/storefront-backend/services/common/pagination"
	"github.com/Khizarkk7/storefront-backend/services/order-service/models"
	"github.com/Khizarkk7/storefront-backend/services/order-service/services"
)

type OrderController struct {
	orderService services.OrderService
}

func NewOrderController(orderService services.OrderService) *OrderController {
	return &OrderController{orderService: orderService}
}

// CreateOrder handles order creation requests. Guests may check out.
func (oc *OrderController) CreateOrder(ctx *gin.Context) {
	var req models.CreateOrderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": apperrors.Details(err)})
		return
	}
	resp, svcErr := oc.orderService.CreateOrder(ctx.Request.Context(), middleware.CurrentIdentity(ctx), &req)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	ctx.JSON(http.StatusCreated, resp)
}

// GetOrder returns a single order by id.
func (oc *OrderController) GetOrder(ctx *gin.Context) {
	order, svcErr := oc.orderService.GetOrder(ctx.Request.Context(), ctx.Param("id"))
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"order": order})
}

// GetMyOrders returns paginated orders for the authenticated user
func (oc *OrderController) GetMyOrders(ctx *gin.Context) {
	p := pagination.Parse(ctx)
	orders, total, svcErr := oc.orderService.ListMyOrders(ctx.Request.Context(), middleware.CurrentIdentity(ctx), p)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"orders": orders, "meta": pagination.NewMeta(p, total)})
}

func (oc *OrderController) GetShopOrders(ctx *gin.Context) {
	p := pagination.Parse(ctx)
	orders, total, svcErr := oc.orderService.ListShopOrders(ctx.Request.Context(), middleware.CurrentIdentity(ctx), ctx.Param("shopId"), ctx.Query("status"), p)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"orders": orders, "meta": pagination.NewMeta(p, total)})
}

// GetAllOrders returns paginated orders across shops (system admin only)
func (oc *OrderController) GetAllOrders(ctx *gin.Context) {
	p := pagination.Parse(ctx)
	orders, total, svcErr := oc.orderService.ListAllOrders(ctx.Request.Context(), middleware.CurrentIdentity(ctx), ctx.Query("status"), p)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"orders": orders, "meta": pagination.NewMeta(p, total)})
}

func (oc *OrderController) UpdateStatus(ctx *gin.Context) {
	var req models.UpdateStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": apperrors.Details(err)})
		return
	}
	order, svcErr := oc.orderService.UpdateStatus(ctx.Request.Context(), middleware.CurrentIdentity(ctx), ctx.Param("id"), &req)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Order status updated", "order": order})
}

// CancelOrder accepts an empty body.
func (oc *OrderController) CancelOrder(ctx *gin.Context) {
	var req models.CancelRequest
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": apperrors.Details(err)})
			return
		}
	}
	order, svcErr := oc.orderService.CancelOrder(ctx.Request.Context(), middleware.CurrentIdentity(ctx), ctx.Param("id"), req.Reason)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Order cancelled", "order": order})
}

func (oc *OrderController) GetHistory(ctx *gin.Context) {
	entries, svcErr := oc.orderService.History(ctx.Request.Context(), ctx.Param("id"))
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"history": entries})
}
