package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/Khizarkk7/storefront-backend/services/common/errors"
	"github.com/Khizarkk7/storefront-backend/services/common/middleware"
	"github.com/Khizarkk7/storefront-backend/services/common/pagination"
	"github.com/Khizarkk7/storefront-backend/services/promotion-service/models"
	"github.com/Khizarkk7/storefront-backend/services/promotion-service/services"
)

// PromoController handles HTTP requests for promo codes.
type PromoController struct {
	promoService services.PromoService
}

func NewPromoController(promoService services.PromoService) *PromoController {
	return &PromoController{promoService: promoService}
}

// Validate handles POST /promotions/validate. An unusable code is a 200
// with valid=false and the reason.
func (pc *PromoController) Validate(ctx *gin.Context) {
	var req models.ValidateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": apperrors.Details(err)})
		return
	}
	resp, svcErr := pc.promoService.Validate(ctx.Request.Context(), &req)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// Redeem handles POST /promotions/redeem (called by order-service).
func (pc *PromoController) Redeem(ctx *gin.Context) {
	var req models.RedeemRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": apperrors.Details(err)})
		return
	}
	resp, svcErr := pc.promoService.Redeem(ctx.Request.Context(), &req)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// CreatePromo handles POST /promotions.
func (pc *PromoController) CreatePromo(ctx *gin.Context) {
	var req models.CreatePromoRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": apperrors.Details(err)})
		return
	}
	promo, svcErr := pc.promoService.CreatePromo(ctx.Request.Context(), middleware.CurrentIdentity(ctx), &req)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"promo": promo})
}

// ListPromos handles GET /promotions?page&limit.
func (pc *PromoController) ListPromos(ctx *gin.Context) {
	p := pagination.Parse(ctx)
	promos, total, svcErr := pc.promoService.ListPromos(ctx.Request.Context(), middleware.CurrentIdentity(ctx), p)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": promos, "meta": pagination.NewMeta(p, total)})
}

// GetPromo handles GET /promotions/:code.
func (pc *PromoController) GetPromo(ctx *gin.Context) {
	promo, svcErr := pc.promoService.GetPromo(ctx.Request.Context(), middleware.CurrentIdentity(ctx), ctx.Param("code"))
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"promo": promo})
}

// DeactivatePromo handles PUT /promotions/:code/deactivate.
func (pc *PromoController) DeactivatePromo(ctx *gin.Context) {
	if svcErr := pc.promoService.DeactivatePromo(ctx.Request.Context(), middleware.CurrentIdentity(ctx), ctx.Param("code")); svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Promo code deactivated"})
}
