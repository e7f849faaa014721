package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/Khizarkk7/storefront-backend/services/common/errors"
	"github.com/Khizarkk7/storefront-backend/services/common/middleware"
	"github.com/Khizarkk7/storefront-backend/services/common/pagination"
	"github.com/Khizarkk7/storefront-backend/services/product-service/models"
	"github.com/Khizarkk7/storefront-backend/services/product-service/services"
)

type ProductController struct {
	service services.ProductService
}

func NewProductController(service services.ProductService) *ProductController {
	return &ProductController{service: service}
}

// ListByShop handles GET /products/shop/:shopId.
func (pc *ProductController) ListByShop(c *gin.Context) {
	q := models.ListQuery{Status: c.Query("status"), Search: c.Query("search")}
	page, svcErr := pc.service.ListByShop(c.Request.Context(), c.Param("shopId"), q, pagination.Parse(c))
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	c.JSON(http.StatusOK, page)
}

// GetProduct handles GET /products/:id.
func (pc *ProductController) GetProduct(c *gin.Context) {
	product, svcErr := pc.service.GetProduct(c.Request.Context(), c.Param("id"))
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	c.JSON(http.StatusOK, product)
}

// CreateProduct handles POST /products (JSON, or multipart with an "image" part).
func (pc *ProductController) CreateProduct(c *gin.Context) {
	var req models.CreateProductRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": apperrors.Details(err)})
		return
	}
	image, done, ok := imageFromForm(c)
	if !ok {
		return
	}
	defer done()

	product, svcErr := pc.service.CreateProduct(c.Request.Context(), middleware.CurrentIdentity(c), &req, image)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	c.JSON(http.StatusCreated, product)
}

// UpdateProduct handles PUT /products/:id.
func (pc *ProductController) UpdateProduct(c *gin.Context) {
	var req models.UpdateProductRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": apperrors.Details(err)})
		return
	}
	image, done, ok := imageFromForm(c)
	if !ok {
		return
	}
	defer done()

	product, svcErr := pc.service.UpdateProduct(c.Request.Context(), middleware.CurrentIdentity(c), c.Param("id"), &req, image)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	c.JSON(http.StatusOK, product)
}

// DeleteProduct handles DELETE /products/:id.
func (pc *ProductController) DeleteProduct(c *gin.Context) {
	if svcErr := pc.service.DeleteProduct(c.Request.Context(), middleware.CurrentIdentity(c), c.Param("id")); svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
}

// PresignImage handles POST /products/images/presign.
func (pc *ProductController) PresignImage(c *gin.Context) {
	var req models.PresignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": apperrors.Details(err)})
		return
	}
	resp, svcErr := pc.service.PresignImage(c.Request.Context(), middleware.CurrentIdentity(c), &req)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// imageFromForm returns the optional "image" part of a multipart request.
func imageFromForm(c *gin.Context) (*models.ImageUpload, func(), bool) {
	noop := func() {}
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		return nil, noop, true
	}
	fh, err := c.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, noop, true
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid image upload", "details": apperrors.Details(err)})
		return nil, noop, false
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid image upload", "details": apperrors.Details(err)})
		return nil, noop, false
	}
	return &models.ImageUpload{Filename: fh.Filename, Size: fh.Size, Body: f}, func() { _ = f.Close() }, true
}
