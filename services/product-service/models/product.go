package models

import (
	"io"
	"time"

	"github.com/Khizarkk7/storefront-backend/services/common/pagination"
	"github.com/Khizarkk7/storefront-backend/services/common/stock"
)

// Product is stored in the "products" collection. Ids are uuid strings.
type Product struct {
	ID                string     `bson:"_id" json:"product_id"`
	ShopID            string     `bson:"shop_id" json:"shop_id"`
	ProductName       string     `bson:"product_name" json:"product_name"`
	Description       string     `bson:"description,omitempty" json:"description"`
	Price             float64    `bson:"price" json:"price"`
	ImageKey          string     `bson:"image_key,omitempty" json:"image_key,omitempty"`
	ImageURL          string     `bson:"image_url,omitempty" json:"image_url"`
	StockQuantity     int        `bson:"stock_quantity" json:"stock_quantity"`
	LowStockThreshold int        `bson:"low_stock_threshold" json:"low_stock_threshold"`
	StockVersion      int64      `bson:"stock_version,omitempty" json:"-"`
	IsDeleted         bool       `bson:"is_deleted" json:"-"`
	CreatedAt         time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt         time.Time  `bson:"updated_at" json:"updated_at"`
	DeletedAt         *time.Time `bson:"deleted_at,omitempty" json:"-"`
}

// Status classifies the current stock level.
func (p *Product) Status() string {
	return stock.Classify(p.StockQuantity, p.LowStockThreshold)
}

// ProductView is a product with its computed status.
type ProductView struct {
	Product
	Status string `json:"status"`
}

// ProductPage is one page of a shop's catalogue.
type ProductPage struct {
	Data    []ProductView   `json:"data"`
	Meta    pagination.Meta `json:"meta"`
	Summary stock.Summary   `json:"summary"`
}

type ListQuery struct {
	Status string
	Search string
}

// CreateProductRequest is bound from JSON or multipart form fields.
type CreateProductRequest struct {
	ShopID            string  `form:"shop_id" json:"shop_id" binding:"required,uuid"`
	ProductName       string  `form:"product_name" json:"product_name" binding:"required,min=3,max=200"`
	Description       string  `form:"description" json:"description" binding:"max=2000"`
	Price             float64 `form:"price" json:"price" binding:"required,gt=0"`
	StockQuantity     *int    `form:"stock_quantity" json:"stock_quantity" binding:"required,gte=0"`
	LowStockThreshold int     `form:"low_stock_threshold" json:"low_stock_threshold" binding:"gte=0"`
	ImageKey          string  `form:"image_key" json:"image_key"`
	ImageURL          string  `form:"image_url" json:"image_url" binding:"omitempty,url"`
}

// UpdateProductRequest: nil fields are left unchanged.
type UpdateProductRequest struct {
	ProductName       *string  `form:"product_name" json:"product_name" binding:"omitempty,min=3,max=200"`
	Description       *string  `form:"description" json:"description" binding:"omitempty,max=2000"`
	Price             *float64 `form:"price" json:"price" binding:"omitempty,gt=0"`
	StockQuantity     *int     `form:"stock_quantity" json:"stock_quantity" binding:"omitempty,gte=0"`
	LowStockThreshold *int     `form:"low_stock_threshold" json:"low_stock_threshold" binding:"omitempty,gte=0"`
	ImageKey          *string  `form:"image_key" json:"image_key"`
}

type ImageUpload struct {
	Filename string
	Size     int64
	Body     io.Reader
}

type PresignRequest struct {
	ShopID      string `json:"shop_id" binding:"required,uuid"`
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
}

type PresignResponse struct {
	UploadURL string            `json:"upload_url"`
	Method    string            `json:"method"`
	Key       string            `json:"key"`
	PublicURL string            `json:"public_url"`
	Headers   map[string]string `json:"headers"`
	ExpiresIn int               `json:"expires_in"`
}
