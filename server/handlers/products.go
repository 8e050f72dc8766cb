package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/plaza-social/plaza/model"
	"github.com/plaza-social/plaza/utils"
)

type NewProductInput struct {
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description"`
	PriceCents  int64    `json:"price_cents" binding:"required,gt=0"`
	Currency    string   `json:"currency" binding:"required,len=3"`
	Stock       int32    `json:"stock" binding:"gte=0"`
	ImageUrls   []string `json:"image_urls"`
}

type UpdateProductInput struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	PriceCents  *int64   `json:"price_cents"`
	Stock       *int32   `json:"stock"`
	ImageUrls   []string `json:"image_urls"`
	Active      *bool    `json:"active"`
}

// CreateProduct lists a new product for sale by the caller.
func (h *Handler) CreateProduct(c *gin.Context) {
	var input NewProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		abortWithError(c, http.StatusBadRequest, utils.ErrorInvalidArgument, err.Error())
		return
	}

	imageUrls, _ := json.Marshal(input.ImageUrls)
	product := model.Product{
		Id:          uuid.New().String(),
		CreatedAt:   time.Now(),
		SellerID:    currentUserId(c),
		Title:       input.Title,
		Description: input.Description,
		PriceCents:  input.PriceCents,
		Currency:    input.Currency,
		Stock:       input.Stock,
		ImageUrls:   datatypes.JSON(imageUrls),
		Active:      true,
	}
	if err := h.DB.Create(&product).Error; err != nil {
		abortInternal(c, err)
		return
	}
	c.JSON(http.StatusCreated, &product)
}

// GetProduct fetches one listing.
func (h *Handler) GetProduct(c *gin.Context) {
	var product model.Product
	if h.DB.Preload("Seller").Where("id = ?", c.Param("id")).First(&product).RowsAffected == 0 {
		abortWithError(c, http.StatusNotFound, utils.ErrorNotFound, "product not found")
		return
	}
	c.JSON(http.StatusOK, &product)
}

// ListProducts pages active listings newest first, optionally filtered
// by seller.
func (h *Handler) ListProducts(c *gin.Context) {
	query := h.DB.Preload("Seller").Where("active = ?", true)
	if sellerId := c.Query("seller_id"); sellerId != "" {
		query = query.Where("seller_id = ?", sellerId)
	}

	var products []model.Product
	if err := query.Order("created_at desc").Limit(limitQuery(c)).Find(&products).Error; err != nil {
		abortInternal(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

// UpdateProduct lets the seller edit their listing. Price edits do not
// touch orders already placed, those carry their own snapshot.
func (h *Handler) UpdateProduct(c *gin.Context) {
	var input UpdateProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		abortWithError(c, http.StatusBadRequest, utils.ErrorInvalidArgument, err.Error())
		return
	}

	var product model.Product
	if h.DB.Where("id = ?", c.Param("id")).First(&product).RowsAffected == 0 {
		abortWithError(c, http.StatusNotFound, utils.ErrorNotFound, "product not found")
		return
	}
	if product.SellerID != currentUserId(c) {
		abortWithError(c, http.StatusForbidden, utils.ErrorPermissionDeny, "not the seller")
		return
	}

	updates := map[string]interface{}{}
	if input.Title != nil {
		updates["title"] = *input.Title
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.PriceCents != nil {
		if *input.PriceCents <= 0 {
			abortWithError(c, http.StatusBadRequest, utils.ErrorInvalidArgument, "price must be positive")
			return
		}
		updates["price_cents"] = *input.PriceCents
	}
	if input.Stock != nil {
		if *input.Stock < 0 {
			abortWithError(c, http.StatusBadRequest, utils.ErrorInvalidArgument, "stock cannot be negative")
			return
		}
		updates["stock"] = *input.Stock
	}
	if input.ImageUrls != nil {
		imageUrls, _ := json.Marshal(input.ImageUrls)
		updates["image_urls"] = datatypes.JSON(imageUrls)
	}
	if input.Active != nil {
		updates["active"] = *input.Active
	}
	if len(updates) == 0 {
		c.JSON(http.StatusOK, &product)
		return
	}

	if err := h.DB.Model(&product).Updates(updates).Error; err != nil {
		abortInternal(c, err)
		return
	}
	h.DB.Where("id = ?", product.Id).First(&product)
	c.JSON(http.StatusOK, &product)
}

// DeleteProduct unlists the caller's product.
func (h *Handler) DeleteProduct(c *gin.Context) {
	var product model.Product
	if h.DB.Where("id = ?", c.Param("id")).First(&product).RowsAffected == 0 {
		abortWithError(c, http.StatusNotFound, utils.ErrorNotFound, "product not found")
		return
	}
	if product.SellerID != currentUserId(c) {
		abortWithError(c, http.StatusForbidden, utils.ErrorPermissionDeny, "not the seller")
		return
	}
	if err := h.DB.Delete(&product).Error; err != nil {
		abortInternal(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
