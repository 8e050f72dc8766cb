package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/plaza-social/plaza/model"
	"github.com/plaza-social/plaza/utils"
)

type NewOrderInput struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int32  `json:"quantity" binding:"required,gt=0"`
}

var errOutOfStock = errors.New("out of stock")

// PlaceOrder buys a product. Stock is claimed with a conditional
// UPDATE so concurrent orders can never oversell, and the price is
// snapshotted onto the order.
func (h *Handler) PlaceOrder(c *gin.Context) {
	var input NewOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		abortWithError(c, http.StatusBadRequest, utils.ErrorInvalidArgument, err.Error())
		return
	}

	var product model.Product
	if h.DB.Where("id = ? AND active = ?", input.ProductID, true).
		First(&product).RowsAffected == 0 {
		abortWithError(c, http.StatusNotFound, utils.ErrorNotFound, "product not found")
		return
	}

	buyerId := currentUserId(c)
	if product.SellerID == buyerId {
		abortWithError(c, http.StatusBadRequest, utils.ErrorInvalidArgument, "cannot order your own product")
		return
	}

	order := model.Order{
		Id:          uuid.New().String(),
		CreatedAt:   time.Now(),
		BuyerID:     buyerId,
		ProductID:   product.Id,
		Quantity:    input.Quantity,
		AmountCents: product.PriceCents * int64(input.Quantity),
		Currency:    product.Currency,
		Status:      model.OrderStatusPending,
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Product{}).
			Where("id = ? AND stock >= ?", product.Id, input.Quantity).
			UpdateColumn("stock", gorm.Expr("stock - ?", input.Quantity))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errOutOfStock
		}
		return tx.Create(&order).Error
	})
	if err == errOutOfStock {
		abortWithError(c, http.StatusConflict, utils.ErrorConflict, "not enough stock")
		return
	}
	if err != nil {
		abortInternal(c, err)
		return
	}

	h.publishEvent(&model.Event{
		Type:        model.EventTypeOrderPlaced,
		ActorID:     buyerId,
		RecipientID: product.SellerID,
		SubjectType: "order",
		SubjectID:   order.Id,
	})

	c.JSON(http.StatusCreated, &order)
}

// GetOrder shows an order to its buyer or the product's seller.
func (h *Handler) GetOrder(c *gin.Context) {
	var order model.Order
	if h.DB.Preload("Product").Preload("Buyer").Where("id = ?", c.Param("id")).
		First(&order).RowsAffected == 0 {
		abortWithError(c, http.StatusNotFound, utils.ErrorNotFound, "order not found")
		return
	}

	userId := currentUserId(c)
	if order.BuyerID != userId && order.Product.SellerID != userId {
		abortWithError(c, http.StatusForbidden, utils.ErrorPermissionDeny, "not your order")
		return
	}
	c.JSON(http.StatusOK, &order)
}

// ListOrders returns the caller's orders, as buyer by default or as
// seller with role=seller.
func (h *Handler) ListOrders(c *gin.Context) {
	userId := currentUserId(c)

	query := h.DB.Preload("Product").Preload("Buyer")
	if c.Query("role") == "seller" {
		ownProducts := h.DB.Model(&model.Product{}).
			Select("id").
			Where("seller_id = ?", userId)
		query = query.Where("product_id IN (?)", ownProducts)
	} else {
		query = query.Where("buyer_id = ?", userId)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var orders []model.Order
	if err := query.Order("created_at desc").Limit(limitQuery(c)).Find(&orders).Error; err != nil {
		abortInternal(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// ShipOrder is the seller marking a paid order as sent.
func (h *Handler) ShipOrder(c *gin.Context) {
	h.transitionOrder(c, model.OrderStatusShipped, func(order *model.Order, userId string) bool {
		return order.Product.SellerID == userId
	}, nil)
}

// CompleteOrder is the buyer confirming delivery.
func (h *Handler) CompleteOrder(c *gin.Context) {
	h.transitionOrder(c, model.OrderStatusCompleted, func(order *model.Order, userId string) bool {
		return order.BuyerID == userId
	}, nil)
}

// CancelOrder voids a pending or paid order and puts the stock back on
// the shelf. Money captured on it comes back through RefundPayment.
func (h *Handler) CancelOrder(c *gin.Context) {
	h.transitionOrder(c, model.OrderStatusCancelled, func(order *model.Order, userId string) bool {
		return order.BuyerID == userId || order.Product.SellerID == userId
	}, func(tx *gorm.DB, order *model.Order) error {
		return tx.Model(&model.Product{}).
			Where("id = ?", order.ProductID).
			UpdateColumn("stock", gorm.Expr("stock + ?", order.Quantity)).Error
	})
}

// transitionOrder re-checks the current status inside the transaction
// so two racing transitions cannot both win.
func (h *Handler) transitionOrder(
	c *gin.Context,
	target model.OrderStatus,
	allowed func(order *model.Order, userId string) bool,
	sideEffect func(tx *gorm.DB, order *model.Order) error,
) {
	var order model.Order
	if h.DB.Preload("Product").Where("id = ?", c.Param("id")).First(&order).RowsAffected == 0 {
		abortWithError(c, http.StatusNotFound, utils.ErrorNotFound, "order not found")
		return
	}
	if !allowed(&order, currentUserId(c)) {
		abortWithError(c, http.StatusForbidden, utils.ErrorPermissionDeny, "not your order")
		return
	}
	if !order.Status.CanTransition(target) {
		abortWithError(c, http.StatusConflict, utils.ErrorConflict,
			"cannot go from "+string(order.Status)+" to "+string(target))
		return
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Order{}).
			Where("id = ? AND status = ?", order.Id, order.Status).
			UpdateColumn("status", target)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errors.Errorf("order %s moved away from %s concurrently", order.Id, order.Status)
		}
		if sideEffect != nil {
			return sideEffect(tx, &order)
		}
		return nil
	})
	if err != nil {
		abortWithError(c, http.StatusConflict, utils.ErrorConflict, err.Error())
		return
	}

	h.DB.Preload("Product").Where("id = ?", order.Id).First(&order)
	c.JSON(http.StatusOK, &order)
}
