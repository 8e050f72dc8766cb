package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/plaza-social/plaza/model"
	"github.com/plaza-social/plaza/utils"
)

type PaymentInput struct {
	// Reference is an opaque idempotency handle from the caller, e.g. a
	// client-side charge id. Optional.
	Reference string `json:"reference"`
}

// loadOrderForPayment fetches the order and checks the caller may act
// on its ledger.
func (h *Handler) loadOrderForPayment(c *gin.Context) *model.Order {
	var order model.Order
	if h.DB.Preload("Product").Where("id = ?", c.Param("orderId")).First(&order).RowsAffected == 0 {
		abortWithError(c, http.StatusNotFound, utils.ErrorNotFound, "order not found")
		return nil
	}
	if order.BuyerID != currentUserId(c) {
		abortWithError(c, http.StatusForbidden, utils.ErrorPermissionDeny, "not the buyer")
		return nil
	}
	return &order
}

// CapturePayment pays a pending order. The capture row and the status
// flip commit together, so a paid order always has exactly one capture
// in the ledger.
func (h *Handler) CapturePayment(c *gin.Context) {
	var input PaymentInput
	if err := c.ShouldBindJSON(&input); err != nil && c.Request.ContentLength > 0 {
		abortWithError(c, http.StatusBadRequest, utils.ErrorInvalidArgument, err.Error())
		return
	}

	order := h.loadOrderForPayment(c)
	if order == nil {
		return
	}
	if !order.Status.CanTransition(model.OrderStatusPaid) {
		abortWithError(c, http.StatusConflict, utils.ErrorConflict,
			"order is "+string(order.Status)+", not payable")
		return
	}

	payment := model.Payment{
		Id:          uuid.New().String(),
		CreatedAt:   time.Now(),
		OrderID:     order.Id,
		Kind:        model.PaymentKindCapture,
		AmountCents: order.AmountCents,
		Currency:    order.Currency,
		Reference:   input.Reference,
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Order{}).
			Where("id = ? AND status = ?", order.Id, model.OrderStatusPending).
			UpdateColumn("status", model.OrderStatusPaid)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrInvalidTransaction
		}
		return tx.Create(&payment).Error
	})
	if err != nil {
		abortWithError(c, http.StatusConflict, utils.ErrorConflict, "order already paid or cancelled")
		return
	}

	h.publishEvent(&model.Event{
		Type:        model.EventTypeOrderPaid,
		ActorID:     order.BuyerID,
		RecipientID: order.Product.SellerID,
		SubjectType: "order",
		SubjectID:   order.Id,
	})

	h.DB.Preload("Product").Where("id = ?", order.Id).First(order)
	c.JSON(http.StatusOK, gin.H{"order": order, "payment": &payment})
}

// RefundPayment records a refund against a cancelled order that was
// paid. The ledger ends balanced: one capture, one refund.
func (h *Handler) RefundPayment(c *gin.Context) {
	var input PaymentInput
	if err := c.ShouldBindJSON(&input); err != nil && c.Request.ContentLength > 0 {
		abortWithError(c, http.StatusBadRequest, utils.ErrorInvalidArgument, err.Error())
		return
	}

	order := h.loadOrderForPayment(c)
	if order == nil {
		return
	}
	if order.Status != model.OrderStatusCancelled {
		abortWithError(c, http.StatusConflict, utils.ErrorConflict, "only cancelled orders are refundable")
		return
	}

	var captured, refunded int64
	h.DB.Model(&model.Payment{}).
		Where("order_id = ? AND kind = ?", order.Id, model.PaymentKindCapture).Count(&captured)
	h.DB.Model(&model.Payment{}).
		Where("order_id = ? AND kind = ?", order.Id, model.PaymentKindRefund).Count(&refunded)
	if captured == 0 {
		abortWithError(c, http.StatusConflict, utils.ErrorConflict, "nothing was captured on this order")
		return
	}
	if refunded > 0 {
		abortWithError(c, http.StatusConflict, utils.ErrorConflict, "order already refunded")
		return
	}

	payment := model.Payment{
		Id:          uuid.New().String(),
		CreatedAt:   time.Now(),
		OrderID:     order.Id,
		Kind:        model.PaymentKindRefund,
		AmountCents: order.AmountCents,
		Currency:    order.Currency,
		Reference:   input.Reference,
	}
	if err := h.DB.Create(&payment).Error; err != nil {
		abortInternal(c, err)
		return
	}
	c.JSON(http.StatusOK, &payment)
}

// ListOrderPayments shows the ledger of an order to its buyer or
// seller.
func (h *Handler) ListOrderPayments(c *gin.Context) {
	var order model.Order
	if h.DB.Preload("Product").Where("id = ?", c.Param("orderId")).First(&order).RowsAffected == 0 {
		abortWithError(c, http.StatusNotFound, utils.ErrorNotFound, "order not found")
		return
	}

	userId := currentUserId(c)
	if order.BuyerID != userId && order.Product.SellerID != userId {
		abortWithError(c, http.StatusForbidden, utils.ErrorPermissionDeny, "not your order")
		return
	}

	var payments []model.Payment
	if err := h.DB.Where("order_id = ?", order.Id).
		Order("created_at asc").Find(&payments).Error; err != nil {
		abortInternal(c, err)
		return
	}
	c.JSON(http.StatusOK, payments)
}
