package model

import (
	"time"

	"gorm.io/gorm"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// CanTransition encodes the order state machine:
// pending -> paid -> shipped -> completed, and pending|paid -> cancelled.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	switch s {
	case OrderStatusPending:
		return next == OrderStatusPaid || next == OrderStatusCancelled
	case OrderStatusPaid:
		return next == OrderStatusShipped || next == OrderStatusCancelled
	case OrderStatusShipped:
		return next == OrderStatusCompleted
	default:
		return false
	}
}

/*

Order is a purchase of a product by a buyer

Id: primary key
CreatedAt: time when entity is created
UpdatedAt: time of the last status transition
DeletedAt: time when entity is deleted

BuyerID:
Buyer: purchasing user, "belongs-to" relation
ProductID:
Product: the listing ordered, "belongs-to" relation

Quantity: units ordered
AmountCents / Currency: price snapshot taken at order time, immune to
		later product edits

Status: see the state machine above. All transitions happen inside a
		transaction that re-checks the current status, illegal ones
		are rejected.

*/

type Order struct {
	Id        string `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt

	BuyerID string `gorm:"index"`
	Buyer   User

	ProductID string
	Product   Product

	Quantity    int32
	AmountCents int64
	Currency    string

	Status OrderStatus
}

type PaymentKind string

const (
	PaymentKindCapture PaymentKind = "capture"
	PaymentKindRefund  PaymentKind = "refund"
)

/*

Payment is a ledger row recording money movement against an order.
There is no external processor behind it, the ledger is the source of
truth.

*/

type Payment struct {
	Id        string `gorm:"primaryKey"`
	CreatedAt time.Time

	OrderID string `gorm:"index"`
	Kind    PaymentKind

	AmountCents int64
	Currency    string

	// Reference is an opaque idempotency / reconciliation handle the
	// caller may attach.
	Reference string
}
