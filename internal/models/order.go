package models

import (
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrInvalidOrderStatus = errors.New("invalid status")

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancel"
)

var orderStatuses = []OrderStatus{OrderPending, OrderProcessing, OrderDelivered, OrderCancelled}

// ParseOrderStatus accepts exactly one of the four stored status values.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, status := range orderStatuses {
		if string(status) == strings.TrimSpace(value) {
			return status, nil
		}
	}
	return "", ErrInvalidOrderStatus
}

func (s OrderStatus) Valid() bool {
	_, err := ParseOrderStatus(string(s))
	return err == nil
}

// IsTerminal reports whether the order has reached the end of its normal flow.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderDelivered || s == OrderCancelled
}

// CanTransition validates an admin status change. Any valid status may
// follow any other, so admins can correct mistakes (delivered -> pending is
// accepted); only unknown values are rejected.
func CanTransition(from, to OrderStatus) error {
	if !to.Valid() {
		return ErrInvalidOrderStatus
	}
	return nil
}

// OrderItem is a line item with the unit price captured at checkout.
type OrderItem struct {
	ProductID primitive.ObjectID `bson:"productId" json:"productId"`
	Title     string             `bson:"title,omitempty" json:"title,omitempty"`
	Quantity  int                `bson:"quantity" json:"quantity"`
	Price     float64            `bson:"price" json:"price"`
}

// ShippingAddress is a snapshot taken at checkout; later address edits do not
// affect existing orders.
type ShippingAddress struct {
	Name    string `bson:"name" json:"name" binding:"required"`
	Address string `bson:"address" json:"address" binding:"required"`
	City    string `bson:"city" json:"city" binding:"required"`
	State   string `bson:"state" json:"state"`
	ZipCode string `bson:"zipCode" json:"zipCode" binding:"required"`
	Phone   string `bson:"phone" json:"phone" binding:"required"`
}

// OrderUser is the populated owner shown in admin listings.
type OrderUser struct {
	ID    primitive.ObjectID `bson:"_id" json:"_id"`
	Name  string             `bson:"name" json:"name"`
	Email string             `bson:"email" json:"email"`
}

// Order defines the persisted order document. TotalAmount is computed from
// Items when the order is created and is never accepted from clients.
type Order struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserID          primitive.ObjectID `bson:"userId" json:"userId"`
	User            *OrderUser         `bson:"-" json:"user,omitempty"`
	Items           []OrderItem        `bson:"items" json:"items"`
	TotalAmount     float64            `bson:"totalAmount" json:"totalAmount"`
	Status          OrderStatus        `bson:"status" json:"status"`
	ShippingAddress ShippingAddress    `bson:"shippingAddress" json:"shippingAddress"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// LineTotal sums price*quantity over the items.
func LineTotal(items []OrderItem) float64 {
	total := 0.0
	for _, item := range items {
		total += item.Price * float64(item.Quantity)
	}
	return total
}
