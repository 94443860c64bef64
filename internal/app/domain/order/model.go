package order

import (
	"time"

	"github.com/clovermart/storefront/internal/app/domain/catalog"
)

// Status is the fulfilment state of an order. The main progression is
// pending -> confirmed -> shipped -> delivered; cancelled is a terminal
// branch reachable from any non-terminal state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transitions are allowed from s.
func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanTransition reports whether an order may move from s to next.
func (s Status) CanTransition(next Status) bool {
	if !next.Valid() || s.Terminal() {
		return false
	}
	if next == StatusCancelled {
		return true
	}
	switch s {
	case StatusPending:
		return next == StatusConfirmed
	case StatusConfirmed:
		return next == StatusShipped
	case StatusShipped:
		return next == StatusDelivered
	}
	return false
}

// Line is one product snapshot within an order, captured at purchase time.
type Line struct {
	Product  catalog.Product `json:"product"`
	Quantity int             `json:"quantity"`
	Price    float64         `json:"price"`
}

// ShippingAddress is the delivery destination captured at checkout.
type ShippingAddress struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	City      string `json:"city"`
	ZipCode   string `json:"zipCode"`
	Country   string `json:"country"`
}

// Order is a placed order. Status is the only field mutated after creation,
// and only through admin operations.
type Order struct {
	ID              string          `json:"_id"`
	UserID          string          `json:"user"`
	Lines           []Line          `json:"products"`
	TotalAmount     float64         `json:"totalAmount"`
	Status          Status          `json:"status"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string          `json:"paymentMethod"`
	CreatedAt       time.Time       `json:"createdAt"`
}
