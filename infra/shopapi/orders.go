package shopapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/clovermart/storefront/internal/app/domain/order"
)

// OrderClient creates orders and lists the current user's order history.
type OrderClient struct {
	client *Client
}

// OrderLineInput is one product reference within a new order.
type OrderLineInput struct {
	Product  string  `json:"product"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// CreateOrderInput is the payload for placing an order.
type CreateOrderInput struct {
	Lines           []OrderLineInput      `json:"products"`
	TotalAmount     float64               `json:"totalAmount"`
	ShippingAddress order.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string                `json:"paymentMethod"`
}

// Create places a new order and returns it as persisted by the backend.
func (o *OrderClient) Create(ctx context.Context, in CreateOrderInput) (order.Order, error) {
	if len(in.Lines) == 0 {
		return order.Order{}, fmt.Errorf("order has no lines")
	}

	var resp struct {
		Success bool        `json:"success"`
		Message string      `json:"message"`
		Order   order.Order `json:"order"`
	}
	if err := o.client.do(ctx, "order", http.MethodPost, "/order/create-order", in, &resp); err != nil {
		return order.Order{}, err
	}
	if !resp.Success {
		return order.Order{}, &Error{StatusCode: http.StatusBadRequest, Message: resp.Message}
	}
	return resp.Order, nil
}

// List fetches the caller's orders.
func (o *OrderClient) List(ctx context.Context) ([]order.Order, error) {
	var resp struct {
		Orders []order.Order `json:"orders"`
	}
	if err := o.client.do(ctx, "order", http.MethodGet, "/order/all", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Orders, nil
}
