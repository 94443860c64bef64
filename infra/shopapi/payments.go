package shopapi

import (
	"context"
	"fmt"
	"net/http"
)

// PaymentClient hands orders off to the external payment collaborator. The
// storefront never processes payments itself; it only initializes a payment
// session and surfaces the result.
type PaymentClient struct {
	client *Client
}

// PaymentInput is the payload for initializing a payment session.
type PaymentInput struct {
	OrderID       string  `json:"orderId"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
	PaymentMethod string  `json:"paymentMethod"`
}

// PaymentSession is the backend's handle on an initialized payment.
type PaymentSession struct {
	PaymentID   string `json:"paymentId"`
	RedirectURL string `json:"redirectUrl"`
}

// Init initializes payment collection for an order.
func (p *PaymentClient) Init(ctx context.Context, in PaymentInput) (PaymentSession, error) {
	if in.OrderID == "" {
		return PaymentSession{}, fmt.Errorf("order id is required")
	}
	if in.Currency == "" {
		in.Currency = "USD"
	}

	var resp struct {
		Success     bool   `json:"success"`
		Message     string `json:"message"`
		PaymentID   string `json:"paymentId"`
		RedirectURL string `json:"redirectUrl"`
	}
	if err := p.client.do(ctx, "payment", http.MethodPost, "/payment/init", in, &resp); err != nil {
		return PaymentSession{}, err
	}
	if !resp.Success {
		return PaymentSession{}, &Error{StatusCode: http.StatusBadRequest, Message: resp.Message}
	}
	return PaymentSession{PaymentID: resp.PaymentID, RedirectURL: resp.RedirectURL}, nil
}
