// Package checkout turns the current cart into an order: it derives the
// shipping/tax/total arithmetic, places the order through the gateway, and
// hands the final amount to the external payment collaborator.
package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/clovermart/storefront/infra/shopapi"
	cartdomain "github.com/clovermart/storefront/internal/app/domain/cart"
	"github.com/clovermart/storefront/internal/app/domain/order"
	"github.com/clovermart/storefront/internal/notify"
	"github.com/clovermart/storefront/pkg/logger"
)

const (
	// FreeShippingThreshold is the subtotal at which shipping becomes free.
	FreeShippingThreshold = 50.0
	// FlatShippingRate applies below the free-shipping threshold.
	FlatShippingRate = 10.0
	// TaxRate is applied to the subtotal.
	TaxRate = 0.08
)

// ErrEmptyCart is returned when checkout is attempted with no line items.
var ErrEmptyCart = errors.New("cart is empty")

// OrderGateway is the slice of the gateway client used to place orders.
type OrderGateway interface {
	Create(ctx context.Context, in shopapi.CreateOrderInput) (order.Order, error)
}

// PaymentGateway initializes payment collection for a placed order.
type PaymentGateway interface {
	Init(ctx context.Context, in shopapi.PaymentInput) (shopapi.PaymentSession, error)
}

var (
	_ OrderGateway   = (*shopapi.OrderClient)(nil)
	_ PaymentGateway = (*shopapi.PaymentClient)(nil)
)

// CartSource is the slice of the cart store checkout consumes.
type CartSource interface {
	Items() []cartdomain.Item
	Clear()
}

// Quote is the derived cost breakdown for the current cart.
type Quote struct {
	Subtotal float64
	Shipping float64
	Tax      float64
	Total    float64
}

// Service drives checkout.
type Service struct {
	orders   OrderGateway
	payments PaymentGateway
	cart     CartSource
	notifier notify.Notifier
	log      *logger.Logger
}

// New constructs a checkout service.
func New(orders OrderGateway, payments PaymentGateway, cart CartSource, notifier notify.Notifier, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("checkout")
	}
	if notifier == nil {
		notifier = notify.NewLogNotifier(log)
	}
	return &Service{
		orders:   orders,
		payments: payments,
		cart:     cart,
		notifier: notifier,
		log:      log,
	}
}

// ShippingFor returns the shipping cost for a subtotal: free at or above
// the threshold, flat rate below it.
func ShippingFor(subtotal float64) float64 {
	if subtotal >= FreeShippingThreshold {
		return 0
	}
	return FlatShippingRate
}

// TaxFor returns the tax on a subtotal.
func TaxFor(subtotal float64) float64 {
	return subtotal * TaxRate
}

// QuoteCart derives the cost breakdown for the current cart contents.
func (s *Service) QuoteCart() Quote {
	subtotal := cartdomain.TotalAmount(s.cart.Items())
	shipping := ShippingFor(subtotal)
	tax := TaxFor(subtotal)
	return Quote{
		Subtotal: subtotal,
		Shipping: shipping,
		Tax:      tax,
		Total:    subtotal + shipping + tax,
	}
}

// PlaceOrder creates an order from the current cart and initializes payment
// for the final total. On success the local cart empties; a failure at
// either step surfaces and leaves the cart intact.
func (s *Service) PlaceOrder(ctx context.Context, addr order.ShippingAddress, paymentMethod string) (order.Order, shopapi.PaymentSession, error) {
	items := s.cart.Items()
	if len(items) == 0 {
		return order.Order{}, shopapi.PaymentSession{}, ErrEmptyCart
	}

	quote := s.QuoteCart()
	lines := make([]shopapi.OrderLineInput, 0, len(items))
	for _, it := range items {
		lines = append(lines, shopapi.OrderLineInput{
			Product:  it.Product.ID,
			Quantity: it.Quantity,
			Price:    it.Product.Price,
		})
	}

	placed, err := s.orders.Create(ctx, shopapi.CreateOrderInput{
		Lines:           lines,
		TotalAmount:     quote.Total,
		ShippingAddress: addr,
		PaymentMethod:   paymentMethod,
	})
	if err != nil {
		s.fail("Checkout failed", err)
		return order.Order{}, shopapi.PaymentSession{}, fmt.Errorf("create order: %w", err)
	}

	payment, err := s.payments.Init(ctx, shopapi.PaymentInput{
		OrderID:       placed.ID,
		Amount:        quote.Total,
		Currency:      "USD",
		PaymentMethod: paymentMethod,
	})
	if err != nil {
		s.fail("Checkout failed", err)
		return order.Order{}, shopapi.PaymentSession{}, fmt.Errorf("initialize payment: %w", err)
	}

	s.cart.Clear()
	s.log.WithField("order_id", placed.ID).Info("order placed")
	s.notifier.Notify(notify.Notice{
		Severity: notify.SeverityInfo,
		Title:    "Order placed successfully!",
		Message:  "You will receive a confirmation email shortly.",
	})
	return placed, payment, nil
}

func (s *Service) fail(title string, err error) {
	s.log.WithError(err).Warn(title)
	msg := "Something went wrong. Please try again."
	var apiErr *shopapi.Error
	if errors.As(err, &apiErr) {
		msg = apiErr.UserMessage()
	}
	s.notifier.Notify(notify.Notice{
		Severity: notify.SeverityError,
		Title:    title,
		Message:  msg,
	})
}
