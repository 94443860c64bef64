package checkout

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/clovermart/storefront/infra/shopapi"
	cartdomain "github.com/clovermart/storefront/internal/app/domain/cart"
	"github.com/clovermart/storefront/internal/app/domain/catalog"
	"github.com/clovermart/storefront/internal/app/domain/order"
	"github.com/clovermart/storefront/internal/notify"
	"github.com/clovermart/storefront/pkg/logger"
)

type fakeOrders struct {
	createErr error
	lastInput shopapi.CreateOrderInput
	calls     int
}

func (f *fakeOrders) Create(ctx context.Context, in shopapi.CreateOrderInput) (order.Order, error) {
	f.calls++
	f.lastInput = in
	if f.createErr != nil {
		return order.Order{}, f.createErr
	}
	return order.Order{ID: "o1", TotalAmount: in.TotalAmount, Status: order.StatusPending}, nil
}

type fakePayments struct {
	initErr   error
	lastInput shopapi.PaymentInput
	calls     int
}

func (f *fakePayments) Init(ctx context.Context, in shopapi.PaymentInput) (shopapi.PaymentSession, error) {
	f.calls++
	f.lastInput = in
	if f.initErr != nil {
		return shopapi.PaymentSession{}, f.initErr
	}
	return shopapi.PaymentSession{PaymentID: "pay1", RedirectURL: "https://pay.example/pay1"}, nil
}

type fakeCart struct {
	items   []cartdomain.Item
	cleared bool
}

func (f *fakeCart) Items() []cartdomain.Item { return append([]cartdomain.Item(nil), f.items...) }
func (f *fakeCart) Clear()                   { f.cleared = true }

func cartWith(price float64, qty int) *fakeCart {
	return &fakeCart{items: []cartdomain.Item{{
		ID:       "i1",
		Product:  catalog.Product{ID: "p1", Name: "Thing", Price: price},
		Quantity: qty,
	}}}
}

func approx(got, want float64) bool { return math.Abs(got-want) < 1e-9 }

func TestQuoteBelowFreeShippingThreshold(t *testing.T) {
	svc := New(&fakeOrders{}, &fakePayments{}, cartWith(40, 1), &notify.Recorder{}, logger.Discard())
	q := svc.QuoteCart()
	if !approx(q.Subtotal, 40) || !approx(q.Shipping, 10) || !approx(q.Tax, 3.20) || !approx(q.Total, 53.20) {
		t.Fatalf("quote %+v, want 40/10/3.20/53.20", q)
	}
}

func TestQuoteAtAndAboveFreeShippingThreshold(t *testing.T) {
	// Exactly at the threshold shipping is already free.
	svc := New(&fakeOrders{}, &fakePayments{}, cartWith(25, 2), &notify.Recorder{}, logger.Discard())
	q := svc.QuoteCart()
	if !approx(q.Subtotal, 50) || !approx(q.Shipping, 0) {
		t.Fatalf("quote at threshold %+v, want shipping 0", q)
	}

	svc = New(&fakeOrders{}, &fakePayments{}, cartWith(60, 1), &notify.Recorder{}, logger.Discard())
	q = svc.QuoteCart()
	if !approx(q.Shipping, 0) || !approx(q.Tax, 4.80) || !approx(q.Total, 64.80) {
		t.Fatalf("quote %+v, want 60/0/4.80/64.80", q)
	}
}

func TestShippingFor(t *testing.T) {
	cases := []struct {
		subtotal float64
		want     float64
	}{
		{0, 10},
		{49.99, 10},
		{50, 0},
		{50.01, 0},
	}
	for _, tc := range cases {
		if got := ShippingFor(tc.subtotal); !approx(got, tc.want) {
			t.Fatalf("ShippingFor(%v) = %v, want %v", tc.subtotal, got, tc.want)
		}
	}
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	orders := &fakeOrders{}
	svc := New(orders, &fakePayments{}, &fakeCart{}, &notify.Recorder{}, logger.Discard())

	_, _, err := svc.PlaceOrder(context.Background(), order.ShippingAddress{}, "card")
	if !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}
	if orders.calls != 0 {
		t.Fatal("order gateway called for empty cart")
	}
}

func TestPlaceOrderSuccessClearsCart(t *testing.T) {
	orders := &fakeOrders{}
	payments := &fakePayments{}
	cart := cartWith(40, 1)
	rec := &notify.Recorder{}
	svc := New(orders, payments, cart, rec, logger.Discard())

	placed, session, err := svc.PlaceOrder(context.Background(), order.ShippingAddress{City: "Lyon"}, "card")
	if err != nil {
		t.Fatalf("place order: %v", err)
	}
	if placed.ID != "o1" || session.PaymentID != "pay1" {
		t.Fatalf("unexpected result: %+v %+v", placed, session)
	}
	if !cart.cleared {
		t.Fatal("cart not cleared after successful checkout")
	}
	if !approx(orders.lastInput.TotalAmount, 53.20) {
		t.Fatalf("order total %v, want 53.20", orders.lastInput.TotalAmount)
	}
	if !approx(payments.lastInput.Amount, 53.20) || payments.lastInput.OrderID != "o1" {
		t.Fatalf("payment input %+v", payments.lastInput)
	}
	if len(orders.lastInput.Lines) != 1 || orders.lastInput.Lines[0].Product != "p1" {
		t.Fatalf("order lines %+v", orders.lastInput.Lines)
	}
	notices := rec.Notices()
	if len(notices) != 1 || notices[0].Severity != notify.SeverityInfo {
		t.Fatalf("missing success notice: %#v", notices)
	}
}

func TestPlaceOrderCreateFailureKeepsCart(t *testing.T) {
	orders := &fakeOrders{createErr: &shopapi.Error{StatusCode: 422, Message: "Insufficient stock"}}
	payments := &fakePayments{}
	cart := cartWith(40, 1)
	rec := &notify.Recorder{}
	svc := New(orders, payments, cart, rec, logger.Discard())

	_, _, err := svc.PlaceOrder(context.Background(), order.ShippingAddress{}, "card")
	if err == nil {
		t.Fatal("expected failure")
	}
	if cart.cleared {
		t.Fatal("cart cleared despite failed order creation")
	}
	if payments.calls != 0 {
		t.Fatal("payment initialized despite failed order creation")
	}
	notices := rec.Notices()
	if len(notices) != 1 || notices[0].Message != "Insufficient stock" {
		t.Fatalf("server reason not surfaced: %#v", notices)
	}
}

func TestPlaceOrderPaymentFailureKeepsCart(t *testing.T) {
	orders := &fakeOrders{}
	payments := &fakePayments{initErr: errors.New("gateway down")}
	cart := cartWith(40, 1)
	rec := &notify.Recorder{}
	svc := New(orders, payments, cart, rec, logger.Discard())

	_, _, err := svc.PlaceOrder(context.Background(), order.ShippingAddress{}, "card")
	if err == nil {
		t.Fatal("expected failure")
	}
	if cart.cleared {
		t.Fatal("cart cleared despite failed payment init")
	}
	notices := rec.Notices()
	if len(notices) != 1 || notices[0].Message != "Something went wrong. Please try again." {
		t.Fatalf("expected generic message for transport failure: %#v", notices)
	}
}
