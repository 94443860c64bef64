package admin

import (
	"context"
	"errors"
	"testing"

	"github.com/clovermart/storefront/infra/shopapi"
	"github.com/clovermart/storefront/internal/app/domain/catalog"
	"github.com/clovermart/storefront/internal/app/domain/order"
	"github.com/clovermart/storefront/internal/app/domain/user"
	"github.com/clovermart/storefront/pkg/logger"
)

type fakeGateway struct {
	addCalls    int
	deleteCalls int
	statusCalls int
}

func (f *fakeGateway) AddProduct(ctx context.Context, in shopapi.ProductInput) (catalog.Product, error) {
	f.addCalls++
	return catalog.Product{ID: "p1", Name: in.Name}, nil
}

func (f *fakeGateway) UpdateProduct(ctx context.Context, id string, in shopapi.ProductInput) (catalog.Product, error) {
	return catalog.Product{ID: id, Name: in.Name}, nil
}

func (f *fakeGateway) DeleteProduct(ctx context.Context, id string) error {
	f.deleteCalls++
	return nil
}

func (f *fakeGateway) UpdateOrderStatus(ctx context.Context, orderID string, status order.Status) (order.Order, error) {
	f.statusCalls++
	return order.Order{ID: orderID, Status: status}, nil
}

type fakeSession struct {
	user   user.User
	authed bool
}

func (f *fakeSession) User() (user.User, bool) { return f.user, f.authed }

type fakeOrderSource struct {
	order order.Order
	err   error
}

func (f *fakeOrderSource) Get(ctx context.Context, id string) (order.Order, error) {
	return f.order, f.err
}

func adminSession() *fakeSession {
	return &fakeSession{user: user.User{ID: "u1", Role: user.RoleAdmin}, authed: true}
}

func customerSession() *fakeSession {
	return &fakeSession{user: user.User{ID: "u2", Role: user.RoleCustomer}, authed: true}
}

func TestOperationsForbiddenForNonAdmins(t *testing.T) {
	gw := &fakeGateway{}
	sessions := map[string]*fakeSession{
		"customer":  customerSession(),
		"anonymous": {},
	}
	for name, sess := range sessions {
		t.Run(name, func(t *testing.T) {
			svc := New(gw, sess, &fakeOrderSource{}, logger.Discard())

			if _, err := svc.AddProduct(context.Background(), shopapi.ProductInput{Name: "X"}); !errors.Is(err, ErrForbidden) {
				t.Fatalf("AddProduct: expected ErrForbidden, got %v", err)
			}
			if err := svc.DeleteProduct(context.Background(), "p1"); !errors.Is(err, ErrForbidden) {
				t.Fatalf("DeleteProduct: expected ErrForbidden, got %v", err)
			}
			if _, err := svc.UpdateOrderStatus(context.Background(), "o1", order.StatusConfirmed); !errors.Is(err, ErrForbidden) {
				t.Fatalf("UpdateOrderStatus: expected ErrForbidden, got %v", err)
			}
		})
	}
	if gw.addCalls != 0 || gw.deleteCalls != 0 || gw.statusCalls != 0 {
		t.Fatal("gateway reached without admin role")
	}
}

func TestAddProductAsAdmin(t *testing.T) {
	gw := &fakeGateway{}
	svc := New(gw, adminSession(), &fakeOrderSource{}, logger.Discard())

	p, err := svc.AddProduct(context.Background(), shopapi.ProductInput{Name: "Lamp", Price: 10, Stock: 5, Category: "lighting", Description: "d", Image: "i"})
	if err != nil {
		t.Fatalf("add product: %v", err)
	}
	if p.ID != "p1" || gw.addCalls != 1 {
		t.Fatalf("unexpected result %+v (calls %d)", p, gw.addCalls)
	}
}

func TestUpdateOrderStatusValidTransition(t *testing.T) {
	gw := &fakeGateway{}
	src := &fakeOrderSource{order: order.Order{ID: "o1", Status: order.StatusPending}}
	svc := New(gw, adminSession(), src, logger.Discard())

	updated, err := svc.UpdateOrderStatus(context.Background(), "o1", order.StatusConfirmed)
	if err != nil {
		t.Fatalf("update status: %v", err)
	}
	if updated.Status != order.StatusConfirmed || gw.statusCalls != 1 {
		t.Fatalf("unexpected result %+v", updated)
	}
}

func TestUpdateOrderStatusRejectsInvalidTransitions(t *testing.T) {
	cases := []struct {
		name string
		from order.Status
		to   order.Status
	}{
		{"backwards", order.StatusDelivered, order.StatusConfirmed},
		{"skip a step", order.StatusPending, order.StatusShipped},
		{"out of cancelled", order.StatusCancelled, order.StatusConfirmed},
		{"unknown status", order.StatusPending, order.Status("mislaid")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gw := &fakeGateway{}
			src := &fakeOrderSource{order: order.Order{ID: "o1", Status: tc.from}}
			svc := New(gw, adminSession(), src, logger.Discard())

			if _, err := svc.UpdateOrderStatus(context.Background(), "o1", tc.to); err == nil {
				t.Fatalf("transition %s -> %s accepted", tc.from, tc.to)
			}
			if gw.statusCalls != 0 {
				t.Fatal("gateway called for rejected transition")
			}
		})
	}
}

func TestCancelAllowedFromAnyActiveState(t *testing.T) {
	for _, from := range []order.Status{order.StatusPending, order.StatusConfirmed, order.StatusShipped} {
		gw := &fakeGateway{}
		src := &fakeOrderSource{order: order.Order{ID: "o1", Status: from}}
		svc := New(gw, adminSession(), src, logger.Discard())

		if _, err := svc.UpdateOrderStatus(context.Background(), "o1", order.StatusCancelled); err != nil {
			t.Fatalf("cancel from %s: %v", from, err)
		}
	}
}

func TestUpdateOrderStatusLookupFailure(t *testing.T) {
	src := &fakeOrderSource{err: errors.New("backend down")}
	svc := New(&fakeGateway{}, adminSession(), src, logger.Discard())

	if _, err := svc.UpdateOrderStatus(context.Background(), "o1", order.StatusConfirmed); err == nil {
		t.Fatal("expected lookup failure to surface")
	}
}
