// Package admin drives the store-management operations: catalog mutation
// and order-status progression. Everything here is gated on the admin role
// client-side; the backend enforces it again server-side.
package admin

import (
	"context"
	"errors"
	"fmt"

	"github.com/clovermart/storefront/infra/shopapi"
	"github.com/clovermart/storefront/internal/app/domain/catalog"
	"github.com/clovermart/storefront/internal/app/domain/order"
	"github.com/clovermart/storefront/internal/app/domain/user"
	"github.com/clovermart/storefront/pkg/logger"
)

// ErrForbidden is returned when the current user lacks the admin role.
var ErrForbidden = errors.New("admin privileges required")

// Gateway is the slice of the gateway client the admin service needs.
type Gateway interface {
	AddProduct(ctx context.Context, in shopapi.ProductInput) (catalog.Product, error)
	UpdateProduct(ctx context.Context, id string, in shopapi.ProductInput) (catalog.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	UpdateOrderStatus(ctx context.Context, orderID string, status order.Status) (order.Order, error)
}

var _ Gateway = (*shopapi.AdminClient)(nil)

// Session exposes the current user for role gating.
type Session interface {
	User() (user.User, bool)
}

// OrderSource looks up an order's current state before a status change.
type OrderSource interface {
	Get(ctx context.Context, id string) (order.Order, error)
}

// Service is the admin dashboard's data layer.
type Service struct {
	gateway Gateway
	session Session
	orders  OrderSource
	log     *logger.Logger
}

// New constructs an admin service.
func New(gateway Gateway, sess Session, orders OrderSource, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("admin")
	}
	return &Service{
		gateway: gateway,
		session: sess,
		orders:  orders,
		log:     log,
	}
}

func (s *Service) requireAdmin() error {
	u, ok := s.session.User()
	if !ok || !u.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

// AddProduct creates a new catalog entry.
func (s *Service) AddProduct(ctx context.Context, in shopapi.ProductInput) (catalog.Product, error) {
	if err := s.requireAdmin(); err != nil {
		return catalog.Product{}, err
	}
	p, err := s.gateway.AddProduct(ctx, in)
	if err != nil {
		return catalog.Product{}, fmt.Errorf("add product: %w", err)
	}
	s.log.WithField("product_id", p.ID).Info("product added")
	return p, nil
}

// UpdateProduct replaces an existing product.
func (s *Service) UpdateProduct(ctx context.Context, id string, in shopapi.ProductInput) (catalog.Product, error) {
	if err := s.requireAdmin(); err != nil {
		return catalog.Product{}, err
	}
	p, err := s.gateway.UpdateProduct(ctx, id, in)
	if err != nil {
		return catalog.Product{}, fmt.Errorf("update product: %w", err)
	}
	return p, nil
}

// DeleteProduct removes a product from the catalog.
func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	if err := s.requireAdmin(); err != nil {
		return err
	}
	if err := s.gateway.DeleteProduct(ctx, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	s.log.WithField("product_id", id).Info("product deleted")
	return nil
}

// UpdateOrderStatus validates the requested transition against the order's
// current status and then applies it.
func (s *Service) UpdateOrderStatus(ctx context.Context, orderID string, status order.Status) (order.Order, error) {
	if err := s.requireAdmin(); err != nil {
		return order.Order{}, err
	}

	current, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return order.Order{}, fmt.Errorf("update order status: %w", err)
	}
	if !current.Status.CanTransition(status) {
		return order.Order{}, fmt.Errorf("order %s cannot move from %s to %s", orderID, current.Status, status)
	}

	updated, err := s.gateway.UpdateOrderStatus(ctx, orderID, status)
	if err != nil {
		return order.Order{}, fmt.Errorf("update order status: %w", err)
	}
	s.log.WithField("order_id", orderID).WithField("status", string(status)).Info("order status updated")
	return updated, nil
}
