// Package orders is the order-history view. The backend exposes no
// single-order endpoint, so lookups are derived from the fetched list.
package orders

import (
	"context"
	"fmt"
	"sort"

	"github.com/clovermart/storefront/infra/shopapi"
	domain "github.com/clovermart/storefront/internal/app/domain/order"
	"github.com/clovermart/storefront/pkg/logger"
)

// Gateway is the slice of the gateway client the orders view needs.
type Gateway interface {
	List(ctx context.Context) ([]domain.Order, error)
}

var _ Gateway = (*shopapi.OrderClient)(nil)

// ErrNotFound is returned when an order ID is absent from the history.
var ErrNotFound = fmt.Errorf("order not found")

// Service is the orders view.
type Service struct {
	gateway Gateway
	log     *logger.Logger
}

// New constructs an orders view.
func New(gateway Gateway, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("orders")
	}
	return &Service{gateway: gateway, log: log}
}

// List returns the caller's orders, newest first.
func (s *Service) List(ctx context.Context) ([]domain.Order, error) {
	orders, err := s.gateway.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}

// Get returns one order by ID. The shipping address and payment method come
// from the persisted entity, same as every other field.
func (s *Service) Get(ctx context.Context, id string) (domain.Order, error) {
	orders, err := s.gateway.List(ctx)
	if err != nil {
		return domain.Order{}, fmt.Errorf("get order: %w", err)
	}
	for _, o := range orders {
		if o.ID == id {
			return o, nil
		}
	}
	return domain.Order{}, ErrNotFound
}
