package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/clovermart/storefront/internal/app/domain/cart"
	"github.com/clovermart/storefront/internal/app/domain/catalog"
	"github.com/clovermart/storefront/internal/app/domain/order"
	"github.com/clovermart/storefront/internal/app/domain/user"
	"github.com/clovermart/storefront/internal/app/storage"
)

// Store is an in-memory implementation of the storage interfaces. It is
// safe for concurrent use and backs the test backend.
type Store struct {
	mu           sync.RWMutex
	users        map[string]storage.Account
	usersByEmail map[string]string
	products     map[string]catalog.Product
	cartItems    map[string]cart.Item
	orders       map[string]order.Order
}

var _ storage.UserStore = (*Store)(nil)
var _ storage.ProductStore = (*Store)(nil)
var _ storage.CartStore = (*Store)(nil)
var _ storage.OrderStore = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		users:        make(map[string]storage.Account),
		usersByEmail: make(map[string]string),
		products:     make(map[string]catalog.Product),
		cartItems:    make(map[string]cart.Item),
		orders:       make(map[string]order.Order),
	}
}

// =============================================================================
// Users
// =============================================================================

func (s *Store) CreateUser(ctx context.Context, acct storage.Account) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(strings.TrimSpace(acct.User.Email))
	if email == "" {
		return user.User{}, fmt.Errorf("email is required")
	}
	if _, exists := s.usersByEmail[email]; exists {
		return user.User{}, fmt.Errorf("email %s already registered", email)
	}

	if acct.User.ID == "" {
		acct.User.ID = uuid.NewString()
	}
	if acct.User.Role == "" {
		acct.User.Role = user.RoleCustomer
	}
	acct.User.Email = email
	s.users[acct.User.ID] = acct
	s.usersByEmail[email] = acct.User.ID
	return acct.User, nil
}

func (s *Store) GetUser(ctx context.Context, id string) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acct, ok := s.users[id]
	if !ok {
		return user.User{}, storage.ErrNotFound
	}
	return acct.User, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (storage.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.usersByEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return storage.Account{}, storage.ErrNotFound
	}
	return s.users[id], nil
}

// =============================================================================
// Products
// =============================================================================

func (s *Store) CreateProduct(ctx context.Context, p catalog.Product) (catalog.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	s.products[p.ID] = p
	return p, nil
}

func (s *Store) UpdateProduct(ctx context.Context, p catalog.Product) (catalog.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.products[p.ID]
	if !ok {
		return catalog.Product{}, storage.ErrNotFound
	}
	p.CreatedAt = existing.CreatedAt
	s.products[p.ID] = p
	return p, nil
}

func (s *Store) GetProduct(ctx context.Context, id string) (catalog.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	if !ok {
		return catalog.Product{}, storage.ErrNotFound
	}
	return p, nil
}

func (s *Store) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]catalog.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}
	return out, nil
}

func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.products, id)
	return nil
}

// =============================================================================
// Cart items
// =============================================================================

func (s *Store) CreateCartItem(ctx context.Context, item cart.Item) (cart.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if item.UserID == "" {
		return cart.Item{}, fmt.Errorf("user id is required")
	}
	if item.Quantity < 1 {
		return cart.Item{}, fmt.Errorf("quantity must be at least 1")
	}
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	s.cartItems[item.ID] = item
	return item, nil
}

func (s *Store) UpdateCartItem(ctx context.Context, item cart.Item) (cart.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.cartItems[item.ID]; !ok {
		return cart.Item{}, storage.ErrNotFound
	}
	if item.Quantity < 1 {
		return cart.Item{}, fmt.Errorf("quantity must be at least 1")
	}
	s.cartItems[item.ID] = item
	return item, nil
}

func (s *Store) GetCartItem(ctx context.Context, id string) (cart.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.cartItems[id]
	if !ok {
		return cart.Item{}, storage.ErrNotFound
	}
	return item, nil
}

func (s *Store) ListCartItems(ctx context.Context, userID string) ([]cart.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]cart.Item, 0)
	for _, item := range s.cartItems {
		if item.UserID == userID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (s *Store) DeleteCartItem(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cartItems[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.cartItems, id)
	return nil
}

func (s *Store) ClearCart(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, item := range s.cartItems {
		if item.UserID == userID {
			delete(s.cartItems, id)
		}
	}
	return nil
}

// =============================================================================
// Orders
// =============================================================================

func (s *Store) CreateOrder(ctx context.Context, o order.Order) (order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if o.UserID == "" {
		return order.Order{}, fmt.Errorf("user id is required")
	}
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if o.Status == "" {
		o.Status = order.StatusPending
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}
	s.orders[o.ID] = o
	return o, nil
}

func (s *Store) UpdateOrder(ctx context.Context, o order.Order) (order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[o.ID]; !ok {
		return order.Order{}, storage.ErrNotFound
	}
	s.orders[o.ID] = o
	return o, nil
}

func (s *Store) GetOrder(ctx context.Context, id string) (order.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[id]
	if !ok {
		return order.Order{}, storage.ErrNotFound
	}
	return o, nil
}

func (s *Store) ListOrders(ctx context.Context, userID string) ([]order.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]order.Order, 0)
	for _, o := range s.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *Store) ListAllOrders(ctx context.Context) ([]order.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]order.Order, 0, len(s.orders))
	for _, o := range s.orders {
		out = append(out, o)
	}
	return out, nil
}
