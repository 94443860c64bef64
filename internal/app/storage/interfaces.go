// Package storage defines the persistence interfaces behind the test
// backend. The real storefront talks to a remote backend; these stores give
// the in-process stand-in the same observable behavior.
package storage

import (
	"context"
	"errors"

	"github.com/clovermart/storefront/internal/app/domain/cart"
	"github.com/clovermart/storefront/internal/app/domain/catalog"
	"github.com/clovermart/storefront/internal/app/domain/order"
	"github.com/clovermart/storefront/internal/app/domain/user"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// Account couples a user with its login credential.
type Account struct {
	User         user.User
	PasswordHash string
}

// UserStore persists accounts.
type UserStore interface {
	CreateUser(ctx context.Context, acct Account) (user.User, error)
	GetUser(ctx context.Context, id string) (user.User, error)
	GetUserByEmail(ctx context.Context, email string) (Account, error)
}

// ProductStore persists the catalog.
type ProductStore interface {
	CreateProduct(ctx context.Context, p catalog.Product) (catalog.Product, error)
	UpdateProduct(ctx context.Context, p catalog.Product) (catalog.Product, error)
	GetProduct(ctx context.Context, id string) (catalog.Product, error)
	ListProducts(ctx context.Context) ([]catalog.Product, error)
	DeleteProduct(ctx context.Context, id string) error
}

// CartStore persists cart line items per user.
type CartStore interface {
	CreateCartItem(ctx context.Context, item cart.Item) (cart.Item, error)
	UpdateCartItem(ctx context.Context, item cart.Item) (cart.Item, error)
	GetCartItem(ctx context.Context, id string) (cart.Item, error)
	ListCartItems(ctx context.Context, userID string) ([]cart.Item, error)
	DeleteCartItem(ctx context.Context, id string) error
	ClearCart(ctx context.Context, userID string) error
}

// OrderStore persists orders.
type OrderStore interface {
	CreateOrder(ctx context.Context, o order.Order) (order.Order, error)
	UpdateOrder(ctx context.Context, o order.Order) (order.Order, error)
	GetOrder(ctx context.Context, id string) (order.Order, error)
	ListOrders(ctx context.Context, userID string) ([]order.Order, error)
	ListAllOrders(ctx context.Context) ([]order.Order, error)
}
