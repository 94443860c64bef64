// Package postgres implements the storage interfaces backed by PostgreSQL,
// for running the backend against durable state instead of the in-memory
// store.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/clovermart/storefront/internal/app/domain/cart"
	"github.com/clovermart/storefront/internal/app/domain/catalog"
	"github.com/clovermart/storefront/internal/app/domain/order"
	"github.com/clovermart/storefront/internal/app/domain/user"
	"github.com/clovermart/storefront/internal/app/storage"
)

// Store implements the storage interfaces backed by PostgreSQL.
type Store struct {
	db *sql.DB
}

var _ storage.UserStore = (*Store)(nil)
var _ storage.ProductStore = (*Store)(nil)
var _ storage.CartStore = (*Store)(nil)
var _ storage.OrderStore = (*Store)(nil)

// New creates a Store using the provided database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Schema is the DDL for the tables this store uses.
const Schema = `
CREATE TABLE IF NOT EXISTS shop_users (
	id            TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	email         TEXT NOT NULL UNIQUE,
	role          TEXT NOT NULL,
	password_hash TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS shop_products (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	price       DOUBLE PRECISION NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	image       TEXT NOT NULL DEFAULT '',
	category    TEXT NOT NULL DEFAULT '',
	stock       INTEGER NOT NULL DEFAULT 0,
	created_at  TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS shop_cart_items (
	id       TEXT PRIMARY KEY,
	user_id  TEXT NOT NULL,
	product  JSONB NOT NULL,
	quantity INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS shop_orders (
	id               TEXT PRIMARY KEY,
	user_id          TEXT NOT NULL,
	lines            JSONB NOT NULL,
	total_amount     DOUBLE PRECISION NOT NULL,
	status           TEXT NOT NULL,
	shipping_address JSONB NOT NULL,
	payment_method   TEXT NOT NULL DEFAULT '',
	created_at       TIMESTAMPTZ NOT NULL
);
`

// EnsureSchema creates the tables when they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, Schema)
	return err
}

func mapNoRows(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrNotFound
	}
	return err
}

// --- UserStore --------------------------------------------------------------

func (s *Store) CreateUser(ctx context.Context, acct storage.Account) (user.User, error) {
	if acct.User.ID == "" {
		acct.User.ID = uuid.NewString()
	}
	if acct.User.Role == "" {
		acct.User.Role = user.RoleCustomer
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO shop_users (id, name, email, role, password_hash)
		VALUES ($1, $2, $3, $4, $5)
	`, acct.User.ID, acct.User.Name, acct.User.Email, acct.User.Role, acct.PasswordHash)
	if err != nil {
		return user.User{}, err
	}
	return acct.User, nil
}

func (s *Store) GetUser(ctx context.Context, id string) (user.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, role
		FROM shop_users
		WHERE id = $1
	`, id)

	var u user.User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Role); err != nil {
		return user.User{}, mapNoRows(err)
	}
	return u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (storage.Account, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, role, password_hash
		FROM shop_users
		WHERE email = $1
	`, email)

	var acct storage.Account
	if err := row.Scan(&acct.User.ID, &acct.User.Name, &acct.User.Email, &acct.User.Role, &acct.PasswordHash); err != nil {
		return storage.Account{}, mapNoRows(err)
	}
	return acct, nil
}

// --- ProductStore -----------------------------------------------------------

func (s *Store) CreateProduct(ctx context.Context, p catalog.Product) (catalog.Product, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO shop_products (id, name, price, description, image, category, stock, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, p.ID, p.Name, p.Price, p.Description, p.Image, p.Category, p.Stock, p.CreatedAt)
	if err != nil {
		return catalog.Product{}, err
	}
	return p, nil
}

func (s *Store) UpdateProduct(ctx context.Context, p catalog.Product) (catalog.Product, error) {
	existing, err := s.GetProduct(ctx, p.ID)
	if err != nil {
		return catalog.Product{}, err
	}
	p.CreatedAt = existing.CreatedAt

	result, err := s.db.ExecContext(ctx, `
		UPDATE shop_products
		SET name = $2, price = $3, description = $4, image = $5, category = $6, stock = $7
		WHERE id = $1
	`, p.ID, p.Name, p.Price, p.Description, p.Image, p.Category, p.Stock)
	if err != nil {
		return catalog.Product{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return catalog.Product{}, storage.ErrNotFound
	}
	return p, nil
}

func (s *Store) GetProduct(ctx context.Context, id string) (catalog.Product, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, price, description, image, category, stock, created_at
		FROM shop_products
		WHERE id = $1
	`, id)

	var p catalog.Product
	if err := row.Scan(&p.ID, &p.Name, &p.Price, &p.Description, &p.Image, &p.Category, &p.Stock, &p.CreatedAt); err != nil {
		return catalog.Product{}, mapNoRows(err)
	}
	return p, nil
}

func (s *Store) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, price, description, image, category, stock, created_at
		FROM shop_products
		ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []catalog.Product
	for rows.Next() {
		var p catalog.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Description, &p.Image, &p.Category, &p.Stock, &p.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM shop_products WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// --- CartStore --------------------------------------------------------------

func (s *Store) CreateCartItem(ctx context.Context, item cart.Item) (cart.Item, error) {
	if item.UserID == "" {
		return cart.Item{}, errors.New("user id required")
	}
	if item.Quantity < 1 {
		return cart.Item{}, errors.New("quantity must be at least 1")
	}
	if item.ID == "" {
		item.ID = uuid.NewString()
	}

	productJSON, err := json.Marshal(item.Product)
	if err != nil {
		return cart.Item{}, err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO shop_cart_items (id, user_id, product, quantity)
		VALUES ($1, $2, $3, $4)
	`, item.ID, item.UserID, productJSON, item.Quantity)
	if err != nil {
		return cart.Item{}, err
	}
	return item, nil
}

func (s *Store) UpdateCartItem(ctx context.Context, item cart.Item) (cart.Item, error) {
	if item.Quantity < 1 {
		return cart.Item{}, errors.New("quantity must be at least 1")
	}

	productJSON, err := json.Marshal(item.Product)
	if err != nil {
		return cart.Item{}, err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE shop_cart_items
		SET product = $2, quantity = $3
		WHERE id = $1
	`, item.ID, productJSON, item.Quantity)
	if err != nil {
		return cart.Item{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return cart.Item{}, storage.ErrNotFound
	}
	return item, nil
}

func (s *Store) GetCartItem(ctx context.Context, id string) (cart.Item, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, product, quantity
		FROM shop_cart_items
		WHERE id = $1
	`, id)
	return scanCartItem(row.Scan)
}

func (s *Store) ListCartItems(ctx context.Context, userID string) ([]cart.Item, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, product, quantity
		FROM shop_cart_items
		WHERE user_id = $1
		ORDER BY id
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []cart.Item
	for rows.Next() {
		item, err := scanCartItem(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	return result, rows.Err()
}

func scanCartItem(scan func(...interface{}) error) (cart.Item, error) {
	var (
		item       cart.Item
		productRaw []byte
	)
	if err := scan(&item.ID, &item.UserID, &productRaw, &item.Quantity); err != nil {
		return cart.Item{}, mapNoRows(err)
	}
	if err := json.Unmarshal(productRaw, &item.Product); err != nil {
		return cart.Item{}, err
	}
	return item, nil
}

func (s *Store) DeleteCartItem(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM shop_cart_items WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) ClearCart(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM shop_cart_items WHERE user_id = $1
	`, userID)
	return err
}

// --- OrderStore -------------------------------------------------------------

func (s *Store) CreateOrder(ctx context.Context, o order.Order) (order.Order, error) {
	if o.UserID == "" {
		return order.Order{}, errors.New("user id required")
	}
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if o.Status == "" {
		o.Status = order.StatusPending
	}
	o.CreatedAt = time.Now().UTC()

	linesJSON, err := json.Marshal(o.Lines)
	if err != nil {
		return order.Order{}, err
	}
	addressJSON, err := json.Marshal(o.ShippingAddress)
	if err != nil {
		return order.Order{}, err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO shop_orders (id, user_id, lines, total_amount, status, shipping_address, payment_method, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, o.ID, o.UserID, linesJSON, o.TotalAmount, o.Status, addressJSON, o.PaymentMethod, o.CreatedAt)
	if err != nil {
		return order.Order{}, err
	}
	return o, nil
}

func (s *Store) UpdateOrder(ctx context.Context, o order.Order) (order.Order, error) {
	existing, err := s.GetOrder(ctx, o.ID)
	if err != nil {
		return order.Order{}, err
	}
	o.UserID = existing.UserID
	o.CreatedAt = existing.CreatedAt

	linesJSON, err := json.Marshal(o.Lines)
	if err != nil {
		return order.Order{}, err
	}
	addressJSON, err := json.Marshal(o.ShippingAddress)
	if err != nil {
		return order.Order{}, err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE shop_orders
		SET lines = $2, total_amount = $3, status = $4, shipping_address = $5, payment_method = $6
		WHERE id = $1
	`, o.ID, linesJSON, o.TotalAmount, o.Status, addressJSON, o.PaymentMethod)
	if err != nil {
		return order.Order{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return order.Order{}, storage.ErrNotFound
	}
	return o, nil
}

func (s *Store) GetOrder(ctx context.Context, id string) (order.Order, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, lines, total_amount, status, shipping_address, payment_method, created_at
		FROM shop_orders
		WHERE id = $1
	`, id)
	return scanOrder(row.Scan)
}

func (s *Store) ListOrders(ctx context.Context, userID string) ([]order.Order, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, lines, total_amount, status, shipping_address, payment_method, created_at
		FROM shop_orders
		WHERE user_id = $1
		ORDER BY created_at
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

func (s *Store) ListAllOrders(ctx context.Context) ([]order.Order, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, lines, total_amount, status, shipping_address, payment_method, created_at
		FROM shop_orders
		ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

func collectOrders(rows *sql.Rows) ([]order.Order, error) {
	var result []order.Order
	for rows.Next() {
		o, err := scanOrder(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, o)
	}
	return result, rows.Err()
}

func scanOrder(scan func(...interface{}) error) (order.Order, error) {
	var (
		o          order.Order
		linesRaw   []byte
		addressRaw []byte
	)
	if err := scan(&o.ID, &o.UserID, &linesRaw, &o.TotalAmount, &o.Status, &addressRaw, &o.PaymentMethod, &o.CreatedAt); err != nil {
		return order.Order{}, mapNoRows(err)
	}
	if err := json.Unmarshal(linesRaw, &o.Lines); err != nil {
		return order.Order{}, err
	}
	if err := json.Unmarshal(addressRaw, &o.ShippingAddress); err != nil {
		return order.Order{}, err
	}
	return o, nil
}
