package shopapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/clovermart/storefront/internal/app/domain/catalog"
	"github.com/clovermart/storefront/internal/app/domain/order"
)

// AdminClient exposes the admin-only mutation endpoints. The backend
// enforces the admin role; callers gate client-side as well so ordinary
// users never see these operations.
type AdminClient struct {
	client *Client
}

// ProductInput is the payload for creating or replacing a product.
type ProductInput struct {
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Image       string  `json:"image"`
	Category    string  `json:"category"`
	Stock       int     `json:"stock"`
}

func (in ProductInput) validate() error {
	if in.Name == "" {
		return fmt.Errorf("product name is required")
	}
	if in.Price < 0 {
		return fmt.Errorf("price must be non-negative")
	}
	if in.Stock < 0 {
		return fmt.Errorf("stock must be non-negative")
	}
	return nil
}

// AddProduct creates a new catalog entry.
func (a *AdminClient) AddProduct(ctx context.Context, in ProductInput) (catalog.Product, error) {
	if err := in.validate(); err != nil {
		return catalog.Product{}, err
	}
	var resp struct {
		Product catalog.Product `json:"product"`
	}
	if err := a.client.do(ctx, "admin", http.MethodPost, "/product/add-product", in, &resp); err != nil {
		return catalog.Product{}, err
	}
	return resp.Product, nil
}

// UpdateProduct replaces the product with the given ID.
func (a *AdminClient) UpdateProduct(ctx context.Context, id string, in ProductInput) (catalog.Product, error) {
	if id == "" {
		return catalog.Product{}, fmt.Errorf("product id is required")
	}
	if err := in.validate(); err != nil {
		return catalog.Product{}, err
	}
	var resp struct {
		Product catalog.Product `json:"product"`
	}
	if err := a.client.do(ctx, "admin", http.MethodPut, "/product/"+url.PathEscape(id), in, &resp); err != nil {
		return catalog.Product{}, err
	}
	return resp.Product, nil
}

// DeleteProduct removes a product from the catalog.
func (a *AdminClient) DeleteProduct(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("product id is required")
	}
	return a.client.do(ctx, "admin", http.MethodDelete, "/product/"+url.PathEscape(id), nil, nil)
}

// UpdateOrderStatus moves an order to a new fulfilment status. Status is
// the only order field mutable after creation.
func (a *AdminClient) UpdateOrderStatus(ctx context.Context, orderID string, status order.Status) (order.Order, error) {
	if orderID == "" {
		return order.Order{}, fmt.Errorf("order id is required")
	}
	if !status.Valid() {
		return order.Order{}, fmt.Errorf("invalid order status %q", status)
	}
	payload := map[string]string{"status": string(status)}

	var resp struct {
		Order order.Order `json:"order"`
	}
	if err := a.client.do(ctx, "admin", http.MethodPut, "/order/"+url.PathEscape(orderID)+"/status", payload, &resp); err != nil {
		return order.Order{}, err
	}
	return resp.Order, nil
}
