package shopapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/clovermart/storefront/internal/app/domain/catalog"
)

// CatalogClient reads the product catalog. Both operations work with or
// without a session.
type CatalogClient struct {
	client *Client
}

// List fetches every product in the catalog.
func (c *CatalogClient) List(ctx context.Context) ([]catalog.Product, error) {
	var resp struct {
		Products []catalog.Product `json:"products"`
	}
	if err := c.client.do(ctx, "catalog", http.MethodGet, "/product/all", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Products, nil
}

// Get fetches a single product by ID.
func (c *CatalogClient) Get(ctx context.Context, id string) (catalog.Product, error) {
	if id == "" {
		return catalog.Product{}, fmt.Errorf("product id is required")
	}
	var p catalog.Product
	if err := c.client.do(ctx, "catalog", http.MethodGet, "/product/"+url.PathEscape(id), nil, &p); err != nil {
		return catalog.Product{}, err
	}
	return p, nil
}
