package shopapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/clovermart/storefront/internal/app/domain/cart"
)

// CartClient mutates and reads the authenticated user's cart.
type CartClient struct {
	client *Client
}

// Add puts quantity units of a product into the cart. The backend validates
// stock and either merges into an existing line item or creates one.
func (c *CartClient) Add(ctx context.Context, productID string, quantity int) error {
	if productID == "" {
		return fmt.Errorf("product id is required")
	}
	if quantity < 1 {
		return fmt.Errorf("quantity must be at least 1")
	}
	payload := map[string]interface{}{
		"productId": productID,
		"quantity":  quantity,
	}
	return c.client.do(ctx, "cart", http.MethodPost, "/cart/add", payload, nil)
}

// Items fetches the full cart for the current user.
func (c *CartClient) Items(ctx context.Context) ([]cart.Item, error) {
	var resp struct {
		CartItems []cart.Item `json:"cartItems"`
	}
	if err := c.client.do(ctx, "cart", http.MethodGet, "/cart", nil, &resp); err != nil {
		return nil, err
	}
	return resp.CartItems, nil
}

// Remove deletes a line item from the cart.
func (c *CartClient) Remove(ctx context.Context, itemID string) error {
	if itemID == "" {
		return fmt.Errorf("item id is required")
	}
	return c.client.do(ctx, "cart", http.MethodDelete, "/cart/"+url.PathEscape(itemID), nil, nil)
}
