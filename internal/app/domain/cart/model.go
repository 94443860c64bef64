package cart

import "github.com/clovermart/storefront/internal/app/domain/catalog"

// Item is one product+quantity pairing within a user's cart. Quantity is
// always at least 1; an item reduced to zero is removed, never stored.
type Item struct {
	ID       string          `json:"_id"`
	UserID   string          `json:"userId"`
	Product  catalog.Product `json:"product"`
	Quantity int             `json:"quantity"`
}

// Subtotal returns the item's contribution to the cart total.
func (i Item) Subtotal() float64 {
	return i.Product.Price * float64(i.Quantity)
}

// TotalAmount folds price*quantity over the given items.
func TotalAmount(items []Item) float64 {
	var total float64
	for _, it := range items {
		total += it.Subtotal()
	}
	return total
}

// TotalItems folds quantity over the given items.
func TotalItems(items []Item) int {
	var n int
	for _, it := range items {
		n += it.Quantity
	}
	return n
}
