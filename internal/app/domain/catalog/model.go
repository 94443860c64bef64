package catalog

import "time"

// Product is a storefront catalog entry. Products are immutable from the
// client's point of view; admin mutations replace the entity server-side.
type Product struct {
	ID          string    `json:"_id"`
	Name        string    `json:"name"`
	Price       float64   `json:"price"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	Category    string    `json:"category"`
	Stock       int       `json:"stock"`
	CreatedAt   time.Time `json:"createdAt"`
}

// InStock reports whether at least one unit can be ordered.
func (p Product) InStock() bool {
	return p.Stock > 0
}
