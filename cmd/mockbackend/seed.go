package main

import (
	"fmt"

	"github.com/clovermart/storefront/internal/app/domain/catalog"
	"github.com/clovermart/storefront/internal/app/domain/user"
	"github.com/clovermart/storefront/internal/backendtest"
)

func seedDemoData(backend *backendtest.Server) error {
	if _, err := backend.SeedUser("Demo Admin", "admin@example.com", "admin123", user.RoleAdmin); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if _, err := backend.SeedUser("Demo Customer", "customer@example.com", "customer123", user.RoleCustomer); err != nil {
		return fmt.Errorf("seed customer: %w", err)
	}

	products := []catalog.Product{
		{Name: "Walnut Desk", Description: "Solid walnut writing desk", Category: "furniture", Price: 320, Stock: 4, Image: "/images/walnut-desk.jpg"},
		{Name: "Mesh Chair", Description: "Ergonomic mesh office chair", Category: "furniture", Price: 180, Stock: 12, Image: "/images/mesh-chair.jpg"},
		{Name: "Aero Lamp", Description: "Adjustable desk lamp", Category: "lighting", Price: 45, Stock: 30, Image: "/images/aero-lamp.jpg"},
		{Name: "Brass Sconce", Description: "Wall-mounted brass light", Category: "lighting", Price: 45, Stock: 9, Image: "/images/brass-sconce.jpg"},
		{Name: "Field Notebook", Description: "Pocket dot-grid notebook, pack of 3", Category: "stationery", Price: 12.50, Stock: 120, Image: "/images/field-notebook.jpg"},
	}
	for _, p := range products {
		if _, err := backend.SeedProduct(p); err != nil {
			return fmt.Errorf("seed product %q: %w", p.Name, err)
		}
	}
	return nil
}
