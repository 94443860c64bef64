// Package catalog is the read-mostly product view: it fetches the catalog
// through the gateway and re-derives filtered/sorted views client-side.
package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/clovermart/storefront/infra/shopapi"
	domain "github.com/clovermart/storefront/internal/app/domain/catalog"
	"github.com/clovermart/storefront/pkg/logger"
)

// SortOrder selects how a product view is ordered.
type SortOrder string

const (
	// SortByName orders lexicographically ascending by name.
	SortByName SortOrder = "name"
	// SortByPriceLow orders by ascending price.
	SortByPriceLow SortOrder = "price-low"
	// SortByPriceHigh orders by descending price.
	SortByPriceHigh SortOrder = "price-high"
	// SortByNewest orders by descending creation time.
	SortByNewest SortOrder = "newest"
)

// CategoryAll disables category filtering.
const CategoryAll = "all"

// Gateway is the slice of the gateway client the catalog view needs.
type Gateway interface {
	List(ctx context.Context) ([]domain.Product, error)
	Get(ctx context.Context, id string) (domain.Product, error)
}

var _ Gateway = (*shopapi.CatalogClient)(nil)

// Query is a filter/sort selection over the fetched catalog.
type Query struct {
	Search   string
	Category string
	Sort     SortOrder
}

// Service is the catalog view.
type Service struct {
	gateway Gateway
	log     *logger.Logger

	mu       sync.RWMutex
	products []domain.Product
}

// New constructs a catalog view.
func New(gateway Gateway, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("catalog")
	}
	return &Service{gateway: gateway, log: log}
}

// Refresh refetches the catalog snapshot.
func (s *Service) Refresh(ctx context.Context) error {
	products, err := s.gateway.List(ctx)
	if err != nil {
		return fmt.Errorf("refresh catalog: %w", err)
	}
	s.mu.Lock()
	s.products = products
	s.mu.Unlock()
	s.log.WithField("count", len(products)).Debug("catalog refreshed")
	return nil
}

// Get fetches a single product directly from the backend.
func (s *Service) Get(ctx context.Context, id string) (domain.Product, error) {
	return s.gateway.Get(ctx, id)
}

// Products returns the snapshot narrowed and ordered by q. The computation
// is pure over the snapshot; callers re-invoke it whenever criteria change.
func (s *Service) Products(q Query) []domain.Product {
	s.mu.RLock()
	src := s.products
	s.mu.RUnlock()

	filtered := make([]domain.Product, 0, len(src))
	search := strings.ToLower(strings.TrimSpace(q.Search))
	category := strings.ToLower(strings.TrimSpace(q.Category))
	for _, p := range src {
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.Description), search) {
			continue
		}
		if category != "" && category != CategoryAll && strings.ToLower(p.Category) != category {
			continue
		}
		filtered = append(filtered, p)
	}

	switch q.Sort {
	case SortByPriceLow:
		sort.SliceStable(filtered, func(i, j int) bool { return filtered[i].Price < filtered[j].Price })
	case SortByPriceHigh:
		sort.SliceStable(filtered, func(i, j int) bool { return filtered[i].Price > filtered[j].Price })
	case SortByNewest:
		sort.SliceStable(filtered, func(i, j int) bool { return filtered[i].CreatedAt.After(filtered[j].CreatedAt) })
	default:
		sort.SliceStable(filtered, func(i, j int) bool { return filtered[i].Name < filtered[j].Name })
	}

	return filtered
}

// Categories returns the distinct category labels present in the snapshot,
// sorted for stable presentation.
func (s *Service) Categories() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	var out []string
	for _, p := range s.products {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	sort.Strings(out)
	return out
}
