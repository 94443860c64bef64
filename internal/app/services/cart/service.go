// Package cart owns the authoritative in-memory line-item list for the
// current session. Every mutation goes through the gateway and is followed
// by a full refetch, so the list always reflects server-computed state
// (stock validation, merged line items) rather than optimistic local edits.
package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/clovermart/storefront/infra/shopapi"
	domain "github.com/clovermart/storefront/internal/app/domain/cart"
	"github.com/clovermart/storefront/internal/app/services/session"
	"github.com/clovermart/storefront/internal/notify"
	"github.com/clovermart/storefront/pkg/logger"
)

// ErrLoginRequired is returned when a mutation is attempted without an
// authenticated session. No gateway call is made in that case.
var ErrLoginRequired = errors.New("login required")

// Gateway is the slice of the gateway client the cart store needs.
type Gateway interface {
	Add(ctx context.Context, productID string, quantity int) error
	Items(ctx context.Context) ([]domain.Item, error)
	Remove(ctx context.Context, itemID string) error
}

var _ Gateway = (*shopapi.CartClient)(nil)

// Session is the slice of the session store the cart store needs.
type Session interface {
	IsAuthenticated() bool
	Subscribe(session.Listener)
}

// Service is the cart store.
type Service struct {
	gateway  Gateway
	session  Session
	notifier notify.Notifier
	log      *logger.Logger

	mu    sync.Mutex
	items []domain.Item
	// issued/applied order refreshes so that when several fetches are in
	// flight the store converges on one full server response and a stale
	// body never overwrites a newer one. No partial merges.
	issuedSeq  uint64
	appliedSeq uint64
}

// New constructs a cart store bound to the session: the cart refetches when
// the session becomes authenticated and empties when it ends.
func New(gateway Gateway, sess Session, notifier notify.Notifier, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("cart")
	}
	if notifier == nil {
		notifier = notify.NewLogNotifier(log)
	}
	s := &Service{
		gateway:  gateway,
		session:  sess,
		notifier: notifier,
		log:      log,
	}
	sess.Subscribe(func(authenticated bool) {
		if authenticated {
			if err := s.Refresh(context.Background()); err != nil {
				s.log.WithError(err).Warn("cart refresh after login failed")
			}
			return
		}
		s.Clear()
	})
	return s
}

// Items returns a copy of the current line items.
func (s *Service) Items() []domain.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Item, len(s.items))
	copy(out, s.items)
	return out
}

// TotalAmount is the fold of price*quantity over the current items. There
// is no cached aggregate to drift out of sync.
func (s *Service) TotalAmount() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.TotalAmount(s.items)
}

// TotalItems is the fold of quantity over the current items.
func (s *Service) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.TotalItems(s.items)
}

// AddToCart adds quantity units of a product, then refetches the cart. A
// quantity below 1 is treated as 1. Unauthenticated calls never reach the
// gateway; they surface a login-required notice instead.
func (s *Service) AddToCart(ctx context.Context, productID string, quantity int) error {
	if !s.session.IsAuthenticated() {
		s.notifier.Notify(notify.Notice{
			Severity: notify.SeverityError,
			Title:    "Login required",
			Message:  "Please log in to add items to cart",
		})
		return ErrLoginRequired
	}
	if quantity < 1 {
		quantity = 1
	}

	if err := s.gateway.Add(ctx, productID, quantity); err != nil {
		s.fail("Failed to add item to cart", err)
		return fmt.Errorf("add to cart: %w", err)
	}
	if err := s.Refresh(ctx); err != nil {
		return err
	}
	s.notifier.Notify(notify.Notice{
		Severity: notify.SeverityInfo,
		Title:    "Added to cart",
		Message:  "Item has been added to your cart",
	})
	return nil
}

// RemoveFromCart deletes a line item, then refetches the cart.
func (s *Service) RemoveFromCart(ctx context.Context, itemID string) error {
	if err := s.gateway.Remove(ctx, itemID); err != nil {
		s.fail("Failed to remove item from cart", err)
		return fmt.Errorf("remove from cart: %w", err)
	}
	if err := s.Refresh(ctx); err != nil {
		return err
	}
	s.notifier.Notify(notify.Notice{
		Severity: notify.SeverityInfo,
		Title:    "Item removed",
		Message:  "Item has been removed from your cart",
	})
	return nil
}

// UpdateQuantity sets a line item's quantity. A quantity of zero or less
// removes the item. The backend has no quantity-update endpoint, so this is
// a remove followed by a re-add at the new quantity; if the re-add fails
// after the remove succeeded it is retried once before the failure
// surfaces, since giving up immediately would leave the item silently
// missing from the cart.
func (s *Service) UpdateQuantity(ctx context.Context, itemID string, quantity int) error {
	if quantity <= 0 {
		return s.RemoveFromCart(ctx, itemID)
	}

	item, ok := s.findItem(itemID)
	if !ok {
		return nil
	}

	if err := s.gateway.Remove(ctx, itemID); err != nil {
		s.fail("Failed to update quantity", err)
		return fmt.Errorf("update quantity: remove: %w", err)
	}
	if err := s.gateway.Add(ctx, item.Product.ID, quantity); err != nil {
		s.log.WithError(err).Warn("re-add after remove failed, retrying")
		if err = s.gateway.Add(ctx, item.Product.ID, quantity); err != nil {
			s.fail("Failed to update quantity", err)
			return fmt.Errorf("update quantity: re-add: %w", err)
		}
	}
	return s.Refresh(ctx)
}

// Refresh refetches the full cart. It is a no-op when unauthenticated.
// Concurrent refreshes are resolved last-write-wins on the whole list.
func (s *Service) Refresh(ctx context.Context) error {
	if !s.session.IsAuthenticated() {
		return nil
	}

	s.mu.Lock()
	s.issuedSeq++
	seq := s.issuedSeq
	s.mu.Unlock()

	items, err := s.gateway.Items(ctx)
	if err != nil {
		s.fail("Failed to load cart items", err)
		return fmt.Errorf("refresh cart: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq < s.appliedSeq {
		// A newer fetch already landed; keep its result.
		return nil
	}
	s.items = items
	s.appliedSeq = seq
	return nil
}

// Clear empties the local list without touching the backend. Used when the
// session ends and after a successful checkout.
func (s *Service) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
}

func (s *Service) findItem(itemID string) (domain.Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range s.items {
		if it.ID == itemID {
			return it, true
		}
	}
	return domain.Item{}, false
}

func (s *Service) fail(title string, err error) {
	s.log.WithError(err).Warn(title)
	msg := "Something went wrong. Please try again."
	var apiErr *shopapi.Error
	if errors.As(err, &apiErr) {
		msg = apiErr.UserMessage()
	}
	s.notifier.Notify(notify.Notice{
		Severity: notify.SeverityError,
		Title:    title,
		Message:  msg,
	})
}
