package cart

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"testing"

	domain "github.com/clovermart/storefront/internal/app/domain/cart"
	"github.com/clovermart/storefront/internal/app/domain/catalog"
	"github.com/clovermart/storefront/internal/app/services/session"
	"github.com/clovermart/storefront/internal/notify"
	"github.com/clovermart/storefront/pkg/logger"
)

type fakeSession struct {
	mu        sync.Mutex
	authed    bool
	listeners []session.Listener
}

func (f *fakeSession) IsAuthenticated() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.authed
}

func (f *fakeSession) Subscribe(l session.Listener) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listeners = append(f.listeners, l)
}

func (f *fakeSession) setAuthed(v bool) {
	f.mu.Lock()
	f.authed = v
	listeners := append([]session.Listener(nil), f.listeners...)
	f.mu.Unlock()
	for _, l := range listeners {
		l(v)
	}
}

type fakeGateway struct {
	mu          sync.Mutex
	items       []domain.Item
	itemsFn     func(call int) ([]domain.Item, error)
	addErrs     []error
	removeErr   error
	addCalls    []string
	addQtys     []int
	removeCalls []string
	itemsCalls  int
}

func (f *fakeGateway) Add(ctx context.Context, productID string, quantity int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.addCalls = append(f.addCalls, productID)
	f.addQtys = append(f.addQtys, quantity)
	if len(f.addErrs) > 0 {
		err := f.addErrs[0]
		f.addErrs = f.addErrs[1:]
		return err
	}
	return nil
}

func (f *fakeGateway) Items(ctx context.Context) ([]domain.Item, error) {
	f.mu.Lock()
	call := f.itemsCalls
	f.itemsCalls++
	fn := f.itemsFn
	items := append([]domain.Item(nil), f.items...)
	f.mu.Unlock()

	if fn != nil {
		return fn(call)
	}
	return items, nil
}

func (f *fakeGateway) Remove(ctx context.Context, itemID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removeCalls = append(f.removeCalls, itemID)
	return f.removeErr
}

func item(id, productID string, price float64, qty int) domain.Item {
	return domain.Item{
		ID:       id,
		UserID:   "u1",
		Product:  catalog.Product{ID: productID, Name: "P-" + productID, Price: price, Stock: 100},
		Quantity: qty,
	}
}

func newCart(gw Gateway, sess Session) (*Service, *notify.Recorder) {
	rec := &notify.Recorder{}
	return New(gw, sess, rec, logger.Discard()), rec
}

func TestTotalsAreFoldsOverItems(t *testing.T) {
	gw := &fakeGateway{items: []domain.Item{item("i1", "p1", 25.00, 2)}}
	sess := &fakeSession{authed: true}
	svc, _ := newCart(gw, sess)

	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if got := svc.TotalAmount(); got != 50.00 {
		t.Fatalf("total amount %v, want 50.00", got)
	}
	if got := svc.TotalItems(); got != 2 {
		t.Fatalf("total items %d, want 2", got)
	}

	gw.mu.Lock()
	gw.items = []domain.Item{
		item("i1", "p1", 25.00, 2),
		item("i2", "p2", 9.99, 3),
	}
	gw.mu.Unlock()
	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	want := 25.00*2 + 9.99*3
	if got := svc.TotalAmount(); got != want {
		t.Fatalf("total amount %v, want %v", got, want)
	}
	if got := svc.TotalItems(); got != 5 {
		t.Fatalf("total items %d, want 5", got)
	}
}

func TestAddToCartRequiresLogin(t *testing.T) {
	gw := &fakeGateway{}
	sess := &fakeSession{authed: false}
	svc, rec := newCart(gw, sess)

	err := svc.AddToCart(context.Background(), "p1", 1)
	if !errors.Is(err, ErrLoginRequired) {
		t.Fatalf("expected ErrLoginRequired, got %v", err)
	}
	if len(gw.addCalls) != 0 {
		t.Fatal("gateway called while unauthenticated")
	}
	notices := rec.Notices()
	if len(notices) != 1 || notices[0].Title != "Login required" {
		t.Fatalf("missing login-required notice: %#v", notices)
	}
}

func TestAddToCartRefetchesServerState(t *testing.T) {
	// The server merges line items and owns quantity; the store must show
	// exactly what the server returned, not a local insert.
	gw := &fakeGateway{items: []domain.Item{item("i1", "p1", 10, 4)}}
	sess := &fakeSession{authed: true}
	svc, _ := newCart(gw, sess)

	if err := svc.AddToCart(context.Background(), "p1", 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	if len(gw.addCalls) != 1 || gw.addCalls[0] != "p1" || gw.addQtys[0] != 1 {
		t.Fatalf("unexpected add calls: %v %v", gw.addCalls, gw.addQtys)
	}
	items := svc.Items()
	if len(items) != 1 || items[0].Quantity != 4 {
		t.Fatalf("store diverged from server response: %#v", items)
	}
}

func TestAddToCartDefaultsQuantityToOne(t *testing.T) {
	gw := &fakeGateway{}
	sess := &fakeSession{authed: true}
	svc, _ := newCart(gw, sess)

	if err := svc.AddToCart(context.Background(), "p1", 0); err != nil {
		t.Fatalf("add: %v", err)
	}
	if gw.addQtys[0] != 1 {
		t.Fatalf("quantity %d, want 1", gw.addQtys[0])
	}
}

func TestUpdateQuantityZeroDelegatesToRemove(t *testing.T) {
	gw := &fakeGateway{items: []domain.Item{item("i1", "p1", 10, 2)}}
	sess := &fakeSession{authed: true}
	svc, _ := newCart(gw, sess)
	svc.Refresh(context.Background())

	if err := svc.UpdateQuantity(context.Background(), "i1", 0); err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(gw.removeCalls) != 1 || gw.removeCalls[0] != "i1" {
		t.Fatalf("remove not delegated: %v", gw.removeCalls)
	}
	if len(gw.addCalls) != 0 {
		t.Fatalf("unexpected re-add on zero quantity: %v", gw.addCalls)
	}
}

func TestUpdateQuantityRemovesAndReadds(t *testing.T) {
	gw := &fakeGateway{items: []domain.Item{item("i1", "p1", 10, 2)}}
	sess := &fakeSession{authed: true}
	svc, _ := newCart(gw, sess)
	svc.Refresh(context.Background())

	if err := svc.UpdateQuantity(context.Background(), "i1", 5); err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(gw.removeCalls) != 1 || gw.removeCalls[0] != "i1" {
		t.Fatalf("remove calls: %v", gw.removeCalls)
	}
	if len(gw.addCalls) != 1 || gw.addCalls[0] != "p1" || gw.addQtys[0] != 5 {
		t.Fatalf("re-add calls: %v %v", gw.addCalls, gw.addQtys)
	}
}

func TestUpdateQuantityRetriesReadd(t *testing.T) {
	gw := &fakeGateway{
		items:   []domain.Item{item("i1", "p1", 10, 2)},
		addErrs: []error{fmt.Errorf("transient")},
	}
	sess := &fakeSession{authed: true}
	svc, _ := newCart(gw, sess)
	svc.Refresh(context.Background())

	if err := svc.UpdateQuantity(context.Background(), "i1", 3); err != nil {
		t.Fatalf("update should succeed after retry: %v", err)
	}
	if len(gw.addCalls) != 2 {
		t.Fatalf("expected one retry, got %d add calls", len(gw.addCalls))
	}
}

func TestUpdateQuantitySurfacesFailureAfterRetry(t *testing.T) {
	gw := &fakeGateway{
		items:   []domain.Item{item("i1", "p1", 10, 2)},
		addErrs: []error{fmt.Errorf("down"), fmt.Errorf("still down")},
	}
	sess := &fakeSession{authed: true}
	svc, rec := newCart(gw, sess)
	svc.Refresh(context.Background())
	rec.Reset()

	err := svc.UpdateQuantity(context.Background(), "i1", 3)
	if err == nil {
		t.Fatal("expected failure after exhausted retry")
	}
	if len(gw.addCalls) != 2 {
		t.Fatalf("expected exactly one retry, got %d add calls", len(gw.addCalls))
	}
	notices := rec.Notices()
	if len(notices) != 1 || notices[0].Severity != notify.SeverityError {
		t.Fatalf("failure not surfaced: %#v", notices)
	}
}

func TestSessionTransitionsDriveCart(t *testing.T) {
	gw := &fakeGateway{items: []domain.Item{item("i1", "p1", 10, 1)}}
	sess := &fakeSession{authed: false}
	svc, _ := newCart(gw, sess)

	sess.setAuthed(true)
	if got := svc.TotalItems(); got != 1 {
		t.Fatalf("cart not refreshed on login, items=%d", got)
	}

	sess.setAuthed(false)
	if got := len(svc.Items()); got != 0 {
		t.Fatalf("cart not cleared on logout, %d items remain", got)
	}
}

func TestRefreshNoopWhenAnonymous(t *testing.T) {
	gw := &fakeGateway{items: []domain.Item{item("i1", "p1", 10, 1)}}
	sess := &fakeSession{authed: false}
	svc, _ := newCart(gw, sess)

	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if gw.itemsCalls != 0 {
		t.Fatal("anonymous refresh hit the gateway")
	}
}

func TestConcurrentRefreshLastWriteWins(t *testing.T) {
	release := make(chan struct{})
	first := []domain.Item{item("i1", "p1", 10, 1)}
	second := []domain.Item{item("i2", "p2", 20, 2)}

	gw := &fakeGateway{itemsFn: func(call int) ([]domain.Item, error) {
		if call == 0 {
			<-release // stall the first fetch until the second lands
			return first, nil
		}
		return second, nil
	}}
	sess := &fakeSession{authed: true}
	svc, _ := newCart(gw, sess)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		svc.Refresh(context.Background())
	}()

	// Wait for the first fetch to be in flight before issuing the second.
	for {
		gw.mu.Lock()
		inFlight := gw.itemsCalls > 0
		gw.mu.Unlock()
		if inFlight {
			break
		}
		runtime.Gosched()
	}

	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("second refresh: %v", err)
	}
	close(release)
	wg.Wait()

	items := svc.Items()
	if len(items) != 1 || items[0].ID != "i2" {
		t.Fatalf("stale refresh overwrote newer state: %#v", items)
	}
}
