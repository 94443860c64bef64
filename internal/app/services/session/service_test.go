package session

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/clovermart/storefront/infra/shopapi"
	"github.com/clovermart/storefront/internal/app/domain/user"
	"github.com/clovermart/storefront/internal/credstore"
	"github.com/clovermart/storefront/internal/notify"
	"github.com/clovermart/storefront/pkg/logger"
)

type fakeGateway struct {
	loginFn    func(email, password string) (user.User, error)
	meFn       func() (user.User, error)
	logoutErr  error
	registerFn func(in shopapi.RegisterInput) error

	meCalls     int
	logoutCalls int
}

func (f *fakeGateway) Register(ctx context.Context, in shopapi.RegisterInput) error {
	if f.registerFn != nil {
		return f.registerFn(in)
	}
	return nil
}

func (f *fakeGateway) Login(ctx context.Context, email, password string) (user.User, error) {
	return f.loginFn(email, password)
}

func (f *fakeGateway) Logout(ctx context.Context) error {
	f.logoutCalls++
	return f.logoutErr
}

func (f *fakeGateway) Me(ctx context.Context) (user.User, error) {
	f.meCalls++
	return f.meFn()
}

func newService(gw AuthGateway, creds credstore.Store) (*Service, *notify.Recorder) {
	rec := &notify.Recorder{}
	return New(gw, creds, rec, logger.Discard()), rec
}

func TestBootstrapWithoutToken(t *testing.T) {
	gw := &fakeGateway{}
	svc, _ := newService(gw, credstore.NewMemoryStore())

	if got := svc.State(); got != StateUnknown {
		t.Fatalf("initial state %q", got)
	}
	svc.Bootstrap(context.Background())

	if got := svc.State(); got != StateAnonymous {
		t.Fatalf("expected anonymous, got %q", got)
	}
	if gw.meCalls != 0 {
		t.Fatal("bootstrap called the backend with no stored token")
	}
}

func TestBootstrapRestoresSession(t *testing.T) {
	gw := &fakeGateway{meFn: func() (user.User, error) {
		return user.User{ID: "u1", Name: "Ada", Email: "a@b.c"}, nil
	}}
	creds := credstore.NewMemoryStore()
	creds.SetToken("stored-token")
	svc, _ := newService(gw, creds)

	var notified []bool
	svc.Subscribe(func(authed bool) { notified = append(notified, authed) })

	svc.Bootstrap(context.Background())

	if got := svc.State(); got != StateAuthenticated {
		t.Fatalf("expected authenticated, got %q", got)
	}
	u, ok := svc.User()
	if !ok || u.ID != "u1" {
		t.Fatalf("unexpected user: %#v ok=%v", u, ok)
	}
	if len(notified) != 1 || !notified[0] {
		t.Fatalf("listener not notified of login: %v", notified)
	}
}

func TestBootstrapClearsStaleToken(t *testing.T) {
	gw := &fakeGateway{meFn: func() (user.User, error) {
		return user.User{}, &shopapi.Error{StatusCode: http.StatusUnauthorized, Message: "expired"}
	}}
	creds := credstore.NewMemoryStore()
	creds.SetToken("stale-token")
	svc, _ := newService(gw, creds)

	svc.Bootstrap(context.Background())

	if got := svc.State(); got != StateAnonymous {
		t.Fatalf("expected anonymous, got %q", got)
	}
	if creds.Token() != "" {
		t.Fatal("stale token not cleared")
	}
}

func TestBootstrapKeepsTokenWhenBackendUnreachable(t *testing.T) {
	gw := &fakeGateway{meFn: func() (user.User, error) {
		return user.User{}, fmt.Errorf("connection refused")
	}}
	creds := credstore.NewMemoryStore()
	creds.SetToken("valid-but-unverifiable")
	svc, _ := newService(gw, creds)

	svc.Bootstrap(context.Background())

	if got := svc.State(); got != StateAnonymous {
		t.Fatalf("expected anonymous, got %q", got)
	}
	if creds.Token() != "valid-but-unverifiable" {
		t.Fatal("token cleared on transport failure")
	}
}

func TestLoginSuccess(t *testing.T) {
	gw := &fakeGateway{loginFn: func(email, password string) (user.User, error) {
		return user.User{ID: "u1", Email: email}, nil
	}}
	svc, rec := newService(gw, credstore.NewMemoryStore())

	var notified []bool
	svc.Subscribe(func(authed bool) { notified = append(notified, authed) })

	if err := svc.Login(context.Background(), "a@b.c", "pw"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if !svc.IsAuthenticated() {
		t.Fatal("not authenticated after login")
	}
	if len(notified) != 1 || !notified[0] {
		t.Fatalf("listener not notified: %v", notified)
	}
	notices := rec.Notices()
	if len(notices) != 1 || notices[0].Severity != notify.SeverityInfo {
		t.Fatalf("unexpected notices: %#v", notices)
	}
}

func TestLoginFailureStaysAnonymousAndSurfacesReason(t *testing.T) {
	gw := &fakeGateway{loginFn: func(email, password string) (user.User, error) {
		return user.User{}, &shopapi.Error{StatusCode: http.StatusUnauthorized, Message: "Invalid email or password"}
	}}
	svc, rec := newService(gw, credstore.NewMemoryStore())
	svc.Bootstrap(context.Background())
	rec.Reset()

	err := svc.Login(context.Background(), "a@b.c", "wrong")
	if err == nil {
		t.Fatal("expected login error")
	}
	if svc.IsAuthenticated() {
		t.Fatal("authenticated after failed login")
	}
	notices := rec.Notices()
	if len(notices) != 1 || notices[0].Message != "Invalid email or password" {
		t.Fatalf("server reason not surfaced: %#v", notices)
	}
}

func TestLoginTransportFailureUsesGenericMessage(t *testing.T) {
	gw := &fakeGateway{loginFn: func(email, password string) (user.User, error) {
		return user.User{}, fmt.Errorf("request failed: connection refused")
	}}
	svc, rec := newService(gw, credstore.NewMemoryStore())

	if err := svc.Login(context.Background(), "a@b.c", "pw"); err == nil {
		t.Fatal("expected error")
	}
	notices := rec.Notices()
	if len(notices) != 1 || notices[0].Message != "Something went wrong. Please try again." {
		t.Fatalf("expected generic message, got %#v", notices)
	}
}

func TestLogoutUnconditional(t *testing.T) {
	gw := &fakeGateway{
		loginFn:   func(email, password string) (user.User, error) { return user.User{ID: "u1"}, nil },
		logoutErr: fmt.Errorf("remote logout: 500"),
	}
	svc, _ := newService(gw, credstore.NewMemoryStore())
	if err := svc.Login(context.Background(), "a@b.c", "pw"); err != nil {
		t.Fatalf("login: %v", err)
	}

	var notified []bool
	svc.Subscribe(func(authed bool) { notified = append(notified, authed) })

	svc.Logout(context.Background())

	if svc.IsAuthenticated() {
		t.Fatal("still authenticated after logout")
	}
	if _, ok := svc.User(); ok {
		t.Fatal("user survived logout")
	}
	if gw.logoutCalls != 1 {
		t.Fatalf("remote logout called %d times", gw.logoutCalls)
	}
	if len(notified) != 1 || notified[0] {
		t.Fatalf("listener not notified of logout: %v", notified)
	}
}

func TestRegisterDoesNotAuthenticate(t *testing.T) {
	gw := &fakeGateway{}
	svc, _ := newService(gw, credstore.NewMemoryStore())

	if err := svc.Register(context.Background(), "Ada", "a@b.c", "pw"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if svc.IsAuthenticated() {
		t.Fatal("register must not authenticate")
	}
}
