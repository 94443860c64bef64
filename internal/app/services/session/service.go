// Package session owns the authenticated/anonymous state for the whole
// client. Every other store derives its gating from here.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/clovermart/storefront/infra/shopapi"
	"github.com/clovermart/storefront/internal/app/domain/user"
	"github.com/clovermart/storefront/internal/credstore"
	"github.com/clovermart/storefront/internal/notify"
	"github.com/clovermart/storefront/pkg/logger"
)

// State is the session lifecycle position.
type State string

const (
	// StateUnknown is the constructed state, before Bootstrap has run.
	StateUnknown State = "unknown"
	// StateChecking means a stored token is being validated.
	StateChecking State = "checking"
	// StateAuthenticated means a user is logged in.
	StateAuthenticated State = "authenticated"
	// StateAnonymous means no valid session exists.
	StateAnonymous State = "anonymous"
)

// AuthGateway is the slice of the gateway client the session store needs.
type AuthGateway interface {
	Register(ctx context.Context, in shopapi.RegisterInput) error
	Login(ctx context.Context, email, password string) (user.User, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (user.User, error)
}

var _ AuthGateway = (*shopapi.AuthClient)(nil)

// Listener observes authenticated-flag changes.
type Listener func(authenticated bool)

// Service is the session store.
type Service struct {
	gateway  AuthGateway
	creds    credstore.Store
	notifier notify.Notifier
	log      *logger.Logger

	mu        sync.RWMutex
	state     State
	user      user.User
	listeners []Listener
}

// New constructs a session store. The credential store must be the same one
// the gateway client injects tokens from.
func New(gateway AuthGateway, creds credstore.Store, notifier notify.Notifier, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("session")
	}
	if notifier == nil {
		notifier = notify.NewLogNotifier(log)
	}
	return &Service{
		gateway:  gateway,
		creds:    creds,
		notifier: notifier,
		log:      log,
		state:    StateUnknown,
	}
}

// Subscribe registers a listener for authenticated-flag transitions. It is
// invoked after the state change is visible, outside the store's lock.
func (s *Service) Subscribe(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// State returns the current lifecycle state.
func (s *Service) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// User returns the current user and whether one is authenticated.
func (s *Service) User() (user.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user, s.state == StateAuthenticated
}

// IsAuthenticated reports whether a user is logged in.
func (s *Service) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state == StateAuthenticated
}

// Bootstrap resolves the initial session from durable storage: no token
// means Anonymous; a stored token is validated against the backend and
// cleared when the backend rejects it. A transport failure leaves the token
// in place so an offline start does not log the user out.
func (s *Service) Bootstrap(ctx context.Context) {
	s.setState(StateChecking, user.User{})

	if s.creds.Token() == "" {
		s.transition(StateAnonymous, user.User{})
		return
	}

	u, err := s.gateway.Me(ctx)
	if err != nil {
		if shopapi.IsAuthFailure(err) {
			s.log.WithError(err).Warn("stored token rejected, clearing credential")
			if clearErr := s.creds.Clear(); clearErr != nil {
				s.log.WithError(clearErr).Error("failed to clear stale token")
			}
		} else {
			s.log.WithError(err).Warn("session check unreachable, keeping credential")
		}
		s.transition(StateAnonymous, user.User{})
		return
	}

	s.log.WithField("user", u.Email).Info("session restored")
	s.transition(StateAuthenticated, u)
}

// Login authenticates and transitions to Authenticated on success. On
// failure the state stays Anonymous and the reason is both returned and
// surfaced as a notice.
func (s *Service) Login(ctx context.Context, email, password string) error {
	u, err := s.gateway.Login(ctx, email, password)
	if err != nil {
		s.log.WithError(err).Warn("login failed")
		s.notifier.Notify(notify.Notice{
			Severity: notify.SeverityError,
			Title:    "Login failed",
			Message:  failureMessage(err),
		})
		return fmt.Errorf("login: %w", err)
	}

	s.transition(StateAuthenticated, u)
	s.notifier.Notify(notify.Notice{
		Severity: notify.SeverityInfo,
		Title:    "Login successful",
		Message:  "Welcome back!",
	})
	return nil
}

// Register creates an account. It does not authenticate; the caller logs in
// afterwards.
func (s *Service) Register(ctx context.Context, name, email, password string) error {
	err := s.gateway.Register(ctx, shopapi.RegisterInput{Name: name, Email: email, Password: password})
	if err != nil {
		s.notifier.Notify(notify.Notice{
			Severity: notify.SeverityError,
			Title:    "Registration failed",
			Message:  failureMessage(err),
		})
		return fmt.Errorf("register: %w", err)
	}
	s.notifier.Notify(notify.Notice{
		Severity: notify.SeverityInfo,
		Title:    "Registration successful",
		Message:  "Please log in with your credentials",
	})
	return nil
}

// Logout ends the session unconditionally. Local state clears whether or
// not the remote call succeeds; a remote failure is logged, not surfaced.
func (s *Service) Logout(ctx context.Context) {
	s.transition(StateAnonymous, user.User{})

	if err := s.gateway.Logout(ctx); err != nil {
		s.log.WithError(err).Warn("remote logout failed")
	}
	s.notifier.Notify(notify.Notice{
		Severity: notify.SeverityInfo,
		Title:    "Logged out",
		Message:  "You have been successfully logged out",
	})
}

// setState updates state without informing listeners (intermediate states).
func (s *Service) setState(state State, u user.User) {
	s.mu.Lock()
	s.state = state
	s.user = u
	s.mu.Unlock()
}

// transition updates state and informs listeners when the authenticated
// flag changed. Listeners run outside the lock so they may call back in.
func (s *Service) transition(state State, u user.User) {
	s.mu.Lock()
	wasAuthed := s.state == StateAuthenticated
	s.state = state
	s.user = u
	listeners := make([]Listener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	isAuthed := state == StateAuthenticated
	if wasAuthed == isAuthed {
		return
	}
	for _, l := range listeners {
		l(isAuthed)
	}
}

// failureMessage extracts a user-facing message from a gateway error.
func failureMessage(err error) string {
	var apiErr *shopapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.UserMessage()
	}
	return "Something went wrong. Please try again."
}
